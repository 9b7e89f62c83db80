package csvparse

import (
	"io"
	"strings"

	"github.com/quizflow/quizflow/internal/domain"
)

// Row is one data line keyed by the (trimmed) header names.
type Row map[string]string

// Pipeline turns raw CSV text into validated quiz aggregates.
//
// The zero value reproduces the historical quoting behavior: a double quote
// toggles the quoted-region state and is consumed, so a literal quote inside
// a quoted field corrupts the field boundary. Set DoubleQuote to treat a
// doubled quote ("") inside a quoted region as one literal quote instead.
type Pipeline struct {
	DoubleQuote bool
}

// New returns a Pipeline with the historical quoting behavior.
func New() *Pipeline {
	return &Pipeline{}
}

// ParseLine splits one CSV line on commas outside double-quote pairs.
// Quote characters are stripped from field boundaries, never from interior
// content.
func (p *Pipeline) ParseLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if p.DoubleQuote && inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	result = append(result, current.String())

	for i, field := range result {
		field = strings.TrimPrefix(field, `"`)
		field = strings.TrimSuffix(field, `"`)
		result[i] = field
	}
	return result
}

// ParseCSV parses full CSV text into rows. The first non-blank line holds
// the headers; every following non-blank line is zipped against them
// positionally, with missing trailing fields mapped to the empty string.
// Fewer than 2 non-blank lines is ErrMalformedInput.
func (p *Pipeline) ParseCSV(text string) ([]Row, error) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, ErrMalformedInput
	}

	headers := p.ParseLine(lines[0])
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := p.ParseLine(line)
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = strings.TrimSpace(values[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Parse reads CSV text from r and runs the full pipeline.
func (p *Pipeline) Parse(r io.Reader) ([]domain.Quiz, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rows, err := p.ParseCSV(string(text))
	if err != nil {
		return nil, err
	}
	return p.RowsToQuizzes(rows)
}
