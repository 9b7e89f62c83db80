package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/quizflow/quizflow/internal/domain"
)

// Normalize flattens a quiz's content into a canonical string. Field values
// are lowercased, whitespace-trimmed and have line endings normalized so
// that cosmetic edits to a source file do not change the fingerprint.
func Normalize(quiz domain.Quiz) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	var b strings.Builder
	b.WriteString(normalizePart(quiz.Subject))
	b.WriteByte('\n')
	b.WriteString(normalizePart(quiz.Level))
	b.WriteByte('\n')
	b.WriteString(normalizePart(quiz.Title))
	for _, p := range quiz.Passages {
		b.WriteByte('\n')
		if p.Text != nil {
			b.WriteString(normalizePart(*p.Text))
		}
		for _, q := range p.Questions {
			b.WriteByte('\n')
			b.WriteString(normalizePart(q.Question))
			for _, opt := range q.Options {
				b.WriteByte('\n')
				b.WriteString(normalizePart(opt))
			}
			b.WriteByte('\n')
			b.WriteString(strconv.Itoa(q.CorrectAnswer))
		}
	}
	return b.String()
}

// Hash returns the SHA-256 of the normalized quiz content as a hex string.
// Two quizzes with the same subject, level, title, passages, questions,
// options and answers hash identically regardless of their generated IDs.
func Hash(quiz domain.Quiz) string {
	normalized := Normalize(quiz)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
