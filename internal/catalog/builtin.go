package catalog

import "github.com/quizflow/quizflow/internal/domain"

func text(s string) *string { return &s }

// BuiltinSubjects are the subjects shipped with the application. They are
// fixed at startup and cannot be deleted.
func BuiltinSubjects() []domain.Subject {
	return []domain.Subject{
		{ID: "english", Name: "English", Icon: "EN"},
		{ID: "math", Name: "Math", Icon: "MA"},
	}
}

// BuiltinQuizzes are the sample quizzes shipped with the application.
func BuiltinQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:      "eng-a1-001",
			Subject: "english",
			Level:   "A1",
			Title:   "Emma's Family",
			Source:  domain.SourceBuiltin,
			Passages: []domain.Passage{
				{
					ID:   "p1",
					Text: text("My name is Emma. I am a student. I am 16 years old. I live in Seoul with my family. My family is small. I have one brother. His name is Tom. He is 12 years old. We have a dog. The dog's name is Max. Max is very cute. I like Max."),
					Questions: []domain.Question{
						{
							ID:            "q1",
							Question:      "How old is Emma?",
							Options:       []string{"12 years old", "16 years old", "10 years old", "20 years old"},
							CorrectAnswer: 1,
							Explanation:   "The text says 'I am 16 years old.'",
						},
						{
							ID:            "q2",
							Question:      "Who is Tom?",
							Options:       []string{"Emma's father", "Emma's dog", "Emma's brother", "Emma's friend"},
							CorrectAnswer: 2,
							Explanation:   "Tom is Emma's brother.",
						},
						{
							ID:            "q3",
							Question:      "What is Max?",
							Options:       []string{"A cat", "A dog", "A bird", "A fish"},
							CorrectAnswer: 1,
							Explanation:   "The text says 'We have a dog. The dog's name is Max.'",
						},
					},
				},
			},
		},
		{
			ID:      "eng-a1-002",
			Subject: "english",
			Level:   "A1",
			Title:   "Daily Routine",
			Source:  domain.SourceBuiltin,
			Passages: []domain.Passage{
				{
					ID:   "p1",
					Text: text("I wake up at 7 AM every day. I eat breakfast at 7:30 AM. I go to school at 8 AM. School starts at 8:30 AM. I have lunch at 12 PM. School ends at 3 PM. I go home at 3:30 PM."),
					Questions: []domain.Question{
						{
							ID:            "q1",
							Question:      "What time does the student wake up?",
							Options:       []string{"6 AM", "7 AM", "8 AM", "9 AM"},
							CorrectAnswer: 1,
							Explanation:   "The text says 'I wake up at 7 AM every day.'",
						},
						{
							ID:            "q2",
							Question:      "When does school start?",
							Options:       []string{"8:00 AM", "8:30 AM", "9:00 AM", "7:30 AM"},
							CorrectAnswer: 1,
							Explanation:   "The text says 'School starts at 8:30 AM.'",
						},
					},
				},
			},
		},
		{
			ID:      "math-basic-001",
			Subject: "math",
			Level:   "Basic",
			Title:   "Basic Addition",
			Source:  domain.SourceBuiltin,
			Passages: []domain.Passage{
				{
					ID:   "p1",
					Text: nil,
					Questions: []domain.Question{
						{
							ID:            "q1",
							Question:      "What is 2 + 3?",
							Options:       []string{"4", "5", "6", "7"},
							CorrectAnswer: 1,
							Explanation:   "2 + 3 = 5",
						},
						{
							ID:            "q2",
							Question:      "What is 10 + 15?",
							Options:       []string{"20", "25", "30", "35"},
							CorrectAnswer: 1,
							Explanation:   "10 + 15 = 25",
						},
					},
				},
			},
		},
	}
}
