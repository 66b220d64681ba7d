package service

import (
	"strings"
	"unicode/utf8"

	"github.com/stemsi/anonq-bot/internal/model"
)

// NormalizedQuestion is a creation request that passed validation.
type NormalizedQuestion struct {
	Type       model.QuestionType
	Prompt     string
	Choices    []string
	ThreadName string
}

// NormalizedResponse is a response ready to be stored. ChoiceIndex is -1
// for free-response questions.
type NormalizedResponse struct {
	Value       string
	ChoiceIndex int
}

// NormalizeText trims s and collapses every whitespace run to a single space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateCreation checks and normalizes a new question. rawChoices is the
// comma-separated choice list and is ignored for free-response questions.
// When threadName is blank it is derived from clean(prompt); clean may be nil.
func ValidateCreation(qType model.QuestionType, prompt, rawChoices, threadName string, clean func(string) string) (*NormalizedQuestion, error) {
	nq := &NormalizedQuestion{Type: qType, Prompt: NormalizeText(prompt)}

	if length(nq.Prompt) == 0 {
		return nil, invalid(KindEmptyOrOversizedContent, "question is empty")
	}

	switch qType {
	case model.QuestionTypeMultipleChoice:
		parts := strings.Split(rawChoices, ",")
		// The lower bound is 1 even though users are told "at least 2".
		if len(parts) < model.MinChoices || len(parts) > model.MaxChoices {
			return nil, invalid(KindInvalidChoiceCount, "%d choices", len(parts))
		}

		total := length(nq.Prompt)
		nq.Choices = make([]string, len(parts))
		for i, p := range parts {
			c := NormalizeText(p)
			if c == "" {
				return nil, invalid(KindEmptyOrOversizedContent, "choice %s is empty", model.ChoiceLetter(i))
			}
			nq.Choices[i] = c
			total += length(c)
		}
		if total > model.MaxContentLength {
			return nil, invalid(KindEmptyOrOversizedContent, "%d characters", total)
		}

	case model.QuestionTypeFreeResponse:
		if length(nq.Prompt) > model.MaxContentLength {
			return nil, invalid(KindEmptyOrOversizedContent, "%d characters", length(nq.Prompt))
		}

	default:
		return nil, invalid(KindInvalidQuestionType, "%q", qType)
	}

	if name := strings.TrimSpace(threadName); name != "" {
		if length(name) > model.MaxThreadNameLength {
			return nil, invalid(KindThreadNameTooLong, "%d characters", length(name))
		}
		nq.ThreadName = name
	} else {
		source := nq.Prompt
		if clean != nil {
			source = clean(source)
		}
		nq.ThreadName = Truncate(source, model.DerivedThreadNameLength)
	}

	return nq, nil
}

// Truncate shortens s to at most n characters, ending in "..." when cut.
func Truncate(s string, n int) string {
	const omission = "..."
	if length(s) <= n {
		return s
	}
	runes := []rune(s)
	keep := n - len(omission)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + omission
}

// ValidateResponse checks and normalizes a raw response against q.
func ValidateResponse(q *model.Question, raw string) (*NormalizedResponse, error) {
	value := NormalizeText(raw)

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		if length(value) != 1 {
			return nil, invalid(KindInvalidLetterResponse, "response must be one letter")
		}
		letters := model.ChoiceLetters[:len(q.Choices)]
		idx := strings.Index(strings.ToLower(letters), strings.ToLower(value))
		if idx < 0 {
			return nil, invalid(KindInvalidLetterResponse, "%q is not a choice", value)
		}
		return &NormalizedResponse{Value: strings.ToLower(value), ChoiceIndex: idx}, nil

	case model.QuestionTypeFreeResponse:
		n := length(value)
		if n < model.MinFreeResponseLength || n > model.MaxContentLength {
			return nil, invalid(KindResponseLengthOutOfRange, "%d characters", n)
		}
		return &NormalizedResponse{Value: value, ChoiceIndex: -1}, nil

	default:
		return nil, invalid(KindInvalidQuestionType, "%q", q.QuestionType)
	}
}
