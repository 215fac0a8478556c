package llm

import (
	"context"
	"fmt"
)

// Purpose labels an LLM call in the event log.
type Purpose string

const (
	PurposeQuestionGen Purpose = "question-gen"
	PurposeAnswerCheck Purpose = "answer-check"
	PurposeCoaching    Purpose = "coaching"

	purposeUnknown Purpose = "unknown"
)

// Purposes lists every label quizlab records.
var Purposes = []Purpose{PurposeQuestionGen, PurposeAnswerCheck, PurposeCoaching}

// ParsePurpose validates a purpose label given on the command line.
func ParsePurpose(s string) (Purpose, error) {
	for _, p := range Purposes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown purpose %q (want one of %v)", s, Purposes)
}

type purposeKey struct{}

// WithPurpose tags ctx so the logging decorator can attribute the call.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return purposeUnknown
}
