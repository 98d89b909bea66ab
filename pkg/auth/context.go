package auth

import (
	"context"
)

type contextKey string

// ContextKeySubject is the context key for the authenticated operator
const ContextKeySubject contextKey = "subject"

// WithSubject adds the operator name to the context
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ContextKeySubject, subject)
}

// SubjectFromContext retrieves the operator name from the context
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ContextKeySubject).(string)
	return s, ok
}
