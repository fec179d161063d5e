package httpx

import "context"

type ctxKey string

const ctxKeySubject ctxKey = "subject"

// ContextWithSubject records the authenticated principal (a user id) so
// per-user rate limits can key on it.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

// SubjectFromContext returns the principal recorded by ContextWithSubject.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubject).(string)
	return s
}
