package engine

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx with the id of the request driving an engine
// operation. Notifications raised by Reload, SaveToLocalStorage and
// ImportAllData carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
