package common

import "context"

// RequestContext holds per-request values set by the HTTP middleware
type RequestContext struct {
	CorrelationID string
}

type contextKey int

const requestContextKey contextKey = iota

// WithRequestContext stores a RequestContext in the request context.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFromContext retrieves the RequestContext from context, or nil if absent.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	return rc
}

// ResolveCorrelationID returns the request's correlation ID, or "" outside a request.
func ResolveCorrelationID(ctx context.Context) string {
	if rc := RequestContextFromContext(ctx); rc != nil {
		return rc.CorrelationID
	}
	return ""
}

// ForContext returns a logger tagged with the correlation ID carried by ctx
func (l *Logger) ForContext(ctx context.Context) *Logger {
	id := ResolveCorrelationID(ctx)
	if id == "" {
		return l
	}
	return &Logger{Logger: l.Logger.With().Str("correlation_id", id).Logger()}
}
