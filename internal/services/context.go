package services

import "context"

type contextKey string

const (
	movieKey     contextKey = "movie"
	jobIDKey     contextKey = "job_id"
	requestIDKey contextKey = "request_id"
)

// WithMovie annotates context with the movie title being processed.
func WithMovie(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, movieKey, title)
}

// MovieFromContext returns the movie title if present.
func MovieFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(movieKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithJobID annotates context with a background job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the background job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
