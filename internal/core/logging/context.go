package logging

import "context"

type contextKey string

const (
	documentKey contextKey = "document"
	parseIDKey  contextKey = "parse_id"
)

// WithDocument adds the open document path to the context.
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, documentKey, path)
}

// WithParseID adds a parse request id to the context.
func WithParseID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, parseIDKey, id)
}

// GetDocument retrieves the document path from the context.
// Returns empty string if not present.
func GetDocument(ctx context.Context) string {
	if p, ok := ctx.Value(documentKey).(string); ok {
		return p
	}
	return ""
}

// GetParseID retrieves the parse request id from the context.
// Returns zero if not present.
func GetParseID(ctx context.Context) int64 {
	if id, ok := ctx.Value(parseIDKey).(int64); ok {
		return id
	}
	return 0
}
