package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts document and parse_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if doc := GetDocument(ctx); doc != "" {
		e.Str("document", doc)
	}

	if id := GetParseID(ctx); id != 0 {
		e.Int64("parse_id", id)
	}
}
