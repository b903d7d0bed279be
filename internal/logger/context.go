package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields.
// These keys are used to store values in context.Context that will be
// automatically extracted and added to log entries.
const (
	// ContextKeyConversationID identifies the conversation a turn belongs to.
	ContextKeyConversationID contextKey = "conversation_id"

	// ContextKeyTurnSequence identifies the turn's position in the conversation.
	ContextKeyTurnSequence contextKey = "turn_sequence"

	// ContextKeyTransport identifies which transport served the turn ("rest" or "sse").
	ContextKeyTransport contextKey = "transport"

	// ContextKeyRequestID identifies the individual HTTP request.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyCorrelationID is used for distributed tracing.
	ContextKeyCorrelationID contextKey = "correlation_id"
)

// allContextKeys lists all context keys that should be extracted for logging.
// This is used by the handler to iterate over all possible context values.
var allContextKeys = []contextKey{
	ContextKeyConversationID,
	ContextKeyTurnSequence,
	ContextKeyTransport,
	ContextKeyRequestID,
	ContextKeyCorrelationID,
}

// WithConversationID returns a new context with the conversation ID set.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, ContextKeyConversationID, conversationID)
}

// WithTurnSequence returns a new context with the turn sequence number set.
func WithTurnSequence(ctx context.Context, turnSequence string) context.Context {
	return context.WithValue(ctx, ContextKeyTurnSequence, turnSequence)
}

// WithTransport returns a new context with the transport name set.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, ContextKeyTransport, transport)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// LoggingFields holds all standard logging context fields.
// This struct is used with WithLoggingContext for bulk field setting.
type LoggingFields struct {
	ConversationID string
	TurnSequence   string
	Transport      string
	RequestID      string
	CorrelationID  string
}

// WithLoggingContext returns a new context with multiple logging fields set at
// once. Only non-empty values are set.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.ConversationID != "" {
		ctx = WithConversationID(ctx, fields.ConversationID)
	}
	if fields.TurnSequence != "" {
		ctx = WithTurnSequence(ctx, fields.TurnSequence)
	}
	if fields.Transport != "" {
		ctx = WithTransport(ctx, fields.Transport)
	}
	if fields.RequestID != "" {
		ctx = WithRequestID(ctx, fields.RequestID)
	}
	if fields.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, fields.CorrelationID)
	}
	return ctx
}

// ExtractLoggingFields extracts all logging fields from a context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	fields := LoggingFields{}
	if v := ctx.Value(ContextKeyConversationID); v != nil {
		fields.ConversationID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyTurnSequence); v != nil {
		fields.TurnSequence, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyTransport); v != nil {
		fields.Transport, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyRequestID); v != nil {
		fields.RequestID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyCorrelationID); v != nil {
		fields.CorrelationID, _ = v.(string)
	}
	return fields
}
