package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - http.*: HTTP-related attributes
//   - rpc.*: RPC-related attributes
//
// Custom attribute keys use the "mercator.*" namespace:
//   - mercator.model: Model name
//   - mercator.token_alias: Leased token alias
//   - mercator.tokens.*: Token counts

// Common attribute keys used throughout the system
const (
	// Model/stream attributes
	AttrModel  = "mercator.model"
	AttrStream = "mercator.stream"

	// Request attributes
	AttrRequestID  = "mercator.request_id"
	AttrTokenAlias = "mercator.token_alias"
	AttrProxy      = "mercator.proxy"
	AttrSession    = "mercator.session"

	// Token attributes
	AttrTokensPrompt     = "mercator.tokens.prompt"
	AttrTokensCompletion = "mercator.tokens.completion"
	AttrTokensTotal      = "mercator.tokens.total"

	// Frame attributes
	AttrFrameTag      = "mercator.frame.tag"
	AttrFrameGzip     = "mercator.frame.gzip"
	AttrFrameByteSize = "mercator.frame.bytes"

	// Error attributes
	AttrErrorType    = "mercator.error.type"
	AttrErrorMessage = "error.message"

	// Performance attributes
	AttrDuration   = "mercator.duration_ms"
	AttrRetryCount = "mercator.retry_count"
)

// SetModelAttributes sets the model and stream-mode attributes on a span.
//
// Example:
//
//	SetModelAttributes(span, "gpt-4", true)
func SetModelAttributes(span trace.Span, model string, stream bool) {
	span.SetAttributes(
		attribute.String(AttrModel, model),
		attribute.Bool(AttrStream, stream),
	)
}

// SetRequestAttributes sets request-identity attributes on a span: the
// vendor request ID this call was framed with and the pool alias of the
// token that was leased to serve it.
//
// Example:
//
//	SetRequestAttributes(span, "req-123", "acct-12")
func SetRequestAttributes(span trace.Span, requestID, tokenAlias string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
	}
	if tokenAlias != "" {
		attrs = append(attrs, attribute.String(AttrTokenAlias, tokenAlias))
	}
	span.SetAttributes(attrs...)
}

// SetTokenAttributes sets token count attributes on a span.
//
// Example:
//
//	SetTokenAttributes(span, 1500, 500)
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
}

// SetFrameAttributes sets attributes describing one length-prefixed frame
// (§4.1 C1): its tag byte, whether the gzip bit is set, and its payload
// size.
//
// Example:
//
//	SetFrameAttributes(span, frame.TagMessage, false, 412)
func SetFrameAttributes(span trace.Span, tag byte, gzip bool, payloadBytes int) {
	span.SetAttributes(
		attribute.Int(AttrFrameTag, int(tag)),
		attribute.Bool(AttrFrameGzip, gzip),
		attribute.Int(AttrFrameByteSize, payloadBytes),
	)
}

// SetProxyAttribute sets the outbound proxy name attribute on a span.
//
// Example:
//
//	SetProxyAttribute(span, "residential-1")
func SetProxyAttribute(span trace.Span, proxy string) {
	if proxy != "" {
		span.SetAttributes(attribute.String(AttrProxy, proxy))
	}
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "vendor_error")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// SetSessionAttribute sets the session attribute on a span.
//
// Example:
//
//	SetSessionAttribute(span, "session-123")
func SetSessionAttribute(span trace.Span, session string) {
	if session != "" {
		span.SetAttributes(attribute.String(AttrSession, session))
	}
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "token_leased",
//	    attribute.String("alias", "acct-12"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper for errors that shouldn't also flip the
// span's status (use SetErrorAttributes for that).
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithModel adds model and stream-mode attributes.
func (ab *AttributeBuilder) WithModel(model string, stream bool) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrModel, model),
		attribute.Bool(AttrStream, stream),
	)
	return ab
}

// WithRequest adds request-identity attributes.
func (ab *AttributeBuilder) WithRequest(requestID, tokenAlias string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if tokenAlias != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrTokenAlias, tokenAlias))
	}
	return ab
}

// WithTokens adds token count attributes.
func (ab *AttributeBuilder) WithTokens(promptTokens, completionTokens int) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
		attribute.Int(AttrTokensTotal, promptTokens+completionTokens),
	)
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
