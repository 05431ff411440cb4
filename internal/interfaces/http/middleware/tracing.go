package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength bounds the request ID attribute to keep abusive
// headers out of trace storage
const maxRequestIDLength = 128

// Tracing returns OpenTelemetry tracing middleware. It wraps otelgin
// and enriches the server span with the request ID and the
// authenticated subject.
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := c.GetString(RequestIDContextKey); requestID != "" && len(requestID) <= maxRequestIDLength {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if subject := GetProviderID(c); subject != "" {
			span.SetAttributes(attribute.String("enduser.id", subject))
		}
		if status := c.Writer.Status(); status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
