package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware wraps otelgin and tags the server span with the request
// id, the authenticated user and any handler errors. The request id also
// travels as baggage so detached side effects can be correlated.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			if member, err := baggage.NewMember("request_id", requestID); err == nil {
				if bag, err := baggage.New(member); err == nil {
					c.Request = c.Request.WithContext(baggage.ContextWithBaggage(c.Request.Context(), bag))
				}
			}
		}

		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request.id", requestID))
		}
		if userID := util.OptionalUserID(c); userID != "" {
			span.SetAttributes(attribute.String("user.id", userID))
		}
		if page := c.Query("page"); page != "" {
			span.SetAttributes(attribute.String("query.page", page))
		}

		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err, trace.WithStackTrace(true))
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}
