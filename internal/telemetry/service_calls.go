package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ============================================================================
// ELASTICSEARCH
// ============================================================================

// TraceElasticsearchCall creates a span for Elasticsearch requests
// Examples: search_profiles, search_posts, index_post, delete_post
func TraceElasticsearchCall(ctx context.Context, operation, index string) (context.Context, trace.Span) {
	return otel.Tracer("elasticsearch").Start(ctx, "elasticsearch."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "elasticsearch"),
			attribute.String("elasticsearch.operation", operation),
			attribute.String("elasticsearch.index", index),
		),
	)
}

// ============================================================================
// S3 STORAGE
// ============================================================================

// TraceS3Call creates a span for S3 operations
func TraceS3Call(ctx context.Context, operation, bucket, key string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("s3").Start(ctx, "s3."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("s3.operation", operation),
			attribute.String("s3.bucket", bucket),
		),
	)
	if key != "" {
		span.SetAttributes(attribute.String("s3.key", key))
	}
	return ctx, span
}

// ============================================================================
// CACHE
// ============================================================================

// TraceCacheCall creates a span for Redis operations
// Examples: get, set, publish
func TraceCacheCall(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return otel.Tracer("cache").Start(ctx, "cache."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("cache.operation", operation),
			attribute.String("cache.key", key),
		),
	)
}

// ============================================================================
// DOMAIN EVENTS
// ============================================================================

// TraceFeed creates a span around feed assembly for one viewer
func TraceFeed(ctx context.Context, feedType, viewerID string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("feed").Start(ctx, "feed."+feedType,
		trace.WithAttributes(attribute.String("feed.type", feedType)),
	)
	if viewerID != "" {
		span.SetAttributes(attribute.String("feed.viewer_id", viewerID))
	}
	return ctx, span
}

// TraceSocial creates a span for a social graph or engagement action
// Examples: follow, unfollow, like, comment
func TraceSocial(ctx context.Context, action, actorID, targetID string) (context.Context, trace.Span) {
	return otel.Tracer("social").Start(ctx, "social."+action,
		trace.WithAttributes(
			attribute.String("social.action", action),
			attribute.String("social.actor_id", actorID),
			attribute.String("social.target_id", targetID),
		),
	)
}

// ============================================================================
// STATUS HELPERS
// ============================================================================

// RecordServiceError marks the span failed
func RecordServiceError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordServiceSuccess marks the span ok
func RecordServiceSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// EndSpan records err (if any) and ends the span; meant for defer with a named error
func EndSpan(span trace.Span, err error) {
	if err != nil {
		RecordServiceError(span, err)
	} else {
		RecordServiceSuccess(span)
	}
	span.End()
}
