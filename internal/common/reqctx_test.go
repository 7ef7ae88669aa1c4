package common

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestContext_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, RequestContextFromContext(ctx))
	assert.Empty(t, ResolveCorrelationID(ctx))

	ctx = WithRequestContext(ctx, &RequestContext{CorrelationID: "abc123"})
	assert.Equal(t, "abc123", ResolveCorrelationID(ctx))
}

func TestLogger_ForContextTagsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)

	ctx := WithRequestContext(context.Background(), &RequestContext{CorrelationID: "abc123"})
	logger.ForContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"correlation_id":"abc123"`)

	assert.Same(t, logger, logger.ForContext(context.Background()))
}
