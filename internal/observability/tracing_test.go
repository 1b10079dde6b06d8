package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{ServiceName: "scorepp-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	ctx, span := tracer.StartSpan(context.Background(), "test-span",
		attribute.Int64("beatmap.id", 42))
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNewTracer_EnabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{
		ServiceName:  "scorepp-test",
		Enabled:      true,
		SamplingRate: 0.5,
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.StartSpan(context.Background(), "test-span")
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestCreateSampler(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, createSampler(1.0))
	assert.NotNil(t, createSampler(0))
	assert.NotNil(t, createSampler(0.25))
}
