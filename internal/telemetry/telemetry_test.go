package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInit_Enabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(true, "leagueresults-test", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Init(false, "", nil) })

	_, span := Start(context.Background(), "results.import", attribute.Int("rows", 3))
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "results.import")
	assert.Contains(t, buf.String(), "leagueresults-test")
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(false, "leagueresults-test", nil)
	require.NoError(t, err)

	ctx, span := Start(context.Background(), "results.import")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
