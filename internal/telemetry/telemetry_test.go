package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupNone(t *testing.T) {
	p, err := Setup(ExporterNone, nil)
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetupStdoutWritesSpans(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	var buf bytes.Buffer
	p, err := Setup(ExporterStdout, &buf)
	require.NoError(t, err)

	_, span := Tracer("test").Start(context.Background(), "stock.adjust")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "stock.adjust")
	assert.Contains(t, buf.String(), ServiceName)
}

func TestSetupUnknownExporter(t *testing.T) {
	_, err := Setup("zipkin", nil)
	assert.Error(t, err)
}
