package tracer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Byte-Craftsman-Alpha/Paranox/config"
)

func TestInitDisabled(t *testing.T) {
	tp, err := Init(context.Background(), config.TracingConfig{Enabled: false, ServiceName: "paranox-test"}, config.AppConfig{})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestResourceAttributes(t *testing.T) {
	attrs := resourceAttributes(
		config.TracingConfig{ServiceName: "paranox-api"},
		config.AppConfig{Name: "paranox", Environment: "staging", Version: "0.4.1"},
	)
	set := attribute.NewSet(attrs...)

	name, ok := set.Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "paranox-api", name.AsString())
	version, ok := set.Value("service.version")
	require.True(t, ok)
	assert.Equal(t, "0.4.1", version.AsString())
	env, ok := set.Value("deployment.environment.name")
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())

	fallback := attribute.NewSet(resourceAttributes(config.TracingConfig{}, config.AppConfig{Name: "paranox"})...)
	name, _ = fallback.Value("service.name")
	assert.Equal(t, "paranox", name.AsString())
	assert.Equal(t, 1, fallback.Len())
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions(config.TracingConfig{Endpoint: "collector:4318"}), 1)
	assert.Len(t, exporterOptions(config.TracingConfig{Endpoint: "collector:4318", Insecure: true, ExportTimeout: 5 * time.Second}), 3)
}
