package otel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		t.Setenv("OTEL_SDK_DISABLED", "true")
		core, logs := observer.New(zap.InfoLevel)

		shutdown, err := Init(ctx, zap.New(core))
		require.NoError(t, err)
		assert.NoError(t, shutdown(ctx))

		entries := logs.FilterMessage("tracing_configured").All()
		require.Len(t, entries, 1)
		assert.Equal(t, false, entries[0].ContextMap()["tracing_enabled"])
	})

	t.Run("stdout exporter", func(t *testing.T) {
		t.Setenv("OTEL_SDK_DISABLED", "false")
		t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "stdout")
		core, logs := observer.New(zap.InfoLevel)

		shutdown, err := Init(ctx, zap.New(core))
		require.NoError(t, err)
		assert.NoError(t, shutdown(ctx))
		assert.Equal(t, 1, logs.FilterMessage("tracing_configured").Len())
	})

	t.Run("unsupported protocol degrades", func(t *testing.T) {
		t.Setenv("OTEL_SDK_DISABLED", "false")
		t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
		core, logs := observer.New(zap.InfoLevel)

		shutdown, err := Init(ctx, zap.New(core))
		require.NoError(t, err)
		assert.NoError(t, shutdown(ctx))
		assert.Equal(t, 1, logs.FilterMessage("tracing_init_failed").Len())
	})
}

func TestGetSampler(t *testing.T) {
	tests := []struct {
		sampler string
		arg     string
		want    string
	}{
		{"always_on", "", "AlwaysOnSampler"},
		{"always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "0.25", "TraceIDRatioBased{0.25}"},
		{"traceidratio", "garbage", "AlwaysOnSampler"},
		{"parentbased_traceidratio", "0.5", "ParentBased{root:TraceIDRatioBased{0.5}"},
		{"", "", "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		t.Run(tt.sampler+"/"+tt.arg, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER", tt.sampler)
			t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.arg)
			assert.True(t, strings.HasPrefix(getSampler().Description(), tt.want), getSampler().Description())
		})
	}
}
