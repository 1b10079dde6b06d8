package calculator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

func TestBackends(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Backends(), "server")
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		Register("server", newServerCalculator)
	})
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &config.CalculatorConfig{Backend: "nope"}, observability.NopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestNew_InitFailureAbortsStartup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := New(context.Background(), &config.CalculatorConfig{
		Backend: "server",
		Server:  &config.ServerConfig{URL: srv.URL},
	}, observability.NopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initializing backend")
}

func TestNew_Server(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rulesetsHandler([]string{"osu"}, []string{"osu"}))
	t.Cleanup(srv.Close)

	calc, err := New(context.Background(), &config.CalculatorConfig{
		Backend: "server",
		Server:  &config.ServerConfig{URL: srv.URL},
	}, observability.NopLogger())
	require.NoError(t, err)
	require.NotNil(t, calc)
}
