package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return "status error" }
func (e statusErr) HTTPStatus() int { return int(e) }

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(statusOf(c, err))
		},
	})
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/documents/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/documents/:id", func(c *fiber.Ctx) error { return statusErr(fiber.StatusNotFound) })
	app.Post("/documents/upload", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest) })
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })
	return app, m, reg
}

func TestPrometheusMiddleware_Counts(t *testing.T) {
	app, m, _ := newPromApp(t)

	tests := []struct {
		method string
		target string
		route  string
		status string
	}{
		{method: "GET", target: "/documents/1", route: "/documents/:id", status: "200"},
		{method: "DELETE", target: "/documents/2", route: "/documents/:id", status: "404"},
		{method: "POST", target: "/documents/upload", route: "/documents/upload", status: "400"},
		{method: "GET", target: "/boom", route: "/boom", status: "500"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues(tt.method, tt.route, tt.status)))
		})
	}

	assert.Equal(t, 4, testutil.CollectAndCount(m.requestDuration))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}

func TestPrometheusMiddleware_SkipsMetrics(t *testing.T) {
	app, m, reg := newPromApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			assert.Empty(t, mf.GetMetric())
		}
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
