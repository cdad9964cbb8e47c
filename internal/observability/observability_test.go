package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{Name: "shop-service", Env: "test"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/orders", http.MethodPost, http.StatusCreated, 12*time.Millisecond)
	m.RecordRequest("/orders", http.MethodPost, http.StatusCreated, 3*time.Millisecond)
	m.RecordError("/account/withdraw", http.MethodPost, "INSUFFICIENT_BALANCE")
	m.RecordDomainEvent("order_created")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodPost, "/orders", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(http.MethodPost, "/account/withdraw", "INSUFFICIENT_BALANCE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.domainEvents.WithLabelValues("order_created")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordDomainEvent("order_created") })
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/7", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/products/8", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Header.Get(RequestIDHeader))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/products/:id", "204")))
}
