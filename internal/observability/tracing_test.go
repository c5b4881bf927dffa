package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/oggyb/spark-match/internal/config"
	"github.com/oggyb/spark-match/internal/logger"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), &config.Config{}, logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	cfg := &config.Config{}
	cfg.Trace.Enabled = true
	cfg.Trace.Exporter = "zipkin"

	_, err := InitTracing(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestMiddleware_StartsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "spark-test"
	cfg.Trace.Enabled = true
	cfg.Trace.Exporter = "stdout"
	shutdown, err := InitTracing(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	var valid bool
	r := gin.New()
	r.Use(Middleware("spark-test"))
	r.GET("/x", func(c *gin.Context) {
		valid = trace.SpanContextFromContext(c.Request.Context()).IsValid()
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.True(t, valid)
}
