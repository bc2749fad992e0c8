package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/activities/:id/", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/activities/1/", "/activities/2/", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/activities/:id/", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestActivityCreated(t *testing.T) {
	m := New()

	m.ActivityCreated("workout", "planned")
	m.ActivityCreated("yoga", "planned")
	m.ActivityCreated("pilates", "completed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activitiesCreated.WithLabelValues("workout", "planned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activitiesCreated.WithLabelValues("other", "planned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activitiesCreated.WithLabelValues("other", "completed")))
	assert.Greater(t, testutil.ToFloat64(m.lastCreated), 0.0)
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ActivityCreated("meal", "planned")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `fitness_activities_created_total{activity_type="meal",status="planned"} 1`))
	assert.Contains(t, body, "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
