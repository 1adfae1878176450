package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New("test")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/item/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name string
		path string
		want struct {
			route  string
			status string
		}
	}{
		{
			name: "matched route uses the template",
			path: "/item/12",
			want: struct {
				route  string
				status string
			}{route: "/item/:id", status: "200"},
		},
		{
			name: "unmatched route",
			path: "/nowhere",
			want: struct {
				route  string
				status string
			}{route: "unmatched", status: "404"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, tt.want.route, tt.want.status))
			assert.Equal(t, float64(1), got)
		})
	}
}

func TestObserveOperation(t *testing.T) {
	m := New("test")
	m.ObserveOperation("task", "create", "success")
	m.ObserveOperation("task", "create", "success")
	m.ObserveOperation("task", "create", "error")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.operations.WithLabelValues("task", "create", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operations.WithLabelValues("task", "create", "error")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveOperation("task", "create", "success") })
}

func TestSeparateRegistries(t *testing.T) {
	a := New("a")
	b := New("b")
	a.ObserveOperation("user", "list", "success")

	assert.Equal(t, 1, testutil.CollectAndCount(a.operations))
	assert.Equal(t, 0, testutil.CollectAndCount(b.operations))
	assert.NotSame(t, a.Registry(), b.Registry())
}
