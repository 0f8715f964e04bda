package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("nop without url", func(t *testing.T) {
		c, err := New(Config{}, nil)
		require.NoError(t, err)
		require.IsType(t, Nop{}, c)
		require.NoError(t, c.Push(context.Background()))
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := New(Config{PushgatewayURL: "pushgateway:9091"}, nil)
		require.ErrorIs(t, err, ErrInvalidPushgatewayURL)
	})

	t.Run("defaults", func(t *testing.T) {
		c, err := New(Config{PushgatewayURL: "http://localhost:9091"}, nil)
		require.NoError(t, err)
		p, ok := c.(*Prometheus)
		require.True(t, ok)
		require.Equal(t, DefaultJob, p.config.Job)
		require.Equal(t, 10*time.Second, p.config.Timeout)
	})
}

func TestRecordCheck(t *testing.T) {
	p := NewPrometheus(Config{Job: DefaultJob, Timeout: time.Second}, nil)
	p.RecordCheck("health", 1500*time.Millisecond, true)
	p.RecordCheck("chat", time.Second, false)

	families, err := p.registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			values[f.GetName()+"{"+strings.Join(labels, ",")+"}"] = m.GetGauge().GetValue()
		}
	}

	require.Equal(t, map[string]float64{
		"mcp_smoke_check_duration_seconds{check=health,status=success}": 1.5,
		"mcp_smoke_check_duration_seconds{check=chat,status=error}":     1,
		"mcp_smoke_check_success{check=health}":                         1,
		"mcp_smoke_check_success{check=chat}":                           0,
	}, values)
}

func TestPush(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var method, path, body string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			bts, _ := io.ReadAll(r.Body)
			body = string(bts)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, err := New(Config{PushgatewayURL: srv.URL, Instance: "node-1"}, nil)
		require.NoError(t, err)
		c.RecordCheck("health", time.Second, true)
		require.NoError(t, c.Push(context.Background()))
		require.Equal(t, http.MethodPut, method)
		require.True(t, strings.HasPrefix(path, "/metrics/job/"+DefaultJob), path)
		require.Contains(t, path, "/instance/node-1")
		require.NotEmpty(t, body)
	})

	t.Run("server error is not returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, err := New(Config{PushgatewayURL: srv.URL}, nil)
		require.NoError(t, err)
		c.RecordCheck("health", time.Second, false)
		require.NoError(t, c.Push(context.Background()))
	})

	t.Run("cancelled", func(t *testing.T) {
		c, err := New(Config{PushgatewayURL: "http://localhost:9091"}, nil)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, c.Push(ctx), context.Canceled)
	})
}
