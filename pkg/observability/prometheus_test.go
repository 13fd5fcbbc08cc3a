package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnLayoutComplete(ctx, "greedy", 0, time.Millisecond, nil)
	p.OnLayoutComplete(ctx, "branch-and-bound", 5000, time.Second, nil)
	p.OnLayoutComplete(ctx, "branch-and-bound", 0, time.Second, errors.New("boom"))
	p.OnCacheHit(ctx, "layout")
	p.OnCacheMiss(ctx, "layout")
	p.OnCacheSet(ctx, "layout", 512)
	p.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
	p.OnError(ctx, "POST", "/v1/layouts", errors.New("bad"))
	p.OnRenderComplete(ctx, []string{"svg", "png"}, time.Millisecond, nil)
	p.OnIngestComplete(ctx, "text", 26, time.Millisecond, nil)

	if got := testutil.ToFloat64(p.layoutTotal.WithLabelValues("branch-and-bound", "ok")); got != 1 {
		t.Errorf("layout ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.layoutTotal.WithLabelValues("branch-and-bound", "error")); got != 1 {
		t.Errorf("layout error count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheEvents.WithLabelValues("layout", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes.WithLabelValues("layout")); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
	if got := testutil.ToFloat64(p.requestTotal.WithLabelValues("GET", "/healthz", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.renderTotal.WithLabelValues("png", "ok")); got != 1 {
		t.Errorf("renders = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestPrometheusInstall(t *testing.T) {
	Reset()
	defer Reset()

	p := NewPrometheus(prometheus.NewRegistry())
	p.Install()

	if Pipeline() != PipelineHooks(p) {
		t.Error("Install should set pipeline hooks")
	}
	if Cache() != CacheHooks(p) {
		t.Error("Install should set cache hooks")
	}
	if HTTP() != HTTPHooks(p) {
		t.Error("Install should set HTTP hooks")
	}
}
