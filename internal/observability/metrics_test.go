package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nexusatelier/atelier-backend/internal/domain"
)

func TestCountersTrackQueueEvents(t *testing.T) {
	m := NewMetrics()

	m.JobEnqueued(domain.JobTypeVideo)
	m.JobEnqueued(domain.JobTypeVideo)
	m.JobCompleted(domain.JobTypeVideo, 2*time.Second)
	m.JobRetried(domain.JobTypeVideo)
	m.JobFailed(domain.JobTypeImage)
	m.QueueDepth(domain.JobTypeVideo, 3, 1)

	if got := testutil.ToFloat64(m.jobsEnqueued.WithLabelValues("video")); got != 2 {
		t.Fatalf("enqueued counter %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.jobsCompleted.WithLabelValues("video")); got != 1 {
		t.Fatalf("completed counter %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.jobsRetried.WithLabelValues("video")); got != 1 {
		t.Fatalf("retried counter %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.jobsFailed.WithLabelValues("image")); got != 1 {
		t.Fatalf("failed counter %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.jobsWaiting.WithLabelValues("video")); got != 3 {
		t.Fatalf("waiting gauge %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.jobsActive.WithLabelValues("video")); got != 1 {
		t.Fatalf("active gauge %v, want 1", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.JobEnqueued(domain.JobTypeAudio)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `generation_jobs_enqueued_total{type="audio"} 1`) {
		t.Fatalf("exposition missing the audio enqueued counter:\n%s", body)
	}
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	// Two collectors in one process must not panic on registration.
	a := NewMetrics()
	b := NewMetrics()
	a.JobEnqueued(domain.JobTypeVideo)
	b.JobEnqueued(domain.JobTypeVideo)
	if got := testutil.ToFloat64(a.jobsEnqueued.WithLabelValues("video")); got != 1 {
		t.Fatalf("collector a saw %v, want 1", got)
	}
}
