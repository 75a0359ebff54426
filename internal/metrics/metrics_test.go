package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))
	RecordAPIRequest("GET", "/api/tags/", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tags/", "200"))

	if after-before != 1 {
		t.Fatalf("request counter moved by %v, want 1", after-before)
	}
}

func TestRecordEvent(t *testing.T) {
	before := testutil.ToFloat64(DomainEvents.WithLabelValues("recipe_created"))
	RecordEvent("recipe_created")
	RecordEvent("recipe_created")
	if got := testutil.ToFloat64(DomainEvents.WithLabelValues("recipe_created")) - before; got != 2 {
		t.Fatalf("event counter moved by %v, want 2", got)
	}
}
