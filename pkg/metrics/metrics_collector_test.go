package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordHTTPRequest("GET", "/community/feed", 200, 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/community/feed", 204, 5*time.Millisecond)
	m.RecordHTTPRequest("GET", "/community/feed", 404, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/community/feed", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/community/feed", "4xx")))
}

func TestBusinessCounters(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordPostSubmitted()
	m.RecordModeration("post", "approved")
	m.RecordModeration("post", "approved")
	m.RecordNotification("email", false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.postsSubmittedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.moderationTotal.WithLabelValues("post", "approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notificationsSentTotal.WithLabelValues("email", "error")))
}

func TestGetStatusCategory(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		302: "3xx",
		429: "4xx",
		503: "5xx",
		100: "unknown",
	}
	for status, want := range cases {
		assert.Equal(t, want, getStatusCategory(status))
	}
}

func TestGlobalCollectorIsSingleton(t *testing.T) {
	assert.Same(t, GetGlobalCollector(), GetGlobalCollector())
}
