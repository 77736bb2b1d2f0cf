package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies label dimensions match usage across client,
// lookup, dispatch and http packages.
func TestMetrics_Usable(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("POST", "/weather/search", "2xx").Inc()
	HTTPRequestDuration.WithLabelValues("POST", "/weather/search").Observe(0.01)
	WeatherAPICallsTotal.WithLabelValues("success").Inc()
	WeatherAPIDuration.WithLabelValues("success").Observe(0.1)
	WeatherAPIErrorsTotal.WithLabelValues("timeout").Inc()
	WeatherAPIAbandonedTotal.Inc()
	LookupsIssuedTotal.WithLabelValues("name").Inc()
	LookupDeliveriesTotal.WithLabelValues("success").Inc()
	LookupErrorsTotal.WithLabelValues("decode").Inc()
	LocationUpdatesTotal.WithLabelValues("fix").Inc()
	RecordCircuitBreakerTransition("weather_api", "closed", "open", 1)
}

func TestRecordCitySearch_TrackedAndOther(t *testing.T) {
	SetTrackedCities([]string{"London", "kyiv"})
	defer SetTrackedCities(nil)

	RecordCitySearch("  LONDON ")
	RecordCitySearch("Atlantis")

	body := scrape(t)
	if !strings.Contains(body, `citySearchesTotal{city="london"}`) {
		t.Error("tracked city should be labelled by name")
	}
	if !strings.Contains(body, `citySearchesTotal{city="other"}`) {
		t.Error("untracked city should be labelled other")
	}
	if strings.Contains(body, `city="atlantis"`) {
		t.Error("untracked city leaked into labels")
	}
}

func TestRegisterDeliveryQueueGauge_Once(t *testing.T) {
	RegisterDeliveryQueueGauge(func() int { return 3 })
	RegisterDeliveryQueueGauge(func() int { return 4 }) // must not panic on duplicate registration
}

// TestMetricsHandler_ServesPrometheusFormat verifies MetricsHandler serves
// the text exposition format.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	LookupSupersededTotal.Inc()
	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lookupSupersededTotal") {
		t.Error("MetricsHandler response should contain lookup metrics")
	}
}

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	return w.Body.String()
}
