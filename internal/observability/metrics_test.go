package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, family string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s%v not found", family, labels)
	return nil
}

func TestRecordRosterOperation(t *testing.T) {
	RecordRosterOperation("signup", "ok")
	RecordRosterOperation("signup", "ok")
	RecordRosterOperation("unregister", "not_registered")

	m := findMetric(t, "signup_service_roster_operations_total", map[string]string{"action": "signup", "outcome": "ok"})
	require.Equal(t, float64(2), m.GetCounter().GetValue())

	m = findMetric(t, "signup_service_roster_operations_total", map[string]string{"action": "unregister", "outcome": "not_registered"})
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestSetRosterSize(t *testing.T) {
	SetRosterSize("Chess Club", 2)
	SetRosterSize("Chess Club", 3)

	m := findMetric(t, "signup_service_roster_participants", map[string]string{"activity": "Chess Club"})
	require.Equal(t, float64(3), m.GetGauge().GetValue())
}
