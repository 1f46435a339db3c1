// Package metrics provides the Prometheus registry reference for hn-fetch.
// Metrics are defined in their respective packages (client, expand) to keep
// the packages independent of each other.
package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry is the default Prometheus registry used by hn-fetch.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered in Registry.
var Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every hn-fetch metric.
const Prefix = "hn_"

// Metrics Documentation
//
// Fetch Metrics (pkg/client):
//   - hn_fetch_requests_total{outcome} (Counter): fetches by outcome
//     (ok, absent, timeout, transport, parse)
//   - hn_fetch_duration_seconds (Histogram): single fetch duration
//
// Expansion Metrics (pkg/expand):
//   - hn_expand_levels_total (Counter): levels fetched
//   - hn_expand_items_total (Counter): results collected, absent included
//
// Example Prometheus Queries:
//
//   # Share of fetches answered with null
//   rate(hn_fetch_requests_total{outcome="absent"}[5m]) / rate(hn_fetch_requests_total[5m])
//
//   # P95 fetch latency
//   histogram_quantile(0.95, rate(hn_fetch_duration_seconds_bucket[5m]))

// Sample is one counter value, keyed by metric name and labels.
type Sample struct {
	Name  string
	Value float64
}

// Counters returns the current value of every hn_ counter, sorted by name.
// Labelled series are named like name{label="value"}.
func Counters(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) || mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			samples = append(samples, Sample{
				Name:  seriesName(mf.GetName(), m.GetLabel()),
				Value: m.GetCounter().GetValue(),
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })
	return samples, nil
}

func seriesName(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.GetName() + `="` + l.GetValue() + `"`
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}
