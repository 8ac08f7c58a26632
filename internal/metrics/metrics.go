// Package metrics collects Prometheus counters for the batch job.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Recorder is the interface the batch runner reports through.
type Recorder interface {
	FetchSucceeded(hall string)
	FetchFailed(hall string)
	EmptyMenu(hall string)
	DigestSent()
	SendFailed()
}

// Collector implements Recorder on top of Prometheus counters.
type Collector struct {
	fetchSuccess *prometheus.CounterVec
	fetchFail    *prometheus.CounterVec
	emptyMenu    *prometheus.CounterVec
	digestsSent  prometheus.Counter
	sendFail     prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dining_menu_fetch_success_total",
			Help: "Menu pages fetched and parsed successfully.",
		}, []string{"hall"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dining_menu_fetch_fail_total",
			Help: "Menu page fetches that failed.",
		}, []string{"hall"}),
		emptyMenu: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dining_menu_empty_total",
			Help: "Menu pages that parsed to zero entries.",
		}, []string{"hall"}),
		digestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dining_digests_sent_total",
			Help: "Digest emails sent to subscribers.",
		}),
		sendFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dining_digest_send_fail_total",
			Help: "Digest emails that failed to send.",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.emptyMenu,
		c.digestsSent,
		c.sendFail,
	)

	return c
}

func (c *Collector) FetchSucceeded(hall string) { c.fetchSuccess.WithLabelValues(hall).Inc() }
func (c *Collector) FetchFailed(hall string)    { c.fetchFail.WithLabelValues(hall).Inc() }
func (c *Collector) EmptyMenu(hall string)      { c.emptyMenu.WithLabelValues(hall).Inc() }
func (c *Collector) DigestSent()                { c.digestsSent.Inc() }
func (c *Collector) SendFailed()                { c.sendFail.Inc() }

// Totals sums every counter in the registry by metric name, adding up
// label children. The one-shot batch process has no scrape endpoint,
// so it logs these after a run instead.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	fams, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	totals := make(map[string]float64)
	for _, mf := range fams {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		totals[mf.GetName()] = sum
	}
	return totals, nil
}

// Noop discards all measurements. Used where no registry is wired up.
type Noop struct{}

func (Noop) FetchSucceeded(string) {}
func (Noop) FetchFailed(string)    {}
func (Noop) EmptyMenu(string)      {}
func (Noop) DigestSent()           {}
func (Noop) SendFailed()           {}
