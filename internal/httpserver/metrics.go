package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"

	"lfsrcrack/internal/search"
)

// RegisterMetrics exposes search progress as gauges evaluated at scrape
// time, so workers never touch prometheus on their hot path.
func RegisterMetrics(reg prometheus.Registerer, mon *search.Monitor, hits *search.Collector) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lfsr",
			Subsystem: "search",
			Name:      "taps_checked",
			Help:      "Tap configurations tried so far.",
		}, func() float64 { return float64(mon.Poll().Checked) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lfsr",
			Subsystem: "search",
			Name:      "percent_complete",
			Help:      "Share of the tap space searched, in percent.",
		}, func() float64 { return mon.Progress().Percent }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lfsr",
			Subsystem: "search",
			Name:      "hits",
			Help:      "Tap configurations accepted so far.",
		}, func() float64 { return float64(hits.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lfsr",
			Subsystem: "search",
			Name:      "done",
			Help:      "1 once every worker has exhausted its chunk.",
		}, func() float64 {
			if mon.Poll().Done {
				return 1
			}
			return 0
		}),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}
