package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/certwatch-io/certwatch/internal/config"
	"github.com/certwatch-io/certwatch/internal/core"
)

type Collector struct {
	config *config.RemoteWriteConfig

	checkDuration *prometheus.HistogramVec
	checksTotal   *prometheus.CounterVec

	certDaysUntilExpiry *prometheus.GaugeVec
	certValid           *prometheus.GaugeVec

	watchedDomains   *prometheus.GaugeVec
	notificationsDue prometheus.Gauge

	schedulerTicks       prometheus.Counter
	schedulerTickSeconds prometheus.Histogram
	refreshResults       *prometheus.CounterVec

	importRecords *prometheus.CounterVec
	exportsTotal  prometheus.Counter
}

func NewCollector(cfg config.RemoteWriteConfig) *Collector {
	return &Collector{
		config: &cfg,

		checkDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certwatch_check_duration_seconds",
				Help:    "Duration of certificate checks in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),

		checksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certwatch_checks_total",
				Help: "Total number of certificate checks performed",
			},
			[]string{"source", "result"},
		),

		certDaysUntilExpiry: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "certwatch_cert_days_until_expiry",
				Help: "Days until the watched certificate expires",
			},
			[]string{"domain", "issuer"},
		),

		certValid: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "certwatch_cert_valid",
				Help: "Whether the watched certificate is currently valid (1) or not (0)",
			},
			[]string{"domain"},
		),

		watchedDomains: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "certwatch_watched_domains",
				Help: "Number of watched domains by expiry status",
			},
			[]string{"status"},
		),

		notificationsDue: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "certwatch_notifications_due",
				Help: "Number of domains currently inside their notify threshold",
			},
		),

		schedulerTicks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "certwatch_scheduler_ticks_total",
				Help: "Total number of automatic refresh ticks",
			},
		),

		schedulerTickSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "certwatch_scheduler_tick_duration_seconds",
				Help:    "Duration of a full refresh pass in seconds",
				Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
			},
		),

		refreshResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certwatch_refresh_results_total",
				Help: "Per-record outcomes of refresh runs",
			},
			[]string{"result"},
		),

		importRecords: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certwatch_import_records_total",
				Help: "Per-line outcomes of bulk imports",
			},
			[]string{"result"},
		),

		exportsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "certwatch_exports_total",
				Help: "Total number of CSV exports generated",
			},
		),
	}
}

// RecordCheck records one fetch outcome. Source distinguishes ad-hoc
// checks from watch-list refreshes.
func (c *Collector) RecordCheck(source string, err error, elapsed time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.checksTotal.With(prometheus.Labels{"source": source, "result": result}).Inc()
	c.checkDuration.With(prometheus.Labels{"source": source}).Observe(elapsed.Seconds())
}

func (c *Collector) RecordSchedulerTick(elapsed time.Duration) {
	c.schedulerTicks.Inc()
	c.schedulerTickSeconds.Observe(elapsed.Seconds())
}

func (c *Collector) RecordRefreshRun(success, failed int) {
	c.refreshResults.With(prometheus.Labels{"result": "success"}).Add(float64(success))
	c.refreshResults.With(prometheus.Labels{"result": "failed"}).Add(float64(failed))
}

// UpdateWatchlist re-exports per-domain expiry gauges and the status
// breakdown from the current list. Gauges for removed domains are
// reset wholesale to avoid stale series.
func (c *Collector) UpdateWatchlist(records []core.WatchedDomain) {
	c.certDaysUntilExpiry.Reset()
	c.certValid.Reset()

	counts := map[string]int{
		string(core.StatusSafe):    0,
		string(core.StatusWarning): 0,
		string(core.StatusDanger):  0,
		string(core.StatusExpired): 0,
		"unchecked":                0,
	}

	for _, r := range records {
		if r.CertInfo == nil {
			counts["unchecked"]++
			continue
		}
		counts[string(r.CertInfo.Status)]++

		c.certDaysUntilExpiry.With(prometheus.Labels{
			"domain": r.Domain,
			"issuer": r.CertInfo.Issuer,
		}).Set(float64(r.CertInfo.DaysRemaining))

		valid := 0.0
		if r.CertInfo.IsValid {
			valid = 1.0
		}
		c.certValid.With(prometheus.Labels{"domain": r.Domain}).Set(valid)
	}

	for status, n := range counts {
		c.watchedDomains.With(prometheus.Labels{"status": status}).Set(float64(n))
	}
}

func (c *Collector) SetNotificationsDue(n int) {
	c.notificationsDue.Set(float64(n))
}

func (c *Collector) RecordImport(success, skipped, failed int) {
	c.importRecords.With(prometheus.Labels{"result": "success"}).Add(float64(success))
	c.importRecords.With(prometheus.Labels{"result": "skipped"}).Add(float64(skipped))
	c.importRecords.With(prometheus.Labels{"result": "failed"}).Add(float64(failed))
}

func (c *Collector) RecordExport() {
	c.exportsTotal.Inc()
}
