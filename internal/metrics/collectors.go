package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stockadvisor/pkg/logger"
)

// CatalogSource reports the discovered tool catalog size
type CatalogSource interface {
	Size() int
	Started() bool
}

// UserCounter reports how many API users are registered
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// StateCollector exposes point-in-time advisor state as gauges
type StateCollector struct {
	log     *logger.Logger
	catalog CatalogSource
	users   UserCounter

	catalogSize   *prometheus.Desc
	bridgeStarted *prometheus.Desc
	totalUsers    *prometheus.Desc
}

// NewStateCollector creates the collector; either source may be nil
func NewStateCollector(log *logger.Logger, catalog CatalogSource, users UserCounter) *StateCollector {
	return &StateCollector{
		log:     log,
		catalog: catalog,
		users:   users,

		catalogSize: prometheus.NewDesc(
			"advisor_tool_catalog_size",
			"Number of tools discovered from the tool server",
			nil, nil,
		),
		bridgeStarted: prometheus.NewDesc(
			"advisor_tool_bridge_started",
			"Tool bridge state (1=started, 0=degraded or closed)",
			nil, nil,
		),
		totalUsers: prometheus.NewDesc(
			"advisor_registered_users",
			"Number of registered API users",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.catalogSize
	ch <- c.bridgeStarted
	ch <- c.totalUsers
}

// Collect implements prometheus.Collector
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	if c.catalog != nil {
		started := 0.0
		if c.catalog.Started() {
			started = 1
		}
		ch <- prometheus.MustNewConstMetric(c.catalogSize, prometheus.GaugeValue, float64(c.catalog.Size()))
		ch <- prometheus.MustNewConstMetric(c.bridgeStarted, prometheus.GaugeValue, started)
	}

	if c.users != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		count, err := c.users.Count(ctx)
		if err != nil {
			c.log.Warnf("Failed to collect user count metric: %v", err)
			return
		}
		ch <- prometheus.MustNewConstMetric(c.totalUsers, prometheus.GaugeValue, float64(count))
	}
}
