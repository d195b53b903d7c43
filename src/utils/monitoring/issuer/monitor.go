package monitor_issuer

import (
	"net/http"

	"github.com/skillchain/issuer/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	Report    report.Report
	collector *Collector

	// Consecutive failed bulk entries after which the instance reports itself unhealthy, 0 disables
	maxConsecutiveFailures int64
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)
	self.Report = report.New()
	self.collector = NewCollector().WithMonitor(self)
	return
}

func (self *Monitor) WithMaxConsecutiveFailures(v int64) *Monitor {
	self.maxConsecutiveFailures = v
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func (self *Monitor) IsOK() bool {
	if self.maxConsecutiveFailures <= 0 {
		return true
	}
	return self.Report.Bulk.State.ConsecutiveFailures.Load() < self.maxConsecutiveFailures
}

func (self *Monitor) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
