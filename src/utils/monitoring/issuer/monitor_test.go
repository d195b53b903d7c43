package monitor_issuer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

func TestMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}

type MonitorTestSuite struct {
	suite.Suite
}

func (s *MonitorTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *MonitorTestSuite) get(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	c.Writer.WriteHeaderNow()
	return w
}

func (s *MonitorTestSuite) TestHealthDisabledByDefault() {
	monitor := NewMonitor()
	monitor.Report.Bulk.State.ConsecutiveFailures.Store(100)
	s.Require().True(monitor.IsOK())
	s.Require().Equal(http.StatusOK, s.get(monitor.OnGetHealth).Code)
}

func (s *MonitorTestSuite) TestHealthAfterConsecutiveFailures() {
	monitor := NewMonitor().WithMaxConsecutiveFailures(3)

	monitor.Report.Bulk.State.ConsecutiveFailures.Store(2)
	s.Require().True(monitor.IsOK())

	monitor.Report.Bulk.State.ConsecutiveFailures.Store(3)
	s.Require().False(monitor.IsOK())
	s.Require().Equal(http.StatusServiceUnavailable, s.get(monitor.OnGetHealth).Code)

	monitor.Report.Bulk.State.ConsecutiveFailures.Store(0)
	s.Require().Equal(http.StatusOK, s.get(monitor.OnGetHealth).Code)
}

func (s *MonitorTestSuite) TestState() {
	monitor := NewMonitor()
	monitor.Report.Issuer.State.CredentialsIssued.Add(2)
	monitor.Report.Bulk.State.EntriesQueued.Store(5)

	w := s.get(monitor.OnGetState)
	s.Require().Equal(http.StatusOK, w.Code)

	var state map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &state))
	s.Require().Contains(state, "issuer")
	s.Require().Contains(state, "bulk")
}

func (s *MonitorTestSuite) TestCollector() {
	monitor := NewMonitor()
	monitor.Report.Bulk.State.EntriesSucceeded.Inc()

	registry := prometheus.NewRegistry()
	s.Require().NoError(registry.Register(monitor.GetPrometheusCollector()))

	families, err := registry.Gather()
	s.Require().NoError(err)
	s.Require().NotEmpty(families)
}
