package bulk

import (
	"github.com/skillchain/issuer/src/utils/backend"
	"github.com/skillchain/issuer/src/utils/config"
	"github.com/skillchain/issuer/src/utils/monitoring"
	monitor_issuer "github.com/skillchain/issuer/src/utils/monitoring/issuer"
	"github.com/skillchain/issuer/src/utils/task"
	"github.com/skillchain/issuer/src/workflow"
)

type Controller struct {
	*task.Task

	Runner   *Runner
	Pipeline *Pipeline
	Monitor  *monitor_issuer.Monitor
}

// Sets up bulk issuance: the runner, its pipeline and optionally the status server
func NewController(config *config.Config, client workflow.Backend) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	self.Monitor = monitor_issuer.NewMonitor().
		WithMaxConsecutiveFailures(config.Monitor.MaxConsecutiveFailures)

	self.Pipeline, err = NewPipeline(&config.Workflow, client)
	if err != nil {
		return
	}
	self.Pipeline.WithMonitor(self.Monitor)

	self.Runner = NewRunner(config).
		WithPipeline(self.Pipeline).
		WithMonitor(self.Monitor).
		WithCredentials(backend.CredentialsFromConfig(&config.Credentials))

	self.Task = self.Task.
		WithSubtask(self.Runner.Task)

	if config.Bulk.ReportInterval > 0 {
		self.Task = self.Task.
			WithPeriodicSubtaskFunc(config.Bulk.ReportInterval, self.report)
	}

	if config.Monitor.Enabled {
		server := monitoring.NewServer(config).
			WithMonitor(self.Monitor)

		self.Task = self.Task.
			WithSubtask(server.Task)
	}

	return
}

func (self *Controller) WithCredentials(credentials backend.Credentials) *Controller {
	self.Runner.WithCredentials(credentials)
	return self
}

func (self *Controller) WithJournal(journal workflow.Recorder) *Controller {
	self.Pipeline.WithJournal(journal)
	return self
}

// Logs progress while anything is queued or processing
func (self *Controller) report() error {
	state := &self.Monitor.GetReport().Bulk.State
	queued, processing := state.EntriesQueued.Load(), state.EntriesProcessing.Load()
	if queued == 0 && processing == 0 {
		return nil
	}

	self.Log.WithField("queued", queued).
		WithField("processing", processing).
		WithField("succeeded", state.EntriesSucceeded.Load()).
		WithField("failed", state.EntriesFailed.Load()).
		Info("Bulk progress")
	return nil
}
