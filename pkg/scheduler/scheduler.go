package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
)

// Job is the work a scheduler tick runs, typically one full batch pass
// over the race folder.
type Job func()

type Scheduler struct {
	c        *cron.Cron
	cronSpec string
}

// New wires a job onto a cron spec. Standard 5-field spec, runs in server
// local time.
func New(cronSpec string, job Job) (*Scheduler, error) {
	s := &Scheduler{
		c:        cron.New(),
		cronSpec: cronSpec,
	}
	_, err := s.c.AddFunc(cronSpec, func() {
		logger.Info("Scheduler tick: running batch job")
		job()
		logger.Info("Scheduler batch job done")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	logger.Info("Starting scheduler (cron=%s)", s.cronSpec)
	s.c.Start()
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
