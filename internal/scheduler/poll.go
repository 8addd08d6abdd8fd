package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/MrSnakeDoc/boardwatch/internal/logger"
	"github.com/MrSnakeDoc/boardwatch/internal/pipeline"
)

// Triggers recorded on each poll cycle.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// Cycler runs one poll cycle.
type Cycler interface {
	RunCycle(ctx context.Context, trigger string) (pipeline.Report, error)
}

// PollScheduler runs poll cycles on a cron schedule and on demand.
// Cycles are serialized: a tick arriving during a cycle is coalesced.
type PollScheduler struct {
	cron          *cron.Cron
	cycler        Cycler
	logger        logger.Logger
	schedule      string
	pollOnStart   bool
	ticks         chan string
	manualTrigger chan struct{}
	stopCh        chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
}

// NewPollScheduler validates the 5-field cron expression.
func NewPollScheduler(
	cycler Cycler,
	log logger.Logger,
	schedule string,
	pollOnStart bool,
	manualTrigger chan struct{},
) (*PollScheduler, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log: log})))
	s := &PollScheduler{
		cron:          c,
		cycler:        cycler,
		logger:        log,
		schedule:      schedule,
		pollOnStart:   pollOnStart,
		ticks:         make(chan string, 1),
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
	if _, err := c.AddFunc(schedule, func() { s.tick(TriggerSchedule) }); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the cron and the cycle loop. It does not block.
func (s *PollScheduler) Start(ctx context.Context) {
	if s.pollOnStart {
		s.tick(TriggerStartup)
	}
	go s.loop(ctx)
	s.cron.Start()
	s.logger.Info("poll scheduler started", logger.String("schedule", s.schedule))
}

// Stop halts the cron and waits for an in-flight cycle to finish.
func (s *PollScheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		close(s.stopCh)
	})
	<-s.done
}

// tick never blocks; a pending tick absorbs new ones.
func (s *PollScheduler) tick(trigger string) {
	select {
	case s.ticks <- trigger:
	default:
		s.logger.Debug("poll cycle already pending, tick dropped", logger.String("trigger", trigger))
	}
}

func (s *PollScheduler) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case trigger := <-s.ticks:
			s.run(ctx, trigger)
		case <-s.manualTrigger:
			s.logger.Info("manual poll triggered")
			s.run(ctx, TriggerManual)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *PollScheduler) run(ctx context.Context, trigger string) {
	report, err := s.cycler.RunCycle(ctx, trigger)
	if err != nil {
		s.logger.Error("poll cycle failed",
			logger.String("trigger", trigger),
			logger.Error(err))
		return
	}
	s.logger.Debug("poll cycle finished",
		logger.String("trigger", trigger),
		logger.Bool("skipped", report.Skipped),
		logger.Duration("elapsed", report.Elapsed))
}

// cronLogger routes cron's own messages (mostly recovered panics) to zap.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, logger.Error(err), logger.String("details", fmt.Sprint(keysAndValues...)))
}
