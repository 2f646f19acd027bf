package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"creditwatch/internal"
	"creditwatch/internal/errors"
)

// Worker is one periodic monitoring job driven by the scheduler
type Worker interface {
	Name() string
	Schedule() string
	RunOnce(ctx context.Context) error
}

// Scheduler drives registered workers on their cron schedules. A failed run
// is retried on a short interval until it succeeds or the scheduler stops;
// overlapping runs of the same worker are skipped.
type Scheduler struct {
	cron          *cron.Cron
	retryInterval time.Duration
	logger        *internal.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	running map[string]*sync.Mutex
	workers []Worker
}

// NewScheduler creates a scheduler with the given retry interval
func NewScheduler(retryInterval time.Duration, logger *internal.Logger) *Scheduler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:          cron.New(),
		retryInterval: retryInterval,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		running:       make(map[string]*sync.Mutex),
	}
}

// Register adds a worker. Must be called before Start.
func (s *Scheduler) Register(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, w)
	s.running[w.Name()] = &sync.Mutex{}
}

// Start schedules all registered workers and kicks off an immediate first
// run of each
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.InternalError("scheduler already started")
	}

	for _, w := range s.workers {
		worker := w
		if _, err := s.cron.AddFunc(worker.Schedule(), func() {
			s.runWorker(worker)
		}); err != nil {
			return errors.Wrapf(err, "invalid schedule %q for worker %s", worker.Schedule(), worker.Name())
		}
		s.logger.Info("worker %s scheduled (%s)", worker.Name(), worker.Schedule())

		// First run happens now rather than at the first cron tick
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runWorker(worker)
		}()
	}

	s.cron.Start()
	s.started = true
	return nil
}

// Stop cancels in-flight runs and waits for them to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.cancel()
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.wg.Wait()
	s.logger.Info("monitor scheduler stopped")
}

// runWorker executes one tick, retrying on failure until success or
// shutdown. A tick that arrives while the previous one is still running is
// dropped.
func (s *Scheduler) runWorker(w Worker) {
	lock := s.running[w.Name()]
	if !lock.TryLock() {
		s.logger.Warn("worker %s still running, skipping tick", w.Name())
		return
	}
	defer lock.Unlock()

	for {
		err := w.RunOnce(s.ctx)
		if err == nil {
			return
		}
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Error("worker %s failed: %v (retrying in %s)", w.Name(), err, s.retryInterval)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.retryInterval):
		}
	}
}
