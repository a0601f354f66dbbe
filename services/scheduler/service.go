package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrTaskExists      = errors.New("task already registered")
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskRunning     = errors.New("task already running")
	ErrInvalidSchedule = errors.New("invalid schedule")
)

const defaultTaskTimeout = 10 * time.Minute

// Task is a unit of scheduled work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

func (t TaskFunc) Name() string                  { return t.TaskName }
func (t TaskFunc) Run(ctx context.Context) error { return t.Fn(ctx) }

// TaskStatus is the last known outcome of a task.
type TaskStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Running   bool      `json:"running"`
	LastRunAt time.Time `json:"lastRunAt,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	NextRunAt time.Time `json:"nextRunAt,omitempty"`
}

type registeredTask struct {
	task     Task
	schedule string
	entry    cron.EntryID
}

// Service runs registered tasks on cron schedules. A task never overlaps
// with itself; a trigger that arrives while it runs is skipped.
type Service struct {
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	tasks    map[string]*registeredTask
	taskMu   sync.RWMutex
	inFlight map[string]bool
	status   map[string]TaskStatus
}

// NewService creates a stopped scheduler. Schedules accept five or six
// fields and descriptors such as "@every 30m" or "@hourly".
func NewService() *Service {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Service{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.Recover(cron.VerbosePrintfLogger(log.Default()))),
		),
		timeout:  defaultTaskTimeout,
		ctx:      context.Background(),
		tasks:    make(map[string]*registeredTask),
		inFlight: make(map[string]bool),
		status:   make(map[string]TaskStatus),
	}
}

// Register adds a task on schedule. An empty schedule registers a task that
// only runs through RunNow.
func (s *Service) Register(schedule string, task Task) error {
	name := task.Name()

	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrTaskExists, name)
	}
	var entry cron.EntryID
	if schedule != "" {
		var err error
		entry, err = s.cron.AddFunc(schedule, func() {
			if err := s.execute(name); err != nil && !errors.Is(err, ErrTaskRunning) {
				log.Printf("[scheduler] task %s failed: %v", name, err)
			}
		})
		if err != nil {
			return fmt.Errorf("%w %q for %s: %v", ErrInvalidSchedule, schedule, name, err)
		}
	}
	s.tasks[name] = &registeredTask{task: task, schedule: schedule, entry: entry}
	s.status[name] = TaskStatus{Name: name, Schedule: schedule}
	log.Printf("[scheduler] registered task %s schedule=%q", name, schedule)
	return nil
}

// Start begins firing scheduled tasks. Tasks receive a context derived from ctx.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true
	log.Println("[scheduler] Scheduler service started")
}

// Stop halts scheduling and waits for running tasks until ctx expires.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] Scheduler service stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] Scheduler service stopped (timeout)")
	}
}

// RunNow executes a task immediately, outside its schedule.
func (s *Service) RunNow(name string) error {
	log.Printf("[scheduler] manually running task %s", name)
	return s.execute(name)
}

// Status reports every registered task.
func (s *Service) Status() []TaskStatus {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()

	out := make([]TaskStatus, 0, len(s.status))
	for name, st := range s.status {
		if rt, ok := s.tasks[name]; ok && rt.entry != 0 {
			st.NextRunAt = s.cron.Entry(rt.entry).Next
		}
		st.Running = s.inFlight[name]
		out = append(out, st)
	}
	return out
}

func (s *Service) execute(name string) error {
	s.taskMu.Lock()
	rt, ok := s.tasks[name]
	if !ok {
		s.taskMu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	if s.inFlight[name] {
		s.taskMu.Unlock()
		log.Printf("[scheduler] task %s still running, skipping", name)
		return ErrTaskRunning
	}
	s.inFlight[name] = true
	s.taskMu.Unlock()

	s.mu.RLock()
	parent := s.ctx
	s.wg.Add(1)
	s.mu.RUnlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	err := rt.task.Run(ctx)

	s.taskMu.Lock()
	s.inFlight[name] = false
	st := s.status[name]
	st.LastRunAt = start.UTC()
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
	s.status[name] = st
	s.taskMu.Unlock()

	if err == nil {
		log.Printf("[scheduler] task %s completed in %s", name, time.Since(start).Round(time.Millisecond))
	}
	return err
}
