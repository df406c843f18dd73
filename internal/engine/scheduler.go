package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/dirbust/internal/config"
	"github.com/maxvaer/dirbust/internal/filter"
	"github.com/maxvaer/dirbust/internal/scanner"
	"github.com/maxvaer/dirbust/internal/target"
)

// Scan-fatal errors returned by Scan.Wait.
var (
	ErrHostUnreachable = scanner.ErrHostUnreachable
	ErrTooManyFailures = errors.New("too many consecutive failures")
	ErrInterrupted     = errors.New("scan interrupted")
)

const defaultQueueFactor = 2

// State is the lifecycle state of a scan.
type State int32

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "aborted"
	}
}

// Executor performs the request for one URL.
type Executor interface {
	Execute(ctx context.Context, url string) scanner.Outcome
}

// LineSource yields wordlist lines lazily. Next returns false at the end or
// on error; Err distinguishes the two.
type LineSource interface {
	Next() (string, bool)
	Err() error
}

// Options tune a Scheduler beyond what ScanConfig carries. The zero value
// is usable.
type Options struct {
	// QueueFactor bounds queued candidates and unread results to
	// concurrency * QueueFactor. Defaults to 2.
	QueueFactor int
	// Gate holds workers back while paused. nil disables pausing.
	Gate *Gate
	// Skip reports candidates completed by an earlier run.
	Skip func(target.Candidate) bool
	// Total is the expected number of candidates, 0 if unknown.
	Total int
	// Preflight runs once before any candidate is dispatched.
	Preflight func(ctx context.Context) error
}

// Scheduler fans candidates out over a fixed pool of workers.
type Scheduler struct {
	exec       Executor
	classifier *filter.Classifier
	cfg        *config.ScanConfig
	opts       Options
}

// NewScheduler creates a scheduler. Concurrency, the consecutive failure
// limit and the cancellation grace period come from cfg.
func NewScheduler(exec Executor, classifier *filter.Classifier, cfg *config.ScanConfig, opts Options) *Scheduler {
	if opts.QueueFactor < 1 {
		opts.QueueFactor = defaultQueueFactor
	}
	return &Scheduler{exec: exec, classifier: classifier, cfg: cfg, opts: opts}
}

// Scan is a handle on one running enumeration.
type Scan struct {
	results  chan Result
	progress *Progress
	state    atomic.Int32
	done     chan struct{}

	mu       sync.Mutex
	err      error
	finished bool
	snapshot Snapshot

	stopDispatch context.CancelFunc
	consecutive  atomic.Int64
}

// Results returns the result stream. It is closed once every worker has
// exited. The caller must drain it.
func (s *Scan) Results() <-chan Result { return s.results }

// Progress returns the live counters.
func (s *Scan) Progress() *Progress { return s.progress }

// State returns the current lifecycle state.
func (s *Scan) State() State { return State(s.state.Load()) }

// Wait blocks until the scan is over and returns the final counters and,
// for an aborted scan, the abort cause.
func (s *Scan) Wait() (Snapshot, error) {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.err
}

// abort records the first abort cause and stops dispatching.
func (s *Scan) abort(err error) {
	s.mu.Lock()
	if s.err == nil && !s.finished {
		s.err = err
		log.WithError(err).Debug("aborting scan")
	}
	s.mu.Unlock()
	s.stopDispatch()
}

// Start launches the scan and returns immediately. Canceling ctx stops
// dispatch at once; requests already in flight get the configured grace
// period before they are canceled too.
func (sc *Scheduler) Start(ctx context.Context, lines LineSource) *Scan {
	bound := sc.cfg.Concurrency * sc.opts.QueueFactor

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	reqCtx, cancelRequests := context.WithCancel(context.WithoutCancel(ctx))

	s := &Scan{
		results:      make(chan Result, bound),
		progress:     &Progress{},
		done:         make(chan struct{}),
		stopDispatch: stopDispatch,
	}
	s.progress.SetTotal(int64(sc.opts.Total))
	s.state.Store(int32(Running))

	candidates := make(chan target.Candidate, bound)

	go sc.produce(dispatchCtx, s, lines, candidates)

	var wg sync.WaitGroup
	for i := 0; i < sc.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.work(dispatchCtx, reqCtx, s, candidates)
		}()
	}

	// Grace timer: once dispatch stops early, in-flight requests are
	// canceled after the grace period.
	go func() {
		select {
		case <-dispatchCtx.Done():
		case <-s.done:
			return
		}
		timer := time.NewTimer(sc.cfg.GracePeriod)
		defer timer.Stop()
		select {
		case <-timer.C:
			cancelRequests()
		case <-s.done:
		}
	}()

	go func() {
		wg.Wait()

		s.mu.Lock()
		if s.err == nil && ctx.Err() != nil {
			s.err = ErrInterrupted
		}
		s.finished = true
		s.snapshot = s.progress.Snapshot()
		if s.err != nil {
			s.state.Store(int32(Aborted))
		} else {
			s.state.Store(int32(Completed))
		}
		s.mu.Unlock()

		close(s.results)
		close(s.done)
		stopDispatch()
		cancelRequests()
	}()

	return s
}

// produce reads the wordlist lazily and feeds candidates to the workers.
// The bounded channel keeps it at most a few candidates ahead.
func (sc *Scheduler) produce(ctx context.Context, s *Scan, lines LineSource, out chan<- target.Candidate) {
	defer close(out)

	if sc.opts.Preflight != nil {
		if err := sc.opts.Preflight(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, ErrHostUnreachable) {
				err = fmt.Errorf("%w: %v", ErrHostUnreachable, err)
			}
			s.abort(err)
			return
		}
	}

	lineNo := 0
	for ctx.Err() == nil {
		line, ok := lines.Next()
		if !ok {
			break
		}
		lineNo++
		for _, c := range target.ResolveAt(lineNo, line, sc.cfg) {
			if sc.opts.Skip != nil && sc.opts.Skip(c) {
				s.progress.skip()
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}
	if ctx.Err() != nil {
		return
	}
	if err := lines.Err(); err != nil {
		s.abort(err)
	}
}

func (sc *Scheduler) work(dispatchCtx, reqCtx context.Context, s *Scan, in <-chan target.Candidate) {
	for {
		var c target.Candidate
		select {
		case next, ok := <-in:
			if !ok {
				return
			}
			c = next
		case <-dispatchCtx.Done():
			return
		}
		if dispatchCtx.Err() != nil {
			return
		}
		if sc.opts.Gate != nil {
			if err := sc.opts.Gate.Wait(dispatchCtx); err != nil {
				return
			}
		}

		out := sc.exec.Execute(reqCtx, c.URL)
		if out.Failure == scanner.FailureCanceled {
			continue
		}
		sc.trackFailures(s, out)

		verdict, reason := sc.classifier.Classify(out)
		// Counted before publishing so a consumer's snapshot covers every
		// result it has received.
		s.progress.Record(verdict)
		select {
		case s.results <- Result{Candidate: c, Outcome: out, Verdict: verdict, Reason: reason}:
		case <-reqCtx.Done():
			return
		}
	}
}

// trackFailures aborts the scan once MaxFailures transport failures happen
// in a row. Any response resets the streak.
func (sc *Scheduler) trackFailures(s *Scan, out scanner.Outcome) {
	if out.OK() {
		s.consecutive.Store(0)
		return
	}
	if !out.Failure.Transport() {
		return
	}
	n := s.consecutive.Add(1)
	if sc.cfg.MaxFailures > 0 && n >= int64(sc.cfg.MaxFailures) {
		s.abort(fmt.Errorf("%w: %d in a row, last: %v", ErrTooManyFailures, n, out.Err))
	}
}
