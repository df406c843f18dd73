package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/maxvaer/dirbust/internal/config"
	"github.com/maxvaer/dirbust/internal/engine"
	"github.com/maxvaer/dirbust/internal/filter"
	"github.com/maxvaer/dirbust/internal/hook"
	"github.com/maxvaer/dirbust/internal/output"
	"github.com/maxvaer/dirbust/internal/resume"
	"github.com/maxvaer/dirbust/internal/scanner"
	"github.com/maxvaer/dirbust/internal/target"
	"github.com/maxvaer/dirbust/internal/wordlist"
)

// Run executes one scan end to end: it validates opts, streams the
// wordlist through the engine and writes results as they arrive. For an
// aborted scan the abort cause is returned after the partial results and
// footer have been written.
func Run(ctx context.Context, opts *config.Options) error {
	// 1. Validate configuration.
	cfg, err := config.Build(opts)
	if err != nil {
		return err
	}

	// 2. Size the wordlist for progress reporting, then open it lazily.
	lineCount, err := wordlist.Count(opts.WordlistPath)
	if err != nil {
		return err
	}
	total := target.Count(lineCount, cfg)

	src, err := wordlist.Open(opts.WordlistPath)
	if err != nil {
		return err
	}
	defer src.Close()

	// 3. Resume support.
	var state *resume.State
	var skip func(target.Candidate) bool
	if opts.ResumeFile != "" {
		state, err = resume.Open(opts.ResumeFile, cfg.BaseURL.String(), total)
		if err != nil {
			return err
		}
		if n := state.Len(); n > 0 {
			log.Infof("Resuming: skipping %d already completed candidates", n)
		}
		skip = func(c target.Candidate) bool { return state.IsCompleted(c.Key()) }
	}

	// 4. Output writer.
	out, err := output.New(output.Options{
		File:     opts.OutputFile,
		Format:   opts.OutputFormat,
		NoColor:  opts.NoColor,
		NoStatus: opts.NoStatus,
		NoError:  opts.NoError,
		Quiet:    opts.Quiet,
		Ordered:  opts.Ordered,
	})
	if err != nil {
		return err
	}
	defer out.Close()

	if !opts.Quiet {
		output.PrintBanner(os.Stderr, cfg, opts.WordlistPath, lineCount, opts.NoColor)
	}
	if err := out.WriteHeader(); err != nil {
		return err
	}

	// 5. Requester, throttle and pause toggle. Keypresses cannot be read
	// when the wordlist itself comes from stdin.
	throttler := scanner.NewThrottler(cfg.RateLimit, cfg.AdaptiveThrottle)
	req := scanner.NewRequester(cfg, throttler)

	var bar *output.ProgressBar
	if !opts.Quiet && !opts.NoProgress {
		bar = output.NewProgressBar(os.Stderr, int64(total), opts.NoColor)
	}

	onResult := hook.NewRunner(opts.OnResult)

	var gate *engine.Gate
	if opts.WordlistPath != wordlist.Stdin {
		var cleanup func()
		gate, cleanup = startStdinToggle(bar)
		defer cleanup()
	}

	// 6. Run the engine and drain its results.
	sched := engine.NewScheduler(req, filter.NewClassifier(cfg), cfg, engine.Options{
		Gate:      gate,
		Skip:      skip,
		Total:     total,
		Preflight: req.Preflight,
	})

	start := time.Now()
	scan := sched.Start(ctx, src)

	var writeErr error
	for result := range scan.Results() {
		if state != nil && result.Verdict != filter.Error {
			state.MarkCompleted(result.Candidate.Key())
		}
		if writeErr == nil && result.Verdict != filter.Filtered {
			bar.Clear()
			writeErr = out.WriteResult(&result)
		}
		if result.Verdict == filter.Found {
			onResult.Run(ctx, &result)
		}
		bar.Update(scan.Progress().Snapshot())
	}
	snap, scanErr := scan.Wait()
	bar.Finish()

	if writeErr != nil {
		return fmt.Errorf("writing results: %w", writeErr)
	}

	// 7. Keep the resume file only while there is something left to do.
	if state != nil {
		if scanErr == nil {
			if err := state.Remove(); err != nil {
				log.WithError(err).Warn("Could not remove resume file")
			}
		} else if err := state.Save(); err != nil {
			log.WithError(err).Warn("Could not save resume file")
		} else {
			log.Infof("Progress saved to %s, rerun with --resume-file to continue", opts.ResumeFile)
		}
	}

	// 8. Footer.
	stats := output.NewStats(snap, time.Since(start), scanErr)
	if err := out.WriteFooter(stats); err != nil {
		return err
	}
	return scanErr
}
