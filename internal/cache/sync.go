package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codeberg.org/snonux/vocabaudio/internal/audio"
	"codeberg.org/snonux/vocabaudio/internal/config"
	"codeberg.org/snonux/vocabaudio/internal/storage"
	"codeberg.org/snonux/vocabaudio/internal/transport"
)

// DefaultDelay is the pause after each successful download.
const DefaultDelay = 300 * time.Millisecond

// Report counts the outcome of one run.
type Report struct {
	Downloaded int
	Generated  int // subset of Downloaded produced by the fallback generator
	Skipped    int
	Failed     int
	Deferred   int // words left for a later run once the budget was spent

	Failures map[string]error
	Started  time.Time
	Finished time.Time
}

// Synchronizer downloads missing cache entries. Only one run may be active
// at a time; overlapping calls return ErrSyncInProgress.
type Synchronizer struct {
	storage   storage.IO
	transport transport.Transport
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time

	running sync.Mutex
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Synchronizer) { s.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Synchronizer writing to st and fetching through tr.
func New(st storage.IO, tr transport.Transport, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		storage:   st,
		transport: tr,
		logger:    slog.New(slog.DiscardHandler),
		delay:     DefaultDelay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type runOptions struct {
	generator audio.Generator
}

// RunOption configures a single Sync call.
type RunOption func(*runOptions)

// WithFallback synthesises words the online source cannot deliver.
func WithFallback(g audio.Generator) RunOption {
	return func(o *runOptions) { o.generator = g }
}

// Sync makes sure each word has a cache file, in order, until cfg.MaxPerRun
// files were downloaded. Existing files are skipped without using the
// budget. A failed word is counted and the run moves on; only an unusable
// cache folder aborts the run.
func (s *Synchronizer) Sync(ctx context.Context, cfg *config.Config, words []string, opts ...RunOption) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrSyncInProgress
	}
	defer s.running.Unlock()

	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	report := Report{Failures: make(map[string]error), Started: s.now()}

	if err := s.ensureFolder(cfg.CacheDir); err != nil {
		report.Finished = s.now()
		return report, err
	}

	for i, word := range words {
		if report.Downloaded >= cfg.MaxPerRun {
			report.Deferred = len(words) - i
			s.logger.Info("download budget spent", "max_per_run", cfg.MaxPerRun, "deferred", report.Deferred)
			break
		}
		if err := ctx.Err(); err != nil {
			report.Finished = s.now()
			return report, err
		}

		outcome := s.syncWord(ctx, cfg, word, ro)
		switch outcome.kind {
		case outcomeSkipped:
			report.Skipped++
			continue
		case outcomeFailed:
			report.Failed++
			report.Failures[word] = outcome.err
			s.logger.Warn("word not cached", "word", word, "error", outcome.err)
			continue
		}

		report.Downloaded++
		if outcome.kind == outcomeGenerated {
			report.Generated++
		}
		s.logger.Info("cached pronunciation", "word", word, "generated", outcome.kind == outcomeGenerated)

		if report.Downloaded < cfg.MaxPerRun && i < len(words)-1 {
			if err := s.pause(ctx); err != nil {
				report.Finished = s.now()
				return report, err
			}
		}
	}

	report.Finished = s.now()
	return report, nil
}

func (s *Synchronizer) ensureFolder(dir string) error {
	exists, err := s.storage.Exists(dir)
	if err != nil {
		s.logger.Warn("cache folder check failed, creating it", "path", dir, "error", err)
	}
	if exists {
		return nil
	}
	if err := s.storage.CreateFolder(dir); err != nil {
		return &StorageError{Path: dir, Err: err}
	}
	return nil
}

type outcomeKind int

const (
	outcomeDownloaded outcomeKind = iota
	outcomeGenerated
	outcomeSkipped
	outcomeFailed
)

type outcome struct {
	kind outcomeKind
	err  error
}

func (s *Synchronizer) syncWord(ctx context.Context, cfg *config.Config, word string, ro runOptions) outcome {
	if err := audio.ValidateWord(word); err != nil {
		return outcome{kind: outcomeFailed, err: err}
	}

	target := audio.CachePath(cfg.CacheDir, word, cfg.AudioExt)
	exists, err := s.storage.Exists(target)
	if err != nil {
		// An unknown state must not lead to overwriting an entry.
		return outcome{kind: outcomeFailed, err: fmt.Errorf("failed to check %s: %w", target, err)}
	}
	if exists {
		return outcome{kind: outcomeSkipped}
	}

	url := audio.OnlineURL(cfg.OnlineTemplate, word)
	resp := s.transport.Get(ctx, url)

	data := resp.Body
	kind := outcomeDownloaded
	if !resp.OK() {
		fetchErr := resp.Err
		if fetchErr == nil {
			fetchErr = &HTTPError{URL: url, Status: resp.Status}
		}
		if ro.generator == nil {
			return outcome{kind: outcomeFailed, err: fetchErr}
		}

		generated, genErr := ro.generator.Generate(ctx, word)
		if genErr != nil {
			return outcome{kind: outcomeFailed, err: errors.Join(fetchErr, genErr)}
		}
		data = generated
		kind = outcomeGenerated
	}

	if err := s.storage.WriteBinary(target, data); err != nil {
		return outcome{kind: outcomeFailed, err: fmt.Errorf("failed to write %s: %w", target, err)}
	}
	return outcome{kind: kind}
}

func (s *Synchronizer) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
