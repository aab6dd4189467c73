package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"codeberg.org/snonux/vocabaudio/internal/cache"
	"codeberg.org/snonux/vocabaudio/internal/config"
	"codeberg.org/snonux/vocabaudio/internal/scheduler"
)

// Watch runs the periodic sync until ctx is done or the process receives
// SIGINT or SIGTERM. Changes to the config file enable, disable or re-time
// the timer.
func (p *Processor) Watch(ctx context.Context) error {
	s := scheduler.New(p.scheduledRun, p.logger)
	defer s.Shutdown()

	if err := p.applyConfig(s); err != nil {
		p.logger.Error("initial config not applied", "error", err)
		return err
	}

	if file := p.v.ConfigFileUsed(); file != "" {
		p.v.OnConfigChange(func(e fsnotify.Event) {
			p.logger.Info("config file changed", "file", e.Name, "op", e.Op.String())
			if err := p.applyConfig(s); err != nil {
				p.logger.Warn("config change not applied", "error", err)
			}
		})
		p.v.WatchConfig()
		fmt.Printf("Watching %s for changes\n", file)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Press Ctrl+C to stop")
	<-ctx.Done()
	fmt.Println("\nStopping periodic sync")
	return nil
}

// applyConfig brings the scheduler in line with the current configuration.
// An invalid configuration disables the timer until it is fixed.
func (p *Processor) applyConfig(s *scheduler.Scheduler) error {
	cfg, err := config.Load(p.v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error, periodic sync disabled: %v\n", err)
		p.logger.Error("invalid configuration", "error", err)
		if derr := s.Disable(); derr != nil {
			return derr
		}
		return err
	}

	if !cfg.Periodic {
		fmt.Printf("Periodic sync is off (set %s to enable it)\n", config.KeyPeriodic)
		return s.Disable()
	}

	fmt.Printf("Periodic sync every %d minute(s), at most %d download(s) per run\n", cfg.IntervalMinutes, cfg.MaxPerRun)
	return s.Reconfigure(cfg.Interval())
}

// scheduledRun is the scheduler tick: it syncs the words of the active
// note, or of every note in the target folder when no note is active.
func (p *Processor) scheduledRun(ctx context.Context) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}

	var files []string
	if p.flags.ActiveFile != "" {
		note, err := notePath(fs, p.flags.ActiveFile)
		if err != nil {
			return err
		}
		exists, err := fs.Exists(note)
		if err != nil {
			return err
		}
		if !exists {
			p.logger.Info("active note missing, nothing to sync", "note", note)
			return nil
		}
		files = []string{note}
	}

	words, err := p.collectWords(cfg, fs, files)
	if err != nil {
		return err
	}

	report, err := p.runSync(ctx, cfg, fs, words, "scheduled")
	if errors.Is(err, cache.ErrSyncInProgress) {
		p.logger.Info("previous sync still running, tick skipped")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("[%s] %d downloaded, %d skipped, %d failed, %d deferred\n",
		time.Now().Format("15:04:05"), report.Downloaded, report.Skipped, report.Failed, report.Deferred)
	return nil
}
