package processor

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/snonux/vocabaudio/internal/archive"
	"codeberg.org/snonux/vocabaudio/internal/models"
)

// ArchiveCache moves the cache folder into the vault's archive folder. The
// next sync downloads every word again.
func (p *Processor) ArchiveCache(ctx context.Context) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}
	dir, err := fs.Abs(cfg.CacheDir)
	if err != nil {
		return err
	}

	archived, err := archive.Folder(dir, time.Now())
	if err != nil {
		return fmt.Errorf("failed to archive cache: %w", err)
	}

	p.logger.Info("cache archived", "from", dir, "to", archived)
	fmt.Printf("Audio cache archived to: %s\n", archived)
	return nil
}

// Models prints the TTS models the configured key can use.
func (p *Processor) Models(ctx context.Context) error {
	cfg, _, err := p.loadConfig()
	if err != nil {
		return err
	}

	names, err := models.NewLister(cfg.OpenAIKey, p.openAIBaseURL).SpeechModels(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Text-to-Speech (TTS) Models:")
	if len(names) == 0 {
		fmt.Println("  No TTS models found")
		return nil
	}
	for _, name := range names {
		marker := " "
		if name == cfg.OpenAIModel {
			marker = "*"
		}
		fmt.Printf(" %s %s\n", marker, name)
	}
	return nil
}
