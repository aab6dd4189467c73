package audio

import (
	"log/slog"
	"net/url"
	"path"
	"strings"

	"codeberg.org/snonux/vocabaudio/internal/config"
	"codeberg.org/snonux/vocabaudio/internal/storage"
)

// CachePath returns the canonical cache location of word: {cacheDir}/{word}.{ext}.
func CachePath(cacheDir, word, ext string) string {
	return path.Join(cacheDir, word+"."+ext)
}

// OnlineURL substitutes the percent-encoded word into template.
func OnlineURL(template, word string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(word), "+", "%20")
	return strings.Replace(template, config.Placeholder, escaped, 1)
}

// Resolver maps words to playable sources.
type Resolver struct {
	storage storage.IO
	logger  *slog.Logger
}

// NewResolver creates a resolver reading cached files from s. A nil logger
// discards log output.
func NewResolver(s storage.IO, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{storage: s, logger: logger}
}

// Resolve returns a playable source for word. With PreferLocal set, a
// cached file is preferred when present and resolvable; every other case,
// including storage failures, falls back to the online URL.
func (r *Resolver) Resolve(cfg *config.Config, word string) string {
	online := OnlineURL(cfg.OnlineTemplate, word)
	if !cfg.PreferLocal || ValidateWord(word) != nil {
		return online
	}

	if local, ok := r.local(CachePath(cfg.CacheDir, word, cfg.AudioExt)); ok {
		return local
	}
	return online
}

func (r *Resolver) local(p string) (string, bool) {
	exists, err := r.storage.Exists(p)
	if err != nil {
		r.logger.Warn("cache check failed, using online source", "path", p, "error", err)
		return "", false
	}
	if !exists {
		return "", false
	}

	if pather, ok := r.storage.(storage.ResourcePather); ok {
		handle, err := pather.ResourcePath(p)
		if err == nil && handle != "" {
			return handle, true
		}
		r.logger.Warn("resource path resolution failed", "path", p, "error", err)
	}

	if indexer, ok := r.storage.(storage.Indexer); ok {
		if handle, found := indexer.Lookup(p); found {
			return handle, true
		}
		r.logger.Debug("cached file not indexed", "path", p)
	}

	return "", false
}
