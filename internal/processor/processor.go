package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabaudio/internal/annotate"
	"codeberg.org/snonux/vocabaudio/internal/audio"
	"codeberg.org/snonux/vocabaudio/internal/batch"
	"codeberg.org/snonux/vocabaudio/internal/cache"
	"codeberg.org/snonux/vocabaudio/internal/cli"
	"codeberg.org/snonux/vocabaudio/internal/config"
	"codeberg.org/snonux/vocabaudio/internal/document"
	"codeberg.org/snonux/vocabaudio/internal/history"
	"codeberg.org/snonux/vocabaudio/internal/logging"
	"codeberg.org/snonux/vocabaudio/internal/matcher"
	"codeberg.org/snonux/vocabaudio/internal/storage"
	"codeberg.org/snonux/vocabaudio/internal/transport"
)

// History path value that turns the ledger off.
const historyOff = "off"

// Processor handles the command logic
type Processor struct {
	flags     *cli.Flags
	v         *viper.Viper
	logger    *slog.Logger
	transport transport.Transport
	generator audio.Generator // overrides the configured TTS fallback
	delay     time.Duration

	openAIBaseURL string

	mu     sync.Mutex
	syncer *cache.Synchronizer
	root   string // vault root syncer writes to
}

var _ cli.Runner = (*Processor)(nil)

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithTransport replaces the HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(p *Processor) { p.transport = t }
}

// WithGenerator sets the fallback generator used when the TTS fallback is
// enabled.
func WithGenerator(g audio.Generator) Option {
	return func(p *Processor) { p.generator = g }
}

// WithOpenAIBaseURL points the OpenAI clients at another endpoint.
func WithOpenAIBaseURL(u string) Option {
	return func(p *Processor) { p.openAIBaseURL = u }
}

// WithDelay overrides the pause between downloads.
func WithDelay(d time.Duration) Option {
	return func(p *Processor) { p.delay = d }
}

// NewProcessor creates a new processor reading its configuration from v.
func NewProcessor(flags *cli.Flags, v *viper.Viper, opts ...Option) *Processor {
	p := &Processor{
		flags: flags,
		v:     v,
		delay: cache.DefaultDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Discard().Logger
	}
	if p.transport == nil {
		p.transport = transport.NewHTTP(transport.DefaultOptions(), p.logger)
	}
	return p
}

// loadConfig reads the configuration as it is right now.
func (p *Processor) loadConfig() (*config.Config, *storage.FS, error) {
	cfg, err := config.Load(p.v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage.NewFS(cfg.VaultPath), nil
}

// notePath turns a command-line path into a vault-relative one. Relative
// paths are taken as vault-relative.
func notePath(fs *storage.FS, p string) (string, error) {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	rel, err := filepath.Rel(fs.Root(), p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the vault %s", p, fs.Root())
	}
	return filepath.ToSlash(rel), nil
}

// notes resolves files to vault-relative paths, defaulting to every note in
// the target folder.
func (p *Processor) notes(cfg *config.Config, fs *storage.FS, files []string) ([]string, error) {
	if len(files) == 0 {
		return fs.Markdown(cfg.TargetFolder)
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := notePath(fs, f)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// Annotate inserts missing pronunciation blocks into files.
func (p *Processor) Annotate(ctx context.Context, files []string) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return err
	}
	notes, err := p.notes(cfg, fs, files)
	if err != nil {
		return err
	}

	p.logger.Debug("annotating notes", "notes", len(notes), "pattern", m.Pattern(), "rewrite", p.flags.Rewrite)

	changed, inserted, errorCount := 0, 0, 0
	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := p.annotateFile(fs, note, m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error annotating '%s': %v\n", note, err)
			p.logger.Error("annotate failed", "note", note, "error", err)
			errorCount++
			continue
		}
		if n > 0 {
			fmt.Printf("  ✓ %s: %d block(s) inserted\n", note, n)
			changed++
			inserted += n
		}
	}

	// Print summary
	fmt.Printf("\n=== Annotation Summary ===\n")
	fmt.Printf("Notes scanned: %d\n", len(notes))
	fmt.Printf("Notes changed: %d\n", changed)
	fmt.Printf("Blocks inserted: %d\n", inserted)
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
	}
	fmt.Printf("==========================\n")

	if errorCount > 0 {
		return fmt.Errorf("%d note(s) could not be annotated", errorCount)
	}
	return nil
}

func (p *Processor) annotateFile(fs *storage.FS, note string, m *matcher.Matcher) (int, error) {
	if p.flags.Rewrite {
		content, err := fs.Read(note)
		if err != nil {
			return 0, err
		}
		rewritten, n, err := annotate.RewriteContent(content, m)
		if err != nil || n == 0 {
			return 0, err
		}
		return n, fs.WriteBinary(note, []byte(rewritten))
	}

	doc, err := document.Load(fs, note)
	if err != nil {
		return 0, err
	}
	result, err := annotate.AnnotateDocument(doc, m)
	if err != nil || !result.Changed() {
		return 0, err
	}
	return len(result.Inserted), document.Save(fs, note, doc)
}

// AnnotateLine inserts a block for the word on a single line (0-based).
func (p *Processor) AnnotateLine(ctx context.Context, file string, line int) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return err
	}
	note, err := notePath(fs, file)
	if err != nil {
		return err
	}

	doc, err := document.Load(fs, note)
	if err != nil {
		return err
	}
	ins, err := annotate.InsertAtLine(doc, line, m)
	if err != nil {
		return err
	}

	switch {
	case ins.Word == "":
		fmt.Printf("No word on line %d of %s\n", line+1, note)
		return nil
	case !ins.Inserted:
		fmt.Printf("'%s' already has a pronunciation block\n", ins.Word)
		return nil
	}

	if err := document.Save(fs, note, doc); err != nil {
		return err
	}
	fmt.Printf("Inserted pronunciation block for '%s' at line %d of %s\n", ins.Word, ins.Line+1, note)
	return nil
}

// Resolve prints the playable source of word.
func (p *Processor) Resolve(ctx context.Context, word string) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}
	fmt.Println(audio.NewResolver(fs, p.logger).Resolve(cfg, word))
	return nil
}

// Sync collects the words of files (and the word list, if given) and
// downloads the missing audio files.
func (p *Processor) Sync(ctx context.Context, files []string) error {
	cfg, fs, err := p.loadConfig()
	if err != nil {
		return err
	}

	words, err := p.collectWords(cfg, fs, files)
	if err != nil {
		return err
	}
	if p.flags.WordsFile != "" {
		entries, err := batch.ReadWordList(p.flags.WordsFile)
		if err != nil {
			return err
		}
		words = mergeWords(words, batch.Words(entries))
	}

	fmt.Printf("Syncing %d word(s) into %s\n", len(words), cfg.CacheDir)
	report, err := p.runSync(ctx, cfg, fs, words, "manual")
	if errors.Is(err, cache.ErrSyncInProgress) {
		fmt.Println("Another sync is already running")
		return nil
	}
	if err != nil {
		return err
	}

	printReport(len(words), report)
	return nil
}

// collectWords reads notes and returns their distinct words in document
// order.
func (p *Processor) collectWords(cfg *config.Config, fs *storage.FS, files []string) ([]string, error) {
	m, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}
	notes, err := p.notes(cfg, fs, files)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(notes))
	for _, note := range notes {
		text, err := fs.Read(note)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", note, err)
		}
		texts = append(texts, text)
	}
	return m.Collect(texts...), nil
}

func mergeWords(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, w := range append(append([]string(nil), a...), b...) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// synchronizer returns the synchronizer for the vault root, creating a new
// one when the root changed.
func (p *Processor) synchronizer(fs *storage.FS) *cache.Synchronizer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.syncer == nil || p.root != fs.Root() {
		p.syncer = cache.New(fs, p.transport, cache.WithDelay(p.delay), cache.WithLogger(p.logger))
		p.root = fs.Root()
	}
	return p.syncer
}

func (p *Processor) fallback(cfg *config.Config) (audio.Generator, error) {
	if !cfg.TTSFallback {
		return nil, nil
	}
	gen := p.generator
	if gen == nil {
		var err error
		gen, err = audio.NewGenerator(&audio.Config{
			Provider:      "openai",
			OutputFormat:  cfg.AudioExt,
			OpenAIKey:     cfg.OpenAIKey,
			OpenAIModel:   cfg.OpenAIModel,
			OpenAIVoice:   cfg.OpenAIVoice,
			OpenAIBaseURL: p.openAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
	}
	if err := gen.IsAvailable(); err != nil {
		return nil, fmt.Errorf("TTS fallback %s is not available: %w", gen.Name(), err)
	}
	return gen, nil
}

// runSync runs the synchronizer and records the outcome in the ledger.
func (p *Processor) runSync(ctx context.Context, cfg *config.Config, fs *storage.FS, words []string, origin string) (cache.Report, error) {
	var opts []cache.RunOption
	gen, err := p.fallback(cfg)
	if err != nil {
		return cache.Report{}, err
	}
	if gen != nil {
		opts = append(opts, cache.WithFallback(gen))
		p.logger.Debug("tts fallback enabled", "generator", gen.Name())
	}

	report, err := p.synchronizer(fs).Sync(ctx, cfg, words, opts...)
	if errors.Is(err, cache.ErrSyncInProgress) {
		return report, err
	}

	p.logger.Info("sync finished",
		"origin", origin,
		"words", len(words),
		"downloaded", report.Downloaded,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"deferred", report.Deferred,
		"error", err,
	)
	if recErr := p.record(cfg, origin, len(words), report, err); recErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to record sync run: %v\n", recErr)
		p.logger.Warn("history not recorded", "error", recErr)
	}
	return report, err
}

func (p *Processor) historyPath(cfg *config.Config) (string, error) {
	if cfg.HistoryPath == historyOff {
		return "", nil
	}
	if cfg.HistoryPath != "" {
		return cfg.HistoryPath, nil
	}
	dir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func (p *Processor) record(cfg *config.Config, origin string, words int, report cache.Report, runErr error) error {
	path, err := p.historyPath(cfg)
	if err != nil || path == "" {
		return err
	}
	ledger, err := history.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	run := history.Run{
		Trigger:    origin,
		Started:    report.Started,
		Finished:   report.Finished,
		Words:      words,
		Downloaded: report.Downloaded,
		Generated:  report.Generated,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		Deferred:   report.Deferred,
	}
	if runErr != nil {
		run.Err = runErr.Error()
	}
	for word, ferr := range report.Failures {
		run.Failures = append(run.Failures, history.Failure{Word: word, Error: ferr.Error()})
	}

	// The run context may be cancelled already; the record still belongs
	// to the ledger.
	_, err = ledger.Record(context.Background(), run)
	return err
}

func printReport(words int, report cache.Report) {
	fmt.Printf("\n=== Sync Summary ===\n")
	fmt.Printf("Total words: %d\n", words)
	fmt.Printf("Downloaded: %d\n", report.Downloaded)
	if report.Generated > 0 {
		fmt.Printf("Generated with TTS: %d\n", report.Generated)
	}
	fmt.Printf("Skipped (already cached): %d\n", report.Skipped)
	if report.Deferred > 0 {
		fmt.Printf("Deferred (run budget reached): %d\n", report.Deferred)
	}
	if report.Failed > 0 {
		fmt.Printf("Failed: %d\n", report.Failed)
		failed := make([]string, 0, len(report.Failures))
		for word := range report.Failures {
			failed = append(failed, word)
		}
		sort.Strings(failed)
		for _, word := range failed {
			fmt.Printf("  - %s: %v\n", word, report.Failures[word])
		}
	}
	fmt.Printf("====================\n")
}

// Status prints the most recent sync runs.
func (p *Processor) Status(ctx context.Context) error {
	cfg, _, err := p.loadConfig()
	if err != nil {
		return err
	}
	path, err := p.historyPath(cfg)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Sync history is turned off")
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No sync runs recorded yet")
		return nil
	}

	ledger, err := history.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runs, err := ledger.Recent(ctx, p.flags.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No sync runs recorded yet")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-9s  %d words: %d downloaded, %d skipped, %d failed, %d deferred (%s)\n",
			run.Started.Local().Format("2006-01-02 15:04:05"), run.Trigger, run.Words,
			run.Downloaded, run.Skipped, run.Failed, run.Deferred,
			run.Finished.Sub(run.Started).Round(time.Millisecond))
		if run.Err != "" {
			fmt.Printf("    error: %s\n", run.Err)
		}
		for _, f := range run.Failures {
			fmt.Printf("    - %s: %s\n", f.Word, f.Error)
		}
	}
	return nil
}
