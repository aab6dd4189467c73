package cli

import "codeberg.org/snonux/vocabaudio/internal/config"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	VaultPath string
	CacheDir  string
	Verbose   bool
	NoLog     bool

	// annotate
	Rewrite bool

	// sync
	WordsFile   string
	MaxPerRun   int
	TTSFallback bool

	// watch
	ActiveFile      string
	IntervalMinutes int

	// status
	Limit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	d := config.Defaults()
	return &Flags{
		VaultPath:       d.VaultPath,
		CacheDir:        d.CacheDir,
		MaxPerRun:       d.MaxPerRun,
		IntervalMinutes: d.IntervalMinutes,
		Limit:           10,
	}
}
