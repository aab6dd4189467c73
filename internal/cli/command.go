package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabaudio/internal"
	"codeberg.org/snonux/vocabaudio/internal/config"
)

// Runner carries out the subcommands.
type Runner interface {
	Annotate(ctx context.Context, files []string) error
	AnnotateLine(ctx context.Context, file string, line int) error
	Sync(ctx context.Context, files []string) error
	Resolve(ctx context.Context, word string) error
	Watch(ctx context.Context) error
	Status(ctx context.Context) error
	ArchiveCache(ctx context.Context) error
	Models(ctx context.Context) error
}

// RunnerFactory builds the Runner once flags and configuration are parsed.
type RunnerFactory func() (Runner, error)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vocabaudio",
		Short: "Pronunciation blocks and audio cache for vocabulary notes",
		Long: `vocabaudio annotates vocabulary words in markdown notes with
pronunciation blocks and keeps a local cache of pronunciation audio files.

Examples:
  vocabaudio annotate                     # Annotate every note in the target folder
  vocabaudio annotate-line words.md 12    # Annotate the word on line 12
  vocabaudio sync --words words.txt       # Download audio for notes and a word list
  vocabaudio resolve wisdom               # Print the playable source for a word
  vocabaudio watch --active today.md      # Sync periodically until interrupted
  vocabaudio status                       # Show recent sync runs`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newAnnotateCommand(flags, newRunner),
		newAnnotateLineCommand(newRunner),
		newSyncCommand(flags, newRunner),
		newResolveCommand(newRunner),
		newWatchCommand(flags, newRunner),
		newStatusCommand(flags, newRunner),
		newArchiveCacheCommand(newRunner),
		newModelsCommand(newRunner),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.vocabaudio.yaml)")
	cmd.PersistentFlags().StringVar(&flags.VaultPath, "vault", flags.VaultPath, "Vault root directory")
	cmd.PersistentFlags().StringVar(&flags.CacheDir, "cache-dir", flags.CacheDir, "Audio cache folder inside the vault")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Keep debug records in the log file")
	cmd.PersistentFlags().BoolVar(&flags.NoLog, "no-log", false, "Do not write the JSON log file")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

// bindFlagsToViper binds the flags cmd knows about. Subcommands sharing a
// key bind again when they run, so the executing command's flag wins.
func bindFlagsToViper(cmd *cobra.Command) {
	bindings := map[string]string{
		"vault":        config.KeyVaultPath,
		"cache-dir":    config.KeyCacheDir,
		"max-per-run":  config.KeyMaxPerRun,
		"tts-fallback": config.KeyTTSFallback,
		"interval":     config.KeyIntervalMinutes,
	}
	for name, key := range bindings {
		if flag := lookupFlag(cmd, name); flag != nil {
			viper.BindPFlag(key, flag)
		}
	}
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.PersistentFlags().Lookup(name)
}

// run binds the executing command's flags and hands over to the Runner.
func run(cmd *cobra.Command, newRunner RunnerFactory, fn func(Runner) error) error {
	bindFlagsToViper(cmd)
	r, err := newRunner()
	if err != nil {
		return err
	}
	return fn(r)
}

func newAnnotateCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [files...]",
		Short: "Insert missing pronunciation blocks",
		Long: `Insert a pronunciation block below every word marker that lacks one.
Without arguments every markdown note below the target folder is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Annotate(cmd.Context(), args)
			})
		},
	}
	cmd.Flags().BoolVar(&flags.Rewrite, "rewrite", false, "Rewrite whole files, collapsing blank lines below each word")
	return cmd
}

func newAnnotateLineCommand(newRunner RunnerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate-line FILE LINE",
		Short: "Insert a pronunciation block for the word on one line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}
			return run(cmd, newRunner, func(r Runner) error {
				return r.AnnotateLine(cmd.Context(), args[0], line)
			})
		},
	}
}

// parseLine converts a 1-based line number into a 0-based index.
func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line number %q: must be a positive integer", s)
	}
	return n - 1, nil
}

func newSyncCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [files...]",
		Short: "Download missing pronunciation audio",
		Long: `Collect the words of the given notes (default: every note below the
target folder) and download the audio files missing from the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Sync(cmd.Context(), args)
			})
		},
	}
	cmd.Flags().StringVar(&flags.WordsFile, "words", "", "Also sync words from a word list (one per line, 'word = note' allowed)")
	cmd.Flags().IntVar(&flags.MaxPerRun, "max-per-run", flags.MaxPerRun, "Maximum number of downloads per run")
	cmd.Flags().BoolVar(&flags.TTSFallback, "tts-fallback", false, "Generate audio with OpenAI TTS when the download fails")
	return cmd
}

func newResolveCommand(newRunner RunnerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve WORD",
		Short: "Print the playable source for a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Resolve(cmd.Context(), args[0])
			})
		},
	}
}

func newWatchCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync periodically, following configuration changes",
		Long: `Run the periodic sync until interrupted. Editing the config file
enables, disables or re-times the timer without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Watch(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&flags.ActiveFile, "active", "", "Only sync the words of this note")
	cmd.Flags().IntVar(&flags.IntervalMinutes, "interval", flags.IntervalMinutes, "Minutes between runs")
	cmd.Flags().IntVar(&flags.MaxPerRun, "max-per-run", flags.MaxPerRun, "Maximum number of downloads per run")
	return cmd
}

func newStatusCommand(flags *Flags, newRunner RunnerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Status(cmd.Context())
			})
		},
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", flags.Limit, "Number of runs to show")
	return cmd
}

func newArchiveCacheCommand(newRunner RunnerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "archive-cache",
		Short: "Move the audio cache aside so the next sync starts fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.ArchiveCache(cmd.Context())
			})
		},
	}
}

func newModelsCommand(newRunner RunnerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI TTS models available for the fallback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, newRunner, func(r Runner) error {
				return r.Models(cmd.Context())
			})
		},
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".vocabaudio" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vocabaudio")
	}

	// Environment variables, nested keys use '_': VOCABAUDIO_SYNC_MAX_PER_RUN
	viper.SetEnvPrefix("VOCABAUDIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv(config.KeyOpenAIKey, "VOCABAUDIO_AUDIO_OPENAI_KEY", "OPENAI_API_KEY")

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
