package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabaudio/internal/config"
)

type recordingRunner struct {
	calls []string
	err   error
}

func (r *recordingRunner) record(call string) error {
	r.calls = append(r.calls, call)
	return r.err
}

func (r *recordingRunner) Annotate(ctx context.Context, files []string) error {
	return r.record("annotate " + strings.Join(files, ","))
}

func (r *recordingRunner) AnnotateLine(ctx context.Context, file string, line int) error {
	return r.record("annotate-line " + file + " " + string(rune('0'+line)))
}

func (r *recordingRunner) Sync(ctx context.Context, files []string) error {
	return r.record("sync " + strings.Join(files, ","))
}

func (r *recordingRunner) Resolve(ctx context.Context, word string) error {
	return r.record("resolve " + word)
}

func (r *recordingRunner) Watch(ctx context.Context) error {
	return r.record("watch")
}

func (r *recordingRunner) Status(ctx context.Context) error {
	return r.record("status")
}

func (r *recordingRunner) ArchiveCache(ctx context.Context) error {
	return r.record("archive-cache")
}

func (r *recordingRunner) Models(ctx context.Context) error {
	return r.record("models")
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, runner *recordingRunner, args ...string) (*Flags, error) {
	t.Helper()

	flags := NewFlags()
	cmd := CreateRootCommand(flags, func() (Runner, error) { return runner, nil })
	cmd.SetArgs(args)
	cmd.SetOut(new(strings.Builder))
	cmd.SetErr(new(strings.Builder))
	return flags, cmd.ExecuteContext(context.Background())
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags, func() (Runner, error) { return &recordingRunner{}, nil })

	// Test basic command properties
	if cmd.Use != "vocabaudio" {
		t.Errorf("Expected Use to be 'vocabaudio', got %s", cmd.Use)
	}

	for _, name := range []string{"config", "vault", "cache-dir", "verbose", "no-log"} {
		t.Run("flag_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	want := []string{"annotate", "annotate-line", "archive-cache", "models", "resolve", "status", "sync", "watch"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("subcommands = %v, want %v", names, want)
	}
}

func TestSubcommandsReachRunner(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"annotate all", []string{"annotate"}, "annotate "},
		{"annotate files", []string{"annotate", "a.md", "b.md"}, "annotate a.md,b.md"},
		{"annotate line", []string{"annotate-line", "a.md", "3"}, "annotate-line a.md 2"},
		{"sync", []string{"sync", "a.md"}, "sync a.md"},
		{"resolve", []string{"resolve", "wisdom"}, "resolve wisdom"},
		{"watch", []string{"watch"}, "watch"},
		{"status", []string{"status", "-n", "3"}, "status"},
		{"archive cache", []string{"archive-cache"}, "archive-cache"},
		{"models", []string{"models"}, "models"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			runner := &recordingRunner{}

			if _, err := execute(t, runner, tt.args...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(runner.calls) != 1 || runner.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", runner.calls, tt.want)
			}
		})
	}
}

func TestRunnerErrorsPropagate(t *testing.T) {
	resetViper(t)
	runner := &recordingRunner{err: errors.New("boom")}

	if _, err := execute(t, runner, "sync"); err == nil || err.Error() != "boom" {
		t.Errorf("Execute() error = %v, want boom", err)
	}
}

func TestAnnotateLineRejectsBadLineNumbers(t *testing.T) {
	for _, arg := range []string{"0", "-1", "x"} {
		resetViper(t)
		runner := &recordingRunner{}
		if _, err := execute(t, runner, "annotate-line", "a.md", arg); err == nil {
			t.Errorf("annotate-line with %q: expected error", arg)
		}
		if len(runner.calls) != 0 {
			t.Errorf("annotate-line with %q reached the runner", arg)
		}
	}
}

func TestParseLine(t *testing.T) {
	got, err := parseLine(" 12 ")
	if err != nil || got != 11 {
		t.Errorf("parseLine() = %d, %v, want 11", got, err)
	}
}

func TestSubcommandFlags(t *testing.T) {
	resetViper(t)

	flags, err := execute(t, &recordingRunner{}, "sync", "--words", "w.txt", "--max-per-run", "7", "--tts-fallback")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if flags.WordsFile != "w.txt" || flags.MaxPerRun != 7 || !flags.TTSFallback {
		t.Errorf("flags = %+v", flags)
	}
	if viper.GetInt(config.KeyMaxPerRun) != 7 {
		t.Errorf("Expected %s to be 7, got %d", config.KeyMaxPerRun, viper.GetInt(config.KeyMaxPerRun))
	}
	if !viper.GetBool(config.KeyTTSFallback) {
		t.Errorf("Expected %s to be true", config.KeyTTSFallback)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	_, err := execute(t, &recordingRunner{}, "--vault", "/notes", "--cache-dir", "audio", "watch", "--interval", "15", "--active", "today.md")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if viper.GetString(config.KeyVaultPath) != "/notes" {
		t.Errorf("Expected %s to be /notes, got %s", config.KeyVaultPath, viper.GetString(config.KeyVaultPath))
	}
	if viper.GetString(config.KeyCacheDir) != "audio" {
		t.Errorf("Expected %s to be audio, got %s", config.KeyCacheDir, viper.GetString(config.KeyCacheDir))
	}
	if viper.GetInt(config.KeyIntervalMinutes) != 15 {
		t.Errorf("Expected %s to be 15, got %d", config.KeyIntervalMinutes, viper.GetInt(config.KeyIntervalMinutes))
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	vaultFlag := cmd.PersistentFlags().Lookup("vault")
	if vaultFlag == nil {
		t.Fatal("vault flag not found")
	}
	if vaultFlag.DefValue != "." {
		t.Errorf("Expected default vault to be ., got %s", vaultFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantVault string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `vault:
  path: /test/vault
sync:
  periodic: true`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			wantVault: "/test/vault",
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				t.Setenv("HOME", t.TempDir())
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("VOCABAUDIO_TEST_VAR", "test-value")
			t.Setenv("VOCABAUDIO_SYNC_MAX_PER_RUN", "9")

			InitConfig(tt.setupFunc(t))

			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
			if viper.GetInt(config.KeyMaxPerRun) != 9 {
				t.Errorf("Expected nested key from environment, got %d", viper.GetInt(config.KeyMaxPerRun))
			}
			if viper.GetString(config.KeyVaultPath) != tt.wantVault {
				t.Errorf("Expected vault %q, got %q", tt.wantVault, viper.GetString(config.KeyVaultPath))
			}
		})
	}
}

func TestOpenAIKeyFromEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{"openai variable", map[string]string{"OPENAI_API_KEY": "env-key"}, "env-key"},
		{"prefixed variable wins", map[string]string{"OPENAI_API_KEY": "env-key", "VOCABAUDIO_AUDIO_OPENAI_KEY": "own-key"}, "own-key"},
		{"empty when unset", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("HOME", t.TempDir())
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("VOCABAUDIO_AUDIO_OPENAI_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			InitConfig("")

			if got := viper.GetString(config.KeyOpenAIKey); got != tt.expected {
				t.Errorf("%s = %v, want %v", config.KeyOpenAIKey, got, tt.expected)
			}
		})
	}
}
