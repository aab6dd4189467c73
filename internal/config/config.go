// Package config holds the synchronization settings and loads them from
// viper. Every operation loads a fresh Config so a changed config file is
// picked up without restarting.
package config

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabaudio/internal/matcher"
)

// Placeholder is substituted with the word in the online URL template.
const Placeholder = "{{word}}"

// Bounds for the integer settings.
const (
	MinIntervalMinutes = 5
	MaxIntervalMinutes = 180
	MinPerRun          = 5
	MaxPerRun          = 200
)

// Viper keys.
const (
	KeyVaultPath       = "vault.path"
	KeyCacheDir        = "cache.dir"
	KeyAudioExt        = "cache.ext"
	KeyOnlineTemplate  = "audio.online_template"
	KeyPreferLocal     = "audio.prefer_local"
	KeyWordPattern     = "match.word_pattern"
	KeyPeriodic        = "sync.periodic"
	KeyIntervalMinutes = "sync.interval_minutes"
	KeyMaxPerRun       = "sync.max_per_run"
	KeyTargetFolder    = "sync.target_folder"
	KeyHistoryPath     = "history.path"
	KeyTTSFallback     = "audio.tts_fallback"
	KeyOpenAIKey       = "audio.openai_key"
	KeyOpenAIModel     = "audio.openai_model"
	KeyOpenAIVoice     = "audio.openai_voice"
)

// Config is the synchronization configuration.
type Config struct {
	VaultPath       string // root directory of the notes
	CacheDir        string // vault-relative folder holding audio files
	AudioExt        string // cache file extension without the dot
	OnlineTemplate  string // URL with one {{word}} placeholder
	PreferLocal     bool
	WordPattern     string // regular expression with one capture group
	Periodic        bool
	IntervalMinutes int
	MaxPerRun       int
	TargetFolder    string // vault-relative folder scanned for notes, "" for all

	HistoryPath string // sqlite ledger of sync runs, "" for the state directory, "off" disables it

	// Text-to-speech fallback for words the online source lacks.
	TTSFallback bool
	OpenAIKey   string
	OpenAIModel string
	OpenAIVoice string
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		VaultPath:       ".",
		CacheDir:        "pronunciations",
		AudioExt:        "mp3",
		OnlineTemplate:  "https://api.dictionaryapi.dev/media/pronunciations/en/" + Placeholder + "-us.mp3",
		PreferLocal:     true,
		WordPattern:     `^\[\[([^\]|#]+)\]\]`,
		Periodic:        false,
		IntervalMinutes: 30,
		MaxPerRun:       50,
		OpenAIModel:     "tts-1",
		OpenAIVoice:     "alloy",
	}
}

// SetDefaults registers the defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyVaultPath, d.VaultPath)
	v.SetDefault(KeyCacheDir, d.CacheDir)
	v.SetDefault(KeyAudioExt, d.AudioExt)
	v.SetDefault(KeyOnlineTemplate, d.OnlineTemplate)
	v.SetDefault(KeyPreferLocal, d.PreferLocal)
	v.SetDefault(KeyWordPattern, d.WordPattern)
	v.SetDefault(KeyPeriodic, d.Periodic)
	v.SetDefault(KeyIntervalMinutes, d.IntervalMinutes)
	v.SetDefault(KeyMaxPerRun, d.MaxPerRun)
	v.SetDefault(KeyTargetFolder, d.TargetFolder)
	v.SetDefault(KeyOpenAIModel, d.OpenAIModel)
	v.SetDefault(KeyOpenAIVoice, d.OpenAIVoice)
}

// Load reads the current configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		VaultPath:       v.GetString(KeyVaultPath),
		CacheDir:        v.GetString(KeyCacheDir),
		AudioExt:        v.GetString(KeyAudioExt),
		OnlineTemplate:  v.GetString(KeyOnlineTemplate),
		PreferLocal:     v.GetBool(KeyPreferLocal),
		WordPattern:     v.GetString(KeyWordPattern),
		Periodic:        v.GetBool(KeyPeriodic),
		IntervalMinutes: v.GetInt(KeyIntervalMinutes),
		MaxPerRun:       v.GetInt(KeyMaxPerRun),
		TargetFolder:    v.GetString(KeyTargetFolder),
		HistoryPath:     v.GetString(KeyHistoryPath),
		TTSFallback:     v.GetBool(KeyTTSFallback),
		OpenAIKey:       v.GetString(KeyOpenAIKey),
		OpenAIModel:     v.GetString(KeyOpenAIModel),
		OpenAIVoice:     v.GetString(KeyOpenAIVoice),
	}

	cfg.CacheDir = strings.Trim(path.Clean("/"+strings.TrimSpace(cfg.CacheDir)), "/")
	cfg.TargetFolder = strings.Trim(strings.TrimSpace(cfg.TargetFolder), "/")
	cfg.AudioExt = strings.TrimPrefix(strings.TrimSpace(cfg.AudioExt), ".")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.VaultPath) == "" {
		return &Error{Key: KeyVaultPath, Message: "must not be empty"}
	}
	if c.CacheDir == "" {
		return &Error{Key: KeyCacheDir, Message: "must name a folder inside the vault"}
	}
	if c.AudioExt == "" || strings.ContainsAny(c.AudioExt, "/\\.") {
		return &Error{Key: KeyAudioExt, Message: fmt.Sprintf("invalid extension %q", c.AudioExt)}
	}
	if n := strings.Count(c.OnlineTemplate, Placeholder); n != 1 {
		return &Error{Key: KeyOnlineTemplate, Message: fmt.Sprintf("must contain exactly one %s placeholder, found %d", Placeholder, n)}
	}
	if _, err := c.Matcher(); err != nil {
		return err
	}
	if c.IntervalMinutes < MinIntervalMinutes || c.IntervalMinutes > MaxIntervalMinutes {
		return &Error{Key: KeyIntervalMinutes, Message: fmt.Sprintf("%d is outside [%d,%d]", c.IntervalMinutes, MinIntervalMinutes, MaxIntervalMinutes)}
	}
	if c.MaxPerRun < MinPerRun || c.MaxPerRun > MaxPerRun {
		return &Error{Key: KeyMaxPerRun, Message: fmt.Sprintf("%d is outside [%d,%d]", c.MaxPerRun, MinPerRun, MaxPerRun)}
	}
	if c.TTSFallback && c.OpenAIKey == "" {
		return &Error{Key: KeyOpenAIKey, Message: "required when audio.tts_fallback is enabled"}
	}
	return nil
}

// Matcher compiles the word pattern.
func (c *Config) Matcher() (*matcher.Matcher, error) {
	m, err := matcher.New(c.WordPattern)
	if err != nil {
		return nil, &Error{Key: KeyWordPattern, Message: "cannot be used", Err: err}
	}
	return m, nil
}

// Interval returns the periodic sync interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}
