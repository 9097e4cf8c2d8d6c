package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Chichichkin/IngestLogger/internal/logging"
)

const (
	KindSlack   = "slack"
	KindWebhook = "webhook"
)

type Options struct {
	Debug        bool   `yaml:"debug"`
	LogFile      string `yaml:"log_file"`
	RotationDays int    `yaml:"rotation_days"`
	BackupCount  int    `yaml:"backup_count"`
	MaxSizeMB    int    `yaml:"max_size_mb"`
	Space        string `yaml:"space"`
	Entrypoint   string `yaml:"entrypoint"`
	Notify       Notify `yaml:"notify"`
}

type Notify struct {
	// Kind selects the notifier. For webhook, Token holds the webhook URL.
	Kind          string        `yaml:"kind"`
	Token         string        `yaml:"token"`
	Channel       string        `yaml:"channel"`
	Level         string        `yaml:"level"`
	Exclude       []string      `yaml:"exclude"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	MaxBatchBytes int           `yaml:"max_batch_bytes"`
	Timeout       time.Duration `yaml:"timeout"`
}

func Defaults() Options {
	return Options{
		RotationDays: 30,
		BackupCount:  10,
		MaxSizeMB:    100,
		Space:        "DEV",
		Entrypoint:   "NULL",
		Notify: Notify{
			Kind:          KindSlack,
			Level:         "info",
			Exclude:       []string{"bagit"},
			FlushInterval: time.Second,
			MaxBatchBytes: 35000,
			Timeout:       10 * time.Second,
		},
	}
}

// Load reads a YAML file on top of Defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Options, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return opts, nil
}

func (o Options) Validate() error {
	if o.RotationDays < 0 {
		return errors.Errorf("rotation_days must not be negative, got %d", o.RotationDays)
	}
	if o.BackupCount < 0 {
		return errors.Errorf("backup_count must not be negative, got %d", o.BackupCount)
	}
	if o.MaxSizeMB < 0 {
		return errors.Errorf("max_size_mb must not be negative, got %d", o.MaxSizeMB)
	}
	switch o.Notify.Kind {
	case KindSlack, KindWebhook:
	default:
		return errors.Errorf("unknown notify kind %q", o.Notify.Kind)
	}
	if _, err := ParseLevel(o.Notify.Level); err != nil {
		return err
	}
	if o.Notify.MaxBatchBytes < 0 {
		return errors.Errorf("notify max_batch_bytes must not be negative, got %d", o.Notify.MaxBatchBytes)
	}
	return nil
}

// NotifyEnabled reports whether both the credential and the destination of
// the notification channel are set.
func (o Options) NotifyEnabled() bool {
	return o.Notify.Token != "" && o.Notify.Channel != ""
}

// MinLevel is the threshold for the console and file handlers.
func (o Options) MinLevel() slog.Level {
	if o.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// ParseLevel accepts slog level names plus "warning" and "critical".
// An empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	case "critical":
		return logging.LevelCritical, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}
