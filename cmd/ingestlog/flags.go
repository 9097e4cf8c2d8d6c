package main

import (
	"github.com/urfave/cli"

	"github.com/Chichichkin/IngestLogger/internal/config"
)

const (
	configFlagName        = "config"
	debugFlagName         = "debug"
	logFileFlagName       = "log-file"
	rotationDaysFlagName  = "rotation-days"
	backupCountFlagName   = "backup-count"
	maxSizeFlagName       = "max-size-mb"
	spaceFlagName         = "space"
	entrypointFlagName    = "entrypoint"
	notifyKindFlagName    = "notify-kind"
	notifyTokenFlagName   = "notify-token"
	notifyChannelFlagName = "notify-channel"
	notifyLevelFlagName   = "notify-level"
	notifyExcludeFlagName = "notify-exclude"
	flushIntervalFlagName = "flush-interval"
	maxBatchFlagName      = "max-batch-bytes"
	notifyTimeoutFlagName = "notify-timeout"
	metricsAddrFlagName   = "metrics-addr"
)

// globalFlags mirror config.Options. Their defaults are only shown in help:
// a flag overrides the config file only when it was set explicitly.
func globalFlags() []cli.Flag {
	defaults := config.Defaults()
	return []cli.Flag{
		cli.StringFlag{
			Name:   configFlagName + ", c",
			Usage:  "path to a YAML configuration file",
			EnvVar: "INGESTLOG_CONFIG",
		},
		cli.BoolFlag{
			Name:   debugFlagName + ", d",
			Usage:  "log DEBUG records to the console and the file",
			EnvVar: "INGESTLOG_DEBUG",
		},
		cli.StringFlag{
			Name:   logFileFlagName + ", l",
			Usage:  "write records to this file as well, rotating it",
			EnvVar: "INGESTLOG_FILE",
		},
		cli.IntFlag{
			Name:   rotationDaysFlagName,
			Usage:  "rotate the log file every N days, 0 disables scheduled rotation",
			Value:  defaults.RotationDays,
			EnvVar: "INGESTLOG_ROTATION_DAYS",
		},
		cli.IntFlag{
			Name:   backupCountFlagName,
			Usage:  "number of rotated files to keep",
			Value:  defaults.BackupCount,
			EnvVar: "INGESTLOG_BACKUP_COUNT",
		},
		cli.IntFlag{
			Name:   maxSizeFlagName,
			Usage:  "rotate the log file once it reaches this size",
			Value:  defaults.MaxSizeMB,
			EnvVar: "INGESTLOG_MAX_SIZE_MB",
		},
		cli.StringFlag{
			Name:   spaceFlagName,
			Usage:  "deployment space attached to every record",
			Value:  defaults.Space,
			EnvVar: "INGESTLOG_SPACE",
		},
		cli.StringFlag{
			Name:   entrypointFlagName,
			Usage:  "entrypoint attached to every record",
			Value:  defaults.Entrypoint,
			EnvVar: "INGESTLOG_ENTRYPOINT",
		},
		cli.StringFlag{
			Name:   notifyKindFlagName,
			Usage:  "notifier to use: slack or webhook",
			Value:  defaults.Notify.Kind,
			EnvVar: "INGESTLOG_NOTIFY_KIND",
		},
		cli.StringFlag{
			Name:   notifyTokenFlagName,
			Usage:  "slack bot token, or the webhook URL for the webhook notifier",
			EnvVar: "INGESTLOG_NOTIFY_TOKEN",
		},
		cli.StringFlag{
			Name:   notifyChannelFlagName,
			Usage:  "channel receiving the batched records",
			EnvVar: "INGESTLOG_NOTIFY_CHANNEL",
		},
		cli.StringFlag{
			Name:   notifyLevelFlagName,
			Usage:  "minimum level sent to the channel",
			Value:  defaults.Notify.Level,
			EnvVar: "INGESTLOG_NOTIFY_LEVEL",
		},
		cli.StringSliceFlag{
			Name:   notifyExcludeFlagName,
			Usage:  "logger name never sent to the channel; may specify more than once",
			EnvVar: "INGESTLOG_NOTIFY_EXCLUDE",
		},
		cli.DurationFlag{
			Name:   flushIntervalFlagName,
			Usage:  "how often queued records are posted",
			Value:  defaults.Notify.FlushInterval,
			EnvVar: "INGESTLOG_FLUSH_INTERVAL",
		},
		cli.IntFlag{
			Name:   maxBatchFlagName,
			Usage:  "upper bound on the size of one posted message",
			Value:  defaults.Notify.MaxBatchBytes,
			EnvVar: "INGESTLOG_MAX_BATCH_BYTES",
		},
		cli.DurationFlag{
			Name:   notifyTimeoutFlagName,
			Usage:  "deadline for a single post",
			Value:  defaults.Notify.Timeout,
			EnvVar: "INGESTLOG_NOTIFY_TIMEOUT",
		},
		cli.StringFlag{
			Name:   metricsAddrFlagName,
			Usage:  "serve prometheus metrics on this address",
			EnvVar: "INGESTLOG_METRICS_ADDR",
		},
	}
}

// loadOptions starts from the defaults, applies the config file when one is
// given and then every flag the user set.
func loadOptions(c *cli.Context) (config.Options, error) {
	opts := config.Defaults()
	if path := c.GlobalString(configFlagName); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	if c.GlobalIsSet(debugFlagName) {
		opts.Debug = c.GlobalBool(debugFlagName)
	}
	if c.GlobalIsSet(logFileFlagName) {
		opts.LogFile = c.GlobalString(logFileFlagName)
	}
	if c.GlobalIsSet(rotationDaysFlagName) {
		opts.RotationDays = c.GlobalInt(rotationDaysFlagName)
	}
	if c.GlobalIsSet(backupCountFlagName) {
		opts.BackupCount = c.GlobalInt(backupCountFlagName)
	}
	if c.GlobalIsSet(maxSizeFlagName) {
		opts.MaxSizeMB = c.GlobalInt(maxSizeFlagName)
	}
	if c.GlobalIsSet(spaceFlagName) {
		opts.Space = c.GlobalString(spaceFlagName)
	}
	if c.GlobalIsSet(entrypointFlagName) {
		opts.Entrypoint = c.GlobalString(entrypointFlagName)
	}
	if c.GlobalIsSet(notifyKindFlagName) {
		opts.Notify.Kind = c.GlobalString(notifyKindFlagName)
	}
	if c.GlobalIsSet(notifyTokenFlagName) {
		opts.Notify.Token = c.GlobalString(notifyTokenFlagName)
	}
	if c.GlobalIsSet(notifyChannelFlagName) {
		opts.Notify.Channel = c.GlobalString(notifyChannelFlagName)
	}
	if c.GlobalIsSet(notifyLevelFlagName) {
		opts.Notify.Level = c.GlobalString(notifyLevelFlagName)
	}
	if c.GlobalIsSet(notifyExcludeFlagName) {
		opts.Notify.Exclude = c.GlobalStringSlice(notifyExcludeFlagName)
	}
	if c.GlobalIsSet(flushIntervalFlagName) {
		opts.Notify.FlushInterval = c.GlobalDuration(flushIntervalFlagName)
	}
	if c.GlobalIsSet(maxBatchFlagName) {
		opts.Notify.MaxBatchBytes = c.GlobalInt(maxBatchFlagName)
	}
	if c.GlobalIsSet(notifyTimeoutFlagName) {
		opts.Notify.Timeout = c.GlobalDuration(notifyTimeoutFlagName)
	}

	return opts, opts.Validate()
}
