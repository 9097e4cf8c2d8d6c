package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/Chichichkin/IngestLogger/internal/config"
	"github.com/Chichichkin/IngestLogger/internal/forward"
)

func emitCommand() cli.Command {
	return cli.Command{
		Name:      "emit",
		Usage:     "log one message through every configured sink",
		ArgsUsage: "MESSAGE [key=value...]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "level",
				Usage: "record level: debug, info, warning, error or critical",
				Value: "info",
			},
			cli.StringFlag{
				Name:  "name, n",
				Usage: "logger name shown in the record",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("a message is required")
			}
			level, err := config.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}
			attrs, err := parseAttrs(c.Args().Tail())
			if err != nil {
				return err
			}

			ctx := context.Background()
			rt, err := setup(ctx, c)
			if err != nil {
				return err
			}

			logger := rt.logger
			if name := c.String("name"); name != "" {
				logger = logger.Named(name)
			}
			logger.LogAttrs(ctx, level, c.Args().First(), attrs...)

			return rt.Close()
		},
	}
}

func forwardCommand() cli.Command {
	return cli.Command{
		Name:      "forward",
		Usage:     "follow log files and relay their lines through every configured sink",
		ArgsUsage: "PATH|GLOB...",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "level",
				Usage: "level assigned to forwarded lines",
				Value: "info",
			},
			cli.BoolFlag{
				Name:  "from-start",
				Usage: "replay existing file content before following",
			},
			cli.BoolFlag{
				Name:  "poll",
				Usage: "poll files for changes instead of using inotify",
			},
			cli.DurationFlag{
				Name:  "idle-timeout",
				Usage: "stop following a file after this long without new lines, 0 follows forever",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one path is required")
			}
			level, err := config.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}

			rt, err := setup(context.Background(), c)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(context.Background(), rt.logger)
			defer cancel()

			svc := forward.NewService(ctx, forward.Config{
				Paths:           c.Args(),
				FromStart:       c.Bool("from-start"),
				Poll:            c.Bool("poll"),
				Level:           level,
				FileIdleTimeout: c.Duration("idle-timeout"),
			}, rt.logger)
			if err := svc.Start(); err != nil {
				_ = rt.Close()
				return err
			}

			done := make(chan struct{})
			go func() {
				svc.Wait()
				close(done)
			}()

			select {
			case <-ctx.Done():
				rt.logger.Info("shutting down")
			case <-done:
				rt.logger.Info("all files idle, exiting")
			}
			svc.Stop()

			stats := svc.Stats()
			rt.logger.Debug("forwarding finished",
				slog.Int64("files", stats.FilesFollowed),
				slog.Int64("failed", stats.FilesFailed),
				slog.Int64("lines", stats.LinesForwarded))

			return rt.Close()
		},
	}
}

// parseAttrs turns key=value arguments into string attributes.
func parseAttrs(args []string) ([]slog.Attr, error) {
	attrs := make([]slog.Attr, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("attribute %q is not in key=value form", arg)
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs, nil
}
