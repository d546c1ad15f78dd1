package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"github.com/wayneeseguin/logspool/pkg/backends"
	"github.com/wayneeseguin/logspool/pkg/logspool"
	"github.com/wayneeseguin/logspool/pkg/types"
)

const dateLayout = "2006-01-02"

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "logspool",
		Usage:  "Write to and read back date-rotated log files",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path (TOML)",
				Value: "logspool.toml",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Log directory, overrides the configuration and " + logspool.EnvDirectory,
			},
			&cli.BoolFlag{
				Name:  "text",
				Usage: "Use the flat text format instead of XML",
			},
		},
		Commands: []*cli.Command{
			writeCommand(),
			verifyCommand(),
			catCommand(),
			xmlCommand(),
			pathCommand(),
		},
	}
}

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "Append an entry",
		ArgsUsage: "MESSAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "severity",
				Usage: "Info, Warning, Error or Fault",
				Value: "Info",
			},
			&cli.BoolFlag{
				Name:  "sync",
				Usage: "Write synchronously and report the write error",
			},
			&cli.StringFlag{
				Name:  "syslog",
				Usage: "Report background write failures to this syslog address (empty for the local socket)",
			},
			&cli.BoolFlag{
				Name:  "stderr-faults",
				Usage: "Report background write failures on stderr",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			message := strings.Join(c.Args().Slice(), " ")
			if message == "" {
				return errors.New("a message is required")
			}
			sev, err := types.ParseSeverity(c.String("severity"))
			if err != nil {
				return err
			}

			var opts []logspool.Option
			if c.IsSet("syslog") {
				sink, err := backends.NewSyslogSink("", c.String("syslog"), "logspool")
				if err != nil {
					return errors.Wrap(err, "connecting to syslog")
				}
				defer func() { _ = sink.Close() }()
				opts = append(opts, logspool.WithFaultSink(sink))
			} else if c.Bool("stderr-faults") {
				opts = append(opts, logspool.WithFaultSink(backends.NewStderrSink()))
			}

			logger, err := openLogger(c, opts...)
			if err != nil {
				return err
			}
			// The entry must reach the file before the process exits, even
			// with start = "explicit".
			logger.Start()

			var logOpts []logspool.LogOption
			if c.Bool("sync") {
				logOpts = append(logOpts, logspool.Sync())
			}
			logOpts = append(logOpts, logspool.WithCaller("logspool.cli"))

			if sev == types.SeverityFault {
				err = logger.LogFault(errors.New(message), logOpts...)
			} else {
				err = logger.Log(message, sev, logOpts...)
			}
			if err != nil {
				return err
			}
			if err := shutdown(ctx, logger); err != nil {
				return err
			}
			return logger.LastBackgroundError()
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Write a test entry synchronously",
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := openLogger(c)
			if err != nil {
				return err
			}
			if err := logger.Verify(); err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "ok %s\n", logger.FileName())
			return nil
		},
	}
}

func catCommand() *cli.Command {
	return &cli.Command{
		Name:  "cat",
		Usage: "Print the log file of a day",
		Flags: []cli.Flag{dateFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := openLogger(c)
			if err != nil {
				return err
			}
			day, err := parseDate(c.String("date"))
			if err != nil {
				return err
			}
			text, err := logger.ReadText(day)
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.Root().Writer, text)
			return err
		},
	}
}

func xmlCommand() *cli.Command {
	return &cli.Command{
		Name:  "xml",
		Usage: "Print the log file of a day as a well-formed XML document",
		Flags: []cli.Flag{dateFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := openLogger(c)
			if err != nil {
				return err
			}
			day, err := parseDate(c.String("date"))
			if err != nil {
				return err
			}
			doc, err := logger.ReadXML(day)
			if err != nil {
				return err
			}
			_, err = c.Root().Writer.Write(doc.Raw)
			return err
		},
	}
}

func pathCommand() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "Print the current log file path",
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, err := openLogger(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, logger.FileName())
			return nil
		},
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Day to read, as YYYY-MM-DD (default today)",
	}
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", value)
	}
	return t, nil
}

// openLogger builds a Logger from the configuration file, the environment
// and the global flags, in that order of precedence.
func openLogger(c *cli.Command, opts ...logspool.Option) (*logspool.Logger, error) {
	cfg, err := logspool.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Directory = dir
	}
	if c.Bool("text") {
		cfg.Mode = types.OutputText
	}

	return logspool.New(append([]logspool.Option{logspool.WithConfig(cfg)}, opts...)...)
}

func shutdown(ctx context.Context, logger *logspool.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return logger.Shutdown(ctx)
}
