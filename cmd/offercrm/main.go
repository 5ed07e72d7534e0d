// offercrm is a terminal dashboard for a job-application pipeline kept in a
// remote table (Airtable, Notion or a local SQLite file).
//
// Usage:
//
//	offercrm [flags]                 interactive dashboard
//	offercrm summary [flags]         KPIs, high-priority jobs and weekly counts
//	offercrm ping [flags]            check the backend is reachable
//	offercrm version
//
// Summary output is auto-detected:
//
//	text  plain text (default when stdout is a TTY)
//	json  structured JSON (default when piped)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ssibachir/offer-crm/internal/config"
	"github.com/ssibachir/offer-crm/internal/logging"
	"github.com/ssibachir/offer-crm/internal/render"
	"github.com/ssibachir/offer-crm/internal/tracker"
	"github.com/ssibachir/offer-crm/internal/tui"
	"github.com/ssibachir/offer-crm/internal/version"
	"github.com/ssibachir/offer-crm/pkg/job"
	"github.com/ssibachir/offer-crm/pkg/stats"
)

const (
	cmdTUI     = "tui"
	cmdSummary = "summary"
	cmdPing    = "ping"
	cmdVersion = "version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the exit code: 0 ok, 1 runtime
// failure, 2 usage or configuration error.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := cmdTUI
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case cmdVersion:
		fmt.Fprint(stdout, version.String())
		return 0
	case cmdTUI, cmdSummary, cmdPing:
	default:
		fmt.Fprintf(stderr, "offercrm: unknown command %q (expected tui, summary, ping, version)\n", cmd)
		return 2
	}

	fs := flag.NewFlagSet("offercrm "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags config.Flags
	fs.StringVar(&flags.ConfigPath, "config", "", "Path to "+config.FileName)
	fs.StringVar(&flags.EnvFile, "env-file", "", "Path to a .env file (default ./.env)")
	fs.StringVar(&flags.Backend, "backend", "", "Backend: airtable, notion, sqlite")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&flags.Locale, "locale", "", "Month names for weekly labels: en, fr")
	format := render.FormatAuto
	if cmd == cmdSummary {
		fs.StringVar(&format, "format", render.FormatAuto, "Output format: auto, text, json")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	switch format {
	case render.FormatAuto, render.FormatText, render.FormatJSON:
	default:
		fmt.Fprintf(stderr, "offercrm: unknown format %q (expected auto, text, json)\n", format)
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fail(stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := setupLogging(cfg, cmd, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	defer closeLog()
	logger = logger.With("backend", cfg.Backend)

	tr, closeTable, err := newTracker(ctx, cfg, logger)
	if err != nil {
		return fail(stderr, err)
	}
	defer func() {
		if err := closeTable(); err != nil {
			logger.Warn("close backend", "error", err)
		}
	}()

	switch cmd {
	case cmdPing:
		err = runPing(ctx, tr, cfg.Backend, stdout)
	case cmdSummary:
		err = runSummary(ctx, tr, cfg, format, stdout)
	default:
		err = tui.Run(ctx, tr, tui.Options{
			Theme:             tui.CompileTheme(cfg.Theme),
			Locale:            stats.MatchLocale(cfg.Dashboard.Locale),
			HighPriorityScore: cfg.Dashboard.HighPriorityScore,
			Logger:            logger,
		})
	}
	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		return fail(stderr, err)
	}
	return 0
}

// fail prints err and maps it to an exit code.
func fail(stderr io.Writer, err error) int {
	var cerr *config.ConfigurationError
	if errors.As(err, &cerr) {
		fmt.Fprintf(stderr, "offercrm: %v\n\n%s\n", cerr, cerr.Remediation())
		return 2
	}
	fmt.Fprintf(stderr, "offercrm: %v\n", err)
	return 1
}

// setupLogging sends logs to the log file while the dashboard owns the
// terminal, and to stderr otherwise.
func setupLogging(cfg *config.Config, cmd string, stderr io.Writer) (*slog.Logger, func(), error) {
	if cmd != cmdTUI {
		return logging.Setup(cfg.Log, stderr), func() {}, nil
	}
	f, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	return logging.Setup(cfg.Log, f), func() { _ = f.Close() }, nil
}

func newTracker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tracker.Tracker, func() error, error) {
	cols, err := job.NewColumns(cfg.Columns)
	if err != nil {
		return nil, nil, &config.ConfigurationError{Source: cfg.Source, Invalid: []string{"columns"}, Err: err}
	}
	table, closeTable, err := openTable(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	tr := tracker.New(table,
		tracker.WithColumns(cols),
		tracker.WithCache(tracker.NewSnapshotCache(cfg.Cache.TTL, time.Now)),
		tracker.WithTimeout(cfg.Remote.Timeout),
		tracker.WithLogger(logger),
	)
	return tr, closeTable, nil
}

func runPing(ctx context.Context, tr *tracker.Tracker, backend string, stdout io.Writer) error {
	start := time.Now()
	if err := tr.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok: %s reachable in %s\n", backend, time.Since(start).Round(time.Millisecond))
	return nil
}

func runSummary(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, format string, stdout io.Writer) error {
	r, err := render.New(format, stdout)
	if err != nil {
		return err
	}
	records, err := tr.FetchAll(ctx)
	if err != nil {
		return err
	}
	s := stats.Summarize(records, time.Now(), cfg.Dashboard.HighPriorityScore, stats.MatchLocale(cfg.Dashboard.Locale))
	fmt.Fprint(stdout, r.Render(s))
	return nil
}
