// Command healthpilot is a health-tracking client: a web UI and a set of
// terminal commands over the same application backend.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/backend"
	"github.com/erazemk/healthpilot/internal/config"
	"github.com/erazemk/healthpilot/internal/db"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	"github.com/erazemk/healthpilot/internal/store"
)

// levelRouter is a slog.Handler that routes records below ERROR to one
// handler and ERROR+ to another.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. Records below ERROR go to
// stdout and ERROR goes to stderr. If logPath is non-empty, all records are
// also written to that file. Returns a cleanup function that closes the log
// file (if opened).
func setupLogger(stdout, stderr io.Writer, logPath string, level slog.Level) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	cleanup := func() {}

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	handler := &levelRouter{
		level:  level,
		stdout: slog.NewTextHandler(stdout, opts),
		stderr: slog.NewTextHandler(stderr, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// reportedError marks an error already shown to the user as a notice.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// env is the state shared by all commands.
type env struct {
	cfgPath string
	dbPath  string
	backend string
	logPath string
	verbose bool

	stdout  io.Writer
	notices notify.Notifier

	cfg      *config.Config
	db       *sql.DB
	svc      *app.Services
	closeLog func()
}

// setup loads the configuration, applies flags, opens the local store and
// builds the services. serve logs at INFO; other commands stay quiet unless
// --verbose is set.
func (e *env) setup(cmd *cobra.Command, server bool) error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = e.dbPath
	}
	if flags.Changed("backend") {
		cfg.BackendURL = e.backend
	}
	if flags.Changed("log") {
		cfg.LogPath = e.logPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	level := slog.LevelWarn
	if server {
		level = slog.LevelInfo
	}
	if e.verbose {
		level = slog.LevelDebug
	}
	logOut := cmd.ErrOrStderr()
	if server {
		logOut = cmd.OutOrStdout()
	}
	closeLog, err := setupLogger(logOut, cmd.ErrOrStderr(), cfg.LogPath, level)
	if err != nil {
		return err
	}
	e.closeLog = closeLog

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	e.db = database

	secret, err := store.GetSessionSecret(cmd.Context(), database)
	if err != nil {
		return err
	}
	e.svc = app.New(cfg, database, secret)
	slog.Debug("configuration loaded", "backend", cfg.BackendURL, "db", cfg.DBPath)
	return nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.closeLog != nil {
		e.closeLog()
	}
}

// session returns the stored CLI session.
func (e *env) session(ctx context.Context) (*model.Session, error) {
	sess, err := store.LoadSession(ctx, e.db)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, backend.ErrNotLoggedIn
	}
	return sess, nil
}

// fail shows a failed operation as a notice and marks the error reported.
func (e *env) fail(what string, err error) error {
	n := app.Explain(what, err)
	if app.SessionRejected(err) {
		n = notify.Warnf("%s Run `healthpilot login` first.", n.Text)
	}
	e.notices.Notify(n)
	return reportedError{err}
}

func (e *env) notify(n notify.Notice) {
	e.notices.Notify(n)
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.stdout, format, args...)
}

func newRootCmd(e *env, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "healthpilot",
		Short:         "Track meals, water and workouts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd, cmd.Name() == "serve")
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&e.cfgPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&e.dbPath, "db", "d", "", "local store path (default ~/"+db.DefaultFile+")")
	pf.StringVar(&e.backend, "backend", "", "application backend URL")
	pf.StringVarP(&e.logPath, "log", "l", "", "log file path")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(e),
		newLoginCmd(e),
		newRegisterCmd(e),
		newLogoutCmd(e),
		newStatusCmd(e),
		newContactCmd(e),
		newMealsCmd(e),
		newFoodCmd(e),
		newHistoryCmd(e),
		newWaterCmd(e),
		newWorkoutsCmd(e),
		newExerciseCmd(e),
		newProfileCmd(e),
	)
	return root
}

// run executes the command line in args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	e := &env{stdout: stdout, notices: notify.Printer{W: stderr}}
	defer e.close()

	root := newRootCmd(e, stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, notify.Render(notify.Errorf("%v", err)))
		}
		os.Exit(1)
	}
}
