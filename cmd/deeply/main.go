package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/deeply/internal/cli"
	"github.com/julianstephens/deeply/internal/config"
	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/errors"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/telemetry"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (default: <user config dir>/deeply/deeply.conf)." type:"path"`
	Data    string `help:"Data target: a .json or .db file, a PostgreSQL URL without credentials, or 'keyring:'."`
	Debug   bool   `help:"Log at debug level and mirror logs to stderr."`

	Serve cli.ServeCmd `cmd:"" help:"Run the HTTP server." default:"withargs"`
	Init  cli.InitCmd  `cmd:"" help:"Initialize storage and write a default config file."`
	Tui   cli.TuiCmd   `cmd:"" help:"Launch the interactive timer."`
	Todo  struct {
		List   cli.TodoListCmd   `cmd:"" help:"List todos." default:"1"`
		Add    cli.TodoAddCmd    `cmd:"" help:"Add a todo."`
		Done   cli.TodoDoneCmd   `cmd:"" help:"Mark a todo completed."`
		Undone cli.TodoUndoneCmd `cmd:"" help:"Mark a todo not completed."`
		Delete cli.TodoDeleteCmd `cmd:"" help:"Delete a todo."`
		Prune  cli.TodoPruneCmd  `cmd:"" help:"Remove todos completed a while ago."`
	} `cmd:"" help:"Manage todos."`
	Session struct {
		Log cli.SessionLogCmd `cmd:"" help:"Record a completed pomodoro." default:"withargs"`
	} `cmd:"" help:"Record pomodoro sessions."`
	Modes    cli.ModesCmd    `cmd:"" help:"Show work mode durations."`
	Stats    cli.StatsCmd    `cmd:"" help:"Show daily statistics."`
	Insights cli.InsightsCmd `cmd:"" help:"Show weekly insights."`
	Backup   struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage the keyring-held connection string."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Diag   struct {
		Path     cli.DebugPathCmd     `cmd:"" help:"Show resolved paths and storage target." default:"1"`
		DumpTodo cli.DebugDumpTodoCmd `cmd:"" help:"Dump one todo as stored."`
	} `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Pomodoro timer and todo tracker with a local JSON API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(config.Flags{
		Config: CLI.Config,
		Data:   CLI.Data,
		Debug:  CLI.Debug,
	})
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:  cfg.Debug,
		Level:  cfg.LogLevel,
		LogDir: cfg.LogDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cleanup := func() {}
	if cfg.Telemetry {
		_, _, shutdown, err := telemetry.Init(context.Background(), cfg.LogDir)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			cleanup = shutdown
		}
	}

	appCtx, err := cli.NewContext(cfg)
	if err != nil {
		cleanup()
		errors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("failed to close storage", "error", cerr)
	}
	cleanup()
	errors.Fatal(err)
}
