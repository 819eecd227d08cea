/*
paycalc - command-line front end for the tariff engine

PURPOSE:
  Prices work intervals and manages shifts, holidays and history against
  the same SQLite database the HTTP server uses.

COMMANDS:
  calc      --date YYYY-MM-DD --start HH:MM --end HH:MM [--overnight] [--save] [--json]
  shifts    list | add | rm | defaults
  holidays  list | add | rm
  history   list | clear
  config    export | import FILE

GLOBAL FLAGS:
  --db       SQLite database path (default from DB_PATH, else tariff.db)
  --verbose  Debug logging to stderr

EXAMPLES:
  paycalc calc --date 2025-03-03 --start 23:00 --end 01:00 --overnight
  paycalc shifts add --start 22:00 --end 06:00 --rate 18.5 --weekdays 5,6
  paycalc config export > tariff.json

SEE ALSO:
  - calculator/service.go: Shared with the HTTP server
  - cmd/server/main.go: HTTP entry point
*/
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/tariff-engine/calculator"
	"github.com/warp/tariff-engine/config"
	"github.com/warp/tariff-engine/store/sqlite"
)

const appVersion = "0.3.0"

// app is the state shared by every subcommand.
type app struct {
	dbPath  string
	verbose bool

	out   io.Writer
	store *sqlite.Store
	svc   *calculator.Service
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs one invocation and always releases the database.
func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{out: stdout}
	defer a.close()

	root := newRootCmd(a, stderr)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(a *app, stderr io.Writer) *cobra.Command {
	defaultDB := "tariff.db"
	if cfg, err := config.Load(); err == nil {
		defaultDB = cfg.DBPath
	}

	root := &cobra.Command{
		Use:           "paycalc",
		Short:         "Shift tariff earnings calculator",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(stderr)
		},
	}
	root.SetOut(a.out)
	root.SetErr(stderr)
	root.SetVersionTemplate("paycalc v{{.Version}}\n")

	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDB, "SQLite database path")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Debug logging to stderr")

	root.AddCommand(
		newCalcCmd(a),
		newShiftsCmd(a),
		newHolidaysCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) open(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store, err := sqlite.New(a.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.store = store
	a.svc = calculator.New(store, store, logger)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store, a.svc = nil, nil
	return err
}
