// Command migrate applies and authors the SQL schema migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/erp/realestate/internal/infrastructure/config"
	"github.com/erp/realestate/internal/infrastructure/logger"
	"github.com/erp/realestate/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

// invocation is what every subcommand receives
type invocation struct {
	dir  string
	args []string
	log  *zap.Logger
	mig  *migration.Migrator // nil for offline commands
}

type command struct {
	usage   string
	summary string
	offline bool
	run     func(inv invocation) error
}

var commands = map[string]command{
	"up":   {usage: "up", summary: "apply every pending migration", run: func(inv invocation) error { return inv.mig.Up() }},
	"down": {usage: "down", summary: "roll back every migration", run: func(inv invocation) error { return inv.mig.Down() }},
	"step": {usage: "step <n>", summary: "move n migrations, negative rolls back", run: func(inv invocation) error {
		n, err := intArg(inv.args, "step count")
		if err != nil {
			return err
		}
		return inv.mig.Steps(n)
	}},
	"goto": {usage: "goto <version>", summary: "migrate up or down to a version", run: func(inv invocation) error {
		v, err := intArg(inv.args, "version")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return inv.mig.GoTo(uint(v))
	}},
	"status": {usage: "status", summary: "show the applied version and pending files", run: status},
	"force": {usage: "force <version>", summary: "set the version after a manual repair", run: func(inv invocation) error {
		v, err := intArg(inv.args, "version")
		if err != nil {
			return err
		}
		return inv.mig.Force(v)
	}},
	"drop": {usage: "drop -confirm", summary: "drop every database object", run: func(inv invocation) error {
		if !slices.Contains(inv.args, "-confirm") && !slices.Contains(inv.args, "--confirm") {
			return errors.New("refusing to drop without -confirm")
		}
		return inv.mig.Drop()
	}},
	"create": {usage: "create <name> [description]", summary: "write the next numbered up/down pair", offline: true, run: create},
	"list":   {usage: "list", summary: "print the migration files on disk", offline: true, run: list},
}

func main() {
	dir := flag.String("path", "", "migrations directory (default ./migrations)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	if err := execute(name, cmd, *dir, *level, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", name, err)
		os.Exit(1)
	}
}

func execute(name string, cmd command, dir, level string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logCfg := cfg.Log
	logCfg.Level, logCfg.Format = level, "console"
	log, err := logger.New(logCfg, cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(log)

	if dir, err = locate(dir); err != nil {
		return err
	}
	log = log.With(zap.String("command", name), zap.String("dir", dir))
	inv := invocation{dir: dir, args: args, log: log}

	if !cmd.offline {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("reach database: %w", err)
		}
		if inv.mig, err = migration.New(db, dir, log); err != nil {
			return err
		}
		defer inv.mig.Close()
	}

	log.Debug("running")
	return cmd.run(inv)
}

func status(inv invocation) error {
	st, err := inv.mig.Status()
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty=%t), %d applied\n", st.Version, st.Dirty, len(st.Applied))
	for _, p := range st.Pending {
		fmt.Println("pending", p)
	}
	return nil
}

func create(inv invocation) error {
	if len(inv.args) == 0 {
		return errors.New("name required")
	}
	mf, err := migration.CreateMigration(inv.dir, inv.args[0], strings.Join(inv.args[1:], " "))
	if err != nil {
		return err
	}
	inv.log.Info("created migration", zap.String("version", mf.Version), zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
	return nil
}

func list(inv invocation) error {
	files, err := migration.ListMigrations(inv.dir)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(files, "\n"))
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, args[0])
	}
	return n, nil
}

// locate resolves the migrations directory. Without -path it tries the
// working directory and then the repo root relative to bin/<os>/migrate.
func locate(dir string) (string, error) {
	if dir == "" {
		dir = migrationsDir
		if _, err := os.Stat(dir); err != nil {
			if exe, err := os.Executable(); err == nil {
				if alt := filepath.Join(filepath.Dir(exe), "..", "..", migrationsDir); exists(alt) {
					dir = alt
				}
			}
		}
	}
	return filepath.Abs(dir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate [-path dir] [-log-level level] <command> [args]")
	fmt.Fprintln(out, "\ncommands:")
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		c := commands[name]
		fmt.Fprintf(out, "  %-30s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(out, "\nthe database comes from ESTATE_DATABASE_* or config.yaml")
	flag.PrintDefaults()
}
