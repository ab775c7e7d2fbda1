package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ezeeyahoo/alot/internal/account"
	"github.com/ezeeyahoo/alot/internal/commands"
	"github.com/ezeeyahoo/alot/internal/config"
	"github.com/ezeeyahoo/alot/internal/hooks"
	"github.com/ezeeyahoo/alot/internal/logging"
	"github.com/ezeeyahoo/alot/internal/store"
	"github.com/ezeeyahoo/alot/internal/tui"
)

func main() {
	roFlag := flag.Bool("read-only", false, "open the index read-only")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	readOnly := *roFlag || cfg.Database.ReadOnly

	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o755); err != nil {
		log.Fatalf("mkdir log dir: %v", err)
	}
	logger, err := logging.New(cfg.Log.Path, *debug || cfg.Log.Debug)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if !readOnly {
		if err := store.RunMigrations(cfg.Database.Path, "internal/store/migrations"); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	db, err := store.OpenDB(cfg.Database.Path, readOnly)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	st := store.New(db, readOnly)
	accounts := account.FromConfig(cfg.Accounts)
	hookTable := hooks.FromConfig(cfg.Hooks, logger)

	registry := commands.NewRegistry()
	factory := commands.NewFactory(registry, hookTable, logger)
	interp := commands.NewInterpreter(factory, cfg.Aliases, logger)

	app := tui.New(cfg, st, accounts, interp, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(p)
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		logger.Error("terminal loop failed", zap.Error(err))
	}
}
