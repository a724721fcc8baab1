package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/mcp"
	"github.com/Joseda-hg/lazyfocus/internal/tui"
	"github.com/Joseda-hg/lazyfocus/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path (defaults to in-memory)")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	mcpFlag := flag.Bool("mcp", false, "serve MCP tools on stdio instead of the TUI")
	verboseFlag := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = ":memory:"
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(filepath.Dir(cfgPath), "lazyfocus.log")
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	logger, closeLog, err := openLogger(cfg.LogPath, *verboseFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.DB.Close()

	shell := app.New(store, app.Options{
		Settings: cfg.Settings,
		Logger:   logger,
		SaveSettings: func(settings config.Settings) error {
			cfg.Settings = settings
			return config.Save(cfgPath, cfg)
		},
	})
	defer func() {
		if err := shell.Close(context.Background()); err != nil {
			logger.Error("close timer", "err", err)
		}
	}()

	if *mcpFlag {
		if err := mcp.Serve(mcp.NewServer(store, shell)); err != nil {
			logger.Error("mcp server", "err", err)
			fmt.Fprintln(os.Stderr, err)
		}
		return
	}

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(store, shell, logger).Handler()
		if *webOnlyFlag {
			log.Printf("Web server running at http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Error("web server", "err", err)
				fmt.Fprintln(os.Stderr, err)
			}
			return
		}

		go func() {
			logger.Info("web server running", "addr", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Error("web server", "err", err)
			}
		}()
	}

	if err := tui.Run(shell); err != nil {
		logger.Error("tui", "err", err)
		fmt.Fprintln(os.Stderr, err)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// openLogger writes structured logs to a file; the TUI owns the terminal.
func openLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	if err := config.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = file.Close() }, nil
}

func openStore(dbPath string) (*db.Store, error) {
	if dbPath != ":memory:" {
		if err := config.EnsureDir(dbPath); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}
