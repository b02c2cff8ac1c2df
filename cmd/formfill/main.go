// Command formfill drives the form-fill engine in one of three modes:
//
//	formfill -url URL [-profile profile.json] [-resume resume.pdf] [-fill]
//	formfill -serve            HTTP control plane
//	formfill -mcp              MCP tools over stdio
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hiremate/formfill"
	"github.com/hiremate/formfill/cache"
	"github.com/hiremate/formfill/internal/api"
	"github.com/hiremate/formfill/internal/config"
	"github.com/hiremate/formfill/mapper"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file")
		pageURL     = flag.String("url", "", "application page URL to discover")
		doFill      = flag.Bool("fill", false, "fill after discovering (-url mode)")
		profilePath = flag.String("profile", "", "profile JSON for value mapping")
		resumePath  = flag.String("resume", "", "resume file for upload fields")
		serve       = flag.Bool("serve", false, "run the HTTP API")
		mcpMode     = flag.Bool("mcp", false, "serve MCP tools over stdio")
		logLevel    = flag.String("log-level", "info", "debug | info | warn | error")
	)
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fatal(logger, "load config", err)
		}
	}

	store, err := cache.Open(cfg.Cache.Path, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger))
	if err != nil {
		fatal(logger, "open cache", err)
	}
	defer store.Close()
	if n, err := store.PurgeExpired(ctx); err == nil && n > 0 {
		logger.Info("cache: expired entries purged", "count", n)
	}

	opts := []formfill.Option{formfill.WithLogger(logger), formfill.WithCache(store)}
	if cfg.Mapper.URL != "" {
		mc, err := mapper.New(mapper.Config{
			BaseURL: cfg.Mapper.URL,
			APIKey:  cfg.Mapper.APIKey,
			Timeout: cfg.Mapper.Timeout,
			Logger:  logger,
		})
		if err != nil {
			fatal(logger, "mapper client", err)
		}
		opts = append(opts, formfill.WithMapper(mc))
	}

	engine := formfill.New(cfg, opts...)
	if err := engine.Start(ctx); err != nil {
		fatal(logger, "start engine", err)
	}
	defer engine.Close()

	switch {
	case *serve:
		runServe(ctx, logger, cfg, engine)
	case *mcpMode:
		runMCP(ctx, logger, engine)
	case *pageURL != "":
		runOnce(ctx, logger, engine, *pageURL, *doFill, *profilePath, *resumePath)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runServe(ctx context.Context, logger *slog.Logger, cfg *config.Config, engine *formfill.Engine) {
	srv := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: api.Handler(engine, api.Config{TokenHash: cfg.API.TokenHash, Logger: logger}),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info("http: listening", "addr", cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fatal(logger, "http server", err)
	}
}

func runMCP(ctx context.Context, logger *slog.Logger, engine *formfill.Engine) {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "formfill",
		Version: "1.0.0",
	}, nil)
	engine.RegisterMCP(srv)

	logger.Info("mcp: serving on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		fatal(logger, "mcp server", err)
	}
}

// runOnce discovers one page, optionally fills it, and prints the outcome
// as JSON on stdout.
func runOnce(ctx context.Context, logger *slog.Logger, engine *formfill.Engine, pageURL string, doFill bool, profilePath, resumePath string) {
	session, err := engine.Discover(ctx, pageURL)
	if err != nil {
		fatal(logger, "discover", err)
	}

	out := map[string]any{"session": session}

	if doFill {
		req := formfill.FillRequest{}
		if profilePath != "" {
			data, err := os.ReadFile(profilePath)
			if err != nil {
				fatal(logger, "read profile", err)
			}
			req.Profile = data
		}
		if resumePath != "" {
			data, err := os.ReadFile(resumePath)
			if err != nil {
				fatal(logger, "read resume", err)
			}
			req.Resume = &formfill.Resume{Name: filepath.Base(resumePath), Data: data}
		}

		res, err := engine.Fill(ctx, session.ID, req)
		if err != nil {
			fatal(logger, "fill", err)
		}
		out["result"] = res
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatal(logger, "encode output", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
