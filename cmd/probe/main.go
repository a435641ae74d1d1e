// Command probe runs a conformance pass over a tool catalog: it prints one
// status line per tool to stdout and always exits 0 — callers inspect the
// printed status lines, not the exit code. With -serve it hosts the live
// dashboard instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	probe "github.com/Protocol-Lattice/go-probe"
	"github.com/Protocol-Lattice/go-probe/src/catalog"
	"github.com/Protocol-Lattice/go-probe/src/dashboard"
	"github.com/Protocol-Lattice/go-probe/src/models"
	"github.com/Protocol-Lattice/go-probe/src/params"
	"github.com/Protocol-Lattice/go-probe/src/store"
)

// loadConfig layers defaults, an optional probe.{yaml,json,toml} in the
// working directory, and PROBE_* environment variables. Flags override all.
func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("endpoint", "http://localhost:8000/mcp/")
	v.SetDefault("catalog", "tools.json")
	v.SetDefault("cache_dir", "param_cache")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "gpt-4")
	v.SetDefault("timeout", probe.DefaultTimeout.String())
	v.SetDefault("store_dsn", "")
	v.SetDefault("serve_addr", ":8787")

	v.SetEnvPrefix("probe")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("probe")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // config file is optional

	return v
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg := loadConfig()

	var (
		endpoint    = flag.String("endpoint", cfg.GetString("endpoint"), "tool server JSON-RPC endpoint URL")
		catalogPath = flag.String("catalog", cfg.GetString("catalog"), "path to the tool catalog JSON document")
		cacheDir    = flag.String("cache-dir", cfg.GetString("cache_dir"), "directory for cached per-tool parameters")
		provider    = flag.String("provider", cfg.GetString("provider"), "argument synthesis provider: openai, anthropic, gemini, ollama, dummy")
		modelName   = flag.String("model", cfg.GetString("model"), "model name for the synthesis provider")
		timeoutStr  = flag.String("timeout", cfg.GetString("timeout"), "per-call timeout, e.g. 30s")
		storeDSN    = flag.String("store", cfg.GetString("store_dsn"), "optional result store DSN (postgres:// or mongodb://)")
		serve       = flag.Bool("serve", false, "serve the live dashboard instead of running once")
		serveAddr   = flag.String("serve-addr", cfg.GetString("serve_addr"), "dashboard listen address")
	)
	flag.Parse()

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		logger.Fatal().Err(err).Str("timeout", *timeoutStr).Msg("invalid timeout")
	}

	ctx := context.Background()

	tools, err := catalog.Load(*catalogPath)
	if err != nil {
		logger.Fatal().Err(err).Str("catalog", *catalogPath).Msg("load catalog")
	}

	diskCache, err := params.NewDiskCache(*cacheDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *cacheDir).Msg("init parameter cache")
	}

	model, err := models.NewProvider(ctx, *provider, *modelName)
	if err != nil {
		logger.Fatal().Err(err).Msg("init synthesis provider")
	}

	runner := &probe.Runner{
		Tools:    tools,
		Provider: params.NewModelProvider(model, diskCache),
		Client:   &probe.Client{Endpoint: *endpoint, Timeout: timeout},
	}

	if *serve {
		srv := dashboard.New(runner, logger)
		logger.Info().Str("addr", *serveAddr).Int("tools", len(tools)).Msg("dashboard listening")
		if err := http.ListenAndServe(*serveAddr, srv.Handler()); err != nil {
			logger.Fatal().Err(err).Msg("dashboard server")
		}
		return
	}

	var sink store.Store
	if *storeDSN != "" {
		sink, err = store.Open(ctx, *storeDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("open result store")
		}
		defer func() {
			if err := sink.Close(ctx); err != nil {
				logger.Error().Err(err).Msg("close result store")
			}
		}()
	}

	runID := uuid.NewString()
	logger.Info().Str("run_id", runID).Int("tools", len(tools)).Msg("starting conformance run")

	tested := 0
	for rec := range runner.Run(ctx) {
		tested++
		printRecord(rec)
		if sink != nil {
			if err := sink.Save(ctx, runID, rec); err != nil {
				// Persistence is best-effort; the run keeps going.
				logger.Error().Err(err).Str("tool", rec.Name).Msg("store result")
			}
		}
	}
	logger.Info().Int("tested", tested).Msg("run complete")
}

func printRecord(rec probe.Record) {
	if rec.Err != "" {
		fmt.Printf("[ERROR] %s\n", rec.Name)
		fmt.Printf("❌ Error: %s\n", rec.Err)
		fmt.Println(strings.Repeat("-", 60))
		return
	}

	output := "null"
	if rec.Output != nil {
		if data, err := json.Marshal(rec.Output); err == nil {
			output = string(data)
		}
	}

	fmt.Printf("[%s] %s\n", strings.ToUpper(string(rec.Status)), rec.Name)
	if rec.Status == probe.StatusError {
		fmt.Printf("❌ Error: %s\n", output)
	} else {
		fmt.Printf("✅ Output: %s...\n", truncate(output, 200))
	}
	fmt.Println(strings.Repeat("-", 60))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
