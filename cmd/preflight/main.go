// cmd/preflight/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/hamed0406/statuspage/internal/config"
	"github.com/hamed0406/statuspage/internal/targets"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (optional; env overrides)")
	flag.Parse()

	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		fail("config invalid")
	}
	ok("config loaded; HTTP_ADDR=" + cfg.HTTP.Addr)

	if cfg.UsesPostgres() {
		ok("DB_DSN present")
	} else {
		warn("DB_DSN empty; checks will be kept in memory and lost on restart.")
	}

	if fi, err := os.Stat(cfg.HTTP.StaticDir); err != nil || !fi.IsDir() {
		warn("HTTP_STATIC_DIR " + cfg.HTTP.StaticDir + " not found; only the JSON API will be served.")
	} else {
		ok("static dashboard from " + cfg.HTTP.StaticDir)
	}

	for _, o := range cfg.HTTP.AllowedOrigins {
		if o == "*" {
			warn("HTTP_ALLOWED_ORIGINS allows any origin.")
			break
		}
	}

	ts, err := targets.LoadFile(cfg.ServicesFile)
	if err != nil {
		for _, e := range targets.Problems(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		fail("services file rejected: " + cfg.ServicesFile)
	}
	if len(ts) == 0 {
		warn(cfg.ServicesFile + " lists no services; nothing will be checked.")
	} else {
		ok(fmt.Sprintf("%d services in %s", len(ts), cfg.ServicesFile))
	}

	ok(fmt.Sprintf("checks %q, reloads %q", cfg.Schedule.Check, cfg.Schedule.Reload))
	ok("preflight passed")
}
