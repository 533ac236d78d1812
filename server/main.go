package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	"github.com/saint2706/Games-sub001/server/config"
	"github.com/saint2706/Games-sub001/server/store"
)

//
// ===== pretty printing =====
//

var useColor bool
var debugState bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }
func sub(title string)     { fmt.Printf("%s %s\n", dim("•"), bold(title)) }

var stopFlag atomic.Bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	useColor = (os.Getenv("NO_COLOR") == "") && (strings.TrimSpace(os.Getenv("USE_COLOR")) != "0")
	debugState = config.AsBool(os.Getenv("DEBUG"))

	var migrate, duel, writeProfiles bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--duel":
			duel = true
		case "--write-profiles":
			writeProfiles = true
		}
	}

	reg, path, err := config.LoadProfiles()
	if err != nil {
		log.Fatal(err)
	}
	if path != "" {
		log.Printf("profiles loaded from %s", path)
	}
	if writeProfiles {
		out, err := config.SaveProfiles(reg)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("profiles written to %s", out)
		return
	}

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)
	if s := config.AtoiDef(os.Getenv("MAX_SECONDS"), 0); s > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, time.Duration(s)*time.Second)
		defer stop()
	}
	if f := os.Getenv("STOP_FILE"); f != "" {
		go watchStopFile(ctx, f, cancel)
	}

	if migrate {
		config.MustEnv("DATABASE_URL")
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close(context.Background())
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrated")
		return
	}

	db := openDB(cfg)
	if db != nil {
		defer db.Close(context.Background())
	}

	if duel {
		if err := runDuel(ctx, cfg, reg, db); err != nil {
			log.Fatal(err)
		}
		return
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(NewServer(reg, db, cfg.MCWorkers, cfg.DeckSeed)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()
	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openDB returns nil when DATABASE_URL is unset or unusable; persistence is
// optional in every mode except --migrate.
func openDB(cfg config.Settings) *store.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Printf("DB disabled (open failed): %v", err)
		return nil
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Printf("migrate failed (continuing without DB): %v", err)
			db.Close(context.Background())
			return nil
		}
		log.Println("migrated")
	}
	return db
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	stopFlag.Store(true)
	cancel()
}

func watchStopFile(ctx context.Context, path string, cancel context.CancelFunc) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := os.Stat(path); err == nil {
				stopFlag.Store(true)
				cancel()
				return
			}
		}
	}
}
