package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/soar/inputmap/internal/config"
	"github.com/soar/inputmap/internal/console"
	"github.com/soar/inputmap/internal/hub"
	"github.com/soar/inputmap/internal/input"
	"github.com/soar/inputmap/internal/reader"
	"github.com/soar/inputmap/internal/server"
	"github.com/soar/inputmap/internal/tray"
)

// Cross-platform signal handling: use os.Interrupt on all platforms
// On Windows: os.Interrupt is sent when Ctrl+C is pressed
// On Unix: os.Interrupt is equivalent to syscall.SIGINT
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	fromConsole := console.IsRunningFromConsole()

	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	settings, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Settings: %v", err)
	}
	if printSettings, _ := flags.GetBool("print-settings"); printSettings {
		if err := settings.WriteTOML(os.Stdout); err != nil {
			log.Fatalf("Settings: %v", err)
		}
		return
	}
	if settings.ConfigFile != "" {
		log.Printf("Settings loaded from %s", settings.ConfigFile)
	}

	// Create the input engine and restore persisted bindings
	store := config.NewStore(settings.BindingsFile)
	engine := input.New(input.Options{
		RepeatDelay:    settings.Input.RepeatDelay,
		RepeatInterval: settings.Input.RepeatInterval,
		StickDeadzone:  settings.Input.StickDeadzone,
		Layout:         settings.Icons,
		Custom:         settings.Definitions(),
		Store:          store,
	})
	switch cfg, err := store.Load(); {
	case errors.Is(err, config.ErrNoBindings):
		log.Printf("No bindings at %s, using defaults", store.Path())
	default:
		if err != nil {
			log.Printf("Bindings at %s partly unreadable: %v", store.Path(), err)
		}
		if err := engine.ApplyConfig(cfg); err != nil {
			log.Printf("Bindings loaded with fallbacks: %v", err)
		}
	}

	// Create cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	consoleShutdown := make(chan struct{})
	reregisterConsole := console.SetupConsoleHandler(consoleShutdown)

	// Create and start hub
	h := hub.NewHub()
	go h.Run(ctx)

	// Create broadcaster
	broadcaster := hub.NewBroadcaster(h, engine.Changes())
	go broadcaster.Run(ctx)

	// Create and start HTTP server
	srv := server.New(h, broadcaster, engine, getFrontendFS(), settings.Server.Addr)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	url := tray.InspectorURL(settings.Server.Addr)
	log.Printf("inputmap started: %s", url)

	// Channel for tray-triggered shutdown
	shutdownRequested := make(chan struct{})

	var t *tray.Tray
	if !settings.NoTray && (runtime.GOOS == "windows" || !fromConsole) {
		t = tray.New(tray.Options{
			URL: url,
			Reset: func() {
				engine.Submit(func(e *input.Engine) { e.ResetAll() })
			},
			Shutdown: func() {
				close(shutdownRequested)
			},
		})
		go t.Run(tray.GetIcon())
	} else {
		log.Println("Press Ctrl+C to exit")
	}

	// The reader owns the engine from here on: it locks its OS thread for
	// SDL and calls Update once per frame.
	rd := reader.New(engine, "inputmap")
	rd.AfterInit = reregisterConsole
	readerDone := make(chan error, 1)
	go func() {
		readerDone <- rd.Run(ctx)
	}()

	// Wait for shutdown signal, tray request, server error or reader exit
	var readerErr error
	readerStopped := false
	select {
	case <-sigCh:
		log.Println("Shutting down...")
	case <-consoleShutdown:
		log.Println("Shutting down...")
	case <-shutdownRequested:
		log.Println("Shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("HTTP server error: %v", err)
	case readerErr = <-readerDone:
		readerStopped = true
		if readerErr != nil {
			log.Printf("Input reader stopped: %v", readerErr)
		} else {
			log.Println("Input window closed")
		}
	}
	cancel()

	// Wait for reader to finish
	if !readerStopped {
		readerErr = <-readerDone
	}
	engine.Close()

	// Shutdown the HTTP server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if t != nil {
		t.Quit()
	}

	log.Println("inputmap stopped")
	if readerErr != nil {
		os.Exit(1)
	}
}
