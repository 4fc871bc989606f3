package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"

	"github.com/ferncreek/daytrace/internal/collector"
	"github.com/ferncreek/daytrace/internal/config"
	"github.com/ferncreek/daytrace/internal/ipc"
	"github.com/ferncreek/daytrace/internal/source"
	"github.com/ferncreek/daytrace/internal/store"
)

func main() {
	// check for argument to determine config location
	argPath := "/etc/daytrace/config.toml"
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	log.Println("Using config file at:", argPath)
	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
		log.Fatal("Failed to create store directory:", err)
	}
	mgr, err := store.NewManager(cfg.StorePath, cfg.SampleInterval.Std())
	if err != nil {
		log.Fatal("Failed to initialize store:", err)
	}
	if warn := mgr.LoadWarning(); warn != nil {
		log.Println("store recovered with warning:", warn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var wg sync.WaitGroup

	// Start the D-Bus query service
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Opening session D-Bus service...")
		if err := serveDayTrace(ctx, mgr); err != nil {
			log.Println("daytrace service error:", err)
		}
	}()

	// Start the collector (periodic sampler)
	wg.Add(1)
	go func() {
		defer wg.Done()
		c := collector.NewCollector(mgr, cfg, buildSources(cfg)...)
		if err := c.Run(ctx); err != nil {
			log.Println("collector error:", err)
		}
	}()

	wg.Wait()
	fmt.Println("Shutdown complete")
}

// buildSources assembles whatever sources this host supports. A source
// that cannot initialize is skipped: its fields stay null in the
// recorded heartbeats, which degrades data but never the process.
func buildSources(cfg *config.Config) []source.Source {
	var sources []source.Source

	logind, err := source.NewLogindSource(cfg.MayBeInactiveAfter.Std(), cfg.InactiveAfter.Std())
	if err != nil {
		log.Println("logind source unavailable:", err)
	} else {
		sources = append(sources, logind)
	}

	return sources
}

func serveDayTrace(ctx context.Context, mgr *store.Manager) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	reply, err := conn.RequestName(ipc.ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("failed to request name: %w", err)
	}

	tracker := &ipc.Tracker{Manager: mgr}
	err = conn.Export(tracker, dbus.ObjectPath(ipc.ObjectPath), ipc.InterfaceName)
	if err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}

	<-ctx.Done()
	return nil
}
