// Command gobjd is the reference process for the gobj runtime: it wires
// a Runtime, registers the demo supervisor/worker classes, builds a
// tree with CreateTree, starts the ambient services (metrics, health
// monitor, persistence), and drives one command + one event through the
// tree before settling into steady state until terminated.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/gobjkernel/pkg/authz"
	"github.com/cuemby/gobjkernel/pkg/command"
	"github.com/cuemby/gobjkernel/pkg/config"
	"github.com/cuemby/gobjkernel/pkg/gobj"
	"github.com/cuemby/gobjkernel/pkg/health"
	"github.com/cuemby/gobjkernel/pkg/istream"
	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/cuemby/gobjkernel/pkg/metrics"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/persist"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	httpAddr   string
	persistDB  string
	redisAddr  string
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gobjd",
	Short: "gobjd runs a demo gobj object tree to completion",
	Long: `gobjd builds a small supervisor/worker object tree, dispatches a
command and an event through it, and then serves Prometheus metrics and
a health-check monitor until terminated.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", ":9090", "address to serve /metrics on")
	rootCmd.Flags().StringVar(&persistDB, "persist", "", "bbolt database path for persistent attributes (disabled if empty)")
	rootCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the monitor audit sink (disabled if empty)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "global settings file (disabled if empty)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: true})
	logger := log.WithComponent("gobjd")

	monitor.Register(monitor.ZerologSink{})
	monitor.Register(metrics.MonitorSink{})
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		monitor.Register(monitor.NewRedisSink(client, "gobjd.audit"))
	}

	rt := gobj.New()

	if persistDB != "" {
		store, err := persist.Open(persistDB)
		if err != nil {
			return fmt.Errorf("open persistence store: %w", err)
		}
		defer store.Close()
		rt.SetPersistence(store)
	}

	if configPath != "" {
		settings, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		builtins := config.BuiltinVars("single", "gobjd", "default")
		rt.GlobalSettings = settings.ForObject("supervisor", "", builtins)
	}

	if err := rt.Classes.Register(newWorkerClass()); err != nil {
		return fmt.Errorf("register worker class: %w", err)
	}
	supervisorClass := newSupervisorClass()

	yuno, err := rt.YunoFactory("single", "supervisor", supervisorClass, types.KW{"realm_id": "default"})
	if err != nil {
		return fmt.Errorf("create yuno: %w", err)
	}

	worker, err := rt.CreateTree(yuno, gobj.TreeSpec{
		GClass:    "worker",
		Name:      "worker-1",
		AsService: true,
		Autoplay:  true,
		Autostart: true,
	}, "", "")
	if err != nil {
		return fmt.Errorf("create worker tree: %w", err)
	}

	if err := gobj.StartTree(yuno); err != nil {
		return fmt.Errorf("start tree: %w", err)
	}
	if err := gobj.ServiceAutoStart(rt); err != nil {
		return fmt.Errorf("service autostart: %w", err)
	}

	authz.RegisterGlobalChecker(func(target authz.Target, authzName string, kw types.KW, src pubsub.Endpoint) (bool, bool) {
		return authzName != "halt", true
	})

	if _, err := command.Dispatch(worker, "begin", nil); err != nil {
		return fmt.Errorf("dispatch begin: %w", err)
	}
	if _, err := worker.Send("tick", types.KW{"n": 1}, nil); err != nil {
		return fmt.Errorf("send tick: %w", err)
	}
	allowed, err := authz.UserHasAuthz(worker, "halt", nil, nil)
	if err != nil {
		return fmt.Errorf("check halt authz: %w", err)
	}
	logger.Info().Bool("allowed", allowed).Msg("checked halt authorization")

	monCtx, cancelMon := context.WithCancel(context.Background())
	defer cancelMon()
	healthMon := health.NewMonitor(worker, health.NewExecChecker([]string{"true"}), health.Config{
		Interval: 30 * time.Second,
		Timeout:  5 * time.Second,
		Retries:  2,
	})
	healthMon.Start(monCtx)
	defer healthMon.Stop()

	collector := metrics.NewCollector(rt)
	collector.Start(15 * time.Second)
	defer collector.Stop()

	reassembler, err := istream.NewDelimited(worker, []byte("\n"), "tick")
	if err != nil {
		return fmt.Errorf("build stream reassembler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		if err := istream.ServeWebSocket(reassembler, w, r); err != nil {
			logger.Error().Err(err).Msg("stream connection failed")
		}
	})
	srv := &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	logger.Info().Str("http_addr", httpAddr).Msg("gobjd ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)

	if err := gobj.StopTree(yuno); err != nil {
		return fmt.Errorf("stop tree: %w", err)
	}
	return nil
}
