// Command templog samples a radiator and the surrounding air with a TC-08
// thermocouple datalogger alongside an Optris infrared sensor, appends every
// sample to <name>.csv and plots the session to <name>.png on Ctrl-C.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	templog "github.com/ivancg269/go-templog"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := ParseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *Config) error {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.List {
		devs, err := templog.FindTC08()
		if err != nil {
			return fmt.Errorf("failed to list TC-08 units: %w", err)
		}
		for _, d := range devs {
			fmt.Println(d)
		}
		log.Infof("Found %d TC-08 units", len(devs))
		return nil
	}

	if devs, err := templog.FindTC08(); err != nil {
		log.WithError(err).Warn("USB enumeration failed, relying on the driver to find the TC-08")
	} else if len(devs) == 0 {
		log.Warn("No TC-08 found on the USB bus")
	}

	name := cfg.Name
	if name == "" {
		var err error
		if name, err = templog.PromptExperimentName(os.Stdin, os.Stdout); err != nil {
			return err
		}
	}

	session, err := templog.NewSession(cfg.Dir, name)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc := templog.NewTC08(templog.NewSDK())
	tc.SetMains(cfg.Mains)
	opts := []templog.Option{
		templog.WithCalibration(cfg.Calibration),
		templog.WithChannels(cfg.Radiator, cfg.Air),
		templog.WithInterval(cfg.Interval),
	}

	if cfg.MetricsAddr != "" {
		metrics := templog.NewMetrics()
		opts = append(opts, templog.WithMetrics(metrics))
		server := serveMetrics(cfg.MetricsAddr, metrics)
		defer shutdown(server)
	}

	if cfg.MQTTBroker != "" {
		pub, err := templog.DialMQTT(cfg.MQTTBroker, cfg.MQTTTopic, session)
		if err != nil {
			log.WithError(err).Warn("MQTT publishing disabled")
		} else {
			log.Infof("Publishing samples to %s on %s", pub.Topic(), cfg.MQTTBroker)
			opts = append(opts, templog.WithPublisher(pub))
			defer pub.Close()
		}
	}

	poller := templog.NewPoller(tc, templog.NewOptris(cfg.Optris, nil), session, opts...)
	runErr := poller.Run(ctx)
	if runErr == nil {
		fmt.Println()
		log.Info("Logging stopped by user.")
	}

	if err := session.Close(); err != nil {
		log.Errorf("Failed to close %s: %v", session.CSVPath(), err)
	}
	path, err := session.SavePlot()
	if err != nil {
		log.Errorf("Failed to save graph: %v", err)
	} else {
		log.Infof("Graph saved as '%s'", path)
	}

	if runErr != nil {
		return fmt.Errorf("logging aborted: %w", runErr)
	}
	return nil
}

func serveMetrics(addr string, metrics *templog.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Infof("Serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	return server
}

func shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("metrics server shutdown")
	}
}
