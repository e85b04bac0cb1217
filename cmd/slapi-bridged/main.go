// Command slapi-bridged is the bridge process: it brings up Wi-Fi, opens
// the configured transport (UART or bit-banged parallel GPIO), and runs
// the SLAPI session loop that relays HTTP requests from the tethered host.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"periph.io/x/periph/host"

	"github.com/rockcat/slapi-bridge/internal/config"
	"github.com/rockcat/slapi-bridge/internal/metrics"
	"github.com/rockcat/slapi-bridge/internal/slapi"
	"github.com/rockcat/slapi-bridge/internal/wifi"
)

func main() {
	log := logrus.New()
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			log.WithError(err).Warn("invalid LOG_LEVEL, defaulting to info")
		} else {
			log.SetLevel(parsed)
		}
	}

	if err := run(log); err != nil {
		log.WithError(err).Fatal("slapi-bridged exiting")
	}
}

func run(log *logrus.Logger) error {
	configPath := ".env"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	if _, err := host.Init(); err != nil {
		log.WithError(err).Warn("periph host init failed, GPIO transports unavailable")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	defer cfg.Transport.Close()

	if cfg.WifiSSID != "" {
		associator := wifi.NewSysfsAssociator(log)
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := associator.WaitForAssociation(ctx, cfg.Interface); err != nil {
			return fmt.Errorf("waiting for wifi: %w", err)
		}
	}

	var collector *metrics.RelayCollector
	if cfg.MetricsAddr != "" {
		hostname, _ := os.Hostname()
		collector = metrics.NewRelayCollector(
			[]string{"id", "remote_host"},
			prometheus.Labels{"app": "slapi-bridge", "hostname": hostname},
			func(err error) { log.WithError(err).Warn("metrics collector") },
		)
		prometheus.MustRegister(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("metrics endpoint listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	session := slapi.NewSession(cfg.Transport, log, collector)
	return session.Start()
}
