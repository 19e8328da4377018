package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"PriceCatalog/internal/pricing"
	"PriceCatalog/pkg/kit"
)

func main() {
	service := "pricing"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")

	store, err := newStore(log)
	if err != nil {
		log.Fatal("init store failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()

	s := &pricing.Server{
		Pipeline: &pricing.Pipeline{
			Store:   store,
			Log:     log,
			Metrics: pricing.NewPipelineMetrics(reg),
		},
		Store: store,
		Log:   log,
	}

	h := pricing.NewHandler(s, pricing.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: getenv("METRICS_ENABLED", "") == "1",
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newStore(log *zap.Logger) (pricing.Store, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		log.Info("using postgres store")
		return pricing.OpenPostgresStore(dsn)
	}
	log.Info("using in-memory store")
	return pricing.NewMemStore(), nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
