package pricing

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// PricedProduct pairs a catalog product with the conversion ratio of the
// requesting user's currency. It is derived per request, never stored.
type PricedProduct struct {
	Product Product
	Ratio   float64
}

// DisplayPrice is the product price in the user's currency.
func (p PricedProduct) DisplayPrice() float64 {
	return p.Product.PriceRub / p.Ratio
}

type PipelineMetrics struct {
	Queries       *prometheus.CounterVec
	WarmCancelled prometheus.Counter
}

func NewPipelineMetrics(reg *prometheus.Registry) *PipelineMetrics {
	m := &PipelineMetrics{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_queries_total",
				Help: "Pricing queries by outcome",
			},
			[]string{"outcome"},
		),
		WarmCancelled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_warm_scans_cancelled_total",
				Help: "Catalog warm-ups abandoned because the user could not be resolved",
			},
		),
	}

	reg.MustRegister(m.Queries, m.WarmCancelled)
	return m
}

// Pipeline joins a user's currency preference against the product catalog.
type Pipeline struct {
	Store   Store
	Log     *zap.Logger
	Metrics *PipelineMetrics
}

// ResultSet is the incremental output of one query. C is closed once the
// catalog is exhausted or the request is abandoned; Err is meaningful
// after C has been drained.
type ResultSet struct {
	C      <-chan PricedProduct
	stream *CatalogStream
}

func (r *ResultSet) Err() error {
	if r.stream == nil {
		return nil
	}
	return r.stream.Err()
}

// Collect drains the result set into a slice.
func (r *ResultSet) Collect() ([]PricedProduct, error) {
	var out []PricedProduct
	for p := range r.C {
		out = append(out, p)
	}
	return out, r.Err()
}

func emptyResultSet() *ResultSet {
	ch := make(chan PricedProduct)
	close(ch)
	return &ResultSet{C: ch}
}

// Query returns every product of the given kind priced in the user's
// currency. The catalog stream is opened before the user lookup starts, so
// both store scans run concurrently; when the user cannot be resolved the
// in-flight warm scan is cancelled instead of running to waste, and the
// result is empty. Each call opens its own stream.
func (pl *Pipeline) Query(ctx context.Context, kind string, userID int) (*ResultSet, error) {
	stream := OpenCatalogStream(ctx, pl.Store, kind, pl.Log)

	user, found, err := ResolveUser(ctx, pl.Store, userID)
	if err != nil {
		stream.Cancel()
		pl.count("error")
		return nil, err
	}
	if !found {
		stream.Cancel()
		pl.count("user_not_found")
		if pl.Metrics != nil {
			pl.Metrics.WarmCancelled.Inc()
		}
		if pl.Log != nil {
			pl.Log.Info("user not found, warm scan cancelled",
				zap.Int("user_id", userID),
				zap.String("kind", kind),
			)
		}
		return emptyResultSet(), nil
	}

	products, ok := stream.Attach(ctx)
	if !ok {
		// A rejected attach means a cancel was committed first; the query
		// deterministically yields nothing.
		pl.count("cancelled")
		return emptyResultSet(), nil
	}

	ratio := RatioFor(user.Currency)
	out := make(chan PricedProduct)
	go func() {
		defer close(out)
		for p := range products {
			select {
			case out <- PricedProduct{Product: p, Ratio: ratio}:
			case <-ctx.Done():
				return
			}
		}
	}()

	pl.count("ok")
	return &ResultSet{C: out, stream: stream}, nil
}

func (pl *Pipeline) count(outcome string) {
	if pl.Metrics != nil {
		pl.Metrics.Queries.WithLabelValues(outcome).Inc()
	}
}
