package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"PriceCatalog/pkg/kit"
)

const readyPingTimeout = 1 * time.Second

type Server struct {
	Pipeline *Pipeline
	Store    Store
	Log      *zap.Logger
}

// handleGet serves /get?userId=<int>&kind=<string>: one text line per
// matching product, price converted into the user's currency. An unknown
// user or an empty category both produce an empty body.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "userId must be an integer")
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "kind is required")
		return
	}

	res, err := s.Pipeline.Query(r.Context(), kind, userID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)
	wrote := false
	for p := range res.C {
		fmt.Fprintf(w, "%-30s  %s\n", p.Product.Name, formatPrice(p.DisplayPrice()))
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
	}

	if err := res.Err(); err != nil {
		if !wrote {
			// Nothing has been committed yet, so the failure can still be
			// reported properly instead of masquerading as an empty result.
			s.writeStoreError(w, r, err)
			return
		}
		if s.Log != nil {
			// Headers are already out; the truncated body is all the
			// client sees, so at least leave a trace.
			s.Log.Error("catalog scan failed mid-response", zap.Error(err))
		}
	}
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "currency is required")
		return
	}

	if err := s.Store.InsertUser(r.Context(), UserRecord{ID: id, Currency: currency}); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteText(w, http.StatusOK, "OK\n")
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	name := q.Get("name")
	kind := q.Get("kind")
	if name == "" || kind == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "name and kind are required")
		return
	}
	price, err := strconv.ParseFloat(q.Get("price"), 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "price must be a number")
		return
	}

	if err := s.Store.InsertProduct(r.Context(), Product{Name: name, Kind: kind, PriceRub: price}); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	kit.WriteText(w, http.StatusOK, "OK\n")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if s.Log != nil {
		s.Log.Error("store operation failed", zap.Error(err))
	}
	if errors.Is(err, ErrStoreUnavailable) {
		kit.WriteError(w, r, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error")
}

// formatPrice renders the converted price without trailing zeros, e.g.
// 2.5 and 100 rather than 2.500000.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
