package pricing_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"PriceCatalog/internal/pricing"
)

func newPricingTS(t *testing.T) *httptest.Server {
	t.Helper()

	store := pricing.NewMemStore()
	s := &pricing.Server{
		Pipeline: &pricing.Pipeline{Store: store, Log: zap.NewNop()},
		Store:    store,
		Log:      zap.NewNop(),
	}

	h := pricing.NewHandler(s, pricing.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "pricing",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doGet(t *testing.T, base, path string, params url.Values) (int, string) {
	t.Helper()

	u := base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(raw)
}

func mustOK(t *testing.T, base, path string, params url.Values) {
	t.Helper()
	if status, body := doGet(t, base, path, params); status != http.StatusOK {
		t.Fatalf("GET %s status=%d body=%q", path, status, body)
	}
}

func seedCatalog(t *testing.T, base string) {
	t.Helper()
	mustOK(t, base, "/addProduct", url.Values{
		"name": {"Tea"}, "kind": {"drink"}, "price": {"100"},
	})
	mustOK(t, base, "/addProduct", url.Values{
		"name": {"Chair"}, "kind": {"furniture"}, "price": {"500"},
	})
}

func TestGetConvertsPricesForUser(t *testing.T) {
	ts := newPricingTS(t)

	mustOK(t, ts.URL, "/addUser", url.Values{"id": {"1"}, "currency": {"EURO"}})
	seedCatalog(t, ts.URL)

	status, body := doGet(t, ts.URL, "/get", url.Values{"userId": {"1"}, "kind": {"drink"}})
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%q", status, body)
	}

	want := fmt.Sprintf("%-30s  %s\n", "Tea", "2.5")
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestGetUnrecognizedCurrencyKeepsBasePrice(t *testing.T) {
	ts := newPricingTS(t)

	mustOK(t, ts.URL, "/addUser", url.Values{"id": {"2"}, "currency": {"XYZ"}})
	seedCatalog(t, ts.URL)

	status, body := doGet(t, ts.URL, "/get", url.Values{"userId": {"2"}, "kind": {"drink"}})
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%q", status, body)
	}

	want := fmt.Sprintf("%-30s  %s\n", "Tea", "100")
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestGetUnknownUserEmptyBody(t *testing.T) {
	ts := newPricingTS(t)
	seedCatalog(t, ts.URL)

	status, body := doGet(t, ts.URL, "/get", url.Values{"userId": {"999"}, "kind": {"drink"}})
	if status != http.StatusOK {
		t.Fatalf("status=%d", status)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestGetNoMatchingProductsEmptyBody(t *testing.T) {
	ts := newPricingTS(t)

	mustOK(t, ts.URL, "/addUser", url.Values{"id": {"1"}, "currency": {"USD"}})
	seedCatalog(t, ts.URL)

	status, body := doGet(t, ts.URL, "/get", url.Values{"userId": {"1"}, "kind": {"toys"}})
	if status != http.StatusOK {
		t.Fatalf("status=%d", status)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestGetRejectsBadParams(t *testing.T) {
	ts := newPricingTS(t)

	if status, _ := doGet(t, ts.URL, "/get", url.Values{"userId": {"abc"}, "kind": {"drink"}}); status != http.StatusBadRequest {
		t.Errorf("non-integer userId: status=%d, want 400", status)
	}
	if status, _ := doGet(t, ts.URL, "/get", url.Values{"userId": {"1"}}); status != http.StatusBadRequest {
		t.Errorf("missing kind: status=%d, want 400", status)
	}
	if status, _ := doGet(t, ts.URL, "/addUser", url.Values{"id": {"1"}}); status != http.StatusBadRequest {
		t.Errorf("missing currency: status=%d, want 400", status)
	}
	if status, _ := doGet(t, ts.URL, "/addProduct", url.Values{"name": {"Tea"}, "kind": {"drink"}, "price": {"cheap"}}); status != http.StatusBadRequest {
		t.Errorf("non-numeric price: status=%d, want 400", status)
	}
}

func TestUnknownPath404(t *testing.T) {
	ts := newPricingTS(t)

	status, body := doGet(t, ts.URL, "/nope", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", status)
	}
	if body != "Invalid query path" {
		t.Errorf("body = %q, want %q", body, "Invalid query path")
	}
}

// brokenCatalogStore fails every product scan while leaving the user side
// of the store healthy.
type brokenCatalogStore struct {
	*pricing.MemStore
}

func (s *brokenCatalogStore) ScanProducts(context.Context, func(pricing.Product) error) error {
	return fmt.Errorf("%w: connection reset", pricing.ErrStoreUnavailable)
}

func TestGetStoreFailureReturns503(t *testing.T) {
	store := &brokenCatalogStore{MemStore: pricing.NewMemStore()}
	if err := store.InsertUser(context.Background(), pricing.UserRecord{ID: 1, Currency: "EURO"}); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}

	s := &pricing.Server{
		Pipeline: &pricing.Pipeline{Store: store, Log: zap.NewNop()},
		Store:    store,
		Log:      zap.NewNop(),
	}
	ts := httptest.NewServer(pricing.NewHandler(s, pricing.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "pricing",
	}))
	t.Cleanup(ts.Close)

	status, body := doGet(t, ts.URL, "/get", url.Values{"userId": {"1"}, "kind": {"drink"}})
	if status != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%q, want 503 when the catalog scan fails", status, body)
	}
	if body == "" {
		t.Error("body is empty, want an error message distinguishable from no results")
	}
}

func TestHealthAndReady(t *testing.T) {
	ts := newPricingTS(t)

	if status, _ := doGet(t, ts.URL, "/healthz", nil); status != http.StatusOK {
		t.Errorf("healthz status=%d", status)
	}
	if status, _ := doGet(t, ts.URL, "/readyz", nil); status != http.StatusOK {
		t.Errorf("readyz status=%d", status)
	}
}
