package pricing

import (
	"context"
	"testing"
)

func TestMemStoreScansInInsertionOrder(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	_ = s.InsertUser(ctx, UserRecord{ID: 7, Currency: "USD"})
	_ = s.InsertUser(ctx, UserRecord{ID: 7, Currency: "EURO"})

	var got []string
	err := s.ScanUsers(ctx, func(u UserRecord) error {
		got = append(got, u.Currency)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanUsers: %v", err)
	}
	if len(got) != 2 || got[0] != "USD" || got[1] != "EURO" {
		t.Fatalf("scan order = %v, want [USD EURO]", got)
	}
}

func TestMemStoreScanStopsOnCancelledContext(t *testing.T) {
	s := NewMemStore()
	for _, p := range catalogFixture() {
		_ = s.InsertProduct(context.Background(), p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reads := 0
	err := s.ScanProducts(ctx, func(Product) error {
		reads++
		return nil
	})
	if err == nil {
		t.Fatal("expected context error")
	}
	if reads != 0 {
		t.Errorf("reads = %d, want 0", reads)
	}
}
