package pricing

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks infrastructure failures of the document store.
// Handlers map it to 503 so callers can tell it apart from a legitimately
// empty result.
var ErrStoreUnavailable = errors.New("store unavailable")

type Product struct {
	Name     string
	Kind     string
	PriceRub float64
}

// UserRecord is the stored form of a user. The currency stays the raw
// string it was inserted with and is parsed on read.
type UserRecord struct {
	ID       int
	Currency string
}

type User struct {
	ID       int
	Currency Currency
}

// Store is the document-store collaborator. Scans deliver rows one at a
// time and stop between rows when ctx is cancelled, which is what lets an
// abandoned catalog warm-up release the store early. A non-nil error from
// fn aborts the scan and is returned as-is.
type Store interface {
	ScanProducts(ctx context.Context, fn func(Product) error) error
	ScanUsers(ctx context.Context, fn func(UserRecord) error) error
	InsertProduct(ctx context.Context, p Product) error
	InsertUser(ctx context.Context, u UserRecord) error
	Ping(ctx context.Context) error
}
