package pricing

import (
	"context"
	"errors"
)

// errStopScan aborts a store scan once the wanted row has been seen.
var errStopScan = errors.New("stop scan")

// ResolveUser finds the stored user with the given id and parses their
// currency preference. The store does not enforce id uniqueness, so the
// first record encountered wins. A missing user is an expected outcome
// reported through the bool; the error is reserved for store failures.
func ResolveUser(ctx context.Context, store Store, id int) (User, bool, error) {
	var (
		u     User
		found bool
	)

	err := store.ScanUsers(ctx, func(rec UserRecord) error {
		if rec.ID != id {
			return nil
		}
		u = User{ID: rec.ID, Currency: ParseCurrency(rec.Currency)}
		found = true
		return errStopScan
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return User{}, false, err
	}

	return u, found, nil
}
