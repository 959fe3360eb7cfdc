package sales

import (
	"context"
	"errors"
)

// ErrNoSession is returned when an operation needs a logged-in identity
// and none is active.
var ErrNoSession = errors.New("no active session")

// ErrInvalidEmail is returned when a login email is empty or has no "@".
var ErrInvalidEmail = errors.New("invalid email")

// ErrInvalidDraft is returned when a sale draft is missing a required
// field or carries a negative value.
var ErrInvalidDraft = errors.New("incomplete sale draft")

// Store is the persistence boundary for sales, the stored session
// identity and the theme. Two implementations exist: FileStore keeps
// everything in local JSON blobs, SupabaseStore keeps each sale as a
// row in a hosted table.
//
// LoadSession and LoadTheme never fail the caller: missing or corrupt
// stored data reads as absent.
type Store interface {
	LoadSession() (string, bool)
	SaveSession(email string) error
	ClearSession() error

	LoadTheme() (Theme, bool)
	SaveTheme(t Theme) error

	// ListSales returns the owner's sales ordered most recent first.
	ListSales(ctx context.Context, owner string) ([]*Sale, error)

	// InsertSale persists a draft and returns the canonical stored
	// record. The returned sale, not the draft, is authoritative: the
	// backend may assign id and date itself.
	InsertSale(ctx context.Context, owner string, draft SaleDraft) (*Sale, error)
}
