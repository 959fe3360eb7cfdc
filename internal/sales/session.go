package sales

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Session is the single authority over who is logged in, which sales
// are in memory and which theme is active. It is constructed once at
// process start and lives for the whole process.
//
// The busy flag is an advisory guard for UI-level gating of duplicate
// submissions; the mutex is what keeps the state consistent when the
// HTTP layer serves handlers concurrently.
type Session struct {
	store  Store
	logger *zap.Logger

	mu    sync.Mutex
	email string
	sales []*Sale
	term  string
	theme Theme
	busy  bool
}

// NewSession restores the stored theme and identity. When an identity
// is present its sales are reloaded; a failed reload degrades to an
// empty collection with a warning instead of failing startup.
func NewSession(store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	s := &Session{store: store, logger: logger, theme: ThemeLight}
	if t, ok := store.LoadTheme(); ok {
		s.theme = t
	}
	if email, ok := store.LoadSession(); ok {
		s.email = email
		if err := s.reload(context.Background()); err != nil {
			logger.Warn("could not restore sales for stored session",
				zap.String("email", email), zap.Error(err))
		}
	}
	return s
}

// Login validates and normalizes the asserted email, persists it and
// reloads the sales collection. There is no credential check: any
// non-empty string containing "@" is trusted.
//
// A failed reload is returned to the caller for notification, but the
// identity stands and the collection keeps its previous value.
func (s *Session) Login(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A changed identity must never observe the previous one's sales,
	// even when the reload below fails. Last known-good state only
	// carries over for the same identity.
	if email != s.email {
		s.sales = nil
	}
	s.email = email
	if err := s.store.SaveSession(email); err != nil {
		s.logger.Error("failed to persist session", zap.Error(err))
	}
	s.logger.Info("user logged in", zap.String("email", email))

	return s.reload(ctx)
}

// Logout clears the identity, the in-memory collection, the search term
// and the persisted identity blob. The collection is always cleared,
// whichever backend is in use; under the file backend the next login
// reloads it from disk.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	s.logger.Info("user logged out", zap.String("email", s.email))

	s.email = ""
	s.sales = nil
	s.term = ""
	if err := s.store.ClearSession(); err != nil {
		s.logger.Error("failed to clear persisted session", zap.Error(err))
	}
}

// AddSale persists a draft for the active identity and prepends the
// canonical stored sale to the visible collection, keeping it newest
// first. With no identity active it is a no-op returning ErrNoSession.
func (s *Session) AddSale(ctx context.Context, draft SaleDraft) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return nil, ErrNoSession
	}
	if draft.ClientName == "" || draft.ClientCPF == "" || draft.Value < 0 {
		return nil, ErrInvalidDraft
	}

	s.busy = true
	defer func() { s.busy = false }()

	sale, err := s.store.InsertSale(ctx, s.email, draft)
	if err != nil {
		s.logger.Error("failed to insert sale",
			zap.String("email", s.email), zap.Error(err))
		return nil, err
	}

	s.sales = append([]*Sale{sale}, s.sales...)
	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("client", sale.ClientName),
		zap.Float64("value", sale.Value),
	)
	return sale, nil
}

// SetSearch updates the transient search term. Empty means no filter.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
}

// Search returns the current search term.
func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Visible derives the rendered subset: the owner-scoped collection
// filtered by the current search term, order preserved.
func (s *Session) Visible() []*Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filter(s.sales, s.term)
}

// ToggleTheme flips the theme and persists it immediately.
func (s *Session) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = s.theme.Toggle()
	if err := s.store.SaveTheme(s.theme); err != nil {
		s.logger.Error("failed to persist theme", zap.Error(err))
	}
	return s.theme
}

// Theme returns the active theme.
func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Email returns the active identity, empty when logged out.
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// LoggedIn reports whether an identity is active.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email != ""
}

// Busy reports whether a backend list or insert is in flight. It is
// advisory: callers use it to gate duplicate submissions.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// reload runs with s.mu held, except during construction before the
// session is shared.
func (s *Session) reload(ctx context.Context) error {
	s.busy = true
	defer func() { s.busy = false }()

	list, err := s.store.ListSales(ctx, s.email)
	if err != nil {
		return fmt.Errorf("load sales: %w", err)
	}
	s.sales = list
	return nil
}
