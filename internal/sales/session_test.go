package sales

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

// failingStore wraps a FileStore and fails the backend operations, like
// a remote backend with no connectivity.
type failingStore struct {
	*FileStore
}

var errBackendDown = errors.New("backend unreachable")

func (f *failingStore) ListSales(context.Context, string) ([]*Sale, error) {
	return nil, errBackendDown
}

func (f *failingStore) InsertSale(context.Context, string, SaleDraft) (*Sale, error) {
	return nil, errBackendDown
}

func TestNewSession_Defaults(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))

	if s.LoggedIn() {
		t.Error("fresh session should be logged out")
	}
	if s.Theme() != ThemeLight {
		t.Errorf("expected default light theme, got %q", s.Theme())
	}
	if len(s.Visible()) != 0 {
		t.Error("fresh session should have no visible sales")
	}
	if s.Busy() {
		t.Error("fresh session should not be busy")
	}
}

func TestLogin_NormalizesAndPersists(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))

	if err := s.Login(context.Background(), "  Seller@Shop.com "); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Email() != "seller@shop.com" {
		t.Errorf("expected lowercased email, got %q", s.Email())
	}
	stored, ok := store.LoadSession()
	if !ok || stored != "seller@shop.com" {
		t.Errorf("expected persisted identity seller@shop.com, got %q, %v", stored, ok)
	}
}

func TestLogin_RejectsInvalidEmail(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))

	for _, bad := range []string{"", "   ", "no-at-sign"} {
		if err := s.Login(context.Background(), bad); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Login(%q) = %v, want ErrInvalidEmail", bad, err)
		}
	}
	if s.LoggedIn() {
		t.Error("rejected login must not set an identity")
	}
	if _, ok := store.LoadSession(); ok {
		t.Error("rejected login must not persist an identity")
	}
}

func TestAddSale_PrependsNewestFirst(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	first, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana Silva", ClientCPF: "123.456.789-00", Value: 150.5})
	if err != nil {
		t.Fatalf("AddSale: %v", err)
	}
	second, err := s.AddSale(ctx, SaleDraft{ClientName: "Bruno Costa", ClientCPF: "987.654.321-00", Value: 80})
	if err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	visible := s.Visible()
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible sales, got %d", len(visible))
	}
	if visible[0].ID != second.ID {
		t.Error("latest sale must sit at index 0")
	}
	if visible[1].ID != first.ID {
		t.Error("older sale must follow the latest")
	}
	if first.SellerEmail != "seller@shop.com" {
		t.Errorf("expected owner stamp, got %q", first.SellerEmail)
	}
}

func TestAddSale_NoSessionIsNoOp(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana", ClientCPF: "1", Value: 1}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if len(s.Visible()) != 0 {
		t.Error("collection must stay empty")
	}

	// Nothing may have been written to the store either.
	all, err := store.ListSales(ctx, "")
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(all) != 0 {
		t.Error("persisted store must stay empty")
	}
}

func TestAddSale_RejectsIncompleteDraft(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	drafts := []SaleDraft{
		{ClientCPF: "1", Value: 1},
		{ClientName: "Ana", Value: 1},
		{ClientName: "Ana", ClientCPF: "1", Value: -1},
	}
	for _, d := range drafts {
		if _, err := s.AddSale(ctx, d); !errors.Is(err, ErrInvalidDraft) {
			t.Errorf("AddSale(%+v) = %v, want ErrInvalidDraft", d, err)
		}
	}
	if len(s.Visible()) != 0 {
		t.Error("rejected drafts must not reach the collection")
	}
}

func TestAddSale_BackendFailureLeavesStateUnchanged(t *testing.T) {
	local, _ := newTestFileStore(t)
	s := NewSession(local, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana", ClientCPF: "1", Value: 1}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	// Swap in a backend that fails every call.
	s.store = &failingStore{FileStore: local}

	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Bruno", ClientCPF: "2", Value: 2}); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected backend error, got %v", err)
	}
	visible := s.Visible()
	if len(visible) != 1 || visible[0].ClientName != "Ana" {
		t.Error("failed insert must leave the collection at its last known-good value")
	}
	if s.Busy() {
		t.Error("busy flag must be released after a failure")
	}
}

func TestLogin_FailedReloadDoesNotLeakPreviousSales(t *testing.T) {
	local, _ := newTestFileStore(t)
	s := NewSession(local, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "a@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana", ClientCPF: "1", Value: 1}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	// The backend goes down before a different identity logs in.
	s.store = &failingStore{FileStore: local}

	if err := s.Login(ctx, "b@shop.com"); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected backend error from reload, got %v", err)
	}
	if s.Email() != "b@shop.com" {
		t.Errorf("login itself must stand, got %q", s.Email())
	}

	// b must never observe a's sales, even though its reload failed.
	for _, sale := range s.Visible() {
		if sale.SellerEmail != "b@shop.com" {
			t.Fatalf("identity b observes a sale owned by %q", sale.SellerEmail)
		}
	}
	if len(s.Visible()) != 0 {
		t.Fatalf("expected empty collection after failed reload for a new identity, got %d", len(s.Visible()))
	}
}

func TestLogin_SameIdentityFailedReloadKeepsCollection(t *testing.T) {
	local, _ := newTestFileStore(t)
	s := NewSession(local, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "a@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana", ClientCPF: "1", Value: 1}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	s.store = &failingStore{FileStore: local}

	// Re-login with the unchanged identity: the reload failure is
	// surfaced, but the last known-good collection stays visible.
	if err := s.Login(ctx, "a@shop.com"); !errors.Is(err, errBackendDown) {
		t.Fatalf("expected backend error from reload, got %v", err)
	}
	if len(s.Visible()) != 1 {
		t.Fatalf("expected last known-good collection for the same identity, got %d", len(s.Visible()))
	}
}

func TestLogout_ClearsStateAndSurvivesRelogin(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana Silva", ClientCPF: "123.456.789-00", Value: 150.5}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}
	s.SetSearch("ana")

	s.Logout()

	if s.LoggedIn() {
		t.Error("expected logged-out session")
	}
	if len(s.Visible()) != 0 {
		t.Error("collection must be cleared on logout")
	}
	if s.Search() != "" {
		t.Error("search term must be reset on logout")
	}
	if _, ok := store.LoadSession(); ok {
		t.Error("persisted identity must be removed on logout")
	}

	// Logging back in restores the same collection from the store.
	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	visible := s.Visible()
	if len(visible) != 1 || visible[0].ClientName != "Ana Silva" {
		t.Fatalf("expected the stored sale back after relogin, got %d", len(visible))
	}
}

func TestToggleTheme_PersistsAcrossRestart(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))

	if got := s.ToggleTheme(); got != ThemeDark {
		t.Fatalf("expected dark after first toggle, got %q", got)
	}

	// Simulated restart: a new session over the same store.
	restarted := NewSession(store, zaptest.NewLogger(t))
	if restarted.Theme() != ThemeDark {
		t.Errorf("expected dark theme to survive restart, got %q", restarted.Theme())
	}

	if got := restarted.ToggleTheme(); got != ThemeLight {
		t.Errorf("expected light after second toggle, got %q", got)
	}
}

func TestRestart_RestoresIdentityAndSales(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana Silva", ClientCPF: "123.456.789-00", Value: 150.5}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	restarted := NewSession(store, zaptest.NewLogger(t))
	if restarted.Email() != "seller@shop.com" {
		t.Errorf("expected restored identity, got %q", restarted.Email())
	}
	if len(restarted.Visible()) != 1 {
		t.Errorf("expected restored collection, got %d sales", len(restarted.Visible()))
	}
}

func TestSession_ConcurrentAccess(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Exercised under -race: concurrent handlers must not corrupt the
	// session state.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana", ClientCPF: "1", Value: float64(i)}); err != nil {
				t.Errorf("AddSale: %v", err)
			}
			s.SetSearch("ana")
			_ = s.Visible()
			_ = s.Busy()
			_ = s.ToggleTheme()
		}(i)
	}
	wg.Wait()

	s.SetSearch("")
	if len(s.Visible()) != 8 {
		t.Errorf("expected all 8 sales recorded, got %d", len(s.Visible()))
	}
}

func TestSearch_Scenario(t *testing.T) {
	store, _ := newTestFileStore(t)
	s := NewSession(store, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := s.Login(ctx, "seller@shop.com"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.AddSale(ctx, SaleDraft{ClientName: "Ana Silva", ClientCPF: "123.456.789-00", Value: 150.5}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}

	s.SetSearch("ana")
	if len(s.Visible()) != 1 {
		t.Error(`expected a match for "ana"`)
	}

	s.SetSearch("999")
	if len(s.Visible()) != 0 {
		t.Error(`expected no match for "999"`)
	}

	s.SetSearch("")
	if len(s.Visible()) != 1 {
		t.Error("expected the full collection with an empty term")
	}
}
