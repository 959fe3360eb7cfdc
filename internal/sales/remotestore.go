package sales

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// SupabaseStore keeps each sale as an individually addressable row in a
// hosted `sales` table, scoped by seller email. Session identity and
// theme still live in the local FileStore; only the sale collection is
// remote, fetched per identity instead of retained.
type SupabaseStore struct {
	client *resty.Client
	local  *FileStore
	logger *zap.Logger
}

// NewSupabaseStore builds a store against the project's REST endpoint.
// The key is sent both as the apikey header and as the bearer token, as
// the hosted backend expects for anonymous access.
func NewSupabaseStore(baseURL, apiKey string, local *FileStore, logger *zap.Logger) *SupabaseStore {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1").
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey)

	return &SupabaseStore{client: client, local: local, logger: logger}
}

// Close releases the underlying HTTP client.
func (s *SupabaseStore) Close() error {
	return s.client.Close()
}

// Identity and theme stay on the local blob slots.

func (s *SupabaseStore) LoadSession() (string, bool) { return s.local.LoadSession() }

func (s *SupabaseStore) SaveSession(email string) error { return s.local.SaveSession(email) }

func (s *SupabaseStore) ClearSession() error { return s.local.ClearSession() }

func (s *SupabaseStore) LoadTheme() (Theme, bool) { return s.local.LoadTheme() }

func (s *SupabaseStore) SaveTheme(t Theme) error { return s.local.SaveTheme(t) }

// ListSales queries the owner's rows, ordered by date descending
// server-side.
func (s *SupabaseStore) ListSales(ctx context.Context, owner string) ([]*Sale, error) {
	var rows []*Sale
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("seller_email", "eq."+owner).
		SetQueryParam("order", "date.desc").
		SetResult(&rows).
		Get("/sales")
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if resp.IsError() {
		s.logger.Error("sales backend rejected list",
			zap.String("status", resp.Status()),
			zap.String("owner", owner),
		)
		return nil, fmt.Errorf("list sales: backend returned %s", resp.Status())
	}
	return rows, nil
}

// InsertSale sends the draft and returns the row the backend stored.
// The backend assigns id and date; the returned representation is the
// source of truth, never the draft.
func (s *SupabaseStore) InsertSale(ctx context.Context, owner string, draft SaleDraft) (*Sale, error) {
	payload := map[string]any{
		"client_name":  draft.ClientName,
		"client_cpf":   draft.ClientCPF,
		"value":        draft.Value,
		"seller_email": owner,
	}

	var rows []*Sale
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(payload).
		SetResult(&rows).
		Post("/sales")
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	if resp.IsError() {
		s.logger.Error("sales backend rejected insert",
			zap.String("status", resp.Status()),
			zap.String("owner", owner),
		)
		return nil, fmt.Errorf("insert sale: backend returned %s", resp.Status())
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert sale: backend returned no row")
	}
	return rows[0], nil
}
