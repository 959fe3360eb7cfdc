package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Blob slot names, one file per slot.
const (
	sessionFile = "sales_user.json"
	themeFile   = "sales_theme"
	salesFile   = "sales_data.json"
)

// FileStore persists everything under a single directory as three
// blobs: the session identity, the theme string and the full sale
// collection. The collection is stored newest first and rewritten
// whole on every insert; there is no per-record addressing.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates the store directory if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name)
}

// LoadSession restores a stored identity. Missing or corrupt data
// reads as absent.
func (f *FileStore) LoadSession() (string, bool) {
	raw, err := os.ReadFile(f.path(sessionFile))
	if err != nil {
		return "", false
	}
	var stored struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil || stored.Email == "" {
		f.logger.Warn("discarding corrupt stored session", zap.Error(err))
		return "", false
	}
	return stored.Email, true
}

// SaveSession persists the identity blob.
func (f *FileStore) SaveSession(email string) error {
	raw, err := json.Marshal(struct {
		Email string `json:"email"`
	}{Email: email})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(f.path(sessionFile), raw, 0o644); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession removes the identity blob. A missing blob is not an error.
func (f *FileStore) ClearSession() error {
	if err := os.Remove(f.path(sessionFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// LoadTheme restores the stored theme. Anything but the two known
// values reads as absent.
func (f *FileStore) LoadTheme() (Theme, bool) {
	raw, err := os.ReadFile(f.path(themeFile))
	if err != nil {
		return "", false
	}
	t := Theme(raw)
	if !t.Valid() {
		f.logger.Warn("discarding corrupt stored theme", zap.String("value", string(raw)))
		return "", false
	}
	return t, true
}

// SaveTheme persists the theme as a raw string.
func (f *FileStore) SaveTheme(t Theme) error {
	if err := os.WriteFile(f.path(themeFile), []byte(t), 0o644); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// readAll loads the full collection blob. Missing or corrupt blobs read
// as an empty collection so startup never fails on bad stored data.
func (f *FileStore) readAll() []*Sale {
	raw, err := os.ReadFile(f.path(salesFile))
	if err != nil {
		return nil
	}
	var all []*Sale
	if err := json.Unmarshal(raw, &all); err != nil {
		f.logger.Warn("discarding corrupt sale collection", zap.Error(err))
		return nil
	}
	return all
}

func (f *FileStore) writeAll(all []*Sale) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode sales: %w", err)
	}
	if err := os.WriteFile(f.path(salesFile), raw, 0o644); err != nil {
		return fmt.Errorf("save sales: %w", err)
	}
	return nil
}

// ListSales returns the owner's sales in stored order (newest first).
func (f *FileStore) ListSales(_ context.Context, owner string) ([]*Sale, error) {
	all := f.readAll()
	mine := make([]*Sale, 0, len(all))
	for _, s := range all {
		if s.SellerEmail == owner {
			mine = append(mine, s)
		}
	}
	return mine, nil
}

// InsertSale assigns id and timestamp locally, prepends the new sale to
// the collection and rewrites the whole blob.
func (f *FileStore) InsertSale(_ context.Context, owner string, draft SaleDraft) (*Sale, error) {
	sale := &Sale{
		ID:          uuid.NewString(),
		ClientName:  draft.ClientName,
		ClientCPF:   draft.ClientCPF,
		Value:       draft.Value,
		Date:        time.Now().UTC(),
		SellerEmail: owner,
	}

	all := append([]*Sale{sale}, f.readAll()...)
	if err := f.writeAll(all); err != nil {
		return nil, err
	}
	return sale, nil
}
