// Package filestore implements the fallback store: one JSON document per
// city under cities/, plus categories.json and ads.json, all in one
// directory on local disk.
package filestore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// StoreName identifies the fallback store in errors and logs.
const StoreName = "fallback"

const (
	citiesDir      = "cities"
	categoriesFile = "categories.json"
	adsFile        = "ads.json"
	docExt         = ".json"
)

var keyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Store is safe for concurrent use within one process. Writes are atomic
// renames, so an external editor never sees a half-written file.
type Store struct {
	dir string
	mu  sync.RWMutex
	log *slog.Logger
}

// New creates the directory layout under dir if needed.
func New(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, citiesDir), dirPerm); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log.With("adapter", "filestore")}, nil
}

func (s *Store) Name() string { return StoreName }

// Dir is the root directory of the store.
func (s *Store) Dir() string { return s.dir }

// CitiesDir holds one document per city.
func (s *Store) CitiesDir() string { return filepath.Join(s.dir, citiesDir) }

// Ping checks that the directory is still there.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.CitiesDir())
	if err != nil {
		return domain.Unavailable(StoreName, err)
	}
	if !info.IsDir() {
		return domain.Unavailable(StoreName, fmt.Errorf("%s is not a directory", s.CitiesDir()))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cities and places
// ---------------------------------------------------------------------------

func (s *Store) GetCity(ctx context.Context, key string) (*domain.City, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readCity(ctx, key)
}

// ListCities returns every readable city ordered by name. Unreadable
// documents are logged and skipped.
func (s *Store) ListCities(ctx context.Context) ([]*domain.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.CitiesDir())
	if err != nil {
		return nil, domain.Unavailable(StoreName, err)
	}

	cities := make([]*domain.City, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || IsTempFile(name) || filepath.Ext(name) != docExt {
			continue
		}
		key := strings.TrimSuffix(name, docExt)
		c, err := s.readCity(ctx, key)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.log.WarnContext(ctx, "skip unreadable city", slog.String("key", key), slog.String("error", err.Error()))
			}
			continue
		}
		cities = append(cities, c)
	}
	slices.SortFunc(cities, func(a, b *domain.City) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Key, b.Key))
	})
	return cities, nil
}

func (s *Store) CreateCity(ctx context.Context, c *domain.City) error {
	if err := checkKey(c.Key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readCity(ctx, c.Key); err == nil {
		return fmt.Errorf("city %s: %w", c.Key, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.writeCity(c)
}

// PutCity overwrites the whole document. created_at of an existing
// document is kept.
func (s *Store) PutCity(ctx context.Context, c *domain.City) error {
	if err := checkKey(c.Key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.readCity(ctx, c.Key); err == nil && !existing.CreatedAt.IsZero() {
		c = c.Clone()
		c.CreatedAt = existing.CreatedAt
	}
	return s.writeCity(c)
}

func (s *Store) DeleteCity(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.cityPath(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("city %s: %w", key, domain.ErrNotFound)
		}
		return domain.Unavailable(StoreName, err)
	}
	return nil
}

func (s *Store) PutPlace(ctx context.Context, cityKey string, p domain.Place) error {
	if err := checkKey(cityKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.readCity(ctx, cityKey)
	if err != nil {
		return err
	}
	c.UpsertPlace(p)
	if !p.UpdatedAt.IsZero() {
		c.UpdatedAt = p.UpdatedAt
	}
	return s.writeCity(c)
}

func (s *Store) DeletePlace(ctx context.Context, cityKey, placeID string) error {
	if err := checkKey(cityKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.readCity(ctx, cityKey)
	if err != nil {
		return err
	}
	if !c.RemovePlace(placeID) {
		return fmt.Errorf("place %s: %w", placeID, domain.ErrNotFound)
	}
	return s.writeCity(c)
}

func (s *Store) cityPath(key string) string {
	return filepath.Join(s.CitiesDir(), key+docExt)
}

func (s *Store) readCity(ctx context.Context, key string) (*domain.City, error) {
	data, ok, err := readFile(s.cityPath(key))
	if err != nil {
		return nil, domain.Unavailable(StoreName, err)
	}
	if !ok {
		return nil, fmt.Errorf("city %s: %w", key, domain.ErrNotFound)
	}

	c, issues, err := domain.DecodeCity(key, data)
	if err != nil {
		return nil, domain.Unavailable(StoreName, err)
	}
	for _, issue := range issues {
		s.log.WarnContext(ctx, "malformed city data", slog.String("key", key), slog.String("issue", issue.Error()))
	}
	return c, nil
}

func (s *Store) writeCity(c *domain.City) error {
	data, err := domain.EncodeCity(c)
	if err != nil {
		return fmt.Errorf("encode city %s: %w", c.Key, err)
	}
	if err := writeJSONAtomic(s.cityPath(c.Key), json.RawMessage(data)); err != nil {
		return domain.Unavailable(StoreName, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func (s *Store) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.readCategories(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(c domain.Category) bool { return c.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return &all[i], nil
}

// ListCategories returns categories ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readCategories(ctx)
}

// CreateCategory fails with ErrAlreadyExists when the id or the name
// (case-insensitively) is taken.
func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readCategories(ctx)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.ID == c.ID || domain.SameName(existing.Name, c.Name) {
			return fmt.Errorf("category %d: %w", c.ID, domain.ErrAlreadyExists)
		}
	}
	return s.writeCategories(append(all, c))
}

func (s *Store) PutCategory(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readCategories(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range all {
		switch {
		case all[i].ID == c.ID:
			all[i] = c
			replaced = true
		case domain.SameName(all[i].Name, c.Name):
			return fmt.Errorf("category %d: name %q: %w", c.ID, c.Name, domain.ErrAlreadyExists)
		}
	}
	if !replaced {
		all = append(all, c)
	}
	return s.writeCategories(all)
}

func (s *Store) DeleteCategory(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readCategories(ctx)
	if err != nil {
		return err
	}
	n := len(all)
	all = slices.DeleteFunc(all, func(c domain.Category) bool { return c.ID == id })
	if len(all) == n {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return s.writeCategories(all)
}

func (s *Store) readCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.readCollection(ctx, categoriesFile, func(raw json.RawMessage) error {
		var c domain.Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		if c.ID <= 0 || strings.TrimSpace(c.Name) == "" {
			return errors.New("missing id or name")
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) writeCategories(all []domain.Category) error {
	slices.SortFunc(all, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	if err := writeJSONAtomic(filepath.Join(s.dir, categoriesFile), all); err != nil {
		return domain.Unavailable(StoreName, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Ads
// ---------------------------------------------------------------------------

func (s *Store) GetAd(ctx context.Context, id string) (*domain.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.readAds(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(a domain.Ad) bool { return a.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("ad %s: %w", id, domain.ErrNotFound)
	}
	return &all[i], nil
}

// ListAds returns ads ordered by creation time.
func (s *Store) ListAds(ctx context.Context) ([]domain.Ad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAds(ctx)
}

func (s *Store) CreateAd(ctx context.Context, a domain.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAds(ctx)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(all, func(x domain.Ad) bool { return x.ID == a.ID }) {
		return fmt.Errorf("ad %s: %w", a.ID, domain.ErrAlreadyExists)
	}
	return s.writeAds(append(all, a))
}

func (s *Store) PutAd(ctx context.Context, a domain.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAds(ctx)
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(all, func(x domain.Ad) bool { return x.ID == a.ID }); i >= 0 {
		all[i] = a
	} else {
		all = append(all, a)
	}
	return s.writeAds(all)
}

func (s *Store) DeleteAd(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAds(ctx)
	if err != nil {
		return err
	}
	n := len(all)
	all = slices.DeleteFunc(all, func(a domain.Ad) bool { return a.ID == id })
	if len(all) == n {
		return fmt.Errorf("ad %s: %w", id, domain.ErrNotFound)
	}
	return s.writeAds(all)
}

func (s *Store) readAds(ctx context.Context) ([]domain.Ad, error) {
	var out []domain.Ad
	err := s.readCollection(ctx, adsFile, func(raw json.RawMessage) error {
		var a domain.Ad
		if err := json.Unmarshal(raw, &a); err != nil {
			return err
		}
		if strings.TrimSpace(a.ID) == "" {
			return errors.New("missing id")
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortAds(out)
	return out, nil
}

func (s *Store) writeAds(all []domain.Ad) error {
	sortAds(all)
	if err := writeJSONAtomic(filepath.Join(s.dir, adsFile), all); err != nil {
		return domain.Unavailable(StoreName, err)
	}
	return nil
}

func sortAds(ads []domain.Ad) {
	slices.SortFunc(ads, func(a, b domain.Ad) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
}

// readCollection decodes a JSON array file item by item. Items that fail
// to decode are logged and dropped; a file that is not an array at all
// makes the collection unavailable rather than silently empty.
func (s *Store) readCollection(ctx context.Context, file string, decode func(json.RawMessage) error) error {
	path := filepath.Join(s.dir, file)
	data, ok, err := readFile(path)
	if err != nil {
		return domain.Unavailable(StoreName, err)
	}
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return domain.Unavailable(StoreName, fmt.Errorf("decode %s: %w", path, err))
	}
	for i, raw := range items {
		if err := decode(raw); err != nil {
			issue := &domain.MalformedDataError{Entity: strings.TrimSuffix(file, docExt), Field: fmt.Sprintf("[%d]", i), Reason: err.Error()}
			s.log.WarnContext(ctx, "malformed item dropped", slog.String("issue", issue.Error()))
		}
	}
	return nil
}

func checkKey(key string) error {
	if !keyRe.MatchString(key) {
		return domain.NewValidationError("key", fmt.Sprintf("invalid city key %q", key))
	}
	return nil
}
