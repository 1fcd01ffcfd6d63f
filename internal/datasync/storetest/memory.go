// Package storetest provides an in-memory datasync.Store with fault
// injection for tests.
package storetest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ datasync.Store = (*Memory)(nil)

// Memory is a datasync.Store kept in maps. The zero value is not usable;
// call New.
type Memory struct {
	name string

	mu         sync.Mutex
	cities     map[string]*domain.City
	categories map[int]domain.Category
	ads        map[string]domain.Ad

	down   bool
	faults map[string]error
	calls  map[string]int
}

// New returns an empty, reachable store.
func New(name string) *Memory {
	return &Memory{
		name:       name,
		cities:     make(map[string]*domain.City),
		categories: make(map[int]domain.Category),
		ads:        make(map[string]domain.Ad),
		faults:     make(map[string]error),
		calls:      make(map[string]int),
	}
}

// SetDown makes every call fail as unavailable until called with false.
func (m *Memory) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// FailOn makes the named method return err. A nil err clears the fault.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, method)
		return
	}
	m.faults[method] = err
}

// Calls reports how many times the named method was invoked.
func (m *Memory) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Writes is the number of mutating calls, successful or not.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for method, c := range m.calls {
		switch method {
		case "CreateCity", "PutCity", "DeleteCity", "PutPlace", "DeletePlace",
			"CreateCategory", "PutCategory", "DeleteCategory",
			"CreateAd", "PutAd", "DeleteAd":
			n += c
		}
	}
	return n
}

// enter records the call and returns the injected failure. Caller holds mu.
func (m *Memory) enter(method string) error {
	m.calls[method]++
	if m.down {
		return domain.Unavailable(m.name, fmt.Errorf("%s: connection refused", method))
	}
	return m.faults[method]
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("Ping")
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func (m *Memory) GetCity(_ context.Context, key string) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetCity"); err != nil {
		return nil, err
	}
	c, ok := m.cities[key]
	if !ok {
		return nil, fmt.Errorf("city %s: %w", key, domain.ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *Memory) ListCities(context.Context) ([]*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListCities"); err != nil {
		return nil, err
	}
	out := make([]*domain.City, 0, len(m.cities))
	for _, c := range m.cities {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.City) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) CreateCity(_ context.Context, c *domain.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateCity"); err != nil {
		return err
	}
	if _, ok := m.cities[c.Key]; ok {
		return fmt.Errorf("city %s: %w", c.Key, domain.ErrAlreadyExists)
	}
	m.cities[c.Key] = withCityKey(c.Clone())
	return nil
}

func (m *Memory) PutCity(_ context.Context, c *domain.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutCity"); err != nil {
		return err
	}
	stored := withCityKey(c.Clone())
	if existing, ok := m.cities[c.Key]; ok && !existing.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	m.cities[c.Key] = stored
	return nil
}

func (m *Memory) DeleteCity(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteCity"); err != nil {
		return err
	}
	if _, ok := m.cities[key]; !ok {
		return fmt.Errorf("city %s: %w", key, domain.ErrNotFound)
	}
	delete(m.cities, key)
	return nil
}

func (m *Memory) PutPlace(_ context.Context, cityKey string, p domain.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutPlace"); err != nil {
		return err
	}
	c, ok := m.cities[cityKey]
	if !ok {
		return fmt.Errorf("city %s: %w", cityKey, domain.ErrNotFound)
	}
	c.UpsertPlace(p.Clone())
	return nil
}

func (m *Memory) DeletePlace(_ context.Context, cityKey, placeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeletePlace"); err != nil {
		return err
	}
	c, ok := m.cities[cityKey]
	if !ok {
		return fmt.Errorf("city %s: %w", cityKey, domain.ErrNotFound)
	}
	if !c.RemovePlace(placeID) {
		return fmt.Errorf("place %s: %w", placeID, domain.ErrNotFound)
	}
	return nil
}

func withCityKey(c *domain.City) *domain.City {
	for i := range c.Places {
		c.Places[i].CityKey = c.Key
	}
	return c
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func (m *Memory) GetCategory(_ context.Context, id int) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetCategory"); err != nil {
		return nil, err
	}
	c, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (m *Memory) ListCategories(context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListCategories"); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Category) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *Memory) CreateCategory(_ context.Context, c domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateCategory"); err != nil {
		return err
	}
	for _, existing := range m.categories {
		if existing.ID == c.ID || domain.SameName(existing.Name, c.Name) {
			return fmt.Errorf("category %d: %w", c.ID, domain.ErrAlreadyExists)
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *Memory) PutCategory(_ context.Context, c domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutCategory"); err != nil {
		return err
	}
	for _, existing := range m.categories {
		if existing.ID != c.ID && domain.SameName(existing.Name, c.Name) {
			return fmt.Errorf("category %d: %w", c.ID, domain.ErrAlreadyExists)
		}
	}
	m.categories[c.ID] = c
	return nil
}

func (m *Memory) DeleteCategory(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteCategory"); err != nil {
		return err
	}
	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	delete(m.categories, id)
	return nil
}

// ---------------------------------------------------------------------------
// Ads
// ---------------------------------------------------------------------------

func (m *Memory) GetAd(_ context.Context, id string) (*domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetAd"); err != nil {
		return nil, err
	}
	a, ok := m.ads[id]
	if !ok {
		return nil, fmt.Errorf("ad %s: %w", id, domain.ErrNotFound)
	}
	return &a, nil
}

func (m *Memory) ListAds(context.Context) ([]domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListAds"); err != nil {
		return nil, err
	}
	out := make([]domain.Ad, 0, len(m.ads))
	for _, a := range m.ads {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b domain.Ad) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (m *Memory) CreateAd(_ context.Context, a domain.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateAd"); err != nil {
		return err
	}
	if _, ok := m.ads[a.ID]; ok {
		return fmt.Errorf("ad %s: %w", a.ID, domain.ErrAlreadyExists)
	}
	m.ads[a.ID] = a
	return nil
}

func (m *Memory) PutAd(_ context.Context, a domain.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutAd"); err != nil {
		return err
	}
	m.ads[a.ID] = a
	return nil
}

func (m *Memory) DeleteAd(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteAd"); err != nil {
		return err
	}
	if _, ok := m.ads[id]; !ok {
		return fmt.Errorf("ad %s: %w", id, domain.ErrNotFound)
	}
	delete(m.ads, id)
	return nil
}
