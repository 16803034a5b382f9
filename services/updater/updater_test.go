package updater

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricehound/internal/discovery"
	"pricehound/services/publisher"
	"pricehound/services/store"
)

type fakeDiscoverer struct {
	result discovery.Result
}

func (f *fakeDiscoverer) DiscoverLowestPrice(_ context.Context, _ string, _ []string) discovery.Result {
	return f.result
}

type memStore struct {
	products map[string]store.Product
}

func newMemStore(products ...store.Product) *memStore {
	m := &memStore{products: map[string]store.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memStore) GetByID(id string) (*store.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (m *memStore) GetByName(name string) (*store.Product, error) {
	for _, p := range m.products {
		if strings.EqualFold(p.Name, name) {
			copied := p
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) Save(p *store.Product) error {
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) List() ([]store.Product, error) {
	out := make([]store.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) History(string, int) ([]store.PricePoint, error) {
	return nil, nil
}

type capturingPublisher struct {
	events []publisher.PriceDropEvent
	trims  int
}

func (c *capturingPublisher) PublishPriceDrop(e publisher.PriceDropEvent) error {
	c.events = append(c.events, e)
	return nil
}

func (c *capturingPublisher) TrimStream() error {
	c.trims++
	return nil
}

func (c *capturingPublisher) Close() error { return nil }

func okResult(price float64) discovery.Result {
	return discovery.Result{
		Status:         discovery.StatusOK,
		ProductName:    "iPhone 15",
		SelectedDomain: "flipkart.com",
		Price:          price,
		DeepLink:       "https://www.flipkart.com/p/itmabc",
	}
}

func TestRefreshOneDropDetected(t *testing.T) {
	products := newMemStore(store.Product{ID: "iphone-15", Name: "iPhone 15", CurrentPrice: 79999})
	pub := &capturingPublisher{}
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, products, pub)

	outcome, err := u.RefreshOne(context.Background(), "iphone-15")
	require.NoError(t, err)

	assert.Equal(t, StatusOK, outcome.Status)
	assert.True(t, outcome.IsPriceDropped)
	assert.Equal(t, float64(72999), outcome.Price)

	saved, _ := products.GetByID("iphone-15")
	assert.Equal(t, float64(72999), saved.CurrentPrice)
	assert.Equal(t, float64(79999), saved.LastLowestPrice)
	assert.True(t, saved.IsPriceDropped)

	require.Len(t, pub.events, 1)
	assert.Equal(t, float64(79999), pub.events[0].OldPrice)
	assert.Equal(t, float64(72999), pub.events[0].NewPrice)
}

// The stored name is the query key for every future refresh; a name scraped
// from a listing must never replace it, even when discovery succeeds.
func TestRefreshOneKeepsStoredName(t *testing.T) {
	products := newMemStore(store.Product{ID: "iphone-15", Name: "iPhone 15", CurrentPrice: 79999})
	result := okResult(72999)
	result.ProductName = "iPhone 15 Silicone Case"
	u := NewUpdater(&fakeDiscoverer{result: result}, products, nil)

	outcome, err := u.RefreshOne(context.Background(), "iphone-15")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, outcome.Status)

	saved, _ := products.GetByID("iphone-15")
	assert.Equal(t, "iPhone 15", saved.Name)
	assert.Equal(t, float64(72999), saved.CurrentPrice)
}

func TestRefreshOneNoDropWhenPriceRises(t *testing.T) {
	products := newMemStore(store.Product{ID: "iphone-15", Name: "iPhone 15", CurrentPrice: 69999})
	pub := &capturingPublisher{}
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, products, pub)

	outcome, err := u.RefreshOne(context.Background(), "iphone-15")
	require.NoError(t, err)

	assert.False(t, outcome.IsPriceDropped)
	saved, _ := products.GetByID("iphone-15")
	assert.Equal(t, float64(72999), saved.CurrentPrice)
	assert.Equal(t, float64(69999), saved.LastLowestPrice)
	assert.Empty(t, pub.events)
}

func TestRefreshOneFirstObservation(t *testing.T) {
	products := newMemStore(store.Product{ID: "iphone-15", Name: "iPhone 15"})
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, products, nil)

	outcome, err := u.RefreshOne(context.Background(), "iphone-15")
	require.NoError(t, err)

	assert.False(t, outcome.IsPriceDropped)
	saved, _ := products.GetByID("iphone-15")
	assert.Equal(t, float64(72999), saved.CurrentPrice)
	assert.Equal(t, float64(72999), saved.LastLowestPrice)
}

func TestRefreshOneNotFound(t *testing.T) {
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, newMemStore(), nil)

	outcome, err := u.RefreshOne(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, outcome.Status)
}

func TestRefreshOneNoDealLeavesRecordUntouched(t *testing.T) {
	products := newMemStore(store.Product{ID: "iphone-15", Name: "iPhone 15", CurrentPrice: 69999})
	u := NewUpdater(&fakeDiscoverer{result: discovery.Result{Status: discovery.StatusNoDeal}}, products, nil)

	outcome, err := u.RefreshOne(context.Background(), "iphone-15")
	require.NoError(t, err)

	assert.Equal(t, StatusNoDeal, outcome.Status)
	saved, _ := products.GetByID("iphone-15")
	assert.Equal(t, float64(69999), saved.CurrentPrice)
}

func TestScheduledRefreshTrimsStream(t *testing.T) {
	products := newMemStore(store.Product{ID: "a", Name: "iPhone 15", CurrentPrice: 80000})
	pub := &capturingPublisher{}
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, products, pub)

	u.runScheduledRefresh(context.Background())

	assert.Equal(t, 1, pub.trims)
	require.Len(t, pub.events, 1)
}

func TestRefreshAll(t *testing.T) {
	products := newMemStore(
		store.Product{ID: "a", Name: "iPhone 15", CurrentPrice: 80000},
		store.Product{ID: "b", Name: "iPhone 15 Plus", CurrentPrice: 90000},
	)
	u := NewUpdater(&fakeDiscoverer{result: okResult(72999)}, products, nil)

	outcomes, err := u.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, StatusOK, o.Status)
	}
}
