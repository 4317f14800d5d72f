package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/fjod/rocketshoes-cart/internal/events"
	"github.com/fjod/rocketshoes-cart/internal/notify"
	"github.com/fjod/rocketshoes-cart/internal/repository"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	products []domain.Product
	stock    []domain.StockEntry
	err      error
	release  chan struct{} // when set, fetches block until closed
}

func (m *mockCatalog) wait(ctx context.Context) error {
	if m.release == nil {
		return nil
	}
	select {
	case <-m.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockCatalog) Stock(ctx context.Context) ([]domain.StockEntry, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.stock, nil
}

// mockRepository wraps the in-memory repository and counts writes.
type mockRepository struct {
	*repository.MemoryRepository
	m       sync.Mutex
	saves   int
	getErr  error
	saveErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{MemoryRepository: repository.NewMemoryRepository()}
}

func (r *mockRepository) GetCart(ctx context.Context, key string) (domain.Cart, error) {
	r.m.Lock()
	err := r.getErr
	r.m.Unlock()
	if err != nil {
		return nil, err
	}
	return r.MemoryRepository.GetCart(ctx, key)
}

func (r *mockRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	return r.MemoryRepository.SaveCart(ctx, key, cart)
}

func (r *mockRepository) saveCount() int {
	r.m.Lock()
	defer r.m.Unlock()
	return r.saves
}

func (r *mockRepository) setSaveErr(err error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.saveErr = err
}

func (r *mockRepository) stored(t *testing.T) domain.Cart {
	t.Helper()
	cart, err := r.MemoryRepository.GetCart(context.Background(), CartKey)
	require.NoError(t, err)
	return cart
}

type mockPublisher struct {
	m      sync.Mutex
	events []events.CartChanged
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, event events.CartChanged) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) published() []events.CartChanged {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]events.CartChanged, len(p.events))
	copy(out, p.events)
	return out
}

// shoeCatalog mirrors the fake API the storefront was built against.
func shoeCatalog() *mockCatalog {
	return &mockCatalog{
		products: []domain.Product{
			{ID: 1, Title: "Tenis de Caminhada Leve Confortavel", Price: 179.9, Image: "https://cdn/1.jpg"},
			{ID: 2, Title: "Tenis VR Caminhada Confortavel Detalhes Couro Masculino", Price: 139.9, Image: "https://cdn/2.jpg"},
			{ID: 3, Title: "Tenis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://cdn/3.jpg"},
			{ID: 4, Title: "Tenis sem estoque", Price: 99.9, Image: "https://cdn/4.jpg"},
			{ID: 6, Title: "Tenis fora da tabela de estoque", Price: 59.9, Image: "https://cdn/6.jpg"},
		},
		stock: []domain.StockEntry{
			{ID: 1, Amount: 3},
			{ID: 2, Amount: 5},
			{ID: 3, Amount: 2},
			{ID: 4, Amount: 0},
		},
	}
}

type fixture struct {
	store     *CartStore
	repo      *mockRepository
	notes     *notify.Buffer
	publisher *mockPublisher
}

func newFixture(t *testing.T, cat *mockCatalog, repo *mockRepository) *fixture {
	t.Helper()
	if repo == nil {
		repo = newMockRepository()
	}
	notes := notify.NewBuffer(100)
	publisher := &mockPublisher{}

	store, err := NewCartStore(context.Background(), Dependencies{
		Catalog:  cat,
		Repo:     repo,
		Notifier: notes,
		Events:   publisher,
	})
	require.NoError(t, err)

	if cat.release == nil {
		select {
		case <-store.CatalogLoaded():
		case <-time.After(time.Second):
			t.Fatal("catalog did not load")
		}
	}

	return &fixture{store: store, repo: repo, notes: notes, publisher: publisher}
}

func lineIDs(c domain.Cart) []int64 {
	out := make([]int64, len(c))
	for i, item := range c {
		out[i] = item.ID
	}
	return out
}

func amounts(c domain.Cart) []int {
	out := make([]int, len(c))
	for i, item := range c {
		out[i] = item.Amount
	}
	return out
}
