package catalog

import (
	"sync"

	"github.com/fjod/rocketshoes-cart/internal/domain"
)

// Index resolves products and stock entries by product id.
// Stock feeds are not assumed to be dense or sorted.
type Index struct {
	mu       sync.RWMutex
	products map[int64]domain.Product    // productID -> product
	stock    map[int64]domain.StockEntry // productID -> stock entry
}

func NewIndex() *Index {
	return &Index{
		products: make(map[int64]domain.Product),
		stock:    make(map[int64]domain.StockEntry),
	}
}

// SetProducts replaces the product table. Later duplicates win.
func (i *Index) SetProducts(products []domain.Product) {
	m := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.products = m
}

// SetStock replaces the stock table. Later duplicates win.
func (i *Index) SetStock(entries []domain.StockEntry) {
	m := make(map[int64]domain.StockEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.stock = m
}

func (i *Index) Product(id int64) (domain.Product, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	p, ok := i.products[id]
	return p, ok
}

func (i *Index) Stock(id int64) (domain.StockEntry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	s, ok := i.stock[id]
	return s, ok
}

// Len returns the number of products and stock entries currently indexed.
func (i *Index) Len() (products, stock int) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.products), len(i.stock)
}
