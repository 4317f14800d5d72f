package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/catalog"
	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/fjod/rocketshoes-cart/internal/events"
	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/fjod/rocketshoes-cart/internal/metrics"
	"github.com/fjod/rocketshoes-cart/internal/notify"
	"github.com/fjod/rocketshoes-cart/internal/repository"
)

// CartKey is the fixed persistence key of the cart.
const CartKey = "@RocketShoes:cart"

const publishTimeout = 5 * time.Second

// UpdateProductAmount asks to move a line one unit toward Amount.
type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// Dependencies of a CartStore. Events, Metrics and Logger may be nil.
type Dependencies struct {
	Catalog  catalog.Client
	Repo     repository.CartRepository
	Notifier notify.Notifier
	Events   events.Publisher
	Metrics  *metrics.CartMetrics
	Logger   *logger.Logger
}

// CartStore owns the cart. It is the only writer of both the in-memory cart
// and its persisted mirror.
type CartStore struct {
	mu   sync.Mutex
	cart domain.Cart

	index    *catalog.Index
	loader   *catalog.Loader
	repo     repository.CartRepository
	notifier notify.Notifier
	events   events.Publisher
	metrics  *metrics.CartMetrics
	log      *logger.Logger
}

// NewCartStore starts the catalog and stock fetches in the background and
// reads the persisted cart synchronously. A missing or malformed cart starts
// empty; nothing is written during construction.
func NewCartStore(ctx context.Context, deps Dependencies) (*CartStore, error) {
	if deps.Catalog == nil || deps.Repo == nil || deps.Notifier == nil {
		return nil, errors.New("cart store needs a catalog, a repository and a notifier")
	}
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	index := catalog.NewIndex()
	s := &CartStore{
		index:    index,
		loader:   catalog.NewLoader(deps.Catalog, index, deps.Logger),
		repo:     deps.Repo,
		notifier: deps.Notifier,
		events:   deps.Events,
		metrics:  deps.Metrics,
		log:      deps.Logger,
	}
	s.loader.Start(ctx)

	cart, err := s.repo.GetCart(ctx, CartKey)
	switch {
	case err == nil:
		s.cart = cart
	case errors.Is(err, repository.ErrCartNotFound):
		s.cart = domain.Cart{}
	case errors.Is(err, repository.ErrMalformedCart):
		s.log.Warn(ctx, "stored cart is unreadable, starting empty", err)
		s.cart = domain.Cart{}
	default:
		return nil, fmt.Errorf("%w: read cart: %w", ErrPersistence, err)
	}

	return s, nil
}

// CatalogLoaded is closed once the initial catalog and stock fetches settled.
func (s *CartStore) CatalogLoaded() <-chan struct{} {
	return s.loader.Loaded()
}

// RefreshCatalog fetches products and stock again.
func (s *CartStore) RefreshCatalog(ctx context.Context) error {
	return s.loader.Refresh(ctx)
}

// Cart returns a snapshot; changing it does not affect the store.
func (s *CartStore) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// AddProduct adds one unit of productID, creating the line if needed.
func (s *CartStore) AddProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, okProduct := s.index.Product(productID)
	stock, okStock := s.index.Stock(productID)
	if !okProduct || !okStock {
		return s.fail(ctx, OpAdd, productID, ErrProductNotFound)
	}

	var next domain.Cart
	idx, found := s.cart.Find(productID)
	switch {
	case !found && stock.Amount <= 0:
		return s.fail(ctx, OpAdd, productID, ErrOutOfStock)
	case !found:
		next = s.cart.Append(product)
	case s.cart[idx].Amount >= stock.Amount:
		return s.fail(ctx, OpAdd, productID, ErrOutOfStock)
	default:
		next = s.cart.WithAmount(idx, s.cart[idx].Amount+1)
	}

	return s.commit(ctx, OpAdd, productID, next)
}

// RemoveProduct drops the line for productID.
func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.cart.Find(productID); !found {
		return s.fail(ctx, OpRemove, productID, ErrProductNotFound)
	}

	return s.commit(ctx, OpRemove, productID, s.cart.Without(productID))
}

// UpdateProductAmount moves the line's amount by exactly one unit toward
// req.Amount. It does not jump to the target: callers wanting that use
// SetProductAmount. A target <= 0, or equal to the current amount, is a no-op.
func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.checkAmountChange(ctx, OpUpdate, req.ProductID, req.Amount)
	if err != nil || idx < 0 {
		return err
	}

	current := s.cart[idx].Amount
	var next int
	switch {
	case req.Amount > current:
		next = current + 1
	case req.Amount < current:
		next = current - 1
	default:
		return nil
	}

	return s.commit(ctx, OpUpdate, req.ProductID, s.cart.WithAmount(idx, next))
}

// SetProductAmount sets the line's amount to amount directly. Validation is
// the same as UpdateProductAmount.
func (s *CartStore) SetProductAmount(ctx context.Context, productID int64, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.checkAmountChange(ctx, OpSet, productID, amount)
	if err != nil || idx < 0 {
		return err
	}
	if s.cart[idx].Amount == amount {
		return nil
	}

	return s.commit(ctx, OpSet, productID, s.cart.WithAmount(idx, amount))
}

// checkAmountChange validates a quantity change. It returns the line index,
// or -1 with a nil error when the request is a no-op.
func (s *CartStore) checkAmountChange(ctx context.Context, op Op, productID int64, amount int) (int, error) {
	idx, found := s.cart.Find(productID)
	if !found {
		return -1, s.fail(ctx, op, productID, ErrProductNotFound)
	}
	if amount <= 0 {
		return -1, nil
	}

	stock, ok := s.index.Stock(productID)
	if !ok {
		return -1, s.fail(ctx, op, productID, ErrProductNotFound)
	}
	if amount > stock.Amount {
		return -1, s.fail(ctx, op, productID, ErrOutOfStock)
	}
	return idx, nil
}

// commit persists next and only then makes it the current cart.
// Callers hold s.mu.
func (s *CartStore) commit(ctx context.Context, op Op, productID int64, next domain.Cart) error {
	if err := s.repo.SaveCart(ctx, CartKey, next); err != nil {
		s.log.Error(ctx, "cart persistence failed", err)
		return s.fail(ctx, op, productID, fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	s.cart = next
	s.metrics.IncMutation(string(op))

	event := events.NewCartChanged(string(op), productID, next.Clone())
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.events.Publish(pubCtx, event); err != nil {
			s.log.Warn(pubCtx, "cart event publish failed", err)
		}
	}()

	return nil
}

func (s *CartStore) fail(ctx context.Context, op Op, productID int64, err error) error {
	opErr := &OperationError{Op: op, ProductID: productID, Err: err}
	s.metrics.IncFailure(string(op), opErr.Kind())
	s.notifier.Error(ctx, opErr.Message())
	return opErr
}
