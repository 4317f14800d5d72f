package catalog

import (
	"context"
	"sync"

	"github.com/fjod/rocketshoes-cart/internal/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader fills an Index from a Client. The initial product and stock fetches
// run independently of each other and of the caller.
type Loader struct {
	client Client
	index  *Index
	log    *logger.Logger
	sfg    singleflight.Group // collapses concurrent refreshes of the same table

	startOnce sync.Once
	loaded    chan struct{}
}

func NewLoader(client Client, index *Index, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		client: client,
		index:  index,
		log:    log,
		loaded: make(chan struct{}),
	}
}

// Start fires both fetches and returns immediately. Loaded is closed once
// both have settled, successfully or not. Calling Start again is a no-op.
func (l *Loader) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			if err := l.loadProducts(ctx); err != nil {
				l.log.Error(ctx, "catalog products fetch failed", err)
			}
		}()

		go func() {
			defer wg.Done()
			if err := l.loadStock(ctx); err != nil {
				l.log.Error(ctx, "catalog stock fetch failed", err)
			}
		}()

		go func() {
			wg.Wait()
			products, stock := l.index.Len()
			logCtx := l.log.WithField(ctx, "products", products)
			logCtx = l.log.WithField(logCtx, "stock", stock)
			l.log.Info(logCtx, "catalog loaded")
			close(l.loaded)
		}()
	})
}

func (l *Loader) Loaded() <-chan struct{} {
	return l.loaded
}

// Refresh fetches both tables again and blocks until done.
func (l *Loader) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.loadProducts(gctx) })
	g.Go(func() error { return l.loadStock(gctx) })
	return g.Wait()
}

func (l *Loader) loadProducts(ctx context.Context) error {
	_, err, _ := l.sfg.Do("products", func() (interface{}, error) {
		products, err := l.client.Products(ctx)
		if err != nil {
			return nil, err
		}
		l.index.SetProducts(products)
		return nil, nil
	})
	return err
}

func (l *Loader) loadStock(ctx context.Context) error {
	_, err, _ := l.sfg.Do("stock", func() (interface{}, error) {
		stock, err := l.client.Stock(ctx)
		if err != nil {
			return nil, err
		}
		l.index.SetStock(stock)
		return nil, nil
	})
	return err
}
