package catalog

import (
	"context"
	"errors"

	"github.com/fjod/rocketshoes-cart/internal/domain"
)

var ErrUnexpectedStatus = errors.New("unexpected catalog response status")

// Client reads the remote product catalog and stock table.
type Client interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Stock(ctx context.Context) ([]domain.StockEntry, error)
}
