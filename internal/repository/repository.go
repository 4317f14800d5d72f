package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/rocketshoes-cart/internal/domain"
)

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrMalformedCart = errors.New("stored cart is malformed")
)

// CartRepository is the durable key-value mirror of a cart.
// Every implementation stores the cart as a JSON array of line items.
type CartRepository interface {
	GetCart(ctx context.Context, key string) (domain.Cart, error)
	SaveCart(ctx context.Context, key string, cart domain.Cart) error
	Close() error
}

func encodeCart(cart domain.Cart) ([]byte, error) {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

func decodeCart(data []byte) (domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}
	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart, nil
}
