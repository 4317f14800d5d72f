package service

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("requested amount out of stock")
	ErrPersistence     = errors.New("cart persistence failed")
)

// Op names a cart mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
	OpSet    Op = "set"
)

// User-facing messages shown for rejected operations.
const (
	MsgAddFailed    = "Erro na adição do produto"
	MsgRemoveFailed = "Erro na remoção do produto"
	MsgUpdateFailed = "Erro na alteração de quantidade do produto"
	MsgOutOfStock   = "Quantidade solicitada fora de estoque"
)

// OperationError is returned by every rejected mutation. The cart is
// unchanged whenever one is returned.
type OperationError struct {
	Op        Op
	ProductID int64
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s product %d: %v", e.Op, e.ProductID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user for this failure.
func (e *OperationError) Message() string {
	if errors.Is(e.Err, ErrOutOfStock) {
		return MsgOutOfStock
	}
	switch e.Op {
	case OpAdd:
		return MsgAddFailed
	case OpRemove:
		return MsgRemoveFailed
	default:
		return MsgUpdateFailed
	}
}

// Kind is a stable label for metrics.
func (e *OperationError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(e.Err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(e.Err, ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}
