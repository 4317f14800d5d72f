package domain

import "github.com/shopspring/decimal"

type LineItem struct {
	Product
	Amount int `json:"amount"`
}

// Subtotal returns price * amount without float rounding drift
func (l LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Amount)))
}

// Cart is ordered by first insertion. It serializes as a plain JSON array of
// line items, which is the persisted format.
type Cart []LineItem

// Find returns the position of the line for productID.
func (c Cart) Find(productID int64) (int, bool) {
	for i, item := range c {
		if item.ID == productID {
			return i, true
		}
	}
	return -1, false
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Append returns a new cart with a fresh line of amount 1 at the end.
func (c Cart) Append(p Product) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, LineItem{Product: p, Amount: 1})
}

// WithAmount returns a new cart where the line at idx carries amount.
// The line keeps its position.
func (c Cart) WithAmount(idx, amount int) Cart {
	out := c.Clone()
	out[idx] = LineItem{Product: c[idx].Product, Amount: amount}
	return out
}

// Without returns a new cart with the line for productID dropped.
func (c Cart) Without(productID int64) Cart {
	out := make(Cart, 0, len(c))
	for _, item := range c {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

// Size is the number of distinct products in the cart.
func (c Cart) Size() int {
	return len(c)
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Validate reports whether the cart holds at most one line per product and
// only positive amounts.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c))
	for _, item := range c {
		if item.Amount <= 0 {
			return ErrNonPositiveAmount
		}
		if _, dup := seen[item.ID]; dup {
			return ErrDuplicateLine
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
