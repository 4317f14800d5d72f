package domain

// Product is a catalog entry. Products are read-only once fetched.
type Product struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// StockEntry holds the available amount for the product with the same ID
type StockEntry struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
