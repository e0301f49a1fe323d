package remote

import "github.com/ivankudzin/storefront/internal/domain/enums"

// Product is owned by the remote store; local copies are never authoritative.
type Product struct {
	Name      string              `json:"name"`
	Price     float64             `json:"price"`
	Category  enums.Category      `json:"category"`
	Status    enums.ProductStatus `json:"status"`
	ImageData string              `json:"image_data,omitempty"`
}

// Purchase captures the price at request time; it does not track later
// catalog price changes.
type Purchase struct {
	Username    string  `json:"username"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Confirmed   bool    `json:"confirmed"`
}

// PurchaseEntry pairs a purchase with its server-assigned id. The Purchase
// fields are embedded so entries read like the record they wrap.
type PurchaseEntry struct {
	ID       int64 `json:"id"`
	Purchase `json:"purchase"`
}
