package dto

type BuyRequest struct {
	ProductName string `json:"product_name"`
}

type BuyResponse struct {
	PurchaseID int64 `json:"purchase_id"`
}

type PurchaseResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Confirmed   bool    `json:"confirmed"`
}

type PurchaseListResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
}

type AcceptResponse struct {
	OK bool `json:"ok"`
}

// DeclineResponse reports the local hide separately from the remote outcome:
// a failed remote decline still leaves the entry hidden, with a notice the
// UI is expected to show.
type DeclineResponse struct {
	Hidden       bool   `json:"hidden"`
	RemoteFailed bool   `json:"remote_failed"`
	Notice       string `json:"notice,omitempty"`
}

type DeleteConfirmedResponse struct {
	OK          bool `json:"ok"`
	AlreadyGone bool `json:"already_gone"`
}

type ClearHiddenResponse struct {
	OK bool `json:"ok"`
}
