package enums

type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductSoldOut   ProductStatus = "soldOut"
)
