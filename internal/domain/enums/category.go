package enums

type Category string

const (
	CategoryStandard Category = "standard"
	CategoryFree     Category = "free"
)

func ParseCategory(value string) (Category, bool) {
	switch Category(value) {
	case CategoryStandard, CategoryFree:
		return Category(value), true
	default:
		return "", false
	}
}
