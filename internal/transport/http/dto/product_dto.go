package dto

type ProductResponse struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	ImageData string  `json:"image_data,omitempty"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

type ProductCreateRequest struct {
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Category         string  `json:"category"`
	ImageBase64      string  `json:"image_base64,omitempty"`
	ImageContentType string  `json:"image_content_type,omitempty"`
}

type ProductCreateResponse struct {
	OK bool `json:"ok"`
}

type ProductDeleteResponse struct {
	OK bool `json:"ok"`
}
