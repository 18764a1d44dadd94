package models

// Category classifies activities (e.g. "Environmental Protection").
type Category struct {
	ID           int64   `json:"id"`
	CategoryName string  `json:"category_name"`
	CategoryDesc *string `json:"category_desc,omitempty"`
}
