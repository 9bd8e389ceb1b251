package domain

// ProductSummary is the read-only product shape served by the catalog API.
// Price is in minor units (cents).
type ProductSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    int64    `json:"price"`
	Images   []string `json:"images"`
	Stock    int      `json:"stock"`
}
