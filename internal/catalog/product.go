package catalog

// Product is catalog-owned and read-only from the storefront's perspective.
type Product struct {
	ID          string   `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	Price       float64  `json:"price" bson:"price"`
	Images      []string `json:"images" bson:"images"`
}
