package domain

// Product is a catalog item offered by a seller.
//
// Rating is derived: the mean grade of the product's active reviews, 0 when
// none exist. It is written only by the rating recomputation path, never by
// handlers directly.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Stock       int
	Rating      float64
	CategoryID  int64
	SellerID    int64
	IsActive    bool
}
