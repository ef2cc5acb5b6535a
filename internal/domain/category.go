package domain

// Category groups products. Categories form a tree via ParentID and are
// soft-deleted through IsActive.
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
	IsActive bool
}
