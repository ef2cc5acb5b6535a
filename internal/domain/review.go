package domain

import "time"

// Review grade bounds, enforced both in the service layer and by a CHECK
// constraint at the storage layer.
const (
	MinGrade = 1
	MaxGrade = 5
)

// Review is a buyer's verdict on a product. At most one review may ever
// exist per (user, product) pair, soft-deleted rows included. Deletion is
// always logical via IsActive.
type Review struct {
	ID        int64
	UserID    int64
	ProductID int64
	Comment   string
	Grade     int
	CreatedAt time.Time
	IsActive  bool
}
