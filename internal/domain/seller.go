package domain

import "time"

type Seller struct {
	ID           string
	UserID       string
	Name         string
	Email        string
	BusinessName string
	Description  string
	Location     string
	Phone        string
	CreatedAt    time.Time
}

// Review is a buyer's rating of a product, from 1 to 5.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
