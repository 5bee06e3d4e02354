package domain

import "time"

type Product struct {
	ID          string
	Title       string
	Description string
	Price       float64
	SellerID    string
	ArtistName  string
	Category    string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
