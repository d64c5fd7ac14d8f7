package models

import (
	"strings"
	"time"
)

type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Category string

const (
	CategoryBusiness    Category = "business"
	CategoryHealthcare  Category = "healthcare"
	CategoryFinance     Category = "finance"
	CategorySupplyChain Category = "supply_chain"
	CategoryInsurance   Category = "insurance"
	CategoryHR          Category = "hr"
	CategoryOperations  Category = "operations"
	CategoryEngineering Category = "engineering"
)

// Categories lists the closed category enumeration in display order.
var Categories = []Category{
	CategoryBusiness,
	CategoryHealthcare,
	CategoryFinance,
	CategorySupplyChain,
	CategoryInsurance,
	CategoryHR,
	CategoryOperations,
	CategoryEngineering,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label turns "supply_chain" into "Supply Chain".
func (c Category) Label() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type Listing struct {
	ID          int64         `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	AppURL      string        `json:"app_url" db:"app_url"`
	Category    Category      `json:"category" db:"category"`
	Status      ListingStatus `json:"status" db:"status"`
	AuthorID    int64         `json:"author_id" db:"author_id"`
	ApprovedBy  *int64        `json:"approved_by" db:"approved_by"`
	ApprovedAt  *time.Time    `json:"approved_at" db:"approved_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ListingSummary is a listing joined with its author and view count.
type ListingSummary struct {
	Listing
	AuthorUsername string         `json:"author_username" db:"author_username"`
	ViewCount      int            `json:"view_count" db:"view_count"`
	Images         []ListingImage `json:"images" db:"-"`
}

type ListingImage struct {
	ID         int64     `json:"id" db:"id"`
	ListingID  int64     `json:"listing_id" db:"listing_id"`
	ObjectName string    `json:"-" db:"object_name"`
	ImageURL   string    `json:"image_url" db:"image_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ListingFilter struct {
	Status   ListingStatus
	Category Category
	Search   string
	AuthorID *int64
	Skip     int
	Limit    int
}

type ListingPage struct {
	Listings []ListingSummary `json:"agents"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type CategoryCount struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
	Count int      `json:"count"`
}
