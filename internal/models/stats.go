package models

import "time"

type RatingSummary struct {
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	TotalRatings  int     `json:"total_ratings" db:"total_ratings"`
}

type RatingStats struct {
	AverageRating float64        `json:"average_rating"`
	TotalRatings  int            `json:"total_ratings"`
	TotalReviews  int            `json:"total_reviews"`
	Distribution  map[string]int `json:"rating_distribution"`
}

type ListingEngagement struct {
	ListingID          int64             `json:"listing_id"`
	Views              int               `json:"views"`
	UniqueViewers      int               `json:"unique_viewers"`
	Clicks             int               `json:"clicks"`
	ClicksByKind       map[ClickKind]int `json:"clicks_by_type"`
	Sessions           int               `json:"sessions"`
	TotalSessionSecs   int               `json:"total_session_seconds"`
	AverageSessionSecs float64           `json:"average_session_seconds"`
}

type PopularListing struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Views int    `json:"views" db:"views"`
}

type StatusCounts struct {
	Total    int `json:"total" db:"total"`
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Rejected int `json:"rejected" db:"rejected"`
}

type AccountProfile struct {
	MemberSince time.Time `json:"member_since"`
	Roles       Roles     `json:"roles"`
	IsAdmin     bool      `json:"is_admin"`
}

type AccountStats struct {
	Listings    StatusCounts    `json:"agents"`
	TotalViews  int             `json:"total_views"`
	MostPopular *PopularListing `json:"most_popular_agent"`
	Profile     AccountProfile  `json:"profile"`
}

type ListingTotals struct {
	StatusCounts
	Recent int `json:"recent" db:"recent"`
}

type AccountTotals struct {
	Total   int `json:"total" db:"total"`
	Active  int `json:"active" db:"active"`
	Pending int `json:"pending" db:"pending"`
	Admins  int `json:"admins" db:"admins"`
	Recent  int `json:"recent" db:"recent"`
}

type ViewTotals struct {
	Total  int `json:"total_views" db:"total_views"`
	Recent int `json:"recent_views" db:"recent_views"`
}

type AdminStats struct {
	Listings ListingTotals `json:"agents"`
	Accounts AccountTotals `json:"users"`
	Views    ViewTotals    `json:"engagement"`
}
