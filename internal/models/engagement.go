package models

import "time"

type ClickKind string

const (
	ClickModalOpen    ClickKind = "modal_open"
	ClickNewTab       ClickKind = "new_tab"
	ClickExternalLink ClickKind = "external_link"
)

var ClickKinds = []ClickKind{ClickModalOpen, ClickNewTab, ClickExternalLink}

func (k ClickKind) Valid() bool {
	for _, known := range ClickKinds {
		if k == known {
			return true
		}
	}
	return false
}

type View struct {
	ID        int64     `json:"id" db:"id"`
	ListingID int64     `json:"listing_id" db:"listing_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ViewedAt  time.Time `json:"viewed_at" db:"viewed_at"`
}

type Click struct {
	ID        int64     `json:"id" db:"id"`
	ListingID int64     `json:"listing_id" db:"listing_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ClickType ClickKind `json:"click_type" db:"click_type"`
	Referrer  *string   `json:"referrer" db:"referrer"`
	ClickedAt time.Time `json:"clicked_at" db:"clicked_at"`
}

type Session struct {
	ID              int64     `json:"id" db:"id"`
	ListingID       int64     `json:"listing_id" db:"listing_id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	StartedAt       time.Time `json:"started_at" db:"started_at"`
	EndedAt         time.Time `json:"ended_at" db:"ended_at"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
}

type Rating struct {
	ID        int64     `json:"id" db:"id"`
	ListingID int64     `json:"listing_id" db:"listing_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Review struct {
	ID           int64     `json:"id" db:"id"`
	ListingID    int64     `json:"listing_id" db:"listing_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	ReviewText   string    `json:"review_text" db:"review_text"`
	HelpfulCount int       `json:"helpful_count" db:"helpful_count"`
	ReviewedAt   time.Time `json:"reviewed_at" db:"reviewed_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type ReviewDetail struct {
	Review
	Username string `json:"username" db:"username"`
}
