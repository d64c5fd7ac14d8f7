package repository

import (
	"context"
	"fmt"
	"time"

	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	queryRecentViewExists = `SELECT EXISTS(SELECT 1 FROM listing_views WHERE listing_id = $1 AND user_id = $2 AND viewed_at >= $3)`
	queryInsertView       = `INSERT INTO listing_views (listing_id, user_id, viewed_at) VALUES ($1, $2, $3) RETURNING id`
	queryInsertClick      = `
		INSERT INTO listing_clicks (listing_id, user_id, click_type, referrer, clicked_at)
		VALUES (:listing_id, :user_id, :click_type, :referrer, :clicked_at)
		RETURNING id`
	queryInsertSession = `
		INSERT INTO listing_sessions (listing_id, user_id, started_at, ended_at, duration_seconds)
		VALUES (:listing_id, :user_id, :started_at, :ended_at, :duration_seconds)
		RETURNING id`
	queryViewCounts    = `SELECT COUNT(*) AS views, COUNT(DISTINCT user_id) AS unique_viewers FROM listing_views WHERE listing_id = $1`
	queryClickCounts   = `SELECT click_type, COUNT(*) AS count FROM listing_clicks WHERE listing_id = $1 GROUP BY click_type`
	querySessionCounts = `
		SELECT COUNT(*) AS sessions, COALESCE(SUM(duration_seconds), 0) AS total_seconds
		FROM listing_sessions WHERE listing_id = $1`
)

type EngagementRepositoryImpl struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) *EngagementRepositoryImpl {
	return &EngagementRepositoryImpl{db: db}
}

func (r *EngagementRepositoryImpl) HasRecentView(ctx context.Context, listingID, userID int64, since time.Time) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, queryRecentViewExists, listingID, userID, since); err != nil {
		return false, fmt.Errorf("check recent view: %w", err)
	}
	return exists, nil
}

func (r *EngagementRepositoryImpl) RecordView(ctx context.Context, view *models.View) error {
	err := r.db.QueryRowxContext(ctx, queryInsertView, view.ListingID, view.UserID, view.ViewedAt).Scan(&view.ID)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

func (r *EngagementRepositoryImpl) RecordClick(ctx context.Context, click *models.Click) error {
	return insertReturningID(ctx, r.db, queryInsertClick, click, &click.ID, "record click")
}

func (r *EngagementRepositoryImpl) RecordSession(ctx context.Context, session *models.Session) error {
	return insertReturningID(ctx, r.db, queryInsertSession, session, &session.ID, "record session")
}

// ListingEngagement scans the event tables for one listing.
func (r *EngagementRepositoryImpl) ListingEngagement(ctx context.Context, listingID int64) (*models.ListingEngagement, error) {
	stats := &models.ListingEngagement{
		ListingID:    listingID,
		ClicksByKind: make(map[models.ClickKind]int, len(models.ClickKinds)),
	}
	for _, kind := range models.ClickKinds {
		stats.ClicksByKind[kind] = 0
	}

	var views struct {
		Views         int `db:"views"`
		UniqueViewers int `db:"unique_viewers"`
	}
	if err := r.db.GetContext(ctx, &views, queryViewCounts, listingID); err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	stats.Views = views.Views
	stats.UniqueViewers = views.UniqueViewers

	var clicks []struct {
		ClickType models.ClickKind `db:"click_type"`
		Count     int              `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &clicks, queryClickCounts, listingID); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	for _, c := range clicks {
		stats.ClicksByKind[c.ClickType] = c.Count
		stats.Clicks += c.Count
	}

	var sessions struct {
		Sessions     int `db:"sessions"`
		TotalSeconds int `db:"total_seconds"`
	}
	if err := r.db.GetContext(ctx, &sessions, querySessionCounts, listingID); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	stats.Sessions = sessions.Sessions
	stats.TotalSessionSecs = sessions.TotalSeconds
	if sessions.Sessions > 0 {
		stats.AverageSessionSecs = roundTo2(float64(sessions.TotalSeconds) / float64(sessions.Sessions))
	}

	return stats, nil
}
