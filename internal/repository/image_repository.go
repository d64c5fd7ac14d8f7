package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"

	"github.com/jmoiron/sqlx"
)

const (
	queryCreateImage = `
		INSERT INTO listing_images (listing_id, object_name, image_url, created_at)
		VALUES (:listing_id, :object_name, :image_url, :created_at)
		RETURNING id`
	queryImageByID   = `SELECT id, listing_id, object_name, image_url, created_at FROM listing_images WHERE id = $1 AND listing_id = $2`
	queryImagesFor   = `SELECT id, listing_id, object_name, image_url, created_at FROM listing_images WHERE listing_id IN (?) ORDER BY created_at, id`
	queryDeleteImage = `DELETE FROM listing_images WHERE id = $1`
)

type ImageRepositoryImpl struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepositoryImpl {
	return &ImageRepositoryImpl{db: db}
}

func (r *ImageRepositoryImpl) Create(ctx context.Context, image *models.ListingImage) error {
	return insertReturningID(ctx, r.db, queryCreateImage, image, &image.ID, "create image")
}

func (r *ImageRepositoryImpl) GetByID(ctx context.Context, listingID, imageID int64) (*models.ListingImage, error) {
	var image models.ListingImage

	err := r.db.GetContext(ctx, &image, queryImageByID, imageID, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("get image %d: %w", imageID, err)
	}

	return &image, nil
}

// ListByListings groups the images of several listings by listing id.
func (r *ImageRepositoryImpl) ListByListings(ctx context.Context, listingIDs ...int64) (map[int64][]models.ListingImage, error) {
	grouped := make(map[int64][]models.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(queryImagesFor, listingIDs)
	if err != nil {
		return nil, fmt.Errorf("build image query: %w", err)
	}

	var images []models.ListingImage
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	for _, image := range images {
		grouped[image.ListingID] = append(grouped[image.ListingID], image)
	}
	return grouped, nil
}

func (r *ImageRepositoryImpl) Delete(ctx context.Context, imageID int64) error {
	result, err := r.db.ExecContext(ctx, queryDeleteImage, imageID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return requireRow(result, apperrors.ErrImageNotFound)
}
