package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
	"agenthub/internal/notify"
	"agenthub/internal/repository"
	"agenthub/internal/storage"

	"go.uber.org/zap"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type SubmitListingInput struct {
	Name        string
	Description string
	AppURL      string
	Category    models.Category
}

type ListListingsInput struct {
	Status   models.ListingStatus
	Category models.Category
	Search   string
	Skip     int
	Limit    int
}

type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ListingService interface {
	Submit(ctx context.Context, author models.Principal, in SubmitListingInput) (*models.Listing, error)
	Decide(ctx context.Context, actor models.Principal, listingID int64, approve bool) (*models.Listing, error)
	View(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingSummary, error)
	List(ctx context.Context, viewer models.Principal, in ListListingsInput) (*models.ListingPage, error)
	Categories(ctx context.Context) ([]models.CategoryCount, error)
	ListForAccount(ctx context.Context, viewer models.Principal, accountID int64, skip, limit int) (*models.ListingPage, error)
	ListPending(ctx context.Context, actor models.Principal, skip, limit int) (*models.ListingPage, error)
	AddScreenshot(ctx context.Context, actor models.Principal, listingID int64, upload ImageUpload) (*models.ListingImage, error)
	DeleteScreenshot(ctx context.Context, actor models.Principal, listingID, imageID int64) error
}

type listingService struct {
	listings      repository.ListingRepository
	users         repository.UserRepository
	engagement    repository.EngagementRepository
	images        repository.ImageRepository
	storage       storage.Storage
	gate          ViewGate
	dispatcher    Dispatcher
	maxUploadSize int64
	log           *zap.Logger
	now           func() time.Time
}

func NewListingService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	engagement repository.EngagementRepository,
	images repository.ImageRepository,
	maxUploadSize int64,
	deps Deps,
) ListingService {
	return &listingService{
		listings:      listings,
		users:         users,
		engagement:    engagement,
		images:        images,
		storage:       deps.Storage,
		gate:          deps.ViewGate,
		dispatcher:    deps.Dispatcher,
		maxUploadSize: maxUploadSize,
		log:           deps.Log,
		now:           deps.Now,
	}
}

func (s *listingService) Submit(ctx context.Context, author models.Principal, in SubmitListingInput) (*models.Listing, error) {
	if !in.Category.Valid() {
		return nil, apperrors.ErrInvalidCategory
	}

	now := s.now()
	listing := &models.Listing{
		Name:        in.Name,
		Description: in.Description,
		AppURL:      in.AppURL,
		Category:    in.Category,
		Status:      models.StatusPending,
		AuthorID:    author.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	notifyAdmins(ctx, s.users, s.dispatcher, s.log, func(admin models.Account) notify.Message {
		return notify.NewListingMessage(admin.Email, author.Username, listing.Name, listing.Category.Label())
	})

	s.log.Info("listing submitted", zap.Int64("listing_id", listing.ID), zap.Int64("author_id", author.AccountID))
	return listing, nil
}

func (s *listingService) Decide(ctx context.Context, actor models.Principal, listingID int64, approve bool) (*models.Listing, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.StatusPending {
		return nil, apperrors.ErrAlreadyReviewed
	}

	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}

	now := s.now()
	decided, err := s.listings.Decide(ctx, listingID, status, actor.AccountID, now)
	if err != nil {
		return nil, err
	}
	if !decided {
		if _, err := s.listings.GetByID(ctx, listingID); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrAlreadyReviewed
	}

	listing.Status = status
	listing.ApprovedBy = &actor.AccountID
	listing.ApprovedAt = &now
	listing.UpdatedAt = now

	author, err := s.users.GetByID(ctx, listing.AuthorID)
	if err != nil {
		s.log.Warn("load listing author for notification", zap.Int64("listing_id", listingID), zap.Error(err))
	} else {
		s.dispatcher.Deliver(ctx, notify.ListingDecidedMessage(author.Email, author.Username, listing.Name, approve))
	}

	s.log.Info("listing decided",
		zap.Int64("listing_id", listingID),
		zap.String("status", string(status)),
		zap.Int64("approver_id", actor.AccountID),
	)
	return listing, nil
}

func (s *listingService) View(ctx context.Context, viewer models.Principal, listingID int64) (*models.ListingSummary, error) {
	summary, err := s.listings.GetSummary(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if summary.Status != models.StatusApproved {
		if !viewer.CanManage(&summary.Listing) {
			return nil, apperrors.ErrListingAccessDenied
		}
	} else {
		recorded, err := s.recordView(ctx, listingID, viewer.AccountID)
		if err != nil {
			return nil, err
		}
		if recorded {
			summary.ViewCount++
		}
	}

	if err := s.attachImages(ctx, []*models.ListingSummary{summary}); err != nil {
		return nil, err
	}
	return summary, nil
}

// recordView writes at most one view per (listing, viewer) inside the dedup window.
// A gate entry taken for a view that was not stored is released so a retry can record it.
func (s *listingService) recordView(ctx context.Context, listingID, viewerID int64) (bool, error) {
	gated := false
	if s.gate != nil {
		admitted, err := s.gate.Admit(ctx, listingID, viewerID)
		switch {
		case err != nil:
			s.log.Warn("view gate unavailable", zap.Error(err))
		case !admitted:
			return false, nil
		default:
			gated = true
		}
	}

	recorded, err := s.storeView(ctx, listingID, viewerID)
	if err != nil && gated {
		if ferr := s.gate.Forget(ctx, listingID, viewerID); ferr != nil {
			s.log.Warn("release view gate", zap.Int64("listing_id", listingID), zap.Error(ferr))
		}
	}
	return recorded, err
}

func (s *listingService) storeView(ctx context.Context, listingID, viewerID int64) (bool, error) {
	now := s.now()
	recent, err := s.engagement.HasRecentView(ctx, listingID, viewerID, now.Add(-ViewDedupWindow))
	if err != nil {
		return false, err
	}
	if recent {
		return false, nil
	}

	view := &models.View{ListingID: listingID, UserID: viewerID, ViewedAt: now}
	if err := s.engagement.RecordView(ctx, view); err != nil {
		return false, err
	}
	return true, nil
}

func (s *listingService) List(ctx context.Context, viewer models.Principal, in ListListingsInput) (*models.ListingPage, error) {
	status := in.Status
	if status == "" {
		status = models.StatusApproved
	}
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	if in.Category != "" && !in.Category.Valid() {
		return nil, apperrors.ErrInvalidCategory
	}

	skip, limit := page(in.Skip, in.Limit, defaultListingLimit)
	filter := models.ListingFilter{
		Status:   status,
		Category: in.Category,
		Search:   in.Search,
		Skip:     skip,
		Limit:    limit,
	}
	// Non-admins only see unapproved listings they wrote.
	if status != models.StatusApproved && !viewer.IsAdmin() {
		filter.AuthorID = &viewer.AccountID
	}

	return s.listPage(ctx, filter)
}

func (s *listingService) listPage(ctx context.Context, filter models.ListingFilter) (*models.ListingPage, error) {
	listings, total, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	refs := make([]*models.ListingSummary, len(listings))
	for i := range listings {
		refs[i] = &listings[i]
	}
	if err := s.attachImages(ctx, refs); err != nil {
		return nil, err
	}

	return &models.ListingPage{
		Listings: listings,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Skip,
	}, nil
}

func (s *listingService) attachImages(ctx context.Context, listings []*models.ListingSummary) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]int64, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}

	grouped, err := s.images.ListByListings(ctx, ids...)
	if err != nil {
		return err
	}

	for _, l := range listings {
		l.Images = grouped[l.ID]
		if l.Images == nil {
			l.Images = []models.ListingImage{}
		}
	}
	return nil
}

func (s *listingService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := s.listings.CountApprovedByCategory(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]models.CategoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, models.CategoryCount{Value: c, Label: c.Label(), Count: counts[c]})
	}
	return categories, nil
}

func (s *listingService) ListForAccount(ctx context.Context, viewer models.Principal, accountID int64, skip, limit int) (*models.ListingPage, error) {
	if accountID != viewer.AccountID {
		if _, err := s.users.GetByID(ctx, accountID); err != nil {
			return nil, err
		}
	}

	skip, limit = page(skip, limit, defaultListingLimit)
	filter := models.ListingFilter{AuthorID: &accountID, Skip: skip, Limit: limit}
	if accountID != viewer.AccountID && !viewer.IsAdmin() {
		filter.Status = models.StatusApproved
	}

	return s.listPage(ctx, filter)
}

func (s *listingService) ListPending(ctx context.Context, actor models.Principal, skip, limit int) (*models.ListingPage, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}

	skip, limit = page(skip, limit, defaultAdminLimit)
	return s.listPage(ctx, models.ListingFilter{Status: models.StatusPending, Skip: skip, Limit: limit})
}

func (s *listingService) authored(ctx context.Context, actor models.Principal, listingID int64) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.AuthorID != actor.AccountID {
		return nil, apperrors.ErrNotListingAuthor
	}
	return listing, nil
}

func (s *listingService) AddScreenshot(ctx context.Context, actor models.Principal, listingID int64, upload ImageUpload) (*models.ListingImage, error) {
	if _, err := s.authored(ctx, actor, listingID); err != nil {
		return nil, err
	}
	if !allowedImageTypes[upload.ContentType] {
		return nil, apperrors.ErrInvalidImage
	}
	if s.maxUploadSize > 0 && upload.Size > s.maxUploadSize {
		return nil, apperrors.ErrImageTooLarge
	}

	objectName, imageURL, err := s.storage.UploadImage(ctx, listingID, upload.FileName, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return nil, apperrors.Storage("Failed to upload image", err)
	}

	image := &models.ListingImage{
		ListingID:  listingID,
		ObjectName: objectName,
		ImageURL:   imageURL,
		CreatedAt:  s.now(),
	}
	if err := s.images.Create(ctx, image); err != nil {
		if delErr := s.storage.DeleteImage(ctx, objectName); delErr != nil {
			s.log.Warn("remove orphaned image", zap.String("object", objectName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("save image: %w", err)
	}

	return image, nil
}

func (s *listingService) DeleteScreenshot(ctx context.Context, actor models.Principal, listingID, imageID int64) error {
	if _, err := s.authored(ctx, actor, listingID); err != nil {
		return err
	}

	image, err := s.images.GetByID(ctx, listingID, imageID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteImage(ctx, image.ObjectName); err != nil {
		s.log.Warn("delete image object", zap.String("object", image.ObjectName), zap.Error(err))
	}

	return s.images.Delete(ctx, imageID)
}
