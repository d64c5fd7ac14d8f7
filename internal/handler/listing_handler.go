package handlers

import (
	"errors"
	"net/http"

	"agenthub/internal/apperrors"
	"agenthub/internal/models"
	"agenthub/internal/service"
)

// multipartOverhead leaves room for form boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type SubmitListingRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	AppURL      string `json:"app_url" validate:"required,url,max=500"`
	Category    string `json:"category" validate:"required"`
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req SubmitListingRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	listing, err := h.ListingService.Submit(r.Context(), caller, service.SubmitListingInput{
		Name:        req.Name,
		Description: req.Description,
		AppURL:      req.AppURL,
		Category:    models.Category(req.Category),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusCreated)
}

func (h *Handlers) GetListings(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	page, err := h.ListingService.List(r.Context(), caller, service.ListListingsInput{
		Status:   models.ListingStatus(query.Get("status")),
		Category: models.Category(query.Get("category")),
		Search:   query.Get("search"),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ListingService.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, map[string]any{"categories": categories}, http.StatusOK)
}

func (h *Handlers) GetMyListings(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	skip, limit, err := pagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.ListingService.ListForAccount(r.Context(), caller, caller.AccountID, skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, page, http.StatusOK)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	listing, err := h.ListingService.View(r.Context(), caller, listingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) AddImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperrors.ErrImageTooLarge)
			return
		}
		h.writeError(w, r, apperrors.InvalidInput("Invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperrors.InvalidInput("image file is required", err))
		return
	}
	defer file.Close()

	image, err := h.ListingService.AddScreenshot(r.Context(), caller, listingID, service.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, image, http.StatusCreated)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	listingID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.ListingService.DeleteScreenshot(r.Context(), caller, listingID, imageID); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Image deleted successfully"}, http.StatusOK)
}
