package handlers

import (
	"net/http"

	"agenthub/internal/middleware"

	"github.com/gorilla/mux"
)

const idPattern = "{id:[0-9]+}"

var (
	notFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, ErrorResponse{Error: "Not found", Code: "ROUTE_NOT_FOUND"}, http.StatusNotFound)
	})
	methodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"}, http.StatusMethodNotAllowed)
	})
)

// withFallbacks sets the JSON 404/405 handlers. Subrouters do not inherit them from their parent.
func withFallbacks(r *mux.Router) *mux.Router {
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = methodNotAllowed
	return r
}

// NewRouter registers every route under /api/v1 and wraps the router with the global middleware.
func NewRouter(h *Handlers) http.Handler {
	router := withFallbacks(mux.NewRouter())

	router.HandleFunc("/", HomeHandler).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	api := withFallbacks(router.PathPrefix("/api/v1").Subrouter())

	// public
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-otp", h.VerifyOTP).Methods(http.MethodPost)

	protected := withFallbacks(api.NewRoute().Subrouter())
	protected.Use(mux.MiddlewareFunc(middleware.Auth(h.AuthService, h.Log)))

	protected.HandleFunc("/auth/me", h.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/auth/change-password", h.ChangePassword).Methods(http.MethodPost)
	protected.HandleFunc("/auth/refresh", h.RefreshToken).Methods(http.MethodPost)

	protected.HandleFunc("/listings", h.GetListings).Methods(http.MethodGet)
	protected.HandleFunc("/listings", h.CreateListing).Methods(http.MethodPost)
	protected.HandleFunc("/listings/categories", h.GetCategories).Methods(http.MethodGet)
	protected.HandleFunc("/listings/mine", h.GetMyListings).Methods(http.MethodGet)
	protected.HandleFunc("/listings/"+idPattern, h.GetListing).Methods(http.MethodGet)
	protected.HandleFunc("/listings/"+idPattern+"/clicks", h.RecordClick).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/sessions", h.RecordSession).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/engagement", h.GetListingEngagement).Methods(http.MethodGet)
	protected.HandleFunc("/listings/"+idPattern+"/rating", h.RateListing).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/rating-stats", h.GetRatingStats).Methods(http.MethodGet)
	protected.HandleFunc("/listings/"+idPattern+"/review", h.ReviewListing).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/review", h.DeleteReview).Methods(http.MethodDelete)
	protected.HandleFunc("/listings/"+idPattern+"/reviews", h.GetReviews).Methods(http.MethodGet)
	protected.HandleFunc("/listings/"+idPattern+"/reviews/{reviewId:[0-9]+}/helpful", h.MarkReviewHelpful).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/images", h.AddImage).Methods(http.MethodPost)
	protected.HandleFunc("/listings/"+idPattern+"/images/{imageId:[0-9]+}", h.DeleteImage).Methods(http.MethodDelete)

	protected.HandleFunc("/users/me/stats", h.GetMyStats).Methods(http.MethodGet)
	protected.HandleFunc("/users/"+idPattern, h.GetUser).Methods(http.MethodGet)
	protected.HandleFunc("/users/"+idPattern+"/listings", h.GetUserListings).Methods(http.MethodGet)

	admin := withFallbacks(protected.PathPrefix("/admin").Subrouter())
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/listings/pending", h.GetPendingListings).Methods(http.MethodGet)
	admin.HandleFunc("/listings/"+idPattern+"/decision", h.DecideListing).Methods(http.MethodPatch)
	admin.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/pending", h.GetPendingUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/"+idPattern+"/approve", h.ApproveUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/"+idPattern+"/deactivate", h.DeactivateUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/"+idPattern, h.RejectUser).Methods(http.MethodDelete)
	admin.HandleFunc("/users/"+idPattern+"/grant-admin", h.GrantAdmin).Methods(http.MethodPatch)
	admin.HandleFunc("/stats", h.GetAdminStats).Methods(http.MethodGet)

	var cors middleware.Middleware = func(next http.Handler) http.Handler { return next }
	if h.Cfg != nil {
		cors = middleware.CORS(h.Cfg.Server)
	}

	return middleware.Chain(
		router,
		cors,
		middleware.Logging(h.Log),
		middleware.RequestID,
	)
}
