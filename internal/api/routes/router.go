package routes

import (
	"net/http"

	"github.com/mdsetiawan/facility-directory/internal/api/handlers"
	"github.com/mdsetiawan/facility-directory/internal/api/middleware"
	"github.com/mdsetiawan/facility-directory/internal/application/services"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityTypeHandler *handlers.FacilityTypeHandler
	facilityHandler     *handlers.FacilityHandler
	reviewHandler       *handlers.ReviewHandler
	userHandler         *handlers.UserHandler
	authHandler         *handlers.AuthHandler
	sseHandler          *handlers.SSEHandler

	authService *services.AuthService
	uploadsDir  string
	metrics     *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	facilityTypeHandler *handlers.FacilityTypeHandler,
	facilityHandler *handlers.FacilityHandler,
	reviewHandler *handlers.ReviewHandler,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	sseHandler *handlers.SSEHandler,
	authService *services.AuthService,
	uploadsDir string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		facilityTypeHandler: facilityTypeHandler,
		facilityHandler:     facilityHandler,
		reviewHandler:       reviewHandler,
		userHandler:         userHandler,
		authHandler:         authHandler,
		sseHandler:          sseHandler,
		authService:         authService,
		uploadsDir:          uploadsDir,
		metrics:             metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Uploaded assets
	r.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(r.uploadsDir))))

	// Taxonomy endpoints
	r.mux.HandleFunc("GET /api/facility-types", r.facilityTypeHandler.ListFacilityTypes)
	r.mux.HandleFunc("GET /api/facility-types/summaries", r.facilityTypeHandler.ListFacilityTypeSummaries)
	r.mux.HandleFunc("GET /api/facility-types/{id}", r.facilityTypeHandler.GetFacilityType)
	r.mux.HandleFunc("GET /api/facility-types/{id}/facilities", r.facilityHandler.ListFacilitiesByType)
	r.mux.HandleFunc("POST /api/facility-types", middleware.RequireAdmin(r.facilityTypeHandler.CreateFacilityType))
	r.mux.HandleFunc("PATCH /api/facility-types/{id}", middleware.RequireAdmin(r.facilityTypeHandler.UpdateFacilityType))
	r.mux.HandleFunc("DELETE /api/facility-types/{id}", middleware.RequireAdmin(r.facilityTypeHandler.DeleteFacilityType))

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/search", r.facilityHandler.SearchFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("POST /api/facilities", middleware.RequireAdmin(r.facilityHandler.CreateFacility))
	r.mux.HandleFunc("PATCH /api/facilities/{id}", middleware.RequireAdmin(r.facilityHandler.UpdateFacility))
	r.mux.HandleFunc("DELETE /api/facilities/{id}", middleware.RequireAdmin(r.facilityHandler.DeleteFacility))
	r.mux.HandleFunc("POST /api/facilities/describe", middleware.RequireAdmin(r.facilityHandler.DescribeFacility))

	// Kind-scoped endpoints, tags name facility types
	r.mux.HandleFunc("GET /api/kinds/{tag}/facilities", r.facilityHandler.ListFacilitiesByKind)
	r.mux.HandleFunc("GET /api/kinds/{tag}/facilities/{facilityId}/reviews", r.reviewHandler.ListFacilityReviews)
	r.mux.HandleFunc("POST /api/kinds/{tag}/facilities/{facilityId}/reviews", middleware.RequireUser(r.reviewHandler.CreateReview))

	// Review endpoints
	r.mux.HandleFunc("GET /api/reviews", r.reviewHandler.ListReviews)
	r.mux.HandleFunc("POST /api/reviews", middleware.RequireUser(r.reviewHandler.CreateReviewForFacility))
	r.mux.HandleFunc("GET /api/reviews/{id}", r.reviewHandler.GetReview)
	r.mux.HandleFunc("PATCH /api/reviews/{id}", middleware.RequireUser(r.reviewHandler.UpdateReview))
	r.mux.HandleFunc("DELETE /api/reviews/{id}", middleware.RequireUser(r.reviewHandler.DeleteReview))

	// User endpoints
	r.mux.HandleFunc("POST /api/users", r.userHandler.RegisterUser)
	r.mux.HandleFunc("GET /api/users", middleware.RequireAdmin(r.userHandler.ListUsers))
	r.mux.HandleFunc("GET /api/users/{id}", middleware.RequireUser(r.userHandler.GetUser))
	r.mux.HandleFunc("PATCH /api/users/{id}", middleware.RequireUser(r.userHandler.UpdateUser))
	r.mux.HandleFunc("DELETE /api/users/{id}", middleware.RequireAdmin(r.userHandler.DeleteUser))

	// Admin endpoints
	r.mux.HandleFunc("POST /api/admin/users", middleware.RequireAdmin(r.userHandler.CreateAdmin))
	r.mux.HandleFunc("GET /api/admin/dashboard", middleware.RequireAdmin(r.facilityTypeHandler.GetDashboard))

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/me", r.authHandler.Me)
	r.mux.HandleFunc("POST /api/auth/otp/request", r.authHandler.RequestOTP)
	r.mux.HandleFunc("POST /api/auth/otp/verify", r.authHandler.VerifyOTP)
	r.mux.HandleFunc("POST /api/auth/reset-password", r.authHandler.ResetPassword)

	// Streaming endpoints
	r.mux.HandleFunc("GET /api/stream/facilities", r.sseHandler.StreamAllUpdates)
	r.mux.HandleFunc("GET /api/stream/facilities/{id}", r.sseHandler.StreamFacilityUpdates)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.AuthMiddleware(r.authService)(handler)
	handler = middleware.BodyLimit(handler)

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cached responses
	handler = middleware.CORSMiddleware(handler)

	return handler
}
