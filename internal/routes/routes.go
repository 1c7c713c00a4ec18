package routes

import (
	"net/http"

	"github.com/labworks/tracker/internal/app"
	"github.com/labworks/tracker/internal/handler"
	"github.com/labworks/tracker/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	goal := handler.NewGoalHandler(app.GoalService)
	activity := handler.NewActivityHandler(app.ActivityService)
	polish := handler.NewPolishHandler(app.ActivityService)
	export := handler.NewExportHandler(app.ExportService)
	dashboard := handler.NewDashboardHandler(app.GoalService, app.ActivityService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// Auth (rate limited)
	authLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/register", authLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", authLimiter(auth.Login))

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Account
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /api/me/password", middleware.RequireAuth(authLimiter(auth.ChangePassword)))

	// Dashboard
	mux.HandleFunc("GET /api/dashboard", middleware.RequireAuth(dashboard.Dashboard))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("GET /api/goals/mine", middleware.RequireAuth(goal.Mine))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Activities
	mux.HandleFunc("GET /api/goals/{id}/activities", middleware.RequireAuth(activity.List))
	mux.HandleFunc("POST /api/goals/{id}/activities", middleware.RequireAuth(activity.Log))
	mux.HandleFunc("GET /api/feed", middleware.RequireAuth(activity.Feed))

	// Polishing
	mux.HandleFunc("POST /api/polish", middleware.RequireAuth(middleware.RateLimitPolish()(polish.Polish)))

	// Export
	mux.HandleFunc("GET /api/export/goals.csv", middleware.RequireAuth(export.GoalsCSV))
	mux.HandleFunc("GET /api/export/activities.csv", middleware.RequireAuth(export.ActivitiesCSV))
	mux.HandleFunc("POST /api/export/snapshots", middleware.RequireAuth(export.Snapshot))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
