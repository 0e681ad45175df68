package handler

import (
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every API handler mounted by RegisterRoutes
type Handlers struct {
	Account      *AccountHandler
	Workout      *WorkoutHandler
	Registration *RegistrationHandler
	Notification *NotificationHandler
	Feedback     *FeedbackHandler
	Catalog      *CatalogHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, auth *middleware.DualAuthMiddleware, trainers middleware.TrainerProvider, rl *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")

	authenticated := auth.Authenticate()
	self := middleware.RequireSelf("userId")
	ownTrainer := middleware.RequireTrainer("trainerId", trainers)
	limited := middleware.RateLimitMiddleware(rl)

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("/register", h.Account.Register)
	accounts.POST("/login", h.Account.Login)
	accounts.POST("/logout", h.Account.Logout, authenticated)
	accounts.GET("/me", h.Account.Me, authenticated)
	accounts.GET("", h.Account.List, authenticated)
	accounts.GET("/:userId", h.Account.Get, authenticated)

	// Workout routes (browsing is public)
	workouts := api.Group("/workouts")
	workouts.GET("", h.Workout.List)
	workouts.GET("/:workoutId", h.Workout.Get)
	workouts.GET("/trainer/:trainerId", h.Workout.ListByTrainer)
	workouts.GET("/daily/:userId", h.Workout.Daily, authenticated, self)
	workouts.POST("", h.Workout.Create, authenticated, ownTrainer)
	workouts.DELETE("/:workoutId/trainer/:trainerId", h.Workout.Delete, authenticated, ownTrainer)
	workouts.GET("/:workoutId/registrations/trainer/:trainerId", h.Registration.Roster, authenticated, ownTrainer)

	// Registration routes (protected)
	registrations := api.Group("/registrations")
	registrations.Use(authenticated)
	registrations.POST("", h.Registration.Register, self, limited)
	registrations.GET("/user/:userId", h.Registration.ListUserRegistrations, self)
	registrations.DELETE("/:registrationId/user/:userId", h.Registration.Cancel, self, limited)
	registrations.DELETE("/workout/:workoutId/trainer/:trainerId/user/:userId", h.Registration.RemoveParticipant, ownTrainer)

	// Notification routes (protected)
	notifications := api.Group("/notifications")
	notifications.Use(authenticated, self)
	notifications.GET("/:userId", h.Notification.List)
	notifications.PATCH("/:notificationId/read", h.Notification.MarkRead)
	notifications.DELETE("/:notificationId", h.Notification.Delete)

	// Comment routes
	comments := api.Group("/comments")
	comments.GET("/workout/:workoutId", h.Feedback.ListComments)
	comments.POST("", h.Feedback.CreateComment, authenticated)
	comments.DELETE("/:commentId/user/:userId", h.Feedback.DeleteComment, authenticated, self)

	// Review routes
	reviews := api.Group("/reviews")
	reviews.GET("", h.Feedback.ListAllReviews)
	reviews.GET("/trainer/:trainerId", h.Feedback.ListReviews)
	reviews.GET("/user/:userId", h.Feedback.ListUserReviews)
	reviews.POST("", h.Feedback.CreateReview, authenticated)

	// Catalog routes (public, including trainer sign-up)
	api.GET("/trainers", h.Catalog.ListTrainers)
	api.POST("/trainers", h.Account.RegisterTrainer)
	api.GET("/trainers/:trainerId", h.Catalog.GetTrainer)
	api.GET("/gyms", h.Catalog.ListGyms)
	api.GET("/gyms/:gymId", h.Catalog.GetGym)
	api.GET("/skills", h.Catalog.ListSkills)

	// WebSocket authenticates through its own ?token= handshake
	e.GET("/ws", h.WebSocket.HandleWS)
}
