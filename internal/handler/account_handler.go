package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles sign-up, login and the current user
type AccountHandler struct {
	authService *service.AuthService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(authService *service.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// RegisterAccountRequest represents the sign-up request body
type RegisterAccountRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// RegisterTrainerRequest represents the trainer sign-up request body
type RegisterTrainerRequest struct {
	User            TrainerUserRequest `json:"user"`
	Description     string             `json:"description"`
	ExperienceYears int32              `json:"experienceYears"`
	SkillIDs        []int32            `json:"skillIds"`
}

// TrainerUserRequest is the account part of a trainer sign-up
type TrainerUserRequest struct {
	RegisterAccountRequest
	Avatar *string `json:"avatar"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID               int32   `json:"userId"`
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	PhoneNumber      string  `json:"phoneNumber"`
	Avatar           *string `json:"avatar,omitempty"`
	RegistrationDate string  `json:"registrationDate"`
}

// TrainerResponse represents a trainer in API responses
type TrainerResponse struct {
	ID              int32          `json:"trainerId"`
	UserID          int32          `json:"userId"`
	FullName        string         `json:"fullName"`
	Avatar          *string        `json:"avatar,omitempty"`
	Description     string         `json:"description"`
	ExperienceYears int32          `json:"experienceYears"`
	Skills          []domain.Skill `json:"skills"`
	AverageRating   *string        `json:"averageRating,omitempty"`
	ReviewCount     *int32         `json:"reviewCount,omitempty"`
}

// AccountResponse is the current user with their trainer record, if any
type AccountResponse struct {
	User      UserResponse     `json:"user"`
	IsTrainer bool             `json:"isTrainer"`
	Trainer   *TrainerResponse `json:"trainer,omitempty"`
}

// LoginResponse carries the session token, shown only once
type LoginResponse struct {
	AccountResponse
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		return signupFailure(c, err)
	}

	return c.JSON(http.StatusCreated, AccountResponse{User: toUserResponse(user)})
}

// RegisterTrainer handles POST /api/v1/trainers
func (h *AccountHandler) RegisterTrainer(c echo.Context) error {
	var req RegisterTrainerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.RegisterTrainer(c.Request().Context(), service.TrainerSignupInput{
		Account: service.RegisterInput{
			FullName:    req.User.FullName,
			Email:       req.User.Email,
			PhoneNumber: req.User.PhoneNumber,
			Password:    req.User.Password,
		},
		Avatar:          req.User.Avatar,
		Description:     req.Description,
		ExperienceYears: req.ExperienceYears,
		SkillIDs:        req.SkillIDs,
	})
	if err != nil {
		return signupFailure(c, err)
	}

	return c.JSON(http.StatusCreated, LoginResponse{
		AccountResponse: toAccountResponse(result.User, result.Trainer),
		Token:           result.Token,
		ExpiresAt:       result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// signupFailure maps account and trainer sign-up errors to problem responses
func signupFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "fullName", Message: "Full name is required"}})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "fullName", Message: "Full name must be 255 characters or less"}})
	case errors.Is(err, domain.ErrEmailRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "email", Message: "Email is required"}})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "email", Message: "Email is not valid"}})
	case errors.Is(err, domain.ErrPasswordRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "password", Message: "Password is required"}})
	case errors.Is(err, service.ErrPasswordTooShort):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, domain.ErrInvalidExperience):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "experienceYears", Message: "Experience years must not be negative"}})
	case errors.Is(err, domain.ErrEmailTaken):
		return NewConflictError(c, "An account with this email already exists")
	}
	log.Error().Err(err).Msg("Failed to register account")
	return NewInternalError(c, "Failed to register account")
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Email == "" || req.Password == "" {
		return NewValidationError(c, "Email and password are required", nil)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Failed to log in")
		return NewInternalError(c, "Failed to log in")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		AccountResponse: toAccountResponse(result.User, result.Trainer),
		Token:           result.Token,
		ExpiresAt:       result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST /api/v1/accounts/logout
func (h *AccountHandler) Logout(c echo.Context) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer "))
	if !service.IsSessionToken(token) {
		return NewValidationError(c, "Only session tokens can be logged out", nil)
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		log.Error().Err(err).Int32("user_id", middleware.GetUserID(c)).Msg("Failed to log out")
		return NewInternalError(c, "Failed to log out")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/v1/accounts/me
func (h *AccountHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to get user")
		return NewInternalError(c, "Failed to get user")
	}

	trainer, err := h.authService.GetTrainerProfile(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to get trainer profile")
		return NewInternalError(c, "Failed to get user")
	}

	return c.JSON(http.StatusOK, toAccountResponse(user, trainer))
}

// List handles GET /api/v1/accounts
func (h *AccountHandler) List(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list accounts")
		return NewInternalError(c, "Failed to list accounts")
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/accounts/:userId
func (h *AccountHandler) Get(c echo.Context) error {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func toAccountResponse(user *domain.User, trainer *domain.Trainer) AccountResponse {
	resp := AccountResponse{User: toUserResponse(user)}
	if trainer != nil {
		t := toTrainerResponse(trainer)
		resp.IsTrainer = true
		resp.Trainer = &t
	}
	return resp
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		FullName:         user.FullName,
		Email:            user.Email,
		PhoneNumber:      user.PhoneNumber,
		Avatar:           user.Avatar,
		RegistrationDate: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTrainerResponse(t *domain.Trainer) TrainerResponse {
	skills := t.Skills
	if skills == nil {
		skills = []domain.Skill{}
	}
	return TrainerResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		FullName:        t.FullName,
		Avatar:          t.Avatar,
		Description:     t.Description,
		ExperienceYears: t.ExperienceYears,
		Skills:          skills,
	}
}
