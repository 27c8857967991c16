// VillageVitals | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/villagevitals/backend/internal/core"
	"github.com/villagevitals/backend/internal/middleware"
)

type Handler struct {
	service      *Service
	validator    *validator.Validate
	cookieMaxAge time.Duration
	cookieSecure bool
}

func NewHandler(
	service *Service,
	tokenExpire time.Duration,
	production bool,
) *Handler {
	return &Handler{
		service:      service,
		validator:    validator.New(validator.WithRequiredStructEnabled()),
		cookieMaxAge: tokenExpire,
		cookieSecure: production,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/resend-otp", h.ResendOTP)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Put("/update-profile", h.UpdateProfile)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.GetMe)
		})
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			core.JSONError(w, core.ConflictError(
				"An account with this email already exists"))
		case errors.Is(err, ErrPhoneExists):
			core.JSONError(w, core.ConflictError(
				"An account with this phone number already exists"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, SignupResponse{
		Message: "Account created successfully. Please check your email for the OTP verification code.",
		UserID:  user.ID,
		Email:   user.Email,
	})
}

func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NotFoundError("User not found"))
		case errors.Is(err, ErrAlreadyVerified):
			core.JSONError(w, core.ValidationError(
				"Account is already verified"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, MessageResponse{
		Message: "A new OTP code has been sent to your email.",
	})
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidOTP):
			core.JSONError(w, core.ValidationError(
				"Invalid or expired OTP code"))
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NotFoundError("User not found"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, UserEnvelope{
		Message: "Account verified successfully",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.JSONError(w, core.UnauthorizedError("Invalid credentials"))
		case errors.Is(err, ErrNotVerified):
			core.JSONError(w, core.UnauthorizedError(
				"Please verify your account first. Check your email for the OTP code."))
		case errors.Is(err, ErrRoleMismatch):
			core.JSONError(w, core.UnauthorizedError("Invalid role selected"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.setSessionCookie(w, token)

	core.OK(w, UserEnvelope{
		Message: "Login successful",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateProfile(
		r.Context(),
		claims.UserID,
		claims.Role,
		req,
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.JSONError(w, core.NotFoundError("User not found"))
		case errors.Is(err, ErrRoleElevation):
			core.JSONError(w, core.ForbiddenError(
				"Only administrators can assign the admin role"))
		case errors.Is(err, ErrPhoneExists):
			core.JSONError(w, core.ConflictError(
				"An account with this phone number already exists"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, UserEnvelope{
		Message: "Profile updated successfully",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	core.OK(w, MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("User not found"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UserEnvelope{
		Message: "OK",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
