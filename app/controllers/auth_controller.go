// Package controllers translates HTTP requests into service calls and
// renders the JSON envelope responses.
package controllers

import (
	"errors"
	"net/http"

	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/pkg/bind"
	"github.com/coldcutclub/storefront/pkg/middleware"
	"github.com/coldcutclub/storefront/pkg/response"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register handles POST /api/auth/register.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.auth.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.Error(w, http.StatusConflict, "That email is already registered")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not create account")
		return
	}
	response.Created(w, result)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	result, err := c.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not log in")
		return
	}
	response.Success(w, result)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so there is
// nothing to revoke server side; the client drops its copy.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"message": "Logged out"})
}

// Me handles GET /api/me.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	user, err := c.auth.Profile(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "Account not found")
		return
	}
	response.Success(w, user)
}

type profileRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

// UpdateProfile handles PUT /api/me.
func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in profileRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.auth.UpdateProfile(r.Context(), userID, in.Name, in.Phone, in.Address)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not update profile")
		return
	}
	response.Success(w, user)
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword handles POST /api/auth/forgot-password. It always
// responds 200 so callers cannot discover which emails exist.
func (c *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	if err := c.auth.RequestPasswordReset(r.Context(), in.Email); err != nil {
		response.Error(w, http.StatusInternalServerError, "Could not start password reset")
		return
	}
	response.Success(w, map[string]string{"message": "If that email exists, a reset token is on its way"})
}

type resetRequest struct {
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,confirmed"`
}

// ResetPassword handles POST /api/auth/reset-password.
func (c *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	if err := c.auth.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			response.Error(w, http.StatusUnprocessableEntity, "Invalid or expired reset token")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Could not reset password")
		return
	}
	response.Success(w, map[string]string{"message": "Password updated"})
}
