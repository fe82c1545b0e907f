package handler

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/usecase"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
)

type AuthHandler struct {
	sessionUseCase *usecase.SessionUseCase
	verifier       middleware.TokenVerifier
}

func NewAuthHandler(sessionUseCase *usecase.SessionUseCase, verifier middleware.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		sessionUseCase: sessionUseCase,
		verifier:       verifier,
	}
}

type loginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	profile, err := h.sessionUseCase.Register(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

// Login exchanges a Firebase ID token for a server-side session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, err := h.verifier.VerifyToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	profile, err := h.sessionUseCase.Login(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessionUseCase.Logout(c.Request().Context(), middleware.UID(c))

	return response.Success(c, map[string]string{
		"message": "Logged out successfully",
	})
}
