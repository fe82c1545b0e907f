package handler

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/usecase"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
)

type ProfileHandler struct {
	sessionUseCase *usecase.SessionUseCase
}

func NewProfileHandler(sessionUseCase *usecase.SessionUseCase) *ProfileHandler {
	return &ProfileHandler{
		sessionUseCase: sessionUseCase,
	}
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.sessionUseCase.CurrentProfile(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req usecase.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	profile, err := h.sessionUseCase.UpdateProfile(c.Request().Context(), middleware.UID(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}
