package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/usecase"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
)

type WatchlistHandler struct {
	watchlistUseCase *usecase.WatchlistUseCase
}

func NewWatchlistHandler(watchlistUseCase *usecase.WatchlistUseCase) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistUseCase: watchlistUseCase,
	}
}

func (h *WatchlistHandler) GetWatchlist(c echo.Context) error {
	view, err := h.watchlistUseCase.GetWatchlist(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, view)
}

func (h *WatchlistHandler) Toggle(c echo.Context) error {
	animalID := strings.TrimSpace(c.Param("animalId"))
	if animalID == "" {
		return response.Error(c, errors.BadRequest("Animal ID is required", nil))
	}

	result, err := h.watchlistUseCase.Toggle(c.Request().Context(), middleware.UID(c), animalID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
