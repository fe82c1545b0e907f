package handler

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/usecase"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
	"petadopt/pkg/utils"
)

type AnimalHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewAnimalHandler(catalogUseCase *usecase.CatalogUseCase) *AnimalHandler {
	return &AnimalHandler{
		catalogUseCase: catalogUseCase,
	}
}

// ListAnimals serves the live catalog mirror; "loading" stays true until the first snapshot.
func (h *AnimalHandler) ListAnimals(c echo.Context) error {
	page := h.catalogUseCase.ListAnimals(utils.GetPaginationParams(c))
	return response.Success(c, page)
}

func (h *AnimalHandler) ListMine(c echo.Context) error {
	page := h.catalogUseCase.ListByCreator(middleware.UID(c), utils.GetPaginationParams(c))
	return response.Success(c, page)
}

func (h *AnimalHandler) GetAnimal(c echo.Context) error {
	animal, err := h.catalogUseCase.GetAnimal(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, animal)
}

func (h *AnimalHandler) CreateAnimal(c echo.Context) error {
	var req usecase.CreateAnimalInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	animal, err := h.catalogUseCase.CreateListing(c.Request().Context(), middleware.UID(c), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, animal)
}

func (h *AnimalHandler) UpdateAnimal(c echo.Context) error {
	var req usecase.UpdateAnimalInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	animal, err := h.catalogUseCase.UpdateListing(c.Request().Context(), middleware.UID(c), c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, animal)
}

func (h *AnimalHandler) DeleteAnimal(c echo.Context) error {
	id := c.Param("id")
	if err := h.catalogUseCase.DeleteListing(c.Request().Context(), middleware.UID(c), id); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Listing deleted successfully",
		"id":      id,
	})
}
