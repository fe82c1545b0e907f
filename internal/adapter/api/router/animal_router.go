package router

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/handler"
	"petadopt/internal/adapter/api/middleware"
)

func SetupAnimalRouter(e *echo.Echo, animalHandler *handler.AnimalHandler, authMiddleware *middleware.AuthMiddleware) {
	// Public routes
	e.GET("/v1/animals", animalHandler.ListAnimals)
	e.GET("/v1/animals/:id", animalHandler.GetAnimal)

	// Protected routes
	e.GET("/v1/animals/mine", animalHandler.ListMine, authMiddleware.Authenticate)
	e.POST("/v1/animals", animalHandler.CreateAnimal, authMiddleware.Authenticate)
	e.PUT("/v1/animals/:id", animalHandler.UpdateAnimal, authMiddleware.Authenticate)
	e.DELETE("/v1/animals/:id", animalHandler.DeleteAnimal, authMiddleware.Authenticate)
}
