package handler

import (
	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/domain/service"
	"petadopt/internal/infrastructure/websocket"
	"petadopt/internal/usecase"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Animal    *AnimalHandler
	Watchlist *WatchlistHandler
	Chat      *ChatHandler
	Media     *MediaHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

type Dependencies struct {
	Session        *usecase.SessionUseCase
	Catalog        *usecase.CatalogUseCase
	CatalogState   *usecase.CatalogSynchronizer
	Watchlist      *usecase.WatchlistUseCase
	Chat           *usecase.ChatUseCase
	Media          service.MediaUploadService
	Verifier       middleware.TokenVerifier
	WSManager      *websocket.Manager
	MaxUploadBytes int64
}

func Setup(deps Dependencies) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(deps.Session, deps.Verifier),
		Profile:   NewProfileHandler(deps.Session),
		Animal:    NewAnimalHandler(deps.Catalog),
		Watchlist: NewWatchlistHandler(deps.Watchlist),
		Chat:      NewChatHandler(deps.Chat),
		Media:     NewMediaHandler(deps.Media, deps.MaxUploadBytes),
		Health:    NewHealthHandler(deps.CatalogState, deps.Session),
		WebSocket: NewWebSocketHandler(deps.WSManager),
	}
}
