package handler

import (
	"github.com/labstack/echo/v4"

	"petadopt/internal/adapter/api/middleware"
	"petadopt/internal/usecase"
	"petadopt/pkg/errors"
	"petadopt/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

func (h *ChatHandler) GetSummaries(c echo.Context) error {
	summaries, err := h.chatUseCase.GetSummaries(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summaries)
}

// GetMessages returns every message of every conversation of the user, newest first.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) GetView(c echo.Context) error {
	view, err := h.chatUseCase.GetView(
		c.Request().Context(),
		middleware.UID(c),
		c.QueryParam("conversation_id"),
		c.QueryParam("peer_id"),
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, view)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req usecase.SendInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	result, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.UID(c), req)
	if err != nil {
		return response.Error(c, err)
	}
	if result == nil {
		return response.Error(c, errors.BadRequest("Message text is empty", nil))
	}

	if result.Created {
		return response.Created(c, result)
	}
	return response.Success(c, result)
}
