package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"wanderpush/internal/notification"
	"wanderpush/internal/push"
	"wanderpush/internal/tokens"
)

type NotificationHandler struct {
	dispatcher *notification.Dispatcher
	gateway    *push.Gateway
	registry   tokens.Registry
	validate   *validator.Validate
}

func NewNotificationHandler(dispatcher *notification.Dispatcher, gateway *push.Gateway, registry tokens.Registry) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		gateway:    gateway,
		registry:   registry,
		validate:   validator.New(),
	}
}

type CreateNotificationRequest struct {
	UserID       string                 `json:"user_id" validate:"required"`
	Kind         string                 `json:"kind" validate:"required"`
	Title        string                 `json:"title" validate:"required"`
	Body         string                 `json:"body" validate:"required"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Priority     string                 `json:"priority,omitempty"`
	ScheduledFor *time.Time             `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time             `json:"expires_at,omitempty"`
}

func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	n, err := h.dispatcher.CreateNotification(c.Request().Context(), &notification.Request{
		UserID:       req.UserID,
		Kind:         notification.Kind(req.Kind),
		Title:        req.Title,
		Body:         req.Body,
		Data:         req.Data,
		Priority:     notification.Priority(req.Priority),
		ScheduledFor: req.ScheduledFor,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, n)
}

type CreateFromTemplateRequest struct {
	UserID       string                 `json:"user_id" validate:"required"`
	Kind         string                 `json:"kind" validate:"required"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Priority     string                 `json:"priority,omitempty"`
	ScheduledFor *time.Time             `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time             `json:"expires_at,omitempty"`
}

func (h *NotificationHandler) CreateFromTemplate(c echo.Context) error {
	var req CreateFromTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	opts := &notification.TemplateOptions{
		Priority:     notification.Priority(req.Priority),
		ScheduledFor: req.ScheduledFor,
		ExpiresAt:    req.ExpiresAt,
	}
	n, err := h.dispatcher.CreateFromTemplate(c.Request().Context(),
		notification.Kind(req.Kind), req.UserID, req.Data, opts)
	if errors.Is(err, notification.ErrTemplateNotFound) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No template configured for kind"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create notification"})
	}

	return c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) GetUserNotifications(c echo.Context) error {
	userID := c.Param("id")
	list, err := h.dispatcher.GetUserNotifications(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list notifications"})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) GetStats(c echo.Context) error {
	stats, err := h.dispatcher.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to compute stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

type RegisterTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *NotificationHandler) RegisterToken(c echo.Context) error {
	userID := c.Param("id")
	var req RegisterTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Token is required"})
	}

	if err := h.registry.Register(c.Request().Context(), userID, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register token"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Token registered"})
}

func (h *NotificationHandler) UnregisterToken(c echo.Context) error {
	userID := c.Param("id")
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Token is required"})
	}

	if err := h.registry.Unregister(c.Request().Context(), userID, token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unregister token"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Token unregistered"})
}

// TokenCleanup triggers the maintenance validation pass on demand; the same
// work runs daily from the worker.
func (h *NotificationHandler) TokenCleanup(c echo.Context) error {
	if err := h.gateway.CleanupInvalidTokens(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Token cleanup failed"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Token cleanup complete"})
}

func (h *NotificationHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
