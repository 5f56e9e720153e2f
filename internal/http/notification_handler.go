package http

import (
	"net/http"

	"github.com/aims/storefront/domain"
	"github.com/go-chi/chi/v5"
)

type NotificationSource interface {
	Active() []domain.Notification
	Dismiss(id string) bool
}

type NotificationHandler struct {
	sink NotificationSource
}

func NewNotificationHandler(sink NotificationSource) *NotificationHandler {
	return &NotificationHandler{sink: sink}
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	active := h.sink.Active()
	if active == nil {
		active = []domain.Notification{}
	}
	respondJSON(w, http.StatusOK, NotificationsResponse{Notifications: active})
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.sink.Dismiss(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "not_found", "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
