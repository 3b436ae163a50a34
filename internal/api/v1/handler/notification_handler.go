package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"pathshala/internal/api/v1/dto"
	"pathshala/internal/middleware"
	"pathshala/internal/model"
	"pathshala/internal/service"

	"github.com/go-playground/validator/v10"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notificationService service.NotificationService
	validate            *validator.Validate
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService service.NotificationService, validate *validator.Validate) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, validate: validate}
}

// RegisterRoutes mounts notification routes
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/notifications", authMw(http.HandlerFunc(h.handleCollection)))
	mux.Handle("/notifications/", authMw(http.HandlerFunc(h.handleNotification)))
}

func (h *NotificationHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMine(w, r)
	case http.MethodPost:
		h.send(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *NotificationHandler) handleNotification(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/notifications/"), "/")
	notificationID := parts[0]
	if notificationID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "read" && r.Method == http.MethodPost:
		h.markRead(w, r, notificationID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, r, notificationID)
	default:
		http.NotFound(w, r)
	}
}

// send godoc
// @Summary Send a notification
// @Description Sends an in-app notification to a platform user. Staff only.
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body dto.NotificationSendDTO true "Notification"
// @Success 201 {object} model.Notification
// @Router /notifications [post]
func (h *NotificationHandler) send(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	role, _ := r.Context().Value(middleware.RoleContextKey).(string)

	var req dto.NotificationSendDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	notification := &model.Notification{
		SentBy:     userID,
		SentByRole: role,
		SentTo:     req.SentTo,
		SentToRole: req.SentToRole,
		Message:    req.Message,
	}
	created, err := h.notificationService.Send(r.Context(), notification)
	if err != nil {
		http.Error(w, "Failed to send notification: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listMine godoc
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} model.Notification
// @Router /notifications [get]
func (h *NotificationHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	notifications, err := h.notificationService.ListMine(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list notifications: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// markRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Param notificationId path string true "Notification ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {string} string "Notification not found"
// @Router /notifications/{notificationId}/read [post]
func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		h.writeNotificationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// delete godoc
// @Summary Delete a notification
// @Description Hides the caller's copy of the notification. Staff callers hide the sender copy, students the recipient copy.
// @Tags notifications
// @Param notificationId path string true "Notification ID"
// @Success 204 {string} string "No Content"
// @Failure 404 {string} string "Notification not found"
// @Router /notifications/{notificationId} [delete]
func (h *NotificationHandler) delete(w http.ResponseWriter, r *http.Request, notificationID string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	role, _ := r.Context().Value(middleware.RoleContextKey).(string)

	var err error
	if role == model.RoleAdmin || role == model.RoleStaff {
		err = h.notificationService.DeleteAsSender(r.Context(), notificationID, userID)
	} else {
		err = h.notificationService.DeleteAsRecipient(r.Context(), notificationID, userID)
	}
	if err != nil {
		h.writeNotificationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) writeNotificationError(w http.ResponseWriter, err error) {
	if err == service.ErrNotificationNotFound {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Notification operation failed: "+err.Error(), http.StatusInternalServerError)
}
