package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"pathshala/internal/api/v1/dto"
	"pathshala/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ChatHandler handles live-class chat. Class-scoped routes are delegated from
// ClassHandler; the push endpoint is mounted behind the Pub/Sub auth
// middleware.
type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService service.ChatService, validate *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, validate: validate, logger: logger}
}

// RegisterPushRoute mounts the Pub/Sub push endpoint
func (h *ChatHandler) RegisterPushRoute(mux *http.ServeMux, pushMw func(http.Handler) http.Handler) {
	mux.Handle("/pubsub/chat", pushMw(http.HandlerFunc(h.handlePush)))
}

func (h *ChatHandler) handleClassMessages(w http.ResponseWriter, r *http.Request, classID string) {
	switch r.Method {
	case http.MethodGet:
		h.listMessages(w, r, classID)
	case http.MethodPost:
		h.postMessage(w, r, classID)
	default:
		http.NotFound(w, r)
	}
}

// postMessage godoc
// @Summary Post a chat message
// @Description Publishes a chat message for an enrolled class. Delivery is asynchronous; clients poll the message list.
// @Tags chat
// @Accept json
// @Produce json
// @Param classId path string true "Class ID"
// @Param message body dto.MessagePostDTO true "Message"
// @Success 202 {object} dto.MessagePostResponseDTO
// @Failure 403 {string} string "Not enrolled"
// @Failure 404 {string} string "Class not found"
// @Router /classes/{classId}/messages [post]
func (h *ChatHandler) postMessage(w http.ResponseWriter, r *http.Request, classID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.MessagePostDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	msgID, err := h.chatService.PostMessage(r.Context(), studentID, classID, req.Content)
	if err != nil {
		h.writeChatError(w, err, "Failed to post message")
		return
	}
	writeJSON(w, http.StatusAccepted, dto.MessagePostResponseDTO{MessageID: msgID})
}

// listMessages godoc
// @Summary List chat messages
// @Description Returns recent messages of an enrolled class, newest first.
// @Tags chat
// @Produce json
// @Param classId path string true "Class ID"
// @Param limit query int false "Maximum messages to return"
// @Success 200 {array} model.Message
// @Failure 403 {string} string "Not enrolled"
// @Router /classes/{classId}/messages [get]
func (h *ChatHandler) listMessages(w http.ResponseWriter, r *http.Request, classID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	messages, err := h.chatService.ListMessages(r.Context(), studentID, classID, limit)
	if err != nil {
		h.writeChatError(w, err, "Failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// handlePush receives a pushed Pub/Sub message and persists the chat message.
// Non-2xx responses make Pub/Sub redeliver, so payload errors are acked.
func (h *ChatHandler) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var envelope dto.PushEnvelopeDTO
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.logger.Error().Err(err).Msg("Invalid push envelope; acking")
		w.WriteHeader(http.StatusOK)
		return
	}

	message, err := h.chatService.HandleIncoming(r.Context(), envelope.Message.Data)
	if err != nil {
		h.logger.Error().Err(err).Str("pubsub_message_id", envelope.Message.MessageID).Msg("Failed to persist chat message")
		http.Error(w, "Failed to persist message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, message)
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case service.ErrClassNotFound:
		http.Error(w, "Class not found", http.StatusNotFound)
	case service.ErrNotEnrolled:
		http.Error(w, "Not enrolled in this course", http.StatusForbidden)
	default:
		http.Error(w, fallback+": "+err.Error(), http.StatusInternalServerError)
	}
}
