package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"pathshala/internal/api/v1/dto"
	"pathshala/internal/model"
	"pathshala/internal/service"

	"github.com/go-playground/validator/v10"
)

// ClassHandler handles class session endpoints. Chat routes for a class are
// delegated to the ChatHandler.
type ClassHandler struct {
	classService service.ClassService
	chatHandler  *ChatHandler
	validate     *validator.Validate
}

// NewClassHandler creates a new ClassHandler
func NewClassHandler(classService service.ClassService, chatHandler *ChatHandler, validate *validator.Validate) *ClassHandler {
	return &ClassHandler{classService: classService, chatHandler: chatHandler, validate: validate}
}

// RegisterRoutes mounts class routes
func (h *ClassHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/classes", authMw(http.HandlerFunc(h.handleCollection)))
	mux.Handle("/classes/", authMw(http.HandlerFunc(h.handleClass)))
}

func (h *ClassHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMine(w, r)
	case http.MethodPost:
		h.createClass(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ClassHandler) handleClass(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/classes/"), "/")
	classID := parts[0]
	if classID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && parts[0] == "live" && r.Method == http.MethodGet:
		h.listLiveMine(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getClass(w, r, classID)
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateClass(w, r, classID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.deleteClass(w, r, classID)
	case len(parts) == 2 && parts[1] == "live" && r.Method == http.MethodPost:
		h.setLive(w, r, classID)
	case len(parts) == 2 && parts[1] == "messages":
		h.chatHandler.handleClassMessages(w, r, classID)
	default:
		http.NotFound(w, r)
	}
}

// createClass godoc
// @Summary Create a class
// @Description Creates a live or recorded class for a course. Staff only.
// @Tags classes
// @Accept json
// @Produce json
// @Param class body dto.ClassCreateDTO true "Class creation request"
// @Success 201 {object} model.Class
// @Failure 404 {string} string "Course not found"
// @Router /classes [post]
func (h *ClassHandler) createClass(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.ClassCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	class := &model.Class{
		Title:        req.Title,
		Subject:      req.Subject,
		ImageURL:     req.ImageURL,
		InstructorID: req.InstructorID,
		CourseID:     req.CourseID,
		CourseType:   req.CourseType,
		BillingType:  req.BillingType,
		Type:         req.Type,
		VideoLink:    req.VideoLink,
		StartTime:    req.StartTime,
	}
	created, err := h.classService.CreateClass(r.Context(), class)
	if err != nil {
		h.writeClassError(w, err, "Failed to create class")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listMine godoc
// @Summary List my classes
// @Description Lists classes of the student's approved-enrollment courses.
// @Tags classes
// @Produce json
// @Success 200 {array} model.Class
// @Router /classes [get]
func (h *ClassHandler) listMine(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	classes, err := h.classService.ListMine(r.Context(), studentID)
	if err != nil {
		http.Error(w, "Failed to list classes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// listLiveMine godoc
// @Summary List my active live classes
// @Tags classes
// @Produce json
// @Success 200 {array} model.Class
// @Router /classes/live [get]
func (h *ClassHandler) listLiveMine(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	classes, err := h.classService.ListLiveMine(r.Context(), studentID)
	if err != nil {
		http.Error(w, "Failed to list live classes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// getClass godoc
// @Summary Get a class
// @Description Returns the class when the student is enrolled in its course.
// @Tags classes
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} model.Class
// @Failure 403 {string} string "Not enrolled"
// @Failure 404 {string} string "Class not found"
// @Router /classes/{classId} [get]
func (h *ClassHandler) getClass(w http.ResponseWriter, r *http.Request, classID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	class, err := h.classService.GetClass(r.Context(), studentID, classID)
	if err != nil {
		h.writeClassError(w, err, "Failed to retrieve class")
		return
	}
	writeJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) updateClass(w http.ResponseWriter, r *http.Request, classID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.ClassUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	class, err := h.classService.GetClassForUpdate(r.Context(), classID)
	if err != nil {
		h.writeClassError(w, err, "Failed to retrieve class")
		return
	}
	if req.Title != nil {
		class.Title = *req.Title
	}
	if req.Subject != nil {
		class.Subject = *req.Subject
	}
	if req.ImageURL != nil {
		class.ImageURL = *req.ImageURL
	}
	if req.InstructorID != nil {
		class.InstructorID = *req.InstructorID
	}
	if req.CourseType != nil {
		class.CourseType = *req.CourseType
	}
	if req.BillingType != nil {
		class.BillingType = *req.BillingType
	}
	if req.VideoLink != nil {
		class.VideoLink = *req.VideoLink
	}
	if req.StartTime != nil {
		class.StartTime = req.StartTime
	}

	updated, err := h.classService.UpdateClass(r.Context(), class)
	if err != nil {
		h.writeClassError(w, err, "Failed to update class")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ClassHandler) deleteClass(w http.ResponseWriter, r *http.Request, classID string) {
	if !requireStaff(w, r) {
		return
	}
	if err := h.classService.DeleteClass(r.Context(), classID); err != nil {
		h.writeClassError(w, err, "Failed to delete class")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setLive godoc
// @Summary Toggle a live class
// @Description Marks a live-type class as started or ended. Staff only.
// @Tags classes
// @Accept json
// @Param classId path string true "Class ID"
// @Param live body dto.ClassLiveDTO true "Live toggle"
// @Success 204 {string} string "No Content"
// @Router /classes/{classId}/live [post]
func (h *ClassHandler) setLive(w http.ResponseWriter, r *http.Request, classID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.ClassLiveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.classService.SetLive(r.Context(), classID, req.Active); err != nil {
		h.writeClassError(w, err, "Failed to toggle live flag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClassHandler) writeClassError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case service.ErrClassNotFound:
		http.Error(w, "Class not found", http.StatusNotFound)
	case service.ErrCourseNotFound:
		http.Error(w, "Course not found", http.StatusNotFound)
	case service.ErrNotEnrolled:
		http.Error(w, "Not enrolled in this course", http.StatusForbidden)
	default:
		http.Error(w, fallback+": "+err.Error(), http.StatusInternalServerError)
	}
}
