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

// EnrollmentHandler handles enrollment endpoints
type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	validate          *validator.Validate
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(enrollmentService service.EnrollmentService, validate *validator.Validate) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService, validate: validate}
}

// RegisterRoutes mounts enrollment routes
func (h *EnrollmentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/enrollments", authMw(http.HandlerFunc(h.handleCollection)))
	mux.Handle("/enrollments/", authMw(http.HandlerFunc(h.handleEnrollment)))
}

func (h *EnrollmentHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if courseID := r.URL.Query().Get("course_id"); courseID != "" {
			h.getSynchronizedByCourse(w, r, courseID)
			return
		}
		h.listMine(w, r)
	case http.MethodPost:
		h.purchase(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *EnrollmentHandler) handleEnrollment(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/enrollments/"), "/")
	if parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && parts[0] == "pending" && r.Method == http.MethodGet:
		h.listPending(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getSynchronized(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "approve" && r.Method == http.MethodPost:
		h.approve(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "reject" && r.Method == http.MethodPost:
		h.reject(w, r, parts[0])
	case len(parts) == 5 && parts[1] == "lessons" && parts[3] == "contents" && r.Method == http.MethodGet:
		h.getContent(w, r, parts[0], parts[2], parts[4])
	default:
		http.NotFound(w, r)
	}
}

// purchase godoc
// @Summary Purchase a course
// @Description Registers the authenticated student for a course. Paid courses stay pending until payment verification.
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body dto.EnrollmentPurchaseDTO true "Purchase request"
// @Success 201 {object} model.Enrollment
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 404 {string} string "Course not found"
// @Failure 409 {string} string "Already enrolled"
// @Router /enrollments [post]
func (h *EnrollmentHandler) purchase(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.EnrollmentPurchaseDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	enrollment := &model.Enrollment{
		CourseID:      req.CourseID,
		StudentID:     studentID,
		TransactionID: req.TransactionID,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
	}
	created, err := h.enrollmentService.Purchase(r.Context(), enrollment)
	if err != nil {
		switch err {
		case service.ErrStudentNotFound:
			http.Error(w, "Student not found", http.StatusNotFound)
		case service.ErrCourseNotFound:
			http.Error(w, "Course not found", http.StatusNotFound)
		case service.ErrAlreadyEnrolled:
			http.Error(w, "Already enrolled in this course", http.StatusConflict)
		default:
			http.Error(w, "Failed to create enrollment: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// listMine godoc
// @Summary List my enrollments
// @Description Lists the authenticated student's enrollments. With course_id set, returns the synchronized enrollment for that course instead.
// @Tags enrollments
// @Produce json
// @Param course_id query string false "Return the synchronized enrollment for this course"
// @Success 200 {array} model.Enrollment
// @Router /enrollments [get]
func (h *EnrollmentHandler) listMine(w http.ResponseWriter, r *http.Request) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.ListMine(r.Context(), studentID)
	if err != nil {
		http.Error(w, "Failed to list enrollments: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// getSynchronized godoc
// @Summary Get a synchronized enrollment
// @Description Returns the enrollment with its progress snapshot reconciled against the current course definition.
// @Tags enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} dto.EnrollmentSyncResponseDTO
// @Failure 404 {string} string "Enrollment not found"
// @Router /enrollments/{enrollmentId} [get]
func (h *EnrollmentHandler) getSynchronized(w http.ResponseWriter, r *http.Request, enrollmentID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollment, synchronized, err := h.enrollmentService.GetSynchronized(r.Context(), studentID, enrollmentID)
	if err != nil {
		h.writeEnrollmentError(w, err, "Failed to retrieve enrollment")
		return
	}
	writeJSON(w, http.StatusOK, dto.EnrollmentSyncResponseDTO{
		Enrollment:   enrollment,
		Synchronized: synchronized,
	})
}

func (h *EnrollmentHandler) getSynchronizedByCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	enrollment, synchronized, err := h.enrollmentService.GetSynchronizedByCourse(r.Context(), studentID, courseID)
	if err != nil {
		h.writeEnrollmentError(w, err, "Failed to retrieve enrollment")
		return
	}
	writeJSON(w, http.StatusOK, dto.EnrollmentSyncResponseDTO{
		Enrollment:   enrollment,
		Synchronized: synchronized,
	})
}

// getContent godoc
// @Summary Get one content item of an enrollment
// @Description Returns a single synchronized content item with the student's progress status.
// @Tags enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Param lessonId path string true "Lesson ID"
// @Param contentId path string true "Content ID"
// @Success 200 {object} model.ContentProgress
// @Failure 404 {string} string "Enrollment, lesson or content not found"
// @Router /enrollments/{enrollmentId}/lessons/{lessonId}/contents/{contentId} [get]
func (h *EnrollmentHandler) getContent(w http.ResponseWriter, r *http.Request, enrollmentID, lessonID, contentID string) {
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	content, err := h.enrollmentService.GetContent(r.Context(), studentID, enrollmentID, lessonID, contentID)
	if err != nil {
		h.writeEnrollmentError(w, err, "Failed to retrieve content")
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// listPending godoc
// @Summary List pending enrollments
// @Description Lists enrollments awaiting payment verification. Staff only.
// @Tags enrollments
// @Produce json
// @Success 200 {array} model.Enrollment
// @Router /enrollments/pending [get]
func (h *EnrollmentHandler) listPending(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	enrollments, err := h.enrollmentService.ListPending(r.Context())
	if err != nil {
		http.Error(w, "Failed to list pending enrollments: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// approve godoc
// @Summary Verify a payment
// @Description Approves a pending enrollment after payment verification. Staff only.
// @Tags enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} model.Enrollment
// @Failure 404 {string} string "Enrollment not found"
// @Failure 409 {string} string "Enrollment is not pending"
// @Router /enrollments/{enrollmentId}/approve [post]
func (h *EnrollmentHandler) approve(w http.ResponseWriter, r *http.Request, enrollmentID string) {
	if !requireStaff(w, r) {
		return
	}
	enrollment, err := h.enrollmentService.Approve(r.Context(), enrollmentID)
	if err != nil {
		h.writeEnrollmentError(w, err, "Failed to approve enrollment")
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

// reject godoc
// @Summary Reject a pending enrollment
// @Tags enrollments
// @Param enrollmentId path string true "Enrollment ID"
// @Success 204 {string} string "No Content"
// @Failure 409 {string} string "Enrollment is not pending"
// @Router /enrollments/{enrollmentId}/reject [post]
func (h *EnrollmentHandler) reject(w http.ResponseWriter, r *http.Request, enrollmentID string) {
	if !requireStaff(w, r) {
		return
	}
	if err := h.enrollmentService.Reject(r.Context(), enrollmentID); err != nil {
		h.writeEnrollmentError(w, err, "Failed to reject enrollment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EnrollmentHandler) writeEnrollmentError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case service.ErrStudentNotFound:
		http.Error(w, "Student not found", http.StatusNotFound)
	case service.ErrEnrollmentNotFound:
		http.Error(w, "Enrollment not found", http.StatusNotFound)
	case service.ErrCourseNotFound:
		http.Error(w, "Course not found", http.StatusNotFound)
	case service.ErrLessonNotFound:
		http.Error(w, "Lesson not found", http.StatusNotFound)
	case service.ErrContentNotFound:
		http.Error(w, "Content not found", http.StatusNotFound)
	case service.ErrNotPending:
		http.Error(w, "Enrollment is not pending", http.StatusConflict)
	default:
		http.Error(w, fallback+": "+err.Error(), http.StatusInternalServerError)
	}
}
