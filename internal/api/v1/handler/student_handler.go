package handler

import (
	"encoding/json"
	"net/http"

	"pathshala/internal/api/v1/dto"
	"pathshala/internal/service"

	"github.com/go-playground/validator/v10"
)

// StudentHandler handles the student profile surface
type StudentHandler struct {
	studentService service.StudentService
	validate       *validator.Validate
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService service.StudentService, validate *validator.Validate) *StudentHandler {
	return &StudentHandler{studentService: studentService, validate: validate}
}

// RegisterRoutes mounts profile routes
func (h *StudentHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/me", authMw(http.HandlerFunc(h.getProfile)))
	mux.Handle("/me/courses", authMw(http.HandlerFunc(h.myCourses)))
	mux.Handle("/me/avatar", authMw(http.HandlerFunc(h.uploadAvatar)))
}

// getProfile godoc
// @Summary Get my profile
// @Tags students
// @Produce json
// @Success 200 {object} model.Student
// @Failure 404 {string} string "Student not found"
// @Router /me [get]
func (h *StudentHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	student, err := h.studentService.GetProfile(r.Context(), studentID)
	if err != nil {
		if err == service.ErrStudentNotFound {
			http.Error(w, "Student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve profile: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// myCourses godoc
// @Summary List my courses
// @Description Lists the courses behind the student's approved enrollments.
// @Tags students
// @Produce json
// @Success 200 {array} model.Course
// @Router /me/courses [get]
func (h *StudentHandler) myCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	courses, err := h.studentService.MyCourses(r.Context(), studentID)
	if err != nil {
		http.Error(w, "Failed to list courses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// uploadAvatar godoc
// @Summary Upload a profile photo
// @Description Returns a presigned PUT URL for the photo and records the resulting public URL.
// @Tags students
// @Accept json
// @Produce json
// @Param avatar body dto.AvatarUploadDTO true "Upload request"
// @Success 200 {object} dto.AvatarUploadResponseDTO
// @Router /me/avatar [post]
func (h *StudentHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	studentID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.AvatarUploadDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	uploadURL, photoURL, err := h.studentService.InitiateAvatarUpload(r.Context(), studentID, req.Filename)
	if err != nil {
		if err == service.ErrStudentNotFound {
			http.Error(w, "Student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to initiate upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.AvatarUploadResponseDTO{
		UploadURL: uploadURL,
		PhotoURL:  photoURL,
	})
}
