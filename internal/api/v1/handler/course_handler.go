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

// CourseHandler handles catalog endpoints
type CourseHandler struct {
	courseService service.CourseService
	validate      *validator.Validate
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(courseService service.CourseService, validate *validator.Validate) *CourseHandler {
	return &CourseHandler{courseService: courseService, validate: validate}
}

// RegisterRoutes mounts catalog routes
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/courses", authMw(http.HandlerFunc(h.handleCollection)))
	mux.Handle("/courses/", authMw(http.HandlerFunc(h.handleCourse)))
}

func (h *CourseHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCourses(w, r)
	case http.MethodPost:
		h.createCourse(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *CourseHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/courses/"), "/")
	courseID := parts[0]
	if courseID == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getCourse(w, r, courseID)
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateCourse(w, r, courseID)
	case len(parts) == 2 && parts[1] == "lessons" && r.Method == http.MethodPost:
		h.addLesson(w, r, courseID)
	case len(parts) == 3 && parts[1] == "lessons" && r.Method == http.MethodPut:
		h.updateLesson(w, r, courseID, parts[2])
	case len(parts) == 3 && parts[1] == "lessons" && r.Method == http.MethodDelete:
		h.removeLesson(w, r, courseID, parts[2])
	case len(parts) == 4 && parts[1] == "lessons" && parts[3] == "contents" && r.Method == http.MethodPost:
		h.addContent(w, r, courseID, parts[2])
	case len(parts) == 5 && parts[1] == "lessons" && parts[3] == "contents" && r.Method == http.MethodDelete:
		h.removeContent(w, r, courseID, parts[2], parts[4])
	case len(parts) == 2 && parts[1] == "materials" && r.Method == http.MethodPost:
		h.attachMaterial(w, r, courseID)
	case len(parts) == 3 && parts[1] == "materials" && r.Method == http.MethodDelete:
		h.detachMaterial(w, r, courseID, parts[2])
	default:
		http.NotFound(w, r)
	}
}

// listCourses godoc
// @Summary List courses
// @Description Lists every course in the catalog.
// @Tags courses
// @Produce json
// @Success 200 {array} model.Course
// @Router /courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		http.Error(w, "Failed to list courses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// createCourse godoc
// @Summary Create a course
// @Description Creates a course with optional inline lessons. Staff only.
// @Tags courses
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course creation request"
// @Success 201 {object} model.Course
// @Failure 400 {string} string "Invalid JSON payload or validation failed"
// @Failure 403 {string} string "Forbidden: insufficient role"
// @Router /courses [post]
func (h *CourseHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.CourseCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	course := &model.Course{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Subjects:         req.Subjects,
		ThumbnailURL:     req.ThumbnailURL,
		Price:            req.Price,
		OfferPrice:       req.OfferPrice,
		CourseFor:        req.CourseFor,
		Lessons:          lessonsFromDTO(req.Lessons),
	}
	created, err := h.courseService.CreateCourse(r.Context(), course)
	if err != nil {
		http.Error(w, "Failed to create course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// getCourse godoc
// @Summary Get a course
// @Description Retrieves a course by its ID.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [get]
func (h *CourseHandler) getCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	course, err := h.courseService.GetCourseByID(r.Context(), courseID)
	if err != nil {
		if err == service.ErrCourseNotFound {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// updateCourse godoc
// @Summary Update a course
// @Description Updates the descriptive fields of a course. Staff only.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param course body dto.CourseUpdateDTO true "Course update request"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [put]
func (h *CourseHandler) updateCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.CourseUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	course, err := h.courseService.GetCourseByID(r.Context(), courseID)
	if err != nil {
		if err == service.ErrCourseNotFound {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.ShortDescription != nil {
		course.ShortDescription = *req.ShortDescription
	}
	if req.Subjects != nil {
		course.Subjects = req.Subjects
	}
	if req.ThumbnailURL != nil {
		course.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.OfferPrice != nil {
		course.OfferPrice = *req.OfferPrice
	}
	if req.CourseFor != nil {
		course.CourseFor = *req.CourseFor
	}

	updated, err := h.courseService.UpdateCourse(r.Context(), course)
	if err != nil {
		http.Error(w, "Failed to update course: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// addLesson godoc
// @Summary Add a lesson
// @Description Appends a lesson to a course. Staff only.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param lesson body dto.LessonCreateDTO true "Lesson creation request"
// @Success 200 {object} model.Course
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId}/lessons [post]
func (h *CourseHandler) addLesson(w http.ResponseWriter, r *http.Request, courseID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.LessonCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	course, err := h.courseService.AddLesson(r.Context(), courseID, lessonFromDTO(req))
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add lesson")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) updateLesson(w http.ResponseWriter, r *http.Request, courseID, lessonID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.LessonUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	course, err := h.courseService.GetCourseByID(r.Context(), courseID)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to retrieve course")
		return
	}
	idx := -1
	for i, l := range course.Lessons {
		if l.LessonID == lessonID {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, "Lesson not found", http.StatusNotFound)
		return
	}

	lesson := course.Lessons[idx]
	if req.Name != nil {
		lesson.Name = *req.Name
	}
	if req.Description != nil {
		lesson.Description = *req.Description
	}
	if req.Type != nil {
		lesson.Type = *req.Type
	}
	if req.RequiredForNext != nil {
		lesson.RequiredForNext = *req.RequiredForNext
	}

	updated, err := h.courseService.UpdateLesson(r.Context(), courseID, lesson)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to update lesson")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CourseHandler) removeLesson(w http.ResponseWriter, r *http.Request, courseID, lessonID string) {
	if !requireStaff(w, r) {
		return
	}
	course, err := h.courseService.RemoveLesson(r.Context(), courseID, lessonID)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to remove lesson")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) addContent(w http.ResponseWriter, r *http.Request, courseID, lessonID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.ContentCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	content := model.Content{
		Name:            req.Name,
		Type:            req.Type,
		Link:            req.Link,
		Description:     req.Description,
		RequiredForNext: req.RequiredForNext,
	}
	course, err := h.courseService.AddContent(r.Context(), courseID, lessonID, content)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to add content")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) removeContent(w http.ResponseWriter, r *http.Request, courseID, lessonID, contentID string) {
	if !requireStaff(w, r) {
		return
	}
	course, err := h.courseService.RemoveContent(r.Context(), courseID, lessonID, contentID)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to remove content")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) attachMaterial(w http.ResponseWriter, r *http.Request, courseID string) {
	if !requireStaff(w, r) {
		return
	}
	var req dto.AttachMaterialDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	course, err := h.courseService.AttachMaterial(r.Context(), courseID, req.MaterialID)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to attach material")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) detachMaterial(w http.ResponseWriter, r *http.Request, courseID, materialID string) {
	if !requireStaff(w, r) {
		return
	}
	course, err := h.courseService.DetachMaterial(r.Context(), courseID, materialID)
	if err != nil {
		h.writeCatalogError(w, err, "Failed to detach material")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) writeCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case service.ErrCourseNotFound:
		http.Error(w, "Course not found", http.StatusNotFound)
	case service.ErrLessonNotFound:
		http.Error(w, "Lesson not found", http.StatusNotFound)
	case service.ErrContentNotFound:
		http.Error(w, "Content not found", http.StatusNotFound)
	case service.ErrMaterialNotFound:
		http.Error(w, "Material not found", http.StatusNotFound)
	default:
		http.Error(w, fallback+": "+err.Error(), http.StatusInternalServerError)
	}
}

func lessonFromDTO(req dto.LessonCreateDTO) model.Lesson {
	lesson := model.Lesson{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		RequiredForNext: req.RequiredForNext,
	}
	for _, c := range req.Contents {
		lesson.Contents = append(lesson.Contents, model.Content{
			Name:            c.Name,
			Type:            c.Type,
			Link:            c.Link,
			Description:     c.Description,
			RequiredForNext: c.RequiredForNext,
		})
	}
	return lesson
}

func lessonsFromDTO(reqs []dto.LessonCreateDTO) model.LessonList {
	lessons := make(model.LessonList, 0, len(reqs))
	for _, req := range reqs {
		lessons = append(lessons, lessonFromDTO(req))
	}
	return lessons
}
