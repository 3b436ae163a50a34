package service

import (
	"context"
	"errors"

	"pathshala/internal/model"
	"pathshala/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrContentNotFound = errors.New("content not found")
)

// CourseService defines the interface for catalog operations. Lesson and
// content IDs are assigned here and never change afterwards; the enrollment
// synchronizer keys on them.
type CourseService interface {
	CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error)
	// GetCourseByID retrieves a course by its ID
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	// UpdateCourse updates the descriptive fields of an existing course
	UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error)

	AddLesson(ctx context.Context, courseID string, lesson model.Lesson) (*model.Course, error)
	// UpdateLesson rewrites a lesson's descriptive fields, keeping its
	// contents untouched.
	UpdateLesson(ctx context.Context, courseID string, lesson model.Lesson) (*model.Course, error)
	RemoveLesson(ctx context.Context, courseID, lessonID string) (*model.Course, error)

	AddContent(ctx context.Context, courseID, lessonID string, content model.Content) (*model.Course, error)
	RemoveContent(ctx context.Context, courseID, lessonID, contentID string) (*model.Course, error)

	AttachMaterial(ctx context.Context, courseID, materialID string) (*model.Course, error)
	DetachMaterial(ctx context.Context, courseID, materialID string) (*model.Course, error)
}

// courseService is the implementation of CourseService
type courseService struct {
	repo         repository.CourseRepository
	materialRepo repository.MaterialRepository
}

// NewCourseService creates a new CourseService
func NewCourseService(repo repository.CourseRepository, materialRepo repository.MaterialRepository) CourseService {
	return &courseService{repo: repo, materialRepo: materialRepo}
}

// CreateCourse creates a new course record, assigning IDs to any lessons and
// contents supplied inline.
func (s *courseService) CreateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	for i := range c.Lessons {
		c.Lessons[i].LessonID = uuid.NewString()
		for j := range c.Lessons[i].Contents {
			c.Lessons[i].Contents[j].ContentID = uuid.NewString()
		}
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCourseByID retrieves a course by its ID
func (s *courseService) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.repo.ListCourses(ctx)
}

// UpdateCourse updates the descriptive fields of an existing course
func (s *courseService) UpdateCourse(ctx context.Context, c *model.Course) (*model.Course, error) {
	existing, err := s.repo.GetCourseByID(ctx, c.CourseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCourseNotFound
	}
	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *courseService) AddLesson(ctx context.Context, courseID string, lesson model.Lesson) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lesson.LessonID = uuid.NewString()
	for i := range lesson.Contents {
		lesson.Contents[i].ContentID = uuid.NewString()
	}
	course.Lessons = append(course.Lessons, lesson)

	if err := s.repo.UpdateLessons(ctx, courseID, course.Lessons); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) UpdateLesson(ctx context.Context, courseID string, lesson model.Lesson) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := lessonIndex(course.Lessons, lesson.LessonID)
	if idx < 0 {
		return nil, ErrLessonNotFound
	}
	course.Lessons[idx].Name = lesson.Name
	course.Lessons[idx].Description = lesson.Description
	course.Lessons[idx].Type = lesson.Type
	course.Lessons[idx].RequiredForNext = lesson.RequiredForNext

	if err := s.repo.UpdateLessons(ctx, courseID, course.Lessons); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) RemoveLesson(ctx context.Context, courseID, lessonID string) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := lessonIndex(course.Lessons, lessonID)
	if idx < 0 {
		return nil, ErrLessonNotFound
	}
	course.Lessons = append(course.Lessons[:idx], course.Lessons[idx+1:]...)

	if err := s.repo.UpdateLessons(ctx, courseID, course.Lessons); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) AddContent(ctx context.Context, courseID, lessonID string, content model.Content) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := lessonIndex(course.Lessons, lessonID)
	if idx < 0 {
		return nil, ErrLessonNotFound
	}
	content.ContentID = uuid.NewString()
	course.Lessons[idx].Contents = append(course.Lessons[idx].Contents, content)

	if err := s.repo.UpdateLessons(ctx, courseID, course.Lessons); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) RemoveContent(ctx context.Context, courseID, lessonID, contentID string) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	idx := lessonIndex(course.Lessons, lessonID)
	if idx < 0 {
		return nil, ErrLessonNotFound
	}
	contents := course.Lessons[idx].Contents
	found := false
	for i, c := range contents {
		if c.ContentID == contentID {
			course.Lessons[idx].Contents = append(contents[:i], contents[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrContentNotFound
	}

	if err := s.repo.UpdateLessons(ctx, courseID, course.Lessons); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) AttachMaterial(ctx context.Context, courseID, materialID string) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	material, err := s.materialRepo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}

	if !containsID(course.Materials, materialID) {
		course.Materials = append(course.Materials, materialID)
		if err := s.repo.UpdateMaterials(ctx, courseID, course.Materials); err != nil {
			return nil, err
		}
	}
	return course, nil
}

func (s *courseService) DetachMaterial(ctx context.Context, courseID, materialID string) (*model.Course, error) {
	course, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	for i, id := range course.Materials {
		if id == materialID {
			course.Materials = append(course.Materials[:i], course.Materials[i+1:]...)
			if err := s.repo.UpdateMaterials(ctx, courseID, course.Materials); err != nil {
				return nil, err
			}
			break
		}
	}
	return course, nil
}

func lessonIndex(lessons model.LessonList, lessonID string) int {
	for i, l := range lessons {
		if l.LessonID == lessonID {
			return i
		}
	}
	return -1
}
