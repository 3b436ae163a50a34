package service

import (
	"context"
	"errors"

	"pathshala/internal/model"
	"pathshala/internal/repository"

	"github.com/rs/zerolog"
)

var (
	ErrClassNotFound = errors.New("class not found")
	ErrNotEnrolled   = errors.New("student is not enrolled in course")
)

// ClassService manages live and recorded class sessions. Student reads are
// gated by an approved enrollment in the owning course.
type ClassService interface {
	CreateClass(ctx context.Context, c *model.Class) (*model.Class, error)
	UpdateClass(ctx context.Context, c *model.Class) (*model.Class, error)
	DeleteClass(ctx context.Context, classID string) error
	// SetLive toggles the live flag on a live-type class.
	SetLive(ctx context.Context, classID string, active bool) error

	// GetClassForUpdate is the ungated staff read.
	GetClassForUpdate(ctx context.Context, classID string) (*model.Class, error)

	// GetClass returns the class when the student holds an approved
	// enrollment in its course.
	GetClass(ctx context.Context, studentID, classID string) (*model.Class, error)
	ListMine(ctx context.Context, studentID string) ([]model.Class, error)
	ListLiveMine(ctx context.Context, studentID string) ([]model.Class, error)
}

// classService is the implementation of ClassService
type classService struct {
	repo           repository.ClassRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	logger         zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	repo repository.ClassRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	logger zerolog.Logger,
) ClassService {
	return &classService{
		repo:           repo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		logger:         logger.With().Str("service", "ClassService").Logger(),
	}
}

func (s *classService) CreateClass(ctx context.Context, c *model.Class) (*model.Class, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, c.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if err := s.repo.CreateClass(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *classService) UpdateClass(ctx context.Context, c *model.Class) (*model.Class, error) {
	existing, err := s.repo.GetClassByID(ctx, c.ClassID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrClassNotFound
	}
	if err := s.repo.UpdateClass(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *classService) DeleteClass(ctx context.Context, classID string) error {
	ok, err := s.repo.DeleteClass(ctx, classID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClassNotFound
	}
	return nil
}

func (s *classService) SetLive(ctx context.Context, classID string, active bool) error {
	class, err := s.repo.GetClassByID(ctx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrClassNotFound
	}
	if class.Type != model.ClassLive {
		return ErrClassNotFound
	}
	return s.repo.SetActiveLive(ctx, classID, active)
}

func (s *classService) GetClassForUpdate(ctx context.Context, classID string) (*model.Class, error) {
	class, err := s.repo.GetClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func (s *classService) GetClass(ctx context.Context, studentID, classID string) (*model.Class, error) {
	class, err := s.repo.GetClassByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, ErrClassNotFound
	}

	enrolled, err := s.isEnrolled(ctx, studentID, class.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return class, nil
}

func (s *classService) ListMine(ctx context.Context, studentID string) ([]model.Class, error) {
	courseIDs, err := s.enrolledCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByCourses(ctx, courseIDs)
}

func (s *classService) ListLiveMine(ctx context.Context, studentID string) ([]model.Class, error) {
	courseIDs, err := s.enrolledCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActiveLiveByCourses(ctx, courseIDs)
}

func (s *classService) isEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	enrollment, err := s.enrollmentRepo.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return false, err
	}
	return enrollment != nil && enrollment.Status == model.EnrollmentApproved, nil
}

func (s *classService) enrolledCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	enrollments, err := s.enrollmentRepo.ListApprovedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	return courseIDs, nil
}
