package service

import (
	"context"
	"encoding/json"
	"errors"

	"pathshala/internal/model"
	"pathshala/internal/repository"

	"github.com/rs/zerolog"
)

// jobQueue is the subset of the pgmq client the services enqueue with.
type jobQueue interface {
	Send(ctx context.Context, queue string, payload []byte) error
}

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("student already enrolled in course")
	ErrNotPending         = errors.New("record is not pending")
)

// EnrollmentService covers the enrollment lifecycle: purchase, admin
// verification, and the per-read synchronization of progress snapshots
// against the course catalog.
type EnrollmentService interface {
	// Purchase registers a student for a course. Free courses are approved
	// immediately; paid ones wait for payment verification.
	Purchase(ctx context.Context, e *model.Enrollment) (*model.Enrollment, error)

	// GetSynchronized loads an enrollment, reconciles its snapshot with the
	// current course definition, persists the merged snapshot when it differs,
	// and returns the merged state. The bool reports whether a write happened.
	GetSynchronized(ctx context.Context, studentID, enrollmentID string) (*model.Enrollment, bool, error)

	// GetSynchronizedByCourse is the course-keyed variant: it resolves the
	// student's enrollment in the course and synchronizes it the same way.
	GetSynchronizedByCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, bool, error)

	// GetContent returns one synchronized content item out of an enrollment.
	GetContent(ctx context.Context, studentID, enrollmentID, lessonID, contentID string) (*model.ContentProgress, error)

	ListMine(ctx context.Context, studentID string) ([]model.Enrollment, error)

	ListPending(ctx context.Context) ([]model.Enrollment, error)
	// Approve verifies a pending payment: flips the status, credits the
	// course counter, records the enrollment ref on the student, and queues a
	// confirmation job.
	Approve(ctx context.Context, enrollmentID string) (*model.Enrollment, error)
	// Reject discards a pending enrollment.
	Reject(ctx context.Context, enrollmentID string) error
}

// enrollmentService is the implementation of EnrollmentService
type enrollmentService struct {
	repo        repository.EnrollmentRepository
	courseRepo  repository.CourseRepository
	studentRepo repository.StudentRepository
	queue       jobQueue
	queueName   string
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	studentRepo repository.StudentRepository,
	queue jobQueue,
	queueName string,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		courseRepo:  courseRepo,
		studentRepo: studentRepo,
		queue:       queue,
		queueName:   queueName,
		logger:      logger.With().Str("service", "EnrollmentService").Logger(),
	}
}

func (s *enrollmentService) Purchase(ctx context.Context, e *model.Enrollment) (*model.Enrollment, error) {
	student, err := s.studentRepo.GetStudentByID(ctx, e.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	course, err := s.courseRepo.GetCourseByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	// Seed the snapshot from the catalog: every lesson and content starts
	// locked, the material refs mirror the course's current set.
	e.Lessons, _ = syncLessons(course.Lessons, nil)
	e.Materials = append([]string{}, course.Materials...)

	e.Status = model.EnrollmentPending
	if e.Type == model.EnrollmentTypeFree {
		e.Status = model.EnrollmentApproved
	}

	if err := s.repo.CreateEnrollment(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if e.Status == model.EnrollmentApproved {
		if err := s.grantEnrollment(ctx, e); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("enrollment_id", e.EnrollmentID).
		Str("course_id", e.CourseID).
		Str("student_id", e.StudentID).
		Str("status", e.Status).
		Msg("enrollment created")
	return e, nil
}

func (s *enrollmentService) GetSynchronized(ctx context.Context, studentID, enrollmentID string) (*model.Enrollment, bool, error) {
	student, err := s.studentRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	if student == nil {
		return nil, false, ErrStudentNotFound
	}

	enrollment, err := s.repo.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, false, err
	}
	if enrollment == nil || !containsID(student.Enrollments, enrollmentID) {
		return nil, false, ErrEnrollmentNotFound
	}
	return s.synchronize(ctx, enrollment)
}

func (s *enrollmentService) GetSynchronizedByCourse(ctx context.Context, studentID, courseID string) (*model.Enrollment, bool, error) {
	student, err := s.studentRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	if student == nil {
		return nil, false, ErrStudentNotFound
	}

	enrollment, err := s.repo.FindByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, false, err
	}
	if enrollment == nil || !containsID(student.Enrollments, enrollment.EnrollmentID) {
		return nil, false, ErrEnrollmentNotFound
	}
	return s.synchronize(ctx, enrollment)
}

// synchronize merges the enrollment snapshot with the current course
// definition and persists it when anything changed.
func (s *enrollmentService) synchronize(ctx context.Context, enrollment *model.Enrollment) (*model.Enrollment, bool, error) {
	course, err := s.courseRepo.GetCourseByID(ctx, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}
	if course == nil {
		return nil, false, ErrCourseNotFound
	}

	lessons, lessonsChanged := syncLessons(course.Lessons, enrollment.Lessons)
	materials, materialsChanged := syncMaterials(course.Materials, enrollment.Materials)
	changed := lessonsChanged || materialsChanged
	enrollment.Lessons = lessons
	enrollment.Materials = materials

	if changed {
		if err := s.repo.PersistSnapshot(ctx, enrollment.EnrollmentID, lessons, materials); err != nil {
			return nil, false, err
		}
		s.logger.Info().
			Str("enrollment_id", enrollment.EnrollmentID).
			Str("course_id", course.CourseID).
			Msg("snapshot synchronized")
	}
	return enrollment, changed, nil
}

func (s *enrollmentService) GetContent(ctx context.Context, studentID, enrollmentID, lessonID, contentID string) (*model.ContentProgress, error) {
	enrollment, _, err := s.GetSynchronized(ctx, studentID, enrollmentID)
	if err != nil {
		return nil, err
	}
	for _, lesson := range enrollment.Lessons {
		if lesson.LessonID != lessonID {
			continue
		}
		for i := range lesson.Contents {
			if lesson.Contents[i].ContentID == contentID {
				return &lesson.Contents[i], nil
			}
		}
		return nil, ErrContentNotFound
	}
	return nil, ErrLessonNotFound
}

func (s *enrollmentService) ListMine(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *enrollmentService) ListPending(ctx context.Context) ([]model.Enrollment, error) {
	return s.repo.ListPending(ctx)
}

func (s *enrollmentService) Approve(ctx context.Context, enrollmentID string) (*model.Enrollment, error) {
	enrollment, err := s.repo.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}

	ok, err := s.repo.ApprovePending(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	enrollment.Status = model.EnrollmentApproved

	if err := s.grantEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	s.enqueueConfirmation(ctx, enrollment)

	s.logger.Info().
		Str("enrollment_id", enrollment.EnrollmentID).
		Str("transaction_id", enrollment.TransactionID).
		Msg("payment verified")
	return enrollment, nil
}

func (s *enrollmentService) Reject(ctx context.Context, enrollmentID string) error {
	ok, err := s.repo.DeletePending(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}
	return nil
}

// grantEnrollment records the approved enrollment on both sides: the ref on
// the student and the counter on the course.
func (s *enrollmentService) grantEnrollment(ctx context.Context, e *model.Enrollment) error {
	if err := s.studentRepo.AddEnrollmentRef(ctx, e.StudentID, e.EnrollmentID); err != nil {
		return err
	}
	return s.courseRepo.IncrementStudentsEnrolled(ctx, e.CourseID)
}

// enqueueConfirmation queues the payment-confirmation job for the worker. A
// queue failure never rolls back an approval that already committed.
func (s *enrollmentService) enqueueConfirmation(ctx context.Context, e *model.Enrollment) {
	payload, err := json.Marshal(map[string]any{
		"kind":           "enrollment",
		"record_id":      e.EnrollmentID,
		"student_id":     e.StudentID,
		"item_id":        e.CourseID,
		"transaction_id": e.TransactionID,
		"payment_method": e.PaymentMethod,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("enrollment_id", e.EnrollmentID).Msg("Failed to marshal confirmation job")
		return
	}
	if err := s.queue.Send(ctx, s.queueName, payload); err != nil {
		s.logger.Error().Err(err).Str("enrollment_id", e.EnrollmentID).Msg("Failed to enqueue confirmation job")
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
