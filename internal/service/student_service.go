package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pathshala/internal/model"
	"pathshala/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrStudentNotFound = errors.New("student not found")

// StudentService covers the student-facing profile surface.
type StudentService interface {
	GetProfile(ctx context.Context, studentID string) (*model.Student, error)
	// MyCourses returns the catalog entries behind the student's approved
	// enrollments.
	MyCourses(ctx context.Context, studentID string) ([]model.Course, error)
	// InitiateAvatarUpload returns a presigned PUT URL for the photo and the
	// public URL recorded on the profile.
	InitiateAvatarUpload(ctx context.Context, studentID, filename string) (string, string, error)
}

// studentService is the implementation of StudentService
type studentService struct {
	repo           repository.StudentRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	presignClient  *s3.PresignClient
	bucketName     string
	s3URL          string
	logger         zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	repo repository.StudentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	s3Client *s3.Client,
	bucketName string,
	s3URL string,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		repo:           repo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		presignClient:  s3.NewPresignClient(s3Client),
		bucketName:     bucketName,
		s3URL:          s3URL,
		logger:         logger.With().Str("service", "StudentService").Logger(),
	}
}

func (s *studentService) GetProfile(ctx context.Context, studentID string) (*model.Student, error) {
	student, err := s.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) MyCourses(ctx context.Context, studentID string) ([]model.Course, error) {
	enrollments, err := s.enrollmentRepo.ListApprovedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	return s.courseRepo.ListCoursesByIDs(ctx, courseIDs)
}

func (s *studentService) InitiateAvatarUpload(ctx context.Context, studentID, filename string) (string, string, error) {
	student, err := s.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return "", "", err
	}
	if student == nil {
		return "", "", ErrStudentNotFound
	}

	objectKey := fmt.Sprintf("avatars/%s/%s-%s", studentID, uuid.NewString(), filename)
	request, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		s.logger.Error().Err(err).Str("object_key", objectKey).Msg("Failed to generate presigned PUT URL")
		return "", "", fmt.Errorf("failed to generate presigned PUT URL: %w", err)
	}

	photoURL := fmt.Sprintf("%s/%s/%s", s.s3URL, s.bucketName, objectKey)
	if err := s.repo.UpdatePhotoURL(ctx, studentID, photoURL); err != nil {
		return "", "", err
	}
	return request.URL, photoURL, nil
}
