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
	"github.com/rs/zerolog"
)

var (
	ErrMaterialNotFound = errors.New("material not found")
	ErrAccessDenied     = errors.New("material access denied")
)

// Access paths, in resolution order. Direct ownership always wins over
// course-mediated access.
const (
	AccessPathDirect = "direct-purchase"
	AccessPathCourse = "course-purchase"
)

// AccessDecision is the outcome of a successful access resolution.
type AccessDecision struct {
	Material *model.Material `json:"material"`
	Path     string          `json:"path"`
	CourseID string          `json:"course_id,omitempty"` // set on course-mediated access
	FileURLs []string        `json:"file_urls"`
}

// AccessService resolves whether a student may open a material, and through
// which entitlement.
type AccessService interface {
	// ResolveMaterialAccess checks direct ownership first, then the materials
	// attached to the student's approved course enrollments. The decision is
	// made on the material ID alone; the record itself is only fetched once an
	// entitlement matched, so a granted but missing material is
	// ErrMaterialNotFound while everything else is ErrAccessDenied. There is
	// no partial grant.
	ResolveMaterialAccess(ctx context.Context, studentID, materialID string) (*AccessDecision, error)
}

// accessService is the implementation of AccessService
type accessService struct {
	materialRepo   repository.MaterialRepository
	studentRepo    repository.StudentRepository
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	presignClient  *s3.PresignClient
	bucketName     string
	logger         zerolog.Logger
}

// NewAccessService creates a new AccessService
func NewAccessService(
	materialRepo repository.MaterialRepository,
	studentRepo repository.StudentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	s3Client *s3.Client,
	bucketName string,
	logger zerolog.Logger,
) AccessService {
	return &accessService{
		materialRepo:   materialRepo,
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		presignClient:  s3.NewPresignClient(s3Client),
		bucketName:     bucketName,
		logger:         logger.With().Str("service", "AccessService").Logger(),
	}
}

func (s *accessService) ResolveMaterialAccess(ctx context.Context, studentID, materialID string) (*AccessDecision, error) {
	student, err := s.studentRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	if containsID(student.Materials, materialID) {
		return s.grant(ctx, materialID, AccessPathDirect, "")
	}

	courseID, err := s.courseWithMaterial(ctx, studentID, materialID)
	if err != nil {
		return nil, err
	}
	if courseID != "" {
		return s.grant(ctx, materialID, AccessPathCourse, courseID)
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("material_id", materialID).
		Msg("material access denied")
	return nil, ErrAccessDenied
}

// courseWithMaterial returns the ID of an approved-enrollment course carrying
// the material, or "" when none does.
func (s *accessService) courseWithMaterial(ctx context.Context, studentID, materialID string) (string, error) {
	enrollments, err := s.enrollmentRepo.ListApprovedByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	if len(enrollments) == 0 {
		return "", nil
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	courses, err := s.courseRepo.ListCoursesByIDs(ctx, courseIDs)
	if err != nil {
		return "", err
	}
	for _, course := range courses {
		if containsID(course.Materials, materialID) {
			return course.CourseID, nil
		}
	}
	return "", nil
}

// grant loads the granted material and attaches presigned download links. A
// grant whose material record is gone is a distinct not-found.
func (s *accessService) grant(ctx context.Context, materialID, path, courseID string) (*AccessDecision, error) {
	material, err := s.materialRepo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}

	urls := make([]string, 0, len(material.Files))
	for _, file := range material.Files {
		url, err := s.getPresignedGetURL(ctx, file.StorageKey)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return &AccessDecision{
		Material: material,
		Path:     path,
		CourseID: courseID,
		FileURLs: urls,
	}, nil
}

// getPresignedGetURL generates a presigned URL for downloading an object.
func (s *accessService) getPresignedGetURL(ctx context.Context, objectKey string) (string, error) {
	resp, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		s.logger.Error().Err(err).Str("object_key", objectKey).Msg("Failed to generate presigned URL")
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return resp.URL, nil
}
