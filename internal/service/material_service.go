package service

import (
	"context"
	"encoding/json"
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

var (
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrAlreadyPurchased   = errors.New("student already purchased material")
	ErrMaterialNotForSale = errors.New("material is not purchasable")
)

// MaterialService manages the material directory, PDF uploads, and standalone
// material purchases.
type MaterialService interface {
	CreateMaterial(ctx context.Context, m *model.Material) (*model.Material, error)
	GetMaterialByID(ctx context.Context, materialID string) (*model.Material, error)
	ListMaterials(ctx context.Context) ([]model.Material, error)
	UpdateMaterial(ctx context.Context, m *model.Material) (*model.Material, error)
	DeleteMaterial(ctx context.Context, materialID string) error

	// ListFree returns the openly accessible materials; no entitlement check
	// applies to these.
	ListFree(ctx context.Context) ([]model.Material, error)
	// GetFree returns a free material with presigned download links.
	GetFree(ctx context.Context, materialID string) (*model.Material, []string, error)

	// InitiateFileUpload returns a presigned PUT URL and records the pending
	// file on the material.
	InitiateFileUpload(ctx context.Context, materialID, filename string) (*model.Material, string, error)

	// Purchase opens a standalone purchase for a purchasable material.
	Purchase(ctx context.Context, p *model.MaterialPurchase) (*model.MaterialPurchase, error)
	ListPendingPurchases(ctx context.Context) ([]model.MaterialPurchase, error)
	// ApprovePurchase verifies the payment, grants the material to the
	// student, and queues a confirmation job.
	ApprovePurchase(ctx context.Context, purchaseID string) (*model.MaterialPurchase, error)
}

// materialService is the implementation of MaterialService
type materialService struct {
	repo          repository.MaterialRepository
	studentRepo   repository.StudentRepository
	presignClient *s3.PresignClient
	bucketName    string
	queue         jobQueue
	queueName     string
	logger        zerolog.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	repo repository.MaterialRepository,
	studentRepo repository.StudentRepository,
	s3Client *s3.Client,
	bucketName string,
	queue jobQueue,
	queueName string,
	logger zerolog.Logger,
) MaterialService {
	return &materialService{
		repo:          repo,
		studentRepo:   studentRepo,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    bucketName,
		queue:         queue,
		queueName:     queueName,
		logger:        logger.With().Str("service", "MaterialService").Logger(),
	}
}

func (s *materialService) CreateMaterial(ctx context.Context, m *model.Material) (*model.Material, error) {
	if err := s.repo.CreateMaterial(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *materialService) GetMaterialByID(ctx context.Context, materialID string) (*model.Material, error) {
	material, err := s.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	return material, nil
}

func (s *materialService) ListMaterials(ctx context.Context) ([]model.Material, error) {
	return s.repo.ListMaterials(ctx)
}

func (s *materialService) UpdateMaterial(ctx context.Context, m *model.Material) (*model.Material, error) {
	existing, err := s.repo.GetMaterialByID(ctx, m.MaterialID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrMaterialNotFound
	}
	// file list is managed through the upload flow
	m.Files = existing.Files
	if err := s.repo.UpdateMaterial(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *materialService) DeleteMaterial(ctx context.Context, materialID string) error {
	ok, err := s.repo.DeleteMaterial(ctx, materialID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMaterialNotFound
	}
	return nil
}

func (s *materialService) ListFree(ctx context.Context) ([]model.Material, error) {
	return s.repo.ListFreeMaterials(ctx)
}

func (s *materialService) GetFree(ctx context.Context, materialID string) (*model.Material, []string, error) {
	material, err := s.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, nil, err
	}
	if material == nil || material.AccessControl != model.AccessFree {
		return nil, nil, ErrMaterialNotFound
	}

	urls := make([]string, 0, len(material.Files))
	for _, file := range material.Files {
		url, err := s.getPresignedGetURL(ctx, file.StorageKey)
		if err != nil {
			return nil, nil, err
		}
		urls = append(urls, url)
	}
	return material, urls, nil
}

func (s *materialService) InitiateFileUpload(ctx context.Context, materialID, filename string) (*model.Material, string, error) {
	material, err := s.repo.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, "", err
	}
	if material == nil {
		return nil, "", ErrMaterialNotFound
	}

	storageKey := fmt.Sprintf("materials/%s/%s-%s", materialID, uuid.NewString(), filename)
	presignedURL, err := s.getPresignedPutURL(ctx, storageKey)
	if err != nil {
		return nil, "", err
	}

	material.Files = append(material.Files, model.MaterialFile{
		URL:        fmt.Sprintf("s3://%s/%s", s.bucketName, storageKey),
		StorageKey: storageKey,
	})
	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		return nil, "", err
	}
	return material, presignedURL, nil
}

func (s *materialService) Purchase(ctx context.Context, p *model.MaterialPurchase) (*model.MaterialPurchase, error) {
	student, err := s.studentRepo.GetStudentByID(ctx, p.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	material, err := s.repo.GetMaterialByID(ctx, p.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	if material.AccessControl != model.AccessPurchased {
		return nil, ErrMaterialNotForSale
	}
	if containsID(student.Materials, p.MaterialID) {
		return nil, ErrAlreadyPurchased
	}

	p.Status = model.EnrollmentPending
	if err := s.repo.CreatePurchase(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicatePurchase) {
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}

	s.logger.Info().
		Str("purchase_id", p.PurchaseID).
		Str("material_id", p.MaterialID).
		Str("student_id", p.StudentID).
		Msg("material purchase created")
	return p, nil
}

func (s *materialService) ListPendingPurchases(ctx context.Context) ([]model.MaterialPurchase, error) {
	return s.repo.ListPendingPurchases(ctx)
}

func (s *materialService) ApprovePurchase(ctx context.Context, purchaseID string) (*model.MaterialPurchase, error) {
	purchase, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}

	ok, err := s.repo.ApprovePendingPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotPending
	}
	purchase.Status = model.EnrollmentApproved

	if err := s.studentRepo.GrantMaterial(ctx, purchase.StudentID, purchase.MaterialID); err != nil {
		return nil, err
	}

	s.enqueueConfirmation(ctx, purchase)

	s.logger.Info().
		Str("purchase_id", purchase.PurchaseID).
		Str("transaction_id", purchase.TransactionID).
		Msg("material payment verified")
	return purchase, nil
}

func (s *materialService) enqueueConfirmation(ctx context.Context, p *model.MaterialPurchase) {
	payload, err := json.Marshal(map[string]any{
		"kind":           "material",
		"record_id":      p.PurchaseID,
		"student_id":     p.StudentID,
		"item_id":        p.MaterialID,
		"transaction_id": p.TransactionID,
		"payment_method": p.PaymentMethod,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("purchase_id", p.PurchaseID).Msg("Failed to marshal confirmation job")
		return
	}
	if err := s.queue.Send(ctx, s.queueName, payload); err != nil {
		s.logger.Error().Err(err).Str("purchase_id", p.PurchaseID).Msg("Failed to enqueue confirmation job")
	}
}

func (s *materialService) getPresignedGetURL(ctx context.Context, objectKey string) (string, error) {
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

// getPresignedPutURL generates a presigned URL for uploading an object.
func (s *materialService) getPresignedPutURL(ctx context.Context, objectKey string) (string, error) {
	request, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		s.logger.Error().Err(err).Str("object_key", objectKey).Msg("Failed to generate presigned PUT URL")
		return "", fmt.Errorf("failed to generate presigned PUT URL: %w", err)
	}
	return request.URL, nil
}
