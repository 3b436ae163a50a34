package service

import (
	"context"
	"encoding/json"
	"testing"

	"pathshala/internal/logger"
	"pathshala/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type materialFixture struct {
	svc         MaterialService
	repo        *fakeMaterialRepo
	studentRepo *fakeStudentRepo
	queue       *fakeQueue
}

func newMaterialFixture(t *testing.T) *materialFixture {
	t.Helper()
	repo := newFakeMaterialRepo()
	studentRepo := newFakeStudentRepo()
	queue := &fakeQueue{}
	svc := NewMaterialService(repo, studentRepo, s3.New(s3.Options{}), "materials", queue, "payment_confirmations", logger.New())
	return &materialFixture{svc: svc, repo: repo, studentRepo: studentRepo, queue: queue}
}

func TestMaterialPurchaseRequiresPurchasable(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")

	free := &model.Material{Title: "Free Notes", AccessControl: model.AccessFree}
	if err := f.repo.CreateMaterial(ctx, free); err != nil {
		t.Fatalf("seeding material: %v", err)
	}

	_, err := f.svc.Purchase(ctx, &model.MaterialPurchase{StudentID: "s1", MaterialID: free.MaterialID})
	if err != ErrMaterialNotForSale {
		t.Fatalf("expected ErrMaterialNotForSale, got %v", err)
	}
}

func TestMaterialPurchaseAlreadyOwned(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")

	m := &model.Material{Title: "Notes", AccessControl: model.AccessPurchased}
	if err := f.repo.CreateMaterial(ctx, m); err != nil {
		t.Fatalf("seeding material: %v", err)
	}
	if err := f.studentRepo.GrantMaterial(ctx, "s1", m.MaterialID); err != nil {
		t.Fatalf("GrantMaterial: %v", err)
	}

	_, err := f.svc.Purchase(ctx, &model.MaterialPurchase{StudentID: "s1", MaterialID: m.MaterialID})
	if err != ErrAlreadyPurchased {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
}

func TestMaterialPurchaseAndApprove(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")

	m := &model.Material{Title: "Notes", AccessControl: model.AccessPurchased}
	if err := f.repo.CreateMaterial(ctx, m); err != nil {
		t.Fatalf("seeding material: %v", err)
	}

	p, err := f.svc.Purchase(ctx, &model.MaterialPurchase{
		StudentID:     "s1",
		MaterialID:    m.MaterialID,
		TransactionID: "TX900",
		PaymentMethod: "rocket",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if p.Status != model.EnrollmentPending {
		t.Fatalf("expected pending purchase, got %q", p.Status)
	}

	// duplicate while pending
	_, err = f.svc.Purchase(ctx, &model.MaterialPurchase{StudentID: "s1", MaterialID: m.MaterialID})
	if err != ErrAlreadyPurchased {
		t.Fatalf("expected ErrAlreadyPurchased on a repeat purchase, got %v", err)
	}

	approved, err := f.svc.ApprovePurchase(ctx, p.PurchaseID)
	if err != nil {
		t.Fatalf("ApprovePurchase: %v", err)
	}
	if approved.Status != model.EnrollmentApproved {
		t.Fatalf("expected approved purchase, got %q", approved.Status)
	}

	student, _ := f.studentRepo.GetStudentByID(ctx, "s1")
	if !containsID(student.Materials, m.MaterialID) {
		t.Fatal("expected the material granted to the student")
	}

	if len(f.queue.sent) != 1 {
		t.Fatalf("expected 1 confirmation job, got %d", len(f.queue.sent))
	}
	var job map[string]any
	if err := json.Unmarshal(f.queue.sent[0], &job); err != nil {
		t.Fatalf("unmarshaling job: %v", err)
	}
	if job["kind"] != "material" || job["item_id"] != m.MaterialID {
		t.Fatalf("unexpected job payload: %v", job)
	}

	if _, err := f.svc.ApprovePurchase(ctx, p.PurchaseID); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending on repeat approval, got %v", err)
	}
}

func TestGetFreeRejectsNonFree(t *testing.T) {
	f := newMaterialFixture(t)
	ctx := context.Background()

	m := &model.Material{Title: "Notes", AccessControl: model.AccessPurchased}
	if err := f.repo.CreateMaterial(ctx, m); err != nil {
		t.Fatalf("seeding material: %v", err)
	}

	if _, _, err := f.svc.GetFree(ctx, m.MaterialID); err != ErrMaterialNotFound {
		t.Fatalf("expected ErrMaterialNotFound for a non-free material, got %v", err)
	}
}
