package service

import (
	"context"
	"testing"

	"pathshala/internal/logger"
	"pathshala/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type accessFixture struct {
	svc            AccessService
	materialRepo   *fakeMaterialRepo
	studentRepo    *fakeStudentRepo
	enrollmentRepo *fakeEnrollmentRepo
	courseRepo     *fakeCourseRepo
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()
	materialRepo := newFakeMaterialRepo()
	studentRepo := newFakeStudentRepo()
	enrollmentRepo := newFakeEnrollmentRepo()
	courseRepo := newFakeCourseRepo()
	svc := NewAccessService(materialRepo, studentRepo, enrollmentRepo, courseRepo, s3.New(s3.Options{}), "materials", logger.New())
	return &accessFixture{
		svc:            svc,
		materialRepo:   materialRepo,
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
	}
}

// seedMaterial creates a material with no stored files, so resolution never
// reaches the presigner.
func (f *accessFixture) seedMaterial(t *testing.T, accessControl string) *model.Material {
	t.Helper()
	m := &model.Material{Title: "Physics Notes", AccessControl: accessControl}
	if err := f.materialRepo.CreateMaterial(context.Background(), m); err != nil {
		t.Fatalf("seeding material: %v", err)
	}
	return m
}

func (f *accessFixture) seedCourseWithMaterial(t *testing.T, materialID string) *model.Course {
	t.Helper()
	course := &model.Course{Title: "HSC Physics", Materials: []string{materialID}}
	if err := f.courseRepo.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("seeding course: %v", err)
	}
	return course
}

func (f *accessFixture) seedEnrollment(t *testing.T, studentID, courseID, status string) {
	t.Helper()
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID, Status: status}
	if err := f.enrollmentRepo.CreateEnrollment(context.Background(), e); err != nil {
		t.Fatalf("seeding enrollment: %v", err)
	}
}

func TestResolveAccessDirectOwnership(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	m := f.seedMaterial(t, model.AccessPurchased)
	if err := f.studentRepo.GrantMaterial(ctx, "s1", m.MaterialID); err != nil {
		t.Fatalf("GrantMaterial: %v", err)
	}

	decision, err := f.svc.ResolveMaterialAccess(ctx, "s1", m.MaterialID)
	if err != nil {
		t.Fatalf("ResolveMaterialAccess: %v", err)
	}
	if decision.Path != AccessPathDirect {
		t.Fatalf("expected path %q, got %q", AccessPathDirect, decision.Path)
	}
	if decision.CourseID != "" {
		t.Fatalf("expected no course on a direct grant, got %q", decision.CourseID)
	}
	if decision.Material.MaterialID != m.MaterialID {
		t.Fatal("expected the resolved material in the decision")
	}
}

func TestResolveAccessDirectWinsOverCourse(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	m := f.seedMaterial(t, model.AccessPurchased)
	course := f.seedCourseWithMaterial(t, m.MaterialID)
	f.seedEnrollment(t, "s1", course.CourseID, model.EnrollmentApproved)
	if err := f.studentRepo.GrantMaterial(ctx, "s1", m.MaterialID); err != nil {
		t.Fatalf("GrantMaterial: %v", err)
	}

	decision, err := f.svc.ResolveMaterialAccess(ctx, "s1", m.MaterialID)
	if err != nil {
		t.Fatalf("ResolveMaterialAccess: %v", err)
	}
	if decision.Path != AccessPathDirect {
		t.Fatalf("expected direct ownership to win, got %q", decision.Path)
	}
}

func TestResolveAccessThroughCourse(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	m := f.seedMaterial(t, model.AccessPurchased)
	course := f.seedCourseWithMaterial(t, m.MaterialID)
	f.seedEnrollment(t, "s1", course.CourseID, model.EnrollmentApproved)

	decision, err := f.svc.ResolveMaterialAccess(ctx, "s1", m.MaterialID)
	if err != nil {
		t.Fatalf("ResolveMaterialAccess: %v", err)
	}
	if decision.Path != AccessPathCourse {
		t.Fatalf("expected path %q, got %q", AccessPathCourse, decision.Path)
	}
	if decision.CourseID != course.CourseID {
		t.Fatalf("expected mediating course %s, got %s", course.CourseID, decision.CourseID)
	}
}

func TestResolveAccessPendingEnrollmentDenied(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	m := f.seedMaterial(t, model.AccessPurchased)
	course := f.seedCourseWithMaterial(t, m.MaterialID)
	f.seedEnrollment(t, "s1", course.CourseID, model.EnrollmentPending)

	if _, err := f.svc.ResolveMaterialAccess(ctx, "s1", m.MaterialID); err != ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied for a pending enrollment, got %v", err)
	}
}

func TestResolveAccessNoEntitlement(t *testing.T) {
	f := newAccessFixture(t)
	f.studentRepo.add("s1")
	m := f.seedMaterial(t, model.AccessPurchased)

	if _, err := f.svc.ResolveMaterialAccess(context.Background(), "s1", m.MaterialID); err != ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestResolveAccessUnknownStudent(t *testing.T) {
	f := newAccessFixture(t)

	if _, err := f.svc.ResolveMaterialAccess(context.Background(), "ghost", "any"); err != ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestResolveAccessUnknownMaterialWithoutEntitlement(t *testing.T) {
	f := newAccessFixture(t)
	f.studentRepo.add("s1")

	// the resolver must not leak whether the ID exists: no entitlement means
	// denied, not not-found
	if _, err := f.svc.ResolveMaterialAccess(context.Background(), "s1", "missing"); err != ErrAccessDenied {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestResolveAccessGrantedButMissingMaterial(t *testing.T) {
	f := newAccessFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	if err := f.studentRepo.GrantMaterial(ctx, "s1", "vanished"); err != nil {
		t.Fatalf("GrantMaterial: %v", err)
	}

	if _, err := f.svc.ResolveMaterialAccess(ctx, "s1", "vanished"); err != ErrMaterialNotFound {
		t.Fatalf("expected ErrMaterialNotFound after a grant with no record, got %v", err)
	}
}
