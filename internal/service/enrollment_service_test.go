package service

import (
	"context"
	"encoding/json"
	"testing"

	"pathshala/internal/logger"
	"pathshala/internal/model"
)

type enrollmentFixture struct {
	svc            EnrollmentService
	courseRepo     *fakeCourseRepo
	enrollmentRepo *fakeEnrollmentRepo
	studentRepo    *fakeStudentRepo
	queue          *fakeQueue
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	courseRepo := newFakeCourseRepo()
	enrollmentRepo := newFakeEnrollmentRepo()
	studentRepo := newFakeStudentRepo()
	queue := &fakeQueue{}
	svc := NewEnrollmentService(enrollmentRepo, courseRepo, studentRepo, queue, "payment_confirmations", logger.New())
	return &enrollmentFixture{
		svc:            svc,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		queue:          queue,
	}
}

func (f *enrollmentFixture) seedCourse(t *testing.T, lessons ...model.Lesson) *model.Course {
	t.Helper()
	course := &model.Course{Title: "HSC Physics", Price: 2000, Lessons: lessons, Materials: []string{"m1"}}
	if err := f.courseRepo.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("seeding course: %v", err)
	}
	return course
}

func TestPurchaseFreeAutoApproves(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t, catalogLesson("l1", "Waves", catalogContent("c1", "Intro")))

	e, err := f.svc.Purchase(ctx, &model.Enrollment{
		StudentID: "s1",
		CourseID:  course.CourseID,
		Type:      model.EnrollmentTypeFree,
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if e.Status != model.EnrollmentApproved {
		t.Fatalf("expected free enrollment to be approved, got %q", e.Status)
	}
	if len(e.Lessons) != 1 || e.Lessons[0].Status != model.StatusLocked {
		t.Fatal("expected snapshot seeded from the catalog with locked lessons")
	}
	if len(e.Materials) != 1 || e.Materials[0] != "m1" {
		t.Fatalf("expected material refs copied from the course, got %v", e.Materials)
	}

	student, _ := f.studentRepo.GetStudentByID(ctx, "s1")
	if !containsID(student.Enrollments, e.EnrollmentID) {
		t.Fatal("expected enrollment ref recorded on the student")
	}
	if f.courseRepo.enrolled[course.CourseID] != 1 {
		t.Fatal("expected the course enrollment counter to be incremented")
	}
}

func TestPurchasePaidStaysPending(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t)

	e, err := f.svc.Purchase(ctx, &model.Enrollment{
		StudentID:     "s1",
		CourseID:      course.CourseID,
		Type:          model.EnrollmentTypePaid,
		TransactionID: "TX123",
		PaymentMethod: "bkash",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if e.Status != model.EnrollmentPending {
		t.Fatalf("expected paid enrollment to stay pending, got %q", e.Status)
	}

	student, _ := f.studentRepo.GetStudentByID(ctx, "s1")
	if len(student.Enrollments) != 0 {
		t.Fatal("expected no enrollment ref before verification")
	}
	if f.courseRepo.enrolled[course.CourseID] != 0 {
		t.Fatal("expected the course counter untouched before verification")
	}
}

func TestPurchaseDuplicate(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t)

	first := &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypePaid}
	if _, err := f.svc.Purchase(ctx, first); err != nil {
		t.Fatalf("first Purchase: %v", err)
	}
	_, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypePaid})
	if err != ErrAlreadyEnrolled {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestPurchaseUnknownCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.studentRepo.add("s1")

	_, err := f.svc.Purchase(context.Background(), &model.Enrollment{StudentID: "s1", CourseID: "missing", Type: model.EnrollmentTypeFree})
	if err != ErrCourseNotFound {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestPurchaseUnknownStudent(t *testing.T) {
	f := newEnrollmentFixture(t)
	course := f.seedCourse(t)

	_, err := f.svc.Purchase(context.Background(), &model.Enrollment{StudentID: "ghost", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestApproveVerifiesPayment(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t)

	pending, err := f.svc.Purchase(ctx, &model.Enrollment{
		StudentID:     "s1",
		CourseID:      course.CourseID,
		Type:          model.EnrollmentTypePaid,
		TransactionID: "TX123",
		PaymentMethod: "nagad",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	approved, err := f.svc.Approve(ctx, pending.EnrollmentID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != model.EnrollmentApproved {
		t.Fatalf("expected approved status, got %q", approved.Status)
	}

	student, _ := f.studentRepo.GetStudentByID(ctx, "s1")
	if !containsID(student.Enrollments, pending.EnrollmentID) {
		t.Fatal("expected enrollment ref recorded on the student")
	}
	if f.courseRepo.enrolled[course.CourseID] != 1 {
		t.Fatal("expected the course counter to be incremented")
	}

	if len(f.queue.sent) != 1 {
		t.Fatalf("expected 1 confirmation job, got %d", len(f.queue.sent))
	}
	var job map[string]any
	if err := json.Unmarshal(f.queue.sent[0], &job); err != nil {
		t.Fatalf("unmarshaling job: %v", err)
	}
	if job["kind"] != "enrollment" || job["transaction_id"] != "TX123" {
		t.Fatalf("unexpected job payload: %v", job)
	}

	// second verification of the same record must fail
	if _, err := f.svc.Approve(ctx, pending.EnrollmentID); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending on repeat approval, got %v", err)
	}
}

func TestApproveUnknownEnrollment(t *testing.T) {
	f := newEnrollmentFixture(t)
	if _, err := f.svc.Approve(context.Background(), "missing"); err != ErrEnrollmentNotFound {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}

func TestRejectNonPending(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t)

	approved, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if err := f.svc.Reject(ctx, approved.EnrollmentID); err != ErrNotPending {
		t.Fatalf("expected ErrNotPending when rejecting an approved enrollment, got %v", err)
	}
}

func TestGetSynchronizedPersistsOnlyOnChange(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t, catalogLesson("l1", "Waves", catalogContent("c1", "Intro")))

	e, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	// fresh snapshot matches the catalog, so no write
	_, synced, err := f.svc.GetSynchronized(ctx, "s1", e.EnrollmentID)
	if err != nil {
		t.Fatalf("GetSynchronized: %v", err)
	}
	if synced {
		t.Fatal("expected no write on an up-to-date snapshot")
	}
	if f.enrollmentRepo.persistCount != 0 {
		t.Fatalf("expected 0 persists, got %d", f.enrollmentRepo.persistCount)
	}

	// mutate the catalog: add a lesson
	course.Lessons = append(course.Lessons, catalogLesson("l2", "Optics"))
	if err := f.courseRepo.UpdateLessons(ctx, course.CourseID, course.Lessons); err != nil {
		t.Fatalf("UpdateLessons: %v", err)
	}

	merged, synced, err := f.svc.GetSynchronized(ctx, "s1", e.EnrollmentID)
	if err != nil {
		t.Fatalf("GetSynchronized after catalog change: %v", err)
	}
	if !synced {
		t.Fatal("expected a write after the catalog changed")
	}
	if len(merged.Lessons) != 2 || merged.Lessons[1].Status != model.StatusLocked {
		t.Fatal("expected the new lesson merged in locked")
	}
	if f.enrollmentRepo.persistCount != 1 {
		t.Fatalf("expected 1 persist, got %d", f.enrollmentRepo.persistCount)
	}

	// the persisted snapshot is now current again
	_, synced, err = f.svc.GetSynchronized(ctx, "s1", e.EnrollmentID)
	if err != nil {
		t.Fatalf("GetSynchronized repeat: %v", err)
	}
	if synced {
		t.Fatal("expected no write on the second read")
	}
	if f.enrollmentRepo.persistCount != 1 {
		t.Fatalf("expected persist count to stay at 1, got %d", f.enrollmentRepo.persistCount)
	}
}

func TestGetSynchronizedByCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t, catalogLesson("l1", "Waves"))

	e, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	course.Lessons = append(course.Lessons, catalogLesson("l2", "Optics"))
	if err := f.courseRepo.UpdateLessons(ctx, course.CourseID, course.Lessons); err != nil {
		t.Fatalf("UpdateLessons: %v", err)
	}

	merged, synced, err := f.svc.GetSynchronizedByCourse(ctx, "s1", course.CourseID)
	if err != nil {
		t.Fatalf("GetSynchronizedByCourse: %v", err)
	}
	if merged.EnrollmentID != e.EnrollmentID {
		t.Fatalf("expected enrollment %s, got %s", e.EnrollmentID, merged.EnrollmentID)
	}
	if !synced || len(merged.Lessons) != 2 {
		t.Fatal("expected the course-keyed lookup to synchronize the snapshot")
	}

	if _, _, err := f.svc.GetSynchronizedByCourse(ctx, "s1", "other-course"); err != ErrEnrollmentNotFound {
		t.Fatalf("expected ErrEnrollmentNotFound for a course without enrollment, got %v", err)
	}
}

func TestGetSynchronizedRequiresOwnership(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	f.studentRepo.add("s2")
	course := f.seedCourse(t)

	e, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	if _, _, err := f.svc.GetSynchronized(ctx, "s2", e.EnrollmentID); err != ErrEnrollmentNotFound {
		t.Fatalf("expected ErrEnrollmentNotFound for another student's enrollment, got %v", err)
	}
	if _, _, err := f.svc.GetSynchronized(ctx, "ghost", e.EnrollmentID); err != ErrStudentNotFound {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
	if _, _, err := f.svc.GetSynchronized(ctx, "s1", "missing"); err != ErrEnrollmentNotFound {
		t.Fatalf("expected ErrEnrollmentNotFound for a missing id, got %v", err)
	}
}

func TestGetContent(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()
	f.studentRepo.add("s1")
	course := f.seedCourse(t, catalogLesson("l1", "Waves", catalogContent("c1", "Intro")))

	e, err := f.svc.Purchase(ctx, &model.Enrollment{StudentID: "s1", CourseID: course.CourseID, Type: model.EnrollmentTypeFree})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	content, err := f.svc.GetContent(ctx, "s1", e.EnrollmentID, "l1", "c1")
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if content.ContentID != "c1" || content.Status != model.StatusLocked {
		t.Fatalf("unexpected content %s/%s", content.ContentID, content.Status)
	}

	if _, err := f.svc.GetContent(ctx, "s1", e.EnrollmentID, "l1", "missing"); err != ErrContentNotFound {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
	if _, err := f.svc.GetContent(ctx, "s1", e.EnrollmentID, "missing", "c1"); err != ErrLessonNotFound {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}
