package service

import (
	"context"
	"fmt"

	"pathshala/internal/model"
	"pathshala/internal/repository"
)

// In-memory repository fakes for service tests.

type fakeCourseRepo struct {
	courses  map[string]*model.Course
	nextID   int
	enrolled map[string]int // courseID -> increment count
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]*model.Course{}, enrolled: map[string]int{}}
}

func (r *fakeCourseRepo) CreateCourse(_ context.Context, c *model.Course) error {
	r.nextID++
	c.CourseID = fmt.Sprintf("course-%d", r.nextID)
	stored := *c
	r.courses[c.CourseID] = &stored
	return nil
}

func (r *fakeCourseRepo) GetCourseByID(_ context.Context, courseID string) (*model.Course, error) {
	c, ok := r.courses[courseID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCourseRepo) ListCourses(_ context.Context) ([]model.Course, error) {
	out := []model.Course{}
	for _, c := range r.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCourseRepo) ListCoursesByIDs(_ context.Context, courseIDs []string) ([]model.Course, error) {
	out := []model.Course{}
	for _, id := range courseIDs {
		if c, ok := r.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) UpdateCourse(_ context.Context, c *model.Course) error {
	stored := *c
	r.courses[c.CourseID] = &stored
	return nil
}

func (r *fakeCourseRepo) UpdateLessons(_ context.Context, courseID string, lessons model.LessonList) error {
	r.courses[courseID].Lessons = lessons
	return nil
}

func (r *fakeCourseRepo) UpdateMaterials(_ context.Context, courseID string, materials []string) error {
	r.courses[courseID].Materials = materials
	return nil
}

func (r *fakeCourseRepo) IncrementStudentsEnrolled(_ context.Context, courseID string) error {
	r.courses[courseID].StudentsEnrolled++
	r.enrolled[courseID]++
	return nil
}

type fakeEnrollmentRepo struct {
	enrollments  map[string]*model.Enrollment
	nextID       int
	persistCount int
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{enrollments: map[string]*model.Enrollment{}}
}

func (r *fakeEnrollmentRepo) CreateEnrollment(_ context.Context, e *model.Enrollment) error {
	for _, existing := range r.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return repository.ErrDuplicateEnrollment
		}
	}
	r.nextID++
	e.EnrollmentID = fmt.Sprintf("enrollment-%d", r.nextID)
	stored := *e
	r.enrollments[e.EnrollmentID] = &stored
	return nil
}

func (r *fakeEnrollmentRepo) GetEnrollmentByID(_ context.Context, enrollmentID string) (*model.Enrollment, error) {
	e, ok := r.enrollments[enrollmentID]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEnrollmentRepo) FindByStudentAndCourse(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	out := []model.Enrollment{}
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) ListApprovedByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	out := []model.Enrollment{}
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.Status == model.EnrollmentApproved {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) ListPending(_ context.Context) ([]model.Enrollment, error) {
	out := []model.Enrollment{}
	for _, e := range r.enrollments {
		if e.Status == model.EnrollmentPending {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) PersistSnapshot(_ context.Context, enrollmentID string, lessons model.ProgressList, materials []string) error {
	e := r.enrollments[enrollmentID]
	e.Lessons = lessons
	e.Materials = materials
	r.persistCount++
	return nil
}

func (r *fakeEnrollmentRepo) ApprovePending(_ context.Context, enrollmentID string) (bool, error) {
	e, ok := r.enrollments[enrollmentID]
	if !ok || e.Status != model.EnrollmentPending {
		return false, nil
	}
	e.Status = model.EnrollmentApproved
	return true, nil
}

func (r *fakeEnrollmentRepo) DeletePending(_ context.Context, enrollmentID string) (bool, error) {
	e, ok := r.enrollments[enrollmentID]
	if !ok || e.Status != model.EnrollmentPending {
		return false, nil
	}
	delete(r.enrollments, enrollmentID)
	return true, nil
}

type fakeStudentRepo struct {
	students map[string]*model.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]*model.Student{}}
}

func (r *fakeStudentRepo) add(studentID string) *model.Student {
	s := &model.Student{
		StudentID: studentID,
		FullName:  "Test Student",
		Email:     studentID + "@example.com",
	}
	r.students[studentID] = s
	return s
}

func (r *fakeStudentRepo) GetStudentByID(_ context.Context, studentID string) (*model.Student, error) {
	s, ok := r.students[studentID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) AddEnrollmentRef(_ context.Context, studentID, enrollmentID string) error {
	s := r.students[studentID]
	if !containsID(s.Enrollments, enrollmentID) {
		s.Enrollments = append(s.Enrollments, enrollmentID)
	}
	return nil
}

func (r *fakeStudentRepo) GrantMaterial(_ context.Context, studentID, materialID string) error {
	s := r.students[studentID]
	if !containsID(s.Materials, materialID) {
		s.Materials = append(s.Materials, materialID)
	}
	return nil
}

func (r *fakeStudentRepo) UpdatePhotoURL(_ context.Context, studentID, photoURL string) error {
	r.students[studentID].PhotoURL = photoURL
	return nil
}

type fakeMaterialRepo struct {
	materials map[string]*model.Material
	purchases map[string]*model.MaterialPurchase
	nextID    int
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: map[string]*model.Material{}, purchases: map[string]*model.MaterialPurchase{}}
}

func (r *fakeMaterialRepo) CreateMaterial(_ context.Context, m *model.Material) error {
	r.nextID++
	m.MaterialID = fmt.Sprintf("material-%d", r.nextID)
	stored := *m
	r.materials[m.MaterialID] = &stored
	return nil
}

func (r *fakeMaterialRepo) GetMaterialByID(_ context.Context, materialID string) (*model.Material, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMaterialRepo) ListMaterials(_ context.Context) ([]model.Material, error) {
	out := []model.Material{}
	for _, m := range r.materials {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMaterialRepo) ListFreeMaterials(_ context.Context) ([]model.Material, error) {
	out := []model.Material{}
	for _, m := range r.materials {
		if m.AccessControl == model.AccessFree {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) UpdateMaterial(_ context.Context, m *model.Material) error {
	stored := *m
	r.materials[m.MaterialID] = &stored
	return nil
}

func (r *fakeMaterialRepo) DeleteMaterial(_ context.Context, materialID string) (bool, error) {
	if _, ok := r.materials[materialID]; !ok {
		return false, nil
	}
	delete(r.materials, materialID)
	return true, nil
}

func (r *fakeMaterialRepo) CreatePurchase(_ context.Context, p *model.MaterialPurchase) error {
	for _, existing := range r.purchases {
		if existing.StudentID == p.StudentID && existing.MaterialID == p.MaterialID {
			return repository.ErrDuplicatePurchase
		}
	}
	r.nextID++
	p.PurchaseID = fmt.Sprintf("purchase-%d", r.nextID)
	stored := *p
	r.purchases[p.PurchaseID] = &stored
	return nil
}

func (r *fakeMaterialRepo) GetPurchaseByID(_ context.Context, purchaseID string) (*model.MaterialPurchase, error) {
	p, ok := r.purchases[purchaseID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeMaterialRepo) ListPendingPurchases(_ context.Context) ([]model.MaterialPurchase, error) {
	out := []model.MaterialPurchase{}
	for _, p := range r.purchases {
		if p.Status == model.EnrollmentPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) ApprovePendingPurchase(_ context.Context, purchaseID string) (bool, error) {
	p, ok := r.purchases[purchaseID]
	if !ok || p.Status != model.EnrollmentPending {
		return false, nil
	}
	p.Status = model.EnrollmentApproved
	return true, nil
}

type fakeQueue struct {
	sent [][]byte
}

func (q *fakeQueue) Send(_ context.Context, _ string, payload []byte) error {
	q.sent = append(q.sent, payload)
	return nil
}
