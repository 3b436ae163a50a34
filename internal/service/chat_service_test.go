package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"pathshala/internal/logger"
	"pathshala/internal/model"
)

type fakeClassRepo struct {
	classes map[string]*model.Class
	nextID  int
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{classes: map[string]*model.Class{}}
}

func (r *fakeClassRepo) CreateClass(_ context.Context, c *model.Class) error {
	r.nextID++
	c.ClassID = fmt.Sprintf("class-%d", r.nextID)
	stored := *c
	r.classes[c.ClassID] = &stored
	return nil
}

func (r *fakeClassRepo) GetClassByID(_ context.Context, classID string) (*model.Class, error) {
	c, ok := r.classes[classID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeClassRepo) ListByCourses(_ context.Context, courseIDs []string) ([]model.Class, error) {
	out := []model.Class{}
	for _, c := range r.classes {
		if containsID(courseIDs, c.CourseID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClassRepo) ListActiveLiveByCourses(_ context.Context, courseIDs []string) ([]model.Class, error) {
	out := []model.Class{}
	for _, c := range r.classes {
		if c.IsActiveLive && containsID(courseIDs, c.CourseID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClassRepo) UpdateClass(_ context.Context, c *model.Class) error {
	stored := *c
	r.classes[c.ClassID] = &stored
	return nil
}

func (r *fakeClassRepo) SetActiveLive(_ context.Context, classID string, active bool) error {
	r.classes[classID].IsActiveLive = active
	return nil
}

func (r *fakeClassRepo) DeleteClass(_ context.Context, classID string) (bool, error) {
	if _, ok := r.classes[classID]; !ok {
		return false, nil
	}
	delete(r.classes, classID)
	return true, nil
}

type fakeMessageRepo struct {
	messages []model.Message
	nextID   int
}

func (r *fakeMessageRepo) CreateMessage(_ context.Context, m *model.Message) error {
	r.nextID++
	m.MessageID = fmt.Sprintf("msg-%d", r.nextID)
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) ListByClass(_ context.Context, classID string, limit int) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range r.messages {
		if m.ClassID == classID {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakePublisher struct {
	published [][]byte
	topics    []string
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	p.topics = append(p.topics, topic)
	p.published = append(p.published, payload)
	return fmt.Sprintf("pub-%d", len(p.published)), nil
}

type chatFixture struct {
	svc            ChatService
	classRepo      *fakeClassRepo
	messageRepo    *fakeMessageRepo
	enrollmentRepo *fakeEnrollmentRepo
	publisher      *fakePublisher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	classRepo := newFakeClassRepo()
	messageRepo := &fakeMessageRepo{}
	enrollmentRepo := newFakeEnrollmentRepo()
	publisher := &fakePublisher{}
	svc := NewChatService(messageRepo, classRepo, enrollmentRepo, publisher, "class-chat", logger.New())
	return &chatFixture{
		svc:            svc,
		classRepo:      classRepo,
		messageRepo:    messageRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
	}
}

func (f *chatFixture) seedClass(t *testing.T, courseID string) *model.Class {
	t.Helper()
	class := &model.Class{Title: "Evening Live", CourseID: courseID, Type: model.ClassLive}
	if err := f.classRepo.CreateClass(context.Background(), class); err != nil {
		t.Fatalf("seeding class: %v", err)
	}
	return class
}

func (f *chatFixture) enroll(t *testing.T, studentID, courseID, status string) {
	t.Helper()
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID, Status: status}
	if err := f.enrollmentRepo.CreateEnrollment(context.Background(), e); err != nil {
		t.Fatalf("seeding enrollment: %v", err)
	}
}

func TestPostMessagePublishes(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	class := f.seedClass(t, "course-1")
	f.enroll(t, "s1", "course-1", model.EnrollmentApproved)

	msgID, err := f.svc.PostMessage(ctx, "s1", class.ClassID, "hello class")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if msgID == "" {
		t.Fatal("expected a message ID")
	}
	if len(f.publisher.published) != 1 || f.publisher.topics[0] != "class-chat" {
		t.Fatal("expected one publish on the chat topic")
	}

	var wire map[string]string
	if err := json.Unmarshal(f.publisher.published[0], &wire); err != nil {
		t.Fatalf("unmarshaling published payload: %v", err)
	}
	if wire["class_id"] != class.ClassID || wire["student_id"] != "s1" || wire["content"] != "hello class" {
		t.Fatalf("unexpected payload: %v", wire)
	}

	// nothing is persisted until the push subscription delivers
	if len(f.messageRepo.messages) != 0 {
		t.Fatal("expected no persisted message before push delivery")
	}
}

func TestPostMessageRequiresApprovedEnrollment(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	class := f.seedClass(t, "course-1")
	f.enroll(t, "s1", "course-1", model.EnrollmentPending)

	if _, err := f.svc.PostMessage(ctx, "s1", class.ClassID, "hi"); err != ErrNotEnrolled {
		t.Fatalf("expected ErrNotEnrolled for a pending enrollment, got %v", err)
	}
	if _, err := f.svc.PostMessage(ctx, "s2", class.ClassID, "hi"); err != ErrNotEnrolled {
		t.Fatalf("expected ErrNotEnrolled for a stranger, got %v", err)
	}
	if _, err := f.svc.PostMessage(ctx, "s1", "missing", "hi"); err != ErrClassNotFound {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
}

func TestHandleIncomingPersists(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	payload, _ := json.Marshal(map[string]string{
		"class_id":   "class-1",
		"student_id": "s1",
		"content":    "hello class",
	})
	message, err := f.svc.HandleIncoming(ctx, payload)
	if err != nil {
		t.Fatalf("HandleIncoming: %v", err)
	}
	if message.MessageID == "" || message.Content != "hello class" {
		t.Fatalf("unexpected persisted message: %+v", message)
	}
	if len(f.messageRepo.messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(f.messageRepo.messages))
	}

	if _, err := f.svc.HandleIncoming(ctx, []byte("not json")); err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}

func TestListMessagesClampsLimit(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	class := f.seedClass(t, "course-1")
	f.enroll(t, "s1", "course-1", model.EnrollmentApproved)

	for i := 0; i < 60; i++ {
		payload, _ := json.Marshal(map[string]string{"class_id": class.ClassID, "student_id": "s1", "content": fmt.Sprintf("m%d", i)})
		if _, err := f.svc.HandleIncoming(ctx, payload); err != nil {
			t.Fatalf("HandleIncoming: %v", err)
		}
	}

	messages, err := f.svc.ListMessages(ctx, "s1", class.ClassID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 50 {
		t.Fatalf("expected the default limit of 50, got %d", len(messages))
	}
}
