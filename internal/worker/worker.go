package worker

import (
	"context"
	"encoding/json"
	"time"

	"pathshala/internal/config"
	"pathshala/internal/mailer"
	"pathshala/internal/model"
	"pathshala/internal/pgmq"
	"pathshala/internal/repository"

	"github.com/rs/zerolog"
)

// approvalJob is the queued payload for a verified payment.
type approvalJob struct {
	Kind          string `json:"kind"` // "enrollment" or "material"
	RecordID      string `json:"record_id"`
	StudentID     string `json:"student_id"`
	ItemID        string `json:"item_id"`
	TransactionID string `json:"transaction_id"`
	PaymentMethod string `json:"payment_method"`
}

// Worker drains the approval queue: each job produces a confirmation email
// and an in-app notification for the paying student.
type Worker struct {
	cfg              *config.Config
	client           *pgmq.Client
	mailer           mailer.Mailer
	studentRepo      repository.StudentRepository
	courseRepo       repository.CourseRepository
	materialRepo     repository.MaterialRepository
	notificationRepo repository.NotificationRepository
	logger           zerolog.Logger
}

// New creates a new Worker
func New(
	cfg *config.Config,
	client *pgmq.Client,
	m mailer.Mailer,
	studentRepo repository.StudentRepository,
	courseRepo repository.CourseRepository,
	materialRepo repository.MaterialRepository,
	notificationRepo repository.NotificationRepository,
	logger zerolog.Logger,
) *Worker {
	return &Worker{
		cfg:              cfg,
		client:           client,
		mailer:           m,
		studentRepo:      studentRepo,
		courseRepo:       courseRepo,
		materialRepo:     materialRepo,
		notificationRepo: notificationRepo,
		logger:           logger.With().Str("worker", "approval").Logger(),
	}
}

// Run starts the approval worker.
func (w *Worker) Run(ctx context.Context) error {
	queue := w.cfg.ApprovalQueueName
	w.logger.Info().Str("queue", queue).Msg("Starting approval worker")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Shutting down approval worker")
			return nil
		default:
		}

		msgs, err := w.client.ReadWithPoll(ctx, queue, w.cfg.ApprovalPollTimeoutSec, w.cfg.ApprovalPollMaxMsg)
		if err != nil {
			w.logger.Error().Err(err).Msg("Error reading approval queue")
			time.Sleep(time.Second)
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		msg := msgs[0]
		w.logger.Info().Int64("msg_id", msg.ID).Msgf("Received approval job: %s", string(msg.Data))

		var job approvalJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			w.logger.Error().Err(err).Msg("Failed to unmarshal approval payload; deleting message")
			w.client.Delete(ctx, queue, []int64{msg.ID})
			continue
		}

		if err := w.process(ctx, job); err != nil {
			w.deadLetter(ctx, msg.Data, job)
		}

		if err := w.client.Delete(ctx, queue, []int64{msg.ID}); err != nil {
			w.logger.Error().Err(err).Msg("Error deleting approval message")
		}
	}
}

// process sends the confirmation email with retry/backoff, then records the
// in-app notification.
func (w *Worker) process(ctx context.Context, job approvalJob) error {
	confirmation, err := w.buildConfirmation(ctx, job)
	if err != nil {
		w.logger.Error().Err(err).Str("record_id", job.RecordID).Msg("Failed to build confirmation")
		return err
	}

	backoff := time.Duration(w.cfg.ApprovalBackoffInitialSec) * time.Second
	var sendErr error
	for attempt := 1; attempt <= w.cfg.ApprovalMaxRetries; attempt++ {
		ctxReq, cancel := context.WithTimeout(ctx, 10*time.Second)
		sendErr = w.mailer.SendPaymentConfirmation(ctxReq, *confirmation)
		cancel()
		if sendErr == nil {
			break
		}
		w.logger.Error().Err(sendErr).Int("attempt", attempt).Msg("Confirmation email failed, retrying")
		time.Sleep(backoff)
		backoff *= 2
		if backoff > time.Duration(w.cfg.ApprovalBackoffMaxSec)*time.Second {
			backoff = time.Duration(w.cfg.ApprovalBackoffMaxSec) * time.Second
		}
	}
	if sendErr != nil {
		w.logger.Warn().
			Int("attempts", w.cfg.ApprovalMaxRetries).
			Str("record_id", job.RecordID).
			Err(sendErr).
			Msg("Exhausted all email retries; moving job to DLQ")
		return sendErr
	}

	notification := &model.Notification{
		SentBy:     w.cfg.PaymentsSenderAccount,
		SentByRole: model.RoleAdmin,
		SentTo:     job.StudentID,
		SentToRole: model.RoleStudent,
		Message:    "Your payment for " + confirmation.ItemTitle + " has been verified.",
	}
	if err := w.notificationRepo.CreateNotification(ctx, notification); err != nil {
		w.logger.Error().Err(err).Str("record_id", job.RecordID).Msg("Failed to create notification")
	}
	return nil
}

func (w *Worker) buildConfirmation(ctx context.Context, job approvalJob) (*mailer.PaymentConfirmation, error) {
	student, err := w.studentRepo.GetStudentByID(ctx, job.StudentID)
	if err != nil {
		return nil, err
	}

	confirmation := &mailer.PaymentConfirmation{
		TransactionID: job.TransactionID,
		PaymentMethod: job.PaymentMethod,
	}
	if student != nil {
		confirmation.StudentEmail = student.Email
		confirmation.StudentName = student.FullName
	}

	switch job.Kind {
	case "material":
		material, err := w.materialRepo.GetMaterialByID(ctx, job.ItemID)
		if err != nil {
			return nil, err
		}
		if material != nil {
			confirmation.ItemTitle = material.Title
			confirmation.Amount = material.Price
		}
	default:
		course, err := w.courseRepo.GetCourseByID(ctx, job.ItemID)
		if err != nil {
			return nil, err
		}
		if course != nil {
			confirmation.ItemTitle = course.Title
			confirmation.Amount = course.Price
			if course.OfferPrice > 0 && course.OfferPrice < course.Price {
				confirmation.Amount = course.OfferPrice
			}
		}
	}
	return confirmation, nil
}

func (w *Worker) deadLetter(ctx context.Context, raw []byte, job approvalJob) {
	dlq := w.cfg.ApprovalDeadLetterQueueName
	if err := w.client.Send(ctx, dlq, raw); err != nil {
		w.logger.Error().Err(err).Str("dlq", dlq).Str("record_id", job.RecordID).Msg("Failed to send message to dead-letter queue")
	}
}
