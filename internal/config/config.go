package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`

	// Chat fan-out settings
	GCPProjectID                  string `envconfig:"GCP_PROJECT_ID"`
	ChatTopic                     string `envconfig:"CHAT_TOPIC" default:"class-chat"`
	ChatPushEndpointURL           string `envconfig:"CHAT_PUSH_ENDPOINT_URL"`
	PubSubPushServiceAccountEmail string `envconfig:"PUBSUB_PUSH_SERVICE_ACCOUNT_EMAIL"`
	PubSubEmulatorHost            string `envconfig:"PUBSUB_EMULATOR_HOST"`

	// Payment notification worker settings
	ApprovalQueueName           string `envconfig:"APPROVAL_QUEUE_NAME" default:"payment_approved_queue"`
	ApprovalPollTimeoutSec      int    `envconfig:"APPROVAL_POLL_TIMEOUT_SEC" default:"30"`
	ApprovalPollMaxMsg          int    `envconfig:"APPROVAL_POLL_MAX_MSG" default:"1"`
	ApprovalMaxRetries          int    `envconfig:"APPROVAL_MAX_RETRIES" default:"5"`
	ApprovalBackoffInitialSec   int    `envconfig:"APPROVAL_BACKOFF_INITIAL_SEC" default:"1"`
	ApprovalBackoffMaxSec       int    `envconfig:"APPROVAL_BACKOFF_MAX_SEC" default:"60"`
	ApprovalDeadLetterQueueName string `envconfig:"APPROVAL_DEAD_LETTER_QUEUE_NAME" default:"payment_approved_queue_dlq"`

	// Email settings. When SENDGRID_API_KEY is empty and a GCP project is
	// configured, the key is fetched from Secret Manager instead.
	SendGridAPIKey        string `envconfig:"SENDGRID_API_KEY"`
	SendGridAPIKeySecret  string `envconfig:"SENDGRID_API_KEY_SECRET" default:"sendgrid-api-key"`
	EmailFromAddress      string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@pathshala.app"`
	EmailFromName         string `envconfig:"EMAIL_FROM_NAME" default:"Pathshala"`
	PaymentsSenderAccount string `envconfig:"PAYMENTS_SENDER_ACCOUNT" default:"admin"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
