package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Manager fetches platform secrets from Google Secret Manager.
type Manager struct {
	client    *secretmanager.Client
	projectID string
}

// NewManager creates a Manager for the given GCP project.
func NewManager(ctx context.Context, projectID string) (*Manager, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP project ID is not set")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	return &Manager{client: client, projectID: projectID}, nil
}

// Fetch returns the latest version of the named secret.
func (m *Manager) Fetch(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", m.projectID, name)
	result, err := m.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}
	return string(result.Payload.Data), nil
}

// Close releases the underlying client.
func (m *Manager) Close() error {
	return m.client.Close()
}
