package providers

import (
	"context"

	"crm-ad-sync/internal/domain"
)

// CRMStore is the slice of the CRM client the pipeline needs.
type CRMStore interface {
	ListEnabledUsers(ctx context.Context) ([]domain.CRMUser, error)
	UpdateUser(ctx context.Context, id string, payload map[string]string) error
}

// DirectoryLookup resolves a domain account name to its AD attributes.
// A nil result with nil error means the directory has no matching entry.
type DirectoryLookup interface {
	RetrieveUserProperties(ctx context.Context, domainAccountName string) (*domain.DirectoryUser, error)
}
