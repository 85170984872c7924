package adapters

import (
	"context"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin/types"
	identityModels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
)

// IdentityLister is the interface that identity stores implement.
type IdentityLister interface {
	ListAll(ctx context.Context) ([]identityModels.Identity, error)
}

// IdentityStoreAdapter adapts an identity store to admin's IdentitySource interface.
type IdentityStoreAdapter struct {
	store IdentityLister
}

// NewIdentityStoreAdapter creates a new adapter wrapping an identity store.
func NewIdentityStoreAdapter(store IdentityLister) *IdentityStoreAdapter {
	return &IdentityStoreAdapter{store: store}
}

// ListIdentities returns all identities mapped to admin types. Descriptors are dropped.
func (a *IdentityStoreAdapter) ListIdentities(ctx context.Context) ([]types.ExportedIdentity, error) {
	identities, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]types.ExportedIdentity, len(identities))
	for i := range identities {
		result[i] = mapIdentity(&identities[i])
	}
	return result, nil
}

func mapIdentity(i *identityModels.Identity) types.ExportedIdentity {
	return types.ExportedIdentity{
		Aadhaar:      i.NationalID.String(),
		Name:         i.Name,
		Phone:        i.Phone.String(),
		VoterID:      i.LinkedVoterID.String(),
		Constituency: i.Constituency,
		CreatedAt:    i.CreatedAt,
	}
}
