package adapters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	identityModels "github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/models"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/store"
)

func TestListIdentitiesOmitsDescriptor(t *testing.T) {
	st := store.NewInMemory()
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, st.CreateIfAbsent(context.Background(), &identityModels.Identity{
		NationalID: "123412341234",
		Name:       "Asha",
		Phone:      "9876543210",
		Descriptor: biometric.Descriptor{0.25, 0.5, 0.75},
		CreatedAt:  created,
	}))

	out, err := NewIdentityStoreAdapter(st).ListIdentities(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "123412341234", out[0].Aadhaar)
	assert.Equal(t, created, out[0].CreatedAt)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "0.75")
	assert.NotContains(t, string(raw), "descriptor")
	assert.NotContains(t, string(raw), "voterID")
}
