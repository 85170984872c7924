package admin

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/admin/types"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit"
	auditstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/audit/store"
	ballotstore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/ballot/store"
	registrystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/store"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	adminmw "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/admin"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/testutil"
)

type stubIdentities struct {
	users []types.ExportedIdentity
	err   error
}

func (s stubIdentities) ListIdentities(context.Context) ([]types.ExportedIdentity, error) {
	return s.users, s.err
}

func seededSources(t *testing.T) (*registrystore.InMemory, *ballotstore.InMemory) {
	t.Helper()
	ctx := context.Background()
	voters := registrystore.NewInMemory()
	_, err := voters.Seed(ctx, registrystore.DefaultVoters())
	require.NoError(t, err)
	ballot := ballotstore.NewInMemory()
	_, err = ballot.Seed(ctx, ballotstore.DefaultParties())
	require.NoError(t, err)
	return voters, ballot
}

func TestExportGathersEveryDataset(t *testing.T) {
	voters, ballot := seededSources(t)
	audits := auditstore.NewInMemory()
	svc, err := NewService(
		stubIdentities{users: []types.ExportedIdentity{{Aadhaar: "123412341234", Name: "Asha"}}},
		voters, ballot,
		WithAuditPublisher(audit.NewPublisher(audits)),
	)
	require.NoError(t, err)

	snap, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.Voters, 5)
	assert.Len(t, snap.Parties, 4)
	assert.NotNil(t, snap.Votes)
	assert.Empty(t, snap.Votes)

	events, err := audits.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionDataExported, events[0].Action)
}

func TestExportFailsWhenAnySourceFails(t *testing.T) {
	voters, ballot := seededSources(t)
	svc, err := NewService(stubIdentities{err: errors.New("db down")}, voters, ballot)
	require.NoError(t, err)

	_, err = svc.Export(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestExportRoute(t *testing.T) {
	voters, ballot := seededSources(t)
	svc, err := NewService(stubIdentities{}, voters, ballot)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(string(hash), logger))
		NewHandler(svc, logger).Register(r)
	})

	t.Run("without token", func(t *testing.T) {
		rec := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/api/export_db"))
		testutil.AssertStatus(t, rec, http.StatusForbidden)
	})

	t.Run("with token", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/api/export_db")
		req.Header.Set("X-Admin-Token", "s3cret")
		rec := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "descriptor")

		resp := testutil.UnmarshalResponse[ExportResponse](t, rec)
		assert.Empty(t, resp.Users)
		assert.Len(t, resp.Voters, 5)
		assert.Len(t, resp.Parties, 4)
	})
}
