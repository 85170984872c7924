package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/otp/store"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

func newService(t *testing.T, st Store) *Service {
	t.Helper()
	svc, err := New(st, Config{DemoCode: "123456", TTL: 5 * time.Minute}, WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	return svc
}

func TestSendAndVerify(t *testing.T) {
	st := store.NewInMemory()
	svc := newService(t, st)
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), t0)

	issued, err := svc.Send(ctx, "123412341234", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "123456", issued.Code)
	assert.Equal(t, t0.Add(5*time.Minute), issued.ExpiresAt)

	stored, err := st.Get(ctx, "123412341234::9876543210")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", stored, "only the hash is stored")

	t.Run("wrong code does not consume", func(t *testing.T) {
		err := svc.Verify(ctx, "123412341234", "9876543210", "000000")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Equal(t, "invalid or expired otp", dErrors.Message(err))
	})

	t.Run("code is bound to the phone", func(t *testing.T) {
		err := svc.Verify(ctx, "123412341234", "9000000000", "123456")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("correct code verifies once", func(t *testing.T) {
		require.NoError(t, svc.Verify(ctx, "123412341234", "9876543210", "123456"))
		err := svc.Verify(ctx, "123412341234", "9876543210", "123456")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestVerifyAfterExpiry(t *testing.T) {
	svc := newService(t, store.NewInMemory())
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := svc.Send(requestcontext.WithTime(context.Background(), t0), "123412341234", "9876543210")
	require.NoError(t, err)

	later := requestcontext.WithTime(context.Background(), t0.Add(6*time.Minute))
	err = svc.Verify(later, "123412341234", "9876543210", "123456")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(store.NewInMemory(), Config{TTL: time.Minute})
	assert.Error(t, err)
	_, err = New(store.NewInMemory(), Config{DemoCode: "1"})
	assert.Error(t, err)
	_, err = New(nil, Config{DemoCode: "1", TTL: time.Minute})
	assert.Error(t, err)
}
