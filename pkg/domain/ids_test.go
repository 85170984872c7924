package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// TestParseNationalID_SecurityInvariants validates trust boundary parsing.
func TestParseNationalID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "1234\x005678", true},
		{"Oversized input", strings.Repeat("1", 1000), true},
		{"Unicode digits", "１２３４５６７８", true},
		{"Empty string", "", true},
		{"Whitespace only", "   ", true},
		{"Too short", "123", true},

		{"Aadhaar style", "123412341234", false},
		{"Padded with spaces", "  123412341234 ", false},
		{"Alphanumeric", "ABCD1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNationalID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseNationalID_Trims(t *testing.T) {
	id, err := ParseNationalID("  123412341234 ")
	require.NoError(t, err)
	assert.Equal(t, NationalID("123412341234"), id)
}

func TestParseVoterID_PreservesCase(t *testing.T) {
	id, err := ParseVoterID("abc123456")
	require.NoError(t, err)
	assert.Equal(t, VoterID("abc123456"), id)
	assert.NotEqual(t, VoterID("ABC123456"), id)
}

func TestParsePhone(t *testing.T) {
	t.Run("accepts local and international numbers", func(t *testing.T) {
		_, err := ParsePhone("9876543210")
		require.NoError(t, err)
		_, err = ParsePhone("+919876543210")
		require.NoError(t, err)
	})

	t.Run("rejects letters and short numbers", func(t *testing.T) {
		_, err := ParsePhone("98765abc10")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParsePhone("12345")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParsePartyID(t *testing.T) {
	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePartyID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePartyID("not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		u := uuid.New()
		id, err := ParsePartyID(u.String())
		require.NoError(t, err)
		assert.Equal(t, PartyID(u), id)
		assert.Equal(t, u.String(), id.String())
	})
}

func TestNationalIDMasked(t *testing.T) {
	assert.Equal(t, "********1234", NationalID("123412341234").Masked())
	assert.Equal(t, "***", NationalID("123").Masked())
}

func TestPartyIDJSON(t *testing.T) {
	raw := "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	pid, err := ParsePartyID(raw)
	require.NoError(t, err)

	b, err := json.Marshal(map[string]PartyID{"id": pid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw+`"}`, string(b))

	var decoded map[string]PartyID
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, pid, decoded["id"])
}
