package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// sessionAudience scopes tokens to the voting API.
const sessionAudience = "e-matdaan-api"

// Claims represents the JWT claims for session tokens issued after face login.
type Claims struct {
	NationalID string `json:"aadhaar"`
	jwt.RegisteredClaims
}

// JWTService handles session token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewJWTService(signingKey string, issuer string, ttl time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// IssueSessionToken signs a token for nationalID valid from now for the
// configured TTL.
func (s *JWTService) IssueSessionToken(nationalID id.NationalID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		NationalID: nationalID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   nationalID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{sessionAudience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signedToken, expiresAt, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := id.ParseNationalID(claims.Subject); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}

	return claims, nil
}
