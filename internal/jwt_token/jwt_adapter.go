package jwttoken

import (
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	authmw "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.Claims {
	return &authmw.Claims{
		Subject: id.NationalID(claims.Subject),
		JTI:     claims.ID,
	}
}

// JWTServiceAdapter exposes JWTService as the session middleware's validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
