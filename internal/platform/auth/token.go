// Package auth implements token issuance and validation for the API.
// Tokens are HS256 JWTs signed with a locally configured secret; the
// clinic runs standalone and is its own identity provider.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles understood by the API.
const (
	RoleAdmin  = "ADMIN"
	RoleDoctor = "DOCTOR"
	RoleStaff  = "STAFF"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDoctor || role == RoleStaff
}

type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	DoctorID *int64 `json:"doctor_id,omitempty"`
	StaffID  *int64 `json:"staff_id,omitempty"`
}

// TokenIssuer signs and parses API tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Issue signs a token for the given account. doctorID and staffID are
// optional profile links carried in the claims so downstream handlers
// can scope queries without a lookup.
func (ti *TokenIssuer) Issue(userID int64, role, name string, doctorID, staffID *int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
		},
		UserID:   userID,
		Role:     role,
		Name:     name,
		DoctorID: doctorID,
		StaffID:  staffID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
func (ti *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !ValidRole(claims.Role) {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}
