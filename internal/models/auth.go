package models

import "github.com/golang-jwt/jwt/v5"

// UserRole identifies the caller kind carried in access tokens.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	StudentCI string   `json:"ci"`
	Role      UserRole `json:"role"`
	FullName  string   `json:"nombre"`
	jwt.RegisteredClaims
}
