package authapi

import (
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/tenants"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login. The refresh credential is
// only present in storage deployments.
type LoginResponse struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	User         sessions.Identity `json:"user"`
	Companies    []tenants.Company `json:"companies,omitempty"`
	Branches     []tenants.Branch  `json:"branches,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh. It is empty when the
// refresh credential travels as a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenResponse is returned by the refresh and tenant switch endpoints. A
// missing refresh token means the stored one stays valid.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// SwitchRequest is the body of POST /auth/switch.
type SwitchRequest struct {
	CompanyID string   `json:"companyId"`
	BranchIDs []string `json:"branchIds,omitempty"`
}

// LoginResult is what Client.Login reports back to the caller.
type LoginResult struct {
	Identity  sessions.Identity
	Companies []tenants.Company
	// ReturnTo is the page the user was on before a forced logout, when it
	// was recorded for this same identity.
	ReturnTo string
}
