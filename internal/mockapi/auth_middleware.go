package mockapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/tenants"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated user
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores parsed access token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyTenant stores the tenant selection sent by the client
	ContextKeyTenant ContextKey = "tenant"
)

// RequireAuth is middleware that validates a Bearer access token
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, "unauthorized", "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := s.access.verify(token)
			if err != nil || s.rejectAccess.Load() {
				writeJSONError(w, "unauthorized", "invalid access token", http.StatusUnauthorized)
				return
			}

			user, err := s.users.byID(claims.Subject)
			if err != nil {
				writeJSONError(w, "unauthorized", "unknown user", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireTenant reads the tenant headers, checks the user belongs to the
// company and that the branches are the company's.
func (s *Server) RequireTenant() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sel := tenants.Selection{
				CompanyID: r.Header.Get(tenants.HeaderCompanyID),
				BranchIDs: tenants.ParseBranchHeader(r.Header.Get(tenants.HeaderBranchID)),
			}
			if sel.CompanyID == "" {
				writeJSONError(w, "invalid_request", "missing "+tenants.HeaderCompanyID, http.StatusBadRequest)
				return
			}

			user := userFromContext(r.Context())
			if user == nil || !user.HasCompany(sel.CompanyID) {
				writeJSONError(w, "forbidden", "not a member of company", http.StatusForbidden)
				return
			}
			company, err := s.tenants.Get(sel.CompanyID)
			if err != nil {
				writeJSONError(w, "forbidden", "unknown company", http.StatusForbidden)
				return
			}
			for _, b := range sel.BranchIDs {
				if !company.HasBranch(b) {
					writeJSONError(w, "forbidden", "unknown branch "+b, http.StatusForbidden)
					return
				}
			}

			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyTenant, sel)))
		}
	}
}

func userFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ContextKeyUser).(*User)
	return u
}

func claimsFromContext(ctx context.Context) *AccessClaims {
	c, _ := ctx.Value(ContextKeyClaims).(*AccessClaims)
	return c
}

func tenantFromContext(ctx context.Context) tenants.Selection {
	sel, _ := ctx.Value(ContextKeyTenant).(tenants.Selection)
	return sel
}
