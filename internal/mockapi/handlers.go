package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/tenants"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	User         sessions.Identity `json:"user"`
	Companies    []tenants.Company `json:"companies,omitempty"`
	Branches     []tenants.Branch  `json:"branches,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type switchRequest struct {
	CompanyID string   `json:"companyId"`
	BranchIDs []string `json:"branchIds"`
}

// WhoAmI echoes the authenticated user and the tenant headers of the request.
type WhoAmI struct {
	User      sessions.Identity `json:"user"`
	CompanyID string            `json:"companyId,omitempty"`
	BranchIDs []string          `json:"branchIds,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	// TokenCompanyID is the company the access token was scoped to.
	TokenCompanyID string `json:"tokenCompanyId,omitempty"`
}

// Employee is the sample business resource scoped to a company.
type Employee struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	BranchID  string `json:"branchId,omitempty"`
	Name      string `json:"name"`
}

// LoginHandler checks the password and issues an access and refresh token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid_request", "malformed login body", http.StatusBadRequest)
			return
		}

		user, err := s.users.byUsername(req.Username)
		if err != nil || !CheckPasswordHash(req.Password, user.PasswordHash) {
			writeJSONError(w, "invalid_credentials", "invalid username or password", http.StatusUnauthorized)
			return
		}

		companies := s.companiesFor(user)
		var companyID string
		var branches []tenants.Branch
		if len(companies) == 1 {
			companyID = companies[0].ID
			branches = companies[0].Branches
		}

		access, err := s.access.issue(user.ID, companyID, nil)
		if err != nil {
			s.logger.Err(err).Msg("[Server LoginHandler] issue access token")
			writeJSONError(w, "internal_error", "failed to issue token", http.StatusInternalServerError)
			return
		}
		refresh, err := s.refresh.create(user.ID, companyID, nil)
		if err != nil {
			s.logger.Err(err).Msg("[Server LoginHandler] create refresh token")
			writeJSONError(w, "internal_error", "failed to issue token", http.StatusInternalServerError)
			return
		}

		resp := loginResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         user.Identity(),
			Companies:    companies,
			Branches:     branches,
		}
		if s.cookie {
			s.setRefreshCookie(w, refresh)
			resp.RefreshToken = ""
		}
		s.logger.Info().Str("user", user.Username).Msg("login")
		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshHandler exchanges a refresh token for a new access token, rotating
// the refresh token when configured to.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		if d := time.Duration(s.refreshDelay.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if s.failRefresh.Load() {
			writeJSONError(w, "internal_error", "refresh unavailable", http.StatusInternalServerError)
			return
		}

		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSONError(w, "invalid_request", "malformed refresh body", http.StatusBadRequest)
			return
		}
		token := req.RefreshToken
		fromCookie := false
		if token == "" {
			if c, err := r.Cookie(refreshCookieName); err == nil {
				token, fromCookie = c.Value, true
			}
		}
		if token == "" {
			writeJSONError(w, "invalid_grant", "missing refresh token", http.StatusUnauthorized)
			return
		}

		stored, next, err := s.refresh.use(token, s.rotate)
		if err != nil {
			writeJSONError(w, "invalid_grant", err.Error(), http.StatusUnauthorized)
			return
		}
		access, err := s.access.issue(stored.UserID, stored.CompanyID, stored.BranchIDs)
		if err != nil {
			s.logger.Err(err).Msg("[Server RefreshHandler] issue access token")
			writeJSONError(w, "internal_error", "failed to issue token", http.StatusInternalServerError)
			return
		}

		resp := tokenResponse{AccessToken: access}
		if next != token {
			if fromCookie {
				s.setRefreshCookie(w, next)
			} else {
				resp.RefreshToken = next
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SwitchHandler issues an access token scoped to a company and branches.
func (s *Server) SwitchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req switchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CompanyID == "" {
			writeJSONError(w, "invalid_request", "companyId is required", http.StatusBadRequest)
			return
		}

		user := userFromContext(r.Context())
		if !user.HasCompany(req.CompanyID) {
			writeJSONError(w, "forbidden", "not a member of company", http.StatusForbidden)
			return
		}
		company, err := s.tenants.Get(req.CompanyID)
		if errors.Is(err, autherrors.ErrTenantNotFound) {
			writeJSONError(w, "forbidden", "unknown company", http.StatusForbidden)
			return
		}
		if err != nil {
			writeJSONError(w, "server_error", err.Error(), http.StatusInternalServerError)
			return
		}
		for _, b := range req.BranchIDs {
			if !company.HasBranch(b) {
				writeJSONError(w, "forbidden", "unknown branch "+b, http.StatusForbidden)
				return
			}
		}

		access, err := s.access.issue(user.ID, req.CompanyID, req.BranchIDs)
		if err != nil {
			s.logger.Err(err).Msg("[Server SwitchHandler] issue access token")
			writeJSONError(w, "internal_error", "failed to issue token", http.StatusInternalServerError)
			return
		}
		resp := tokenResponse{AccessToken: access}
		if s.rotate {
			refresh, err := s.refresh.create(user.ID, req.CompanyID, req.BranchIDs)
			if err != nil {
				s.logger.Err(err).Msg("[Server SwitchHandler] create refresh token")
				writeJSONError(w, "internal_error", "failed to issue token", http.StatusInternalServerError)
				return
			}
			if s.cookie {
				s.setRefreshCookie(w, refresh)
			} else {
				resp.RefreshToken = refresh
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) WhoAmIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())
		resp := WhoAmI{
			User:      user.Identity(),
			CompanyID: r.Header.Get(tenants.HeaderCompanyID),
			BranchIDs: tenants.ParseBranchHeader(r.Header.Get(tenants.HeaderBranchID)),
			RequestID: r.Header.Get("X-Request-ID"),
		}
		if claims := claimsFromContext(r.Context()); claims != nil {
			resp.TokenCompanyID = claims.CompanyID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) CompaniesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.companiesFor(userFromContext(r.Context())))
	}
}

func (s *Server) ListEmployeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := tenantFromContext(r.Context())

		s.employeesLock.Lock()
		all := slices.Clone(s.employees[sel.CompanyID])
		s.employeesLock.Unlock()

		employees := make([]Employee, 0, len(all))
		for _, e := range all {
			if len(sel.BranchIDs) == 0 || slices.Contains(sel.BranchIDs, e.BranchID) {
				employees = append(employees, e)
			}
		}
		writeJSON(w, http.StatusOK, employees)
	}
}

func (s *Server) CreateEmployeeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := tenantFromContext(r.Context())

		var e Employee
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil || strings.TrimSpace(e.Name) == "" {
			writeJSONError(w, "invalid_request", "name is required", http.StatusBadRequest)
			return
		}
		if e.BranchID == "" && len(sel.BranchIDs) > 0 {
			e.BranchID = sel.BranchIDs[0]
		}
		if e.BranchID != "" && len(sel.BranchIDs) > 0 && !slices.Contains(sel.BranchIDs, e.BranchID) {
			writeJSONError(w, "forbidden", "branch not selected", http.StatusForbidden)
			return
		}
		e.ID = uuid.New().String()
		e.CompanyID = sel.CompanyID

		s.employeesLock.Lock()
		s.employees[sel.CompanyID] = append(s.employees[sel.CompanyID], e)
		s.employeesLock.Unlock()

		writeJSON(w, http.StatusCreated, e)
	}
}

// PreflightHandler answers CORS preflight requests. The headers are written by
// CorsMiddleware.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) companiesFor(user *User) []tenants.Company {
	if user == nil {
		return nil
	}
	companies := make([]tenants.Company, 0, len(user.CompanyIDs))
	for _, id := range user.CompanyIDs {
		c, err := s.tenants.Get(id)
		if err != nil {
			s.logger.Warn().Str("company", id).Msg("user references unknown company")
			continue
		}
		companies = append(companies, *c)
	}
	return companies
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     RouteAuthRefresh,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(refreshTokenTTL.Seconds()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
