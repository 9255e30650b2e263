package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agentic-hub/hub-core/internal/core/domain"
	"github.com/agentic-hub/hub-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"unsupported provider"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness, checking backing stores where configured
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// OAuth flow endpoints

// handleInitRedirect godoc
// @Summary      Start an OAuth flow (browser)
// @Description  Builds the authorization URL and redirects the browser to the provider
// @Tags         OAuth
// @Param        provider        path   string  true   "Provider name"
// @Param        integration_id  query  string  false  "Target integration"
// @Param        redirect_client query  string  false  "Page to return the browser to"
// @Param        scopes          query  string  false  "Comma-separated categories or scopes"
// @Success      302
// @Failure      400  {object}  ErrorResponse
// @Router       /oauth/init/{provider} [get]
func (s *Server) handleInitRedirect(w http.ResponseWriter, r *http.Request) {
	req := initiateRequestFromQuery(r)

	resp, err := s.oauthService.Initiate(r.Context(), req)
	if err != nil {
		s.writeInitError(w, err)
		return
	}

	recordFlowInitiated(string(req.Provider))
	http.Redirect(w, r, resp.RedirectURL, http.StatusFound)
}

// handleInitJSON godoc
// @Summary      Start an OAuth flow (API)
// @Description  Builds the authorization URL and returns it for the caller to open
// @Tags         OAuth
// @Accept       json
// @Produce      json
// @Param        request  body      driving.InitiateRequest  true  "Flow parameters"
// @Success      200      {object}  driving.InitiateResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /oauth/init/{provider} [post]
func (s *Server) handleInitJSON(w http.ResponseWriter, r *http.Request) {
	var req driving.InitiateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	// The path wins over anything in the body, and query parameters fill
	// gaps so API callers can use either style.
	q := initiateRequestFromQuery(r)
	req.Provider = q.Provider
	if req.IntegrationID == "" {
		req.IntegrationID = q.IntegrationID
	}
	if req.RedirectClient == "" {
		req.RedirectClient = q.RedirectClient
	}
	if len(req.Scopes) == 0 {
		req.Scopes = q.Scopes
	}
	if req.UserID == "" {
		req.UserID = q.UserID
	}
	if !req.Save {
		req.Save = q.Save
	}
	if req.Name == "" {
		req.Name = q.Name
	}

	resp, err := s.oauthService.Initiate(r.Context(), req)
	if err != nil {
		s.writeInitError(w, err)
		return
	}

	recordFlowInitiated(string(req.Provider))
	writeJSON(w, http.StatusOK, resp)
}

func initiateRequestFromQuery(r *http.Request) driving.InitiateRequest {
	q := r.URL.Query()
	save, _ := strconv.ParseBool(q.Get("save"))
	return driving.InitiateRequest{
		Provider:       domain.Provider(strings.ToLower(chi.URLParam(r, "provider"))),
		IntegrationID:  q.Get("integration_id"),
		RedirectClient: q.Get("redirect_client"),
		Scopes:         parseScopesParam(q.Get("scopes")),
		UserID:         userIDFromRequest(r, q.Get("userId")),
		Save:           save,
		Name:           q.Get("name"),
	}
}

// userIDFromRequest prefers an explicit userId parameter, falling back to the
// authenticated token's subject when one is present.
func userIDFromRequest(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.UserID
	}
	return ""
}

// parseScopesParam accepts "a,b", "a b" and a JSON array string; callers
// coming from frontends send all three.
func parseScopesParam(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return arr
		}
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (s *Server) writeInitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedProvider):
		writeError(w, http.StatusBadRequest, "unsupported provider")
	case errors.Is(err, domain.ErrProviderNotConfigured):
		writeError(w, http.StatusBadRequest, "provider not configured")
	default:
		writeError(w, http.StatusInternalServerError, "failed to start oauth flow")
	}
}

// handleCallback godoc
// @Summary      OAuth provider callback
// @Description  Validates the state, exchanges the code and redirects the browser back to the caller
// @Tags         OAuth
// @Param        provider  path   string  true   "Provider name"
// @Param        code      query  string  false  "Authorization code"
// @Param        state     query  string  false  "CSRF state token"
// @Param        error     query  string  false  "Provider error code"
// @Success      302
// @Router       /oauth/{provider}/callback [get]
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := driving.CallbackRequest{
		Provider:         domain.Provider(strings.ToLower(chi.URLParam(r, "provider"))),
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	result, err := s.oauthService.HandleCallback(r.Context(), req)
	if err != nil {
		recordFlowCompleted(string(req.Provider), "error")
		s.redirectCallbackError(w, r, err)
		return
	}

	recordFlowCompleted(string(req.Provider), "success")
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// redirectCallbackError sends the browser back to the frontend with an error
// code. Callbacks are browser navigations, so a JSON body would be a dead end;
// JSON is the fallback only when no client URL is configured.
func (s *Server) redirectCallbackError(w http.ResponseWriter, r *http.Request, err error) {
	code := "auth_failed"
	if errors.Is(err, domain.ErrAccessDenied) {
		code = "access_denied"
	}

	if s.clientURL == "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	target, parseErr := url.Parse(s.clientURL)
	if parseErr != nil {
		writeError(w, http.StatusBadRequest, code)
		return
	}
	q := target.Query()
	q.Set("error", code)
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// Credential retrieval

// handleGetCredential godoc
// @Summary      Retrieve a pending credential (one-time)
// @Description  Returns the parked credential and erases it. A second request with the same ID gets 404.
// @Tags         Credentials
// @Produce      json
// @Param        credentialId  path   string  true   "One-time retrieval ID"
// @Param        save          query  bool    false  "Persist to durable storage"
// @Param        userId        query  string  false  "Owner for the saved record"
// @Param        name          query  string  false  "Label for the saved record"
// @Success      200  {object}  domain.FormattedCredential
// @Failure      404  {object}  ErrorResponse  "Unknown, expired or already retrieved"
// @Router       /oauth/credentials/{credentialId} [get]
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "credentialId")
	q := r.URL.Query()

	opts := driving.FinalizeOptions{
		UserID: userIDFromRequest(r, q.Get("userId")),
		Name:   q.Get("name"),
	}
	if raw := q.Get("save"); raw != "" {
		save, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid save parameter")
			return
		}
		opts.Save = &save
	}

	cred, err := s.credentialService.Finalize(r.Context(), credentialID, opts)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			writeError(w, http.StatusNotFound, "credentials not found or expired")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve credentials")
		return
	}

	writeJSON(w, http.StatusOK, cred)
}

// Catalog endpoints

// handleListProviders godoc
// @Summary      List providers
// @Description  Returns the provider catalog with configured flags, never secrets
// @Tags         OAuth
// @Produce      json
// @Success      200  {array}  domain.ProviderStatus
// @Router       /oauth/providers [get]
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.oauthService.Providers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list providers")
		return
	}
	writeJSON(w, http.StatusOK, providers)
}

// handleProviderScopes godoc
// @Summary      Provider scope catalog
// @Description  Returns default scopes and scope categories for a provider
// @Tags         OAuth
// @Produce      json
// @Param        provider  path  string  true  "Provider name"
// @Success      200  {object}  domain.ScopeCatalog
// @Failure      400  {object}  ErrorResponse
// @Router       /oauth/providers/{provider}/scopes [get]
func (s *Server) handleProviderScopes(w http.ResponseWriter, r *http.Request) {
	provider := domain.Provider(strings.ToLower(chi.URLParam(r, "provider")))

	catalog, err := s.oauthService.ProviderScopes(r.Context(), provider)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedProvider) {
			writeError(w, http.StatusBadRequest, "unsupported provider")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get provider scopes")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// Helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
