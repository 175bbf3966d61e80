package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalissr/voting-system/internal/audit"
	"github.com/kalissr/voting-system/internal/auth"
	"github.com/kalissr/voting-system/internal/config"
	"github.com/kalissr/voting-system/internal/crypto"
	"github.com/kalissr/voting-system/internal/model"
	"github.com/kalissr/voting-system/internal/ratelimit"
	"github.com/kalissr/voting-system/internal/repository"
)

const SessionCookieName = "auth_token"

type Server struct {
	cfg      config.Config
	store    *repository.Store
	tracker  *auth.Tracker
	limiter  *ratelimit.Limiter
	csrf     *auth.CSRFGuard
	recorder *audit.Recorder
}

func NewServer(cfg config.Config, store *repository.Store, tracker *auth.Tracker, limiter *ratelimit.Limiter, csrfGuard *auth.CSRFGuard, recorder *audit.Recorder) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		tracker:  tracker,
		limiter:  limiter,
		csrf:     csrfGuard,
		recorder: recorder,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Security headers wrap everything, including rate-limited rejections.
	// The limiter runs next so unauthenticated abuse is throttled before it
	// reaches CSRF or credential checks.
	r.Use(securityHeaders)
	r.Use(s.rateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/csrf", s.handleCSRFToken)
	r.Get("/api/institutions", s.handleListInstitutions)
	r.With(s.requireAuth).Get("/api/me", s.handleGetMe)
	r.With(s.requireAuth, s.requireAdmin).Get("/api/admin/applications", s.handleListApplications)
	r.With(s.requireAuth, s.requireAdmin).Get("/api/admin/audit", s.handleListAudit)

	r.Group(func(r chi.Router) {
		r.Use(s.csrfMiddleware)

		r.Post("/api/register", s.handleRegister)
		r.Post("/api/login", s.handleLogin)
		r.With(s.requireAuth).Post("/api/logout", s.handleLogout)
		r.With(s.requireAuth).Post("/api/password", s.handleChangePassword)
		r.With(s.requireAuth).Post("/api/institutions/{institutionID}/vote", s.handleVote)
		r.With(s.requireAuth).Post("/api/applications", s.handleSubmitApplication)
		r.With(s.requireAuth, s.requireAdmin).Post("/api/admin/applications/{applicationID}/approve", s.handleApproveApplication)
		r.With(s.requireAuth, s.requireAdmin).Post("/api/admin/applications/{applicationID}/reject", s.handleRejectApplication)
	})

	return r
}

// Middleware

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := s.limiter.Check(r.Context(), clientIP(r))
		if err != nil {
			log.Printf("rate limit store error: %v", err)
		}
		if !result.Allowed {
			rateLimitedTotal.Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; connect-src 'self'")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if !s.csrf.Validate(r) {
			csrfRejectionsTotal.Inc()
			writeError(w, http.StatusForbidden, "invalid_csrf_token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, cookie.Value)
		if err != nil {
			// Clear the stored token so a corrupted or expired credential
			// is not retried on every request.
			s.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || claims.Role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// optionalClaims resolves the session if one is present; anonymous callers
// get nil without an error. A cookie that fails verification is cleared,
// same as on the authenticated path.
func (s *Server) optionalClaims(w http.ResponseWriter, r *http.Request) *auth.Claims {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, cookie.Value)
	if err != nil {
		s.clearSessionCookie(w)
		return nil
	}
	return claims
}

// Session cookie

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

// CSRF

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.csrf.Issue(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Accounts

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userSummary struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if fields := validateRegister(req); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		// A taken email gets the same response as any other failure so
		// registration cannot be used to enumerate accounts.
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "registration_failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	s.recorder.Record(r.Context(), audit.ActionUserRegister, "account", user.ID, "new account registered", clientIP(r))
	writeJSON(w, http.StatusCreated, userSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validEmail(req.Email) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	ip := clientIP(r)

	locked, err := s.tracker.IsLocked(r.Context(), req.Email)
	if err != nil {
		// Attempt store outage fails closed: without the counter we cannot
		// tell a locked account from an open one.
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if locked {
		loginAttemptsTotal.WithLabelValues("locked").Inc()
		s.recorder.Record(r.Context(), audit.ActionUserLogin, "account", "", "login attempt for locked account: "+req.Email, ip)
		writeError(w, http.StatusForbidden, "account_locked")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordLoginFailure(r.Context(), req.Email, "", "unknown account", ip)
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.recordLoginFailure(r.Context(), req.Email, user.ID, "invalid password", ip)
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	if err := s.tracker.RecordSuccess(r.Context(), req.Email); err != nil {
		log.Printf("attempt purge failed for %s: %v", req.Email, err)
	}

	token, err := auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SessionTokenTTL, user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}
	s.setSessionCookie(w, token)

	loginAttemptsTotal.WithLabelValues("success").Inc()
	action := audit.ActionUserLogin
	if user.Role == model.RoleAdmin {
		action = audit.ActionAdminLogin
	}
	s.recorder.Record(r.Context(), action, "account", user.ID, "successful login", ip)

	writeJSON(w, http.StatusOK, userSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

func (s *Server) recordLoginFailure(ctx context.Context, email, userID, reason, ip string) {
	loginAttemptsTotal.WithLabelValues("failure").Inc()
	nowLocked, err := s.tracker.RecordFailure(ctx, email, ip)
	if err != nil {
		log.Printf("attempt record failed for %s: %v", email, err)
	}
	if nowLocked {
		lockoutsTotal.Inc()
	}
	s.recorder.Record(ctx, audit.ActionUserLogin, "account", userID, "failed login: "+reason, ip)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	s.clearSessionCookie(w)

	action := audit.ActionUserLogout
	if claims.Role == model.RoleAdmin {
		action = audit.ActionAdminLogout
	}
	s.recorder.Record(r.Context(), action, "account", claims.UserID, "", clientIP(r))

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.clearSessionCookie(w)
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, userSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if fields := validateChangePassword(req); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := crypto.CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		writeError(w, http.StatusBadRequest, "current_password_incorrect")
		return
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	action := audit.ActionUserPasswordChange
	if user.Role == model.RoleAdmin {
		action = audit.ActionAdminPasswordChange
	}
	s.recorder.Record(r.Context(), action, "account", user.ID, "", clientIP(r))

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Institutions and votes

type institutionSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Website      *string `json:"website,omitempty"`
	FoundingYear *string `json:"foundingYear,omitempty"`
	Votes        int64   `json:"votes"`
}

type institutionsResponse struct {
	Institutions []institutionSummary `json:"institutions"`
	Voted        []string             `json:"voted"`
}

func (s *Server) handleListInstitutions(w http.ResponseWriter, r *http.Request) {
	ranked, err := s.store.ListApprovedInstitutions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := institutionsResponse{
		Institutions: make([]institutionSummary, 0, len(ranked)),
		Voted:        []string{},
	}
	for _, inst := range ranked {
		resp.Institutions = append(resp.Institutions, institutionSummary{
			ID:           inst.ID,
			Name:         inst.Name,
			Description:  inst.Description,
			Website:      inst.Website,
			FoundingYear: inst.FoundingYear,
			Votes:        inst.Votes,
		})
	}

	if claims := s.optionalClaims(w, r); claims != nil {
		voted, err := s.store.ListVotedInstitutionIDs(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if voted != nil {
			resp.Voted = voted
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	institutionID := chi.URLParam(r, "institutionID")

	inst, err := s.store.GetInstitution(r.Context(), institutionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "institution_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	// Pending and rejected listings are invisible to voters.
	if inst.Status != model.StatusApproved {
		writeError(w, http.StatusNotFound, "institution_not_found")
		return
	}

	vote := model.Vote{
		ID:            uuid.NewString(),
		UserID:        claims.UserID,
		InstitutionID: inst.ID,
		IPAddress:     clientIP(r),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateVote(r.Context(), vote); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "already_voted")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	s.recorder.Record(r.Context(), audit.ActionVoteCast, "vote", claims.UserID, "vote for "+inst.Name, vote.IPAddress)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// Applications

type applicationRequest struct {
	InstitutionName string `json:"institutionName"`
	Description     string `json:"description"`
	Website         string `json:"website"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
	FoundingYear    string `json:"foundingYear"`
}

type applicationSummary struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Website      *string                 `json:"website,omitempty"`
	ContactEmail string                  `json:"contactEmail"`
	ContactPhone *string                 `json:"contactPhone,omitempty"`
	FoundingYear *string                 `json:"foundingYear,omitempty"`
	Status       model.InstitutionStatus `json:"status"`
	CreatedAt    int64                   `json:"createdAt"`
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.InstitutionName = strings.TrimSpace(req.InstitutionName)
	req.Description = strings.TrimSpace(req.Description)
	req.ContactEmail = strings.TrimSpace(strings.ToLower(req.ContactEmail))

	if fields := validateApplication(req); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	pending, err := s.store.HasPendingInstitution(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if pending {
		writeError(w, http.StatusConflict, "application_pending")
		return
	}

	now := time.Now().UTC()
	inst := model.Institution{
		ID:           uuid.NewString(),
		OwnerID:      claims.UserID,
		Name:         req.InstitutionName,
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Website != "" {
		inst.Website = &req.Website
	}
	if req.ContactPhone != "" {
		inst.ContactPhone = &req.ContactPhone
	}
	if req.FoundingYear != "" {
		inst.FoundingYear = &req.FoundingYear
	}

	if err := s.store.CreateInstitution(r.Context(), inst); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	s.recorder.Record(r.Context(), audit.ActionApplicationSubmit, "application", claims.UserID, "application for "+inst.Name, clientIP(r))
	writeJSON(w, http.StatusCreated, mapApplication(inst))
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	status := model.StatusPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := parseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		status = parsed
	}
	limit := parseLimit(r.URL.Query().Get("limit"), 100, 1000)

	institutions, err := s.store.ListInstitutionsByStatus(r.Context(), status, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]applicationSummary, 0, len(institutions))
	for _, inst := range institutions {
		resp = append(resp, mapApplication(inst))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	s.resolveApplication(w, r, model.StatusApproved, audit.ActionApplicationApprove)
}

func (s *Server) handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	s.resolveApplication(w, r, model.StatusRejected, audit.ActionApplicationReject)
}

func (s *Server) resolveApplication(w http.ResponseWriter, r *http.Request, status model.InstitutionStatus, action audit.Action) {
	claims := claimsFromContext(r.Context())
	applicationID := chi.URLParam(r, "applicationID")

	moved, err := s.store.TransitionInstitutionStatus(r.Context(), applicationID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !moved {
		writeError(w, http.StatusNotFound, "application_not_found")
		return
	}

	s.recorder.Record(r.Context(), action, "application", claims.UserID, "application "+applicationID, clientIP(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": strings.ToLower(string(status))})
}

func mapApplication(inst model.Institution) applicationSummary {
	return applicationSummary{
		ID:           inst.ID,
		Name:         inst.Name,
		Description:  inst.Description,
		Website:      inst.Website,
		ContactEmail: inst.ContactEmail,
		ContactPhone: inst.ContactPhone,
		FoundingYear: inst.FoundingYear,
		Status:       inst.Status,
		CreatedAt:    inst.CreatedAt.Unix(),
	}
}

func parseStatus(raw string) (model.InstitutionStatus, error) {
	switch model.InstitutionStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case model.StatusPending:
		return model.StatusPending, nil
	case model.StatusApproved:
		return model.StatusApproved, nil
	case model.StatusRejected:
		return model.StatusRejected, nil
	default:
		return "", errors.New("unknown status")
	}
}

// Audit trail

type auditEntryResponse struct {
	ID        string  `json:"id"`
	Action    string  `json:"action"`
	Resource  string  `json:"resource"`
	UserID    *string `json:"userId,omitempty"`
	Details   *string `json:"details,omitempty"`
	IPAddress string  `json:"ipAddress"`
	CreatedAt int64   `json:"createdAt"`
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 100, 1000)

	entries, err := s.store.ListAuditEntries(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, auditEntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Resource:  entry.Resource,
			UserID:    entry.UserID,
			Details:   entry.Details,
			IPAddress: entry.IPAddress,
			CreatedAt: entry.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Helpers

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// parseLimit reads a positive page-size parameter, falling back on garbage
// and clamping to the ceiling.
func parseLimit(raw string, fallback, ceiling int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	if parsed > ceiling {
		return ceiling
	}
	return parsed
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation_failed",
		"fields": fields,
	})
}
