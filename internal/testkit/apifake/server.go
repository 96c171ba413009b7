// Package apifake serves an in-memory stand-in for the Avasar REST API so
// portal tests can run real HTTP round trips.
package apifake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/api"
)

// Code is the one-time code every verify-otp call accepts.
const Code = "123456"

type account struct {
	user     api.User
	password string
}

// Server is a lightweight fake of the backend REST API.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]string   // token to email
	sends    map[string]int
	contacts []api.ContactMessage
	invites  []api.Invite
	nextID   int

	// Income, Team, and Rank are returned verbatim by the user endpoints.
	Income api.IncomeSummary
	Team   api.TeamSummary
	Rank   api.RankSummary
	Stats  api.AdminStats
}

// New starts a fake API and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		sends:    map[string]int{},
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the API base URL, including the /api root.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// AddUser seeds an account and returns its bearer token.
func (s *Server) AddUser(user api.User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.create(&user, password)
	return "tok-" + user.Username
}

// Sends reports how many codes were sent to email.
func (s *Server) Sends(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends[strings.ToLower(email)]
}

// User returns the stored account for email.
func (s *Server) User(email string) (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return api.User{}, false
	}
	return acct.user, true
}

// Contacts returns the contact submissions received so far.
func (s *Server) Contacts() []api.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ContactMessage(nil), s.contacts...)
}

// create stores user; callers hold mu.
func (s *Server) create(user *api.User, password string) {
	s.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("u%d", s.nextID)
	}
	if user.Role == "" {
		user.Role = "user"
	}
	if user.ReferralCode == "" {
		user.ReferralCode = strings.ToUpper(user.Username)
	}
	if user.Rank == "" {
		user.Rank = "Starter"
	}
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	}
	email := strings.ToLower(user.Email)
	s.accounts[email] = &account{user: *user, password: password}
	s.tokens["tok-"+user.Username] = email
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/send-otp", s.handleSendOTP)
	mux.HandleFunc("POST /api/auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("POST /api/auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("GET /api/auth/check-username", s.handleCheckUsername)
	mux.HandleFunc("GET /api/auth/referral/{code}", s.handleReferral)
	mux.HandleFunc("POST /api/contact", s.handleContact)

	mux.HandleFunc("GET /api/users/profile", s.authed(s.handleProfile))
	mux.HandleFunc("PUT /api/users/profile", s.authed(s.handleUpdateProfile))
	mux.HandleFunc("POST /api/users/upload-photo", s.authed(s.handleUploadPhoto))
	mux.HandleFunc("GET /api/users/team", s.authed(func(w http.ResponseWriter, _ *http.Request, _ *account) {
		writeJSON(w, http.StatusOK, s.Team)
	}))
	mux.HandleFunc("GET /api/users/income", s.authed(func(w http.ResponseWriter, _ *http.Request, _ *account) {
		writeJSON(w, http.StatusOK, s.Income)
	}))
	mux.HandleFunc("GET /api/users/rank", s.authed(func(w http.ResponseWriter, _ *http.Request, _ *account) {
		writeJSON(w, http.StatusOK, s.Rank)
	}))
	mux.HandleFunc("POST /api/users/invite", s.authed(s.handleInvite))

	mux.HandleFunc("GET /api/admin/stats", s.admin(func(w http.ResponseWriter, _ *http.Request, _ *account) {
		writeJSON(w, http.StatusOK, s.Stats)
	}))
	mux.HandleFunc("GET /api/admin/users", s.admin(s.handleAdminUsers))
	mux.HandleFunc("PUT /api/admin/users/{id}/status", s.admin(s.handleUserStatus))
	mux.HandleFunc("GET /api/admin/contacts", s.admin(s.handleAdminContacts))
	mux.HandleFunc("PUT /api/admin/contacts/{id}/status", s.admin(s.handleContactStatus))
	return mux
}

type accountHandler func(http.ResponseWriter, *http.Request, *account)

func (s *Server) authed(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		s.mu.Lock()
		acct := s.accounts[s.tokens[token]]
		s.mu.Unlock()
		if acct == nil {
			writeMessage(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next(w, r, acct)
	}
}

func (s *Server) admin(next accountHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, acct *account) {
		if acct.user.Role != "admin" {
			writeMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r, acct)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if !decode(w, r, &creds) {
		return
	}
	s.mu.Lock()
	acct := s.accounts[strings.ToLower(creds.Email)]
	s.mu.Unlock()
	if acct == nil || acct.password != creds.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: "tok-" + acct.user.Username, User: acct.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.accounts[strings.ToLower(req.Email)]; taken {
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	}
	if s.usernameTaken(req.Username) {
		writeMessage(w, http.StatusConflict, "Username is already taken")
		return
	}
	user := api.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		SponsorID: req.SponsorID,
		IsActive:  true,
	}
	s.create(&user, req.Password)
	writeJSON(w, http.StatusCreated, api.AuthResponse{Token: "tok-" + user.Username, User: user})
}

func (s *Server) usernameTaken(username string) bool {
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.user.Username, username) {
			return true
		}
	}
	return false
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.sends[strings.ToLower(req.Email)]++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.OTP != Code {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[strings.ToLower(req.Email)]
	if acct == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	acct.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	taken := s.usernameTaken(r.URL.Query().Get("username"))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"available": !taken})
}

func (s *Server) handleReferral(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.user.ReferralCode, code) {
			writeJSON(w, http.StatusOK, map[string]api.Sponsor{"sponsor": {
				ID:           acct.user.ID,
				Username:     acct.user.Username,
				FirstName:    acct.user.FirstName,
				LastName:     acct.user.LastName,
				ReferralCode: acct.user.ReferralCode,
			}})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Invalid referral code")
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req api.ContactRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	s.nextID++
	s.contacts = append(s.contacts, api.ContactMessage{
		ID:        fmt.Sprintf("c%d", s.nextID),
		Name:      req.Name,
		Email:     req.Email,
		Message:   req.Message,
		Status:    "new",
		CreatedAt: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, acct *account) {
	s.mu.Lock()
	user := acct.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]api.User{"user": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, acct *account) {
	var update api.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}
	s.mu.Lock()
	acct.user.FirstName = update.FirstName
	acct.user.LastName = update.LastName
	acct.user.Phone = update.Phone
	acct.user.Email = update.Email
	user := acct.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]api.User{"user": user})
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request, acct *account) {
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	_ = file.Close()
	s.mu.Lock()
	acct.user.ProfilePhoto = "/uploads/" + header.Filename
	user := acct.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.PhotoResult{User: user, PhotoURL: user.ProfilePhoto})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, _ *account) {
	var invite api.Invite
	if !decode(w, r, &invite) {
		return
	}
	s.mu.Lock()
	s.invites = append(s.invites, invite)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, _ *account) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	users := make([]api.User, 0, len(s.accounts))
	for _, acct := range s.accounts {
		u := acct.user
		if search != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.Email), search) {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		users = append(users, u)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]api.User{"users": users})
}

func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request, _ *account) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.user.ID == id {
			acct.user.Status = req.Status
			acct.user.IsActive = req.Status == "active"
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "User not found")
}

func (s *Server) handleAdminContacts(w http.ResponseWriter, r *http.Request, _ *account) {
	status := r.URL.Query().Get("status")
	s.mu.Lock()
	out := make([]api.ContactMessage, 0, len(s.contacts))
	for _, c := range s.contacts {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string][]api.ContactMessage{"contacts": out})
}

func (s *Server) handleContactStatus(w http.ResponseWriter, r *http.Request, _ *account) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts[i].Status = req.Status
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "Contact not found")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
