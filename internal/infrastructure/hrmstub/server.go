// Package hrmstub serves a small stand-in for the HR demo site: the pages,
// markup and redirects the end-to-end scenarios rely on, with in-memory
// sessions.
package hrmstub

import (
	"crypto/rand"
	"embed"
	"encoding/base64"
	"encoding/hex"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	SessionCookie = "orangehrm"
	flashCookie   = "orangehrm_flash"

	prefix        = "/web/index.php"
	loginPath     = prefix + "/auth/login"
	validatePath  = prefix + "/auth/validate"
	logoutPath    = prefix + "/auth/logout"
	dashboardPath = prefix + "/dashboard/index"
	directoryPath = prefix + "/directory/viewDirectory"
	adminPath     = prefix + "/admin/viewSystemUsers"
)

type Employee struct {
	Name     string
	JobTitle string
	Location string
}

type Config struct {
	Username string
	Password string
	Widgets  []string
	// PageSize is how many directory cards fit on one page.
	PageSize  int
	Employees []Employee
}

func DefaultConfig() Config {
	return Config{
		Username: "Admin",
		Password: "admin123",
		Widgets:  []string{"Time at Work", "My Actions", "Quick Launch", "Employees on Leave Today"},
		PageSize: 12,
		Employees: []Employee{
			{"Odis Adalwin", "Chief Executive Officer", "Texas R&D"},
			{"Peter Mac Anderson", "Chief Financial Officer", "New York Sales Office"},
			{"Linda Jane Anderson", "Payroll Administrator", "Texas R&D"},
			{"Rebecca Harmony", "QA Engineer", "Texas R&D"},
			{"Garry White", "QA Lead", "New York Sales Office"},
			{"Russel Hamilton", "Account Assistant", "HQ - CA, USA"},
			{"Fiona Grace", "Social Media Marketer", "HQ - CA, USA"},
			{"Lisa Andrews", "Sales Representative", "New York Sales Office"},
			{"John Smith", "Software Engineer", "Texas R&D"},
			{"Joe Root", "HR Manager", "HQ - CA, USA"},
			{"Sara Tencrady", "IT Manager", "Texas R&D"},
			{"Dominic Chase", "Software Architect", "HQ - CA, USA"},
			{"Charlie Carter", "Support Specialist", "Canadian Regional HQ"},
			{"Kevin Mathews", "Content Specialist", "Canadian Regional HQ"},
		},
	}
}

type Server struct {
	cfg    Config
	log    zerolog.Logger
	tmpl   *template.Template
	router chi.Router

	mu       sync.Mutex
	sessions map[string]string
}

// NewLogger returns the JSON request logger used by the stub.
func NewLogger(name string) zerolog.Logger {
	return httplog.NewLogger(name, httplog.Options{JSON: true, Concise: true})
}

func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultConfig().PageSize
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
		sessions: make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/", redirectTo(loginPath))
	r.Get(prefix, redirectTo(loginPath))
	r.Get(loginPath, s.loginPage)
	r.Post(validatePath, s.validate)
	r.Get(logoutPath, s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get(dashboardPath, s.dashboard)
		r.Get(directoryPath, s.directory)
		r.Get(adminPath, s.admin)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions reports how many sessions are signed in.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type loginView struct {
	Title            string
	Error            string
	Username         string
	UsernameRequired bool
	PasswordRequired bool
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	view := loginView{Title: "Login"}
	if flash := readFlash(w, r); flash != nil {
		view.Error = flash.Get("error")
		view.Username = flash.Get("username")
		view.UsernameRequired = flash.Has("username_required")
		view.PasswordRequired = flash.Has("password_required")
	}
	s.render(w, "login", view)
}

// validate always answers with a redirect back to the login form on failure,
// carrying the outcome in a one-shot flash cookie.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	flash := url.Values{}
	if strings.TrimSpace(username) == "" {
		flash.Set("username_required", "1")
	}
	if password == "" {
		flash.Set("password_required", "1")
	}
	if len(flash) > 0 {
		flash.Set("username", username)
		writeFlash(w, flash)
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	// usernames are case-insensitive, passwords are not
	if !strings.EqualFold(username, s.cfg.Username) || password != s.cfg.Password {
		httplog.LogEntrySetField(r.Context(), "login", "rejected")
		writeFlash(w, url.Values{"error": {"Invalid credentials"}})
		http.Redirect(w, r, loginPath, http.StatusFound)
		return
	}

	token, err := newToken()
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	s.mu.Lock()
	s.sessions[token] = s.cfg.Username
	s.mu.Unlock()

	httplog.LogEntrySetField(r.Context(), "login", "accepted")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, dashboardPath, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, loginPath, http.StatusFound)
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.user(r) == "" {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) user(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[c.Value]
}

type pageView struct {
	Title string
	User  string
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, "dashboard", struct {
		pageView
		Widgets []string
	}{pageView{"Dashboard", s.user(r)}, s.cfg.Widgets})
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request) {
	s.render(w, "admin", struct {
		pageView
		Users []string
	}{pageView{"Admin", s.user(r)}, []string{s.cfg.Username}})
}

type pageLink struct {
	Number int
	Href   string
	Active bool
}

func (s *Server) directory(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("name"))

	var matched []Employee
	for _, e := range s.cfg.Employees {
		if query == "" || strings.Contains(strings.ToLower(e.Name), strings.ToLower(query)) {
			matched = append(matched, e)
		}
	}

	pages := (len(matched) + s.cfg.PageSize - 1) / s.cfg.PageSize
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}

	start := (page - 1) * s.cfg.PageSize
	end := min(start+s.cfg.PageSize, len(matched))
	if start > end {
		start = end
	}

	links := make([]pageLink, 0, pages)
	for n := 1; n <= pages; n++ {
		q := url.Values{"page": {strconv.Itoa(n)}}
		if query != "" {
			q.Set("name", query)
		}
		links = append(links, pageLink{Number: n, Href: directoryPath + "?" + q.Encode(), Active: n == page})
	}

	s.render(w, "directory", struct {
		pageView
		Query     string
		Employees []Employee
		Pages     int
		PageLinks []pageLink
	}{pageView{"Directory", s.user(r)}, query, matched[start:end], pages, links})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}

func writeFlash(w http.ResponseWriter, v url.Values) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(v.Encode())),
		Path:     "/",
		HttpOnly: true,
	})
}

// readFlash returns and clears the pending flash, nil when there is none.
func readFlash(w http.ResponseWriter, r *http.Request) url.Values {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	v, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil
	}
	return v
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
