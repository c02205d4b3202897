package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/session"
)

func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := s.sessions.Load(r)
		if err != nil {
			log.Error().Err(err).Msg("load session")
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), st)))
	})
}

// requireTenant lets through sessions that can make tenant-scoped calls.
func (s *server) requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := session.FromContext(r.Context())
		if !st.HasTenant() && !st.IsAdmin() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).IsAdmin() {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) saveSession(w http.ResponseWriter, r *http.Request) bool {
	if err := s.sessions.Save(r.Context(), w, session.FromContext(r.Context())); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return false
	}
	return true
}

// redirectOnAuthFailure applies the backend auth rules to err: tenant
// credentials are dropped, along with an admin token the backend rejected,
// and the browser is sent to the login or tenant selection page. It reports whether a response was written. A request that
// is already on the target page renders its own error instead of looping.
func (s *server) redirectOnAuthFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	target := apiErr.Redirect()
	if target == apiclient.NoRedirect {
		return false
	}

	st := session.FromContext(r.Context())
	// A rejected call made with the admin token would keep winning over any
	// new tenant login, so that token goes too.
	if _, asAdmin := st.Principal().(session.Admin); asAdmin && apiErr.Status == http.StatusUnauthorized {
		st.ClearAdmin()
	}
	st.ClearTenant()
	if !s.saveSession(w, r) {
		return true
	}
	if r.URL.Path == target.Path() {
		return false
	}
	log.Info().Int("status", apiErr.Status).Str("redirect", target.Path()).Msg("backend rejected tenant credentials")
	http.Redirect(w, r, target.Path(), http.StatusSeeOther)
	return true
}

type loginViewData struct {
	baseViewData
	Tenants []domain.Tenant
	Name    string
	Notice  string
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request, status int, data loginViewData) {
	tenants, err := s.api.ListTenants(r.Context(), session.Anonymous{})
	if err != nil {
		log.Warn().Err(err).Msg("list tenants for login")
	}
	data.Tenants = tenants
	s.renderTemplate(w, status, "login.html", data)
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).HasTenant() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.loginPage(w, r, http.StatusOK, loginViewData{baseViewData: s.base(r)})
}

func (s *server) handleSelectTenant(w http.ResponseWriter, r *http.Request) {
	s.loginPage(w, r, http.StatusOK, loginViewData{
		baseViewData: s.base(r),
		Notice:       "La empresa seleccionada no está disponible. Selecciona otra empresa.",
	})
}

type tenantLoginForm struct {
	Name      string `validate:"required" label:"Empresa"`
	AccessKey string `validate:"required,len=8" label:"Clave de acceso"`
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := tenantLoginForm{
		Name:      strings.TrimSpace(r.FormValue("name")),
		AccessKey: strings.TrimSpace(r.FormValue("access_key")),
	}
	data := loginViewData{baseViewData: s.base(r), Name: form.Name}

	err := apiclient.Validate(form)
	if err == nil {
		_, err = s.api.LoginTenant(r.Context(), domain.TenantLogin{Name: form.Name, AccessKey: form.AccessKey})
	}
	if err != nil {
		data.setError(err)
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			data.ErrorMessage = "Credenciales inválidas. Intenta de nuevo."
		}
		s.loginPage(w, r, http.StatusUnauthorized, data)
		return
	}

	session.FromContext(r.Context()).SetTenant(form.Name, form.AccessKey)
	if !s.saveSession(w, r) {
		return
	}
	log.Info().Str("tenant", form.Name).Msg("tenant signed in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type createTenantForm struct {
	Name string `validate:"required" label:"Nombre de la empresa"`
}

// handleTenantCreate registers a company and shows its access key once.
func (s *server) handleTenantCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := createTenantForm{Name: strings.TrimSpace(r.FormValue("name"))}
	data := loginViewData{baseViewData: s.base(r)}

	err := apiclient.Validate(form)
	var tenant domain.Tenant
	if err == nil {
		tenant, err = s.api.CreateTenant(r.Context(), session.Anonymous{}, domain.CreateTenant{Name: form.Name, IsActive: true})
	}
	if err != nil {
		data.setError(err)
		s.loginPage(w, r, http.StatusBadRequest, data)
		return
	}

	view := tenantKeyViewData{baseViewData: data.baseViewData, Tenant: tenant, Created: true}
	view.SuccessMessage = "Empresa creada. Guarda la clave de acceso: no se volverá a mostrar."
	s.renderTemplate(w, http.StatusCreated, "tenant_key.html", view)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.FromContext(r.Context()).ClearTenant()
	if !s.saveSession(w, r) {
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type adminLoginForm struct {
	Username string `validate:"required" label:"Usuario"`
	Password string `validate:"required" label:"Contraseña"`
}

type adminLoginViewData struct {
	baseViewData
	Username string
}

func (s *server) handleAdminLoginForm(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAdmin() {
		http.Redirect(w, r, "/admin/tenants", http.StatusSeeOther)
		return
	}
	s.render(w, "admin_login.html", adminLoginViewData{baseViewData: s.base(r)})
}

func (s *server) handleAdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := adminLoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	data := adminLoginViewData{baseViewData: s.base(r), Username: form.Username}

	err := apiclient.Validate(form)
	var resp domain.AdminLoginResponse
	if err == nil {
		resp, err = s.api.AdminLogin(r.Context(), domain.AdminLogin(form))
	}
	if err != nil {
		data.setError(err)
		s.renderTemplate(w, http.StatusUnauthorized, "admin_login.html", data)
		return
	}

	user := resp.Admin.Username
	if user == "" {
		user = form.Username
	}
	session.FromContext(r.Context()).SetAdmin(resp.AccessToken, user)
	if !s.saveSession(w, r) {
		return
	}
	log.Info().Str("admin", user).Msg("admin signed in")
	http.Redirect(w, r, "/admin/tenants", http.StatusSeeOther)
}

// handleAdminLogout clears only the admin slot; a selected tenant stays
// signed in.
func (s *server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	session.FromContext(r.Context()).ClearAdmin()
	if !s.saveSession(w, r) {
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
