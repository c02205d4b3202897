package main

import (
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/session"
	"github.com/Simplici0/cotizador3d/internal/store"
)

type server struct {
	api          *apiclient.Client
	sessions     *session.Manager
	settings     *store.Settings
	exports      *store.Exports
	templatesDir string
	now          func() time.Time
}

type baseViewData struct {
	ErrorMessage   string
	ErrorDetails   []string
	SuccessMessage string
	Tenant         string
	AdminUser      string
}

func (b *baseViewData) setError(err error) {
	state := apiclient.StateFromError(err)
	if state == nil {
		return
	}
	b.ErrorMessage = state.Message
	b.ErrorDetails = state.Details
}

// base fills the navigation identity and the flash message passed through
// the ?success= query parameter after a redirect.
func (s *server) base(r *http.Request) baseViewData {
	b := baseViewData{SuccessMessage: r.URL.Query().Get("success")}
	if st := session.FromContext(r.Context()); st != nil {
		b.Tenant = st.CurrentTenant
		b.AdminUser = st.AdminUser
	}
	return b
}

var templateFuncs = template.FuncMap{
	"ars":    money.FormatARS,
	"usd":    money.FormatUSD,
	"plain":  money.FormatPlain,
	"num":    num,
	"bytes":  func(n int64) string { return humanize.Bytes(uint64(n)) },
	"ago":    humanize.Time,
	"date":   func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
	"optARS": func(v *float64) string { return optional(v, money.FormatARS) },
	"optUSD": func(v *float64) string { return optional(v, money.FormatUSD) },
	"optPct": func(v *float64) string {
		return optional(v, func(f float64) string { return money.FormatPlain(f) + "%" })
	},
	"contains": func(ids []int64, id int64) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	},
}

func optional(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFiles(
		filepath.Join(s.templatesDir, "layout.html"),
		filepath.Join(s.templatesDir, page),
	)
	if err != nil {
		log.Error().Err(err).Str("page", page).Msg("parse template")
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render template")
	}
}

func (s *server) render(w http.ResponseWriter, page string, data any) {
	s.renderTemplate(w, http.StatusOK, page, data)
}

// redirectWithSuccess issues a 303 carrying a flash message.
func redirectWithSuccess(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?success="+url.QueryEscape(message), http.StatusSeeOther)
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func chiID(r *http.Request) string { return chi.URLParam(r, "id") }

func principal(r *http.Request) session.Principal {
	return session.FromContext(r.Context()).Principal()
}
