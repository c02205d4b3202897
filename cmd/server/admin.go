package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/session"
)

type adminTenantsViewData struct {
	baseViewData
	Admin    domain.AdminUser
	Token    session.TokenInfo
	Tenants  []domain.Tenant
	Expiring bool
}

type tenantKeyViewData struct {
	baseViewData
	Tenant  domain.Tenant
	Created bool
}

// adminFailure handles errors on admin pages. A rejected token clears the
// admin slot and sends the browser back to the admin login.
func (s *server) adminFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	session.FromContext(r.Context()).ClearAdmin()
	if !s.saveSession(w, r) {
		return true
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	return true
}

func (s *server) handleAdminTenants(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	p := st.Principal()
	data := adminTenantsViewData{baseViewData: s.base(r)}

	me, err := s.api.AdminMe(r.Context(), p)
	if err != nil {
		if s.adminFailure(w, r, err) {
			return
		}
		data.setError(err)
		s.renderTemplate(w, http.StatusBadGateway, "admin_tenants.html", data)
		return
	}
	data.Admin = me

	if info, err := session.InspectAdminToken(st.AdminToken); err == nil {
		data.Token = info
		data.Expiring = info.Expired(s.now())
	}

	data.Tenants, err = s.api.AdminListTenants(r.Context(), p)
	if err != nil {
		if s.adminFailure(w, r, err) {
			return
		}
		data.setError(err)
	}
	s.render(w, "admin_tenants.html", data)
}

func (s *server) handleAdminTenantKey(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	tenant, err := s.api.GetTenant(r.Context(), principal(r), id)
	if err != nil {
		if s.adminFailure(w, r, err) {
			return
		}
		data := tenantKeyViewData{baseViewData: s.base(r)}
		data.setError(err)
		s.renderTemplate(w, http.StatusBadGateway, "tenant_key.html", data)
		return
	}
	s.render(w, "tenant_key.html", tenantKeyViewData{baseViewData: s.base(r), Tenant: tenant})
}

type tenantAction int

const (
	actionMark tenantAction = iota
	actionUnmark
	actionDelete
	actionRegenerateKey
	actionCreateDatabase
	actionDeleteDatabase
)

func (a tenantAction) success() string {
	switch a {
	case actionMark:
		return "Empresa marcada para eliminación"
	case actionUnmark:
		return "Marca de eliminación quitada"
	case actionDelete:
		return "Empresa eliminada"
	case actionRegenerateKey:
		return "Clave de acceso regenerada"
	case actionCreateDatabase:
		return "Base de datos creada"
	case actionDeleteDatabase:
		return "Base de datos eliminada"
	default:
		return "Listo"
	}
}

func (s *server) runTenantAction(ctx context.Context, p session.Principal, a tenantAction, id int64) error {
	var err error
	switch a {
	case actionMark:
		_, err = s.api.AdminMarkTenantForDeletion(ctx, p, id)
	case actionUnmark:
		_, err = s.api.AdminUnmarkTenantForDeletion(ctx, p, id)
	case actionDelete:
		_, err = s.api.AdminDeleteTenant(ctx, p, id)
	case actionRegenerateKey:
		_, err = s.api.RegenerateTenantKey(ctx, p, id)
	case actionCreateDatabase:
		err = s.api.CreateTenantDatabase(ctx, p, id)
	case actionDeleteDatabase:
		err = s.api.DeleteTenantDatabase(ctx, p, id)
	}
	return err
}

func (s *server) handleAdminTenantAction(a tenantAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := s.runTenantAction(r.Context(), principal(r), a, id); err != nil {
			if s.adminFailure(w, r, err) {
				return
			}
			log.Warn().Err(err).Int64("tenant_id", id).Msg("admin tenant action failed")
			data := adminTenantsViewData{baseViewData: s.base(r)}
			data.setError(err)
			data.Tenants, _ = s.api.AdminListTenants(r.Context(), principal(r))
			s.renderTemplate(w, http.StatusBadGateway, "admin_tenants.html", data)
			return
		}

		if a == actionRegenerateKey {
			http.Redirect(w, r, "/admin/tenants/"+chiID(r)+"/key", http.StatusSeeOther)
			return
		}
		redirectWithSuccess(w, r, "/admin/tenants", a.success())
	}
}
