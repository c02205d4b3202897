package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cotizador3d/internal/domain"
	"github.com/Simplici0/cotizador3d/internal/money"
	"github.com/Simplici0/cotizador3d/internal/session"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func TestAdminPrincipalSendsOnlyBearer(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	})

	st := session.New()
	st.SetTenant("acme", "abcd1234")
	st.SetAdmin("tok", "root")

	_, err := c.ListMachines(context.Background(), st.Principal())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Empty(t, got.Values("X-Tenant"))
	assert.Empty(t, got.Values("X-Tenant-Key"))
}

func TestTenantPrincipalSendsTenantHeaders(t *testing.T) {
	var got http.Header
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"id":7,"nombre":"Ender"}`))
	})

	m, err := c.GetMachine(context.Background(), session.Tenant{Name: "acme", Key: "abcd1234"}, 7)
	require.NoError(t, err)

	assert.Equal(t, "/api/machines/7", path)
	assert.Equal(t, "Ender", m.Nombre)
	assert.Equal(t, "acme", got.Get("X-Tenant"))
	assert.Equal(t, "abcd1234", got.Get("X-Tenant-Key"))
	assert.Empty(t, got.Get("Authorization"))
}

func TestAnonymousSendsNoIdentity(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"id":1,"name":"acme"}`))
	})

	_, err := c.LoginTenant(context.Background(), domain.TenantLogin{Name: "acme", AccessKey: "abcd1234"})
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("X-Tenant"))
}

func TestUnauthorizedRedirectsToLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Credenciales inválidas"}`))
	})

	_, err := c.ListPrints(context.Background(), session.Tenant{Name: "acme", Key: "bad"})

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Credenciales inválidas", apiErr.Message)
	assert.Equal(t, RedirectLogin, apiErr.Redirect())
	assert.Equal(t, `Error 401: {"detail":"Credenciales inválidas"}`, apiErr.Error())
}

func TestErrorRedirectClassification(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   Redirect
	}{
		{401, "", RedirectLogin},
		{404, `{"detail":"Tenant 'x' no encontrado"}`, RedirectSelectTenant},
		{404, `{"detail":"Print not found"}`, NoRedirect},
		{400, `{"detail":"Falta header X-Tenant"}`, RedirectLogin},
		{400, `{"detail":"bad"}`, NoRedirect},
		{500, "boom", NoRedirect},
	}
	for _, tc := range cases {
		e := newError(http.MethodGet, "/x", tc.status, []byte(tc.body))
		assert.Equal(t, tc.want, e.Redirect(), "status %d body %q", tc.status, tc.body)
	}
	assert.Equal(t, "/select-tenant", RedirectSelectTenant.Path())
	assert.Equal(t, "", NoRedirect.Path())
}

func TestValidationDetailsAreUnpacked(t *testing.T) {
	e := newError(http.MethodPost, "/machines", 422, []byte(`{"detail":[{"loc":["body","costo"],"msg":"field required"},{"msg":"value is not a valid float"}]}`))

	assert.Equal(t, "Error de validación", e.Message)
	assert.Equal(t, []string{"field required", "value is not a valid float"}, e.Details)

	plain := newError(http.MethodGet, "/machines", 500, []byte("Internal Server Error"))
	assert.Equal(t, "Error 500: Internal Server Error", plain.Message)
	assert.Nil(t, plain.Details)
}

func TestTransportErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(base).ListMachines(context.Background(), session.Anonymous{})

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	state := StateFromError(err)
	assert.Equal(t, "No se pudo conectar con el servidor", state.Message)
}

func TestStateFromError(t *testing.T) {
	assert.Nil(t, StateFromError(nil))
	assert.Equal(t, "Ha ocurrido un error inesperado", StateFromError(errors.New("x")).Message)

	v := &ValidationError{Message: "Revisa", Details: []string{"a"}}
	assert.Equal(t, &ErrorState{Message: "Revisa", Details: []string{"a"}}, StateFromError(v))
}

func TestEmptyDeleteBody(t *testing.T) {
	var method string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeletePrint(context.Background(), session.Anonymous{}, 3))
	assert.Equal(t, http.MethodDelete, method)
}

func TestAmountVariantsOnTheWire(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	_, err := c.CreateFixedExpense(context.Background(), session.Anonymous{}, domain.FixedExpenseInput{
		TipoGasto: "Alquiler",
		Monto:     money.InARS(150000),
	})
	require.NoError(t, err)

	assert.Equal(t, 150000.0, body["monto_ars"])
	assert.NotContains(t, body, "monto_usd")
}

func TestSummaryQuery(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"prints_count":2}`))
	})

	labor := false
	s, err := c.PrintsSummary(context.Background(), session.Anonymous{}, domain.SummaryFilter{StartDate: "2024-05-01", IncludeLabor: &labor})
	require.NoError(t, err)
	assert.Equal(t, 2, s.PrintsCount)
	assert.Equal(t, "include_labor=false&start_date=2024-05-01", query)
}

func TestRefreshCurrency(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"id":1,"currency":"USD","value":1050.5,"source":"dolarapi","created_at":"2024-05-01T10:00:00Z"}`))
	})

	rate, err := c.LatestCurrencyRate(context.Background(), session.Anonymous{}, true)
	require.NoError(t, err)
	assert.Equal(t, "refresh=true", query)
	assert.InDelta(t, 1050.5, rate.Value, 1e-9)
}

func TestValidate(t *testing.T) {
	type form struct {
		Nombre string  `validate:"required" label:"Nombre"`
		Monto  float64 `validate:"gt=0" label:"Monto"`
	}

	err := Validate(form{Monto: 0})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Nombre es obligatorio", "Monto debe ser mayor a 0"}, vErr.Details)

	assert.NoError(t, Validate(form{Nombre: "x", Monto: 1}))
}
