package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cotizador3d/internal/db"
	"github.com/Simplici0/cotizador3d/internal/migrations"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Up(conn))
	return NewSQLiteStore(conn)
}

func TestPrincipal_AdminTakesPrecedence(t *testing.T) {
	st := New()
	assert.Equal(t, Anonymous{}, st.Principal())

	st.SetTenant("acme", "k3y4c3ss")
	assert.Equal(t, Tenant{Name: "acme", Key: "k3y4c3ss"}, st.Principal())

	st.SetAdmin("tok", "root")
	assert.Equal(t, Admin{Token: "tok", User: "root"}, st.Principal())

	st.ClearAdmin()
	assert.Equal(t, Tenant{Name: "acme", Key: "k3y4c3ss"}, st.Principal(), "admin logout keeps the tenant slot")
}

func TestPrincipal_TenantNeedsBothValues(t *testing.T) {
	st := New()
	st.SetTenant("acme", "")
	assert.Equal(t, Anonymous{}, st.Principal())
	assert.False(t, st.HasTenant())

	var nilState *State
	assert.Equal(t, Anonymous{}, nilState.Principal())
}

func TestSQLiteStore_RoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	st := New()
	st.SetTenant("acme", "abcd1234")
	st.SetAdmin("tok", "root")
	require.NoError(t, store.Save(ctx, st, time.Hour))

	got, err := store.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	st.ClearTenant()
	require.NoError(t, store.Save(ctx, st, time.Hour))
	got, err = store.Load(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CurrentTenant)
	assert.Equal(t, "tok", got.AdminToken)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = store.Load(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestManager_CookieRoundTrip(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store, "secret", time.Hour, false)

	st := New()
	st.SetTenant("acme", "abcd1234")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, st))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	loaded, err := m.Load(req)
	require.NoError(t, err)
	assert.Equal(t, st.ID, loaded.ID)
	assert.Equal(t, "acme", loaded.CurrentTenant)
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	store := newTestStore(t)
	m := NewManager(store, "secret", time.Hour, false)

	st := New()
	st.SetTenant("acme", "abcd1234")
	require.NoError(t, m.Save(context.Background(), httptest.NewRecorder(), st))

	forged := NewManager(store, "other-secret", time.Hour, false).sign(st.ID)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: forged})

	loaded, err := m.Load(req)
	require.NoError(t, err)
	assert.NotEqual(t, st.ID, loaded.ID)
	assert.True(t, loaded.Empty())
}

func TestManager_SaveEmptyDeletes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	m := NewManager(store, "secret", time.Hour, false)

	st := New()
	st.SetAdmin("tok", "root")
	require.NoError(t, m.Save(ctx, httptest.NewRecorder(), st))

	st.ClearAdmin()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, rec, st))
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	_, err := store.Load(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInspectAdminToken(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-only-key"))
	require.NoError(t, err)

	info, err := InspectAdminToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(exp.Add(-time.Minute)))
	assert.True(t, info.Expired(exp.Add(time.Minute)))

	_, err = InspectAdminToken("not-a-token")
	assert.Error(t, err)
}
