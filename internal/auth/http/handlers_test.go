package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/treasuremind/internal/auth/service"
	"github.com/aussiebroadwan/treasuremind/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/treasuremind/pkg/authsdk"
	"github.com/aussiebroadwan/treasuremind/pkg/cryptox"
	"github.com/aussiebroadwan/treasuremind/pkg/httpx"
	"github.com/stretchr/testify/require"
)

const sessionMaxAge = 15 * time.Minute

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	router   *Router
	sessions *service.SessionService
	clock    *clock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher, err := service.NewPasswordHasher(cryptox.PBKDF2{Iterations: 1000}, 2)
	require.NoError(t, err)

	clk := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	sessions, err := service.NewSessionService(service.SessionConfig{
		Key:    cryptox.MustGenerateKey(),
		Issuer: "treasuremind-test",
		MaxAge: sessionMaxAge,
		Now:    clk.Now,
	})
	require.NoError(t, err)

	cookie := httpx.CookieConfig{
		Name:     authsdk.SessionCookieName,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   sessionMaxAge,
	}

	r := NewRouter("test", st, cookie, nil)
	r.RegistrationService = &service.RegistrationService{Store: st, Hasher: hasher}
	r.LoginService = &service.LoginService{Store: st, Hasher: hasher, Sessions: sessions}
	r.ProfileService = &service.ProfileService{Store: st}
	r.SessionService = sessions
	r.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	r.ApplyRoutes()

	return &testServer{router: r, sessions: sessions, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email, password string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/create", authsdk.RegisterRequest{
		Email:     email,
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", authsdk.LoginRequest{Email: email, Password: password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	return c
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == authsdk.SessionCookieName {
			return c
		}
	}
	return nil
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code)

	var body authsdk.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, code, body.Error)
	require.NotEmpty(t, body.ErrorDescription)
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	s.register(t, "Alice@Example.com", "hunter22")

	rec := s.do(t, http.MethodPost, "/api/auth/login", authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"email":"alice@example.com","first_name":"Alice","last_name":"Smith"}`, rec.Body.String())

	c := sessionCookie(rec)
	require.NotNil(t, c)
	require.NotEmpty(t, c.Value)
	require.True(t, c.HttpOnly)
	require.Equal(t, "/", c.Path)
	require.Equal(t, int(sessionMaxAge/time.Second), c.MaxAge)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"wrong password", authsdk.LoginRequest{Email: "alice@example.com", Password: "nope"}, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"unknown email", authsdk.LoginRequest{Email: "bob@example.com", Password: "hunter22"}, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials},
		{"missing password", authsdk.LoginRequest{Email: "alice@example.com"}, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
		{"malformed body", `{"email":`, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/login", tt.body, nil)
			requireError(t, rec, tt.status, tt.code)
			require.Nil(t, sessionCookie(rec))
		})
	}
}

func TestRegisterFailures(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")

	t.Run("duplicate email", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/create", authsdk.RegisterRequest{
			Email: "ALICE@example.com", FirstName: "A", LastName: "S", Password: "other",
		}, nil)
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeEmailExists)
		require.Contains(t, rec.Body.String(), "email already exists")
	})

	t.Run("missing field", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/create", authsdk.RegisterRequest{
			Email: "bob@example.com", FirstName: "Bob", Password: "pw",
		}, nil)
		requireError(t, rec, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/auth/create", "not json", nil)
		requireError(t, rec, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})
}

func TestProfileRefreshesSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")
	c := s.login(t, "alice@example.com", "hunter22")

	s.clock.Advance(10 * time.Minute)
	rec := s.do(t, http.MethodGet, "/api/auth", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"email":"alice@example.com","first_name":"Alice","last_name":"Smith"}`, rec.Body.String())

	refreshed := sessionCookie(rec)
	require.NotNil(t, refreshed)
	require.NotEqual(t, c.Value, refreshed.Value)

	// The original would have expired by now; the refreshed one has not.
	s.clock.Advance(10 * time.Minute)
	requireError(t, s.do(t, http.MethodGet, "/api/auth", nil, c), http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)

	rec = s.do(t, http.MethodGet, "/api/auth", nil, refreshed)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileRejectsBadSessions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")
	c := s.login(t, "alice@example.com", "hunter22")

	t.Run("no cookie", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/auth", nil, nil)
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
		require.Nil(t, sessionCookie(rec))
	})

	t.Run("tampered cookie is cleared", func(t *testing.T) {
		bad := &http.Cookie{Name: c.Name, Value: c.Value[:len(c.Value)-1] + "A"}
		if bad.Value == c.Value {
			bad.Value = c.Value[:len(c.Value)-1] + "B"
		}
		rec := s.do(t, http.MethodGet, "/api/auth", nil, bad)
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)

		cleared := sessionCookie(rec)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
		require.Negative(t, cleared.MaxAge)
	})

	t.Run("session without profile", func(t *testing.T) {
		issued, err := s.sessions.Issue(context.Background(), "ghost@example.com")
		require.NoError(t, err)

		rec := s.do(t, http.MethodGet, "/api/auth", nil, &http.Cookie{Name: c.Name, Value: issued.Token})
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
		require.Negative(t, sessionCookie(rec).MaxAge)
	})
}

func TestProfileRevokedBeforeRefresh(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")
	c := s.login(t, "alice@example.com", "hunter22")

	// session middleware has already accepted the cookie when the logout lands
	sess, err := s.sessions.Validate(context.Background(), c.Value)
	require.NoError(t, err)
	s.sessions.Revoke(context.Background(), sess)

	h := &ProfileHandler{
		ProfileService: s.router.ProfileService,
		SessionService: s.sessions,
		Cookie:         s.router.cookie,
	}
	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req = req.WithContext(httpx.WithSubject(req.Context(), sess.Email, sess.ID))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")
	c := s.login(t, "alice@example.com", "hunter22")

	s.clock.Advance(time.Second)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth", nil, c).Code)

	s.clock.Advance(sessionMaxAge)
	requireError(t, s.do(t, http.MethodGet, "/api/auth", nil, c), http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "alice@example.com", "hunter22")

	t.Run("without session", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/api/auth", nil, nil)
		requireError(t, rec, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
	})

	t.Run("with session", func(t *testing.T) {
		c := s.login(t, "alice@example.com", "hunter22")

		rec := s.do(t, http.MethodGet, "/api/auth", nil, c)
		require.Equal(t, http.StatusOK, rec.Code)
		refreshed := sessionCookie(rec)

		rec = s.do(t, http.MethodDelete, "/api/auth", nil, c)
		require.Equal(t, http.StatusOK, rec.Code)
		cleared := sessionCookie(rec)
		require.NotNil(t, cleared)
		require.Empty(t, cleared.Value)
		require.Negative(t, cleared.MaxAge)

		// Replaying the old cookie, or one from an earlier refresh, fails
		requireError(t, s.do(t, http.MethodGet, "/api/auth", nil, c), http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
		requireError(t, s.do(t, http.MethodGet, "/api/auth", nil, refreshed), http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
		requireError(t, s.do(t, http.MethodDelete, "/api/auth", nil, c), http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated)
	})

	t.Run("new login after logout", func(t *testing.T) {
		c := s.login(t, "alice@example.com", "hunter22")
		require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth", nil, c).Code)
	})
}

func TestUnknownRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	requireError(t, s.do(t, http.MethodGet, "/api/auth/nope", nil, nil), http.StatusNotFound, authsdk.ErrorCodeNotFound)
	requireError(t, s.do(t, http.MethodGet, "/api/auth/login", nil, nil), http.StatusNotFound, authsdk.ErrorCodeNotFound)
	requireError(t, s.do(t, http.MethodPut, "/api/auth", nil, nil), http.StatusNotFound, authsdk.ErrorCodeNotFound)
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/livez", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var live authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = s.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ready authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	require.Equal(t, "ok", ready.Checks.Database)

	rec = s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "metrics", rec.Body.String())

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
