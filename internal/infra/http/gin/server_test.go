package ginserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	adminapp "gowaay/internal/app/handlers/admin"
	paymentsapp "gowaay/internal/app/handlers/payments"
	roomsapp "gowaay/internal/app/handlers/rooms"
	"gowaay/internal/app/middleware"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/queries"
	authsvc "gowaay/internal/app/services/auth"
	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/ledger"
	"gowaay/internal/domain/pricing"
	domainrooms "gowaay/internal/domain/rooms"
	"gowaay/internal/infra/config"
	"gowaay/internal/infra/imageproc"
	"gowaay/internal/infra/obs"
	"gowaay/internal/infra/ratelimit"
	"gowaay/internal/infra/security"
	"gowaay/internal/infra/storage/memory"
	"gowaay/internal/infra/validation"
)

type testServer struct {
	router *gin.Engine
	auth   *authsvc.Service
	ipn    []paymentsapp.HandleIPNCommand
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	factory := memory.NewFactory(users)
	auth := &authsvc.Service{
		Users:     users,
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
	ts := &testServer{auth: auth}

	cmdBus := commands.NewInMemoryBus()
	commands.Register[paymentsapp.VerifyPaymentCommand, *dto.PaymentVerification](cmdBus, commands.HandlerFunc[paymentsapp.VerifyPaymentCommand, *dto.PaymentVerification](
		func(ctx context.Context, cmd paymentsapp.VerifyPaymentCommand) (*dto.PaymentVerification, error) {
			switch cmd.TranID {
			case "":
				return nil, paymentsapp.ErrMissingParams
			case "down":
				return nil, policies.ErrGatewayUnavailable
			case "good":
				return &dto.PaymentVerification{PaymentID: "p-1", OrderID: "b-1", Status: "SUCCESS", Valid: true}, nil
			default:
				return &dto.PaymentVerification{PaymentID: "p-1", OrderID: "b-1", Status: "FAILED"}, nil
			}
		}))
	commands.Register[paymentsapp.HandleIPNCommand, *paymentsapp.IPNResult](cmdBus, commands.HandlerFunc[paymentsapp.HandleIPNCommand, *paymentsapp.IPNResult](
		func(ctx context.Context, cmd paymentsapp.HandleIPNCommand) (*paymentsapp.IPNResult, error) {
			ts.ipn = append(ts.ipn, cmd)
			return nil, errors.New("ledger exploded")
		}))

	queryBus := queries.NewInMemoryBus()
	queries.Register(queryBus, (&roomsapp.CommissionQuoteHandler{Rule: pricing.TieredRule{}}).Handle)
	queries.Register(queryBus, (&adminapp.StatsHandler{UoWFactory: factory}).Handle)

	validator := validation.New()
	cmds := middleware.ChainCommands(cmdBus,
		middleware.Authorization(middleware.RoleAuthorizer{}),
		middleware.Validation(validator),
	)
	qs := middleware.ChainQueries(queryBus,
		middleware.QueryAuthorization(middleware.RoleAuthorizer{}),
		middleware.QueryValidation(validator),
	)

	var rl gin.HandlerFunc
	if limiter != nil {
		rl = RateLimit(limiter, nil)
	}
	ts.router = NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth:           AuthHandler{Service: auth},
		Rooms:          RoomHandler{Commands: cmds, Queries: qs},
		Payments:       PaymentHandler{Commands: cmds, Queries: qs},
		Admin:          AdminHandler{Commands: cmds, Queries: qs},
		AuthMiddleware: AuthMiddleware{Service: auth}.Handle,
		RateLimit:      rl,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Rahim",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return tokenFrom(t, env)
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := ts.auth.EnsureAdmin(context.Background(), "admin@gowaay.test", "Admin", "adminpass123")
	require.NoError(t, err)
	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@gowaay.test",
		"password": "adminpass123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return tokenFrom(t, env)
}

func tokenFrom(t *testing.T, env envelope) string {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "GoWaay API is running", env.Message)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}

func TestCommissionQuote(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct {
		base, commission, total float64
	}{
		{2000, 490, 2490},
		{2799, 490, 3289},
		{2800, 504, 3304},
		{5000, 900, 5900},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.base), func(t *testing.T) {
			rec, env := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pricing/commission?basePriceTk=%.0f", tc.base), "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			data := env.Data.(map[string]any)
			assert.Equal(t, tc.base, data["basePriceTk"])
			assert.Equal(t, tc.commission, data["commissionTk"])
			assert.Equal(t, tc.total, data["totalPriceTk"])
		})
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/pricing/commission?basePriceTk=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestAuthSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := ts.register(t, "Guest@Example.com")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := env.Data.(map[string]any)
	assert.Equal(t, "guest@example.com", profile["email"])

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "guest@example.com",
		"name":     "Again",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "guest@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	guest := ts.register(t, "guest@example.com")
	rec, env := ts.do(t, http.MethodGet, "/api/v1/admin/stats", guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	admin := ts.adminToken(t)
	rec, env = ts.do(t, http.MethodGet, "/api/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := env.Data.(map[string]any)
	assert.Equal(t, float64(0), stats["totalBookings"])
	assert.Equal(t, float64(0), stats["totalRevenue"])
}

func TestVerifyPaymentStatuses(t *testing.T) {
	ts := newTestServer(t, nil)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/payments/verify?val_id=v&tran_id=good", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/payments/verify?val_id=v&tran_id=bad", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Payment verification failed", env.Message)
	assert.Equal(t, "FAILED", env.Data.(map[string]any)["status"])

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/payments/verify", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/payments/verify?val_id=v&tran_id=down", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestIPNAlwaysAcknowledges(t *testing.T) {
	ts := newTestServer(t, nil)

	form := url.Values{"tran_id": {"p-1"}, "val_id": {"v-1"}, "status": {"VALID"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/ipn", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IPN received successfully")
	require.Len(t, ts.ipn, 1)
	assert.Equal(t, "p-1", ts.ipn[0].TranID)
	assert.Equal(t, "VALID", ts.ipn[0].Status)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/payments/ipn", "", map[string]any{"tran_id": "p-2", "status": "FAILED"})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ts.ipn, 2)
	assert.Equal(t, "FAILED", ts.ipn[1].Status)
}

func TestRateLimitRejectsBurst(t *testing.T) {
	ts := newTestServer(t, ratelimit.NewLocal(1, time.Minute))

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec, env := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later.", env.Message)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = ts.do(t, http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	ts := newTestServer(t, failingLimiter{})
	for i := 0; i < 3; i++ {
		rec, _ := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{policies.ErrGatewayUnavailable, http.StatusServiceUnavailable},
		{middleware.ErrUnauthenticated, http.StatusUnauthorized},
		{middleware.ErrForbidden, http.StatusForbidden},
		{domainrooms.ErrHostNotReassignable, http.StatusForbidden},
		{fmt.Errorf("load: %w", domainbooking.ErrNotFound), http.StatusNotFound},
		{paymentsapp.ErrNotBookingOwner, http.StatusNotFound},
		{ledger.ErrAlreadyCompleted, http.StatusConflict},
		{domainbooking.ErrAmountMismatch, http.StatusBadRequest},
		{imageproc.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{&validation.Error{Fields: []validation.FieldError{{Field: "RoomID", Rule: "required"}}}, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://gowaay.com"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"https://gowaay.com"}, cfg.AllowOrigins)
}

func TestAPIDocs(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/api/v1/payments/ipn")
	assert.Contains(t, paths, "/api/v1/pricing/commission")

	req = httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/swagger", nil)
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `url: "/swagger/doc.json"`)
}
