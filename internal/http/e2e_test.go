package http

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sangrahhq/sangrah/internal/domain"
	"github.com/sangrahhq/sangrah/internal/service"
	"github.com/sangrahhq/sangrah/internal/store/drivers/sqlite"
	"github.com/sangrahhq/sangrah/pkg/api"
	"github.com/sangrahhq/sangrah/pkg/httpx"
	"github.com/sangrahhq/sangrah/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "e2e-secret-e2e-secret-e2e-secret"
	testIssuer = "sangrah-auth"
)

func init() {
	// Every request in these tests comes from the same loopback address, so
	// the production budgets would trip long before the scenarios finish.
	generous := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = generous
	httpx.ModerateLimit = generous
	httpx.LenientLimit = generous
}

type capturingMailer struct {
	mu    sync.Mutex
	codes map[string]string // recipient -> last code
}

func (m *capturingMailer) SendOTP(_ context.Context, to, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[to] = code
	return nil
}

func (m *capturingMailer) SendWelcome(context.Context, string, string) error { return nil }

func (m *capturingMailer) codeFor(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[to]
	require.True(t, ok, "no code captured for %s", to)
	return code
}

type testEnv struct {
	client *api.Client
	mailer *capturingMailer
	store  *sqlite.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mailer := &capturingMailer{}
	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)

	otps := &service.OTPService{Store: st, Mailer: mailer}
	auth := &service.AuthService{
		Store:  st,
		OTP:    otps,
		Mailer: mailer,
		Signer: signer,
		Issuer: testIssuer,
	}

	router := NewRouter(
		jwtx.NewCommonHS256([]byte(testSecret), testIssuer),
		"test",
		st,
		slog.New(slog.DiscardHandler),
	)
	router.AuthService = auth
	router.UserService = &service.UserService{Store: st}
	router.BootstrapService = &service.BootstrapService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{
		client: api.NewClient(srv.URL),
		mailer: mailer,
		store:  st,
	}
}

func (e *testEnv) signupAndVerify(t *testing.T, name, mobile, email, password string) *api.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Signup(ctx, api.SignupRequest{
		Name: name, Mobile: mobile, Email: email, Password: password,
	})
	require.NoError(t, err)

	sess, err := e.client.VerifyOTP(ctx, api.VerifyOTPRequest{
		Mobile: mobile,
		Code:   e.mailer.codeFor(t, email),
	})
	require.NoError(t, err)
	return sess
}

func (e *testEnv) bootstrapSession(t *testing.T) *api.Session {
	t.Helper()
	ctx := context.Background()

	_, err := e.client.Bootstrap(ctx, "", api.BootstrapRequest{
		Name:     "Founder",
		Mobile:   "9000000001",
		Email:    "founder@example.com",
		Password: "founder-pass",
	})
	require.NoError(t, err)

	_, err = e.client.Login(ctx, api.LoginRequest{
		Email: "founder@example.com", Password: "founder-pass",
	})
	require.NoError(t, err)

	sess, err := e.client.VerifyOTP(ctx, api.VerifyOTPRequest{
		Mobile: "9000000001",
		Code:   e.mailer.codeFor(t, "founder@example.com"),
	})
	require.NoError(t, err)
	return sess
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func TestSignupVerifyFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ack, err := env.client.Signup(ctx, api.SignupRequest{
		Name:     "Asha",
		Mobile:   "9999900000",
		Email:    "a@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ack.UserID)
	require.True(t, ack.EmailSent)

	sess, err := env.client.VerifyOTP(ctx, api.VerifyOTPRequest{
		Mobile: "9999900000",
		Code:   env.mailer.codeFor(t, "a@x.com"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token())
	require.Equal(t, string(domain.RoleGuest), sess.User.Role)
	require.True(t, sess.User.Verified)

	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, ack.UserID, me.ID)
	require.Equal(t, "Asha", me.Name)
}

func TestLoginRequiresOTPRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signupAndVerify(t, "Asha", "9999900000", "a@x.com", "secret123")

	_, err := env.client.Login(ctx, api.LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	issued := env.mailer.codeFor(t, "a@x.com")
	wrong := "123456"
	if wrong == issued {
		wrong = "654321"
	}

	_, err = env.client.VerifyOTP(ctx, api.VerifyOTPRequest{Mobile: "9999900000", Code: wrong})
	requireAPIError(t, err, 400, api.ErrorCodeInvalidOTP)
}

func TestVerifyOTPAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.Signup(ctx, api.SignupRequest{
		Name: "Asha", Mobile: "9999900000", Email: "a@x.com", Password: "secret123",
	})
	require.NoError(t, err)

	code := env.mailer.codeFor(t, "a@x.com")

	// Rewind the stored expiry past the validity window.
	require.NoError(t, env.store.OTPs().UpsertOTP(ctx, domain.OTP{
		Mobile:    "9999900000",
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(-11 * time.Minute),
	}))

	_, err = env.client.VerifyOTP(ctx, api.VerifyOTPRequest{Mobile: "9999900000", Code: code})
	requireAPIError(t, err, 400, api.ErrorCodeInvalidOTP)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signupAndVerify(t, "Asha", "9999900000", "a@x.com", "secret123")

	_, err := env.client.Login(ctx, api.LoginRequest{Email: "nobody@x.com", Password: "secret123"})
	requireAPIError(t, err, 404, api.ErrorCodeNotFound)

	_, err = env.client.Login(ctx, api.LoginRequest{Email: "a@x.com", Password: "wrong-pass"})
	requireAPIError(t, err, 401, api.ErrorCodeInvalidCredentials)
}

func TestDuplicateSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.Signup(ctx, api.SignupRequest{
		Name: "Asha", Mobile: "9999900000", Email: "a@x.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = env.client.Signup(ctx, api.SignupRequest{
		Name: "Clone", Mobile: "9999900000", Email: "b@x.com", Password: "secret123",
	})
	requireAPIError(t, err, 400, api.ErrorCodeConflict)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.Signup(ctx, api.SignupRequest{
		Name: "", Mobile: "not-a-number", Email: "not-an-email", Password: "x",
	})
	requireAPIError(t, err, 400, api.ErrorCodeInvalidRequest)
}

func TestGuestCannotReachAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	guest := env.signupAndVerify(t, "Asha", "9999900000", "a@x.com", "secret123")

	_, err := guest.ListUsers(ctx)
	requireAPIError(t, err, 403, api.ErrorCodeInsufficientRole)

	err = guest.DeleteUser(ctx, guest.User.ID)
	requireAPIError(t, err, 403, api.ErrorCodeInsufficientRole)

	// The guest-accessible endpoint still works with the same token.
	me, err := guest.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, guest.User.ID, me.ID)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	anon := api.NewSessionFromToken(env.client, "")
	_, err := anon.Me(ctx)
	requireAPIError(t, err, 401, "invalid_token")

	forged := api.NewSessionFromToken(env.client, "not.a.token")
	_, err = forged.ListUsers(ctx)
	requireAPIError(t, err, 401, "invalid_token")
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.bootstrapSession(t)
	require.Equal(t, string(domain.RoleElevatedAdmin), founder.User.Role)

	created, err := founder.CreateUser(ctx, api.CreateUserRequest{
		Name:   "Ravi",
		Mobile: "9000000002",
		Email:  "ravi@example.com",
		Role:   string(domain.RoleAdmin),
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleAdmin), created.Role)

	users, err := founder.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	renamed, err := founder.UpdateUser(ctx, created.ID, api.UpdateUserRequest{
		Name: "Ravi K", Email: "ravi@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Ravi K", renamed.Name)

	demoted, err := founder.UpdateUserRole(ctx, created.ID, api.UpdateRoleRequest{
		Role: string(domain.RoleGuest),
	})
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleGuest), demoted.Role)

	require.NoError(t, founder.DeleteUser(ctx, created.ID))

	_, err = founder.GetUser(ctx, created.ID)
	requireAPIError(t, err, 404, api.ErrorCodeNotFound)
}

func TestElevatedAdminIsProtected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.bootstrapSession(t)

	// Not even the founder can demote or delete the founder account.
	_, err := founder.UpdateUserRole(ctx, founder.User.ID, api.UpdateRoleRequest{
		Role: string(domain.RoleAdmin),
	})
	requireAPIError(t, err, 403, api.ErrorCodeProtectedAccount)

	err = founder.DeleteUser(ctx, founder.User.ID)
	requireAPIError(t, err, 403, api.ErrorCodeProtectedAccount)

	// A plain admin cannot mint an elevated-admin.
	admin, err := founder.CreateUser(ctx, api.CreateUserRequest{
		Name:     "Ravi",
		Mobile:   "9000000002",
		Email:    "ravi@example.com",
		Password: "admin-pass",
		Role:     string(domain.RoleAdmin),
		Verified: true,
	})
	require.NoError(t, err)

	_, err = env.client.Login(ctx, api.LoginRequest{Email: "ravi@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	adminSess, err := env.client.VerifyOTP(ctx, api.VerifyOTPRequest{
		Mobile: admin.Mobile,
		Code:   env.mailer.codeFor(t, "ravi@example.com"),
	})
	require.NoError(t, err)

	_, err = adminSess.CreateUser(ctx, api.CreateUserRequest{
		Name:   "Usurper",
		Mobile: "9000000003",
		Role:   string(domain.RoleElevatedAdmin),
	})
	requireAPIError(t, err, 403, api.ErrorCodeInsufficientRole)
}

func TestBootstrapRefusesTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client.Bootstrap(ctx, "", api.BootstrapRequest{
		Name: "Founder", Mobile: "9000000001", Password: "founder-pass",
	})
	require.NoError(t, err)

	_, err = env.client.Bootstrap(ctx, "", api.BootstrapRequest{
		Name: "Second", Mobile: "9000000009", Password: "founder-pass",
	})
	requireAPIError(t, err, 401, api.ErrorCodeUnauthorized)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	live, err := env.client.Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := env.client.Readyz(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)
}
