// VillageVitals | 2026
// handler_test.go

package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagevitals/backend/internal/middleware"
)

type handlerFixture struct {
	*serviceFixture
	router chi.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := newServiceFixture(t)

	handler := NewHandler(f.svc, time.Hour, false)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, middleware.Authenticator(f.svc.jwt))

	return &handlerFixture{serviceFixture: f, router: router}
}

func (f *handlerFixture) post(
	t *testing.T,
	path string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, path, body, nil)
}

func (f *handlerFixture) do(
	t *testing.T,
	method, path string,
	body any,
	cookie *http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandler_Signup(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/signup", validSignup())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "amina@example.com", body["email"])
	assert.NotZero(t, body["userId"])
}

func TestHandler_Signup_ShortPassword(t *testing.T) {
	f := newHandlerFixture(t)

	req := validSignup()
	req.Password = "abc"

	rec := f.post(t, "/auth/signup", req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(
		t,
		body["error"],
		"Password must be at least 6 characters long",
	)
}

func TestHandler_Signup_DuplicateEmail(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/signup", validSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	dup := validSignup()
	dup.Phone = "+2348099999999"

	rec = f.post(t, "/auth/signup", dup)
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "An account with this email already exists", body["error"])
}

func TestHandler_VerifyOTP_InvalidCode(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/signup", validSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.post(t, "/auth/verify-otp", VerifyOTPRequest{
		Email:   "amina@example.com",
		OTPCode: "000000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid or expired OTP code", body["error"])
}

func TestHandler_Login_Unverified(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/signup", validSignup())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.post(t, "/auth/login", LoginRequest{
		Contact:  "amina@example.com",
		Password: "hunter22",
		Role:     RoleCommunity,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "verify your account first")
}

func TestHandler_Login_SetsSessionCookie(t *testing.T) {
	f := newHandlerFixture(t)

	f.signupVerified(t, validSignup())

	rec := f.post(t, "/auth/login", LoginRequest{
		Contact:  "amina@example.com",
		Password: "hunter22",
		Role:     RoleCommunity,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "expected session cookie to be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour/time.Second), cookie.MaxAge)

	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "amina@example.com", user["email"])
	assert.Equal(t, true, user["isVerified"])
}

func TestHandler_Login_WrongCredentialsCollapse(t *testing.T) {
	f := newHandlerFixture(t)

	f.signupVerified(t, validSignup())

	// Unknown account and wrong password surface the same message.
	for _, req := range []LoginRequest{
		{Contact: "ghost@example.com", Password: "hunter22", Role: RoleCommunity},
		{Contact: "amina@example.com", Password: "nope", Role: RoleCommunity},
	} {
		rec := f.post(t, "/auth/login", req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid credentials", body["error"])
	}
}

func TestHandler_UpdateProfile_WithCookie(t *testing.T) {
	f := newHandlerFixture(t)

	f.signupVerified(t, validSignup())

	login := f.post(t, "/auth/login", LoginRequest{
		Contact:  "amina@example.com",
		Password: "hunter22",
		Role:     RoleCommunity,
	})
	require.Equal(t, http.StatusOK, login.Code)

	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	rec := f.do(t, http.MethodPut, "/auth/update-profile", UpdateProfileRequest{
		FirstName: "Aminata",
		LastName:  "Okafor",
		Phone:     "+2348011111111",
		Role:      RoleHealthWorker,
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Aminata", user["firstName"])
	assert.Equal(t, "health-worker", user["role"])
}

func TestHandler_UpdateProfile_NoToken(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(t, http.MethodPut, "/auth/update-profile", UpdateProfileRequest{
		FirstName: "X",
		LastName:  "Y",
		Phone:     "+2340000000000",
		Role:      RoleCommunity,
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_UpdateProfile_AdminElevationForbidden(t *testing.T) {
	f := newHandlerFixture(t)

	f.signupVerified(t, validSignup())

	login := f.post(t, "/auth/login", LoginRequest{
		Contact:  "amina@example.com",
		Password: "hunter22",
		Role:     RoleCommunity,
	})
	require.Equal(t, http.StatusOK, login.Code)

	rec := f.do(t, http.MethodPut, "/auth/update-profile", UpdateProfileRequest{
		FirstName: "Amina",
		LastName:  "Okafor",
		Phone:     "+2348012345678",
		Role:      RoleAdmin,
	}, sessionCookie(login))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_ResendOTP_UnknownUser(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/resend-otp", ResendOTPRequest{
		Email: "nobody@example.com",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "User not found", body["error"])
}

func TestHandler_ResendOTP_AlreadyVerified(t *testing.T) {
	f := newHandlerFixture(t)

	user := f.signupVerified(t, validSignup())

	rec := f.post(t, "/auth/resend-otp", ResendOTPRequest{Email: user.Email})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "Account is already verified", body["error"])
}

func TestHandler_Logout_ClearsCookie(t *testing.T) {
	f := newHandlerFixture(t)

	f.signupVerified(t, validSignup())

	login := f.post(t, "/auth/login", LoginRequest{
		Contact:  "amina@example.com",
		Password: "hunter22",
		Role:     RoleCommunity,
	})
	require.Equal(t, http.StatusOK, login.Code)

	rec := f.do(t, http.MethodPost, "/auth/logout", struct{}{}, sessionCookie(login))
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
