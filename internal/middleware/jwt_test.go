package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/utils"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"email": c.Get("email"),
			"role":  c.Get("role"),
		})
	}
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	require.NoError(t, handler(c))
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "amira@example.com", "student", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "amira@example.com")
	assert.Contains(t, rec.Body.String(), "student")
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec := runProtected(t, "", JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 42, "amira@example.com", "student", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "amira@example.com", "student", -5)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, "root@example.com", "admin", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole("admin"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleBlocksStudentFromAdmin(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "amira@example.com", "student", 15)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireRole("admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
