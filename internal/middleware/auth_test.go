package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/apperr"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newAuthenticator(t *testing.T) (*Authenticator, *gorm.DB) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	db, err := gorm.Open(sqlite.Open("pyxolotl_test.db"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	auth := NewAuthenticator(
		config.Auth{Secret: testSecret, AccessTokenTTL: time.Hour},
		config.Admin{AllowedEmails: []string{"lista@pyxolotl.com"}},
		repository.NewUserRepository(db),
		zerolog.Nop(),
	)
	return auth, db
}

func seedUser(t *testing.T, db *gorm.DB, email string, accountType model.AccountType, verified bool) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Usuario",
		Email:        email,
		PasswordHash: "x",
		AccountType:  accountType,
		Verified:     verified,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func signToken(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func echoContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	auth, db := newAuthenticator(t)
	seedUser(t, db, "ana@example.com", model.AccountBuyer, true)

	cases := map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic dXNlcjpwYXNz",
		"not a token":   "Bearer basura",
		"bad signature": "Bearer " + signToken(t, "otro-secreto", "ana@example.com", time.Hour),
		"expired":       "Bearer " + signToken(t, testSecret, "ana@example.com", -time.Hour),
		"unknown email": "Bearer " + signToken(t, testSecret, "nadie@example.com", time.Hour),
		"empty subject": "Bearer " + signToken(t, testSecret, "", time.Hour),
	}

	for name, header := range cases {
		called := false
		c, rec := echoContext(header)

		err := auth.RequireAuth()(okHandler(&called))(c)
		require.Error(t, err, name)
		assert.False(t, called, name)
		assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized), name)
		assert.Contains(t, err.Error(), "No se pudo validar las credenciales", name)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate), name)
	}
}

func TestRequireAuthSetsCurrentUser(t *testing.T) {
	auth, db := newAuthenticator(t)
	user := seedUser(t, db, "ana@example.com", model.AccountBuyer, true)

	var got *model.User
	c, _ := echoContext("Bearer " + signToken(t, testSecret, user.Email, time.Hour))

	err := auth.RequireAuth()(func(c echo.Context) error {
		got = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestOptionalAuth(t *testing.T) {
	auth, db := newAuthenticator(t)
	user := seedUser(t, db, "ana@example.com", model.AccountBuyer, true)

	var got *model.User
	c, _ := echoContext("Bearer basura")
	err := auth.OptionalAuth()(func(c echo.Context) error {
		got = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	assert.Nil(t, got)

	c, _ = echoContext("Bearer " + signToken(t, testSecret, user.Email, time.Hour))
	err = auth.OptionalAuth()(func(c echo.Context) error {
		got = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestRequireVerified(t *testing.T) {
	auth, db := newAuthenticator(t)
	unverified := seedUser(t, db, "nuevo@example.com", model.AccountBuyer, false)
	verified := seedUser(t, db, "ana@example.com", model.AccountBuyer, true)

	called := false
	chain := auth.RequireAuth()(auth.RequireVerified()(okHandler(&called)))

	c, _ := echoContext("Bearer " + signToken(t, testSecret, unverified.Email, time.Hour))
	err := chain(c)
	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	assert.Contains(t, err.Error(), "Cuenta no verificada. Por favor verifica tu email.")

	c, _ = echoContext("Bearer " + signToken(t, testSecret, verified.Email, time.Hour))
	require.NoError(t, chain(c))
	assert.True(t, called)

	// without RequireAuth in front there is no user on the context
	c, _ = echoContext("")
	err = auth.RequireVerified()(okHandler(&called))(c)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestRequireDeveloper(t *testing.T) {
	auth, db := newAuthenticator(t)
	buyer := seedUser(t, db, "ana@example.com", model.AccountBuyer, true)
	dev := seedUser(t, db, "dev@example.com", model.AccountDeveloper, true)
	admin := seedUser(t, db, "root@example.com", model.AccountAdmin, true)

	called := false
	chain := auth.RequireAuth()(auth.RequireDeveloper()(okHandler(&called)))

	c, _ := echoContext("Bearer " + signToken(t, testSecret, buyer.Email, time.Hour))
	err := chain(c)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	assert.Contains(t, err.Error(), "Se requiere cuenta de desarrollador")

	for _, u := range []*model.User{dev, admin} {
		called = false
		c, _ = echoContext("Bearer " + signToken(t, testSecret, u.Email, time.Hour))
		require.NoError(t, chain(c))
		assert.True(t, called)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth, db := newAuthenticator(t)
	buyer := seedUser(t, db, "ana@example.com", model.AccountBuyer, true)
	admin := seedUser(t, db, "root@example.com", model.AccountAdmin, true)
	allowlisted := seedUser(t, db, "lista@pyxolotl.com", model.AccountBuyer, true)

	called := false
	chain := auth.RequireAuth()(auth.RequireAdmin()(okHandler(&called)))

	c, _ := echoContext("Bearer " + signToken(t, testSecret, buyer.Email, time.Hour))
	err := chain(c)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
	assert.Contains(t, err.Error(), "Se requieren permisos de administrador")

	for _, u := range []*model.User{admin, allowlisted} {
		called = false
		c, _ = echoContext("Bearer " + signToken(t, testSecret, u.Email, time.Hour))
		require.NoError(t, chain(c))
		assert.True(t, called)
	}
}
