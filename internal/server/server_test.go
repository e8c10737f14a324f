package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/middleware"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/Aazukvid2000/Pyxolotl/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestServer wires the full stack against a throwaway sqlite database.
// The mail client runs in simulation mode and Cloudinary stays disabled,
// so everything works offline.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
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
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.VerificationToken{},
		&model.Game{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.LibraryItem{},
		&model.Review{},
		&model.DownloadLog{},
	))

	cfg := &config.Config{
		App:         config.App{Name: "Pyxolotl", Version: "1.0.0"},
		FrontendURL: "http://localhost:3000",
		Auth:        config.Auth{Secret: "test-secret", AccessTokenTTL: time.Hour},
		Admin:       config.Admin{AllowedEmails: []string{"lista@pyxolotl.com"}},
		CORS:        config.CORS{AllowedOrigins: []string{"http://localhost:3000"}},
		Uploads: config.Uploads{
			Dir:          "uploads",
			MaxImageMB:   5,
			MaxVideoMB:   50,
			MaxGameMB:    500,
			ImageFormats: []string{"jpg", "jpeg", "png", "webp"},
			VideoFormats: []string{"mp4", "webm"},
			GameFormats:  []string{"zip", "rar", "7z", "exe"},
		},
		Pagination: config.Pagination{DefaultPageSize: 20, MaxPageSize: 100},
		Checkout:   config.Checkout{TaxRate: 0.16},
		Stripe:     config.Stripe{ProcessingFee: 3},
	}

	log := zerolog.Nop()

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	mailClient := client.NewSendgridClient(&cfg.SendGrid, log)
	cloudinaryClient := client.NewCloudinaryClient(&cfg.Cloudinary)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	gameRepo := repository.NewGameRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)

	mediaService := service.NewMediaService(cfg.Uploads, cloudinaryClient, log)
	notificationService := service.NewNotificationService(mailClient, cfg.FrontendURL, log)
	authService := service.NewAuthService(db, cfg.Auth, userRepo, tokenRepo, mediaService, notificationService, log)
	gameService := service.NewGameService(db, cfg.Admin, cfg.Pagination, gameRepo, libraryRepo, userRepo, mediaService, notificationService, log)
	reviewService := service.NewReviewService(db, reviewRepo, gameRepo, userRepo, log)
	commerceService := service.NewCommerceService(db, cfg.Checkout, cfg.Stripe, stripeClient, gameRepo, cartRepo, orderRepo, libraryRepo, notificationService, log)
	libraryService := service.NewLibraryService(libraryRepo, gameRepo, userRepo, downloadRepo, log)
	adminService := service.NewAdminService(db, userRepo, tokenRepo, gameRepo, reviewRepo, cartRepo, orderRepo, libraryRepo, downloadRepo, mediaService, log)

	authenticator := middleware.NewAuthenticator(cfg.Auth, cfg.Admin, userRepo, log)

	srv := NewServer(cfg, authenticator,
		authService, gameService, reviewService, commerceService, libraryService, adminService, log)
	return srv, db
}

func doRequest(srv *Server, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func loginAs(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := doRequest(srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "secreto123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["access_token"].(string)
}

func seedAccount(t *testing.T, db *gorm.DB, name, email string, accountType model.AccountType, verified bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AccountType:  accountType,
		Verified:     verified,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRootAndHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Pyxolotl", body["app"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "online", body["status"])

	rec = doRequest(srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestRegistrationAndVerificationFlow(t *testing.T) {
	srv, db := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/registro", "", map[string]string{
		"nombre":   "Ana",
		"email":    "ana@example.com",
		"password": "secreto123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Cuenta creada exitosamente. Por favor verifica tu email.", body["message"])
	assert.Equal(t, true, body["success"])

	// not verified yet, profile is off limits
	token := loginAs(t, srv, "ana@example.com")
	rec = doRequest(srv, http.MethodGet, "/api/auth/perfil", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Cuenta no verificada. Por favor verifica tu email.", decodeBody(t, rec)["detail"])

	var verification model.VerificationToken
	require.NoError(t, db.Where("purpose = ?", model.TokenEmail).First(&verification).Error)

	rec = doRequest(srv, http.MethodGet, "/api/auth/verificar/"+verification.Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verificado exitosamente. Ya puedes iniciar sesión.", decodeBody(t, rec)["message"])

	rec = doRequest(srv, http.MethodGet, "/api/auth/perfil", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeBody(t, rec)
	assert.Equal(t, "ana@example.com", profile["email"])
	assert.Equal(t, true, profile["verificado"])
}

func TestRegistrationValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/auth/registro", "", map[string]string{
		"nombre":   "Ana",
		"password": "secreto123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Campo 'email' inválido (required)", body["detail"])
	assert.Equal(t, false, body["success"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, db := newTestServer(t)
	seedAccount(t, db, "Ana", "ana@example.com", model.AccountBuyer, true)

	rec := doRequest(srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "equivocada",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Correo o contraseña incorrectos", decodeBody(t, rec)["detail"])
}

func TestAdminRoutesNeedPrivileges(t *testing.T) {
	srv, db := newTestServer(t)
	seedAccount(t, db, "Ana", "ana@example.com", model.AccountBuyer, true)
	seedAccount(t, db, "Root", "root@example.com", model.AccountAdmin, true)

	rec := doRequest(srv, http.MethodGet, "/api/admin/stats", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No se pudo validar las credenciales", decodeBody(t, rec)["detail"])

	buyerToken := loginAs(t, srv, "ana@example.com")
	rec = doRequest(srv, http.MethodGet, "/api/admin/stats", buyerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Se requieren permisos de administrador", decodeBody(t, rec)["detail"])

	adminToken := loginAs(t, srv, "root@example.com")
	rec = doRequest(srv, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	assert.Equal(t, float64(2), stats["total_usuarios"])
}

func TestPublicCatalog(t *testing.T) {
	srv, db := newTestServer(t)
	dev := seedAccount(t, db, "Dev", "dev@example.com", model.AccountDeveloper, true)

	rec := doRequest(srv, http.MethodGet, "/api/juegos/catalogo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	require.NoError(t, db.Create(&model.Game{
		Title:        "Cueva Estelar",
		Description:  "Un juego de prueba con una historia corta",
		Genre:        "plataformas",
		Price:        49.99,
		DeveloperID:  dev.ID,
		State:        model.StateApproved,
		DownloadKind: model.DownloadLink,
		PackageURL:   "https://example.itch.io/cueva",
	}).Error)

	rec = doRequest(srv, http.MethodGet, "/api/juegos/catalogo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var games []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &games))
	require.Len(t, games, 1)
	assert.Equal(t, "Cueva Estelar", games[0]["titulo"])
}

func TestStaticUploads(t *testing.T) {
	srv, _ := newTestServer(t)

	require.NoError(t, os.MkdirAll("uploads/juegos/1/imagenes", 0o755))
	require.NoError(t, os.WriteFile("uploads/juegos/1/imagenes/portada.png", []byte("png bytes"), 0o644))

	rec := doRequest(srv, http.MethodGet, "/uploads/juegos/1/imagenes/portada.png", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png bytes", rec.Body.String())
}
