package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/config"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/Aazukvid2000/Pyxolotl/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "secreto123"

// fakeMailClient records outgoing mail instead of calling SendGrid.
type fakeMailClient struct {
	sent []fakeMail
}

type fakeMail struct {
	To      string
	Subject string
	Body    string
}

func (f *fakeMailClient) Send(_ context.Context, toEmail, subject, htmlBody string) error {
	f.sent = append(f.sent, fakeMail{To: toEmail, Subject: subject, Body: htmlBody})
	return nil
}

// fakeCloudinary stands in for the remote storage. Disabled by default so
// media writes stay on local disk under the test working directory.
type fakeCloudinary struct {
	enabled   bool
	uploadErr error
	uploads   []string
	destroyed []string
}

func (f *fakeCloudinary) Enabled() bool { return f.enabled }

func (f *fakeCloudinary) Upload(_ context.Context, file io.Reader, folder, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	url := fmt.Sprintf("https://res.cloudinary.com/test/upload/%s/asset_%d", folder, len(f.uploads)+1)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeCloudinary) Destroy(_ context.Context, publicID, _ string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

// fakeStripe scripts payment intents in memory.
type fakeStripe struct {
	err     error
	intents map[string]*client.PaymentIntent
}

func (f *fakeStripe) CreatePaymentIntent(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*client.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.intents == nil {
		f.intents = map[string]*client.PaymentIntent{}
	}
	intent := &client.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", len(f.intents)+1),
		ClientSecret: "cs_test_secret",
		Status:       "requires_payment_method",
		Amount:       amountCents,
		Currency:     currency,
		Metadata:     metadata,
	}
	f.intents[intent.ID] = intent
	return intent, nil
}

func (f *fakeStripe) GetPaymentIntent(_ context.Context, intentID string) (*client.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	intent, ok := f.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("no such intent: %s", intentID)
	}
	return intent, nil
}

type testEnv struct {
	db         *gorm.DB
	mail       *fakeMailClient
	stripe     *fakeStripe
	cloudinary *fakeCloudinary

	users     repository.UserRepository
	tokens    repository.TokenRepository
	games     repository.GameRepository
	reviews   repository.ReviewRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	library   repository.LibraryRepository
	downloads repository.DownloadRepository

	media    MediaService
	notifier NotificationService
	auth     AuthService
	game     GameService
	review   ReviewService
	commerce CommerceService
	libSvc   LibraryService
	admin    AdminService
}

// newTestEnv wires the full service graph against an on-disk sqlite database
// in a per-test working directory, so local media writes are isolated too.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	db, err := gorm.Open(sqlite.Open("pyxolotl_test.db"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
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

	env := &testEnv{
		db:         db,
		mail:       &fakeMailClient{},
		stripe:     &fakeStripe{},
		cloudinary: &fakeCloudinary{},
	}

	env.users = repository.NewUserRepository(db)
	env.tokens = repository.NewTokenRepository(db)
	env.games = repository.NewGameRepository(db)
	env.reviews = repository.NewReviewRepository(db)
	env.carts = repository.NewCartRepository(db)
	env.orders = repository.NewOrderRepository(db)
	env.library = repository.NewLibraryRepository(db)
	env.downloads = repository.NewDownloadRepository(db)

	log := zerolog.Nop()

	authCfg := config.Auth{Secret: "test-secret", AccessTokenTTL: time.Hour}
	adminCfg := config.Admin{AllowedEmails: []string{"lista@pyxolotl.com"}}
	pagCfg := config.Pagination{DefaultPageSize: 20, MaxPageSize: 100}
	uploadsCfg := config.Uploads{
		Dir:                    "uploads",
		MaxImageMB:             5,
		MaxVideoMB:             50,
		MaxGameMB:              500,
		RemoteImageThresholdMB: 2,
		RemoteVideoThresholdMB: 10,
		ImageFormats:           []string{"jpg", "jpeg", "png", "webp"},
		VideoFormats:           []string{"mp4", "webm"},
		GameFormats:            []string{"zip", "rar", "7z", "exe"},
	}
	checkoutCfg := config.Checkout{TaxRate: 0.16}
	stripeCfg := config.Stripe{ProcessingFee: 3}

	env.media = NewMediaService(uploadsCfg, env.cloudinary, log)
	env.notifier = NewNotificationService(env.mail, "http://localhost:3000", log)
	env.auth = NewAuthService(db, authCfg, env.users, env.tokens, env.media, env.notifier, log)
	env.game = NewGameService(db, adminCfg, pagCfg, env.games, env.library, env.users, env.media, env.notifier, log)
	env.review = NewReviewService(db, env.reviews, env.games, env.users, log)
	env.commerce = NewCommerceService(db, checkoutCfg, stripeCfg, env.stripe, env.games, env.carts, env.orders, env.library, env.notifier, log)
	env.libSvc = NewLibraryService(env.library, env.games, env.users, env.downloads, log)
	env.admin = NewAdminService(db, env.users, env.tokens, env.games, env.reviews, env.carts, env.orders, env.library, env.downloads, env.media, log)

	return env
}

func (e *testEnv) createUser(t *testing.T, name, email string, accountType model.AccountType, verified bool) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		AccountType:  accountType,
		Verified:     verified,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createGame(t *testing.T, developerID uint, title string, price float64, state model.GameState) *model.Game {
	t.Helper()

	game := &model.Game{
		Title:        title,
		Description:  "Un juego de prueba con una historia corta",
		Genre:        "plataformas",
		Price:        price,
		DeveloperID:  developerID,
		State:        state,
		DownloadKind: model.DownloadLink,
		PackageURL:   "https://example.itch.io/" + title,
		CoverURL:     "/uploads/juegos/0/imagenes/portada.png",
	}
	require.NoError(t, e.games.Create(context.Background(), e.db, game))
	return game
}

func (e *testEnv) grantLibrary(t *testing.T, userID, gameID uint, free bool) {
	t.Helper()
	require.NoError(t, e.library.Grant(context.Background(), e.db, &model.LibraryItem{
		UserID: userID,
		GameID: gameID,
		IsFree: free,
	}))
}

// multipartFile builds a parsed *multipart.FileHeader the way echo would
// hand it to a handler.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", "application/octet-stream")

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
