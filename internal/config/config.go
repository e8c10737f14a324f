package config

import "time"

type Config struct {
	App         App
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth       Auth
	Admin      Admin
	CORS       CORS
	Uploads    Uploads
	Pagination Pagination
	Checkout   Checkout

	SendGrid   SendGrid   `envPrefix:"SENDGRID_"`
	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Stripe     Stripe     `envPrefix:"STRIPE_"`
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"Pyxolotl"`
	Version string `env:"APP_VERSION" envDefault:"1.0.0"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8000"`
}

type Auth struct {
	Secret         string        `env:"SECRET_KEY"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"` // 7 days
}

type Admin struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	// extra accounts treated as admins regardless of stored account type
	AllowedEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
}

type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type Uploads struct {
	Dir string `env:"UPLOAD_DIR" envDefault:"uploads"`

	MaxImageMB int64 `env:"MAX_IMAGE_SIZE_MB" envDefault:"5"`
	MaxVideoMB int64 `env:"MAX_VIDEO_SIZE_MB" envDefault:"50"`
	MaxGameMB  int64 `env:"MAX_GAME_SIZE_MB" envDefault:"500"`

	// assets above these sizes go to remote storage instead of local disk
	RemoteImageThresholdMB int64 `env:"REMOTE_IMAGE_THRESHOLD_MB" envDefault:"2"`
	RemoteVideoThresholdMB int64 `env:"REMOTE_VIDEO_THRESHOLD_MB" envDefault:"10"`

	ImageFormats []string `env:"ALLOWED_IMAGE_FORMATS" envSeparator:"," envDefault:"jpg,jpeg,png,webp"`
	VideoFormats []string `env:"ALLOWED_VIDEO_FORMATS" envSeparator:"," envDefault:"mp4,webm"`
	GameFormats  []string `env:"ALLOWED_GAME_FORMATS" envSeparator:"," envDefault:"zip,rar,7z,exe"`
}

type Pagination struct {
	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`
}

type Checkout struct {
	TaxRate float64 `env:"TAX_RATE" envDefault:"0.16"`
}

type SendGrid struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.sendgrid.com"`
	APIKey     string `env:"API_KEY"`
	FromEmail  string `env:"FROM_EMAIL" envDefault:"noreply@pyxolotl.com"`
	FromName   string `env:"FROM_NAME" envDefault:"Pyxolotl"`
}

type Cloudinary struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.cloudinary.com"`
	CloudName  string `env:"CLOUD_NAME"`
	APIKey     string `env:"API_KEY"`
	APISecret  string `env:"API_SECRET"`
}

type Stripe struct {
	BaseApiURL     string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	// flat surcharge added on processor-backed checkouts
	ProcessingFee float64 `env:"PROCESSING_FEE" envDefault:"3"`
}
