package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	SiteURL     string   `env:"SITE_URL" envDefault:"https://voiceguideapp.com"`
	DatabaseURL string   `env:"DATABASE_URL" envDefault:"sqlite:voiceguide.db"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`

	Auth    Auth
	Admin   AdminBootstrap `envPrefix:"ADMIN_BOOTSTRAP_"`
	Stripe  Stripe         `envPrefix:"STRIPE_"`
	Paypal  Paypal         `envPrefix:"PAYPAL_"`
	AirLink AirLink        `envPrefix:"AIRLINK_"`
	Email   Email
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
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type AdminBootstrap struct {
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"eur"`
}

type Paypal struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Environment  string `env:"ENVIRONMENT" envDefault:"sandbox"` // sandbox | live
	ReturnURL    string `env:"RETURN_URL"`                        // public URL of GET /paypal/return
}

type AirLink struct {
	BaseURL     string        `env:"BASE_URL"`
	AdminSecret string        `env:"ADMIN_SECRET"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

type Email struct {
	Enabled bool `env:"EMAIL_ENABLED" envDefault:"false"`
	SMTP    SMTP `envPrefix:"SMTP_"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Pass     string `env:"PASS"`
	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME"`
	ReplyTo  string `env:"REPLY_TO"`
	TLS      bool   `env:"TLS" envDefault:"true"`
}

func (s Stripe) Enabled() bool { return s.SecretKey != "" }

func (p Paypal) Enabled() bool { return p.ClientID != "" && p.ClientSecret != "" }
