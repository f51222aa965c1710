package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Env        string        `envconfig:"APP_ENV" default:"development"`
		Name       string        `envconfig:"APP_NAME" default:"FitActive Vitan"`
		BaseURL    string        `envconfig:"APP_BASE_URL" default:"http://localhost:5173"`
		Port       int           `envconfig:"PORT" default:"3001"`
		CORSOrigin string        `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
		LogLevel   string        `envconfig:"LOG_LEVEL" default:"info"`
		Shutdown   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	}

	GRPC struct {
		HealthAddr string `envconfig:"GRPC_HEALTH_ADDR" default:":50051"`
	}

	DB struct {
		URL  string `envconfig:"DATABASE_URL"`
		Path string `envconfig:"DATABASE_PATH" default:"./data.sqlite"`
	}

	Netopia struct {
		APIBase       string        `envconfig:"NETOPIA_API_BASE" default:"https://secure.sandbox.netopia-payments.com"`
		APIKey        string        `envconfig:"NETOPIA_API_KEY"`
		POSSignature  string        `envconfig:"NETOPIA_POS_SIGNATURE"`
		PublicKeyPath string        `envconfig:"NETOPIA_PUBLIC_KEY_PATH" default:"./netopia_public.pem"`
		NotifyURL     string        `envconfig:"NETOPIA_NOTIFY_URL" default:"http://localhost:3001/payments/notify"`
		RedirectPath  string        `envconfig:"NETOPIA_REDIRECT_PATH" default:"#thank-you"`
		Timeout       time.Duration `envconfig:"NETOPIA_TIMEOUT" default:"30s"`
	}

	SmartBill struct {
		APIBase     string        `envconfig:"SMARTBILL_API_BASE" default:"https://api.smartbill.ro"`
		Email       string        `envconfig:"SMARTBILL_EMAIL"`
		Token       string        `envconfig:"SMARTBILL_TOKEN"`
		VATCode     string        `envconfig:"SMARTBILL_VATCODE"`
		Series      string        `envconfig:"SMARTBILL_SERIES" default:"FA"`
		ProductName string        `envconfig:"SMARTBILL_PRODUCT_NAME" default:"Abonament All Inclusive (presale) - FitActive Vitan"`
		TaxPercent  int           `envconfig:"SMARTBILL_TAX_PERCENT" default:"19"`
		Timeout     time.Duration `envconfig:"SMARTBILL_TIMEOUT" default:"30s"`
		ClaimTTL    time.Duration `envconfig:"INVOICE_CLAIM_TTL" default:"2m"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		User     string `envconfig:"SMTP_USER"`
		Password string `envconfig:"SMTP_PASS"`
		From     string `envconfig:"SMTP_FROM" default:"no-reply@fitactive.ro"`
	}
}

// EnvFile maps APP_ENV to the dotenv file loaded before the environment is read.
func EnvFile(env string) string {
	switch env {
	case "production":
		return ".env.prod"
	case "test":
		return ".env.test"
	default:
		return ".env"
	}
}

func Load() (*Config, error) {
	// APP_ENV may itself live in .env, so peek at the default file first.
	_ = godotenv.Load(EnvFile(currentEnv()))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Info("config loaded",
		"env", cfg.App.Env,
		"port", cfg.App.Port,
		"database", cfg.DatabaseDriver(),
		"netopia_api", cfg.Netopia.APIBase,
		"smartbill_api", cfg.SmartBill.APIBase,
	)

	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Netopia.APIKey == "" {
		missing = append(missing, "NETOPIA_API_KEY")
	}
	if c.Netopia.POSSignature == "" {
		missing = append(missing, "NETOPIA_POS_SIGNATURE")
	}
	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}
	return nil
}

// DatabaseDriver reports which order store backs the service.
func (c *Config) DatabaseDriver() string {
	if strings.HasPrefix(c.DB.URL, "postgres://") || strings.HasPrefix(c.DB.URL, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func (c *Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.App.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func currentEnv() string {
	if env, err := godotenv.Read(".env"); err == nil && env["APP_ENV"] != "" {
		return getenv("APP_ENV", env["APP_ENV"])
	}
	return getenv("APP_ENV", "development")
}
