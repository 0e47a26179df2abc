package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	DB       DBConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Razorpay RazorpayConfig
	PayPal   PayPalConfig
	Upload   UploadConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env          string // development, staging, production
	Name         string
	FrontendURL  string // base para links en emails (proyecto, descarga)
	SupportEmail string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT y cookie de sesión.
type JWTConfig struct {
	Secret           string
	Expiration       int // minutos
	Issuer           string
	CookieExpireDays int
}

// SMTPConfig configuración del servidor de correo saliente.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// RazorpayConfig credenciales de Razorpay. El Secret firma el HMAC de verificación.
type RazorpayConfig struct {
	KeyID  string
	Secret string
}

// PayPalConfig credenciales de PayPal. Env "live" usa el API base de producción.
type PayPalConfig struct {
	ClientID string
	Secret   string
	Env      string // sandbox, live
}

// UploadConfig raíz del almacenamiento de archivos subidos.
type UploadConfig struct {
	BaseDir string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:          getString(v, "APP_ENV", "development"),
			Name:         getString(v, "APP_NAME", "quote3d-api"),
			FrontendURL:  getString(v, "FRONTEND_URL", "http://localhost:3000"),
			SupportEmail: getString(v, "SUPPORT_EMAIL", "support@quote3d.io"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5000),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "quote3d"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:           getString(v, "JWT_SECRET", ""),
			Expiration:       getInt(v, "JWT_EXPIRATION_MINUTES", 60*24),
			Issuer:           getString(v, "JWT_ISSUER", "quote3d-api"),
			CookieExpireDays: getInt(v, "JWT_COOKIE_EXPIRE", 30),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", "localhost"),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "no-reply@quote3d.io"),
		},
		Razorpay: RazorpayConfig{
			KeyID:  getString(v, "RAZORPAY_KEY_ID", ""),
			Secret: getString(v, "RAZORPAY_SECRET", ""),
		},
		PayPal: PayPalConfig{
			ClientID: getString(v, "PAYPAL_CLIENT_ID", ""),
			Secret:   getString(v, "PAYPAL_CLIENT_SECRET", ""),
			Env:      getString(v, "PAYPAL_ENV", "sandbox"),
		},
		Upload: UploadConfig{
			BaseDir: getString(v, "UPLOAD_BASE_DIR", "./storage"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
