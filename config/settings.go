package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/davidzaratecamp/paginacarebackend/errs"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	MailTransportSMTP   = "smtp"
	MailTransportResend = "resend"
)

// Config is the typed application configuration. It is built once in main and
// passed to every constructor that needs a setting.
type Config struct {
	Env      string
	LogLevel string

	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Mail     MailConfig
	Seed     AdminSeed
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AcceptedOrigins []string
	MaxBodyBytes    int64
}

type DatabaseConfig struct {
	// DSN wins over the discrete fields when set.
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	SchemaReport    bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
}

type MailConfig struct {
	Transport    string
	From         string
	To           []string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	ResendAPIKey string
	ResendURL    string
	SiteName     string
}

// AdminSeed describes the admin inserted when the admins table is empty.
type AdminSeed struct {
	Username string
	Password string
	Email    string
	Name     string
}

// Enabled reports whether notifications can be delivered at all.
func (m MailConfig) Enabled() bool {
	return m.Transport != "" && m.From != "" && len(m.To) > 0
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ConnectionString returns the postgres connection string for the configured database.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Load builds a Config from an environment map such as the one returned by New.
func Load(env map[string]string) Config {
	return Config{
		Env:      GetString(env, "APP_ENV", EnvDevelopment),
		LogLevel: GetString(env, "LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:            GetString(env, "PORT", "8080"),
			ReadTimeout:     time.Duration(GetInt(env, "READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(GetInt(env, "WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
			IdleTimeout:     time.Duration(GetInt(env, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second,
			ShutdownTimeout: time.Duration(GetInt(env, "SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
			AcceptedOrigins: GetList(env, "ACCEPTED_ORIGINS", []string{"http://localhost:3000"}),
			MaxBodyBytes:    int64(GetInt(env, "MAX_BODY_BYTES", 1<<20)),
		},
		Database: DatabaseConfig{
			DSN:             GetString(env, "DATABASE_URL", ""),
			Host:            GetString(env, "DB_HOST", "localhost"),
			Port:            GetString(env, "DB_PORT", "5432"),
			User:            GetString(env, "DB_USER", "postgres"),
			Password:        GetString(env, "DB_PASSWORD", ""),
			Name:            GetString(env, "DB_NAME", "paginacare"),
			SSLMode:         GetString(env, "DB_SSLMODE", "disable"),
			MaxOpenConns:    GetInt(env, "DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetInt(env, "DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(GetInt(env, "DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
			AutoMigrate:     GetBool(env, "DB_AUTO_MIGRATE", true),
			SchemaReport:    GetBool(env, "GENERATE_COLUMN_REPORT", false),
		},
		Auth: AuthConfig{
			JWTSecret: GetString(env, "JWT_SECRET", ""),
			TokenTTL:  time.Duration(GetInt(env, "TOKEN_TTL_HOURS", 24)) * time.Hour,
			Issuer:    GetString(env, "JWT_ISSUER", "paginacare"),
		},
		Mail: MailConfig{
			Transport:    GetString(env, "MAIL_TRANSPORT", ""),
			From:         GetString(env, "MAIL_FROM", ""),
			To:           GetList(env, "MAIL_TO", nil),
			SMTPHost:     GetString(env, "SMTP_HOST", ""),
			SMTPPort:     GetInt(env, "SMTP_PORT", 587),
			SMTPUsername: GetString(env, "SMTP_USER", ""),
			SMTPPassword: GetString(env, "SMTP_PASSWORD", ""),
			ResendAPIKey: GetString(env, "RESEND_API_KEY", ""),
			ResendURL:    GetString(env, "RESEND_API_URL", "https://api.resend.com/emails"),
			SiteName:     GetString(env, "SITE_NAME", "PaginaCare"),
		},
		Seed: AdminSeed{
			Username: GetString(env, "ADMIN_USERNAME", ""),
			Password: GetString(env, "ADMIN_PASSWORD", ""),
			Email:    GetString(env, "ADMIN_EMAIL", ""),
			Name:     GetString(env, "ADMIN_NAME", "Administrador"),
		},
	}
}

// devSecret is only accepted outside production.
const devSecret = "development-secret-change-me"

// Validate checks settings that would otherwise fail at first use. In
// development a missing JWT secret is replaced with a fixed one.
func (c *Config) Validate() error {
	var problems []error

	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		problems = append(problems, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Errorf("PORT must be numeric, got %q", c.Server.Port))
	}
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			problems = append(problems, errors.New("JWT_SECRET is required in production"))
		} else {
			c.Auth.JWTSecret = devSecret
		}
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, errors.New("TOKEN_TTL_HOURS must be positive"))
	}
	switch c.Mail.Transport {
	case "", MailTransportSMTP, MailTransportResend:
	default:
		problems = append(problems, fmt.Errorf("MAIL_TRANSPORT must be %q, %q or empty, got %q", MailTransportSMTP, MailTransportResend, c.Mail.Transport))
	}
	if c.Mail.Transport == MailTransportSMTP && c.Mail.SMTPHost == "" {
		problems = append(problems, errors.New("SMTP_HOST is required when MAIL_TRANSPORT=smtp"))
	}
	if c.Mail.Transport == MailTransportResend && c.Mail.ResendAPIKey == "" {
		problems = append(problems, errors.New("RESEND_API_KEY is required when MAIL_TRANSPORT=resend"))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrConfigInvalid, errors.Join(problems...))
	}
	return nil
}
