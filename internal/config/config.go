package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/majupersonalizados/briefing/internal/validation"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string
	ContentPath  string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret           string
	AdminSessionExpiry  time.Duration
	AdminPasswordHashes []string // bcrypt hashes, comma separated in ADMIN_PASSWORD_HASHES
	AdminEmails         []string // Google accounts allowed into the dashboard
	LoginRateLimit      int      // password attempts per client per window
	OAuthRateLimit      int      // Google sign-in starts per client per window
	LoginRateWindow     time.Duration
	TrustedProxies      []netip.Prefix // peers allowed to set X-Forwarded-For

	// OAuth (optional admin sign-in)
	GoogleClientID     string
	GoogleClientSecret string

	// Observability (optional)
	SentryDSN   string
	MetricsAddr string // internal listener for /metrics, empty disables it

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, Supabase S3, etc.)
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string // Optional: for S3-compatible services
	S3PublicURL    string // Optional: base URL of the public bucket (CDN, Supabase public URL, ...)
	UploadMaxBytes int64

	// Mail relay
	MailProvider string // "smtp", "resend" or "log"
	MailTo       string
	MailCC       string
	SMTPHost     string
	SMTPPort     int
	SMTPSecure   bool
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	ResendAPIKey string

	// Chat assistant
	OpenAIAPIKey  string
	OpenAIBaseURL string // Optional: OpenAI-compatible gateways
	ChatModel     string

	// Briefing wizard
	DraftExpiry  time.Duration
	FetchTimeout time.Duration // 0 keeps the transport defaults
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Maju Personalizados"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // Required: base URL for OAuth redirects
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "contato@majupersonalizados.com.br"),
		ContentPath:  envString("CONTENT_PATH", ""), // Empty: use embedded content

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/briefings.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:           envRequired("JWT_SECRET"),
		AdminSessionExpiry:  envDuration("ADMIN_SESSION_EXPIRY", 8*time.Hour),
		AdminPasswordHashes: envList("ADMIN_PASSWORD_HASHES"),
		AdminEmails:         envEmails("ADMIN_EMAILS"),
		LoginRateLimit:      envInt("LOGIN_RATE_LIMIT", 5),
		OAuthRateLimit:      envInt("OAUTH_RATE_LIMIT", 20),
		LoginRateWindow:     envDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		TrustedProxies:      envPrefixes("TRUSTED_PROXIES"),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),

		// Observability
		SentryDSN:   envString("SENTRY_DSN", ""),
		MetricsAddr: envString("METRICS_ADDR", "127.0.0.1:9091"),

		// Storage (S3-compatible - required for briefing attachments)
		S3Region:       envRequired("S3_REGION"),
		S3Bucket:       envString("S3_BUCKET", "briefing-files"),
		S3AccessKey:    envRequired("S3_ACCESS_KEY"),
		S3SecretKey:    envRequired("S3_SECRET_KEY"),
		S3Endpoint:     envString("S3_ENDPOINT", ""),
		S3PublicURL:    envString("S3_PUBLIC_URL", ""),
		UploadMaxBytes: int64(envInt("UPLOAD_MAX_BYTES", 50<<20)), // 50MB per request

		// Mail (SMTP_* are checked at send time, missing values fail the send)
		MailProvider: envString("MAIL_PROVIDER", "smtp"),
		MailTo:       envString("MAIL_TO", "kleberson.souza@majupersonalizados.com.br"),
		MailCC:       envString("MAIL_CC", "douglas@agencia2b.com.br"),
		SMTPHost:     envString("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPSecure:   envBool("SMTP_SECURE", false), // true for 465
		SMTPUser:     envString("SMTP_USER", ""),
		SMTPPass:     envString("SMTP_PASS", ""),
		SMTPFrom:     envString("SMTP_FROM", ""),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Chat assistant
		OpenAIAPIKey:  envString("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envString("OPENAI_BASE_URL", ""),
		ChatModel:     envString("CHAT_MODEL", "gpt-4o"),

		// Wizard
		DraftExpiry:  envDuration("DRAFT_EXPIRY", 24*time.Hour),
		FetchTimeout: envDuration("FETCH_TIMEOUT", 0),
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures the dashboard can be reached in production deployments.
// SMTP credentials are deliberately not checked here: the mail relay fails closed per request.
func validateProduction(cfg *Config) {
	if len(cfg.AdminPasswordHashes) == 0 && (cfg.GoogleClientID == "" || len(cfg.AdminEmails) == 0) {
		slog.Error("production deployment requires ADMIN_PASSWORD_HASHES or GOOGLE_CLIENT_ID with ADMIN_EMAILS",
			"hint", "generate a hash with: briefctl hash-password")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envEmails(key string) []string {
	var out []string
	for _, email := range envList(key) {
		email = strings.ToLower(email)
		err := validation.ValidateEmail(email)
		if err != nil {
			slog.Warn("config ignoring invalid email", "key", key, "value", email, "error", err)
			continue
		}
		out = append(out, email)
	}
	return out
}

// envPrefixes reads a comma separated list of CIDRs or bare addresses.
func envPrefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, item := range envList(key) {
		prefix, err := parsePrefix(item)
		if err != nil {
			slog.Warn("config ignoring invalid network", "key", key, "value", item, "error", err)
			continue
		}
		out = append(out, prefix)
	}
	return out
}

func parsePrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleSignInEnabled reports whether the dashboard offers Google sign-in.
func (c *Config) GoogleSignInEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && len(c.AdminEmails) > 0
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		SupportEmail: c.SupportEmail,

		GoogleClientID: c.GoogleClientID,

		S3Endpoint:     c.S3Endpoint,  // Needed for CSP policies
		S3PublicURL:    c.S3PublicURL, // Needed for CSP policies
		UploadMaxBytes: c.UploadMaxBytes,
	}
}
