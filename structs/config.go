package structs

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Database  *DatabaseConfig
	Auth      *AuthConfig
	Email     *EmailConfig
	Cache     *CacheConfig
	RateLimit *RateLimitConfig
}

type ServerConfig struct {
	AppName        string        // RxVision
	Environment    string        // development, production
	Port           string        // :8082
	PublicBaseURL  string        // base of links sent by email, e.g. https://app.rxvision.io
	FrontendURL    string        // where page routes redirect to
	CookieDomain   string        // shared cookie domain in production, e.g. .rxvision.io
	ReadTimeout    time.Duration // in seconds
	WriteTimeout   time.Duration // in seconds
	IdleTimeout    time.Duration // in seconds
	MaxHeaderBytes int           // in bytes
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type DatabaseConfig struct {
	URL          string // DATABASE_URL, takes precedence over the discrete fields
	Driver       string // pgdriver, pgx, memory
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AutoMigrate  bool
}

// DSN returns the connection string, preferring DATABASE_URL when present.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type AuthConfig struct {
	SessionSecret          string
	SessionMaxAge          time.Duration
	VerificationTokenTTL   time.Duration
	ResetTokenTTL          time.Duration
	RequireVerifiedEmail   bool
	CacheUserTTL           time.Duration
	BlacklistCacheTTL      time.Duration
	VerificationResendWait time.Duration
}

type EmailConfig struct {
	ApiKey       string
	From         string
	SupportEmail string
}

type CacheConfig struct {
	Enabled         bool
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

type RateLimitConfig struct {
	Enabled        bool
	AuthLimit      int
	AuthWindow     time.Duration
	GeneralLimit   int
	GeneralWindow  time.Duration
	TrustedProxies []string // addresses or CIDRs allowed to set X-Forwarded-For
}
