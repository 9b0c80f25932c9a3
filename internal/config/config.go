package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration
	GoogleClientID    string

	SMTP SMTPConfig

	SNSRegion string

	RedisAddr     string // empty = in-memory rate-limit store
	RedisPassword string

	AllowedOrigins []string // CORS allowed origins
	AdminEmails    []string // admin notification fan-out recipients

	DefaultLanguage string
	PortalBaseURL   string
	ShopBaseURL     string

	RateLimitPerMinute int
}

// SMTPConfig carries transport settings plus the per-account-class
// from-addresses the dispatcher selects between.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string

	FromSystem    string
	FromB2B       string
	FromB2C       string
	FromAffiliate string
	FromSupport   string
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Users              string
	B2CCustomers       string
	Affiliates         string
	Orders             string
	Credentials        string
	Sessions           string
	Presence           string
	PasswordResets     string
	EmailVerifications string
	EmailLog           string
	Materials          string
	AdminDocuments     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "eu-north-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
			B2CCustomers:       getEnv("DYNAMO_TABLE_B2C_CUSTOMERS", "b2c_customers"),
			Affiliates:         getEnv("DYNAMO_TABLE_AFFILIATES", "affiliates"),
			Orders:             getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Credentials:        getEnv("DYNAMO_TABLE_CREDENTIALS", "credentials"),
			Sessions:           getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Presence:           getEnv("DYNAMO_TABLE_PRESENCE", "admin_presence"),
			PasswordResets:     getEnv("DYNAMO_TABLE_PASSWORD_RESETS", "password_resets"),
			EmailVerifications: getEnv("DYNAMO_TABLE_EMAIL_VERIFICATIONS", "email_verifications"),
			EmailLog:           getEnv("DYNAMO_TABLE_EMAIL_LOG", "email_log"),
			Materials:          getEnv("DYNAMO_TABLE_MATERIALS", "marketing_materials"),
			AdminDocuments:     getEnv("DYNAMO_TABLE_ADMIN_DOCUMENTS", "admin_documents"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "b8s-materials"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,
		GoogleClientID:    getEnv("GOOGLE_CLIENT_ID", ""),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),

			FromSystem:    getEnv("SMTP_FROM_SYSTEM", "B8Shield <info@b8shield.com>"),
			FromB2B:       getEnv("SMTP_FROM_B2B", "B8Shield Partner <partner@b8shield.com>"),
			FromB2C:       getEnv("SMTP_FROM_B2C", "B8Shield Shop <shop@b8shield.com>"),
			FromAffiliate: getEnv("SMTP_FROM_AFFILIATE", "B8Shield Affiliates <affiliates@b8shield.com>"),
			FromSupport:   getEnv("SMTP_FROM_SUPPORT", "B8Shield Support <support@b8shield.com>"),
		},

		SNSRegion: getEnv("SNS_REGION", "eu-north-1"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AllowedOrigins: splitEnv("ALLOWED_ORIGINS", "https://partner.b8shield.com,https://shop.b8shield.com"),
		AdminEmails:    splitEnv("ADMIN_EMAILS", "info@b8shield.com"),

		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "sv-SE"),
		PortalBaseURL:   getEnv("PORTAL_BASE_URL", "https://partner.b8shield.com"),
		ShopBaseURL:     getEnv("SHOP_BASE_URL", "https://shop.b8shield.com"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
