package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses token and session lifetimes
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Signing secrets are never
// hard-coded: the access and refresh secrets are distinct and both
// required.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign access tokens
	JWTRefresh     string        // secret used to sign refresh tokens
	AccessTTL      time.Duration // access token lifetime
	RefreshTTL     time.Duration // refresh token lifetime
	SessionTTL     time.Duration // session lifetime from creation
	BcryptCost     int           // bcrypt cost for password hashing
	FrontendURL    string        // base URL OAuth callbacks redirect to
	OAuth          OAuthConfig   // per-provider OAuth client settings
}

// OAuthProvider holds one provider's client credentials and callback.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// OAuthConfig groups the federated login providers.  A provider with
// an empty ClientID is treated as disabled and its routes return 404.
type OAuthConfig struct {
	Google   OAuthProvider
	GitHub   OAuthProvider
	LinkedIn OAuthProvider
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		JWTSecret:   must("JWT_SECRET"),
		JWTRefresh:  must("JWT_REFRESH_SECRET"),
		AccessTTL:   time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTL:  time.Duration(mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,
		SessionTTL:  time.Duration(envInt("SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:  mustInt("BCRYPT_COST"),
		FrontendURL: envStr("FRONTEND_URL", "http://localhost:3000"),
		OAuth: OAuthConfig{
			Google: OAuthProvider{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
				CallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
			},
			GitHub: OAuthProvider{
				ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
				ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
				CallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
			},
			LinkedIn: OAuthProvider{
				ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
				ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
				CallbackURL:  os.Getenv("LINKEDIN_CALLBACK_URL"),
			},
		},
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// Optional-variable helpers shared with ratelimit.go and redis.go.

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
