package config // package config loads application configuration from environment variables

import (
	"log"     // log reports insecure defaults at startup
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Defaults for secrets are intentionally weak so the service can boot in a
// local development environment. They must never reach production, which is
// why Load prints a warning whenever one of them is in effect.
const (
	defaultJWTSecret  = "dev_jwt_secret_change_me"
	defaultDoctorCode = "DOC_2025"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The struct is built once in main and passed by
// value to every component that needs it; nothing reads the environment
// after startup.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign bearer tokens
	TokenTTLDays int    // bearer token time-to-live in days
	BcryptCost   int    // bcrypt cost for password hashing
	DoctorCode   string // secret code required to register a doctor account
	MinPwLen     int    // minimum accepted password length
}

// Load reads configuration values from environment variables and returns a
// Config. Database settings are required and enforced by must(); everything
// else falls back to a development default.
func Load() Config {
	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("APP_PORT", "5000"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    envStr("JWT_SECRET", defaultJWTSecret),
		TokenTTLDays: envInt("TOKEN_TTL_DAYS", 7),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		DoctorCode:   envStr("DOCTOR_SECRET_CODE", defaultDoctorCode),
		MinPwLen:     envInt("MIN_PASSWORD_LEN", 6),
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Printf("WARNING: JWT_SECRET not set, using insecure default (dev only)")
	}
	if cfg.DoctorCode == defaultDoctorCode {
		log.Printf("WARNING: DOCTOR_SECRET_CODE not set, using insecure default (dev only)")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envStr returns the value of key or the given default when unset.
func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envInt is like envStr but parses the value as an integer. Unparseable
// values fall back to the default rather than aborting startup.
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
