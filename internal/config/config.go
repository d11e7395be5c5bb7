package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Missing-product policies for the checkout review.
const (
	CheckoutMissingFail = "fail"
	CheckoutMissingDrop = "drop"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	// SessionBackend is "sql" (sessions table) or "redis".
	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration

	ShippingFee            decimal.Decimal
	ShippingOnEmptyView    bool
	ShippingOnEmptyRemoval bool
	CheckoutMissingPolicy  string

	Templates string
}

func Load() Config {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	cfg := Config{
		Port:     getEnv("PORT", "8081"),
		DBDSN:    getEnv("DB_DSN", "olivosverdes.db"),
		LogFile:  getEnv("LOG_FILE", "./olivosverdes.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "sql")),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60*24*14)) * time.Minute,

		ShippingFee:            getEnvDecimal("SHIPPING_FEE", decimal.RequireFromString("40.00")),
		ShippingOnEmptyView:    getEnvBool("SHIPPING_ON_EMPTY_VIEW", true),
		ShippingOnEmptyRemoval: getEnvBool("SHIPPING_ON_EMPTY_REMOVAL", false),
		CheckoutMissingPolicy:  strings.ToLower(getEnv("CHECKOUT_MISSING_POLICY", CheckoutMissingFail)),

		Templates: getEnv("TEMPLATES_DIR", "./web/templates"),
	}
	if cfg.CheckoutMissingPolicy != CheckoutMissingDrop {
		cfg.CheckoutMissingPolicy = CheckoutMissingFail
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SESSION_BACKEND=%s SHIPPING_FEE=%s CHECKOUT_MISSING_POLICY=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.SessionBackend, cfg.ShippingFee.StringFixed(2), cfg.CheckoutMissingPolicy)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}
