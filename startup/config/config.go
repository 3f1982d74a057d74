package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	IdentityBaseURL string
	IdentityAPIKey  string
	JaegerAddress   string
	LogFilePath     string
}

func NewConfig() *Config {
	return &Config{
		APIBaseURL:      os.Getenv("RENTING_API_URL"),
		RequestTimeout:  requestTimeout(),
		IdentityBaseURL: os.Getenv("IDENTITY_PROVIDER_URL"),
		IdentityAPIKey:  os.Getenv("IDENTITY_API_KEY"),
		JaegerAddress:   os.Getenv("JAEGER_ADDRESS"),
		LogFilePath:     os.Getenv("RENTING_LOG_FILE"),
	}
}

func requestTimeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("RENTING_REQUEST_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 10000 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
