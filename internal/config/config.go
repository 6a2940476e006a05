package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL string
	APIToken   string
	APIRPS     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HTTPPort         string
	InternalAPIToken string

	MaxBrowserTabs int
	PageLoadDelay  time.Duration

	TaskTimeout         time.Duration
	TaskSettleDelay     time.Duration
	TaskWatchWindow     time.Duration
	InterTaskDelay      time.Duration
	MinRefreshInterval  time.Duration
	AutoExtractInterval time.Duration
	ProfileInterval     time.Duration
	StartupDelay        time.Duration

	DebounceQuietWindow time.Duration
}

func Load() *Config {
	return &Config{
		APIBaseURL: getEnv("API_BASE_URL", "https://api.replystack.io/v1"),
		APIToken:   getEnv("API_TOKEN", ""),
		APIRPS:     getEnvInt("API_RPS", 5),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		HTTPPort:         getEnv("HTTP_PORT", "8084"),
		InternalAPIToken: getEnv("INTERNAL_API_TOKEN", ""),

		MaxBrowserTabs: getEnvInt("MAX_BROWSER_TABS", 3),
		PageLoadDelay:  getEnvDuration("PAGE_LOAD_DELAY", 2*time.Second),

		TaskTimeout:         getEnvDuration("TASK_TIMEOUT", 30*time.Second),
		TaskSettleDelay:     getEnvDuration("TASK_SETTLE_DELAY", 3*time.Second),
		TaskWatchWindow:     getEnvDuration("TASK_WATCH_WINDOW", 20*time.Second),
		InterTaskDelay:      getEnvDuration("INTER_TASK_DELAY", 5*time.Second),
		MinRefreshInterval:  getEnvDuration("MIN_REFRESH_INTERVAL", 24*time.Hour),
		AutoExtractInterval: getEnvDuration("AUTO_EXTRACT_INTERVAL", 6*time.Hour),
		ProfileInterval:     getEnvDuration("PROFILE_INTERVAL", 30*time.Minute),
		StartupDelay:        getEnvDuration("STARTUP_DELAY", 15*time.Second),

		DebounceQuietWindow: getEnvDuration("DEBOUNCE_QUIET_WINDOW", 2*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
