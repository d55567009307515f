package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Host string
	Port int

	UserAgent string
	TimeoutMs int
	Proxy     string

	APIKey string

	Debug string

	DataDir      string
	AccountsFile string

	// ServiceName is the kind tag handed to the transport factory.
	ServiceName     string
	ServiceLoginURL string
	ServiceInfoURL  string

	LoginTimeoutMinutes  int
	InfoThresholdMinutes int
	SessionCheckCron     string
	TimeWindowTZ         string
}

var (
	cfg  *Config
	once sync.Once
)

const (
	DefaultLoginTimeoutMinutes  = 600
	DefaultInfoThresholdMinutes = 600
	DefaultSessionCheckCron     = "*/10 * * * *"
)

func Load() *Config {
	once.Do(func() {
		loadDotEnv()

		dataDir := getEnv("DATA_DIR", "./data")

		cfg = &Config{
			Host:                 getEnv("HOST", "0.0.0.0"),
			Port:                 getEnvInt("PORT", 8046),
			UserAgent:            getEnv("API_USER_AGENT", "accountpool/1.0"),
			TimeoutMs:            getEnvInt("TIMEOUT", 30000),
			Proxy:                getEnv("PROXY", ""),
			APIKey:               getEnv("API_KEY", ""),
			Debug:                getEnv("DEBUG", "off"),
			DataDir:              dataDir,
			AccountsFile:         getEnv("ACCOUNTS_FILE", filepath.Join(dataDir, "accounts.toml")),
			ServiceName:          getEnv("SERVICE_NAME", "httpform"),
			ServiceLoginURL:      getEnv("SERVICE_LOGIN_URL", ""),
			ServiceInfoURL:       getEnv("SERVICE_INFO_URL", ""),
			LoginTimeoutMinutes:  getEnvInt("LOGIN_TIMEOUT", DefaultLoginTimeoutMinutes),
			InfoThresholdMinutes: getEnvInt("INFO_THRESHOLD", DefaultInfoThresholdMinutes),
			SessionCheckCron:     getEnv("SESSION_CHECK_CRON", DefaultSessionCheckCron),
			TimeWindowTZ:         getEnv("TIME_WINDOW_TZ", ""),
		}

		if cfg.LoginTimeoutMinutes <= 0 {
			cfg.LoginTimeoutMinutes = DefaultLoginTimeoutMinutes
		}
		if cfg.InfoThresholdMinutes <= 0 {
			cfg.InfoThresholdMinutes = DefaultInfoThresholdMinutes
		}

		for i, arg := range os.Args[1:] {
			if arg == "-debug" && i+1 < len(os.Args[1:]) {
				cfg.Debug = os.Args[i+2]
			}
		}
	})

	return cfg
}

func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}

func (c *Config) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutMinutes) * time.Minute
}

func (c *Config) InfoThreshold() time.Duration {
	return time.Duration(c.InfoThresholdMinutes) * time.Minute
}

// Location returns the zone time windows are evaluated in.
func (c *Config) Location() *time.Location {
	if strings.TrimSpace(c.TimeWindowTZ) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeWindowTZ)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
