package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/lixenwraith/starfield/parameter"
)

// DefaultAPIURL is the Web API root used when SPOTIFY_API_URL is unset
const DefaultAPIURL = "https://api.spotify.com/v1"

// App stores the process configuration, CLI flags override it after LoadApp
type App struct {
	Token  string
	APIURL string

	// Redis analysis cache, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// SettingsPath is a dotenv-syntax file of tunables, watched for changes when set
	SettingsPath string

	LogPath  string
	LogLevel string
	Debug    bool

	Click bool
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool is true for any value strconv.ParseBool accepts as true
func getEnvBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

// getEnvDuration accepts Go duration strings only
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// LoadApp reads the process configuration from the environment, a .env file in the working directory is loaded first
// without overriding variables that are already set
func LoadApp(envFiles ...string) (*App, bool) {
	loaded := godotenv.Load(envFiles...) == nil

	return &App{
		Token:         os.Getenv("SPOTIFY_TOKEN"),
		APIURL:        getEnv("SPOTIFY_API_URL", DefaultAPIURL),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("ANALYSIS_CACHE_TTL", parameter.AnalysisCacheTTL),
		SettingsPath:  os.Getenv("STARFIELD_SETTINGS"),
		LogPath:       getEnv("STARFIELD_LOG", "logs/starfield.log"),
		LogLevel:      getEnv("STARFIELD_LOG_LEVEL", "info"),
		Debug:         getEnvBool("STARFIELD_DEBUG"),
		Click:         getEnvBool("STARFIELD_CLICK"),
	}, loaded
}
