package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`

	// Salon REST API.
	SalonAPIURL     string        `mapstructure:"SALON_API_URL"`
	SalonAPITimeout time.Duration `mapstructure:"SALON_API_TIMEOUT"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisBookingDB int    `mapstructure:"REDIS_BOOKING_DB"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// MongoDB holds reservation receipts.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Booking wizard.
	BookingSessionTTL   time.Duration `mapstructure:"BOOKING_SESSION_TTL"`
	BookingWindowDays   int           `mapstructure:"BOOKING_WINDOW_DAYS"`
	BookingCategoryStep bool          `mapstructure:"BOOKING_CATEGORY_STEP"`
	SalonTimezone       string        `mapstructure:"SALON_TIMEZONE"`
	ReminderLeadTime    time.Duration `mapstructure:"REMINDER_LEAD_TIME"`

	// Gemini style recommendations.
	GeminiAPIKey     string        `mapstructure:"GEMINI_API_KEY"`
	GeminiTextModel  string        `mapstructure:"GEMINI_TEXT_MODEL"`
	GeminiImageModel string        `mapstructure:"GEMINI_IMAGE_MODEL"`
	AIResultTTL      time.Duration `mapstructure:"AI_RESULT_TTL"`

	// Cloudinary hosts generated style images.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("SALON_API_URL", "http://localhost:8000/api")
	viper.SetDefault("SALON_API_TIMEOUT", "15s")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_BOOKING_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATABASE_NAME", "glowapp")
	viper.SetDefault("BOOKING_SESSION_TTL", "30m")
	viper.SetDefault("BOOKING_WINDOW_DAYS", 60)
	viper.SetDefault("BOOKING_CATEGORY_STEP", false)
	viper.SetDefault("SALON_TIMEZONE", "Local")
	viper.SetDefault("REMINDER_LEAD_TIME", "24h")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_TEXT_MODEL", "gemini-2.0-flash")
	viper.SetDefault("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation")
	viper.SetDefault("AI_RESULT_TTL", "24h")
	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")
	viper.SetDefault("CLOUDINARY_FOLDER", "glowapp/styles")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves SALON_TIMEZONE, falling back to the server's zone.
func (c Config) Location() *time.Location {
	if c.SalonTimezone == "" || c.SalonTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.SalonTimezone)
	if err != nil {
		log.Printf("Unknown SALON_TIMEZONE %q, using local time", c.SalonTimezone)
		return time.Local
	}
	return loc
}
