package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	JWTSecret    string `env:"JWT_SECRET"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	ClientOrigin string `env:"CLIENT_ORIGIN, default=http://localhost:5173"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Upload UploadConfig
	Admin  AdminConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketprime"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type UploadConfig struct {
	// Dir is the local directory uploaded images are written to and served
	// from under /images.
	Dir string `env:"UPLOAD_DIR, default=public/images"`
}

// AdminConfig seeds the moderation account on boot. Both values empty means
// no seeding.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASS"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Development reports whether the service runs in development mode, which
// loosens cookie flags and exposes internal error details.
func (c *Config) Development() bool {
	return c.Env == "development"
}
