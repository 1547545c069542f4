package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Postgres
	HTTPServer
	Storage
	Lock
	Workers
	Events
	MinIO
	Auth
	Log
}

type Postgres struct {
	User       string        `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string        `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string        `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string        `env:"POSTGRES_DB" env-default:"boards"`
	Timeout    time.Duration `env:"POSTGRES_TIMEOUT" env-default:"5s"`
	Migrations string        `env:"POSTGRES_MIGRATIONS" env-default:"./migrations"`
}

func (p Postgres) URL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(p.User, p.Pass),
		Host:     fmt.Sprintf("%v:%v", p.Host, p.Port),
		Path:     p.DB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:"localhost"`
	BindPort        string        `env:"BIND_PORT" env-default:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"5s"`
}

type Storage struct {
	// Backend is "postgres" or "memory".
	Backend string `env:"STORAGE_BACKEND" env-default:"postgres"`
	// SeedMembers lists "id:nickname" members loaded into the memory backend,
	// which has no replication feed of its own.
	SeedMembers []string `env:"MEMORY_SEED_MEMBERS" env-separator:","`
}

type Lock struct {
	TTL         time.Duration `env:"LOCK_TTL" env-default:"1s"`
	MinWait     time.Duration `env:"LOCK_MIN_WAIT" env-default:"50ms"`
	Growth      float64       `env:"LOCK_GROWTH" env-default:"0.1"`
	MaxWait     time.Duration `env:"LOCK_MAX_WAIT" env-default:"100ms"`
	MaxAttempts int           `env:"LOCK_MAX_ATTEMPTS" env-default:"200"`
}

type Workers struct {
	Size         int           `env:"WORKERS_SIZE" env-default:"8"`
	QueueSize    int           `env:"WORKERS_QUEUE_SIZE" env-default:"1024"`
	Policy       string        `env:"WORKERS_POLICY" env-default:"reject"`
	BlockTimeout time.Duration `env:"WORKERS_BLOCK_TIMEOUT" env-default:"100ms"`
}

type Events struct {
	Enabled      bool          `env:"EVENTS_ENABLED" env-default:"true"`
	Channel      string        `env:"EVENTS_CHANNEL" env-default:"member_deleted"`
	MinReconnect time.Duration `env:"EVENTS_MIN_RECONNECT" env-default:"10s"`
	MaxReconnect time.Duration `env:"EVENTS_MAX_RECONNECT" env-default:"1m"`
}

type MinIO struct {
	Enabled       bool          `env:"MINIO_ENABLED" env-default:"false"`
	User          string        `env:"MINIO_USER" env-default:"minioadmin"`
	Pass          string        `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host          string        `env:"MINIO_HOST" env-default:"localhost"`
	Port          string        `env:"MINIO_PORT" env-default:"9000"`
	Bucket        string        `env:"MINIO_BUCKET" env-default:"profiles"`
	PresignExpiry time.Duration `env:"MINIO_PRESIGN_EXPIRY" env-default:"24h"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET" env-default:""`
	// HookSecret guards the member deletion redelivery endpoint. Empty
	// disables the endpoint.
	HookSecret string `env:"EVENTS_HOOK_SECRET" env-default:""`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// New reads the configuration from the environment after overlaying the
// given env file. An empty path skips the overlay.
func New(env string) (*Config, error) {
	conf := &Config{}

	if env != "" {
		if err := godotenv.Overload(env); err != nil {
			return nil, fmt.Errorf("godotenv.Overload: %v", err)
		}
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.Readenv: %v", err)
	}

	return conf, nil
}
