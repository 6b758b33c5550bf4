package config

import (
	"time"

	"github.com/nametracker/nametracker/internal/logger"
	"github.com/nametracker/nametracker/internal/tracing"
)

type AppConfig struct {
	APIPort string `env:"PORT,required" envDefault:"11000"`
	APIKey  string `env:"API_KEY,required"`
	Logger  *logger.Config
	Tracing *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"NAMETRACKER_POSTGRES_HOST,required"`
	Port            string `env:"NAMETRACKER_POSTGRES_PORT,required"`
	User            string `env:"NAMETRACKER_POSTGRES_USER,required"`
	DBName          string `env:"NAMETRACKER_POSTGRES_DB_NAME,required"`
	Password        string `env:"NAMETRACKER_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"NAMETRACKER_POSTGRES_DB_MAX_CONN" envDefault:"50"`
	MaxIdleConn     int    `env:"NAMETRACKER_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"NAMETRACKER_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"NAMETRACKER_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"NAMETRACKER_POSTGRES_SSL_MODE" envDefault:"require"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type DynadotConfig struct {
	Url            string        `env:"DYNADOT_URL" envDefault:"https://api.dynadot.com/api3.json" validate:"required"`
	ApiKey         string        `env:"DYNADOT_API_KEY"`
	ApiSecret      string        `env:"DYNADOT_API_SECRET"`
	BatchCap       int           `env:"DYNADOT_BATCH_CAP" envDefault:"50"`
	MaxAttempts    int           `env:"DYNADOT_MAX_ATTEMPTS" envDefault:"3"`
	RetryWait      time.Duration `env:"DYNADOT_RETRY_WAIT" envDefault:"5s"`
	RequestTimeout time.Duration `env:"DYNADOT_REQUEST_TIMEOUT" envDefault:"20s"`
}

type LifecycleConfig struct {
	BatchSpacing     time.Duration `env:"LIFECYCLE_BATCH_SPACING" envDefault:"10s"`
	RetentionDays    int           `env:"LIFECYCLE_RETENTION_DAYS" envDefault:"90"`
	ArchiveChunkSize int           `env:"LIFECYCLE_ARCHIVE_CHUNK_SIZE" envDefault:"500"`
	SecondCheckAfter time.Duration `env:"LIFECYCLE_SECOND_CHECK_AFTER" envDefault:"12h"`
	// List states the idea-of-the-day job covers; the keying is per
	// (date, list_state).
	IdeaListStates []string `env:"IDEA_LIST_STATES" envDefault:"pending_delete,deleted" envSeparator:","`
}
