package config

import (
	"time"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/cache"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/mail"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	pkgconfig "github.com/weiawesome/wes-io-live/pkg/config"
	"github.com/weiawesome/wes-io-live/pkg/database"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Database   database.Config
	Mongo      repository.MongoConfig
	Redis      cache.Config
	PubSub     pubsub.Config `mapstructure:"pubsub"`
	Queue      queue.Config
	Mail       mail.Config
	Realtime   RealtimeConfig
	Reconciler ReconcilerConfig
	Auth       AuthConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the durable store: "sql" uses Database through GORM,
// "mongo" uses Mongo.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type RealtimeConfig struct {
	realtime.Config `mapstructure:",squash"`
	EmitTimeout     time.Duration `mapstructure:"emit_timeout"`
}

type ReconcilerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	TopN     int           `mapstructure:"top_n"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8097)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("store.backend", "sql")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "interactions")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/interaction.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("mongo.database", "interactions")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("pubsub.driver", "redis")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "interaction-service")
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.max_retry", 2)
	v.SetDefault("queue.retry_delay", "5s")
	v.SetDefault("mail.mode", "log")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@localhost")
	v.SetDefault("mail.timeout", "15s")
	v.SetDefault("realtime.emit_timeout", "5s")
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("reconciler.top_n", 100)
	v.SetDefault("auth.issuer", "wes-io-live")
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("queue.concurrency", "QUEUE_CONCURRENCY")
	v.BindEnv("mail.mode", "MAIL_MODE")
	v.BindEnv("mail.host", "SMTP_HOST")
	v.BindEnv("mail.port", "SMTP_PORT")
	v.BindEnv("mail.username", "SMTP_USERNAME")
	v.BindEnv("mail.password", "SMTP_PASSWORD")
	v.BindEnv("mail.from", "SENDER_EMAIL")
	v.BindEnv("reconciler.enabled", "RECONCILER_ENABLED")
	v.BindEnv("reconciler.interval", "RECONCILER_INTERVAL")
	v.BindEnv("reconciler.top_n", "RECONCILER_TOP_N")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.issuer", "JWT_ISSUER")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
