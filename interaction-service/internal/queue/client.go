package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// Config holds the job policy shared by producers and workers.
type Config struct {
	// Concurrency is the default number of active jobs per type.
	Concurrency int `mapstructure:"concurrency"`
	// TypeConcurrency overrides Concurrency for single job types.
	TypeConcurrency map[string]int `mapstructure:"type_concurrency"`
	// MaxRetry is the number of retries after the first attempt.
	MaxRetry        int           `mapstructure:"max_retry"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 2
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// concurrency looks up t case-insensitively since viper lowercases map keys.
func (c Config) concurrency(t JobType) int {
	for name, n := range c.TypeConcurrency {
		if strings.EqualFold(name, string(t)) && n > 0 {
			return n
		}
	}
	return c.Concurrency
}

// Enqueuer submits jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, t JobType, payload Payload) error
}

// Client enqueues jobs on asynq. Each job type has its own queue so the
// broker can bound its concurrency.
type Client struct {
	client *asynq.Client
	cfg    Config
}

// NewClient creates a producer.
func NewClient(redisOpt asynq.RedisConnOpt, cfg Config) *Client {
	return &Client{client: asynq.NewClient(redisOpt), cfg: cfg.withDefaults()}
}

// Enqueue submits a job. Completed jobs are not retained.
func (c *Client) Enqueue(ctx context.Context, t JobType, payload Payload) error {
	if err := checkPayload(t, payload); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", t, err)
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(string(t), data),
		asynq.Queue(string(t)),
		asynq.MaxRetry(c.cfg.MaxRetry),
		asynq.Retention(0),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", t, err)
	}

	l := pkglog.Ctx(ctx)
	l.Debug().
		Str(pkglog.FieldJobType, string(t)).
		Str(pkglog.FieldJobID, info.ID).
		Msg("job enqueued")
	return nil
}

// Close closes the producer connection.
func (c *Client) Close() error {
	return c.client.Close()
}

var _ Enqueuer = (*Client)(nil)
