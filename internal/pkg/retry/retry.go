package retry

import (
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 1 * time.Second
	defaultMaxDelay = 10 * time.Second
)

// Config is an explicit retry policy: attempt budget, exponential backoff
// bounds and a retryable-error predicate supplied at the call site.
type Config struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"1s"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"10s"`
}

// ToRetryOptions translates the policy into retry-go options. The predicate
// decides which errors are worth another attempt; pass nil to retry all.
func (rc *Config) ToRetryOptions(retryable func(error) bool) []retry.Option {
	opts := []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}
	return opts
}

func DefaultConfig() *Config {
	return &Config{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
