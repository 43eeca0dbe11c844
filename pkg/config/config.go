package config

import (
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type DB struct {
	Url string `envconfig:"URL"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Idempotency struct {
	TTL time.Duration `envconfig:"TTL_SECONDS" default:"3600s"`
}

type Processor struct {
	Interval   time.Duration `envconfig:"INTERVAL" default:"1m"`
	BatchLimit int           `envconfig:"BATCH_LIMIT" default:"100"`
}

type Mail struct {
	Driver string `envconfig:"DRIVER" default:"mock"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"1025"`
	From   string `envconfig:"FROM" default:"no-reply@pixflow.local"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level  int    `envconfig:"LEVEL" default:"0"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type App struct {
	Env         string       `envconfig:"APP_ENV" default:"development"`
	Timezone    string       `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`
	Server      *Server      `envconfig:"SERVER"`
	Log         *Log         `envconfig:"LOG"`
	DB          *DB          `envconfig:"DATABASE"`
	Redis       *Redis       `envconfig:"REDIS"`
	Idempotency *Idempotency `envconfig:"IDEMPOTENCY"`
	Processor   *Processor   `envconfig:"PROCESSOR"`
	Mail        *Mail        `envconfig:"MAIL"`
	RateLimit   *RateLimit   `envconfig:"RATE_LIMIT"`
}
