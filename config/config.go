package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12400"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	// EncryptionKey unlocks stored mailbox passwords. 32 bytes, raw or hex.
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`
}

type DatabaseConfig struct {
	Host            string `env:"WARMSTACK_POSTGRES_HOST,required"`
	Port            string `env:"WARMSTACK_POSTGRES_PORT,required"`
	User            string `env:"WARMSTACK_POSTGRES_USER,required"`
	DBName          string `env:"WARMSTACK_POSTGRES_DB_NAME,required"`
	Password        string `env:"WARMSTACK_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"WARMSTACK_POSTGRES_DB_MAX_CONN" envDefault:"50"`
	MaxIdleConn     int    `env:"WARMSTACK_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"WARMSTACK_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"WARMSTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"WARMSTACK_POSTGRES_SSL_MODE" envDefault:"require"`
}

type OpenAIConfig struct {
	Url    string `env:"OPENAI_API_URL" envDefault:"https://api.openai.com/v1"`
	ApiKey string `env:"OPENAI_API_KEY"`
	Model  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

type WarmupConfig struct {
	// BatchSize caps how many messages one account sends per cycle,
	// independent of its remaining daily quota.
	BatchSize int `env:"WARMUP_BATCH_SIZE" envDefault:"3"`
	// MaxConcurrentAccounts bounds the per-cycle worker pool.
	MaxConcurrentAccounts int `env:"WARMUP_MAX_CONCURRENT_ACCOUNTS" envDefault:"5"`
	// CycleTimeoutSeconds caps total cycle wall-clock.
	CycleTimeoutSeconds int `env:"WARMUP_CYCLE_TIMEOUT_SECONDS" envDefault:"300"`
	// AuthTimeoutSeconds applies to each SMTP/IMAP connect and login.
	AuthTimeoutSeconds int `env:"WARMUP_AUTH_TIMEOUT_SECONDS" envDefault:"10"`
	// SkipTLSVerify preserves the legacy permissive TLS behavior for
	// providers with self-signed certificates. Known security trade-off.
	SkipTLSVerify bool   `env:"WARMUP_SKIP_TLS_VERIFY" envDefault:"true"`
	ContentTopic  string `env:"WARMUP_CONTENT_TOPIC" envDefault:"business"`
}
