package chain

// Config holds the Ethereum node connection settings.
//
// URL accepts http(s), ws(s) and IPC endpoints. MaxRetryAttempts of 0 or 1
// disables retries; larger values retry connection-level failures only.
type Config struct {
	URL                   string `validate:"required,uri"`
	DialTimeoutSeconds    int    `validate:"omitempty,gte=1"`
	RequestTimeoutSeconds int    `validate:"omitempty,gte=1"`
	MaxRetryAttempts      int    `validate:"omitempty,gte=1"`
	RetryInitialBackoffMS int    `validate:"omitempty,gte=0"`
	RetryMaxBackoffMS     int    `validate:"omitempty,gte=0"`
}
