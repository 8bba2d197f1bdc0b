package store

// FileConfig locates the watermark file. The file holds a single decimal
// block height.
type FileConfig struct {
	Path string `validate:"required"`
}

// RedisConfig contains connection options for the Redis-backed watermark
// store. The struct is validated via go-playground/validator tags.
type RedisConfig struct {
	Host               string `validate:"required,hostname|ip"`
	Port               string `validate:"required,numeric"`
	Password           string
	DB                 int `validate:"gte=0"`
	UseTLS             bool
	DialTimeoutSeconds int `validate:"gte=0"`
	// Key holds the last processed height as a decimal string.
	Key string `validate:"required"`
}
