package infra

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

// EnvPrefix prefixes every configuration key read from the environment,
// e.g. EPS_LISTENER_POLL_INTERVAL for listener.poll_interval.
const EnvPrefix = "EPS"

// Environment variable names kept for deployments that predate the EPS_ prefix.
var legacyEnv = map[string]string{
	"chain.url":         "ETHEREUM_PROVIDER_URL",
	"pubsub.project_id": "GOOGLE_CLOUD_PROJECT_ID",
	"pubsub.topic_id":   "PUBSUB_TOPIC_ID",
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("chain.dial_timeout_seconds", 10)
	viper.SetDefault("chain.request_timeout_seconds", 10)
	viper.SetDefault("chain.max_retry_attempts", 1)
	viper.SetDefault("chain.retry_initial_backoff_ms", 200)
	viper.SetDefault("chain.retry_max_backoff_ms", 2000)

	viper.SetDefault("publisher.kind", "pubsub")
	viper.SetDefault("kafka.client_id", "ethereum-pubsub")
	viper.SetDefault("kafka.max_buffered_records", 10000)

	viper.SetDefault("watermark.kind", "file")
	viper.SetDefault("watermark.file", "latest_block.txt")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dial_timeout_seconds", 5)
	viper.SetDefault("redis.key", "ethereum-pubsub:latest_block")

	viper.SetDefault("listener.poll_interval", "1s")
	viper.SetDefault("listener.catch_up", false)

	viper.SetDefault("http.enabled", false)
	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("pprof.enabled", false)
	viper.SetDefault("pprof.addr", "127.0.0.1:6060")

	viper.SetDefault("service.name", "ethereum-pubsub")
	viper.SetDefault("service.instance", "local")
}

// LoadConfig populates viper from defaults, the optional YAML config file and
// the environment. An explicit cfgFile must exist; otherwise
// ./configs/config.yml is read when present.
func LoadConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := viper.BindEnv(key, env, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return apperr.NewConfigErr("failed to bind env "+env, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return apperr.NewConfigErr("failed to read config file "+cfgFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./configs")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return apperr.NewConfigErr("failed to read config file", err)
		}
	}
	return nil
}

// stringSlice reads a list key that may also be given as a comma separated
// string (as environment variables are).
func stringSlice(key string) []string {
	var out []string
	for _, item := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// duration reads a key as a Go duration ("1s", "500ms"); a bare number is
// taken as seconds.
func duration(key string) (time.Duration, error) {
	raw := strings.TrimSpace(viper.GetString(key))
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, apperr.NewConfigErr("invalid duration for "+key, err)
	}
	return d, nil
}
