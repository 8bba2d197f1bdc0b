package infra

// Set at build time with -ldflags "-X github.com/nalin/ethereum-pubsub/internal/infra.Version=...".
var (
	Version  = "dev"
	Revision = "unknown"
)
