package metrics

// Component label values used by app-level metrics.
const (
	ComponentChain     = "chain"
	ComponentPublisher = "publisher"
	ComponentWatermark = "watermark"
	ComponentEncoder   = "encoder"
	ComponentListener  = "listener"
)
