package port

import "context"

// ListenerStatus is a point-in-time view of the poll loop.
type ListenerStatus struct {
	Running             bool   `json:"running"`
	LastProcessedHeight uint64 `json:"lastProcessedHeight"`
	ChainHeight         uint64 `json:"chainHeight"`
}

// TxListener drives the poll loop until ctx is done or an error occurs.
type TxListener interface {
	Run(ctx context.Context) error
	Status() ListenerStatus
}
