package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nalin/ethereum-pubsub/internal/core/entity"
)

// ChainClient is the read side of the blockchain node. Implementations do not
// retry unless configured to; failures are returned to the caller.
type ChainClient interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	GetBlock(ctx context.Context, height uint64) (*entity.BlockRef, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*entity.TxRecord, error)
}
