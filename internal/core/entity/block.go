package entity

import "github.com/ethereum/go-ethereum/common"

// BlockRef identifies a block and lists its transaction hashes in canonical
// inclusion order.
type BlockRef struct {
	Number       uint64
	Hash         common.Hash
	Transactions []common.Hash
}
