package export

import (
	"context"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// Indexer is the subset of the indexing API the pipeline needs.
// *blockfrost.Client satisfies it; tests substitute a fake so no component
// here ever touches the network directly.
type Indexer interface {
	AddressTransactions(ctx context.Context, address string, page int) ([]blockfrost.AddressTransaction, error)
	Transaction(ctx context.Context, hash string) (*blockfrost.Transaction, error)
	TransactionUTXOs(ctx context.Context, hash string) (*blockfrost.TransactionUTXOs, error)
	AccountAddresses(ctx context.Context, stakeAddress string, page int) ([]blockfrost.AccountAddress, error)
	AccountRewards(ctx context.Context, stakeAddress string, page int) ([]blockfrost.AccountReward, error)
}
