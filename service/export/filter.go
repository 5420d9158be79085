package export

import (
	"sort"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// FilterTransactions applies the user-chosen time range, reward-inclusion,
// and asset filters, then orders the remainder newest first. It is a pure
// function of its arguments: the input slice is left untouched and the sort
// is stable.
func FilterTransactions(txs []Transaction, opts Options) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if opts.StartDate != nil && t.Timestamp.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && t.Timestamp.After(*opts.EndDate) {
			continue
		}
		if !opts.IncludeRewards && t.Type == TxTypeStakeReward {
			continue
		}
		if opts.Asset == AssetFilterNativeOnly && t.Unit != blockfrost.LovelaceUnit {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
