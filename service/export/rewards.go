package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// Cardano mainnet Shelley genesis constants used to approximate an epoch's
// wall-clock time. They are correct for mainnet as of the Shelley hard fork;
// other networks or a changed epoch length would need different values.
const (
	shelleyGenesisUnix = 1596059091 // 2020-07-29 21:44:51 UTC
	epochLengthSeconds = 432000     // 5 days
	shelleyStartEpoch  = 208
)

// maxRewardPages caps reward history pagination.
const maxRewardPages = 100

// EpochEndTime approximates the wall-clock time at which the given epoch
// ended. It is total over all non-negative epochs; epochs before the Shelley
// era extrapolate backwards and are only an approximation, which is fine for
// a report timestamp.
func EpochEndTime(epoch int64) time.Time {
	unix := shelleyGenesisUnix + (epoch-shelleyStartEpoch+1)*epochLengthSeconds
	return time.Unix(unix, 0).UTC()
}

// RewardHash builds the synthetic hash of a reward record. The reward_epoch_
// prefix is reserved: no on-chain transaction hash is non-hex, so synthetic
// records can never collide with real ones.
func RewardHash(epoch int64) string {
	return fmt.Sprintf("reward_epoch_%d", epoch)
}

// CollectRewards fetches the staking reward history of a stake key and
// synthesizes one reward-shaped Transaction per reward-bearing epoch.
// Accounts that never staked are a normal case: a 404 yields an empty list.
func CollectRewards(ctx context.Context, ix Indexer, stakeAddress string, logger *slog.Logger) ([]Transaction, error) {
	var rewards []Transaction

	for page := 1; page <= maxRewardPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := ix.AccountRewards(ctx, stakeAddress, page)
		if err != nil {
			if blockfrost.IsNotFound(err) {
				return rewards, nil
			}
			return nil, fmt.Errorf("failed to fetch rewards for %s (page %d): %w", stakeAddress, page, err)
		}

		for _, r := range batch {
			ts := EpochEndTime(r.Epoch)
			rewards = append(rewards, Transaction{
				Hash:        RewardHash(r.Epoch),
				BlockHeight: 0,
				BlockTime:   ts.Unix(),
				Timestamp:   ts,
				Type:        TxTypeStakeReward,
				NetAmount:   parseQuantity(r.Amount),
				Unit:        blockfrost.LovelaceUnit,
				Ticker:      "ADA",
				PoolID:      r.PoolID,
			})
		}

		if len(batch) < blockfrost.PageSize {
			break
		}
	}

	logger.DebugContext(ctx, "collected staking rewards",
		"stake_address", stakeAddress,
		"count", len(rewards),
	)
	return rewards, nil
}
