package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// maxAddressPages caps address expansion; 20 pages of 100 covers any
// realistically sized wallet.
const maxAddressPages = 20

// ExpandAddresses resolves the full set of payment addresses under a stake
// key. The returned list always contains callerAddress, first, and never
// holds duplicates.
//
// Expansion never fails the export: on any error the singleton list
// [callerAddress] is returned together with a non-fatal warning describing
// the degradation.
func ExpandAddresses(ctx context.Context, ix Indexer, stakeAddress, callerAddress string, logger *slog.Logger) (addresses []string, warning string) {
	addresses = []string{callerAddress}
	if stakeAddress == "" {
		return addresses, ""
	}

	seen := map[string]struct{}{callerAddress: {}}

	for page := 1; page <= maxAddressPages; page++ {
		batch, err := ix.AccountAddresses(ctx, stakeAddress, page)
		if err != nil {
			if blockfrost.IsNotFound(err) {
				// The account has no address listing; the caller address is
				// all we know about, which is not a degradation.
				return addresses, ""
			}
			logger.WarnContext(ctx, "address expansion failed, falling back to single address",
				"stake_address", stakeAddress,
				"page", page,
				"error", err,
			)
			return []string{callerAddress},
				fmt.Sprintf("could not fetch all wallet addresses (%v); export may be incomplete", err)
		}

		for _, a := range batch {
			if _, ok := seen[a.Address]; ok {
				continue
			}
			seen[a.Address] = struct{}{}
			addresses = append(addresses, a.Address)
		}

		if len(batch) < blockfrost.PageSize {
			break
		}
	}

	logger.DebugContext(ctx, "expanded stake key to payment addresses",
		"stake_address", stakeAddress,
		"count", len(addresses),
	)
	return addresses, ""
}
