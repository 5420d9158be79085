package export

import (
	"context"
	"fmt"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// maxTxPages caps per-address hash discovery at 100 pages of 100 refs.
const maxTxPages = 100

// CollectHashes paginates the transaction references of one address until a
// short page signals the end of the data or the page cap is hit. Refs come
// back newest first, mirroring the upstream ordering.
//
// onPage, if non-nil, is invoked after every page with the cumulative number
// of refs fetched for this address.
//
// A 404 on the very first page means the address has no transactions and
// yields an empty list. Any other failure propagates; the orchestrator
// decides how to treat a single address's discovery failing.
func CollectHashes(ctx context.Context, ix Indexer, address string, onPage func(count int)) ([]TxRef, error) {
	var refs []TxRef

	for page := 1; page <= maxTxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := ix.AddressTransactions(ctx, address, page)
		if err != nil {
			if blockfrost.IsNotFound(err) {
				// First page: a wallet with zero transactions. Later pages:
				// the listing ran out exactly on a page boundary.
				return refs, nil
			}
			return nil, fmt.Errorf("failed to fetch transactions for %s (page %d): %w", address, page, err)
		}

		for _, t := range batch {
			refs = append(refs, TxRef{
				Hash:        t.TxHash,
				Index:       t.TxIndex,
				BlockHeight: t.BlockHeight,
				BlockTime:   t.BlockTime,
			})
		}

		if onPage != nil {
			onPage(len(refs))
		}

		if len(batch) < blockfrost.PageSize {
			break
		}
	}

	return refs, nil
}

// DedupeRefs merges per-address ref lists into one list in which every hash
// appears exactly once, preserving first-seen order across the concatenation.
// Membership is a set lookup, so the merge is linear in the total ref count.
func DedupeRefs(lists ...[]TxRef) []TxRef {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]TxRef, 0, total)
	for _, l := range lists {
		for _, ref := range l {
			if _, ok := seen[ref.Hash]; ok {
				continue
			}
			seen[ref.Hash] = struct{}{}
			merged = append(merged, ref)
		}
	}
	return merged
}
