package export

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmaloney/cardano-export/service/metrics"
)

const (
	// DefaultBatchSize bounds how many detail/UTXO fetch pairs run
	// concurrently. Chosen to stay inside the indexer's burst allowance.
	DefaultBatchSize = 10

	// DefaultBatchPause is the deliberate pause between batches. It is a
	// batch-level rate-limiting measure on top of the per-request throttle
	// and must be longer than the throttle interval.
	DefaultBatchPause = 500 * time.Millisecond
)

// FetchDetails fetches full details and UTXO sets for the given refs in
// strictly sequential fixed-size batches. Within a batch all fetch pairs run
// concurrently; an individual pair's failure is recorded and the ref dropped,
// never aborting the batch or the pipeline.
//
// onProgress, if non-nil, is invoked after each batch with (processed, total).
// The returned error is non-nil only when ctx is cancelled mid-run.
func FetchDetails(
	ctx context.Context,
	ix Indexer,
	refs []TxRef,
	wallet map[string]struct{},
	batchSize int,
	batchPause time.Duration,
	onProgress func(processed, total int),
	m *metrics.Metrics,
	logger *slog.Logger,
) ([]Transaction, int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// Per-slot results keep the output in ref order; nil slots are failures.
	results := make([]*Transaction, len(refs))
	failed := 0

	for start := 0; start < len(refs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		end := min(start+batchSize, len(refs))
		batch := refs[start:end]

		var wg sync.WaitGroup
		for i, ref := range batch {
			wg.Add(1)
			go func(slot int, ref TxRef) {
				defer wg.Done()

				detail, err := ix.Transaction(ctx, ref.Hash)
				if err != nil {
					logger.WarnContext(ctx, "failed to fetch transaction detail, skipping",
						"hash", ref.Hash,
						"error", err,
					)
					return
				}
				utxos, err := ix.TransactionUTXOs(ctx, ref.Hash)
				if err != nil {
					logger.WarnContext(ctx, "failed to fetch transaction utxos, skipping",
						"hash", ref.Hash,
						"error", err,
					)
					return
				}

				txn := Classify(detail, utxos, ref, wallet)
				results[start+slot] = &txn
			}(i, ref)
		}
		wg.Wait()

		for i := start; i < end; i++ {
			if results[i] == nil {
				failed++
				if m != nil {
					m.RecordDetailFetchFailure()
				}
			}
		}

		if onProgress != nil {
			onProgress(end, len(refs))
		}

		if end < len(refs) {
			if err := sleepContext(ctx, batchPause); err != nil {
				return nil, 0, err
			}
		}
	}

	transactions := make([]Transaction, 0, len(refs)-failed)
	for _, r := range results {
		if r != nil {
			transactions = append(transactions, *r)
		}
	}

	return transactions, failed, nil
}

// sleepContext sleeps for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
