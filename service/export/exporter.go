package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmaloney/cardano-export/service/blockfrost"
	"github.com/dmaloney/cardano-export/service/metrics"
)

// ExporterConfig tunes the pipeline. Zero values select the defaults.
type ExporterConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

// Exporter runs the transaction history export pipeline: address expansion,
// per-address hash discovery, deduplication, batched detail fetching,
// classification, optional reward collection, filtering, and serialization.
type Exporter struct {
	ix      Indexer
	cfg     ExporterConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExporter creates an Exporter. If m is nil, no metrics are recorded.
func NewExporter(ix Indexer, cfg ExporterConfig, m *metrics.Metrics, logger *slog.Logger) *Exporter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = DefaultBatchPause
	}
	return &Exporter{
		ix:      ix,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// discoveryProgress aggregates per-address page counts during concurrent
// hash discovery. Each address owns one slot holding its latest cumulative
// count; the displayed total is always recomputed as the sum over the map,
// so interleaved callbacks can never misreport the aggregate.
type discoveryProgress struct {
	mu        sync.Mutex
	byAddress map[string]int
}

func newDiscoveryProgress() *discoveryProgress {
	return &discoveryProgress{byAddress: make(map[string]int)}
}

// report records the latest cumulative count for one address and delivers
// the recomputed total to the observer while still holding the lock, so the
// observer sees one update at a time and totals arrive in order.
func (p *discoveryProgress) report(address string, count int, onProgress ProgressFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byAddress[address] = count
	total := 0
	for _, c := range p.byAddress {
		total += c
	}
	onProgress(Progress{Phase: PhaseFetching, Current: total})
}

// Export runs the whole pipeline and always resolves to a Result; no error
// or panic escapes to the caller. Progress is streamed through onProgress,
// which may be nil. Cancelling ctx stops the export at the next suspension
// point and resolves it as a failure.
func (e *Exporter) Export(ctx context.Context, req Request, onProgress ProgressFunc) (result Result) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "export panicked", "panic", r)
			result = Result{Success: false, Error: fmt.Sprintf("internal error: %v", r)}
		}
		status := "success"
		if !result.Success {
			status = "failure"
		}
		if e.metrics != nil {
			e.metrics.RecordExport(status, e.now().Sub(start).Seconds())
		}
	}()

	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	var warnings []string
	warn := func(kind, msg string) {
		warnings = append(warnings, msg)
		if e.metrics != nil {
			e.metrics.RecordExportWarning(kind)
		}
	}

	// Phase: fetching.
	onProgress(Progress{Phase: PhaseFetching})

	addresses, expandWarning := ExpandAddresses(ctx, e.ix, req.StakeAddress, req.Address, e.logger)
	if expandWarning != "" {
		warn("address_expansion", expandWarning)
	}

	refs, err := e.collectAcrossAddresses(ctx, addresses, onProgress, warn)
	if err != nil {
		return e.failure(ctx, err)
	}

	e.logger.InfoContext(ctx, "discovery complete",
		"addresses", len(addresses),
		"unique_transactions", len(refs),
	)

	// Rewards can only materialize when a stake address was supplied.
	rewardsPossible := req.Options.IncludeRewards && req.StakeAddress != ""
	if len(refs) == 0 && !rewardsPossible {
		return Result{Success: false, Error: "No transactions found for this wallet"}
	}

	// Phase: processing.
	onProgress(Progress{Phase: PhaseProcessing, Total: len(refs)})

	wallet := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		wallet[a] = struct{}{}
	}

	transactions, failedCount, err := FetchDetails(ctx, e.ix, refs, wallet,
		e.cfg.BatchSize, e.cfg.BatchPause,
		func(processed, total int) {
			onProgress(Progress{Phase: PhaseProcessing, Current: processed, Total: total})
		},
		e.metrics, e.logger,
	)
	if err != nil {
		return e.failure(ctx, err)
	}
	if failedCount > 0 {
		warn("detail_fetch", fmt.Sprintf("%d transaction(s) could not be fetched and were omitted", failedCount))
	}

	if rewardsPossible {
		rewards, err := CollectRewards(ctx, e.ix, req.StakeAddress, e.logger)
		if err != nil {
			return e.failure(ctx, err)
		}
		transactions = append(transactions, rewards...)
	}

	filtered := FilterTransactions(transactions, req.Options)
	if len(filtered) == 0 {
		return Result{
			Success: false,
			Error:   "No transactions match the selected filters",
			Warning: strings.Join(warnings, "; "),
		}
	}

	// Phase: exporting.
	onProgress(Progress{Phase: PhaseExporting, Current: 0, Total: 1})

	report := RenderReport(filtered)

	if e.metrics != nil {
		counts := map[TxType]int{}
		for _, t := range filtered {
			counts[t.Type]++
		}
		for txType, n := range counts {
			e.metrics.RecordTransactionsExported(string(txType), n)
		}
	}

	// Newest first after filtering, so the range is last..first.
	newest := filtered[0].Timestamp
	oldest := filtered[len(filtered)-1].Timestamp

	onProgress(Progress{Phase: PhaseExporting, Current: 1, Total: 1})

	return Result{
		Success:          true,
		Filename:         Filename(e.now()),
		Report:           report,
		TransactionCount: len(filtered),
		OldestDate:       &oldest,
		NewestDate:       &newest,
		Warning:          strings.Join(warnings, "; "),
	}
}

// collectAcrossAddresses runs hash discovery for every address concurrently,
// merging the per-address lists into one deduplicated list. A single
// address's discovery failing degrades to a warning; the export only fails
// here when every address fails or the context is cancelled.
func (e *Exporter) collectAcrossAddresses(
	ctx context.Context,
	addresses []string,
	onProgress ProgressFunc,
	warn func(kind, msg string),
) ([]TxRef, error) {
	progress := newDiscoveryProgress()

	lists := make([][]TxRef, len(addresses))
	errs := make([]error, len(addresses))

	var wg sync.WaitGroup
	for i, address := range addresses {
		wg.Add(1)
		go func(slot int, address string) {
			defer wg.Done()
			lists[slot], errs[slot] = CollectHashes(ctx, e.ix, address, func(count int) {
				progress.report(address, count, onProgress)
			})
		}(i, address)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := 0
	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures++
		if firstErr == nil {
			firstErr = err
		}
		e.logger.WarnContext(ctx, "address discovery failed",
			"address", addresses[i],
			"error", err,
		)
	}

	if failures == len(addresses) && failures > 0 {
		return nil, firstErr
	}
	if failures > 0 {
		warn("address_discovery", fmt.Sprintf("could not fetch history for %d of %d addresses; export may be incomplete", failures, len(addresses)))
	}

	return DedupeRefs(lists...), nil
}

// failure converts a pipeline error into a terminal Result with a
// user-facing message.
func (e *Exporter) failure(ctx context.Context, err error) Result {
	e.logger.ErrorContext(ctx, "export failed", "error", err)

	switch {
	case ctx.Err() != nil:
		return Result{Success: false, Error: "export cancelled"}
	case blockfrost.IsRateLimited(err):
		return Result{Success: false, Error: "the indexer is rate limiting requests; please try again later"}
	default:
		return Result{Success: false, Error: err.Error()}
	}
}
