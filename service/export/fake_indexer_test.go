package export

import (
	"context"
	"sync"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// fakeIndexer implements Indexer for tests. It is behavior-focused: tests
// set what each endpoint should return, not call sequences. Absent entries
// respond like the real indexer's 404. Safe for concurrent use, since the
// pipeline fetches concurrently.
type fakeIndexer struct {
	mu sync.Mutex

	addrPages map[string][][]blockfrost.AddressTransaction
	addrErrs  map[string]error
	addrCalls map[string]int

	txs     map[string]*blockfrost.Transaction
	txErrs  map[string]error
	utxos   map[string]*blockfrost.TransactionUTXOs
	utxoErr map[string]error

	accountPages [][]blockfrost.AccountAddress
	accountErr   error

	rewardPages [][]blockfrost.AccountReward
	rewardErr   error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{
		addrPages: map[string][][]blockfrost.AddressTransaction{},
		addrErrs:  map[string]error{},
		addrCalls: map[string]int{},
		txs:       map[string]*blockfrost.Transaction{},
		txErrs:    map[string]error{},
		utxos:     map[string]*blockfrost.TransactionUTXOs{},
		utxoErr:   map[string]error{},
	}
}

func (f *fakeIndexer) AddressTransactions(ctx context.Context, address string, page int) ([]blockfrost.AddressTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addrCalls[address]++
	if err := f.addrErrs[address]; err != nil {
		return nil, err
	}
	pages, ok := f.addrPages[address]
	if !ok || page > len(pages) {
		return nil, blockfrost.ErrNotFound
	}
	return pages[page-1], nil
}

func (f *fakeIndexer) Transaction(ctx context.Context, hash string) (*blockfrost.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.txErrs[hash]; err != nil {
		return nil, err
	}
	txn, ok := f.txs[hash]
	if !ok {
		return nil, blockfrost.ErrNotFound
	}
	return txn, nil
}

func (f *fakeIndexer) TransactionUTXOs(ctx context.Context, hash string) (*blockfrost.TransactionUTXOs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.utxoErr[hash]; err != nil {
		return nil, err
	}
	u, ok := f.utxos[hash]
	if !ok {
		return nil, blockfrost.ErrNotFound
	}
	return u, nil
}

func (f *fakeIndexer) AccountAddresses(ctx context.Context, stakeAddress string, page int) ([]blockfrost.AccountAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	if f.accountPages == nil || page > len(f.accountPages) {
		return nil, blockfrost.ErrNotFound
	}
	return f.accountPages[page-1], nil
}

func (f *fakeIndexer) AccountRewards(ctx context.Context, stakeAddress string, page int) ([]blockfrost.AccountReward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rewardErr != nil {
		return nil, f.rewardErr
	}
	if f.rewardPages == nil || page > len(f.rewardPages) {
		return nil, blockfrost.ErrNotFound
	}
	return f.rewardPages[page-1], nil
}

// addSimpleTx registers a detail+UTXO pair: fromAddr spends `amount+fee`
// lovelace and toAddr receives `amount`, with the change implied away.
func (f *fakeIndexer) addSimpleTx(hash string, blockHeight, blockTime int64, fromAddr, toAddr string, amount, fee string) {
	f.txs[hash] = &blockfrost.Transaction{
		Hash:        hash,
		BlockHeight: blockHeight,
		BlockTime:   blockTime,
		Fees:        fee,
	}
	f.utxos[hash] = &blockfrost.TransactionUTXOs{
		Hash: hash,
		Inputs: []blockfrost.TransactionInput{
			{Address: fromAddr, Amount: []blockfrost.Amount{{Unit: blockfrost.LovelaceUnit, Quantity: amount}}},
		},
		Outputs: []blockfrost.TransactionOutput{
			{Address: toAddr, Amount: []blockfrost.Amount{{Unit: blockfrost.LovelaceUnit, Quantity: amount}}},
		},
	}
}

// fullPage builds a page of exactly blockfrost.PageSize refs with hashes
// derived from the prefix.
func fullPage(prefix string, startHeight int64) []blockfrost.AddressTransaction {
	page := make([]blockfrost.AddressTransaction, blockfrost.PageSize)
	for i := range page {
		page[i] = blockfrost.AddressTransaction{
			TxHash:      prefixedHash(prefix, i),
			BlockHeight: startHeight - int64(i),
			BlockTime:   1700000000 - int64(i),
		}
	}
	return page
}

func prefixedHash(prefix string, i int) string {
	return prefix + "_" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('a'+(i/676)%26))
}
