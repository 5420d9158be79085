package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDetails_ProcessesInBatches(t *testing.T) {
	ix := newFakeIndexer()
	refs := make([]TxRef, 25)
	for i := range refs {
		hash := prefixedHash("tx", i)
		refs[i] = TxRef{Hash: hash, BlockHeight: int64(100 + i), BlockTime: 1700000000}
		ix.addSimpleTx(hash, int64(100+i), 1700000000, "addr_other", walletAddr, "2000000", "170000")
	}

	var progress [][2]int
	txns, failed, err := FetchDetails(context.Background(), ix, refs, walletSet(),
		10, time.Millisecond,
		func(processed, total int) { progress = append(progress, [2]int{processed, total}) },
		nil, testLogger(),
	)

	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Len(t, txns, 25)
	assert.Equal(t, [][2]int{{10, 25}, {20, 25}, {25, 25}}, progress)
}

func TestFetchDetails_ToleratesIndividualFailures(t *testing.T) {
	ix := newFakeIndexer()
	ix.addSimpleTx("good1", 100, 1700000000, "addr_other", walletAddr, "2000000", "170000")
	ix.addSimpleTx("good2", 101, 1700000100, "addr_other", walletAddr, "3000000", "170000")
	ix.txErrs["bad"] = errors.New("detail unavailable")

	refs := []TxRef{
		{Hash: "good1", BlockTime: 1700000000},
		{Hash: "bad", BlockTime: 1700000050},
		{Hash: "good2", BlockTime: 1700000100},
	}

	txns, failed, err := FetchDetails(context.Background(), ix, refs, walletSet(),
		10, time.Millisecond, nil, nil, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	require.Len(t, txns, 2)
	assert.Equal(t, "good1", txns[0].Hash)
	assert.Equal(t, "good2", txns[1].Hash)
}

func TestFetchDetails_UTXOFailureCountsAsFailed(t *testing.T) {
	ix := newFakeIndexer()
	ix.addSimpleTx("tx1", 100, 1700000000, "addr_other", walletAddr, "2000000", "170000")
	ix.utxoErr["tx1"] = errors.New("utxos unavailable")

	txns, failed, err := FetchDetails(context.Background(), ix,
		[]TxRef{{Hash: "tx1", BlockTime: 1700000000}}, walletSet(),
		10, time.Millisecond, nil, nil, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Empty(t, txns)
}

func TestFetchDetails_CancelledContext(t *testing.T) {
	ix := newFakeIndexer()
	ix.addSimpleTx("tx1", 100, 1700000000, "addr_other", walletAddr, "2000000", "170000")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := FetchDetails(ctx, ix,
		[]TxRef{{Hash: "tx1"}}, walletSet(),
		10, time.Millisecond, nil, nil, testLogger())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchDetails_Empty(t *testing.T) {
	ix := newFakeIndexer()

	txns, failed, err := FetchDetails(context.Background(), ix, nil, walletSet(),
		10, time.Millisecond, nil, nil, testLogger())

	require.NoError(t, err)
	assert.Zero(t, failed)
	assert.Empty(t, txns)
}
