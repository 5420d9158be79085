package export

import (
	"math/big"
	"time"
)

// TxType classifies the direction of a transaction relative to the wallet.
type TxType string

const (
	TxTypeSend        TxType = "send"
	TxTypeReceive     TxType = "receive"
	TxTypeStakeReward TxType = "stake_reward"
	TxTypeUnknown     TxType = "unknown"
)

// TxRef is a lightweight pointer to a transaction found during discovery.
// It is created by the hash collector and consumed by the detail fetcher.
type TxRef struct {
	Hash        string
	Index       int
	BlockHeight int64
	BlockTime   int64 // Unix seconds
}

// TransactionAmount is one address/amount/asset triple, representing a single
// input or output entry of a transaction.
type TransactionAmount struct {
	Address  string
	Unit     string
	Quantity *big.Int
}

// Transaction is the canonical export unit. It is created once by the
// classifier or the reward collector and never mutated afterward.
//
// NetAmount is the signed change in the wallet's holdings of Unit caused by
// this transaction, as an exact integer. Quantities on Cardano can exceed the
// float64-safe range, so no field here ever passes through a float.
type Transaction struct {
	Hash        string
	BlockHeight int64
	BlockTime   int64
	Timestamp   time.Time
	Type        TxType
	Inputs      []TransactionAmount
	Outputs     []TransactionAmount
	NetAmount   *big.Int
	Unit        string   // "lovelace" or a policy/name token identifier
	Ticker      string   // optional display ticker ("ADA" for the native unit)
	Fee         *big.Int // set only when the wallet paid the fee
	PoolID      string   // set only on staking reward records
}

// AssetFilter selects which assets are included in the report.
type AssetFilter string

const (
	AssetFilterAll        AssetFilter = "all"
	AssetFilterNativeOnly AssetFilter = "native"
)

// Options are the caller-supplied export settings. Immutable once supplied.
type Options struct {
	StartDate      *time.Time
	EndDate        *time.Time
	IncludeRewards bool
	Asset          AssetFilter
}

// Request identifies the wallet to export.
type Request struct {
	Address      string // payment address supplied by the caller
	StakeAddress string // optional; enables address expansion and rewards
	Options      Options
}

// Phase is the coarse progress phase of a running export.
type Phase string

const (
	PhaseFetching   Phase = "fetching"
	PhaseProcessing Phase = "processing"
	PhaseExporting  Phase = "exporting"
)

// Progress is a point-in-time progress report. During the fetching phase the
// total is unknown and reported as zero.
type Progress struct {
	Phase   Phase
	Current int
	Total   int
}

// ProgressFunc observes progress updates. Calls are serialized, never
// concurrent, so implementations need no locking; they should return quickly.
type ProgressFunc func(Progress)

// Result is the terminal value of an export. Every failure path through the
// orchestrator resolves to a Result; no error escapes to the caller.
type Result struct {
	Success          bool
	Filename         string
	Report           string
	TransactionCount int
	OldestDate       *time.Time
	NewestDate       *time.Time
	Error            string
	Warning          string
}
