package blockfrost

// PageSize is the fixed page size used for every paginated endpoint.
// A page shorter than this signals the end of the data.
const PageSize = 100

// LovelaceUnit is the unit string the indexer uses for the native currency.
const LovelaceUnit = "lovelace"

// AddressTransaction is one entry of the paginated
// /addresses/{address}/transactions listing.
type AddressTransaction struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}

// Amount is one unit/quantity pair of a transaction input or output.
// Quantities are decimal strings; they can exceed the float64-safe range
// and must never pass through a floating-point conversion.
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// Transaction is the /txs/{hash} detail response.
type Transaction struct {
	Hash         string   `json:"hash"`
	Block        string   `json:"block"`
	BlockHeight  int64    `json:"block_height"`
	BlockTime    int64    `json:"block_time"`
	Slot         int64    `json:"slot"`
	Index        int      `json:"index"`
	OutputAmount []Amount `json:"output_amount"`
	Fees         string   `json:"fees"`
	Deposit      string   `json:"deposit"`
	Size         int      `json:"size"`
}

// TransactionInput is one consumed UTXO of a transaction.
type TransactionInput struct {
	Address string   `json:"address"`
	Amount  []Amount `json:"amount"`
	TxHash  string   `json:"tx_hash"`
	Index   int      `json:"output_index"`
}

// TransactionOutput is one produced UTXO of a transaction.
type TransactionOutput struct {
	Address string   `json:"address"`
	Amount  []Amount `json:"amount"`
	Index   int      `json:"output_index"`
}

// TransactionUTXOs is the /txs/{hash}/utxos response.
type TransactionUTXOs struct {
	Hash    string              `json:"hash"`
	Inputs  []TransactionInput  `json:"inputs"`
	Outputs []TransactionOutput `json:"outputs"`
}

// AccountAddress is one entry of the paginated
// /accounts/{stake_address}/addresses listing.
type AccountAddress struct {
	Address string `json:"address"`
}

// AccountReward is one entry of the paginated
// /accounts/{stake_address}/rewards listing.
type AccountReward struct {
	Epoch  int64  `json:"epoch"`
	Amount string `json:"amount"`
	PoolID string `json:"pool_id"`
	Type   string `json:"type"`
}
