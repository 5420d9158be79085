package export

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// Classify turns a transaction detail and its UTXO set into a directional
// Transaction record for the given wallet address set. It is a pure function:
// all arithmetic is exact big.Int, and it never fails. A transaction that
// touches none of the wallet's addresses is tagged TxTypeUnknown rather than
// rejected.
//
// Classification rule: wallet in inputs only, or in both inputs and outputs
// (self-transfer), is a send; wallet in outputs only is a receive. The fee is
// attached only when the wallet is among the inputs, since that is the side
// that paid it.
func Classify(detail *blockfrost.Transaction, utxos *blockfrost.TransactionUTXOs, ref TxRef, wallet map[string]struct{}) Transaction {
	inputs := flattenInputs(utxos.Inputs)
	outputs := flattenOutputs(utxos.Outputs)

	walletInInputs := anyInWallet(inputs, wallet)
	walletInOutputs := anyInWallet(outputs, wallet)

	var txType TxType
	switch {
	case walletInInputs:
		txType = TxTypeSend
	case walletInOutputs:
		txType = TxTypeReceive
	default:
		txType = TxTypeUnknown
	}

	// Signed native net: wallet-owned outputs minus wallet-owned inputs.
	// Positive means net inflow. The fee is implicitly included on sends
	// because the inputs cover it.
	nativeNet := sumWalletUnit(outputs, wallet, blockfrost.LovelaceUnit)
	nativeNet.Sub(nativeNet, sumWalletUnit(inputs, wallet, blockfrost.LovelaceUnit))

	unit := blockfrost.LovelaceUnit
	ticker := "ADA"
	net := nativeNet

	// A transaction whose wallet-side movement is a token transfer is
	// reported as that token; the lovelace delta is then fee and minimum
	// UTXO noise. First-seen unit order keeps the choice deterministic.
	if tokenUnit, tokenNet := firstTokenNet(inputs, outputs, wallet); tokenUnit != "" {
		unit = tokenUnit
		ticker = decodeAssetTicker(tokenUnit)
		net = tokenNet
	}

	blockTime := ref.BlockTime
	if blockTime == 0 {
		blockTime = detail.BlockTime
	}

	txn := Transaction{
		Hash:        detail.Hash,
		BlockHeight: detail.BlockHeight,
		BlockTime:   blockTime,
		Timestamp:   time.Unix(blockTime, 0).UTC(),
		Type:        txType,
		Inputs:      inputs,
		Outputs:     outputs,
		NetAmount:   net,
		Unit:        unit,
		Ticker:      ticker,
	}

	if walletInInputs {
		txn.Fee = parseQuantity(detail.Fees)
	}

	return txn
}

func flattenInputs(in []blockfrost.TransactionInput) []TransactionAmount {
	var out []TransactionAmount
	for _, i := range in {
		for _, a := range i.Amount {
			out = append(out, TransactionAmount{
				Address:  i.Address,
				Unit:     a.Unit,
				Quantity: parseQuantity(a.Quantity),
			})
		}
	}
	return out
}

func flattenOutputs(in []blockfrost.TransactionOutput) []TransactionAmount {
	var out []TransactionAmount
	for _, o := range in {
		for _, a := range o.Amount {
			out = append(out, TransactionAmount{
				Address:  o.Address,
				Unit:     a.Unit,
				Quantity: parseQuantity(a.Quantity),
			})
		}
	}
	return out
}

func anyInWallet(entries []TransactionAmount, wallet map[string]struct{}) bool {
	for _, e := range entries {
		if _, ok := wallet[e.Address]; ok {
			return true
		}
	}
	return false
}

// sumWalletUnit sums the quantities of one unit across the wallet-owned
// entries of a side.
func sumWalletUnit(entries []TransactionAmount, wallet map[string]struct{}, unit string) *big.Int {
	sum := new(big.Int)
	for _, e := range entries {
		if e.Unit != unit {
			continue
		}
		if _, ok := wallet[e.Address]; !ok {
			continue
		}
		sum.Add(sum, e.Quantity)
	}
	return sum
}

// firstTokenNet returns the first non-native unit, in output-then-input
// first-seen order, whose wallet-side net is nonzero, along with that net.
// It returns ("", nil) when the transaction moves no tokens for the wallet.
func firstTokenNet(inputs, outputs []TransactionAmount, wallet map[string]struct{}) (string, *big.Int) {
	var order []string
	seen := map[string]struct{}{}
	for _, e := range append(append([]TransactionAmount{}, outputs...), inputs...) {
		if e.Unit == blockfrost.LovelaceUnit {
			continue
		}
		if _, ok := wallet[e.Address]; !ok {
			continue
		}
		if _, ok := seen[e.Unit]; ok {
			continue
		}
		seen[e.Unit] = struct{}{}
		order = append(order, e.Unit)
	}

	for _, unit := range order {
		net := sumWalletUnit(outputs, wallet, unit)
		net.Sub(net, sumWalletUnit(inputs, wallet, unit))
		if net.Sign() != 0 {
			return unit, net
		}
	}
	return "", nil
}

// decodeAssetTicker derives a display ticker from a token unit. The unit is
// the 56-hex-char policy id followed by the hex-encoded asset name; the name
// is used when it decodes to printable ASCII.
func decodeAssetTicker(unit string) string {
	const policyIDLen = 56
	if len(unit) <= policyIDLen {
		return ""
	}
	name, err := hex.DecodeString(unit[policyIDLen:])
	if err != nil {
		return ""
	}
	for _, c := range name {
		if c < 0x20 || c > 0x7e {
			return ""
		}
	}
	return string(name)
}

// parseQuantity parses a decimal-string quantity as an exact integer. A
// malformed quantity counts as zero rather than failing the classification.
func parseQuantity(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
