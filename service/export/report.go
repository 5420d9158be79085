package export

import (
	"encoding/csv"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dmaloney/cardano-export/service/blockfrost"
)

// reportHeader is the fixed column set of the report.
var reportHeader = []string{"Date", "Type", "Asset", "Amount", "Fee", "Transaction Hash", "Block", "Notes"}

// LovelaceDecimals is the native currency's decimal scale (1 ADA = 10^6 lovelace).
const LovelaceDecimals = 6

// DecimalsFor returns the decimal scale used to render amounts of a unit.
// Token decimal scales are not served by the endpoints this pipeline uses,
// so tokens render at their raw integer scale.
func DecimalsFor(unit string) int {
	if unit == blockfrost.LovelaceUnit {
		return LovelaceDecimals
	}
	return 0
}

// FormatAmount renders an exact integer amount at the given decimal scale,
// preserving sign. The split into whole and fractional parts is integer
// division and modulo; the value never passes through a float, so there is
// no magnitude loss even beyond 2^63.
func FormatAmount(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}

	abs := new(big.Int).Abs(v)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	sign := ""
	if v.Sign() < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s.%0*d", sign, whole.String(), decimals, frac)
}

// ParseAmount is the inverse of FormatAmount: it reads a sign-preserving
// decimal rendering back into the exact integer at the given scale.
func ParseAmount(s string, decimals int) (*big.Int, error) {
	whole, frac, hasFrac := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	if decimals > 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
		n.Mul(n, scale)
		if hasFrac {
			if len(frac) != decimals {
				return nil, fmt.Errorf("invalid amount %q: expected %d fractional digits", s, decimals)
			}
			f, ok := new(big.Int).SetString(frac, 10)
			if !ok || f.Sign() < 0 {
				return nil, fmt.Errorf("invalid amount %q", s)
			}
			n.Add(n, f)
		}
	}

	if neg {
		n.Neg(n)
	}
	return n, nil
}

// formulaTriggers are the characters spreadsheets interpret as the start of
// a formula when they lead a cell.
const formulaTriggers = "=+-@\t|"

// sanitizeField defeats spreadsheet formula injection: a non-numeric value
// beginning with a formula-trigger character is prefixed with an apostrophe.
// Purely numeric values, negative amounts included, are exempt so spreadsheet
// imports still treat them as numbers.
func sanitizeField(s string) string {
	if s == "" || isNumeric(s) {
		return s
	}
	if strings.ContainsRune(formulaTriggers, rune(s[0])) {
		return "'" + s
	}
	return s
}

// isNumeric reports whether s is an optionally signed decimal number with at
// most one fractional part.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i = 1
	}
	digits, dots := 0, 0
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// RenderReport serializes transactions as a comma-separated report with the
// fixed header. Every field passes through the injection sanitizer before the
// CSV layer applies standard quoting (fields containing commas, quotes, or
// newlines are quoted with internal quotes doubled).
func RenderReport(txs []Transaction) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(reportHeader)
	for _, t := range txs {
		row := []string{
			t.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			string(t.Type),
			assetLabel(t),
			FormatAmount(t.NetAmount, DecimalsFor(t.Unit)),
			feeLabel(t),
			t.Hash,
			strconv.FormatInt(t.BlockHeight, 10),
			notesLabel(t),
		}
		for i, f := range row {
			row[i] = sanitizeField(f)
		}
		w.Write(row)
	}
	w.Flush()

	return sb.String()
}

// Filename builds the deterministic report filename for an export timestamp.
func Filename(ts time.Time) string {
	return "cardano-transactions-" + ts.UTC().Format("2006-01-02T15-04-05") + ".csv"
}

func assetLabel(t Transaction) string {
	if t.Ticker != "" {
		return t.Ticker
	}
	return t.Unit
}

func feeLabel(t Transaction) string {
	if t.Fee == nil {
		return ""
	}
	return FormatAmount(t.Fee, LovelaceDecimals)
}

func notesLabel(t Transaction) string {
	if t.Type == TxTypeStakeReward && t.PoolID != "" {
		return "pool " + t.PoolID
	}
	return ""
}
