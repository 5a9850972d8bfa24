// Package edgefile reads and writes quoted edge records in JSON form.
package edgefile

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	json "github.com/goccy/go-json"
	"github.com/mselser95/solana-cycle-arb/pkg/types"
	"github.com/shopspring/decimal"
)

// DefaultGasFeeLamports is assumed when a record carries no gas fee.
const DefaultGasFeeLamports = 25000

// Record is the wire form of one quoted edge. Numeric fields accept JSON
// numbers or strings; absent fields are detected through decimal.NullDecimal.
type Record struct {
	FromToken      string              `json:"from_token"`
	ToToken        string              `json:"to_token"`
	FromSymbol     string              `json:"from_symbol,omitempty"`
	ToSymbol       string              `json:"to_symbol,omitempty"`
	InAmount       decimal.NullDecimal `json:"in_amount"`
	OutAmount      decimal.NullDecimal `json:"out_amount"`
	PriceRatio     decimal.NullDecimal `json:"price_ratio"`
	Weight         decimal.NullDecimal `json:"weight"`
	SlippageBps    decimal.NullDecimal `json:"slippage_bps"`
	PlatformFee    decimal.NullDecimal `json:"platform_fee"`
	PriceImpactPct decimal.NullDecimal `json:"price_impact_pct"`
	TotalFee       decimal.NullDecimal `json:"total_fee"`
	GasFee         decimal.NullDecimal `json:"gas_fee"`
}

type envelope struct {
	Edges []Record `json:"edges"`
}

// Decode reads either a JSON array of records or an object with an "edges"
// array. Missing required fields and non-integer counts are reported as a
// *types.ValidationError naming the record index; value ranges are left to
// the graph builder.
func Decode(r io.Reader) ([]types.Edge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read edge records: %w", err)
	}

	records, err := unmarshalRecords(data)
	if err != nil {
		return nil, &types.ValidationError{
			Index:  -1,
			Reason: fmt.Sprintf("malformed edge JSON: %v", err),
			Err:    err,
		}
	}

	edges := make([]types.Edge, 0, len(records))
	for i := range records {
		e, err := records[i].toEdge(i)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}

	return edges, nil
}

// Load decodes the edge file at path.
func Load(path string) ([]types.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge file: %w", err)
	}
	defer f.Close()

	edges, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return edges, nil
}

func unmarshalRecords(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		err := json.Unmarshal(trimmed, &env)
		if err != nil {
			return nil, err
		}
		return env.Edges, nil
	}

	var records []Record
	err := json.Unmarshal(trimmed, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (rec *Record) toEdge(index int) (types.Edge, error) {
	if rec.FromToken == "" {
		return types.Edge{}, types.NewValidationError(index, "from_token", "required field missing")
	}
	if rec.ToToken == "" {
		return types.Edge{}, types.NewValidationError(index, "to_token", "required field missing")
	}
	if !rec.InAmount.Valid {
		return types.Edge{}, types.NewValidationError(index, "in_amount", "required field missing")
	}
	if !rec.OutAmount.Valid {
		return types.Edge{}, types.NewValidationError(index, "out_amount", "required field missing")
	}

	in := rec.InAmount.Decimal
	out := rec.OutAmount.Decimal

	ratio := 0.0
	switch {
	case rec.PriceRatio.Valid:
		ratio = rec.PriceRatio.Decimal.InexactFloat64()
	case !in.IsZero():
		ratio = out.Div(in).InexactFloat64()
	}

	weight := types.WeightForRatio(ratio)
	if rec.Weight.Valid {
		supplied := rec.Weight.Decimal.InexactFloat64()
		if ratio > 0 && !types.WeightMatchesRatio(supplied, ratio) {
			return types.Edge{}, types.NewValidationError(index, "weight",
				fmt.Sprintf("%s (must equal -ln(price_ratio) = %v)", rec.Weight.Decimal.String(), weight))
		}
		weight = supplied
	}

	slippage, err := integerField(index, "slippage_bps", rec.SlippageBps, 0, math.MinInt, math.MaxInt)
	if err != nil {
		return types.Edge{}, err
	}
	gas, err := integerField(index, "gas_fee", rec.GasFee, DefaultGasFeeLamports, math.MinInt64, math.MaxInt64)
	if err != nil {
		return types.Edge{}, err
	}

	return types.Edge{
		From:           types.TokenID(rec.FromToken),
		To:             types.TokenID(rec.ToToken),
		FromSymbol:     rec.FromSymbol,
		ToSymbol:       rec.ToSymbol,
		InAmount:       in.InexactFloat64(),
		OutAmount:      out.InexactFloat64(),
		PriceRatio:     ratio,
		Weight:         weight,
		SlippageBps:    int(slippage),
		PlatformFee:    floatOrZero(rec.PlatformFee),
		PriceImpactPct: floatOrZero(rec.PriceImpactPct),
		TotalFee:       floatOrZero(rec.TotalFee),
		GasFee:         gas,
	}, nil
}

// integerField reads an optional integer field bounded by [lo, hi].
func integerField(index int, field string, v decimal.NullDecimal, def, lo, hi int64) (int64, error) {
	if !v.Valid {
		return def, nil
	}
	if !v.Decimal.IsInteger() {
		return 0, types.NewValidationError(index, field, fmt.Sprintf("%s (must be an integer)", v.Decimal.String()))
	}
	if v.Decimal.LessThan(decimal.NewFromInt(lo)) || v.Decimal.GreaterThan(decimal.NewFromInt(hi)) {
		return 0, types.NewValidationError(index, field, fmt.Sprintf("%s (out of range)", v.Decimal.String()))
	}
	return v.Decimal.IntPart(), nil
}

func floatOrZero(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return 0
	}
	return v.Decimal.InexactFloat64()
}

// FromEdge converts an edge back into its wire form.
func FromEdge(e types.Edge) Record {
	return Record{
		FromToken:      string(e.From),
		ToToken:        string(e.To),
		FromSymbol:     e.FromSymbol,
		ToSymbol:       e.ToSymbol,
		InAmount:       nullFloat(e.InAmount),
		OutAmount:      nullFloat(e.OutAmount),
		PriceRatio:     nullFloat(e.PriceRatio),
		Weight:         nullFloat(e.Weight),
		SlippageBps:    decimal.NewNullDecimal(decimal.NewFromInt(int64(e.SlippageBps))),
		PlatformFee:    nullFloat(e.PlatformFee),
		PriceImpactPct: nullFloat(e.PriceImpactPct),
		TotalFee:       nullFloat(e.TotalFee),
		GasFee:         decimal.NewNullDecimal(decimal.NewFromInt(e.GasFee)),
	}
}

// Encode writes edges as an indented JSON array.
func Encode(w io.Writer, edges []types.Edge) error {
	records := make([]Record, len(edges))
	for i, e := range edges {
		records[i] = FromEdge(e)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode edge records: %w", err)
	}

	_, err = w.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("write edge records: %w", err)
	}
	return nil
}

func nullFloat(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}
