package valuation

import (
	"encoding/json"
	"math"
)

// nullable maps non-finite values to null. encoding/json rejects NaN and Inf
// outright, and a lost-money IRR or an undefined DSCR must not make an
// otherwise successful report unserializable.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON encodes an undefined DSCR (a year with no debt service) as null.
func (r YearRecord) MarshalJSON() ([]byte, error) {
	type alias YearRecord
	return json.Marshal(struct {
		alias
		DSCR *float64 `json:"dscr"`
	}{alias(r), nullable(r.DSCR)})
}

// MarshalJSON encodes non-finite return and coverage metrics as null. A
// negative-MOIC exit has no real IRR; the NaN stays visible in memory but
// serializes as null.
func (r LBOResult) MarshalJSON() ([]byte, error) {
	type alias LBOResult
	return json.Marshal(struct {
		alias
		IRR     *float64 `json:"irr"`
		MinDSCR *float64 `json:"min_dscr"`
	}{alias(r), nullable(r.IRR), nullable(r.MinDSCR)})
}

// MarshalJSON encodes an undefined coverage ratio as null.
func (r DSCRResult) MarshalJSON() ([]byte, error) {
	type alias DSCRResult
	return json.Marshal(struct {
		alias
		CashDSCR *float64 `json:"cash_dscr"`
	}{alias(r), nullable(r.CashDSCR)})
}

// MarshalJSON encodes non-finite trial metrics as null.
func (t DealStructureTrial) MarshalJSON() ([]byte, error) {
	type alias DealStructureTrial
	return json.Marshal(struct {
		alias
		IRR     *float64 `json:"irr"`
		MinDSCR *float64 `json:"min_dscr"`
	}{alias(t), nullable(t.IRR), nullable(t.MinDSCR)})
}
