package valuation

// DisciplineRow is the price-discipline verdict for one grid price point.
type DisciplineRow struct {
	Multiple    float64 `json:"multiple"`
	EquityValue float64 `json:"equity_value"`
	// PremiumOverEPV = equityValue / epvEquity - 1.
	PremiumOverEPV float64 `json:"premium_over_epv"`
	Pass           bool    `json:"pass"`
}

// DisciplineTable compares every candidate price against EPV-derived equity
// value plus the allowed strategic premium.
type DisciplineTable struct {
	EPVEquity        float64 `json:"epv_equity"`
	StrategicPremium float64 `json:"strategic_premium"`
	// MaxDisciplinedPrice is the highest equity price the discipline rule
	// allows: epvEquity * (1 + strategicPremium).
	MaxDisciplinedPrice float64         `json:"max_disciplined_price"`
	Rows                []DisciplineRow `json:"rows"`
}

// CheckPriceDiscipline evaluates each multiple-grid price point against the
// EPV anchor. The comparison is deliberately simple; the interesting
// behavior is combinatorial and lives in the pipeline, where every price
// point is paired with every feasible deal structure.
func CheckPriceDiscipline(epvEquity, strategicPremium float64, grid []MultipleGridRow) DisciplineTable {
	table := DisciplineTable{
		EPVEquity:           epvEquity,
		StrategicPremium:    strategicPremium,
		MaxDisciplinedPrice: epvEquity * (1 + strategicPremium),
		Rows:                make([]DisciplineRow, 0, len(grid)),
	}

	for _, row := range grid {
		var premium float64
		if epvEquity != 0 {
			premium = row.EquityValue/epvEquity - 1
		}
		table.Rows = append(table.Rows, DisciplineRow{
			Multiple:       row.Multiple,
			EquityValue:    row.EquityValue,
			PremiumOverEPV: premium,
			Pass:           premium <= strategicPremium,
		})
	}
	return table
}
