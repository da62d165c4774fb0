package valuation

// MultipleGridRow is one price point in the EV/EBITDA grid.
type MultipleGridRow struct {
	Multiple        float64 `json:"multiple"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	EVToRevenue     float64 `json:"ev_to_revenue"`
}

// BuildMultipleGrid produces the EV and equity value at each candidate
// EV/EBITDA multiple. Pure and total: an empty multiple set yields an empty
// grid, and every row satisfies equityValue = enterpriseValue - netDebt.
func BuildMultipleGrid(ebitda, netDebt, revenue float64, multiples []float64) []MultipleGridRow {
	rows := make([]MultipleGridRow, 0, len(multiples))
	for _, m := range multiples {
		ev := ebitda * m
		row := MultipleGridRow{
			Multiple:        m,
			EnterpriseValue: ev,
			EquityValue:     ev - netDebt,
		}
		if revenue != 0 {
			row.EVToRevenue = ev / revenue
		}
		rows = append(rows, row)
	}
	return rows
}
