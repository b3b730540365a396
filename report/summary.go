package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/vacationflow/vacation"
)

// BalanceRow is one user's balance for the report year.
type BalanceRow struct {
	UserID      string
	Employee    string
	Department  string
	TotalDays   int
	UsedDays    int
	Available   int
	Utilization decimal.Decimal // used / total, 0..1+, two decimals
}

// BalanceSummary is the balance report with company-wide totals.
type BalanceSummary struct {
	Year        int
	Rows        []BalanceRow
	TotalDays   int
	UsedDays    int
	Utilization decimal.Decimal
}

// Utilization is used/total rounded to two places. A zero total yields
// zero rather than dividing.
func Utilization(used, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(used)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// Balances summarizes every balance of the given year. HR only.
func (s *Service) Balances(ctx context.Context, actor vacation.Actor, year int) (*BalanceSummary, error) {
	if err := vacation.Authorize(actor, vacation.OpViewReports, vacation.Target{}); err != nil {
		return nil, err
	}

	balances, err := s.Store.ListBalances(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}
	users, depts, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BalanceSummary{Year: year, Rows: make([]BalanceRow, 0, len(balances))}
	for _, b := range balances {
		u := users[b.UserID]
		summary.Rows = append(summary.Rows, BalanceRow{
			UserID:      b.UserID,
			Employee:    u.FullName,
			Department:  depts[u.DepartmentID].Name,
			TotalDays:   b.TotalDays,
			UsedDays:    b.UsedDays,
			Available:   b.Available(),
			Utilization: Utilization(b.UsedDays, b.TotalDays),
		})
		summary.TotalDays += b.TotalDays
		summary.UsedDays += b.UsedDays
	}
	sort.Slice(summary.Rows, func(i, j int) bool {
		return summary.Rows[i].Employee < summary.Rows[j].Employee
	})
	summary.Utilization = Utilization(summary.UsedDays, summary.TotalDays)
	return summary, nil
}
