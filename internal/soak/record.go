package soak

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"landlord/internal/db"
)

// Runs converts a batch into rows for the soak_runs table. The full result,
// week lines included, goes into the summary column.
func Runs(batchID uuid.UUID, results []Result) ([]db.SoakRun, error) {
	out := make([]db.SoakRun, 0, len(results))
	for _, r := range results {
		summary, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode soak result %d: %w", r.Seed, err)
		}
		out = append(out, db.SoakRun{
			BatchID:        batchID,
			Seed:           r.Seed,
			Weeks:          r.Weeks,
			Nights:         r.Nights,
			FinalCashPence: r.CashPence,
			DebtPence:      r.DebtPence,
			Reputation:     r.Reputation,
			CreditScore:    r.CreditScore,
			PubLevel:       r.PubLevel,
			InArrears:      r.InArrears,
			Summary:        summary,
		})
	}
	return out, nil
}

// Summary is the spread of one batch.
type Summary struct {
	Games        int   `json:"games"`
	InArrears    int   `json:"in_arrears"`
	MinCashPence int64 `json:"min_cash_pence"`
	MaxCashPence int64 `json:"max_cash_pence"`
	AvgCashPence int64 `json:"avg_cash_pence"`
	MaxPubLevel  int   `json:"max_pub_level"`
}

func Summarize(results []Result) Summary {
	s := Summary{Games: len(results)}
	if len(results) == 0 {
		return s
	}
	var total int64
	s.MinCashPence, s.MaxCashPence = results[0].CashPence, results[0].CashPence
	for _, r := range results {
		total += r.CashPence
		s.MinCashPence = min(s.MinCashPence, r.CashPence)
		s.MaxCashPence = max(s.MaxCashPence, r.CashPence)
		s.MaxPubLevel = max(s.MaxPubLevel, r.PubLevel)
		if r.InArrears {
			s.InArrears++
		}
	}
	s.AvgCashPence = total / int64(len(results))
	return s
}
