package soak

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRunsCarryTheResult(t *testing.T) {
	batch := uuid.New()
	results := []Result{
		{Seed: 1, Weeks: 2, Nights: 14, CashPence: 120_000, PubLevel: 2, WeekLines: []WeekLine{{Week: 1}, {Week: 2}}},
		{Seed: 2, Weeks: 2, Nights: 14, CashPence: -5_000, InArrears: true},
	}
	runs, err := Runs(batch, results)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, batch, runs[0].BatchID)
	require.Equal(t, int64(120_000), runs[0].FinalCashPence)
	require.True(t, runs[1].InArrears)

	var back Result
	require.NoError(t, json.Unmarshal(runs[0].Summary, &back))
	require.Len(t, back.WeekLines, 2)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []Result
		want Summary
	}{
		{"empty", nil, Summary{}},
		{
			"spread",
			[]Result{{CashPence: 100, PubLevel: 1}, {CashPence: -50, InArrears: true, PubLevel: 3}, {CashPence: 250}},
			Summary{Games: 3, InArrears: 1, MinCashPence: -50, MaxCashPence: 250, AvgCashPence: 100, MaxPubLevel: 3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summarize(tc.in); got != tc.want {
				t.Fatalf("Summarize = %+v, want %+v", got, tc.want)
			}
		})
	}
}
