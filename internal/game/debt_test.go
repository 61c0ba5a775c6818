package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLenderNeedsMinimumScore(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CreditScore = 550
	_, err := e.OpenCreditLine(LenderHalifix)
	require.ErrorIs(t, err, ErrPreconditionUnmet)
	require.Empty(t, e.CreditLines())

	e.st.CreditScore = 600
	line, err := e.OpenCreditLine(LenderHalifix)
	require.NoError(t, err)
	require.True(t, line.Open)
	require.Zero(t, line.BalancePence)
	require.Equal(t, line.LimitPence, line.AvailablePence())

	_, err = e.OpenCreditLine(LenderHalifix)
	require.ErrorIs(t, err, ErrPreconditionUnmet)
}

func TestMilestoneGatedLenderIsLocked(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CreditScore = 800
	_, err := e.OpenCreditLine(LenderUnionAlbion)
	require.ErrorIs(t, err, ErrLocked)
	_, err = e.OpenCreditLine("payday_pete")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSecondLineInAWeekDentsScore(t *testing.T) {
	e := newTestEngine(t, nil)
	score := e.State().CreditScore
	_, err := e.OpenCreditLine(LenderTownland)
	require.NoError(t, err)
	require.Equal(t, score, e.State().CreditScore)
	_, err = e.OpenCreditLine(LenderSantnere)
	require.NoError(t, err)
	require.Equal(t, score-5, e.State().CreditScore)
}

func TestDrawNeverExceedsLimit(t *testing.T) {
	e := newTestEngine(t, nil)
	line, err := e.OpenCreditLine(LenderTownland)
	require.NoError(t, err)
	cash := e.State().CashPence

	_, err = e.DrawCredit(line.ID, line.LimitPence+1)
	require.ErrorIs(t, err, ErrPreconditionUnmet)
	got, err := e.DrawCredit(line.ID, line.LimitPence)
	require.NoError(t, err)
	require.Zero(t, got.AvailablePence())
	require.Equal(t, cash+line.LimitPence, e.State().CashPence)

	_, err = e.DrawCredit("nope", 100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepayClosesLineAndSecondRepayFails(t *testing.T) {
	e := newTestEngine(t, nil)
	line, err := e.OpenCreditLine(LenderTownland)
	require.NoError(t, err)
	_, err = e.DrawCredit(line.ID, 100*PencePerPound)
	require.NoError(t, err)
	score := e.State().CreditScore

	res, err := e.Repay(line.ID)
	require.NoError(t, err)
	require.Equal(t, 100*PencePerPound, res.PaidPence)
	require.Equal(t, score+10, e.State().CreditScore)
	lines := e.CreditLines()
	require.Len(t, lines, 1)
	require.False(t, lines[0].Open)

	before, err := json.Marshal(e.State())
	require.NoError(t, err)
	_, err = e.Repay(line.ID)
	require.ErrorIs(t, err, ErrNoBalance)
	require.ErrorIs(t, err, ErrPreconditionUnmet)
	after, err := json.Marshal(e.State())
	require.NoError(t, err)
	require.JSONEq(t, string(before), string(after))
}

func TestRepayUnknownInstrument(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Repay("does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.Repay(SharkInstrument)
	require.ErrorIs(t, err, ErrNoBalance)
	_, err = e.Repay("trade_beverage")
	require.ErrorIs(t, err, ErrNoBalance)
}

func TestRepayWithoutCashLeavesDebt(t *testing.T) {
	e := newTestEngine(t, nil)
	loan, err := e.OpenSharkLine()
	require.NoError(t, err)
	e.st.CashPence = loan.BalancePence - 1

	_, err = e.Repay(SharkInstrument)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.NotNil(t, e.State().Shark)
	require.Equal(t, loan.BalancePence-1, e.State().CashPence)
}

func TestSharkOpensOnce(t *testing.T) {
	e := newTestEngine(t, nil)
	cash, score := e.State().CashPence, e.State().CreditScore
	loan, err := e.OpenSharkLine()
	require.NoError(t, err)
	require.Equal(t, SharkBorrowLimit(10), loan.BalancePence)
	require.Equal(t, cash+loan.BalancePence, e.State().CashPence)
	require.Equal(t, score-50, e.State().CreditScore)

	_, err = e.OpenSharkLine()
	require.ErrorIs(t, err, ErrPreconditionUnmet)

	res, err := e.Repay(SharkInstrument)
	require.NoError(t, err)
	require.Equal(t, loan.BalancePence, res.PaidPence)
	require.Nil(t, e.State().Shark)
}

func TestWeeklyDuesLines(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.AccruedRentPence = 4_000
	e.st.TradeBeverage.BalancePence = 10_000
	e.st.Shark = &SharkLoan{BalancePence: 100_000, MinPaymentBps: SharkMinPaymentBps}

	d := e.WeeklyDues()
	require.Equal(t, int64(4_000), d.RentPence)
	require.Equal(t, int64(2_000), d.SupplierPence)
	require.Equal(t, int64(15_000), d.SharkPence)
	require.Equal(t, d.RentPence+d.SupplierPence+d.SharkPence, d.TotalPence)

	var tags []CostTag
	for _, l := range d.Lines {
		tags = append(tags, l.Tag)
	}
	require.Equal(t, []CostTag{TagRent, TagSupplier, TagShark}, tags)
	require.Equal(t, "trade_beverage", d.Lines[1].Instrument)
}

func TestMissedRentCarriesArrearsAndPenalties(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 0
	e.st.AccruedRentPence = 28_000
	score, rep := e.st.CreditScore, e.st.Reputation

	s := e.settleWeek()
	require.Equal(t, []CostTag{TagRent}, s.misses)
	require.Equal(t, int64(28_000), s.missed)
	require.Equal(t, int64(28_000), e.st.RentArrearsPence)
	require.Zero(t, e.st.AccruedRentPence)
	require.Equal(t, score-20, e.st.CreditScore)
	require.Equal(t, rep-2, e.st.Reputation)
	require.Zero(t, e.st.CashPence)
	require.Equal(t, int64(28_000), e.st.TotalDebtPence())
}

func TestSettlementBridgesFromCreditLines(t *testing.T) {
	e := newTestEngine(t, nil)
	line, err := e.OpenCreditLine(LenderTownland)
	require.NoError(t, err)
	e.st.CashPence = 1_000
	e.st.AccruedRentPence = 28_000

	s := e.settleWeek()
	require.NotContains(t, s.misses, TagRent)
	require.Zero(t, e.st.AccruedRentPence)
	require.Zero(t, e.st.RentArrearsPence)
	require.Zero(t, e.st.CashPence)
	require.GreaterOrEqual(t, e.st.CreditLines[0].BalancePence, int64(27_000))
	require.LessOrEqual(t, e.st.CreditLines[0].BalancePence, line.LimitPence)
}

func TestMissedSharkPaymentHurts(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 0
	e.st.Shark = &SharkLoan{BalancePence: 50_000, WeeklyRateBps: SharkWeeklyRateBps, MinPaymentBps: SharkMinPaymentBps}
	rep, chaos := e.st.Reputation, e.st.Chaos

	e.settleWeek()
	require.Equal(t, 1, e.st.Shark.MissedPayments)
	require.Equal(t, rep-5, e.st.Reputation)
	require.Equal(t, chaos+8, e.st.Chaos)
	want := 50_000 + SharkMissPenaltyPence
	want += applyBps(want, SharkWeeklyRateBps)
	require.Equal(t, want, e.st.Shark.BalancePence)
}

func TestCleanWeekImprovesScore(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.AccruedRentPence = 28_000
	score := e.st.CreditScore
	s := e.settleWeek()
	require.Equal(t, int64(28_000), s.paid)
	require.Equal(t, score+5, e.st.CreditScore)
}

func TestCompoundInterest(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CreditLines = []CreditLine{
		{ID: "a", Open: true, BalancePence: 100_000, LimitPence: 200_000, APRBps: 2_600},
		{ID: "capped", Open: true, BalancePence: 199_900, LimitPence: 200_000, APRBps: 2_600},
		{ID: "closed", Open: false, BalancePence: 0, LimitPence: 200_000, APRBps: 2_600},
	}
	e.st.Shark = &SharkLoan{BalancePence: 50_000, WeeklyRateBps: SharkWeeklyRateBps, MinPaymentBps: SharkMinPaymentBps}
	e.st.TradeBeverage.BalancePence = 52_000

	e.compoundInterest()

	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"line grows by APR/52", e.st.CreditLines[0].BalancePence, 100_500},
		{"line capped at its limit", e.st.CreditLines[1].BalancePence, 200_000},
		{"closed line untouched", e.st.CreditLines[2].BalancePence, 0},
		{"shark grows by the weekly rate", e.st.Shark.BalancePence, 52_500},
		{"trade credit grows by APR/52", e.st.TradeBeverage.BalancePence, 52_120},
		{"empty trade credit stays empty", e.st.TradeFood.BalancePence, 0},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("%s: balance %d, want %d", tc.name, tc.got, tc.want)
		}
	}
}

func TestSettlementPaysMinimumsBeforeInterest(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 500_000
	e.st.CreditLines = []CreditLine{{ID: "line", Lender: LenderTownland, Open: true, BalancePence: 100_000, LimitPence: 200_000, APRBps: 2_600}}
	e.st.Shark = &SharkLoan{BalancePence: 50_000, WeeklyRateBps: SharkWeeklyRateBps, MinPaymentBps: SharkMinPaymentBps}
	e.st.TradeBeverage.BalancePence = 52_000

	s := e.settleWeek()
	require.Empty(t, s.misses)
	require.Equal(t, int64(5_000+7_500+10_400), s.paid)
	require.Equal(t, int64(500_000-22_900), e.st.CashPence)

	// 95,000 left on the line, then 26% / 52 on top.
	require.Equal(t, int64(95_475), e.st.CreditLines[0].BalancePence)
	// 42,500 left with the shark, then 5% on top.
	require.Equal(t, int64(44_625), e.st.Shark.BalancePence)
	// 41,600 left with the supplier, then 12% / 52 on top.
	require.Equal(t, int64(41_696), e.st.TradeBeverage.BalancePence)

	d := e.WeeklyDues()
	require.Equal(t, int64(4_774), d.CreditLinesPence)
	require.Equal(t, int64(6_694), d.SharkPence)
	require.Equal(t, int64(8_339), d.SupplierPence)
}

func TestTakeUpToNeverOverdraws(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 1_500

	require.Equal(t, int64(1_000), e.takeUpTo(1_000, TagIncidents))
	require.Equal(t, int64(500), e.takeUpTo(4_000, TagIncidents))
	require.Zero(t, e.takeUpTo(100, TagIncidents))
	require.Zero(t, e.takeUpTo(-100, TagIncidents))
	require.Zero(t, e.st.CashPence)
	require.Equal(t, int64(1_500), e.st.Week.CostsByTag[TagIncidents])
}
