package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenNightTwiceFails(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	_, err = e.OpenNight()
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCloseNightWhenClosedIsNoop(t *testing.T) {
	e := newTestEngine(t, nil)
	before := e.State()
	rep, err := e.CloseNight(CloseLastOrders)
	require.NoError(t, err)
	require.True(t, rep.AlreadyClosed)
	after := e.State()
	require.Equal(t, before.DayCounter, after.DayCounter)
	require.Equal(t, before.CashPence, after.CashPence)
	require.Equal(t, before.Reputation, after.Reputation)
}

func TestRoundsIncreaseToClosingRoundThenReset(t *testing.T) {
	e := newTestEngine(t, nil)
	first, err := e.OpenNight()
	require.NoError(t, err)
	require.Equal(t, 1, first.Round)
	require.Equal(t, 1, e.State().Round)

	prev := 1
	for {
		rep, err := e.PlayRound()
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidStateTransition)
			break
		}
		require.Equal(t, prev+1, rep.Round)
		prev = rep.Round
	}
	require.Equal(t, e.Balance().ClosingRound, prev)

	_, err = e.CloseNight(CloseLastOrders)
	require.NoError(t, err)
	st := e.State()
	require.Equal(t, 0, st.Round)
	require.Equal(t, 0, st.Patrons)
	require.Equal(t, PhaseClosed, st.Phase)
}

func TestPlayRoundWhileClosedFails(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.PlayRound()
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestArrivalsBeyondCapacityAreTurnedAway(t *testing.T) {
	e := newTestEngine(t, func(b *Balance) {
		b.BaseBarCapacity = 20
		b.BaseTrafficPerRound = 100
	})
	require.Equal(t, 20, e.BarCapacity())

	rep, err := e.OpenNight()
	require.NoError(t, err)
	require.Greater(t, rep.Arrivals, 20)
	require.Equal(t, 20, rep.Admitted)
	require.Equal(t, 20, e.State().Patrons)
	require.Equal(t, rep.Arrivals-20, rep.TurnedAway)
	require.Equal(t, rep.TurnedAway, e.State().Night.TurnedAway)

	for range 5 {
		r, err := e.PlayRound()
		require.NoError(t, err)
		require.LessOrEqual(t, r.Patrons, 20)
		require.Equal(t, r.Arrivals-r.Admitted, r.TurnedAway)
	}
}

func TestBarCapacityFollowsPolicyAndStaff(t *testing.T) {
	e := newTestEngine(t, nil)
	base := e.BarCapacity()
	require.NoError(t, e.SetSecurityPolicy(PolicyFriendly))
	require.Equal(t, base+2, e.BarCapacity())
	require.NoError(t, e.SetSecurityPolicy(PolicyStrict))
	require.Equal(t, base-2, e.BarCapacity())
	require.NoError(t, e.SetSecurityPolicy(PolicyBalanced))

	_, err := e.Hire(StaffSecurity)
	require.NoError(t, err)
	_, err = e.HireManager()
	require.NoError(t, err)
	require.Equal(t, base+2, e.BarCapacity())
}

func TestEarlyClosePenalty(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	rep, err := e.CloseNight(CloseEarly)
	require.NoError(t, err)
	remaining := e.Balance().ClosingRound - 1
	require.Equal(t, (remaining+2)/3, rep.EarlyClosePenalty)
}

func TestCloseAdvancesCalendarAndAccrues(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	playNight(t, e)
	st := e.State()
	require.Equal(t, 1, st.DayIndex)
	require.Equal(t, 1, st.DayCounter)
	require.Equal(t, ShareOfWeek(e.Balance().WeeklyRentPence, 0), st.AccruedRentPence)
	require.Equal(t, ShareOfWeek(st.FrontOfHouse[0].WeeklyWagePence, 0), st.FrontOfHouse[0].AccruedWagePence)
}

func TestSettlementRunsOncePerWeek(t *testing.T) {
	e := newTestEngine(t, nil)
	for night := 1; night <= 14; night++ {
		rep := playNight(t, e)
		switch night {
		case 7, 14:
			require.NotNil(t, rep.Week, "night %d", night)
		default:
			require.Nil(t, rep.Week, "night %d", night)
		}
	}
	st := e.State()
	require.Len(t, st.WeekReports, 2)
	require.Equal(t, 3, st.WeekCount)
	require.Equal(t, 2, st.WeeksIntoReport)
	require.Equal(t, 2, st.Progress.WeeksSettled)
}

func TestFourWeeksProduceAPeriodReport(t *testing.T) {
	e := newTestEngine(t, nil)
	var period *PeriodReport
	for range 28 {
		if rep := playNight(t, e); rep.Period != nil {
			period = rep.Period
		}
	}
	require.NotNil(t, period)
	require.Equal(t, 1, period.Index)
	require.Equal(t, 1, period.FirstWeek)
	require.Equal(t, 4, period.LastWeek)
	st := e.State()
	require.Equal(t, 2, st.ReportIndex)
	require.Equal(t, 0, st.WeeksIntoReport)
	require.Equal(t, 28, period.Totals.Nights)
}

func TestChaosDecaysAtClose(t *testing.T) {
	tests := []struct {
		name     string
		chaos    float64
		fights   int
		unserved int
		want     float64
	}{
		{"quiet night", 10, 0, 0, 8},
		{"a fight slows the decay", 10, 1, 0, 9},
		{"a long queue slows the decay", 10, 0, 7, 9},
		{"six unserved is still quiet", 10, 0, 6, 8},
		{"never below zero", 1, 0, 0, 0},
		{"zero stays zero", 0, 2, 0, 0},
	}
	for _, tc := range tests {
		e := newTestEngine(t, nil)
		_, err := e.OpenNight()
		require.NoError(t, err)
		e.st.Chaos = tc.chaos
		e.st.Night.Fights = tc.fights
		e.st.Night.Unserved = tc.unserved

		_, err = e.CloseNight(CloseEarly)
		require.NoError(t, err)
		if got := e.State().Chaos; got != tc.want {
			t.Fatalf("%s: chaos %v, want %v", tc.name, got, tc.want)
		}
	}
}
