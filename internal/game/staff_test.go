package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHireRollsStatsInsideTypeRanges(t *testing.T) {
	e := newTestEngine(t, nil)
	for _, typ := range []StaffType{StaffTrainee, StaffExperienced, StaffSpeed, StaffCharisma} {
		s, err := e.Hire(typ)
		require.NoError(t, err)
		def, err := staffByType(typ)
		require.NoError(t, err)
		require.GreaterOrEqual(t, s.ServeCapacity, def.ServeMin)
		require.LessOrEqual(t, s.ServeCapacity, def.ServeMax)
		require.GreaterOrEqual(t, s.WeeklyWagePence, applyBps(int64(def.WageMinPounds)*PencePerPound, e.bal.WageMultBps))
		require.LessOrEqual(t, s.WeeklyWagePence, applyBps(int64(def.WageMaxPounds)*PencePerPound, e.bal.WageMultBps))
		require.Equal(t, 70, s.Morale)
		require.NotEmpty(t, s.ID)
	}
}

func TestFrontOfHouseCap(t *testing.T) {
	e := newTestEngine(t, nil)
	for range e.bal.FrontOfHouseCap {
		_, err := e.Hire(StaffTrainee)
		require.NoError(t, err)
	}
	cash := e.State().CashPence
	_, err := e.Hire(StaffTrainee)
	require.ErrorIs(t, err, ErrCapacityReached)
	require.ErrorIs(t, err, ErrPreconditionUnmet)
	require.Equal(t, cash, e.State().CashPence)
	require.Len(t, e.Roster().FrontOfHouse, e.bal.FrontOfHouseCap)
}

func TestBackOfHouseNeedsKitchen(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Hire(StaffKitchenPorter)
	require.ErrorIs(t, err, ErrLocked)
	require.Zero(t, e.FoodServeCapacity())

	e.st.Owned = append(e.st.Owned, UpgradeKitchen)
	require.Equal(t, 1, e.FoodServeCapacity())
	porter, err := e.Hire(StaffKitchenPorter)
	require.NoError(t, err)
	require.Equal(t, 1+porter.FoodServe, e.FoodServeCapacity())

	_, err = e.Hire(StaffChef)
	require.NoError(t, err)
	_, err = e.Hire(StaffChef)
	require.ErrorIs(t, err, ErrCapacityReached)
}

func TestAssistantManagerCountsTowardManagerCap(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Hire(StaffAssistantManager)
	require.NoError(t, err)
	_, err = e.HireManager()
	require.ErrorIs(t, err, ErrCapacityReached)
	require.Empty(t, e.Roster().Managers)
}

func TestHiringWhileOpenFails(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	_, err = e.Hire(StaffTrainee)
	require.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.HireManager()
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestFireRemovesExactlyThatStaffMember(t *testing.T) {
	e := newTestEngine(t, nil)
	a, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	b, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	c, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	rep := e.State().Reputation

	gone, err := e.Fire(b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, gone.ID)
	roster := e.Roster().FrontOfHouse
	require.Len(t, roster, 2)
	require.Equal(t, a.ID, roster[0].ID)
	require.Equal(t, c.ID, roster[1].ID)
	require.Equal(t, rep-1, e.State().Reputation)

	_, err = e.Fire(b.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFireAtResolvesPosition(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	second, err := e.Hire(StaffExperienced)
	require.NoError(t, err)

	gone, err := e.FireAt(PoolFrontOfHouse, 1)
	require.NoError(t, err)
	require.Equal(t, second.ID, gone.ID)

	_, err = e.FireAt(PoolFrontOfHouse, 5)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.FireAt(PoolManagers, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFiringManagerCostsMoreReputation(t *testing.T) {
	e := newTestEngine(t, nil)
	m, err := e.HireManager()
	require.NoError(t, err)
	rep := e.State().Reputation
	_, err = e.Fire(m.ID)
	require.NoError(t, err)
	require.Equal(t, rep-2, e.State().Reputation)
}

func TestFirePaysAccruedWage(t *testing.T) {
	e := newTestEngine(t, nil)
	s, err := e.Hire(StaffTrainee)
	require.NoError(t, err)
	playNight(t, e)

	owed := e.Roster().FrontOfHouse[0].AccruedWagePence
	require.Positive(t, owed)
	cash := e.State().CashPence
	_, err = e.Fire(s.ID)
	require.NoError(t, err)
	require.Equal(t, cash-owed, e.State().CashPence)
}

func TestManagerScalesServeCapacity(t *testing.T) {
	e := newTestEngine(t, nil)
	base := e.ServeCapacity()
	require.Equal(t, e.bal.BaseServeCapacity, base)
	m, err := e.HireManager()
	require.NoError(t, err)
	want := int(applyBps(int64(base+m.ServeCapacity), m.CapacityMultBps))
	require.Equal(t, want, e.ServeCapacity())
}
