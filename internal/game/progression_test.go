package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKitchenOwnedOnlyAfterThirdClose(t *testing.T) {
	e := newTestEngine(t, nil)
	cash := e.State().CashPence
	ticket, err := e.BuyUpgrade(UpgradeKitchen)
	require.NoError(t, err)
	require.Equal(t, 3, ticket.NightsRemaining)
	require.Equal(t, cash-45_000, e.State().CashPence)

	for night := 1; night <= 3; night++ {
		require.NotContains(t, e.OwnedUpgrades(), UpgradeKitchen, "before close %d", night)
		rep := playNight(t, e)
		if night < 3 {
			require.Empty(t, rep.Installed)
		} else {
			require.Equal(t, []UpgradeID{UpgradeKitchen}, rep.Installed)
		}
	}
	require.Contains(t, e.OwnedUpgrades(), UpgradeKitchen)
	require.Empty(t, e.State().Installs)
	require.Equal(t, 20, e.RackCapacity(PoolFood))
}

func TestBuyUpgradeTwiceFails(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.BuyUpgrade(UpgradeDarts)
	require.NoError(t, err)
	_, err = e.BuyUpgrade(UpgradeDarts)
	require.ErrorIs(t, err, ErrPreconditionUnmet)

	a, err := e.UpgradeAvailability(UpgradeDarts)
	require.NoError(t, err)
	require.False(t, a.Available)
	require.Contains(t, a.Reasons, "already installing")
}

func TestUpgradeLocks(t *testing.T) {
	e := newTestEngine(t, nil)
	tests := []struct {
		id     UpgradeID
		reason string
	}{
		{UpgradeBeerGarden, "needs pub level 2"},
		{UpgradeFridgeExtension, "needs kitchen installed"},
		{UpgradeCCTV, "needs milestone calm_house"},
	}
	for _, tc := range tests {
		a, err := e.UpgradeAvailability(tc.id)
		require.NoError(t, err)
		require.False(t, a.Available, tc.id)
		require.Contains(t, a.Reasons, tc.reason)

		_, err = e.BuyUpgrade(tc.id)
		require.ErrorIs(t, err, ErrLocked, tc.id)
	}
	_, err := e.UpgradeAvailability("hot_tub")
	require.ErrorIs(t, err, ErrNotFound)

	e.st.Owned = append(e.st.Owned, UpgradeKitchen)
	a, err := e.UpgradeAvailability(UpgradeFridgeExtension)
	require.NoError(t, err)
	require.True(t, a.Available)
}

func TestUpgradeNeedsCash(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 1_000
	a, err := e.UpgradeAvailability(UpgradeDarts)
	require.NoError(t, err)
	require.False(t, a.Available)
	_, err = e.BuyUpgrade(UpgradeDarts)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Empty(t, e.State().Installs)
}

func TestScheduledActivityStartsAfterDelay(t *testing.T) {
	e := newTestEngine(t, nil)
	sched, err := e.ScheduleActivity(ActivityQuizNight)
	require.NoError(t, err)
	require.GreaterOrEqual(t, sched.StartsIn, 1)
	require.LessOrEqual(t, sched.StartsIn, 3)

	_, err = e.ScheduleActivity(ActivityOpenMic)
	require.ErrorIs(t, err, ErrPreconditionUnmet)

	closes := 0
	for e.State().Running == nil {
		playNight(t, e)
		closes++
		require.LessOrEqual(t, closes, 3)
	}
	require.Equal(t, sched.StartsIn, closes)
	require.Nil(t, e.State().Scheduled)
	require.Equal(t, ActivityQuizNight, e.State().Running.Activity)

	playNight(t, e)
	require.Nil(t, e.State().Running)
}

func TestActivityLocks(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.ScheduleActivity(ActivitySportsNight)
	require.ErrorIs(t, err, ErrLocked)
	_, err = e.ScheduleActivity(ActivityLiveBand)
	require.ErrorIs(t, err, ErrLocked)
	a, err := e.ActivityAvailability(ActivityDJNight)
	require.NoError(t, err)
	require.Len(t, a.Reasons, 2)
}

func TestMilestonesNeverRevoked(t *testing.T) {
	e := newTestEngine(t, nil)
	var seen []MilestoneID
	for range 21 {
		playNight(t, e)
		held := e.State().Achieved
		for _, id := range seen {
			require.Contains(t, held, id)
		}
		seen = slices.Clone(held)
	}
	require.Contains(t, seen, MilestoneOpenForBusiness)
}

func TestPubLevelStopsAtGap(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Achieved = []MilestoneID{MilestoneLevel2, MilestoneLevel4}
	require.Equal(t, 2, e.PubLevel())
	e.st.Achieved = append(e.st.Achieved, MilestoneLevel3)
	require.Equal(t, 4, e.PubLevel())
}

func TestPubLevelFollowsReputationMidWeek(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Achieved = []MilestoneID{MilestoneLevel2}
	e.st.Progress.TotalRevenuePence = 6_000 * PencePerPound
	e.st.Progress.WeeksSettled = 3
	e.st.Reputation = 24
	e.st.Progress.PeakReputation = 24
	require.Equal(t, 2, e.PubLevel())

	_, err := e.BuyUpgrade(UpgradeStaffRoom)
	require.NoError(t, err)
	require.Equal(t, 26, e.State().Reputation)

	require.Equal(t, 3, e.PubLevel())
	require.Contains(t, e.State().Achieved, MilestoneLevel3)
	door, err := e.UpgradeAvailability(UpgradeReinforcedDoorIII)
	require.NoError(t, err)
	require.NotContains(t, door.Reasons, "needs pub level 3")
}
