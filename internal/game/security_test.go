package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecurityBreakdownSumsParts(t *testing.T) {
	e := newTestEngine(t, nil)
	require.Zero(t, e.SecurityBreakdown().Total)

	level, err := e.UpgradeSecurity()
	require.NoError(t, err)
	require.Equal(t, 1, level)
	_, err = e.Hire(StaffSecurity)
	require.NoError(t, err)
	_, err = e.HireManager()
	require.NoError(t, err)
	require.NoError(t, e.SetSecurityPolicy(PolicyStrict))
	e.st.Owned = append(e.st.Owned, UpgradeReinforcedDoorI)

	b := e.SecurityBreakdown()
	require.Equal(t, SecurityBreakdown{
		Base:     1,
		Upgrades: 1,
		Policy:   1,
		Manager:  1,
		Staff:    1,
		Total:    5,
		Active:   PolicyStrict,
	}, b)
}

func TestSecurityNeverNegative(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.SetSecurityPolicy(PolicyFriendly))
	b := e.SecurityBreakdown()
	require.Equal(t, -1, b.Policy)
	require.Zero(t, b.Total)
}

func TestUnknownPolicyRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	require.ErrorIs(t, e.SetSecurityPolicy("lax"), ErrPreconditionUnmet)
	require.Equal(t, PolicyBalanced, e.State().SecurityPolicy)
}

func TestUpgradeSecurityCharges(t *testing.T) {
	e := newTestEngine(t, nil)
	cash := e.State().CashPence
	_, err := e.UpgradeSecurity()
	require.NoError(t, err)
	require.Equal(t, cash-SecurityUpgradeCost(0), e.State().CashPence)

	e.st.CashPence = 0
	level, err := e.UpgradeSecurity()
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, 1, level)
	require.Equal(t, 1, e.State().BaseSecurityLevel)
}

func TestBouncerCapPerNight(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.HireBouncer()
	require.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = e.OpenNight()
	require.NoError(t, err)
	cost, err := e.HireBouncer()
	require.NoError(t, err)
	require.GreaterOrEqual(t, cost, 33*PencePerPound)
	require.LessOrEqual(t, cost, 66*PencePerPound)
	require.Equal(t, 2, e.SecurityBreakdown().Bouncers)

	_, err = e.HireBouncer()
	require.ErrorIs(t, err, ErrCapacityReached)

	_, err = e.CloseNight(CloseEarly)
	require.NoError(t, err)
	require.Zero(t, e.SecurityBreakdown().Bouncers)
}

func TestSecurityTaskCooldown(t *testing.T) {
	e := newTestEngine(t, nil)
	require.ErrorIs(t, e.RunSecurityTask(TaskVisiblePatrol), ErrInvalidStateTransition)

	_, err := e.OpenNight()
	require.NoError(t, err)
	require.ErrorIs(t, e.RunSecurityTask(TaskRadioLink), ErrLocked)
	require.NoError(t, e.RunSecurityTask(TaskVisiblePatrol))
	require.Equal(t, TaskVisiblePatrol, e.State().ActiveTask)
	require.ErrorIs(t, e.RunSecurityTask(TaskCheckIDs), ErrPreconditionUnmet)
	require.ErrorIs(t, e.RunSecurityTask("moat"), ErrNotFound)
	_, err = e.CloseNight(CloseLastOrders)
	require.NoError(t, err)
	require.Empty(t, e.State().ActiveTask)

	_, err = e.OpenNight()
	require.NoError(t, err)
	require.ErrorIs(t, e.RunSecurityTask(TaskVisiblePatrol), ErrOnCooldown)
	require.NoError(t, e.RunSecurityTask(TaskCheckIDs))
	_, err = e.CloseNight(CloseLastOrders)
	require.NoError(t, err)

	_, err = e.OpenNight()
	require.NoError(t, err)
	require.NoError(t, e.RunSecurityTask(TaskVisiblePatrol))
}

func TestTasksCutIncidentChance(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Chaos = 40
	_, err := e.OpenNight()
	require.NoError(t, err)
	before := IncidentChance(e.incidentInputs())
	require.NoError(t, e.RunSecurityTask(TaskTightDoor))
	require.Less(t, IncidentChance(e.incidentInputs()), before)
}
