package game

import (
	"fmt"
	"slices"
)

type Availability struct {
	Available bool     `json:"available"`
	Reasons   []string `json:"reasons,omitempty"`
}

// upgradeLocks lists why an upgrade's predicate fails, ignoring cash.
func (e *Engine) upgradeLocks(up upgradeDef) []string {
	var reasons []string
	if up.RequiresLevel > 0 && e.PubLevel() < up.RequiresLevel {
		reasons = append(reasons, fmt.Sprintf("needs pub level %d", up.RequiresLevel))
	}
	if up.Requires != "" && !e.st.owns(up.Requires) {
		reasons = append(reasons, fmt.Sprintf("needs %s installed", up.Requires))
	}
	if up.Milestone != "" && !e.milestoneAchieved(up.Milestone) {
		reasons = append(reasons, fmt.Sprintf("needs milestone %s", up.Milestone))
	}
	return reasons
}

func (e *Engine) UpgradeAvailability(id UpgradeID) (Availability, error) {
	up, err := upgradeByID(id)
	if err != nil {
		return Availability{}, err
	}
	var reasons []string
	switch {
	case e.st.owns(id):
		reasons = append(reasons, "already owned")
	case e.st.installing(id):
		reasons = append(reasons, "already installing")
	}
	reasons = append(reasons, e.upgradeLocks(up)...)
	if e.st.CashPence < up.CostPence {
		reasons = append(reasons, fmt.Sprintf("costs £%.2f", PenceToPounds(up.CostPence)))
	}
	return Availability{Available: len(reasons) == 0, Reasons: reasons}, nil
}

// BuyUpgrade pays now and queues the install; it is owned once the ticket
// counts down at night close.
func (e *Engine) BuyUpgrade(id UpgradeID) (InstallTicket, error) {
	return runResult(e, "buy_upgrade", func() (InstallTicket, error) {
		if err := e.requireClosed("buying an upgrade"); err != nil {
			return InstallTicket{}, err
		}
		up, err := upgradeByID(id)
		if err != nil {
			return InstallTicket{}, err
		}
		if e.st.owns(id) || e.st.installing(id) {
			return InstallTicket{}, fmt.Errorf("%w: %s already owned or installing", ErrPreconditionUnmet, up.Label)
		}
		if locks := e.upgradeLocks(up); len(locks) > 0 {
			return InstallTicket{}, fmt.Errorf("%w: %s %s", ErrLocked, up.Label, locks[0])
		}
		if err := e.pay(up.CostPence, TagUpgrades, up.Label); err != nil {
			return InstallTicket{}, err
		}
		ticket := InstallTicket{ID: e.newID(), Upgrade: id, NightsRemaining: up.InstallNights, TotalNights: up.InstallNights}
		e.st.Installs = append(e.st.Installs, ticket)
		e.addReputation(2)
		e.note(ToneGood, "%s ordered; ready in %d night(s)", up.Label, up.InstallNights)
		return ticket, nil
	})
}

// tickInstalls counts every ticket down a night and returns what finished.
func (e *Engine) tickInstalls() []UpgradeID {
	var done []UpgradeID
	kept := e.st.Installs[:0]
	for _, t := range e.st.Installs {
		t.NightsRemaining--
		if t.NightsRemaining > 0 {
			kept = append(kept, t)
			continue
		}
		e.st.Owned = append(e.st.Owned, t.Upgrade)
		done = append(done, t.Upgrade)
		up, _ := upgradeByID(t.Upgrade)
		e.note(ToneGood, "%s is installed", up.Label)
	}
	e.st.Installs = kept
	return done
}

func (e *Engine) activityLocks(a activityDef) []string {
	var reasons []string
	if a.RequiresLevel > 0 && e.PubLevel() < a.RequiresLevel {
		reasons = append(reasons, fmt.Sprintf("needs pub level %d", a.RequiresLevel))
	}
	if a.RequiresUpgrade != "" && !e.st.owns(a.RequiresUpgrade) {
		reasons = append(reasons, fmt.Sprintf("needs %s installed", a.RequiresUpgrade))
	}
	if a.Milestone != "" && !e.milestoneAchieved(a.Milestone) {
		reasons = append(reasons, fmt.Sprintf("needs milestone %s", a.Milestone))
	}
	return reasons
}

func (e *Engine) ActivityAvailability(id ActivityID) (Availability, error) {
	a, err := activityByID(id)
	if err != nil {
		return Availability{}, err
	}
	var reasons []string
	if e.st.Scheduled != nil {
		reasons = append(reasons, fmt.Sprintf("%s is already scheduled", e.st.Scheduled.Activity))
	}
	reasons = append(reasons, e.activityLocks(a)...)
	if e.st.CashPence < a.CostPence {
		reasons = append(reasons, fmt.Sprintf("costs £%.2f", PenceToPounds(a.CostPence)))
	}
	return Availability{Available: len(reasons) == 0, Reasons: reasons}, nil
}

// ScheduleActivity books an activity to start 1-3 nights from now.
func (e *Engine) ScheduleActivity(id ActivityID) (ScheduledActivity, error) {
	return runResult(e, "schedule_activity", func() (ScheduledActivity, error) {
		if err := e.requireClosed("scheduling an activity"); err != nil {
			return ScheduledActivity{}, err
		}
		a, err := activityByID(id)
		if err != nil {
			return ScheduledActivity{}, err
		}
		if e.st.Scheduled != nil {
			return ScheduledActivity{}, fmt.Errorf("%w: %s is already scheduled", ErrPreconditionUnmet, e.st.Scheduled.Activity)
		}
		if locks := e.activityLocks(a); len(locks) > 0 {
			return ScheduledActivity{}, fmt.Errorf("%w: %s %s", ErrLocked, a.Label, locks[0])
		}
		if err := e.pay(a.CostPence, TagActivities, a.Label); err != nil {
			return ScheduledActivity{}, err
		}
		sched := ScheduledActivity{Activity: id, StartsIn: e.dice.Range(1, 3)}
		e.st.Scheduled = &sched
		e.note(ToneInfo, "%s booked, starting in %d night(s)", a.Label, sched.StartsIn)
		return sched, nil
	})
}

func (e *Engine) runningActivity() *activityDef {
	if e.st.Running == nil {
		return nil
	}
	a, err := activityByID(e.st.Running.Activity)
	if err != nil {
		return nil
	}
	return &a
}

// tickActivities ends the running activity when its nights are spent and
// starts the scheduled one once its delay is up and the stage is free.
func (e *Engine) tickActivities() {
	st := &e.st
	if st.Running != nil {
		st.Running.NightsRemaining--
		if st.Running.NightsRemaining <= 0 {
			a, _ := activityByID(st.Running.Activity)
			e.note(ToneInfo, "%s has wrapped up", a.Label)
			st.Running = nil
		}
	}
	if st.Scheduled == nil {
		return
	}
	if st.Scheduled.StartsIn > 0 {
		st.Scheduled.StartsIn--
	}
	if st.Scheduled.StartsIn > 0 || st.Running != nil {
		return
	}
	a, _ := activityByID(st.Scheduled.Activity)
	st.Running = &RunningActivity{Activity: a.ID, NightsRemaining: a.DurationNights}
	st.Scheduled = nil
	e.addReputation(a.RepInstant)
	e.note(ToneGood, "%s starts tomorrow night", a.Label)
}

// OwnedUpgrades lists installed upgrades in install order.
func (e *Engine) OwnedUpgrades() []UpgradeID {
	return slices.Clone(e.st.Owned)
}
