package game

import "fmt"

type SecurityBreakdown struct {
	Base     int            `json:"base"`
	Upgrades int            `json:"upgrades"`
	Policy   int            `json:"policy"`
	Bouncers int            `json:"bouncers"`
	Manager  int            `json:"manager"`
	Staff    int            `json:"staff"`
	Total    int            `json:"total"`
	Active   SecurityPolicy `json:"active_policy"`
	Task     SecurityTaskID `json:"task,omitempty"`
}

func (e *Engine) SecurityBreakdown() SecurityBreakdown {
	st := &e.st
	b := SecurityBreakdown{Base: st.BaseSecurityLevel, Active: st.SecurityPolicy, Task: st.ActiveTask}
	for _, id := range st.Owned {
		up, _ := upgradeByID(id)
		b.Upgrades += up.Security
	}
	if p, err := policyByID(st.SecurityPolicy); err == nil {
		b.Policy = p.SecurityMod
	}
	b.Bouncers = 2 * st.BouncersTonight
	if e.hasManager() {
		b.Manager = 1
	}
	for _, s := range st.allStaff() {
		b.Staff += s.SecurityBonus
	}
	b.Total = max(b.Base+b.Upgrades+b.Policy+b.Bouncers+b.Manager+b.Staff, 0)
	return b
}

func (e *Engine) SetSecurityPolicy(p SecurityPolicy) error {
	return e.run("set_policy", func() error {
		if _, err := policyByID(p); err != nil {
			return fmt.Errorf("%w: unknown policy %q", ErrPreconditionUnmet, p)
		}
		if e.st.SecurityPolicy == p {
			return nil
		}
		e.st.SecurityPolicy = p
		e.note(ToneInfo, "door policy set to %s", p)
		return nil
	})
}

// UpgradeSecurity buys one base security level.
func (e *Engine) UpgradeSecurity() (int, error) {
	return runResult(e, "upgrade_security", func() (int, error) {
		cost := SecurityUpgradeCost(e.st.BaseSecurityLevel)
		if err := e.pay(cost, TagSecurity, "security upgrade"); err != nil {
			return e.st.BaseSecurityLevel, err
		}
		e.st.BaseSecurityLevel++
		e.note(ToneGood, "security raised to level %d for £%.2f", e.st.BaseSecurityLevel, PenceToPounds(cost))
		return e.st.BaseSecurityLevel, nil
	})
}

func (e *Engine) bouncerCap() int {
	n := 1
	for _, id := range e.st.Owned {
		up, _ := upgradeByID(id)
		n += up.BouncerCap
	}
	return n
}

// HireBouncer books a door bouncer for tonight only. Each extra bouncer costs
// ten percent more than the last.
func (e *Engine) HireBouncer() (int64, error) {
	return runResult(e, "hire_bouncer", func() (int64, error) {
		if err := e.requireOpen("hiring a bouncer"); err != nil {
			return 0, err
		}
		if c := e.bouncerCap(); e.st.BouncersTonight >= c {
			return 0, fmt.Errorf("%w: only %d bouncer(s) allowed tonight", ErrCapacityReached, c)
		}
		base := int64(33+e.dice.Range(0, 33)) * PencePerPound
		cost := applyBps(base, BpsScale+int64(e.st.BouncersTonight)*1_000)
		if err := e.pay(cost, TagSecurity, "bouncer"); err != nil {
			return 0, err
		}
		e.st.BouncersTonight++
		e.note(ToneInfo, "a bouncer is on the door for £%.2f", PenceToPounds(cost))
		return cost, nil
	})
}

func (e *Engine) taskTier() int {
	return min(e.PubLevel(), 3)
}

// RunSecurityTask activates one task for the rest of the night.
func (e *Engine) RunSecurityTask(id SecurityTaskID) error {
	return e.run("security_task", func() error {
		if err := e.requireOpen("a security task"); err != nil {
			return err
		}
		task, err := taskByID(id)
		if err != nil {
			return err
		}
		st := &e.st
		if st.ActiveTask != "" {
			return fmt.Errorf("%w: %s is already running tonight", ErrPreconditionUnmet, st.ActiveTask)
		}
		if task.Tier > e.taskTier() {
			return fmt.Errorf("%w: %s needs tier %d", ErrLocked, task.Label, task.Tier)
		}
		if n := st.TaskCooldowns[id]; n > 0 {
			return fmt.Errorf("%w: %s ready in %d night(s)", ErrOnCooldown, task.Label, n)
		}
		st.ActiveTask = id
		st.TaskCooldowns[id] = task.CooldownNights
		e.note(ToneInfo, "security task: %s", task.Label)
		return nil
	})
}

func (e *Engine) tickTaskCooldowns() {
	for id, n := range e.st.TaskCooldowns {
		if n <= 1 {
			delete(e.st.TaskCooldowns, id)
			continue
		}
		e.st.TaskCooldowns[id] = n - 1
	}
	e.st.ActiveTask = ""
}

func (e *Engine) incidentInputs() IncidentInputs {
	st := &e.st
	in := IncidentInputs{
		Chaos:       st.Chaos,
		Security:    e.SecurityBreakdown().Total,
		Weekend:     st.weekend(),
		PolicyMult:  1,
		TaskMult:    1,
		UpgradeMult: 1,
	}
	if p, err := policyByID(st.SecurityPolicy); err == nil {
		in.PolicyMult = bpsFloat(p.IncidentMultBps)
	}
	if t, err := taskByID(st.ActiveTask); err == nil {
		in.TaskMult = bpsFloat(t.IncidentMultBps)
	}
	for _, id := range st.Owned {
		up, _ := upgradeByID(id)
		if up.IncidentMultBps > 0 {
			in.UpgradeMult *= bpsFloat(up.IncidentMultBps)
		}
	}
	if a := e.runningActivity(); a != nil {
		in.ActivityRisk = bpsFloat(a.RiskBps)
	}
	if st.HappyHour {
		in.HappyHourRisk = 0.10
	}
	return in
}

func bpsFloat(bps int64) float64 {
	return float64(bps) / float64(BpsScale)
}
