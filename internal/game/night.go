package game

import (
	"maps"
	"math"
)

type CloseReason string

const (
	CloseLastOrders CloseReason = "last_orders"
	CloseEarly      CloseReason = "early"
)

type NightReport struct {
	AlreadyClosed     bool           `json:"already_closed"`
	Night             int            `json:"night"`
	Reason            CloseReason    `json:"reason,omitempty"`
	RoundsPlayed      int            `json:"rounds_played"`
	EarlyClosePenalty int            `json:"early_close_penalty"`
	Counters          NightCounters  `json:"counters"`
	Spoiled           []SpoilageLine `json:"spoiled,omitempty"`
	Installed         []UpgradeID    `json:"installed,omitempty"`
	NewMilestones     []MilestoneID  `json:"new_milestones,omitempty"`
	VIPArcs           []VIPArc       `json:"vip_arcs,omitempty"`
	Week              *WeekReport    `json:"week,omitempty"`
	Period            *PeriodReport  `json:"period,omitempty"`
	CashPence         int64          `json:"cash_pence"`
	Reputation        int            `json:"reputation"`
}

// BarCapacity is how many patrons fit tonight. Recomputed on every call.
func (e *Engine) BarCapacity() int {
	st := &e.st
	n := e.bal.BaseBarCapacity
	if p, err := policyByID(st.SecurityPolicy); err == nil {
		n += p.BarCapMod
	}
	for _, s := range st.allStaff() {
		if s.Type == StaffManager || s.Type == StaffSecurity {
			n++
		}
	}
	for _, id := range st.Owned {
		up, _ := upgradeByID(id)
		n += up.BarCap
	}
	if a := e.runningActivity(); a != nil {
		n += a.CapacityBonus
	}
	return max(n, 0)
}

// OpenNight opens the doors; the doors-open round is round 1.
func (e *Engine) OpenNight() (RoundReport, error) {
	return runResult(e, "open_night", func() (RoundReport, error) {
		if err := e.requireClosed("opening"); err != nil {
			return RoundReport{}, err
		}
		st := &e.st
		st.Night = NightCounters{Sales: map[ItemID]int{}}
		st.BouncersTonight = 0
		st.ActiveTask = ""
		st.HappyHour = false
		st.Phase = PhaseOpen
		st.Round = 1
		st.AbsoluteRound++
		st.NightCount++
		st.Progress.NightsOpened++
		st.Night.BarCapacityAt = e.BarCapacity()

		rep := RoundReport{Round: 1}
		e.admit(e.rollArrivals(1), &rep)
		st.Night.PeakPatrons = st.Patrons
		rep.Patrons = st.Patrons
		if a := e.runningActivity(); a != nil {
			e.note(ToneGood, "doors open for night %d with %s", st.NightCount, a.Label)
		} else {
			e.note(ToneInfo, "doors open for night %d", st.NightCount)
		}
		for _, label := range e.seasonsStarted() {
			e.note(ToneInfo, "%s has started", label)
		}
		e.ensureVIPs()
		return rep, nil
	})
}

// CloseNight ends service and runs the overnight steps. Closing a closed pub
// is a successful no-op.
func (e *Engine) CloseNight(reason CloseReason) (NightReport, error) {
	return runResult(e, "close_night", func() (NightReport, error) {
		st := &e.st
		if st.Phase == PhaseClosed {
			return NightReport{AlreadyClosed: true, CashPence: st.CashPence, Reputation: st.Reputation}, nil
		}
		if reason == "" {
			reason = CloseLastOrders
		}
		out := NightReport{Night: st.NightCount, Reason: reason, RoundsPlayed: st.Round}
		if remaining := e.bal.ClosingRound - st.Round; remaining > 0 {
			out.EarlyClosePenalty = int(math.Ceil(float64(remaining) / 3))
			e.addReputation(-out.EarlyClosePenalty)
			e.note(ToneWarn, "closed %d round(s) early", remaining)
		}

		e.advanceDeliveries(true)
		day := e.finalizeNight()

		e.st.AccruedRentPence += ShareOfWeek(e.bal.WeeklyRentPence, day)
		e.st.AccruedSecurityPence += SecurityUpkeepPerLevelPence * int64(st.BaseSecurityLevel)
		e.accrueWages(day)

		out.Installed = e.tickInstalls()

		e.tickActivities()
		e.tickTaskCooldowns()
		st.Landlord.TrafficBonusBps, st.Landlord.TrafficBonusRounds = 0, 0

		out.Spoiled = e.tickSpoilage()

		if st.Night.Fights > 0 || st.Night.Unserved > 6 {
			e.addChaos(-1)
		} else {
			e.addChaos(-2)
		}
		out.VIPArcs = e.judgeVIPs()
		e.rollDeal()
		for _, id := range st.Owned {
			up, _ := upgradeByID(id)
			if up.RepDrift != 0 && e.dice.Chance(0.3) {
				e.addReputation(up.RepDrift)
			}
		}

		out.NewMilestones = e.evaluateMilestones()

		if st.DayIndex == 0 {
			week, period := e.closeWeek()
			out.Week = &week
			out.Period = period
		}

		out.Counters = st.Night
		out.Counters.Sales = maps.Clone(st.Night.Sales)
		st.Night = NightCounters{Sales: map[ItemID]int{}}
		st.Phase = PhaseClosed
		st.Round = 0
		st.Patrons = 0
		st.HappyHour = false
		st.BouncersTonight = 0
		out.CashPence = st.CashPence
		out.Reputation = st.Reputation
		e.note(ToneInfo, "closed up after night %d", out.Night)
		return out, nil
	})
}

// finalizeNight folds tonight into the weekly window and turns the calendar.
// It returns the day that just ended.
func (e *Engine) finalizeNight() int {
	st := &e.st
	n := st.Night
	w := &st.Week
	w.Nights++
	w.RevenuePence += n.RevenuePence
	w.TipsPence += n.TipsPence
	for id, q := range n.Sales {
		w.Sales[id] += q
	}
	w.Served += n.Served + n.FoodServed
	w.TurnedAway += n.TurnedAway
	w.LostSales += n.LostSales
	w.Incidents += n.Incidents
	w.Events += n.Events

	p := &st.Progress
	p.TotalRevenuePence += n.RevenuePence
	if n.BarCapacityAt > 0 && n.PeakPatrons*10 >= n.BarCapacityAt*9 {
		p.NearCapacityNights++
	}
	if n.Incidents == 0 && n.Unserved <= 2 {
		p.CalmStreak++
		p.PeakCalmStreak = max(p.PeakCalmStreak, p.CalmStreak)
	} else {
		p.CalmStreak = 0
	}

	day := st.DayIndex
	st.DayIndex = (st.DayIndex + 1) % DaysPerWeek
	st.DayCounter++
	return day
}
