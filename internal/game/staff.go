package game

import (
	"fmt"
	"slices"
)

type Roster struct {
	FrontOfHouse []Staff `json:"front_of_house"`
	BackOfHouse  []Staff `json:"back_of_house"`
	Managers     []Staff `json:"managers"`
}

func (e *Engine) Roster() Roster {
	return Roster{
		FrontOfHouse: slices.Clone(e.st.FrontOfHouse),
		BackOfHouse:  slices.Clone(e.st.BackOfHouse),
		Managers:     slices.Clone(e.st.Managers),
	}
}

func (e *Engine) frontOfHouseCap() int {
	n := e.bal.FrontOfHouseCap
	for _, id := range e.st.Owned {
		up, _ := upgradeByID(id)
		n += up.FOHCap
	}
	return n
}

func (e *Engine) managerCount() int {
	n := len(e.st.Managers)
	for _, s := range e.st.FrontOfHouse {
		if s.Type == StaffAssistantManager {
			n++
		}
	}
	return n
}

func (e *Engine) hasManager() bool {
	return e.managerCount() > 0
}

func (e *Engine) checkStaffCap(def staffDef) error {
	st := &e.st
	if def.CountsAsManager && e.managerCount() >= e.bal.ManagerCap {
		return fmt.Errorf("%w: manager cap of %d reached", ErrCapacityReached, e.bal.ManagerCap)
	}
	switch def.Pool {
	case PoolFrontOfHouse:
		if c := e.frontOfHouseCap(); len(st.FrontOfHouse) >= c {
			return fmt.Errorf("%w: front of house holds %d", ErrCapacityReached, c)
		}
	case PoolBackOfHouse:
		if !e.kitchenUnlocked() {
			return fmt.Errorf("%w: back of house staff need a kitchen", ErrLocked)
		}
		if len(st.BackOfHouse) >= e.bal.BackOfHouseCap {
			return fmt.Errorf("%w: back of house holds %d", ErrCapacityReached, e.bal.BackOfHouseCap)
		}
	}
	return nil
}

// Hire takes on one member of staff with stats rolled inside the type's ranges.
// A signing fee of half a week's wage is paid up front.
func (e *Engine) Hire(t StaffType) (Staff, error) {
	return runResult(e, "hire", func() (Staff, error) {
		if err := e.requireClosed("hiring"); err != nil {
			return Staff{}, err
		}
		def, err := staffByType(t)
		if err != nil {
			return Staff{}, err
		}
		if err := e.checkStaffCap(def); err != nil {
			return Staff{}, err
		}
		wage := applyBps(int64(e.dice.Range(def.WageMinPounds, def.WageMaxPounds))*PencePerPound, e.bal.WageMultBps)
		staff := Staff{
			ID:              e.newID(),
			Name:            e.staffName(),
			Type:            t,
			SecurityBonus:   def.SecurityBonus,
			WeeklyWagePence: wage,
			Morale:          70,
			HiredWeek:       e.st.WeekCount,
		}
		if def.ServeMax > 0 {
			staff.ServeCapacity = e.dice.Range(def.ServeMin, def.ServeMax)
		}
		if def.FoodServeMax > 0 {
			staff.FoodServe = e.dice.Range(def.FoodServeMin, def.FoodServeMax)
		}
		if def.TipMaxBps > 0 {
			staff.TipBps = e.dice.Range64(def.TipMinBps, def.TipMaxBps)
		}
		if def.CapMultMaxBps > 0 {
			staff.CapacityMultBps = e.dice.Range64(def.CapMultMinBps, def.CapMultMaxBps)
		}
		if err := e.pay(wage/2, TagStaffing, "signing fee"); err != nil {
			return Staff{}, err
		}
		roster := e.st.roster(def.Pool)
		*roster = append(*roster, staff)
		e.note(ToneGood, "hired %s (%s) at £%.2f a week", staff.Name, def.Label, PenceToPounds(wage))
		return staff, nil
	})
}

func (e *Engine) HireManager() (Staff, error) {
	return e.Hire(StaffManager)
}

// Fire settles the accrued wage and removes the member of staff by id.
func (e *Engine) Fire(staffID string) (Staff, error) {
	return runResult(e, "fire", func() (Staff, error) {
		if err := e.requireClosed("firing"); err != nil {
			return Staff{}, err
		}
		for _, pool := range []StaffPool{PoolFrontOfHouse, PoolBackOfHouse, PoolManagers} {
			roster := e.st.roster(pool)
			idx := slices.IndexFunc(*roster, func(s Staff) bool { return s.ID == staffID })
			if idx < 0 {
				continue
			}
			gone := (*roster)[idx]
			if err := e.pay(gone.AccruedWagePence, TagWages, "final wage"); err != nil {
				return Staff{}, err
			}
			*roster = slices.Delete(*roster, idx, idx+1)
			if gone.Type == StaffManager {
				e.addReputation(-2)
			} else {
				e.addReputation(-1)
			}
			e.note(ToneWarn, "let %s go", gone.Name)
			return gone, nil
		}
		return Staff{}, fmt.Errorf("%w: staff %q", ErrNotFound, staffID)
	})
}

// FireAt resolves a roster position to an id and fires by id.
func (e *Engine) FireAt(pool StaffPool, index int) (Staff, error) {
	roster := *e.st.roster(pool)
	if index < 0 || index >= len(roster) {
		return Staff{}, fmt.Errorf("%w: no staff at %s[%d]", ErrNotFound, pool, index)
	}
	return e.Fire(roster[index].ID)
}

func (e *Engine) staffName() string {
	first := staffFirstNames[e.dice.Range(0, len(staffFirstNames)-1)]
	last := staffLastNames[e.dice.Range(0, len(staffLastNames)-1)]
	return first + " " + last
}

// ServeCapacity is drinks served per round: the landlord plus front of house
// and managers, scaled by the best manager multiplier.
func (e *Engine) ServeCapacity() int {
	n := e.bal.BaseServeCapacity
	for _, s := range e.st.FrontOfHouse {
		n += effectiveServe(s)
	}
	for _, s := range e.st.Managers {
		n += effectiveServe(s)
	}
	for _, id := range e.st.Owned {
		up, _ := upgradeByID(id)
		n += up.ServeCap
	}
	return int(applyBps(int64(n), e.managerMultBps()))
}

// FoodServeCapacity is plates per round; zero without a kitchen.
func (e *Engine) FoodServeCapacity() int {
	if !e.kitchenUnlocked() {
		return 0
	}
	n := 1
	for _, s := range e.st.BackOfHouse {
		n += s.FoodServe
	}
	return n
}

func effectiveServe(s Staff) int {
	if s.Morale < 30 && s.ServeCapacity > 1 {
		return s.ServeCapacity - 1
	}
	return s.ServeCapacity
}

func (e *Engine) managerMultBps() int64 {
	best := BpsScale
	for _, s := range e.st.allStaff() {
		best = max(best, s.CapacityMultBps)
	}
	return best
}

func (e *Engine) tipBps() int64 {
	var bps int64
	for _, s := range e.st.allStaff() {
		bps += s.TipBps
	}
	for _, id := range e.st.Owned {
		up, _ := upgradeByID(id)
		bps += up.TipBps
	}
	return bps
}

func (e *Engine) weeklyWageBill() int64 {
	var total int64
	for _, s := range e.st.allStaff() {
		total += s.WeeklyWagePence
	}
	return total
}

// accrueWages books one day's slice of every weekly wage.
func (e *Engine) accrueWages(day int) {
	for _, s := range e.st.allStaff() {
		s.AccruedWagePence += ShareOfWeek(s.WeeklyWagePence, day)
	}
}

// moraleCheck runs weekly: settled staff perk up, unhappy ones may walk out.
func (e *Engine) moraleCheck(wagesPaid bool) []Staff {
	var quit []Staff
	for _, pool := range []StaffPool{PoolFrontOfHouse, PoolBackOfHouse, PoolManagers} {
		roster := e.st.roster(pool)
		kept := (*roster)[:0]
		for _, s := range *roster {
			if wagesPaid {
				s.Morale = clampInt(s.Morale+3, 0, MaxMorale)
			}
			if s.Morale < 20 && e.dice.Chance(0.5) {
				quit = append(quit, s)
				e.note(ToneBad, "%s walked out", s.Name)
				continue
			}
			kept = append(kept, s)
		}
		*roster = kept
	}
	if len(quit) > 0 {
		e.addReputation(-len(quit))
	}
	return quit
}
