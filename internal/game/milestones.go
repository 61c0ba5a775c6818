package game

type MilestoneID string

const (
	MilestoneOpenForBusiness MilestoneID = "open_for_business"
	MilestoneFirstPayroll    MilestoneID = "first_payroll"
	MilestoneCalmHouse       MilestoneID = "calm_house"
	MilestoneBookedOut       MilestoneID = "booked_out"
	MilestoneLocalFavourite  MilestoneID = "local_favourite"
	MilestoneEstablished     MilestoneID = "established"
	MilestoneDebtDiet        MilestoneID = "debt_diet"
	MilestoneLevel2          MilestoneID = "level_2"
	MilestoneLevel3          MilestoneID = "level_3"
	MilestoneLevel4          MilestoneID = "level_4"
	MilestoneLevel5          MilestoneID = "level_5"
)

type milestoneDef struct {
	ID          MilestoneID
	Label       string
	Description string
	Level       int
	check       func(p Progress) bool
}

// Every predicate reads cumulative counters or peaks, so once true it stays true.
var milestoneCatalog = []milestoneDef{
	{MilestoneOpenForBusiness, "Open for Business", "open the doors on 3 nights", 0,
		func(p Progress) bool { return p.NightsOpened >= 3 }},
	{MilestoneFirstPayroll, "First Payroll", "pay a week of wages in full", 0,
		func(p Progress) bool { return p.WagesPaidWeeks >= 1 }},
	{MilestoneCalmHouse, "Calm House", "run 3 calm nights in a row", 0,
		func(p Progress) bool { return p.PeakCalmStreak >= 3 }},
	{MilestoneBookedOut, "Booked Out", "fill the bar to 90% on 3 nights", 0,
		func(p Progress) bool { return p.NearCapacityNights >= 3 }},
	{MilestoneLocalFavourite, "Local Favourite", "reach reputation 40", 0,
		func(p Progress) bool { return p.PeakReputation >= 40 }},
	{MilestoneEstablished, "Established", "settle 4 weeks", 0,
		func(p Progress) bool { return p.WeeksSettled >= 4 }},
	{MilestoneDebtDiet, "Debt Diet", "end 3 weeks running with no debt", 0,
		func(p Progress) bool { return p.PeakDebtFreeStreak >= 3 }},
	{MilestoneLevel2, "Pub Level 2", "£1,500 revenue over 5 nights", 2,
		func(p Progress) bool { return p.TotalRevenuePence >= 1_500*PencePerPound && p.NightsOpened >= 5 }},
	{MilestoneLevel3, "Pub Level 3", "£5,000 revenue, 3 weeks, reputation 25", 3,
		func(p Progress) bool {
			return p.TotalRevenuePence >= 5_000*PencePerPound && p.WeeksSettled >= 3 && p.PeakReputation >= 25
		}},
	{MilestoneLevel4, "Pub Level 4", "£12,000 revenue, 6 weeks, reputation 45", 4,
		func(p Progress) bool {
			return p.TotalRevenuePence >= 12_000*PencePerPound && p.WeeksSettled >= 6 && p.PeakReputation >= 45
		}},
	{MilestoneLevel5, "Pub Level 5", "£25,000 revenue, 10 weeks, reputation 65", 5,
		func(p Progress) bool {
			return p.TotalRevenuePence >= 25_000*PencePerPound && p.WeeksSettled >= 10 && p.PeakReputation >= 65
		}},
}

func milestoneByID(id MilestoneID) (milestoneDef, bool) {
	for _, m := range milestoneCatalog {
		if m.ID == id {
			return m, true
		}
	}
	return milestoneDef{}, false
}

type MilestoneView struct {
	ID          MilestoneID `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Achieved    bool        `json:"achieved"`
}

// Milestones evaluates every predicate against the stored set.
func (e *Engine) Milestones() []MilestoneView {
	out := make([]MilestoneView, 0, len(milestoneCatalog))
	for _, m := range milestoneCatalog {
		out = append(out, MilestoneView{
			ID:          m.ID,
			Label:       m.Label,
			Description: m.Description,
			Achieved:    e.milestoneAchieved(m.ID),
		})
	}
	return out
}

func (e *Engine) milestoneAchieved(id MilestoneID) bool {
	if e.st.achieved(id) {
		return true
	}
	m, ok := milestoneByID(id)
	return ok && m.check(e.st.Progress)
}

// evaluateMilestones stores newly met milestones. Nothing is ever removed.
func (e *Engine) evaluateMilestones() []MilestoneID {
	var fresh []MilestoneID
	for _, m := range milestoneCatalog {
		if e.st.achieved(m.ID) || !m.check(e.st.Progress) {
			continue
		}
		e.st.Achieved = append(e.st.Achieved, m.ID)
		fresh = append(fresh, m.ID)
		if m.Level > 0 {
			e.note(ToneGood, "the pub reached level %d", e.PubLevel())
		} else {
			e.note(ToneGood, "milestone: %s", m.Label)
		}
	}
	return fresh
}

// PubLevel counts the level milestones met in order; a gap stops the count.
// A level whose rule is met counts even before it is stored.
func (e *Engine) PubLevel() int {
	level := 1
	for _, id := range []MilestoneID{MilestoneLevel2, MilestoneLevel3, MilestoneLevel4, MilestoneLevel5} {
		if !e.milestoneAchieved(id) {
			break
		}
		level++
	}
	return level
}
