package game

import (
	"slices"
	"time"
)

type SeasonTag string

const (
	SeasonTouristWave SeasonTag = "tourist_wave"
	SeasonExams       SeasonTag = "exam_season"
	SeasonWinterSlump SeasonTag = "winter_slump"
	SeasonDerbyWeek   SeasonTag = "derby_week"
)

// CalendarStart is the date of day 0.
var CalendarStart = time.Date(1989, time.January, 16, 0, 0, 0, 0, time.UTC)

// seasonPeriod spans (month, week of month) pairs inclusively. A period whose
// start comes after its end wraps over the new year.
type seasonPeriod struct {
	Tag                   SeasonTag
	Label                 string
	StartMonth, StartWeek int
	EndMonth, EndWeek     int
	TrafficBps            int64
	SupplierBps           int64
	EventBps              int64
}

var seasonCatalog = []seasonPeriod{
	{SeasonTouristWave, "Tourist Wave", 6, 1, 8, 4, 10_600, 10_200, 10_500},
	{SeasonExams, "Exam Season", 5, 2, 6, 2, 9_700, 10_100, BpsScale},
	{SeasonWinterSlump, "Winter Slump", 11, 3, 1, 2, 9_200, 9_800, 9_500},
	{SeasonDerbyWeek, "Derby Week", 3, 3, 3, 3, 11_000, 10_100, 10_800},
}

func weekOfMonth(d time.Time) int {
	return (d.Day()-1)/7 + 1
}

func (p seasonPeriod) active(d time.Time) bool {
	key := int(d.Month())*10 + weekOfMonth(d)
	start := p.StartMonth*10 + p.StartWeek
	end := p.EndMonth*10 + p.EndWeek
	if start <= end {
		return key >= start && key <= end
	}
	return key >= start || key <= end
}

// SeasonTags lists the seasons running on a date, in catalog order.
func SeasonTags(d time.Time) []SeasonTag {
	var tags []SeasonTag
	for _, p := range seasonCatalog {
		if p.active(d) {
			tags = append(tags, p.Tag)
		}
	}
	return tags
}

// Date is the in-game calendar date of the current day.
func (s *State) Date() time.Time {
	return CalendarStart.AddDate(0, 0, s.DayCounter)
}

type SeasonView struct {
	Date         string      `json:"date"`
	Tags         []SeasonTag `json:"tags"`
	TrafficMult  float64     `json:"traffic_mult"`
	SupplierMult float64     `json:"supplier_mult"`
	EventMult    float64     `json:"event_mult"`
}

func (e *Engine) activeSeasons() []seasonPeriod {
	if e.bal.NoSeasons {
		return nil
	}
	date := e.st.Date()
	var out []seasonPeriod
	for _, p := range seasonCatalog {
		if p.active(date) {
			out = append(out, p)
		}
	}
	return out
}

// seasonBps folds one field of every running season into a single multiplier.
func (e *Engine) seasonBps(field func(seasonPeriod) int64) int64 {
	bps := BpsScale
	for _, p := range e.activeSeasons() {
		bps = applyBps(bps, field(p))
	}
	return bps
}

func (e *Engine) Season() SeasonView {
	v := SeasonView{
		Date:         e.st.Date().Format(time.DateOnly),
		TrafficMult:  bpsFloat(e.seasonBps(func(p seasonPeriod) int64 { return p.TrafficBps })),
		SupplierMult: bpsFloat(e.seasonBps(func(p seasonPeriod) int64 { return p.SupplierBps })),
		EventMult:    bpsFloat(e.seasonBps(func(p seasonPeriod) int64 { return p.EventBps })),
	}
	for _, p := range e.activeSeasons() {
		v.Tags = append(v.Tags, p.Tag)
	}
	return v
}

// seasonsStarted names seasons running today that were not running yesterday.
func (e *Engine) seasonsStarted() []string {
	if e.bal.NoSeasons || e.st.DayCounter == 0 {
		return nil
	}
	yesterday := SeasonTags(e.st.Date().AddDate(0, 0, -1))
	var out []string
	for _, p := range e.activeSeasons() {
		if !slices.Contains(yesterday, p.Tag) {
			out = append(out, p.Label)
		}
	}
	return out
}
