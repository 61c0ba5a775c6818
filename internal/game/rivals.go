package game

import (
	"fmt"
	"maps"
)

type RivalStance string

const (
	StancePriceWar      RivalStance = "price_war"
	StanceQualityPush   RivalStance = "quality_push"
	StanceEventSpam     RivalStance = "event_spam"
	StanceLayLow        RivalStance = "lay_low"
	StanceChaosRecovery RivalStance = "chaos_recovery"
)

var stanceOrder = []RivalStance{StancePriceWar, StanceQualityPush, StanceEventSpam, StanceLayLow, StanceChaosRecovery}

// RivalPub traits run 0..2.
type RivalPub struct {
	Name            string `json:"name"`
	PriceAggression int    `json:"price_aggression"`
	QualityFocus    int    `json:"quality_focus"`
	ChaosTolerance  int    `json:"chaos_tolerance"`
	Vibe            string `json:"vibe"`
}

var districtRivals = []RivalPub{
	{Name: "The Copper Fox", PriceAggression: 2, QualityFocus: 1, ChaosTolerance: 1, Vibe: "noisy"},
	{Name: "Pearl Street Tap", PriceAggression: 0, QualityFocus: 2, ChaosTolerance: 2, Vibe: "upscale"},
	{Name: "North Lane Inn", PriceAggression: 1, QualityFocus: 1, ChaosTolerance: 0, Vibe: "mixed"},
}

func DistrictRivals() []RivalPub {
	return append([]RivalPub(nil), districtRivals...)
}

func stanceWeights(r RivalPub) []int64 {
	price := int64(clampInt(r.PriceAggression, 0, 2))
	quality := int64(clampInt(r.QualityFocus, 0, 2))
	chaos := int64(clampInt(r.ChaosTolerance, 0, 2))
	return []int64{
		10 + price*8 + (2-quality)*2,
		10 + quality*8 + (2-price)*2,
		8 + (2-chaos)*6 + (price+quality)*2,
		10 + chaos*4 + (2-price)*3,
		6 + (2-chaos)*9,
	}
}

// PickStance chooses a rival's posture for the week, weighted by its traits.
func PickStance(r RivalPub, d *Dice) RivalStance {
	idx := d.Pick(stanceWeights(r))
	if idx < 0 {
		return StanceLayLow
	}
	return stanceOrder[idx]
}

// MarketPressure is the district's stance count for one week.
type MarketPressure struct {
	Week   int                 `json:"week"`
	Rivals int                 `json:"rivals"`
	Counts map[RivalStance]int `json:"counts,omitempty"`
}

func (m MarketPressure) clone() MarketPressure {
	m.Counts = maps.Clone(m.Counts)
	return m
}

// Dominant is the most common stance; ties go to the earlier stance and an
// empty district lies low.
func (m MarketPressure) Dominant() RivalStance {
	best, bestCount := StanceLayLow, 0
	for _, s := range stanceOrder {
		if n := m.Counts[s]; n > bestCount {
			best, bestCount = s, n
		}
	}
	return best
}

// TrafficMult is clamp(1 - 0.03*price_war - 0.02*event_spam + 0.01*(lay_low + chaos_recovery), 0.90, 1.06).
func (m MarketPressure) TrafficMult() float64 {
	if m.Rivals == 0 {
		return 1
	}
	c := m.Counts
	v := 1 - 0.03*float64(c[StancePriceWar]) - 0.02*float64(c[StanceEventSpam]) +
		0.01*float64(c[StanceLayLow]) + 0.01*float64(c[StanceChaosRecovery])
	return clampFloat(v, 0.90, 1.06)
}

// PriceSensitivity is how much harder punters react to menu prices above
// 1.0 while rivals undercut, in 0..0.2.
func (m MarketPressure) PriceSensitivity() float64 {
	return clampFloat(0.05*float64(m.Counts[StancePriceWar])-0.03*float64(m.Counts[StanceQualityPush]), 0, 0.20)
}

// rollMarket runs the district's week. It draws from the game dice, so a
// restored game sees the same rivals.
func (e *Engine) rollMarket() {
	if e.bal.NoRivals {
		e.st.Market = MarketPressure{Week: e.st.WeekCount}
		return
	}
	m := MarketPressure{Week: e.st.WeekCount, Rivals: len(districtRivals), Counts: map[RivalStance]int{}}
	for _, r := range districtRivals {
		m.Counts[PickStance(r, e.dice)]++
	}
	e.st.Market = m
	tone := ToneInfo
	switch {
	case m.TrafficMult() < 1:
		tone = ToneWarn
	case m.TrafficMult() > 1:
		tone = ToneGood
	}
	e.note(tone, "district: rivals leaned %s this week, traffic x%.2f", m.Dominant(), m.TrafficMult())
}

type DistrictView struct {
	Season   SeasonView     `json:"season"`
	Market   MarketPressure `json:"market"`
	Dominant RivalStance    `json:"dominant"`
	Rivals   []RivalPub     `json:"rivals"`
	VIPs     []VIPRegular   `json:"vips"`
	VIPMult  float64        `json:"vip_traffic_mult"`
}

func (e *Engine) District() DistrictView {
	st := e.st.clone()
	return DistrictView{
		Season:   e.Season(),
		Market:   st.Market,
		Dominant: st.Market.Dominant(),
		Rivals:   DistrictRivals(),
		VIPs:     st.VIPs,
		VIPMult:  bpsFloat(e.vipTrafficBps()),
	}
}

func (s RivalStance) String() string {
	switch s {
	case StancePriceWar:
		return "price war"
	case StanceQualityPush:
		return "quality push"
	case StanceEventSpam:
		return "event spam"
	case StanceLayLow:
		return "lay low"
	case StanceChaosRecovery:
		return "chaos recovery"
	}
	return fmt.Sprintf("stance(%s)", string(s))
}
