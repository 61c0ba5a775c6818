package game

import (
	"fmt"
	"math"
)

type IncidentKind string

const (
	IncidentFight    IncidentKind = "fight"
	IncidentTheft    IncidentKind = "theft"
	IncidentBreakage IncidentKind = "breakage"
	IncidentRowdy    IncidentKind = "rowdy"
)

var incidentWeights = []struct {
	kind   IncidentKind
	weight int64
}{
	{IncidentFight, 25},
	{IncidentTheft, 25},
	{IncidentBreakage, 30},
	{IncidentRowdy, 20},
}

const (
	EventBusker        = "busker"
	EventLocalReview   = "local_review"
	EventGenerousRound = "generous_round"
)

type RoundReport struct {
	Round          int          `json:"round"`
	Arrivals       int          `json:"arrivals"`
	Admitted       int          `json:"admitted"`
	TurnedAway     int          `json:"turned_away"`
	Served         int          `json:"served"`
	FoodServed     int          `json:"food_served"`
	Unserved       int          `json:"unserved"`
	LostSales      int          `json:"lost_sales"`
	Departed       int          `json:"departed"`
	Patrons        int          `json:"patrons"`
	RevenuePence   int64        `json:"revenue_pence"`
	TipsPence      int64        `json:"tips_pence"`
	IncidentChance float64      `json:"incident_chance"`
	Incident       IncidentKind `json:"incident,omitempty"`
	Event          string       `json:"event,omitempty"`
}

// PlayRound advances the night by one round and resolves it.
func (e *Engine) PlayRound() (RoundReport, error) {
	return runResult(e, "play_round", func() (RoundReport, error) {
		if err := e.requireOpen("playing a round"); err != nil {
			return RoundReport{}, err
		}
		if e.st.Round >= e.bal.ClosingRound {
			return RoundReport{}, fmt.Errorf("%w: last orders were called at round %d", ErrInvalidStateTransition, e.bal.ClosingRound)
		}
		e.st.Round++
		e.st.AbsoluteRound++
		return e.resolveRound(), nil
	})
}

func (e *Engine) resolveRound() RoundReport {
	st := &e.st
	rep := RoundReport{Round: st.Round}
	e.advanceDeliveries(false)
	e.admit(e.rollArrivals(1), &rep)
	e.sell(&rep)
	e.depart(&rep)
	e.rollIncident(&rep)

	if cost := e.bal.OperatingCostPerRoundPence; cost > 0 {
		if err := e.pay(cost, TagOperating, "running costs"); err != nil {
			st.AccruedRentPence += cost
		}
	}

	if st.Landlord.TrafficBonusRounds > 0 {
		st.Landlord.TrafficBonusRounds--
		if st.Landlord.TrafficBonusRounds == 0 {
			st.Landlord.TrafficBonusBps = 0
		}
	}

	switch {
	case rep.Unserved > 4:
		e.addReputation(-1)
	case rep.Unserved == 0 && rep.Incident == "" && rep.Served > 0 && e.dice.Chance(0.08):
		e.addReputation(1)
	}
	for _, s := range st.FrontOfHouse {
		def, _ := staffByType(s.Type)
		if def.RepDriftChance > 0 && e.dice.Chance(def.RepDriftChance) {
			e.addReputation(1)
		}
	}

	if rep.Unserved > 0 {
		e.addChaos(0.2 * float64(rep.Unserved))
	}
	if rep.Incident == "" && rep.Unserved == 0 {
		e.addChaos(-0.5)
	}

	st.Night.RoundsPlayed++
	st.Night.PeakPatrons = max(st.Night.PeakPatrons, st.Patrons)
	rep.Patrons = st.Patrons
	return rep
}

// trafficMultiplier folds every demand modifier into one factor.
func (e *Engine) trafficMultiplier() float64 {
	st := &e.st
	m := 1.0
	if p, err := policyByID(st.SecurityPolicy); err == nil {
		m *= bpsFloat(p.TrafficMultBps)
	}
	if t, err := taskByID(st.ActiveTask); err == nil {
		m *= bpsFloat(t.TrafficMultBps)
	}
	var upgrades int64
	for _, id := range st.Owned {
		up, _ := upgradeByID(id)
		upgrades += up.TrafficBps
	}
	m *= 1 + bpsFloat(upgrades)
	if a := e.runningActivity(); a != nil {
		m *= 1 + bpsFloat(a.TrafficBps)
	}
	if st.Landlord.TrafficBonusRounds > 0 {
		m *= 1 + bpsFloat(st.Landlord.TrafficBonusBps)
	}
	m *= 1 + float64(st.Reputation)/200
	m *= bpsFloat(e.seasonBps(func(p seasonPeriod) int64 { return p.TrafficBps }))
	m *= st.Market.TrafficMult()
	m *= bpsFloat(e.vipTrafficBps())
	if st.weekend() {
		m *= 1.2
	}
	if st.HappyHour {
		m *= 1.25
	}
	price := bpsFloat(st.PriceMultBps)
	m *= clampFloat(1.6-0.6*price, 0.25, 1.4)
	if price > 1 {
		m *= 1 - st.Market.PriceSensitivity()*(price-1)
	}
	return math.Max(m, 0.05)
}

func (e *Engine) rollArrivals(scale float64) int {
	mean := float64(e.bal.BaseTrafficPerRound) * e.trafficMultiplier() * scale
	return max(int(math.Round(mean*(0.6+0.8*e.dice.Float64()))), 0)
}

// admit lets arrivals in up to bar capacity; the rest are turned away.
func (e *Engine) admit(arrivals int, rep *RoundReport) {
	st := &e.st
	room := max(e.BarCapacity()-st.Patrons, 0)
	admitted := min(arrivals, room)
	st.Patrons += admitted
	st.Night.Arrivals += arrivals
	st.Night.TurnedAway += arrivals - admitted
	rep.Arrivals += arrivals
	rep.Admitted += admitted
	rep.TurnedAway += arrivals - admitted
}

func (e *Engine) salePriceBps() int64 {
	bps := e.st.PriceMultBps
	if e.st.HappyHour {
		bps = applyBps(bps, 8_000)
	}
	if a := e.runningActivity(); a != nil && a.PriceBps != 0 {
		bps = applyBps(bps, BpsScale+a.PriceBps)
	}
	return bps
}

// pickItem chooses what a patron asks for. If it is out of stock the sale is
// lost, and half the time the patron settles for the best-stocked item.
func (e *Engine) pickItem(pool Pool, rep *RoundReport) (itemDef, bool) {
	var candidates []itemDef
	var weights []int64
	for _, it := range itemCatalog {
		if it.Pool == pool {
			candidates = append(candidates, it)
			weights = append(weights, it.DemandWeightBps)
		}
	}
	idx := e.dice.Pick(weights)
	if idx < 0 {
		return itemDef{}, false
	}
	want := candidates[idx]
	r := e.st.rack(pool)
	if r.OnHand(want.ID) > 0 {
		return want, true
	}
	rep.LostSales++
	e.st.Night.LostSales++
	best, bestQty := itemDef{}, 0
	for _, it := range candidates {
		if n := r.OnHand(it.ID); n > bestQty {
			best, bestQty = it, n
		}
	}
	if bestQty == 0 || !e.dice.Chance(0.5) {
		return itemDef{}, false
	}
	return best, true
}

func (e *Engine) sell(rep *RoundReport) {
	st := &e.st
	if st.Patrons == 0 {
		return
	}
	priceBps := e.salePriceBps()
	var revenue int64

	drinkers := int(math.Ceil(float64(st.Patrons) * 0.6))
	served := min(drinkers, e.ServeCapacity())
	rep.Unserved = drinkers - served
	st.Night.Unserved += rep.Unserved
	for range served {
		it, ok := e.pickItem(PoolBeverage, rep)
		if !ok || e.consume(it.ID, 1) != nil {
			continue
		}
		revenue += applyBps(it.SellPricePence, priceBps)
		st.Night.Sales[it.ID]++
		rep.Served++
	}

	if e.kitchenUnlocked() {
		diners := int(float64(st.Patrons) * 0.25)
		plates := min(diners, e.FoodServeCapacity())
		for range plates {
			it, ok := e.pickItem(PoolFood, rep)
			if !ok || e.consume(it.ID, 1) != nil {
				continue
			}
			revenue += applyBps(it.SellPricePence, priceBps)
			st.Night.Sales[it.ID]++
			rep.FoodServed++
		}
	}

	tips := applyBps(revenue, e.tipBps())
	e.earn(revenue + tips)
	st.Night.Served += rep.Served
	st.Night.FoodServed += rep.FoodServed
	st.Night.RevenuePence += revenue
	st.Night.TipsPence += tips
	st.TipsOwedPence += tips
	rep.RevenuePence = revenue
	rep.TipsPence = tips
}

// depart sends a share of patrons home; waiting and late rounds push more out.
func (e *Engine) depart(rep *RoundReport) {
	st := &e.st
	p := 0.22
	if rep.Unserved > 0 {
		p += 0.10
	}
	if st.Round >= e.bal.ClosingRound-2 {
		p += 0.10
	}
	left := 0
	for range st.Patrons {
		if e.dice.Chance(p) {
			left++
		}
	}
	st.Patrons -= left
	st.Night.Departed += left
	rep.Departed = left
}

func (e *Engine) rollIncident(rep *RoundReport) {
	st := &e.st
	p := IncidentChance(e.incidentInputs())
	rep.IncidentChance = p
	if e.dice.Chance(p) {
		weights := make([]int64, len(incidentWeights))
		for i, w := range incidentWeights {
			weights[i] = w.weight
		}
		kind := incidentWeights[e.dice.Pick(weights)].kind
		rep.Incident = kind
		st.Night.Incidents++
		e.applyIncident(kind)
		return
	}

	chance := 0.05
	if a := e.runningActivity(); a != nil {
		chance += bpsFloat(a.EventBps)
	}
	chance *= bpsFloat(e.seasonBps(func(p seasonPeriod) int64 { return p.EventBps }))
	if !e.dice.Chance(chance) {
		return
	}
	st.Night.Events++
	switch e.dice.Range(0, 2) {
	case 0:
		rep.Event = EventBusker
		st.Landlord.TrafficBonusBps = min(st.Landlord.TrafficBonusBps+1_000, MaxTrafficBonusBps)
		st.Landlord.TrafficBonusRounds = max(st.Landlord.TrafficBonusRounds, 2)
		e.note(ToneGood, "a busker outside is drawing a crowd")
	case 1:
		rep.Event = EventLocalReview
		e.addReputation(2)
		e.note(ToneGood, "a glowing local review went up")
	default:
		rep.Event = EventGenerousRound
		bonus := int64(e.dice.Range(5, 20)) * PencePerPound
		e.earn(bonus)
		st.Night.RevenuePence += bonus
		rep.RevenuePence += bonus
		e.note(ToneGood, "someone bought the bar a round (£%.0f)", PenceToPounds(bonus))
	}
}

func (e *Engine) applyIncident(kind IncidentKind) {
	st := &e.st
	switch kind {
	case IncidentFight:
		st.Night.Fights++
		left := min(st.Patrons, e.dice.Range(2, 4))
		st.Patrons -= left
		st.Night.Departed += left
		e.addReputation(-2)
		e.addChaos(6)
		e.addMorale(-2)
		e.note(ToneBad, "a fight broke out; %d patrons left", left)
	case IncidentTheft:
		loss := e.takeUpTo(int64(e.dice.Range(10, 40))*PencePerPound, TagIncidents)
		e.addChaos(3)
		e.note(ToneBad, "the till was lifted for £%.2f", PenceToPounds(loss))
	case IncidentBreakage:
		cost := e.takeUpTo(int64(e.dice.Range(5, 25))*PencePerPound, TagIncidents)
		e.addChaos(2)
		e.note(ToneBad, "glasses smashed, £%.2f of damage", PenceToPounds(cost))
	case IncidentRowdy:
		e.addReputation(-1)
		e.addChaos(4)
		e.note(ToneWarn, "a rowdy table is putting people off")
	}
}
