package game

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// RackCapacity is recomputed from owned upgrades on every call.
func (e *Engine) RackCapacity(pool Pool) int {
	if pool == PoolFood {
		n := e.bal.BaseFoodRackCapacity
		for _, id := range e.st.Owned {
			up, _ := upgradeByID(id)
			n += up.FoodRackCap
		}
		return n
	}
	n := e.bal.BaseRackCapacity
	for _, id := range e.st.Owned {
		up, _ := upgradeByID(id)
		n += up.RackCap
	}
	return n
}

func (e *Engine) kitchenUnlocked() bool {
	for _, id := range e.st.Owned {
		if up, _ := upgradeByID(id); up.UnlocksKitchen {
			return true
		}
	}
	return false
}

func (e *Engine) pendingDeliveries(pool Pool) int {
	n := 0
	for _, d := range e.st.Deliveries {
		if it, _ := itemByID(d.Item); it.Pool == pool {
			n += d.Qty
		}
	}
	return n
}

func (e *Engine) emergencyMarkupBps() int64 {
	if e.st.Phase != PhaseOpen {
		return BpsScale
	}
	if e.st.weekend() {
		return e.bal.WeekendEmergencyMarkupBps
	}
	return e.bal.EmergencyMarkupBps
}

// PeekCost prices an order without placing it:
// qty * unitCost * (1 - bulkDiscount) * dealMultiplier, times the emergency
// markup while the night is open.
func (e *Engine) PeekCost(item ItemID, qty int) (int64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	it, err := itemByID(item)
	if err != nil {
		return 0, err
	}
	gross := int64(qty) * it.UnitCostPence
	disc := BulkDiscountBps(qty, e.bal.BulkDiscountFloor, e.bal.MaxBulkDiscountBps)
	cost := applyBps(gross, BpsScale-disc)
	cost = applyBps(cost, e.st.Deal.multFor(item))
	cost = applyBps(cost, e.seasonBps(func(p seasonPeriod) int64 { return p.SupplierBps }))
	cost = applyBps(cost, e.emergencyMarkupBps())
	return cost, nil
}

type PurchaseResult struct {
	Item            ItemID `json:"item"`
	Qty             int    `json:"qty"`
	CostPence       int64  `json:"cost_pence"`
	PaidFromCash    bool   `json:"paid_from_cash"`
	Emergency       bool   `json:"emergency"`
	ArrivesInRounds int    `json:"arrives_in_rounds,omitempty"`
	CashAfterPence  int64  `json:"cash_after_pence"`
	TradeAfterPence int64  `json:"trade_after_pence"`
}

// Buy orders stock. Between nights it lands at once; while open it is an
// emergency restock that needs a manager and arrives a few rounds later.
func (e *Engine) Buy(item ItemID, qty int) (PurchaseResult, error) {
	return runResult(e, "buy", func() (PurchaseResult, error) {
		if qty <= 0 {
			return PurchaseResult{}, ErrInvalidQuantity
		}
		it, err := itemByID(item)
		if err != nil {
			return PurchaseResult{}, err
		}
		st := &e.st
		if it.Pool == PoolFood && !e.kitchenUnlocked() {
			return PurchaseResult{}, fmt.Errorf("%w: food needs a kitchen", ErrLocked)
		}
		emergency := st.Phase == PhaseOpen
		if emergency && !e.hasManager() {
			return PurchaseResult{}, fmt.Errorf("%w: emergency restock needs a manager on staff", ErrLocked)
		}
		capacity := e.RackCapacity(it.Pool)
		stocked := st.rack(it.Pool).Total() + e.pendingDeliveries(it.Pool)
		if stocked+qty > capacity {
			return PurchaseResult{}, fmt.Errorf("%w: %s rack holds %d, has %d", ErrCapacityReached, it.Pool, capacity, stocked)
		}
		cost, err := e.PeekCost(item, qty)
		if err != nil {
			return PurchaseResult{}, err
		}

		res := PurchaseResult{Item: item, Qty: qty, CostPence: cost, Emergency: emergency}
		tc := st.trade(it.Pool)
		switch {
		case cost <= st.CashPence:
			if err := e.pay(cost, TagStock, "stock"); err != nil {
				return PurchaseResult{}, err
			}
			res.PaidFromCash = true
		case tc.BalancePence+cost <= TradeCreditCap(e.PubLevel()):
			tc.BalancePence += cost
			st.Week.addCost(TagStock, cost)
			e.note(ToneWarn, "put £%.2f of %s on the supplier tab", PenceToPounds(cost), it.Name)
		default:
			return PurchaseResult{}, fmt.Errorf("%w: %d x %s costs £%.2f and the supplier tab is full", ErrInsufficientFunds, qty, it.Name, PenceToPounds(cost))
		}

		unitCost := cost / int64(qty)
		if emergency {
			st.Deliveries = append(st.Deliveries, Delivery{Item: item, Qty: qty, RoundsRemaining: e.bal.EmergencyDeliveryRounds, UnitCostPence: unitCost})
			res.ArrivesInRounds = e.bal.EmergencyDeliveryRounds
			e.note(ToneInfo, "emergency order of %d %s arrives in %d rounds", qty, it.Name, e.bal.EmergencyDeliveryRounds)
		} else {
			e.stock(item, qty, unitCost)
			e.note(ToneInfo, "bought %d %s for £%.2f", qty, it.Name, PenceToPounds(cost))
		}
		res.CashAfterPence = st.CashPence
		res.TradeAfterPence = tc.BalancePence
		return res, nil
	})
}

func (e *Engine) stock(item ItemID, qty int, unitCost int64) {
	it, _ := itemByID(item)
	r := e.st.rack(it.Pool)
	r.Batches = append(r.Batches, Batch{Item: item, Qty: qty, DaysRemaining: it.ShelfLifeDays, UnitCostPence: unitCost})
}

// consume takes qty of item, shortest remaining life first.
func (e *Engine) consume(item ItemID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	it, err := itemByID(item)
	if err != nil {
		return err
	}
	r := e.st.rack(it.Pool)
	if r.OnHand(item) < qty {
		return fmt.Errorf("%w: only %d %s left", ErrPreconditionUnmet, r.OnHand(item), it.Name)
	}
	order := make([]int, 0, len(r.Batches))
	for i, b := range r.Batches {
		if b.Item == item {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(r.Batches[a].DaysRemaining, r.Batches[b].DaysRemaining)
	})
	left := qty
	for _, i := range order {
		take := min(left, r.Batches[i].Qty)
		r.Batches[i].Qty -= take
		left -= take
		if left == 0 {
			break
		}
	}
	r.Batches = slices.DeleteFunc(r.Batches, func(b Batch) bool { return b.Qty <= 0 })
	return nil
}

// advanceDeliveries lands emergency orders whose countdown ran out.
func (e *Engine) advanceDeliveries(flush bool) {
	kept := e.st.Deliveries[:0]
	for _, d := range e.st.Deliveries {
		d.RoundsRemaining--
		if flush || d.RoundsRemaining <= 0 {
			e.stock(d.Item, d.Qty, d.UnitCostPence)
			it, _ := itemByID(d.Item)
			e.note(ToneInfo, "delivery of %d %s arrived", d.Qty, it.Name)
			continue
		}
		kept = append(kept, d)
	}
	e.st.Deliveries = kept
}

type SpoilageLine struct {
	Item       ItemID `json:"item"`
	Qty        int    `json:"qty"`
	ValuePence int64  `json:"value_pence"`
}

// tickSpoilage ages every batch by one day plus any activity penalty and
// drops what expired.
func (e *Engine) tickSpoilage() []SpoilageLine {
	days := 1
	if e.st.Running != nil {
		if a, err := activityByID(e.st.Running.Activity); err == nil {
			days += a.ExtraSpoilDays
		}
	}
	byItem := map[ItemID]*SpoilageLine{}
	var order []ItemID
	for _, r := range []*Rack{&e.st.Beverages, &e.st.Foods} {
		kept := r.Batches[:0]
		for _, b := range r.Batches {
			b.DaysRemaining -= days
			if b.DaysRemaining > 0 {
				kept = append(kept, b)
				continue
			}
			line, ok := byItem[b.Item]
			if !ok {
				line = &SpoilageLine{Item: b.Item}
				byItem[b.Item] = line
				order = append(order, b.Item)
			}
			line.Qty += b.Qty
			line.ValuePence += int64(b.Qty) * b.UnitCostPence
		}
		r.Batches = kept
	}
	out := make([]SpoilageLine, 0, len(order))
	for _, id := range order {
		line := *byItem[id]
		out = append(out, line)
		e.st.Week.SpoiledUnits += line.Qty
		e.st.Week.SpoiledValuePence += line.ValuePence
		it, _ := itemByID(id)
		e.note(ToneWarn, "%d %s spoiled (£%.2f)", line.Qty, it.Name, PenceToPounds(line.ValuePence))
	}
	if len(out) > 0 {
		e.addReputation(-1)
	}
	return out
}

type ForecastEntry struct {
	Item          ItemID `json:"item"`
	Qty           int    `json:"qty"`
	DaysRemaining int    `json:"days_remaining"`
}

// SpoilageForecast yields stock grouped by item and days left, soonest first.
// The sequence reads a snapshot taken at call time and can be ranged over
// more than once.
func (e *Engine) SpoilageForecast() iter.Seq[ForecastEntry] {
	type key struct {
		item ItemID
		days int
	}
	qty := map[key]int{}
	for _, r := range []Rack{e.st.Beverages, e.st.Foods} {
		for _, b := range r.Batches {
			qty[key{b.Item, b.DaysRemaining}] += b.Qty
		}
	}
	entries := make([]ForecastEntry, 0, len(qty))
	for k, n := range qty {
		entries = append(entries, ForecastEntry{Item: k.item, Qty: n, DaysRemaining: k.days})
	}
	slices.SortFunc(entries, func(a, b ForecastEntry) int {
		return cmp.Or(cmp.Compare(a.DaysRemaining, b.DaysRemaining), cmp.Compare(a.Item, b.Item))
	})
	return func(yield func(ForecastEntry) bool) {
		for _, fe := range entries {
			if !yield(fe) {
				return
			}
		}
	}
}

// rollDeal picks tomorrow's supplier deal: a discount or a shortage on one
// item, or nothing.
func (e *Engine) rollDeal() {
	e.st.Deal = SupplierDeal{}
	if !e.dice.Chance(0.5) {
		return
	}
	it := itemCatalog[e.dice.Range(0, len(itemCatalog)-1)]
	if e.dice.Chance(0.6) {
		e.st.Deal = SupplierDeal{Item: it.ID, MultBps: e.dice.Range64(4_000, 6_000)}
		return
	}
	e.st.Deal = SupplierDeal{Item: it.ID, MultBps: e.dice.Range64(12_000, 17_000)}
}
