package game

import (
	"fmt"
	"strings"
)

type CostTag string

const (
	TagRent       CostTag = "rent"
	TagWages      CostTag = "wages"
	TagSecurity   CostTag = "security"
	TagSupplier   CostTag = "supplier"
	TagStock      CostTag = "stock"
	TagCredit     CostTag = "credit"
	TagShark      CostTag = "shark"
	TagUpgrades   CostTag = "upgrades"
	TagActivities CostTag = "activities"
	TagStaffing   CostTag = "staffing"
	TagLandlord   CostTag = "landlord"
	TagOperating  CostTag = "operating"
	TagIncidents  CostTag = "incidents"
)

const (
	TradeCreditAPRBps         = int64(1_200)
	TradeMinPaymentBps        = int64(2_000)
	TradeMinPaymentFloor      = int64(10) * PencePerPound
	TradeLateFeePence         = int64(15) * PencePerPound
	CreditLineMinPaymentBps   = int64(500)
	CreditLineMinPaymentFloor = int64(20) * PencePerPound
	SharkWeeklyRateBps        = int64(500)
	SharkMinPaymentBps        = int64(1_500)
	SharkMinPaymentFloor      = int64(25) * PencePerPound
	SharkMissPenaltyPence     = int64(50) * PencePerPound
	WeeksPerYear              = int64(52)
)

// pay debits cash. It never leaves cash negative.
func (e *Engine) pay(amount int64, tag CostTag, label string) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative amount for %s", ErrPreconditionUnmet, label)
	}
	if amount > e.st.CashPence {
		return fmt.Errorf("%w: %s costs £%.2f, cash £%.2f", ErrInsufficientFunds, label, PenceToPounds(amount), PenceToPounds(e.st.CashPence))
	}
	e.st.CashPence -= amount
	e.st.Week.addCost(tag, amount)
	return nil
}

// takeUpTo debits at most amount, never more than the cash on hand, and
// returns what was actually taken.
func (e *Engine) takeUpTo(amount int64, tag CostTag) int64 {
	taken := min(max(amount, 0), e.st.CashPence)
	if taken <= 0 {
		return 0
	}
	e.st.CashPence -= taken
	e.st.Week.addCost(tag, taken)
	return taken
}

func (e *Engine) earn(amount int64) {
	if amount <= 0 {
		return
	}
	e.st.CashPence += amount
}

// DueLine is one instrument's share of a weekly bill.
type DueLine struct {
	Tag         CostTag `json:"tag"`
	Label       string  `json:"label"`
	Instrument  string  `json:"instrument,omitempty"`
	AmountPence int64   `json:"amount_pence"`
}

type DueBreakdown struct {
	SupplierPence    int64     `json:"supplier_pence"`
	WagesPence       int64     `json:"wages_pence"`
	RentPence        int64     `json:"rent_pence"`
	SecurityPence    int64     `json:"security_pence"`
	CreditLinesPence int64     `json:"credit_lines_pence"`
	SharkPence       int64     `json:"shark_pence"`
	TotalPence       int64     `json:"total_pence"`
	Lines            []DueLine `json:"lines"`
}

func tradeMinPayment(balance int64) int64 {
	if balance <= 0 {
		return 0
	}
	return min(max(applyBps(balance, TradeMinPaymentBps), TradeMinPaymentFloor), balance)
}

func lineMinPayment(l CreditLine) int64 {
	if !l.Open || l.BalancePence <= 0 {
		return 0
	}
	return min(max(applyBps(l.BalancePence, CreditLineMinPaymentBps), CreditLineMinPaymentFloor), l.BalancePence)
}

func sharkMinPayment(s *SharkLoan) int64 {
	if s == nil || s.BalancePence <= 0 {
		return 0
	}
	return min(max(applyBps(s.BalancePence, s.MinPaymentBps), SharkMinPaymentFloor), s.BalancePence)
}

func (s *State) accruedWages() int64 {
	var total int64
	for _, st := range s.allStaff() {
		total += st.AccruedWagePence
	}
	return total
}

// WeeklyDues is what settlement would bill if the week ended now.
func (e *Engine) WeeklyDues() DueBreakdown {
	return weeklyDues(&e.st)
}

func weeklyDues(s *State) DueBreakdown {
	var d DueBreakdown
	add := func(tag CostTag, label, instrument string, amount int64) {
		if amount <= 0 {
			return
		}
		d.Lines = append(d.Lines, DueLine{Tag: tag, Label: label, Instrument: instrument, AmountPence: amount})
		d.TotalPence += amount
	}

	d.RentPence = s.AccruedRentPence + s.RentArrearsPence
	add(TagRent, "rent", "", d.RentPence)

	d.WagesPence = s.accruedWages() + s.TipsOwedPence/2
	add(TagWages, "wages and tip share", "", d.WagesPence)

	d.SecurityPence = s.AccruedSecurityPence + s.SecurityArrearsPence
	add(TagSecurity, "security upkeep", "", d.SecurityPence)

	for _, tc := range []*TradeCredit{&s.TradeBeverage, &s.TradeFood} {
		amount := tradeMinPayment(tc.BalancePence) + tc.LateFeesPence
		d.SupplierPence += amount
		add(TagSupplier, string(tc.Pool)+" supplier", "trade_"+string(tc.Pool), amount)
	}

	for _, l := range s.CreditLines {
		amount := lineMinPayment(l)
		d.CreditLinesPence += amount
		add(TagCredit, string(l.Lender)+" line", l.ID, amount)
	}

	d.SharkPence = sharkMinPayment(s.Shark)
	add(TagShark, "loan shark", SharkInstrument, d.SharkPence)
	return d
}

// bridge draws from open credit lines so cash can cover amount. It draws
// nothing unless the lines together can close the gap.
func (e *Engine) bridge(amount int64) bool {
	gap := amount - e.st.CashPence
	if gap <= 0 {
		return true
	}
	var available int64
	for _, l := range e.st.CreditLines {
		available += l.AvailablePence()
	}
	if available < gap {
		return false
	}
	for i := range e.st.CreditLines {
		if gap <= 0 {
			break
		}
		l := &e.st.CreditLines[i]
		draw := min(l.AvailablePence(), gap)
		if draw <= 0 {
			continue
		}
		l.BalancePence += draw
		e.st.CashPence += draw
		gap -= draw
		e.note(ToneWarn, "drew £%.2f from %s to cover the bills", PenceToPounds(draw), l.Lender)
	}
	return true
}

type settlement struct {
	paid   int64
	missed int64
	misses []CostTag
}

func (s *settlement) settle(e *Engine, tag CostTag, label string, amount int64, bridge bool) bool {
	if amount <= 0 {
		return true
	}
	if bridge {
		e.bridge(amount)
	}
	if err := e.pay(amount, tag, label); err != nil {
		s.missed += amount
		s.misses = append(s.misses, tag)
		return false
	}
	s.paid += amount
	return true
}

// settleWeek bills the week's dues in a fixed order and applies penalties for
// anything that could not be met.
func (e *Engine) settleWeek() settlement {
	var s settlement
	st := &e.st
	due := weeklyDues(st)

	if s.settle(e, TagRent, "rent", due.RentPence, true) {
		st.AccruedRentPence, st.RentArrearsPence = 0, 0
	} else {
		st.RentArrearsPence += st.AccruedRentPence
		st.AccruedRentPence = 0
		e.addCreditScore(-20)
		e.addReputation(-2)
		e.note(ToneBad, "missed rent of £%.2f; arrears carry over", PenceToPounds(due.RentPence))
	}

	if s.settle(e, TagWages, "wages", due.WagesPence, true) {
		for _, staff := range st.allStaff() {
			staff.AccruedWagePence = 0
		}
		st.TipsOwedPence = 0
		if due.WagesPence > 0 {
			st.Progress.WagesPaidWeeks++
		}
	} else {
		e.addMorale(-15)
		e.addReputation(-3)
		e.note(ToneBad, "could not make payroll of £%.2f", PenceToPounds(due.WagesPence))
	}

	if s.settle(e, TagSecurity, "security upkeep", due.SecurityPence, true) {
		st.AccruedSecurityPence, st.SecurityArrearsPence = 0, 0
	} else {
		st.SecurityArrearsPence += st.AccruedSecurityPence
		st.AccruedSecurityPence = 0
		e.addCreditScore(-20)
		e.addReputation(-2)
		e.note(ToneBad, "missed security upkeep of £%.2f", PenceToPounds(due.SecurityPence))
	}

	for _, tc := range []*TradeCredit{&st.TradeBeverage, &st.TradeFood} {
		minPay := tradeMinPayment(tc.BalancePence)
		amount := minPay + tc.LateFeesPence
		if amount <= 0 {
			continue
		}
		if s.settle(e, TagSupplier, string(tc.Pool)+" supplier", amount, true) {
			tc.BalancePence -= minPay
			tc.LateFeesPence = 0
			continue
		}
		tc.LateFeesPence += TradeLateFeePence
		tc.MissedPayments++
		e.addCreditScore(-10)
		e.note(ToneBad, "missed the %s supplier payment; late fee added", tc.Pool)
	}

	for i := range st.CreditLines {
		l := &st.CreditLines[i]
		amount := lineMinPayment(*l)
		if amount <= 0 {
			continue
		}
		if s.settle(e, TagCredit, string(l.Lender)+" line", amount, false) {
			l.BalancePence -= amount
			continue
		}
		l.MissedPayments++
		e.addCreditScore(-15)
		e.note(ToneBad, "missed the minimum on the %s line", l.Lender)
	}

	if st.Shark != nil {
		amount := sharkMinPayment(st.Shark)
		if s.settle(e, TagShark, "loan shark", amount, false) {
			st.Shark.BalancePence -= amount
		} else {
			st.Shark.BalancePence += SharkMissPenaltyPence
			st.Shark.MissedPayments++
			e.addReputation(-5)
			e.addChaos(8)
			e.note(ToneBad, "the shark's boys came round about a missed payment")
		}
		if st.Shark.BalancePence <= 0 {
			st.Shark = nil
			e.note(ToneGood, "the loan shark is paid off")
		}
	}

	if len(s.misses) == 0 && s.paid > 0 {
		e.addCreditScore(5)
	}
	e.compoundInterest()
	return s
}

func (e *Engine) compoundInterest() {
	st := &e.st
	for i := range st.CreditLines {
		l := &st.CreditLines[i]
		if !l.Open || l.BalancePence <= 0 {
			continue
		}
		interest := applyBps(l.BalancePence, l.APRBps) / WeeksPerYear
		l.BalancePence = min(l.BalancePence+interest, l.LimitPence)
	}
	if st.Shark != nil && st.Shark.BalancePence > 0 {
		st.Shark.BalancePence += applyBps(st.Shark.BalancePence, st.Shark.WeeklyRateBps)
	}
	for _, tc := range []*TradeCredit{&st.TradeBeverage, &st.TradeFood} {
		if tc.BalancePence > 0 {
			tc.BalancePence += applyBps(tc.BalancePence, TradeCreditAPRBps) / WeeksPerYear
		}
	}
}

// TotalDebtPence sums every carried balance, arrears and late fees included.
func (s *State) TotalDebtPence() int64 {
	total := s.RentArrearsPence + s.SecurityArrearsPence
	for _, l := range s.CreditLines {
		if l.Open {
			total += l.BalancePence
		}
	}
	if s.Shark != nil {
		total += s.Shark.BalancePence
	}
	total += s.TradeBeverage.BalancePence + s.TradeBeverage.LateFeesPence
	total += s.TradeFood.BalancePence + s.TradeFood.LateFeesPence
	return total
}

func tagList(tags []CostTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
