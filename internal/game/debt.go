package game

import (
	"fmt"
	"slices"
)

// OpenCreditLine applies to a lender. Limit and APR are rolled inside the
// lender's band; the line starts undrawn.
func (e *Engine) OpenCreditLine(lender LenderID) (CreditLine, error) {
	return runResult(e, "open_credit_line", func() (CreditLine, error) {
		def, err := lenderByID(lender)
		if err != nil {
			return CreditLine{}, err
		}
		st := &e.st
		if st.CreditScore < def.MinScore {
			return CreditLine{}, fmt.Errorf("%w: %s wants a credit score of %d, you have %d", ErrPreconditionUnmet, def.Name, def.MinScore, st.CreditScore)
		}
		if def.Milestone != "" && !e.milestoneAchieved(def.Milestone) {
			return CreditLine{}, fmt.Errorf("%w: %s needs milestone %s", ErrLocked, def.Name, def.Milestone)
		}
		for _, l := range st.CreditLines {
			if l.Lender == lender && l.Open {
				return CreditLine{}, fmt.Errorf("%w: a %s line is already open", ErrPreconditionUnmet, def.Name)
			}
		}

		line := CreditLine{
			ID:         e.newID(),
			Lender:     lender,
			LimitPence: e.dice.Range64(def.MinLimitPounds, def.MaxLimitPounds) * PencePerPound,
			APRBps:     e.dice.Range64(def.MinAPRBps, def.MaxAPRBps),
			MinScore:   def.MinScore,
			Open:       true,
			OpenedWeek: st.WeekCount,
		}
		st.CreditLines = append(st.CreditLines, line)
		st.LinesOpenedThisWeek++
		if st.LinesOpenedThisWeek > 1 {
			e.addCreditScore(-5)
		}
		e.note(ToneGood, "%s approved a £%.0f line at %.1f%% APR", def.Name, PenceToPounds(line.LimitPence), float64(line.APRBps)/100)
		return line, nil
	})
}

// DrawCredit moves amount from a line into cash, never past its limit.
func (e *Engine) DrawCredit(lineID string, amount int64) (CreditLine, error) {
	return runResult(e, "draw_credit", func() (CreditLine, error) {
		if amount <= 0 {
			return CreditLine{}, fmt.Errorf("%w: draw amount must be > 0", ErrPreconditionUnmet)
		}
		idx := e.lineIndex(lineID)
		if idx < 0 {
			return CreditLine{}, fmt.Errorf("%w: credit line %q", ErrNotFound, lineID)
		}
		l := &e.st.CreditLines[idx]
		if !l.Open {
			return CreditLine{}, fmt.Errorf("%w: credit line %s is closed", ErrPreconditionUnmet, lineID)
		}
		if amount > l.AvailablePence() {
			return CreditLine{}, fmt.Errorf("%w: only £%.2f available on the %s line", ErrPreconditionUnmet, PenceToPounds(l.AvailablePence()), l.Lender)
		}
		l.BalancePence += amount
		e.earn(amount)
		e.note(ToneInfo, "drew £%.2f from %s", PenceToPounds(amount), l.Lender)
		return *l, nil
	})
}

type RepayResult struct {
	Instrument     string `json:"instrument"`
	PaidPence      int64  `json:"paid_pence"`
	CashAfterPence int64  `json:"cash_after_pence"`
}

// Repay clears an instrument in full from cash. Instruments are credit line
// ids, "shark", "trade_beverage" and "trade_food".
func (e *Engine) Repay(instrument string) (RepayResult, error) {
	return runResult(e, "repay", func() (RepayResult, error) {
		st := &e.st
		switch instrument {
		case SharkInstrument:
			if st.Shark == nil || st.Shark.BalancePence <= 0 {
				return RepayResult{}, fmt.Errorf("%w: no shark loan outstanding", ErrNoBalance)
			}
			amount := st.Shark.BalancePence
			if err := e.pay(amount, TagShark, "shark payoff"); err != nil {
				return RepayResult{}, err
			}
			st.Shark = nil
			e.addCreditScore(10)
			e.note(ToneGood, "paid the loan shark off in full")
			return RepayResult{Instrument: instrument, PaidPence: amount, CashAfterPence: st.CashPence}, nil
		case "trade_" + string(PoolBeverage), "trade_" + string(PoolFood):
			tc := st.trade(Pool(instrument[len("trade_"):]))
			amount := tc.BalancePence + tc.LateFeesPence
			if amount <= 0 {
				return RepayResult{}, fmt.Errorf("%w: no %s trade credit outstanding", ErrNoBalance, tc.Pool)
			}
			if err := e.pay(amount, TagSupplier, "trade credit payoff"); err != nil {
				return RepayResult{}, err
			}
			tc.BalancePence, tc.LateFeesPence = 0, 0
			e.note(ToneGood, "cleared the %s supplier tab", tc.Pool)
			return RepayResult{Instrument: instrument, PaidPence: amount, CashAfterPence: st.CashPence}, nil
		}

		idx := e.lineIndex(instrument)
		if idx < 0 {
			return RepayResult{}, fmt.Errorf("%w: instrument %q", ErrNotFound, instrument)
		}
		l := &st.CreditLines[idx]
		if !l.Open || l.BalancePence <= 0 {
			return RepayResult{}, fmt.Errorf("%w: %s line has nothing to repay", ErrNoBalance, l.Lender)
		}
		amount := l.BalancePence
		if err := e.pay(amount, TagCredit, "credit line payoff"); err != nil {
			return RepayResult{}, err
		}
		l.BalancePence = 0
		l.Open = false
		l.ClosedWeek = st.WeekCount
		e.addCreditScore(10)
		e.note(ToneGood, "repaid and closed the %s line", l.Lender)
		return RepayResult{Instrument: instrument, PaidPence: amount, CashAfterPence: st.CashPence}, nil
	})
}

// OpenSharkLine takes the informal loan. The principal depends on reputation.
func (e *Engine) OpenSharkLine() (SharkLoan, error) {
	return runResult(e, "open_shark", func() (SharkLoan, error) {
		st := &e.st
		if st.Shark != nil {
			return SharkLoan{}, fmt.Errorf("%w: a shark loan is already open", ErrPreconditionUnmet)
		}
		principal := SharkBorrowLimit(st.Reputation)
		st.Shark = &SharkLoan{
			BalancePence:  principal,
			WeeklyRateBps: SharkWeeklyRateBps,
			MinPaymentBps: SharkMinPaymentBps,
			OpenedWeek:    st.WeekCount,
		}
		e.earn(principal)
		e.addCreditScore(-50)
		e.note(ToneWarn, "took £%.0f from a loan shark at %d%% a week", PenceToPounds(principal), SharkWeeklyRateBps/100)
		return *st.Shark, nil
	})
}

// CreditLines lists every line ever opened, closed ones included.
func (e *Engine) CreditLines() []CreditLine {
	return slices.Clone(e.st.CreditLines)
}

func (e *Engine) lineIndex(id string) int {
	return slices.IndexFunc(e.st.CreditLines, func(l CreditLine) bool { return l.ID == id })
}
