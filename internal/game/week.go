package game

import "slices"

type WeekReport struct {
	Week        int            `json:"week"`
	Totals      Accumulator    `json:"totals"`
	Dues        DueBreakdown   `json:"dues"`
	Missed      []CostTag      `json:"missed,omitempty"`
	StaffQuit   []string       `json:"staff_quit,omitempty"`
	CashPence   int64          `json:"cash_pence"`
	Reputation  int            `json:"reputation"`
	CreditScore int            `json:"credit_score"`
	DebtPence   int64          `json:"debt_pence"`
	ProfitPence int64          `json:"profit_pence"`
	NextMarket  MarketPressure `json:"next_market"`
}

func (w WeekReport) clone() WeekReport {
	w.Totals = w.Totals.clone()
	w.Dues.Lines = slices.Clone(w.Dues.Lines)
	w.Missed = slices.Clone(w.Missed)
	w.StaffQuit = slices.Clone(w.StaffQuit)
	w.NextMarket = w.NextMarket.clone()
	return w
}

// PeriodReport rolls up WeeksPerReport weeks.
type PeriodReport struct {
	Index       int         `json:"index"`
	FirstWeek   int         `json:"first_week"`
	LastWeek    int         `json:"last_week"`
	Totals      Accumulator `json:"totals"`
	CashPence   int64       `json:"cash_pence"`
	Reputation  int         `json:"reputation"`
	PubLevel    int         `json:"pub_level"`
	ProfitPence int64       `json:"profit_pence"`
}

type Reports struct {
	Weeks   []WeekReport   `json:"weeks"`
	Periods []PeriodReport `json:"periods"`
}

func (e *Engine) Reports() Reports {
	st := e.st.clone()
	return Reports{Weeks: st.WeekReports, Periods: st.PeriodReports}
}

// closeWeek runs at the Monday boundary: settle, check morale, re-evaluate
// milestones, write the week up and roll the report window.
func (e *Engine) closeWeek() (WeekReport, *PeriodReport) {
	st := &e.st
	due := weeklyDues(st)
	s := e.settleWeek()

	quit := e.moraleCheck(!slices.Contains(s.misses, TagWages))

	st.Progress.WeeksSettled++
	if st.TotalDebtPence() == 0 {
		st.Progress.DebtFreeStreak++
		st.Progress.PeakDebtFreeStreak = max(st.Progress.PeakDebtFreeStreak, st.Progress.DebtFreeStreak)
	} else {
		st.Progress.DebtFreeStreak = 0
	}
	if st.Reputation > 50 {
		e.addReputation(-1)
	}
	e.evaluateMilestones()

	st.Week.DuesPaidPence += s.paid
	st.Week.DuesMissedPence += s.missed
	report := WeekReport{
		Week:        st.WeekCount,
		Totals:      st.Week.clone(),
		Dues:        due,
		Missed:      s.misses,
		CashPence:   st.CashPence,
		Reputation:  st.Reputation,
		CreditScore: st.CreditScore,
		DebtPence:   st.TotalDebtPence(),
		ProfitPence: st.Week.RevenuePence + st.Week.TipsPence - st.Week.TotalCostsPence(),
	}
	for _, q := range quit {
		report.StaffQuit = append(report.StaffQuit, q.Name)
	}
	st.WeekReports = append(st.WeekReports, report)
	if len(s.misses) > 0 {
		e.note(ToneBad, "week %d settled with missed payments: %s", st.WeekCount, tagList(s.misses))
	} else {
		e.note(ToneGood, "week %d settled, £%.2f paid", st.WeekCount, PenceToPounds(s.paid))
	}

	st.Period.merge(st.Week)
	st.Week = newAccumulator()
	st.LinesOpenedThisWeek = 0
	st.WeekCount++
	st.WeeksIntoReport++
	e.rollMarket()
	report.NextMarket = st.Market.clone()
	st.WeekReports[len(st.WeekReports)-1].NextMarket = report.NextMarket.clone()

	if st.WeeksIntoReport < WeeksPerReport {
		return report.clone(), nil
	}
	period := PeriodReport{
		Index:       st.ReportIndex,
		FirstWeek:   st.WeekCount - WeeksPerReport,
		LastWeek:    st.WeekCount - 1,
		Totals:      st.Period.clone(),
		CashPence:   st.CashPence,
		Reputation:  st.Reputation,
		PubLevel:    e.PubLevel(),
		ProfitPence: st.Period.RevenuePence + st.Period.TipsPence - st.Period.TotalCostsPence(),
	}
	st.PeriodReports = append(st.PeriodReports, period)
	st.Period = newAccumulator()
	st.ReportIndex++
	st.WeeksIntoReport = 0
	e.note(ToneInfo, "report #%d is in", period.Index)
	period.Totals = period.Totals.clone()
	return report.clone(), &period
}
