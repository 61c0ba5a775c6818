package game

import "time"

type OverviewMetrics struct {
	CashPence   int64       `json:"cash_pence"`
	Reputation  int         `json:"reputation"`
	CreditScore int         `json:"credit_score"`
	PubLevel    int         `json:"pub_level"`
	Phase       Phase       `json:"phase"`
	Round       int         `json:"round"`
	Patrons     int         `json:"patrons"`
	BarCapacity int         `json:"bar_capacity"`
	DayIndex    int         `json:"day_index"`
	Date        string      `json:"date"`
	Seasons     []SeasonTag `json:"seasons"`
	Week        int         `json:"week"`
	Report      int         `json:"report"`
	Night       int         `json:"night"`
	Identity    float64     `json:"identity"`
	HappyHour   bool        `json:"happy_hour"`
	PriceMult   float64     `json:"price_mult"`
}

type EconomyMetrics struct {
	RevenueTonightPence int64        `json:"revenue_tonight_pence"`
	RevenueWeekPence    int64        `json:"revenue_week_pence"`
	CostsWeekPence      int64        `json:"costs_week_pence"`
	DebtPence           int64        `json:"debt_pence"`
	TradeBeveragePence  int64        `json:"trade_beverage_pence"`
	TradeFoodPence      int64        `json:"trade_food_pence"`
	TradeCapPence       int64        `json:"trade_cap_pence"`
	SharkBorrowPence    int64        `json:"shark_borrow_pence"`
	Dues                DueBreakdown `json:"dues"`
	Deal                SupplierDeal `json:"deal"`
	BeverageStock       int          `json:"beverage_stock"`
	BeverageCapacity    int          `json:"beverage_capacity"`
	FoodStock           int          `json:"food_stock"`
	FoodCapacity        int          `json:"food_capacity"`
}

type StaffingMetrics struct {
	FrontOfHouse      int   `json:"front_of_house"`
	FrontOfHouseCap   int   `json:"front_of_house_cap"`
	BackOfHouse       int   `json:"back_of_house"`
	Managers          int   `json:"managers"`
	WeeklyWagesPence  int64 `json:"weekly_wages_pence"`
	AverageMorale     int   `json:"average_morale"`
	ServeCapacity     int   `json:"serve_capacity"`
	FoodServeCapacity int   `json:"food_serve_capacity"`
}

type RiskMetrics struct {
	Chaos          float64           `json:"chaos"`
	IncidentChance float64           `json:"incident_chance"`
	Security       SecurityBreakdown `json:"security"`
	IncidentsWeek  int               `json:"incidents_week"`
	BouncerCap     int               `json:"bouncer_cap"`
}

type ProgressionMetrics struct {
	PubLevel  int                `json:"pub_level"`
	Achieved  []MilestoneID      `json:"achieved"`
	Owned     []UpgradeID        `json:"owned"`
	Installs  []InstallTicket    `json:"installs"`
	Scheduled *ScheduledActivity `json:"scheduled,omitempty"`
	Running   *RunningActivity   `json:"running,omitempty"`
	Progress  Progress           `json:"progress"`
}

type Metrics struct {
	Overview    OverviewMetrics    `json:"overview"`
	Economy     EconomyMetrics     `json:"economy"`
	Staffing    StaffingMetrics    `json:"staffing"`
	Risk        RiskMetrics        `json:"risk"`
	Progression ProgressionMetrics `json:"progression"`
}

// Metrics is a read-only dashboard over the current state.
func (e *Engine) Metrics() Metrics {
	st := e.st.clone()
	level := e.PubLevel()

	m := Metrics{
		Overview: OverviewMetrics{
			CashPence:   st.CashPence,
			Reputation:  st.Reputation,
			CreditScore: st.CreditScore,
			PubLevel:    level,
			Phase:       st.Phase,
			Round:       st.Round,
			Patrons:     st.Patrons,
			BarCapacity: e.BarCapacity(),
			DayIndex:    st.DayIndex,
			Date:        st.Date().Format(time.DateOnly),
			Seasons:     e.Season().Tags,
			Week:        st.WeekCount,
			Report:      st.ReportIndex,
			Night:       st.NightCount,
			Identity:    st.Landlord.Identity,
			HappyHour:   st.HappyHour,
			PriceMult:   bpsFloat(st.PriceMultBps),
		},
		Economy: EconomyMetrics{
			RevenueTonightPence: st.Night.RevenuePence,
			RevenueWeekPence:    st.Week.RevenuePence + st.Night.RevenuePence,
			CostsWeekPence:      st.Week.TotalCostsPence(),
			DebtPence:           st.TotalDebtPence(),
			TradeBeveragePence:  st.TradeBeverage.BalancePence,
			TradeFoodPence:      st.TradeFood.BalancePence,
			TradeCapPence:       TradeCreditCap(level),
			SharkBorrowPence:    SharkBorrowLimit(st.Reputation),
			Dues:                weeklyDues(&st),
			Deal:                st.Deal,
			BeverageStock:       st.Beverages.Total(),
			BeverageCapacity:    e.RackCapacity(PoolBeverage),
			FoodStock:           st.Foods.Total(),
			FoodCapacity:        e.RackCapacity(PoolFood),
		},
		Staffing: StaffingMetrics{
			FrontOfHouse:      len(st.FrontOfHouse),
			FrontOfHouseCap:   e.frontOfHouseCap(),
			BackOfHouse:       len(st.BackOfHouse),
			Managers:          len(st.Managers),
			WeeklyWagesPence:  e.weeklyWageBill(),
			ServeCapacity:     e.ServeCapacity(),
			FoodServeCapacity: e.FoodServeCapacity(),
		},
		Risk: RiskMetrics{
			Chaos:          st.Chaos,
			IncidentChance: IncidentChance(e.incidentInputs()),
			Security:       e.SecurityBreakdown(),
			IncidentsWeek:  st.Week.Incidents + st.Night.Incidents,
			BouncerCap:     e.bouncerCap(),
		},
		Progression: ProgressionMetrics{
			PubLevel:  level,
			Achieved:  st.Achieved,
			Owned:     st.Owned,
			Installs:  st.Installs,
			Scheduled: st.Scheduled,
			Running:   st.Running,
			Progress:  st.Progress,
		},
	}
	if n := st.staffCount(); n > 0 {
		total := 0
		for _, s := range st.allStaff() {
			total += s.Morale
		}
		m.Staffing.AverageMorale = total / n
	}
	return m
}
