package game

import (
	"maps"
	"slices"
)

type Phase string

const (
	PhaseClosed Phase = "closed"
	PhaseOpen   Phase = "open"
)

// Balance holds the tunable numbers of a game. Everything else lives in the
// static catalogs.
type Balance struct {
	StartingCashPence          int64 `json:"starting_cash_pence" yaml:"starting_cash_pence"`
	StartingReputation         int   `json:"starting_reputation" yaml:"starting_reputation"`
	StartingCreditScore        int   `json:"starting_credit_score" yaml:"starting_credit_score"`
	WeeklyRentPence            int64 `json:"weekly_rent_pence" yaml:"weekly_rent_pence"`
	ClosingRound               int   `json:"closing_round" yaml:"closing_round"`
	BaseBarCapacity            int   `json:"base_bar_capacity" yaml:"base_bar_capacity"`
	BaseServeCapacity          int   `json:"base_serve_capacity" yaml:"base_serve_capacity"`
	BaseRackCapacity           int   `json:"base_rack_capacity" yaml:"base_rack_capacity"`
	BaseFoodRackCapacity       int   `json:"base_food_rack_capacity" yaml:"base_food_rack_capacity"`
	BaseTrafficPerRound        int   `json:"base_traffic_per_round" yaml:"base_traffic_per_round"`
	FrontOfHouseCap            int   `json:"front_of_house_cap" yaml:"front_of_house_cap"`
	BackOfHouseCap             int   `json:"back_of_house_cap" yaml:"back_of_house_cap"`
	ManagerCap                 int   `json:"manager_cap" yaml:"manager_cap"`
	WageMultBps                int64 `json:"wage_mult_bps" yaml:"wage_mult_bps"`
	MaxBulkDiscountBps         int64 `json:"max_bulk_discount_bps" yaml:"max_bulk_discount_bps"`
	BulkDiscountFloor          int   `json:"bulk_discount_floor" yaml:"bulk_discount_floor"`
	OperatingCostPerRoundPence int64 `json:"operating_cost_per_round_pence" yaml:"operating_cost_per_round_pence"`
	EmergencyMarkupBps         int64 `json:"emergency_markup_bps" yaml:"emergency_markup_bps"`
	WeekendEmergencyMarkupBps  int64 `json:"weekend_emergency_markup_bps" yaml:"weekend_emergency_markup_bps"`
	EmergencyDeliveryRounds    int   `json:"emergency_delivery_rounds" yaml:"emergency_delivery_rounds"`
	DefaultPriceMultBps        int64 `json:"default_price_mult_bps" yaml:"default_price_mult_bps"`
	StartingStock              int   `json:"starting_stock" yaml:"starting_stock"`
	NoSeasons                  bool  `json:"no_seasons" yaml:"no_seasons"`
	NoRivals                   bool  `json:"no_rivals" yaml:"no_rivals"`
	NoVIPs                     bool  `json:"no_vips" yaml:"no_vips"`
}

func DefaultBalance() Balance {
	return Balance{
		StartingCashPence:          1_000 * PencePerPound,
		StartingReputation:         10,
		StartingCreditScore:        620,
		WeeklyRentPence:            280 * PencePerPound,
		ClosingRound:               12,
		BaseBarCapacity:            24,
		BaseServeCapacity:          2,
		BaseRackCapacity:           60,
		BaseFoodRackCapacity:       0,
		BaseTrafficPerRound:        5,
		FrontOfHouseCap:            4,
		BackOfHouseCap:             2,
		ManagerCap:                 1,
		WageMultBps:                12_000,
		MaxBulkDiscountBps:         1_000,
		BulkDiscountFloor:          12,
		OperatingCostPerRoundPence: 150,
		EmergencyMarkupBps:         13_000,
		WeekendEmergencyMarkupBps:  17_000,
		EmergencyDeliveryRounds:    3,
		DefaultPriceMultBps:        BpsScale,
		StartingStock:              12,
	}
}

// Normalize fills zero fields from DefaultBalance so partial overrides work.
func (b Balance) Normalize() Balance {
	d := DefaultBalance()
	if b.StartingCashPence <= 0 {
		b.StartingCashPence = d.StartingCashPence
	}
	if b.StartingCreditScore <= 0 {
		b.StartingCreditScore = d.StartingCreditScore
	}
	if b.WeeklyRentPence <= 0 {
		b.WeeklyRentPence = d.WeeklyRentPence
	}
	if b.ClosingRound <= 1 {
		b.ClosingRound = d.ClosingRound
	}
	if b.BaseBarCapacity <= 0 {
		b.BaseBarCapacity = d.BaseBarCapacity
	}
	if b.BaseServeCapacity <= 0 {
		b.BaseServeCapacity = d.BaseServeCapacity
	}
	if b.BaseRackCapacity <= 0 {
		b.BaseRackCapacity = d.BaseRackCapacity
	}
	if b.BaseFoodRackCapacity < 0 {
		b.BaseFoodRackCapacity = 0
	}
	if b.BaseTrafficPerRound <= 0 {
		b.BaseTrafficPerRound = d.BaseTrafficPerRound
	}
	if b.FrontOfHouseCap <= 0 {
		b.FrontOfHouseCap = d.FrontOfHouseCap
	}
	if b.BackOfHouseCap <= 0 {
		b.BackOfHouseCap = d.BackOfHouseCap
	}
	if b.ManagerCap <= 0 {
		b.ManagerCap = d.ManagerCap
	}
	if b.WageMultBps <= 0 {
		b.WageMultBps = d.WageMultBps
	}
	if b.MaxBulkDiscountBps < 0 {
		b.MaxBulkDiscountBps = 0
	}
	if b.BulkDiscountFloor <= 0 {
		b.BulkDiscountFloor = d.BulkDiscountFloor
	}
	if b.OperatingCostPerRoundPence < 0 {
		b.OperatingCostPerRoundPence = 0
	}
	if b.EmergencyMarkupBps < BpsScale {
		b.EmergencyMarkupBps = d.EmergencyMarkupBps
	}
	if b.WeekendEmergencyMarkupBps < b.EmergencyMarkupBps {
		b.WeekendEmergencyMarkupBps = max(d.WeekendEmergencyMarkupBps, b.EmergencyMarkupBps)
	}
	if b.EmergencyDeliveryRounds <= 0 {
		b.EmergencyDeliveryRounds = d.EmergencyDeliveryRounds
	}
	if b.DefaultPriceMultBps <= 0 {
		b.DefaultPriceMultBps = d.DefaultPriceMultBps
	}
	if b.StartingStock < 0 {
		b.StartingStock = 0
	}
	b.StartingReputation = clampInt(b.StartingReputation, MinReputation, MaxReputation)
	b.StartingCreditScore = clampInt(b.StartingCreditScore, MinCreditScore, MaxCreditScore)
	return b
}

type Staff struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             StaffType `json:"type"`
	ServeCapacity    int       `json:"serve_capacity"`
	FoodServe        int       `json:"food_serve"`
	SecurityBonus    int       `json:"security_bonus"`
	CapacityMultBps  int64     `json:"capacity_mult_bps"`
	TipBps           int64     `json:"tip_bps"`
	WeeklyWagePence  int64     `json:"weekly_wage_pence"`
	AccruedWagePence int64     `json:"accrued_wage_pence"`
	Morale           int       `json:"morale"`
	HiredWeek        int       `json:"hired_week"`
}

type Batch struct {
	Item          ItemID `json:"item"`
	Qty           int    `json:"qty"`
	DaysRemaining int    `json:"days_remaining"`
	UnitCostPence int64  `json:"unit_cost_pence"`
}

type Rack struct {
	Pool    Pool    `json:"pool"`
	Batches []Batch `json:"batches"`
}

func (r Rack) Total() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Qty
	}
	return n
}

func (r Rack) OnHand(item ItemID) int {
	n := 0
	for _, b := range r.Batches {
		if b.Item == item {
			n += b.Qty
		}
	}
	return n
}

// Delivery is an emergency restock still on its way.
type Delivery struct {
	Item            ItemID `json:"item"`
	Qty             int    `json:"qty"`
	RoundsRemaining int    `json:"rounds_remaining"`
	UnitCostPence   int64  `json:"unit_cost_pence"`
}

type InstallTicket struct {
	ID              string    `json:"id"`
	Upgrade         UpgradeID `json:"upgrade"`
	NightsRemaining int       `json:"nights_remaining"`
	TotalNights     int       `json:"total_nights"`
}

type ScheduledActivity struct {
	Activity ActivityID `json:"activity"`
	StartsIn int        `json:"starts_in"`
}

type RunningActivity struct {
	Activity        ActivityID `json:"activity"`
	NightsRemaining int        `json:"nights_remaining"`
}

type CreditLine struct {
	ID             string   `json:"id"`
	Lender         LenderID `json:"lender"`
	LimitPence     int64    `json:"limit_pence"`
	BalancePence   int64    `json:"balance_pence"`
	APRBps         int64    `json:"apr_bps"`
	MinScore       int      `json:"min_score"`
	Open           bool     `json:"open"`
	MissedPayments int      `json:"missed_payments"`
	OpenedWeek     int      `json:"opened_week"`
	ClosedWeek     int      `json:"closed_week,omitempty"`
}

func (l CreditLine) AvailablePence() int64 {
	if !l.Open {
		return 0
	}
	return max(l.LimitPence-l.BalancePence, 0)
}

type SharkLoan struct {
	BalancePence   int64 `json:"balance_pence"`
	WeeklyRateBps  int64 `json:"weekly_rate_bps"`
	MinPaymentBps  int64 `json:"min_payment_bps"`
	OpenedWeek     int   `json:"opened_week"`
	MissedPayments int   `json:"missed_payments"`
}

type TradeCredit struct {
	Pool           Pool  `json:"pool"`
	BalancePence   int64 `json:"balance_pence"`
	LateFeesPence  int64 `json:"late_fees_pence"`
	MissedPayments int   `json:"missed_payments"`
}

type SupplierDeal struct {
	Item    ItemID `json:"item,omitempty"`
	MultBps int64  `json:"mult_bps,omitempty"`
}

func (d SupplierDeal) multFor(item ItemID) int64 {
	if d.Item == "" || d.Item != item || d.MultBps <= 0 {
		return BpsScale
	}
	return d.MultBps
}

type LandlordState struct {
	Identity           float64                  `json:"identity"`
	LastUsedRound      int                      `json:"last_used_round"`
	CooldownUntil      map[LandlordActionID]int `json:"cooldown_until"`
	TrafficBonusBps    int64                    `json:"traffic_bonus_bps"`
	TrafficBonusRounds int                      `json:"traffic_bonus_rounds"`
}

// Progress holds the cumulative counters milestones are evaluated over.
type Progress struct {
	NightsOpened       int   `json:"nights_opened"`
	WeeksSettled       int   `json:"weeks_settled"`
	WagesPaidWeeks     int   `json:"wages_paid_weeks"`
	TotalRevenuePence  int64 `json:"total_revenue_pence"`
	PeakReputation     int   `json:"peak_reputation"`
	CalmStreak         int   `json:"calm_streak"`
	PeakCalmStreak     int   `json:"peak_calm_streak"`
	NearCapacityNights int   `json:"near_capacity_nights"`
	DebtFreeStreak     int   `json:"debt_free_streak"`
	PeakDebtFreeStreak int   `json:"peak_debt_free_streak"`
}

type NightCounters struct {
	Arrivals      int            `json:"arrivals"`
	Served        int            `json:"served"`
	FoodServed    int            `json:"food_served"`
	Unserved      int            `json:"unserved"`
	TurnedAway    int            `json:"turned_away"`
	Departed      int            `json:"departed"`
	LostSales     int            `json:"lost_sales"`
	Incidents     int            `json:"incidents"`
	Fights        int            `json:"fights"`
	Events        int            `json:"events"`
	PeakPatrons   int            `json:"peak_patrons"`
	RevenuePence  int64          `json:"revenue_pence"`
	TipsPence     int64          `json:"tips_pence"`
	Sales         map[ItemID]int `json:"sales"`
	RoundsPlayed  int            `json:"rounds_played"`
	BarCapacityAt int            `json:"bar_capacity_at"`
}

// Accumulator is shared by the weekly and the 4-week report windows.
type Accumulator struct {
	Nights            int               `json:"nights"`
	RevenuePence      int64             `json:"revenue_pence"`
	TipsPence         int64             `json:"tips_pence"`
	CostsByTag        map[CostTag]int64 `json:"costs_by_tag"`
	Sales             map[ItemID]int    `json:"sales"`
	Served            int               `json:"served"`
	TurnedAway        int               `json:"turned_away"`
	LostSales         int               `json:"lost_sales"`
	Incidents         int               `json:"incidents"`
	Events            int               `json:"events"`
	SpoiledUnits      int               `json:"spoiled_units"`
	SpoiledValuePence int64             `json:"spoiled_value_pence"`
	DuesPaidPence     int64             `json:"dues_paid_pence"`
	DuesMissedPence   int64             `json:"dues_missed_pence"`
}

func newAccumulator() Accumulator {
	return Accumulator{CostsByTag: map[CostTag]int64{}, Sales: map[ItemID]int{}}
}

func (a *Accumulator) addCost(tag CostTag, amount int64) {
	if a.CostsByTag == nil {
		a.CostsByTag = map[CostTag]int64{}
	}
	a.CostsByTag[tag] += amount
}

func (a *Accumulator) merge(b Accumulator) {
	a.Nights += b.Nights
	a.RevenuePence += b.RevenuePence
	a.TipsPence += b.TipsPence
	for k, v := range b.CostsByTag {
		a.addCost(k, v)
	}
	if a.Sales == nil {
		a.Sales = map[ItemID]int{}
	}
	for k, v := range b.Sales {
		a.Sales[k] += v
	}
	a.Served += b.Served
	a.TurnedAway += b.TurnedAway
	a.LostSales += b.LostSales
	a.Incidents += b.Incidents
	a.Events += b.Events
	a.SpoiledUnits += b.SpoiledUnits
	a.SpoiledValuePence += b.SpoiledValuePence
	a.DuesPaidPence += b.DuesPaidPence
	a.DuesMissedPence += b.DuesMissedPence
}

func (a Accumulator) TotalCostsPence() int64 {
	var total int64
	for _, v := range a.CostsByTag {
		total += v
	}
	return total
}

func (a Accumulator) clone() Accumulator {
	a.CostsByTag = maps.Clone(a.CostsByTag)
	a.Sales = maps.Clone(a.Sales)
	return a
}

type State struct {
	CashPence   int64   `json:"cash_pence"`
	Reputation  int     `json:"reputation"`
	CreditScore int     `json:"credit_score"`
	Chaos       float64 `json:"chaos"`

	DayIndex        int `json:"day_index"`
	DayCounter      int `json:"day_counter"`
	WeekCount       int `json:"week_count"`
	ReportIndex     int `json:"report_index"`
	WeeksIntoReport int `json:"weeks_into_report"`
	NightCount      int `json:"night_count"`

	Phase         Phase `json:"phase"`
	Round         int   `json:"round"`
	AbsoluteRound int   `json:"absolute_round"`
	Patrons       int   `json:"patrons"`
	PriceMultBps  int64 `json:"price_mult_bps"`
	HappyHour     bool  `json:"happy_hour"`

	SecurityPolicy    SecurityPolicy         `json:"security_policy"`
	ActiveTask        SecurityTaskID         `json:"active_task,omitempty"`
	TaskCooldowns     map[SecurityTaskID]int `json:"task_cooldowns"`
	BaseSecurityLevel int                    `json:"base_security_level"`
	BouncersTonight   int                    `json:"bouncers_tonight"`

	FrontOfHouse []Staff `json:"front_of_house"`
	BackOfHouse  []Staff `json:"back_of_house"`
	Managers     []Staff `json:"managers"`

	Beverages  Rack       `json:"beverages"`
	Foods      Rack       `json:"foods"`
	Deliveries []Delivery `json:"deliveries"`

	Scheduled *ScheduledActivity `json:"scheduled,omitempty"`
	Running   *RunningActivity   `json:"running,omitempty"`
	Installs  []InstallTicket    `json:"installs"`
	Owned     []UpgradeID        `json:"owned"`
	Achieved  []MilestoneID      `json:"achieved"`

	Night    NightCounters `json:"night"`
	Week     Accumulator   `json:"week"`
	Period   Accumulator   `json:"period"`
	Progress Progress      `json:"progress"`

	CreditLines         []CreditLine `json:"credit_lines"`
	LinesOpenedThisWeek int          `json:"lines_opened_this_week"`
	Shark               *SharkLoan   `json:"shark,omitempty"`
	TradeBeverage       TradeCredit  `json:"trade_beverage"`
	TradeFood           TradeCredit  `json:"trade_food"`

	Deal SupplierDeal `json:"deal"`

	AccruedRentPence     int64 `json:"accrued_rent_pence"`
	RentArrearsPence     int64 `json:"rent_arrears_pence"`
	AccruedSecurityPence int64 `json:"accrued_security_pence"`
	SecurityArrearsPence int64 `json:"security_arrears_pence"`
	TipsOwedPence        int64 `json:"tips_owed_pence"`

	Landlord LandlordState `json:"landlord"`

	Market        MarketPressure `json:"market"`
	VIPs          []VIPRegular   `json:"vips"`
	VIPTrafficBps int64          `json:"vip_traffic_bps"`

	WeekReports   []WeekReport   `json:"week_reports"`
	PeriodReports []PeriodReport `json:"period_reports"`
}

func (s *State) trade(pool Pool) *TradeCredit {
	if pool == PoolFood {
		return &s.TradeFood
	}
	return &s.TradeBeverage
}

func (s *State) rack(pool Pool) *Rack {
	if pool == PoolFood {
		return &s.Foods
	}
	return &s.Beverages
}

func (s *State) roster(pool StaffPool) *[]Staff {
	switch pool {
	case PoolBackOfHouse:
		return &s.BackOfHouse
	case PoolManagers:
		return &s.Managers
	default:
		return &s.FrontOfHouse
	}
}

func (s *State) allStaff() []*Staff {
	out := make([]*Staff, 0, len(s.FrontOfHouse)+len(s.BackOfHouse)+len(s.Managers))
	for _, roster := range []*[]Staff{&s.FrontOfHouse, &s.BackOfHouse, &s.Managers} {
		for i := range *roster {
			out = append(out, &(*roster)[i])
		}
	}
	return out
}

func (s *State) staffCount() int {
	return len(s.FrontOfHouse) + len(s.BackOfHouse) + len(s.Managers)
}

func (s *State) owns(id UpgradeID) bool {
	return slices.Contains(s.Owned, id)
}

func (s *State) installing(id UpgradeID) bool {
	return slices.ContainsFunc(s.Installs, func(t InstallTicket) bool { return t.Upgrade == id })
}

func (s *State) achieved(id MilestoneID) bool {
	return slices.Contains(s.Achieved, id)
}

func (s *State) weekend() bool {
	return s.DayIndex == 4 || s.DayIndex == 5
}

func cloneRoster(in []Staff) []Staff {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

func cloneRack(r Rack) Rack {
	r.Batches = slices.Clone(r.Batches)
	return r
}

func (s State) clone() State {
	out := s
	out.TaskCooldowns = maps.Clone(s.TaskCooldowns)
	out.FrontOfHouse = cloneRoster(s.FrontOfHouse)
	out.BackOfHouse = cloneRoster(s.BackOfHouse)
	out.Managers = cloneRoster(s.Managers)
	out.Beverages = cloneRack(s.Beverages)
	out.Foods = cloneRack(s.Foods)
	out.Deliveries = slices.Clone(s.Deliveries)
	if s.Scheduled != nil {
		v := *s.Scheduled
		out.Scheduled = &v
	}
	if s.Running != nil {
		v := *s.Running
		out.Running = &v
	}
	out.Installs = slices.Clone(s.Installs)
	out.Owned = slices.Clone(s.Owned)
	out.Achieved = slices.Clone(s.Achieved)
	out.Night.Sales = maps.Clone(s.Night.Sales)
	out.Week = s.Week.clone()
	out.Period = s.Period.clone()
	out.CreditLines = slices.Clone(s.CreditLines)
	if s.Shark != nil {
		v := *s.Shark
		out.Shark = &v
	}
	out.Landlord.CooldownUntil = maps.Clone(s.Landlord.CooldownUntil)
	out.Market = s.Market.clone()
	out.VIPs = cloneVIPs(s.VIPs)
	out.WeekReports = slices.Clone(s.WeekReports)
	for i := range out.WeekReports {
		out.WeekReports[i] = out.WeekReports[i].clone()
	}
	out.PeriodReports = slices.Clone(s.PeriodReports)
	for i := range out.PeriodReports {
		out.PeriodReports[i].Totals = out.PeriodReports[i].Totals.clone()
	}
	return out
}
