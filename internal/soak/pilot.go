// Package soak plays headless games with a simple autopilot so balance
// changes can be judged over many seeds.
package soak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"landlord/internal/game"
)

type Config struct {
	Seed    uint64
	Weeks   int
	Balance game.Balance
	Logger  *slog.Logger
}

type WeekLine struct {
	Week        int   `json:"week"`
	CashPence   int64 `json:"cash_pence"`
	ProfitPence int64 `json:"profit_pence"`
	DebtPence   int64 `json:"debt_pence"`
	Reputation  int   `json:"reputation"`
	Missed      int   `json:"missed"`
}

type Result struct {
	Seed        uint64             `json:"seed"`
	Weeks       int                `json:"weeks"`
	Nights      int                `json:"nights"`
	CashPence   int64              `json:"cash_pence"`
	DebtPence   int64              `json:"debt_pence"`
	Reputation  int                `json:"reputation"`
	CreditScore int                `json:"credit_score"`
	PubLevel    int                `json:"pub_level"`
	InArrears   bool               `json:"in_arrears"`
	Upgrades    []game.UpgradeID   `json:"upgrades"`
	Milestones  []game.MilestoneID `json:"milestones"`
	WeekLines   []WeekLine         `json:"week_lines"`
	Rejected    map[string]int     `json:"rejected"`
}

var upgradePlan = []game.UpgradeID{
	game.UpgradeDarts,
	game.UpgradeKitchen,
	game.UpgradeJukebox,
	game.UpgradePoolTable,
	game.UpgradeTVs,
	game.UpgradeCCTV,
	game.UpgradeExtendedBar,
	game.UpgradeBeerGarden,
}

type pilot struct {
	e        *game.Engine
	bal      game.Balance
	log      *slog.Logger
	rejected map[string]int
}

// Play runs one game for cfg.Weeks settled weeks.
func Play(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Weeks <= 0 {
		return Result{}, fmt.Errorf("weeks must be > 0")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bal := cfg.Balance.Normalize()
	p := &pilot{
		e:        game.NewEngine(bal, cfg.Seed, logger.With("seed", cfg.Seed)),
		bal:      bal,
		log:      logger,
		rejected: map[string]int{},
	}
	res := Result{Seed: cfg.Seed, Weeks: cfg.Weeks}

	for p.e.State().WeekCount <= cfg.Weeks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p.prepare()
		rep, err := p.night()
		if err != nil {
			return res, fmt.Errorf("seed %d night %d: %w", cfg.Seed, res.Nights+1, err)
		}
		res.Nights++
		if w := rep.Week; w != nil {
			line := WeekLine{
				Week:        w.Week,
				CashPence:   w.CashPence,
				ProfitPence: w.ProfitPence,
				DebtPence:   w.DebtPence,
				Reputation:  w.Reputation,
				Missed:      len(w.Missed),
			}
			res.WeekLines = append(res.WeekLines, line)
			logger.Info("soak week settled",
				"seed", cfg.Seed,
				"week", w.Week,
				"cash_pence", w.CashPence,
				"profit_pence", w.ProfitPence,
				"debt_pence", w.DebtPence,
				"missed", len(w.Missed),
			)
		}
	}

	st := p.e.State()
	res.CashPence = st.CashPence
	res.DebtPence = st.TotalDebtPence()
	res.Reputation = st.Reputation
	res.CreditScore = st.CreditScore
	res.PubLevel = p.e.PubLevel()
	res.InArrears = st.RentArrearsPence > 0 || st.SecurityArrearsPence > 0
	res.Upgrades = p.e.OwnedUpgrades()
	res.Milestones = slices.Clone(st.Achieved)
	res.Rejected = p.rejected
	return res, nil
}

// try counts a rejected command by error class. Anything that is not a
// domain error is returned.
func (p *pilot) try(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, game.ErrInvalidStateTransition):
		p.rejected["invalid_state"]++
	case errors.Is(err, game.ErrNotFound):
		p.rejected["not_found"]++
	case errors.Is(err, game.ErrPreconditionUnmet):
		p.rejected["precondition"]++
	default:
		return err
	}
	return nil
}

func (p *pilot) reserve() int64 {
	return p.bal.WeeklyRentPence / 2
}

// prepare is the between-nights routine: debts, staff, stock, then extras.
func (p *pilot) prepare() {
	st := p.e.State()
	if st.CashPence > 4*p.bal.WeeklyRentPence {
		for _, inst := range []string{
			game.SharkInstrument,
			"trade_" + string(game.PoolBeverage),
			"trade_" + string(game.PoolFood),
		} {
			_, err := p.e.Repay(inst)
			_ = p.try(err)
		}
	}

	if len(st.FrontOfHouse) < 2 {
		_, err := p.e.Hire(game.StaffExperienced)
		_ = p.try(err)
	}
	if p.e.RackCapacity(game.PoolFood) > 0 && len(st.BackOfHouse) == 0 {
		_, err := p.e.Hire(game.StaffChef)
		_ = p.try(err)
	}

	p.restock(game.PoolBeverage, 3)
	p.restock(game.PoolFood, 2)

	st = p.e.State()
	if st.CashPence > 3*p.bal.WeeklyRentPence {
		for _, id := range upgradePlan {
			if a, err := p.e.UpgradeAvailability(id); err == nil && a.Available {
				_, err := p.e.BuyUpgrade(id)
				_ = p.try(err)
				break
			}
		}
	}
	if st.Scheduled == nil && st.Running == nil && st.CashPence > 2*p.bal.WeeklyRentPence {
		_, err := p.e.ScheduleActivity(game.ActivityQuizNight)
		_ = p.try(err)
	}
}

// restock tops the first n items of a pool up to an even share of two thirds
// of the rack, keeping a cash reserve.
func (p *pilot) restock(pool game.Pool, n int) {
	capacity := p.e.RackCapacity(pool)
	if capacity <= 0 {
		return
	}
	items := game.Items(pool)
	if len(items) > n {
		items = items[:n]
	}
	share := capacity * 2 / 3 / len(items)
	for _, id := range items {
		st := p.e.State()
		rack := st.Beverages
		if pool == game.PoolFood {
			rack = st.Foods
		}
		need := share - rack.OnHand(id)
		if need <= 0 {
			continue
		}
		cost, err := p.e.PeekCost(id, need)
		if err != nil {
			_ = p.try(err)
			continue
		}
		if cost > st.CashPence-p.reserve() {
			continue
		}
		_, err = p.e.Buy(id, need)
		_ = p.try(err)
	}
}

func (p *pilot) night() (game.NightReport, error) {
	if _, err := p.e.OpenNight(); err != nil {
		return game.NightReport{}, err
	}
	for p.e.State().Round < p.bal.ClosingRound {
		p.landlordAction()
		if _, err := p.e.PlayRound(); err != nil {
			return game.NightReport{}, err
		}
	}
	return p.e.CloseNight(game.CloseLastOrders)
}

func (p *pilot) landlordAction() {
	for _, id := range game.LandlordActions(p.e.PubLevel()) {
		_, err := p.e.ResolveLandlordAction(id)
		if err == nil {
			return
		}
		if errors.Is(err, game.ErrAlreadyUsedThisRound) {
			return
		}
		_ = p.try(err)
	}
}
