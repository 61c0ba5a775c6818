package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
)

const SaveVersion = 1

// Engine owns one pub. It is not safe for concurrent use; callers serialize
// commands (see syncq.Runner).
type Engine struct {
	bal  Balance
	st   State
	dice *Dice
	log  *slog.Logger

	listeners    []listenerEntry
	nextListener ListenerID
	pending      []Event
	dispatching  bool
}

type Save struct {
	Version int     `json:"version"`
	Balance Balance `json:"balance"`
	State   State   `json:"state"`
	RNG     []byte  `json:"rng"`
}

func NewEngine(bal Balance, seed uint64, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	bal = bal.Normalize()
	e := &Engine{bal: bal, dice: NewDice(seed), log: logger}
	e.st = State{
		CashPence:      bal.StartingCashPence,
		Reputation:     bal.StartingReputation,
		CreditScore:    bal.StartingCreditScore,
		WeekCount:      1,
		ReportIndex:    1,
		Phase:          PhaseClosed,
		PriceMultBps:   bal.DefaultPriceMultBps,
		SecurityPolicy: PolicyBalanced,
		TaskCooldowns:  map[SecurityTaskID]int{},
		Beverages:      Rack{Pool: PoolBeverage},
		Foods:          Rack{Pool: PoolFood},
		Night:          NightCounters{Sales: map[ItemID]int{}},
		Week:           newAccumulator(),
		Period:         newAccumulator(),
		TradeBeverage:  TradeCredit{Pool: PoolBeverage},
		TradeFood:      TradeCredit{Pool: PoolFood},
		Landlord:       LandlordState{CooldownUntil: map[LandlordActionID]int{}},
		Market:         MarketPressure{Week: 1},
	}
	e.st.Progress.PeakReputation = e.st.Reputation
	if bal.StartingStock > 0 {
		for _, id := range []ItemID{ItemHouseWhite, ItemTableRed} {
			it, _ := itemByID(id)
			e.st.Beverages.Batches = append(e.st.Beverages.Batches, Batch{
				Item:          id,
				Qty:           bal.StartingStock,
				DaysRemaining: it.ShelfLifeDays,
				UnitCostPence: it.UnitCostPence,
			})
		}
	}
	e.rollDeal()
	return e
}

// Restore rebuilds an engine from a save, dice state included.
func Restore(s Save, logger *slog.Logger) (*Engine, error) {
	if s.Version != SaveVersion {
		return nil, fmt.Errorf("%w: unsupported save version %d", ErrPreconditionUnmet, s.Version)
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{bal: s.Balance.Normalize(), st: s.State.clone(), dice: NewDice(0), log: logger}
	if len(s.RNG) > 0 {
		if err := e.dice.UnmarshalBinary(s.RNG); err != nil {
			return nil, err
		}
	}
	e.st.ensureMaps()
	return e, nil
}

func (s *State) ensureMaps() {
	if s.TaskCooldowns == nil {
		s.TaskCooldowns = map[SecurityTaskID]int{}
	}
	if s.Night.Sales == nil {
		s.Night.Sales = map[ItemID]int{}
	}
	for _, acc := range []*Accumulator{&s.Week, &s.Period} {
		if acc.CostsByTag == nil {
			acc.CostsByTag = map[CostTag]int64{}
		}
		if acc.Sales == nil {
			acc.Sales = map[ItemID]int{}
		}
	}
	if s.Landlord.CooldownUntil == nil {
		s.Landlord.CooldownUntil = map[LandlordActionID]int{}
	}
	if s.SecurityPolicy == "" {
		s.SecurityPolicy = PolicyBalanced
	}
	if s.Phase == "" {
		s.Phase = PhaseClosed
	}
}

func (e *Engine) Save() (Save, error) {
	rng, err := e.dice.MarshalBinary()
	if err != nil {
		return Save{}, fmt.Errorf("save dice: %w", err)
	}
	return Save{Version: SaveVersion, Balance: e.bal, State: e.st.clone(), RNG: rng}, nil
}

// State returns a copy of the current aggregate.
func (e *Engine) State() State {
	return e.st.clone()
}

func (e *Engine) Balance() Balance {
	return e.bal
}

// run executes one command. A failed command leaves state and dice untouched;
// a successful one flushes its events to listeners.
func (e *Engine) run(name string, fn func() error) error {
	_, err := runResult(e, name, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func runResult[T any](e *Engine, name string, fn func() (T, error)) (T, error) {
	if e.dispatching {
		var zero T
		return zero, ErrReentrantCall
	}
	before := e.observe()
	snapshot := e.st.clone()
	rng, _ := e.dice.MarshalBinary()
	e.pending = nil

	out, err := guarded(name, fn)
	if err != nil {
		e.st = snapshot
		_ = e.dice.UnmarshalBinary(rng)
		e.pending = nil
		e.log.Debug("command rejected", "command", name, "error", err)
		return out, err
	}
	e.evaluateMilestones()
	events := append(e.pending, e.changeEvents(before)...)
	e.pending = nil
	e.dispatch(events)
	return out, nil
}

// guarded turns a panic inside a command into an error so the caller rolls
// the command back instead of keeping a half-applied state.
func guarded[T any](name string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, fmt.Errorf("%w: %s panicked: %v", ErrCommandFailed, name, r)
		}
	}()
	return fn()
}

// note records a log line for the engine logger and for listeners.
func (e *Engine) note(tone Tone, msg string, args ...any) {
	text := fmt.Sprintf(msg, args...)
	switch tone {
	case ToneBad, ToneWarn:
		e.log.Warn(text, "week", e.st.WeekCount, "day", e.st.DayIndex)
	default:
		e.log.Info(text, "week", e.st.WeekCount, "day", e.st.DayIndex)
	}
	e.pending = append(e.pending, Event{Kind: EventLog, Message: text, Tone: tone})
}

func (e *Engine) newID() string {
	id, err := uuid.NewRandomFromReader(e.dice)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Engine) requireClosed(what string) error {
	if e.st.Phase != PhaseClosed {
		return fmt.Errorf("%w: %s is only allowed between nights", ErrInvalidStateTransition, what)
	}
	return nil
}

func (e *Engine) requireOpen(what string) error {
	if e.st.Phase != PhaseOpen {
		return fmt.Errorf("%w: %s needs an open night", ErrInvalidStateTransition, what)
	}
	return nil
}

func (e *Engine) addReputation(delta int) {
	e.st.Reputation = clampInt(e.st.Reputation+delta, MinReputation, MaxReputation)
	if e.st.Reputation > e.st.Progress.PeakReputation {
		e.st.Progress.PeakReputation = e.st.Reputation
	}
}

func (e *Engine) addCreditScore(delta int) {
	e.st.CreditScore = clampInt(e.st.CreditScore+delta, MinCreditScore, MaxCreditScore)
}

func (e *Engine) addChaos(delta float64) {
	e.st.Chaos = clampFloat(e.st.Chaos+delta, 0, MaxChaos)
}

func (e *Engine) addMorale(delta int) {
	for _, s := range e.st.allStaff() {
		s.Morale = clampInt(s.Morale+delta, 0, MaxMorale)
	}
}

// SetPriceMultiplier sets the menu price multiplier, clamped to 0.50..2.50.
func (e *Engine) SetPriceMultiplier(mult float64) (float64, error) {
	return runResult(e, "set_price", func() (float64, error) {
		if math.IsNaN(mult) || math.IsInf(mult, 0) {
			return 0, fmt.Errorf("%w: price multiplier must be a finite number", ErrPreconditionUnmet)
		}
		bps := int64(clampFloat(mult, 0.5, 2.5) * float64(BpsScale))
		e.st.PriceMultBps = bps
		e.note(ToneInfo, "menu prices set to x%.2f", float64(bps)/float64(BpsScale))
		return float64(bps) / float64(BpsScale), nil
	})
}

func (e *Engine) ToggleHappyHour(on bool) error {
	return e.run("happy_hour", func() error {
		if on {
			if err := e.requireOpen("happy hour"); err != nil {
				return err
			}
		}
		if e.st.HappyHour == on {
			return nil
		}
		e.st.HappyHour = on
		if on {
			e.note(ToneInfo, "happy hour is on")
		} else {
			e.note(ToneInfo, "happy hour is over")
		}
		return nil
	})
}
