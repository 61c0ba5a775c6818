package game

import (
	"errors"
	"fmt"
	"math"
)

const (
	PencePerPound = int64(100)

	BpsScale = int64(10_000) // 1.0 == 10_000 bps.

	MinReputation   = -100
	MaxReputation   = 100
	MinCreditScore  = 300
	MaxCreditScore  = 850
	MaxChaos        = 100.0
	MaxMorale       = 100
	MaxPubLevel     = 5
	WeeksPerReport  = 4
	DaysPerWeek     = 7
	SharkInstrument = "shark"

	MinSharkBorrowPence = int64(300) * PencePerPound
	MaxSharkBorrowPence = int64(8_000) * PencePerPound

	// Daily upkeep per security level, 1.575 pounds.
	SecurityUpkeepPerLevelPence = int64(158)
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPreconditionUnmet      = errors.New("precondition unmet")
	ErrNotFound               = errors.New("not found")
	ErrCommandFailed          = errors.New("command failed")

	ErrInsufficientFunds    = fmt.Errorf("%w: insufficient funds", ErrPreconditionUnmet)
	ErrCapacityReached      = fmt.Errorf("%w: capacity reached", ErrPreconditionUnmet)
	ErrOnCooldown           = fmt.Errorf("%w: on cooldown", ErrPreconditionUnmet)
	ErrLocked               = fmt.Errorf("%w: locked", ErrPreconditionUnmet)
	ErrAlreadyUsedThisRound = fmt.Errorf("%w: already used this round", ErrPreconditionUnmet)
	ErrNoBalance            = fmt.Errorf("%w: no balance", ErrPreconditionUnmet)
	ErrInvalidQuantity      = fmt.Errorf("%w: quantity must be > 0", ErrPreconditionUnmet)
	ErrReentrantCall        = fmt.Errorf("%w: command issued from an event listener", ErrInvalidStateTransition)
)

func PoundsToPence(v float64) int64 {
	return int64(math.Round(v * float64(PencePerPound)))
}

func PenceToPounds(v int64) float64 {
	return float64(v) / float64(PencePerPound)
}

// applyBps scales v by bps/10_000, rounding half away from zero.
func applyBps(v, bps int64) int64 {
	return int64(math.Round(float64(v) * float64(bps) / float64(BpsScale)))
}

// BulkDiscountBps is the supplier discount for an order of qty units.
// Zero below floor, then max*(q-floor+1)/(q+floor): non-decreasing in q and
// approaching max with diminishing returns.
func BulkDiscountBps(qty, floor int, maxBps int64) int64 {
	if qty < floor || floor <= 0 || maxBps <= 0 {
		return 0
	}
	q := int64(qty)
	f := int64(floor)
	return maxBps * (q - f + 1) / (q + f)
}

// SharkBorrowLimit is what the informal lender will advance at a reputation.
func SharkBorrowLimit(reputation int) int64 {
	base := int64(800) * PencePerPound
	if reputation > 0 {
		base += int64(reputation) * 20 * PencePerPound
	} else {
		base -= int64(-reputation) * 5 * PencePerPound
	}
	if base < MinSharkBorrowPence {
		return MinSharkBorrowPence
	}
	if base > MaxSharkBorrowPence {
		return MaxSharkBorrowPence
	}
	return base
}

// SecurityUpgradeCost prices the step from level to level+1.
func SecurityUpgradeCost(level int) int64 {
	if level < 0 {
		level = 0
	}
	pounds := 22 + 5*float64(level) + 12*math.Pow(1.14, float64(level))
	return PoundsToPence(pounds)
}

// TradeCreditCap is the per-channel supplier credit ceiling at a pub level.
func TradeCreditCap(pubLevel int) int64 {
	if pubLevel < 1 {
		pubLevel = 1
	}
	return int64(150)*PencePerPound + int64(pubLevel-1)*100*PencePerPound
}

// IncidentInputs are the factors behind the per-round incident roll.
type IncidentInputs struct {
	Chaos         float64
	Security      int
	Weekend       bool
	PolicyMult    float64
	TaskMult      float64
	UpgradeMult   float64
	ActivityRisk  float64
	HappyHourRisk float64
}

// IncidentChance is increasing in chaos and decreasing in security.
func IncidentChance(in IncidentInputs) float64 {
	p := 0.06
	if in.Weekend {
		p *= 1.25
	}
	p *= 1 + in.Chaos/50
	p *= nonZero(in.PolicyMult) * nonZero(in.TaskMult) * nonZero(in.UpgradeMult)
	p *= 1 + in.ActivityRisk + in.HappyHourRisk
	sec := in.Security
	if sec < 0 {
		sec = 0
	}
	p /= 1 + 0.15*float64(sec)
	return clampFloat(p, 0.01, 0.60)
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// ShareOfWeek splits a weekly amount into seven daily slices that sum exactly.
func ShareOfWeek(weekly int64, day int) int64 {
	if day < 0 || day >= DaysPerWeek {
		return 0
	}
	d := int64(day)
	return weekly*(d+1)/DaysPerWeek - weekly*d/DaysPerWeek
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
