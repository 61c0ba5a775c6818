package game

import (
	"fmt"
	"math"
)

type ActionStatus string

const (
	ActionSucceeded ActionStatus = "success"
	ActionFailed    ActionStatus = "failure"
	ActionBlocked   ActionStatus = "blocked"
)

const (
	MinIdentity        = -10.0
	MaxIdentity        = 10.0
	MinTrafficBonusBps = int64(-5_000)
	MaxTrafficBonusBps = int64(6_000)
)

// ActionInputs is the snapshot an action is resolved against.
type ActionInputs struct {
	Action        LandlordActionID
	PubLevel      int
	Security      int
	Chaos         float64
	Identity      float64
	CashPence     int64
	AbsoluteRound int
	LastUsedRound int
	CooldownUntil int
}

type ActionResult struct {
	Action        LandlordActionID `json:"action"`
	Status        ActionStatus     `json:"status"`
	Reason        string           `json:"reason,omitempty"`
	Chance        float64          `json:"chance"`
	Roll          float64          `json:"roll"`
	CostPence     int64            `json:"cost_pence"`
	RepDelta      int              `json:"rep_delta"`
	MoraleDelta   int              `json:"morale_delta"`
	TrafficBps    int64            `json:"traffic_bps"`
	TrafficRounds int              `json:"traffic_rounds"`
	ChaosDelta    int              `json:"chaos_delta"`
	IdentityDelta float64          `json:"identity_delta"`
}

// alignment is how well an action suits the pub's identity, in -1..1.
// Classy actions like a classy pub, shady ones a shady pub, and balanced
// ones a pub near the middle.
func alignment(cat ActionCategory, identity float64) float64 {
	norm := clampFloat(identity/MaxIdentity, -1, 1)
	switch cat {
	case CategoryClassy:
		return norm
	case CategoryShady:
		return -norm
	default:
		return 1 - 2*math.Abs(norm)
	}
}

// ActionChance is clamp(base + 0.08*alignment + 0.01*security - 0.002*chaos, 0.05, 0.95).
func ActionChance(base float64, cat ActionCategory, identity float64, security int, chaos float64) float64 {
	p := base + 0.08*alignment(cat, identity) + 0.01*float64(security) - 0.002*chaos
	return clampFloat(p, 0.05, 0.95)
}

func identityDelta(cat ActionCategory, success bool, identity float64) float64 {
	switch cat {
	case CategoryClassy:
		if success {
			return 0.8
		}
		return 0.3
	case CategoryShady:
		if success {
			return -0.8
		}
		return -0.3
	default:
		step := 0.35
		if math.Abs(identity) < step {
			return -identity
		}
		if identity > 0 {
			return -step
		}
		return step
	}
}

// ResolveAction decides an action from inputs and rolls alone. It never
// touches engine state.
func ResolveAction(in ActionInputs, r Roller) (ActionResult, error) {
	def, err := actionByID(in.Action)
	if err != nil {
		return ActionResult{}, err
	}
	res := ActionResult{Action: def.ID, CostPence: def.CostPence}
	block := func(cause error, reason string) (ActionResult, error) {
		res.Status = ActionBlocked
		res.Reason = reason
		return res, fmt.Errorf("%w: %s", cause, reason)
	}
	switch {
	case in.LastUsedRound == in.AbsoluteRound:
		return block(ErrAlreadyUsedThisRound, "already acted this round")
	case def.Tier > in.PubLevel:
		return block(ErrLocked, fmt.Sprintf("%s needs pub level %d", def.Label, def.Tier))
	case in.AbsoluteRound < in.CooldownUntil:
		return block(ErrOnCooldown, fmt.Sprintf("%s ready in %d round(s)", def.Label, in.CooldownUntil-in.AbsoluteRound))
	case in.CashPence < def.CostPence:
		return block(ErrInsufficientFunds, fmt.Sprintf("%s costs £%.2f", def.Label, PenceToPounds(def.CostPence)))
	}

	res.Chance = ActionChance(def.BaseChance, def.Category, in.Identity, in.Security, in.Chaos)
	res.Roll = r.Float64()
	eff := def.Failure
	res.Status = ActionFailed
	res.TrafficRounds = def.FailureRounds
	if res.Roll < res.Chance {
		eff = def.Success
		res.Status = ActionSucceeded
		res.TrafficRounds = def.SuccessRounds
	}
	res.RepDelta = r.Range(eff.RepMin, eff.RepMax)
	res.MoraleDelta = r.Range(eff.MoraleMin, eff.MoraleMax)
	res.TrafficBps = int64(r.Range(int(eff.TrafficMinBps), int(eff.TrafficMaxBps)))
	res.ChaosDelta = r.Range(eff.ChaosMin, eff.ChaosMax)
	res.IdentityDelta = identityDelta(def.Category, res.Status == ActionSucceeded, in.Identity)
	return res, nil
}

// ResolveLandlordAction spends the landlord's move for this round.
func (e *Engine) ResolveLandlordAction(id LandlordActionID) (ActionResult, error) {
	return runResult(e, "landlord_action", func() (ActionResult, error) {
		if err := e.requireOpen("a landlord action"); err != nil {
			return ActionResult{}, err
		}
		st := &e.st
		in := ActionInputs{
			Action:        id,
			PubLevel:      e.PubLevel(),
			Security:      e.SecurityBreakdown().Total,
			Chaos:         st.Chaos,
			Identity:      st.Landlord.Identity,
			CashPence:     st.CashPence,
			AbsoluteRound: st.AbsoluteRound,
			LastUsedRound: st.Landlord.LastUsedRound,
			CooldownUntil: st.Landlord.CooldownUntil[id],
		}
		res, err := ResolveAction(in, e.dice)
		if err != nil {
			return res, err
		}
		def, _ := actionByID(id)
		if err := e.pay(def.CostPence, TagLandlord, def.Label); err != nil {
			return res, err
		}
		st.Landlord.LastUsedRound = st.AbsoluteRound
		st.Landlord.CooldownUntil[id] = st.AbsoluteRound + def.CooldownRounds
		e.applyActionResult(res)
		if res.Status == ActionSucceeded {
			e.note(ToneGood, "%s went well (rep %+d)", def.Label, res.RepDelta)
		} else {
			e.note(ToneBad, "%s backfired (rep %+d)", def.Label, res.RepDelta)
		}
		return res, nil
	})
}

func (e *Engine) applyActionResult(res ActionResult) {
	st := &e.st
	e.addReputation(res.RepDelta)
	e.addMorale(res.MoraleDelta)
	e.addChaos(float64(res.ChaosDelta))
	st.Landlord.Identity = clampFloat(st.Landlord.Identity+res.IdentityDelta, MinIdentity, MaxIdentity)
	st.Landlord.TrafficBonusBps = min(max(st.Landlord.TrafficBonusBps+res.TrafficBps, MinTrafficBonusBps), MaxTrafficBonusBps)
	st.Landlord.TrafficBonusRounds = max(st.Landlord.TrafficBonusRounds, res.TrafficRounds)
}
