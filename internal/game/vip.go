package game

import "slices"

type VIPArchetype string

const (
	ArchetypeSocialButterfly VIPArchetype = "social_butterfly"
	ArchetypeConnoisseur     VIPArchetype = "connoisseur"
	ArchetypeValueSeeker     VIPArchetype = "value_seeker"
	ArchetypeNightOwl        VIPArchetype = "night_owl"
)

type VIPPreference string

const (
	PrefService VIPPreference = "service"
	PrefValue   VIPPreference = "value"
	PrefCalm    VIPPreference = "calm"
	PrefEvents  VIPPreference = "events"
	PrefQuality VIPPreference = "quality"
)

// VIPStage is where a regular's story sits, derived from loyalty.
type VIPStage string

const (
	StageBacklash    VIPStage = "backlash"
	StageDisgruntled VIPStage = "disgruntled"
	StageAnnoyed     VIPStage = "annoyed"
	StageNeutral     VIPStage = "neutral"
	StageWarming     VIPStage = "warming"
	StageLoyal       VIPStage = "loyal"
	StageAdvocate    VIPStage = "advocate"
)

const (
	VIPRosterSize       = 3
	MaxVIPTrafficBps    = int64(13_500)
	vipAdvocateRep      = 4
	vipBacklashRep      = -6
	vipAdvocateBoostBps = 500
)

type vipArchetypeDef struct {
	Archetype   VIPArchetype
	Preferences []VIPPreference
	Tolerance   int
}

var vipArchetypes = []vipArchetypeDef{
	{ArchetypeSocialButterfly, []VIPPreference{PrefService, PrefEvents, PrefCalm}, 45},
	{ArchetypeConnoisseur, []VIPPreference{PrefQuality, PrefService, PrefCalm}, 35},
	{ArchetypeValueSeeker, []VIPPreference{PrefValue, PrefService}, 50},
	{ArchetypeNightOwl, []VIPPreference{PrefEvents, PrefValue, PrefCalm}, 40},
}

var vipNames = []string{"Big Dave", "Maureen", "Colin the Post", "Aunty Pat", "Father Dermot", "Shaz", "Old Reg", "Tina from the Salon"}

type VIPRegular struct {
	Name        string          `json:"name"`
	Archetype   VIPArchetype    `json:"archetype"`
	Preferences []VIPPreference `json:"preferences"`
	Tolerance   int             `json:"tolerance"`
	Loyalty     int             `json:"loyalty"`
	Stage       VIPStage        `json:"stage"`
	Triggered   []VIPStage      `json:"triggered,omitempty"`
}

func stageFor(loyalty int) VIPStage {
	switch {
	case loyalty >= 85:
		return StageAdvocate
	case loyalty >= 65:
		return StageLoyal
	case loyalty >= 50:
		return StageWarming
	case loyalty <= 15:
		return StageBacklash
	case loyalty <= 30:
		return StageDisgruntled
	case loyalty <= 45:
		return StageAnnoyed
	}
	return StageNeutral
}

// VIPNight is what a regular judges the evening on.
type VIPNight struct {
	Unserved  int
	Fights    int
	Events    int
	LostSales int
	PriceMult float64
	Quality   float64
}

// LoyaltyDelta scores one night for a regular, in -5..5.
func LoyaltyDelta(v VIPRegular, n VIPNight) int {
	delta := 0
	for _, p := range v.Preferences {
		switch p {
		case PrefService:
			if n.Unserved <= 1 {
				delta += 2
			} else {
				delta -= 2
			}
		case PrefValue:
			if n.PriceMult <= 1.10 {
				delta++
			} else {
				delta--
			}
		case PrefCalm:
			if n.Fights == 0 {
				delta++
			} else {
				delta -= 2
			}
		case PrefEvents:
			if n.Events > 0 {
				delta++
			}
		case PrefQuality:
			if n.Quality >= 0.6 {
				delta++
			} else {
				delta--
			}
		}
	}
	if n.LostSales > v.Tolerance/20 {
		delta--
	}
	return clampInt(delta, -5, 5)
}

// VIPArc reports a regular crossing into advocate or backlash.
type VIPArc struct {
	Name  string   `json:"name"`
	Stage VIPStage `json:"stage"`
}

// ensureVIPs fills the roster from the name pool. Regulars are never replaced.
func (e *Engine) ensureVIPs() {
	if e.bal.NoVIPs || len(e.st.VIPs) >= VIPRosterSize {
		return
	}
	pool := slices.DeleteFunc(slices.Clone(vipNames), func(name string) bool {
		return slices.ContainsFunc(e.st.VIPs, func(v VIPRegular) bool { return v.Name == name })
	})
	for len(e.st.VIPs) < VIPRosterSize && len(pool) > 0 {
		i := e.dice.Range(0, len(pool)-1)
		name := pool[i]
		pool = slices.Delete(pool, i, i+1)
		def := vipArchetypes[e.dice.Range(0, len(vipArchetypes)-1)]
		loyalty := 40 + e.dice.Range(0, 10)
		e.st.VIPs = append(e.st.VIPs, VIPRegular{
			Name:        name,
			Archetype:   def.Archetype,
			Preferences: slices.Clone(def.Preferences),
			Tolerance:   def.Tolerance,
			Loyalty:     loyalty,
			Stage:       stageFor(loyalty),
		})
		e.note(ToneInfo, "%s has started drinking here most nights", name)
	}
}

func (e *Engine) vipNight() VIPNight {
	n := e.st.Night
	quality := 0.8
	if n.LostSales > 0 {
		quality = 0.3
	}
	return VIPNight{
		Unserved:  n.Unserved,
		Fights:    n.Fights,
		Events:    n.Events,
		LostSales: n.LostSales,
		PriceMult: bpsFloat(e.st.PriceMultBps),
		Quality:   quality,
	}
}

// judgeVIPs moves every regular's loyalty after a night. Reaching advocate or
// backlash has a one-off consequence per regular.
func (e *Engine) judgeVIPs() []VIPArc {
	if e.bal.NoVIPs {
		return nil
	}
	night := e.vipNight()
	var arcs []VIPArc
	for i := range e.st.VIPs {
		v := &e.st.VIPs[i]
		prev := v.Stage
		v.Loyalty = clampInt(v.Loyalty+LoyaltyDelta(*v, night), 0, 100)
		v.Stage = stageFor(v.Loyalty)
		if v.Stage == prev || slices.Contains(v.Triggered, v.Stage) {
			continue
		}
		switch v.Stage {
		case StageAdvocate:
			e.st.VIPTrafficBps = min(applyBps(e.vipTrafficBps(), BpsScale+vipAdvocateBoostBps), MaxVIPTrafficBps)
			e.addReputation(vipAdvocateRep)
			e.note(ToneGood, "%s is championing the pub around the district", v.Name)
		case StageBacklash:
			e.st.BaseSecurityLevel = max(e.st.BaseSecurityLevel-1, 0)
			e.addReputation(vipBacklashRep)
			e.note(ToneBad, "%s turned on the pub and is slagging it off to anyone who'll listen", v.Name)
		default:
			continue
		}
		v.Triggered = append(v.Triggered, v.Stage)
		arcs = append(arcs, VIPArc{Name: v.Name, Stage: v.Stage})
	}
	return arcs
}

func (e *Engine) vipTrafficBps() int64 {
	if e.st.VIPTrafficBps < BpsScale {
		return BpsScale
	}
	return e.st.VIPTrafficBps
}

func cloneVIPs(in []VIPRegular) []VIPRegular {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	for i := range out {
		out[i].Preferences = slices.Clone(out[i].Preferences)
		out[i].Triggered = slices.Clone(out[i].Triggered)
	}
	return out
}
