package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func regular(arch VIPArchetype, loyalty int) VIPRegular {
	for _, def := range vipArchetypes {
		if def.Archetype == arch {
			return VIPRegular{
				Name:        "Maureen",
				Archetype:   arch,
				Preferences: def.Preferences,
				Tolerance:   def.Tolerance,
				Loyalty:     loyalty,
				Stage:       stageFor(loyalty),
			}
		}
	}
	panic("unknown archetype " + string(arch))
}

func TestLoyaltyDelta(t *testing.T) {
	good := VIPNight{Events: 1, PriceMult: 1, Quality: 0.8}
	tests := []struct {
		name  string
		arch  VIPArchetype
		night VIPNight
		want  int
	}{
		{"butterfly on a good night", ArchetypeSocialButterfly, good, 4},
		{"butterfly in a brawl", ArchetypeSocialButterfly, VIPNight{Unserved: 5, Fights: 2, LostSales: 5, PriceMult: 1}, -5},
		{"value seeker at high prices", ArchetypeValueSeeker, VIPNight{PriceMult: 1.3, Quality: 0.8}, 1},
		{"connoisseur on a short bar", ArchetypeConnoisseur, VIPNight{PriceMult: 1, Quality: 0.3, LostSales: 1}, 2},
		{"night owl with nothing on", ArchetypeNightOwl, VIPNight{PriceMult: 1, Quality: 0.8}, 2},
	}
	for _, tc := range tests {
		if got := LoyaltyDelta(regular(tc.arch, 50), tc.night); got != tc.want {
			t.Fatalf("%s: LoyaltyDelta() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestStageFor(t *testing.T) {
	tests := []struct {
		loyalty int
		want    VIPStage
	}{
		{0, StageBacklash},
		{15, StageBacklash},
		{16, StageDisgruntled},
		{30, StageDisgruntled},
		{45, StageAnnoyed},
		{46, StageNeutral},
		{50, StageWarming},
		{65, StageLoyal},
		{85, StageAdvocate},
		{100, StageAdvocate},
	}
	for _, tc := range tests {
		if got := stageFor(tc.loyalty); got != tc.want {
			t.Fatalf("stageFor(%d) = %s, want %s", tc.loyalty, got, tc.want)
		}
	}
}

func TestOpenNightFillsTheRoster(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	vips := e.State().VIPs
	require.Len(t, vips, VIPRosterSize)
	seen := map[string]bool{}
	for _, v := range vips {
		require.False(t, seen[v.Name], "duplicate regular %s", v.Name)
		seen[v.Name] = true
		require.Equal(t, stageFor(v.Loyalty), v.Stage)
	}

	off := newTestEngine(t, func(b *Balance) { b.NoVIPs = true })
	_, err = off.OpenNight()
	require.NoError(t, err)
	require.Empty(t, off.State().VIPs)
}

func TestAdvocateFiresOnce(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.VIPs = []VIPRegular{regular(ArchetypeSocialButterfly, 84)}
	e.st.Night = NightCounters{Events: 1}
	rep := e.st.Reputation

	arcs := e.judgeVIPs()
	require.Equal(t, []VIPArc{{Name: "Maureen", Stage: StageAdvocate}}, arcs)
	require.Equal(t, int64(10_500), e.st.VIPTrafficBps)
	require.Equal(t, rep+vipAdvocateRep, e.st.Reputation)

	e.st.VIPs[0].Loyalty, e.st.VIPs[0].Stage = 70, StageLoyal
	e.st.Night = NightCounters{Events: 1, Unserved: 3}
	require.Empty(t, e.judgeVIPs())

	e.st.VIPs[0].Loyalty, e.st.VIPs[0].Stage = 84, StageLoyal
	e.st.Night = NightCounters{Events: 1}
	require.Empty(t, e.judgeVIPs())
	require.Equal(t, StageAdvocate, e.st.VIPs[0].Stage)
	require.Equal(t, int64(10_500), e.st.VIPTrafficBps)
	require.Equal(t, rep+vipAdvocateRep, e.st.Reputation)
}

func TestBacklashCostsSecurityAndReputation(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Reputation = 20
	e.st.BaseSecurityLevel = 2
	e.st.VIPs = []VIPRegular{regular(ArchetypeSocialButterfly, 16)}
	e.st.Night = NightCounters{Unserved: 5, Fights: 1}

	arcs := e.judgeVIPs()
	require.Equal(t, []VIPArc{{Name: "Maureen", Stage: StageBacklash}}, arcs)
	require.Equal(t, 1, e.st.BaseSecurityLevel)
	require.Equal(t, 20+vipBacklashRep, e.st.Reputation)
	require.Equal(t, []VIPStage{StageBacklash}, e.st.VIPs[0].Triggered)

	e.st.VIPs[0].Loyalty, e.st.VIPs[0].Stage = 20, StageDisgruntled
	e.judgeVIPs()
	require.Equal(t, 1, e.st.BaseSecurityLevel)
}

func TestAdvocateBoostIsCapped(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.VIPTrafficBps = 13_400
	e.st.VIPs = []VIPRegular{regular(ArchetypeSocialButterfly, 84)}
	e.st.Night = NightCounters{Events: 1}
	e.judgeVIPs()
	require.Equal(t, MaxVIPTrafficBps, e.st.VIPTrafficBps)
}

func TestClosingJudgesRegulars(t *testing.T) {
	e := newTestEngine(t, nil)
	playNight(t, e)
	for _, v := range e.State().VIPs {
		require.Equal(t, stageFor(v.Loyalty), v.Stage)
		require.GreaterOrEqual(t, v.Loyalty, 0)
		require.LessOrEqual(t, v.Loyalty, 100)
	}
}
