package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickStanceLeansOnTraits(t *testing.T) {
	d := NewDice(7)
	fox := map[RivalStance]int{}
	tap := map[RivalStance]int{}
	for range 500 {
		fox[PickStance(districtRivals[0], d)]++
		tap[PickStance(districtRivals[1], d)]++
	}
	require.Greater(t, fox[StancePriceWar], 100)
	require.Greater(t, fox[StancePriceWar], fox[StanceQualityPush])
	require.Greater(t, tap[StanceQualityPush], tap[StancePriceWar])
	require.Greater(t, tap[StanceLayLow], tap[StanceChaosRecovery])
}

func TestPickStanceIsSeeded(t *testing.T) {
	a, b := NewDice(99), NewDice(99)
	for range 50 {
		for _, r := range DistrictRivals() {
			require.Equal(t, PickStance(r, a), PickStance(r, b))
		}
	}
}

func TestMarketPressure(t *testing.T) {
	tests := []struct {
		name     string
		market   MarketPressure
		traffic  float64
		price    float64
		dominant RivalStance
	}{
		{"empty district", MarketPressure{}, 1, 0, StanceLayLow},
		{"price war", MarketPressure{Rivals: 3, Counts: map[RivalStance]int{StancePriceWar: 3}}, 0.91, 0.15, StancePriceWar},
		{"everyone lies low", MarketPressure{Rivals: 3, Counts: map[RivalStance]int{StanceLayLow: 3}}, 1.03, 0, StanceLayLow},
		{"quality offsets undercutting", MarketPressure{Rivals: 3, Counts: map[RivalStance]int{StancePriceWar: 2, StanceQualityPush: 1}}, 0.94, 0.07, StancePriceWar},
		{"tie goes to the earlier stance", MarketPressure{Rivals: 2, Counts: map[RivalStance]int{StanceEventSpam: 1, StanceQualityPush: 1}}, 0.98, 0, StanceQualityPush},
		{"floor", MarketPressure{Rivals: 7, Counts: map[RivalStance]int{StancePriceWar: 5, StanceEventSpam: 2}}, 0.90, 0.20, StancePriceWar},
		{"ceiling", MarketPressure{Rivals: 7, Counts: map[RivalStance]int{StanceLayLow: 4, StanceChaosRecovery: 3}}, 1.06, 0, StanceLayLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.market.TrafficMult(); got < tc.traffic-1e-9 || got > tc.traffic+1e-9 {
				t.Fatalf("TrafficMult() = %v, want %v", got, tc.traffic)
			}
			if got := tc.market.PriceSensitivity(); got < tc.price-1e-9 || got > tc.price+1e-9 {
				t.Fatalf("PriceSensitivity() = %v, want %v", got, tc.price)
			}
			if got := tc.market.Dominant(); got != tc.dominant {
				t.Fatalf("Dominant() = %s, want %s", got, tc.dominant)
			}
		})
	}
}

func TestWeekCloseRollsTheMarket(t *testing.T) {
	e := newTestEngine(t, nil)
	require.Equal(t, 1, e.State().Market.Week)
	require.Equal(t, 1.0, e.State().Market.TrafficMult())

	var week *WeekReport
	for range 7 {
		week = playNight(t, e).Week
	}
	require.NotNil(t, week)
	require.Equal(t, 2, week.NextMarket.Week)
	require.Equal(t, len(districtRivals), week.NextMarket.Rivals)
	total := 0
	for _, n := range week.NextMarket.Counts {
		total += n
	}
	require.Equal(t, len(districtRivals), total)
	require.Equal(t, week.NextMarket, e.State().Market)
	require.Equal(t, week.NextMarket, e.State().WeekReports[0].NextMarket)
}

func TestNoRivalsLeavesTrafficAlone(t *testing.T) {
	e := newTestEngine(t, func(b *Balance) { b.NoRivals = true })
	for range 7 {
		playNight(t, e)
	}
	m := e.State().Market
	require.Equal(t, 2, m.Week)
	require.Zero(t, m.Rivals)
	require.Equal(t, 1.0, m.TrafficMult())
}

func TestPriceWarPunishesHighPrices(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.SetPriceMultiplier(1.5)
	require.NoError(t, err)
	calm := e.trafficMultiplier()
	e.st.Market = MarketPressure{Week: 1, Rivals: 3, Counts: map[RivalStance]int{StanceLayLow: 3}}
	require.Greater(t, e.trafficMultiplier(), calm)
	e.st.Market = MarketPressure{Week: 1, Rivals: 3, Counts: map[RivalStance]int{StancePriceWar: 3}}
	undercut := e.trafficMultiplier()
	require.InDelta(t, calm*0.91*(1-0.15*0.5), undercut, 1e-9)
}

func TestDistrictView(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	v := e.District()
	require.Len(t, v.Rivals, len(districtRivals))
	require.Len(t, v.VIPs, VIPRosterSize)
	require.Equal(t, 1.0, v.VIPMult)
	require.Equal(t, StanceLayLow, v.Dominant)
	require.Equal(t, "1989-01-16", v.Season.Date)

	v.VIPs[0].Loyalty = -1
	require.NotEqual(t, -1, e.State().VIPs[0].Loyalty)
}
