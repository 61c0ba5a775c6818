package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuyBetweenNightsPaysAndStocks(t *testing.T) {
	e := newTestEngine(t, nil)
	before := e.State().Beverages.OnHand(ItemTableRed)

	res, err := e.Buy(ItemTableRed, 10)
	require.NoError(t, err)
	require.True(t, res.PaidFromCash)
	require.False(t, res.Emergency)
	require.Equal(t, int64(5_000), res.CostPence)

	st := e.State()
	require.Equal(t, int64(95_000), st.CashPence)
	require.Equal(t, before+10, st.Beverages.OnHand(ItemTableRed))
	require.Equal(t, int64(5_000), st.Week.CostsByTag[TagStock])
}

func TestBuyRejectsBadQuantityAndUnknownItem(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Buy(ItemTableRed, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = e.Buy("mystery_ale", 1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = e.Buy(ItemPubChips, 1)
	require.ErrorIs(t, err, ErrLocked)
}

func TestRandomPurchasesRespectCapacityAndCash(t *testing.T) {
	e := newTestEngine(t, nil)
	pick := NewDice(7)
	items := []ItemID{ItemTableRed, ItemHouseWhite, ItemMerlot, ItemMargaux, ItemSteakPie}
	for range 200 {
		item := items[pick.Range(0, len(items)-1)]
		qty := pick.Range(-2, 40)
		before := e.State()
		_, err := e.Buy(item, qty)
		after := e.State()
		if err != nil {
			require.ErrorIs(t, err, ErrPreconditionUnmet)
			require.Equal(t, before.CashPence, after.CashPence)
			require.Equal(t, before.Beverages.Total(), after.Beverages.Total())
			require.Equal(t, before.TradeBeverage.BalancePence, after.TradeBeverage.BalancePence)
		}
		require.GreaterOrEqual(t, after.CashPence, int64(0))
		require.LessOrEqual(t, after.Beverages.Total(), e.RackCapacity(PoolBeverage))
		require.LessOrEqual(t, after.TradeBeverage.BalancePence, TradeCreditCap(e.PubLevel()))

		// sell some through so the rack keeps turning over
		if n := after.Beverages.OnHand(item); n > 0 {
			require.NoError(t, e.consume(item, (n+1)/2))
		}
	}
}

func TestBuyFallsBackToSupplierTab(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.CashPence = 100

	res, err := e.Buy(ItemTableRed, 10)
	require.NoError(t, err)
	require.False(t, res.PaidFromCash)
	require.Equal(t, int64(5_000), res.TradeAfterPence)
	require.Equal(t, int64(100), e.State().CashPence)

	_, err = e.Buy(ItemTableRed, 30)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, int64(5_000), e.State().TradeBeverage.BalancePence)
}

func TestConsumeTakesShortestLifeFirst(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Beverages.Batches = []Batch{
		{Item: ItemMerlot, Qty: 3, DaysRemaining: 5},
		{Item: ItemMerlot, Qty: 2, DaysRemaining: 1},
		{Item: ItemTableRed, Qty: 4, DaysRemaining: 1},
	}
	require.NoError(t, e.consume(ItemMerlot, 3))

	got := e.st.Beverages.Batches
	require.Len(t, got, 2)
	require.Equal(t, Batch{Item: ItemMerlot, Qty: 2, DaysRemaining: 5}, got[0])
	require.Equal(t, ItemTableRed, got[1].Item)

	require.ErrorIs(t, e.consume(ItemMerlot, 3), ErrPreconditionUnmet)
	require.Equal(t, 2, e.st.Beverages.OnHand(ItemMerlot))
}

func TestSpoilageDropsExpiredBatches(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Beverages.Batches = []Batch{
		{Item: ItemTableRed, Qty: 4, DaysRemaining: 1, UnitCostPence: 500},
		{Item: ItemTableRed, Qty: 2, DaysRemaining: 1, UnitCostPence: 500},
		{Item: ItemMerlot, Qty: 3, DaysRemaining: 4, UnitCostPence: 900},
	}
	rep := e.st.Reputation

	lines := e.tickSpoilage()
	require.Equal(t, []SpoilageLine{{Item: ItemTableRed, Qty: 6, ValuePence: 3_000}}, lines)
	require.Equal(t, []Batch{{Item: ItemMerlot, Qty: 3, DaysRemaining: 3, UnitCostPence: 900}}, e.st.Beverages.Batches)
	require.Equal(t, 6, e.st.Week.SpoiledUnits)
	require.Equal(t, rep-1, e.st.Reputation)

	require.Empty(t, e.tickSpoilage())
	require.Equal(t, rep-1, e.st.Reputation)
}

func TestSpoilageForecastIsSortedAndRestartable(t *testing.T) {
	e := newTestEngine(t, nil)
	e.st.Beverages.Batches = []Batch{
		{Item: ItemMerlot, Qty: 3, DaysRemaining: 4},
		{Item: ItemTableRed, Qty: 2, DaysRemaining: 1},
		{Item: ItemTableRed, Qty: 5, DaysRemaining: 1},
		{Item: ItemHouseWhite, Qty: 1, DaysRemaining: 1},
	}
	seq := e.SpoilageForecast()
	first := slices.Collect(seq)
	require.Equal(t, []ForecastEntry{
		{Item: ItemHouseWhite, Qty: 1, DaysRemaining: 1},
		{Item: ItemTableRed, Qty: 7, DaysRemaining: 1},
		{Item: ItemMerlot, Qty: 3, DaysRemaining: 4},
	}, first)

	e.st.Beverages.Batches = nil
	require.Equal(t, first, slices.Collect(seq))

	n := 0
	for range seq {
		n++
		break
	}
	require.Equal(t, 1, n)
}

func TestEmergencyRestockNeedsManagerAndArrivesLater(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.OpenNight()
	require.NoError(t, err)
	_, err = e.Buy(ItemTableRed, 5)
	require.ErrorIs(t, err, ErrLocked)
	_, err = e.CloseNight(CloseEarly)
	require.NoError(t, err)

	_, err = e.HireManager()
	require.NoError(t, err)
	_, err = e.OpenNight()
	require.NoError(t, err)
	e.st.Deal = SupplierDeal{}

	quote, err := e.PeekCost(ItemTableRed, 5)
	require.NoError(t, err)
	require.Greater(t, quote, int64(5*500))

	res, err := e.Buy(ItemTableRed, 5)
	require.NoError(t, err)
	require.True(t, res.Emergency)
	require.Equal(t, quote, res.CostPence)
	require.Equal(t, e.bal.EmergencyDeliveryRounds, res.ArrivesInRounds)
	require.Len(t, e.State().Deliveries, 1)

	for range e.bal.EmergencyDeliveryRounds {
		_, err := e.PlayRound()
		require.NoError(t, err)
	}
	require.Empty(t, e.State().Deliveries)
}

func TestCloseFlushesPendingDeliveries(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.HireManager()
	require.NoError(t, err)
	_, err = e.OpenNight()
	require.NoError(t, err)
	_, err = e.Buy(ItemMerlot, 4)
	require.NoError(t, err)
	_, err = e.CloseNight(CloseEarly)
	require.NoError(t, err)

	st := e.State()
	require.Empty(t, st.Deliveries)
	require.Equal(t, 4, st.Beverages.OnHand(ItemMerlot))
}
