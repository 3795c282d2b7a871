package tags_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/life-engine/baking"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/inventory"
	"github.com/warp/life-engine/ledger"
	"github.com/warp/life-engine/shop"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/tags"
	"github.com/warp/life-engine/tasks"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	sc       *tags.Scanner
	cd       *state.ChatData
	led      *ledger.Engine
	inv      *inventory.Engine
	bake     *baking.Engine
	tsk      *tasks.Engine
	clock    *engine.Clock
	notified int
}

func newTestScanner(t *testing.T) *fixture {
	t.Helper()
	cd := state.NewChatData()
	clock := engine.NewClock(&cd.ClockState, time.Now)
	clock.SetDate(engine.NewDate(2025, time.March, 10), engine.SourceManual)
	rnd := &engine.FixedRand{}

	f := &fixture{cd: cd, clock: clock}
	f.led = ledger.New(&cd.Ledger, clock, rnd, nil).WithSequence(engine.NewSequenceAt(1))
	f.inv = inventory.New(&cd.Inventory, clock, nil).WithSequence(engine.NewSequenceAt(100))
	f.bake = baking.New(&cd.Baking, f.inv, clock, nil).WithSequence(engine.NewSequenceAt(200))
	f.tsk = tasks.New(&cd.Tasks, clock, nil).WithSequence(engine.NewSequenceAt(300))
	sh := shop.New(&cd.Shop, f.led, f.inv, clock, nil, "").WithSequence(engine.NewSequenceAt(400))
	f.sc = tags.NewScanner(f.led, sh, f.bake, f.inv, f.tsk, clock, nil, func() { f.notified++ }, nil)
	return f
}

// =============================================================================
// FINANCE TAGS
// =============================================================================

func TestScan_FinanceTags(t *testing.T) {
	// GIVEN: narrative text with an income and an expense tag
	// WHEN: scanning
	// THEN: both book against living, notify fires per applied tag

	f := newTestScanner(t)
	n := f.sc.Scan("용돈을 받았다! <FIN_IN>용돈|50000</FIN_IN> 그리고 장을 봤다. <FIN_OUT>장보기|12000</FIN_OUT>")

	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.notified)
	assert.Equal(t, int64(38_000), f.cd.Ledger.Living)
	require.Len(t, f.cd.Ledger.Transactions, 2)
	assert.Equal(t, "장보기", f.cd.Ledger.Transactions[0].Description, "newest first")
	assert.Equal(t, "용돈", f.cd.Ledger.Transactions[1].Description)
	assert.Equal(t, state.SourcePersonal, f.cd.Ledger.Transactions[1].Source)
}

func TestScan_FinanceRoutesToShopWhileShopModeOn(t *testing.T) {
	f := newTestScanner(t)
	f.cd.Ledger.Living = 100_000
	require.NoError(t, f.led.ToggleShopMode(true, 50_000))

	n := f.sc.Scan("<FIN_IN>납품 대금|30000</FIN_IN>")
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(80_000), f.cd.Ledger.ShopMode.OperatingFund)
	assert.Equal(t, int64(50_000), f.cd.Ledger.Living)
	assert.Equal(t, state.SourceShop, f.cd.Ledger.Transactions[0].Source)
}

func TestScan_FinanceBadAmountSkipped(t *testing.T) {
	f := newTestScanner(t)
	n := f.sc.Scan("<FIN_IN>용돈|0</FIN_IN>")
	assert.Zero(t, n)
	assert.Empty(t, f.cd.Ledger.Transactions)
}

// =============================================================================
// SALE AND GIFT TAGS
// =============================================================================

func TestScan_SaleSkippedWhileShopModeDisabled(t *testing.T) {
	f := newTestScanner(t)
	n := f.sc.Scan("<SALE>스콘|2|3000</SALE>")
	assert.Zero(t, n)
	assert.Zero(t, f.notified)
	assert.Empty(t, f.cd.Shop.Sales)
}

func TestScan_SaleBooksThroughShop(t *testing.T) {
	f := newTestScanner(t)
	f.cd.Ledger.Living = 100_000
	require.NoError(t, f.led.ToggleShopMode(true, 0))
	f.inv.AddProduct("스콘", decimal.NewFromInt(10), "개")

	n := f.sc.Scan("오늘 첫 판매! <SALE>스콘|2|3000</SALE>")
	assert.Equal(t, 1, n)
	require.Len(t, f.cd.Shop.Sales, 1)
	assert.Equal(t, int64(6000), f.cd.Shop.Sales[0].TotalPrice)
	assert.Equal(t, int64(6000), f.cd.Ledger.ShopMode.OperatingFund)
	assert.True(t, f.inv.FindProduct("스콘").Qty.Equal(decimal.NewFromInt(8)))
}

func TestScan_GiftIsExactProductMatch(t *testing.T) {
	// GIVEN: a stocked product "딸기 케이크"
	// WHEN: gifting by partial name vs exact name
	// THEN: only the exact name resolves; gifts never match fuzzily

	f := newTestScanner(t)
	f.inv.AddProduct("딸기 케이크", decimal.NewFromInt(3), "개")

	assert.Zero(t, f.sc.Scan("<GIFT>딸기|1|친구</GIFT>"))

	n := f.sc.Scan("<GIFT>딸기 케이크|1|친구</GIFT>")
	assert.Equal(t, 1, n)
	assert.True(t, f.inv.FindProduct("딸기 케이크").Qty.Equal(decimal.NewFromInt(2)))
}

// =============================================================================
// BAKE AND SHOP TAGS
// =============================================================================

func TestScan_BakeRegistersRecipeStub(t *testing.T) {
	// GIVEN: no recipe on file
	// WHEN: a BAKE tag arrives
	// THEN: a recipe stub is registered; a second tag for the same name
	//       is skipped rather than re-registered

	f := newTestScanner(t)
	n := f.sc.Scan("<BAKE>마들렌|12</BAKE>")
	assert.Equal(t, 1, n)

	r := f.bake.FindRecipeByName("마들렌")
	require.NotNil(t, r)
	assert.Empty(t, r.Ingredients)
	assert.True(t, r.YieldQty.Equal(decimal.NewFromInt(12)))

	assert.Zero(t, f.sc.Scan("<BAKE>마들렌|6</BAKE>"))
	assert.Len(t, f.cd.Baking.Recipes, 1)
}

func TestScan_ShopTagDefaultsLocation(t *testing.T) {
	f := newTestScanner(t)
	n := f.sc.Scan("<SHOP>박력분|2|kg|8000</SHOP> <SHOP>버터|1|kg|15000|코스트코</SHOP>")
	assert.Equal(t, 2, n)

	require.Len(t, f.cd.Tasks.Shopping, 2)
	assert.Equal(t, tags.DefaultShopLocation, f.cd.Tasks.Shopping[0].Location)
	assert.Equal(t, "코스트코", f.cd.Tasks.Shopping[1].Location)
	assert.Equal(t, int64(8000), f.cd.Tasks.Shopping[0].Price)
}

// =============================================================================
// DATE TAG AND ORDERING
// =============================================================================

func TestScan_DateTagPinsAutoSource(t *testing.T) {
	f := newTestScanner(t)
	n := f.sc.Scan("다음 날 아침. <DATE>2025-04-01</DATE>")
	assert.Equal(t, 1, n)
	assert.Equal(t, "2025-04-01", f.clock.Today().String())
	assert.Equal(t, engine.SourceAuto, f.clock.Source())
}

func TestScan_MalformedDateSkipped(t *testing.T) {
	f := newTestScanner(t)
	assert.Zero(t, f.sc.Scan("<DATE>2025-13-99</DATE>"))
	assert.Equal(t, "2025-03-10", f.clock.Today().String())
}

func TestScan_TagsApplyInTextOrder(t *testing.T) {
	// GIVEN: a DATE tag ahead of a FIN tag in the narrative
	// WHEN: scanning the whole text at once
	// THEN: the transaction lands on the newly pinned date

	f := newTestScanner(t)
	n := f.sc.Scan("<DATE>2025-04-01</DATE> 새 달 첫 수입 <FIN_IN>원고료|90000</FIN_IN>")
	assert.Equal(t, 2, n)

	require.Len(t, f.cd.Ledger.Transactions, 1)
	assert.Equal(t, "2025-04-01", f.cd.Ledger.Transactions[0].Date.String())
}

func TestScan_PlainTextAppliesNothing(t *testing.T) {
	f := newTestScanner(t)
	assert.Zero(t, f.sc.Scan("오늘은 평범한 하루였다. 태그 없는 대화."))
	assert.Zero(t, f.notified)
}
