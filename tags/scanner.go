/*
Package tags scans chat text for structured event tags.

PURPOSE:
  The chat transcript is the wire format: the model (or the user) emits
  <TAG>field|field</TAG> markers inside free-form narrative, and the
  scanner turns them into engine calls.

GRAMMARS:
  <FIN_IN>desc|amount</FIN_IN>      income transaction
  <FIN_OUT>desc|amount</FIN_OUT>    expense transaction
  <SALE>menu|qty|unitPrice</SALE>   shop sale (shop mode only)
  <GIFT>product|qty|recipient</GIFT> product given away
  <BAKE>menu|qty|deadline?</BAKE>   records a recipe stub
  <SHOP>item|qty|unit|price|location?</SHOP> shopping-list entry
  <DATE>YYYY-MM-DD</DATE>           sets the in-fiction date

  Fields are pipe-delimited; trailing whitespace before the closing tag
  is tolerated. Optional trailing fields may be omitted.

ORDERING CONTRACT:
  Matches are processed in the order found in the text; each one fully
  mutates and persists state before the next begins. The notify hook
  fires after every applied tag, once state is consistent
  (mutate-then-notify).

FAILURE MODE:
  This is untrusted free text. A malformed or unresolvable tag is logged
  and skipped, never surfaced as an error.
*/
package tags

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/life-engine/baking"
	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/inventory"
	"github.com/warp/life-engine/ledger"
	"github.com/warp/life-engine/metrics"
	"github.com/warp/life-engine/shop"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/tasks"
)

// DefaultShopLocation is used when a SHOP tag omits its location field.
const DefaultShopLocation = "온라인"

// =============================================================================
// GRAMMARS
// =============================================================================

var (
	finInRe  = regexp.MustCompile(`<FIN_IN>([^|<]+)\|(\d+)\s*</FIN_IN>`)
	finOutRe = regexp.MustCompile(`<FIN_OUT>([^|<]+)\|(\d+)\s*</FIN_OUT>`)
	saleRe   = regexp.MustCompile(`<SALE>([^|<]+)\|(\d+)\|(\d+)\s*</SALE>`)
	giftRe   = regexp.MustCompile(`<GIFT>([^|<]+)\|(\d+)\|([^|<]+?)\s*</GIFT>`)
	bakeRe   = regexp.MustCompile(`<BAKE>([^|<]+)\|(\d+)(?:\|([^|<]+?))?\s*</BAKE>`)
	shopRe   = regexp.MustCompile(`<SHOP>([^|<]+)\|(\d+)\|([^|<]+)\|(\d+)(?:\|([^|<]+?))?\s*</SHOP>`)
	dateRe   = regexp.MustCompile(`<DATE>(\d{4}-\d{2}-\d{2})\s*</DATE>`)
)

// =============================================================================
// SCANNER
// =============================================================================

// Scanner drives the engines from observed chat text.
type Scanner struct {
	ledger *ledger.Engine
	shop   *shop.Engine
	bake   *baking.Engine
	inv    *inventory.Engine
	tasks  *tasks.Engine
	clock  *engine.Clock
	save   engine.SaveFunc
	notify func() // re-render hook; fired after each applied tag
	stats  *metrics.Metrics
}

// NewScanner wires a scanner to one conversation's engine graph.
// notify and stats may be nil.
func NewScanner(l *ledger.Engine, s *shop.Engine, b *baking.Engine, inv *inventory.Engine, t *tasks.Engine, clock *engine.Clock, save engine.SaveFunc, notify func(), stats *metrics.Metrics) *Scanner {
	return &Scanner{ledger: l, shop: s, bake: b, inv: inv, tasks: t, clock: clock, save: save, notify: notify, stats: stats}
}

type match struct {
	kind   string
	index  int
	fields []string
}

// Scan processes every tag found in text, in order of appearance.
// Returns the number of tags applied.
func (sc *Scanner) Scan(text string) int {
	var found []match
	collect := func(kind string, re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			fields := make([]string, 0, len(m)/2-1)
			for g := 1; g*2 < len(m); g++ {
				if m[g*2] < 0 {
					fields = append(fields, "")
					continue
				}
				fields = append(fields, strings.TrimSpace(text[m[g*2]:m[g*2+1]]))
			}
			found = append(found, match{kind: kind, index: m[0], fields: fields})
		}
	}
	collect("FIN_IN", finInRe)
	collect("FIN_OUT", finOutRe)
	collect("SALE", saleRe)
	collect("GIFT", giftRe)
	collect("BAKE", bakeRe)
	collect("SHOP", shopRe)
	collect("DATE", dateRe)

	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })

	applied := 0
	for _, m := range found {
		sc.stats.TagScanned(m.kind)
		if sc.apply(m) {
			applied++
			if sc.notify != nil {
				sc.notify()
			}
		} else {
			sc.stats.TagSkipped(m.kind)
		}
	}
	return applied
}

func (sc *Scanner) apply(m match) bool {
	switch m.kind {
	case "FIN_IN":
		return sc.applyFinance(state.TxIncome, m.fields)
	case "FIN_OUT":
		return sc.applyFinance(state.TxExpense, m.fields)
	case "SALE":
		return sc.applySale(m.fields)
	case "GIFT":
		return sc.applyGift(m.fields)
	case "BAKE":
		return sc.applyBake(m.fields)
	case "SHOP":
		return sc.applyShop(m.fields)
	case "DATE":
		return sc.applyDate(m.fields)
	}
	return false
}

// applyFinance books a FIN_IN/FIN_OUT transaction. Source follows shop
// mode: an active shop books against the operating fund.
func (sc *Scanner) applyFinance(txType state.TxType, fields []string) bool {
	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || amount <= 0 {
		log.Printf("tags: FIN tag with bad amount %q, skipped", fields[1])
		return false
	}
	source := state.SourcePersonal
	if sc.ledger.ShopModeEnabled() {
		source = state.SourceShop
	}
	if _, err := sc.ledger.AddTransaction(ledger.TxInput{
		Type:        txType,
		Source:      source,
		Description: fields[0],
		Amount:      amount,
	}); err != nil {
		log.Printf("tags: FIN tag rejected: %v", err)
		return false
	}
	sc.stats.TransactionRecorded()
	return true
}

// applySale books a SALE through the shop engine; inert without shop mode.
func (sc *Scanner) applySale(fields []string) bool {
	if !sc.ledger.ShopModeEnabled() {
		log.Printf("tags: SALE tag while shop mode disabled, skipped")
		return false
	}
	qty, err1 := strconv.ParseInt(fields[1], 10, 64)
	price, err2 := strconv.ParseInt(fields[2], 10, 64)
	if err1 != nil || err2 != nil {
		log.Printf("tags: SALE tag with bad numbers, skipped")
		return false
	}
	if _, err := sc.shop.AddSale(shop.SaleInput{MenuName: fields[0], Quantity: qty, UnitPrice: price}); err != nil {
		log.Printf("tags: SALE tag rejected: %v", err)
		return false
	}
	return true
}

// applyGift decrements a finished product. Gifts target named products,
// so resolution is an exact name+type match, not fuzzy.
func (sc *Scanner) applyGift(fields []string) bool {
	qty, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || qty <= 0 {
		log.Printf("tags: GIFT tag with bad quantity %q, skipped", fields[1])
		return false
	}
	item := sc.inv.FindProduct(fields[0])
	if item == nil {
		log.Printf("tags: GIFT tag for unknown product %q, skipped", fields[0])
		return false
	}
	sc.inv.RemoveProduct(item, decimal.NewFromInt(qty), "gift to "+fields[2], "gift")
	return true
}

// applyBake records a recipe stub for the named bake. The upstream
// behavior is to register the recipe, not to run a bake; keep that -
// converting it would silently start debiting ingredients.
func (sc *Scanner) applyBake(fields []string) bool {
	qty, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || qty <= 0 {
		log.Printf("tags: BAKE tag with bad quantity %q, skipped", fields[1])
		return false
	}
	if existing := sc.bake.FindRecipeByName(fields[0]); existing != nil {
		log.Printf("tags: BAKE tag for existing recipe %q, skipped", fields[0])
		return false
	}
	if _, err := sc.bake.AddRecipe(fields[0], nil, decimal.NewFromInt(qty), "개"); err != nil {
		log.Printf("tags: BAKE tag rejected: %v", err)
		return false
	}
	return true
}

// applyShop appends to the shopping list, defaulting the location.
func (sc *Scanner) applyShop(fields []string) bool {
	qty, err1 := strconv.ParseInt(fields[1], 10, 64)
	price, err2 := strconv.ParseInt(fields[3], 10, 64)
	if err1 != nil || err2 != nil {
		log.Printf("tags: SHOP tag with bad numbers, skipped")
		return false
	}
	location := fields[4]
	if location == "" {
		location = DefaultShopLocation
	}
	sc.tasks.AddShoppingItem(fields[0], qty, fields[2], price, location)
	return true
}

// applyDate pins the in-fiction date when the capture parses.
func (sc *Scanner) applyDate(fields []string) bool {
	d, err := engine.ParseDate(fields[0])
	if err != nil {
		log.Printf("tags: DATE tag with invalid date %q, skipped", fields[0])
		return false
	}
	sc.clock.SetDate(d, engine.SourceAuto)
	sc.save.Fire()
	return true
}
