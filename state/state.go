/*
Package state defines the persisted per-conversation tree.

PURPOSE:
  One ChatData record exists per conversation, created on first access and
  saved after every mutation. The domain engines (ledger, inventory,
  baking, social, shop, tasks) each hold a pointer into their subtree of
  this record; nothing else owns persistent state.

DESIGN PRINCIPLES:
  1. Plain data: no behavior here beyond construction defaults. The
     engines own the rules; this package owns the shape.
  2. Currency is int64 (whole currency units, no fractions).
  3. Inventory and recipe quantities are decimal.Decimal - free-text
     tags produce fractional grams and repeated debits must not drift.
  4. Dates persist as ISO strings via engine.Date.

SEE ALSO:
  - store/: persistence of ChatData keyed by conversation id
  - engine/clock.go: the rpDate fields embedded at the top level
*/
package state

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/life-engine/engine"
)

// =============================================================================
// CHAT DATA - Root of the per-conversation tree
// =============================================================================

// ChatData is everything the system knows about one conversation.
type ChatData struct {
	engine.ClockState

	Ledger    Ledger    `json:"ledger"`
	Inventory Inventory `json:"inventory"`
	Baking    Baking    `json:"baking"`
	Social    Social    `json:"social"`
	Shop      Shop      `json:"shop"`
	Tasks     Tasks     `json:"tasks"`
}

// Preferences is the single global (not per-conversation) record.
type Preferences struct {
	PanelOpen   bool     `json:"panelOpen"`
	OpenModules []string `json:"openModules"`
}

// NewChatData builds a fresh tree with engine defaults applied.
func NewChatData() *ChatData {
	return &ChatData{
		Social: Social{IncomeTiers: DefaultIncomeTiers()},
	}
}

// =============================================================================
// LEDGER SUBTREE
// =============================================================================

type FundSource string

const (
	SourcePersonal FundSource = "personal"
	SourceShop     FundSource = "shop"
	SourceSNS      FundSource = "SNS"
)

type TxType string

const (
	TxIncome  TxType = "income"
	TxExpense TxType = "expense"
)

type Ledger struct {
	Living            int64           `json:"living"`
	Goals             []SavingsGoal   `json:"goals"`
	RecurringIncome   []RecurringRule `json:"recurringIncome"`
	RecurringExpense  []RecurringRule `json:"recurringExpense"`
	Transactions      []Transaction   `json:"transactions"` // newest first
	ShopMode          ShopMode        `json:"shopMode"`
	LastProcessedDate engine.Date     `json:"lastProcessedDate"`
}

type SavingsGoal struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon,omitempty"`
	TargetAmount  int64    `json:"targetAmount"`
	CurrentAmount int64    `json:"currentAmount"`
	SubItems      []string `json:"subItems,omitempty"`
}

type RuleType string

const (
	RuleFixed RuleType = "fixed"
	RuleRange RuleType = "range"
)

// RecurringRule is a monthly income or expense template. A rule with
// Source == SourceSNS is owned by the social engine and locked against
// user edits.
type RecurringRule struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        RuleType   `json:"type"`
	FixedAmount int64      `json:"fixedAmount,omitempty"`
	MinAmount   int64      `json:"minAmount,omitempty"`
	MaxAmount   int64      `json:"maxAmount,omitempty"`
	DayOfMonth  int        `json:"dayOfMonth"`
	Source      FundSource `json:"source"`
	Enabled     bool       `json:"enabled"`
}

// Transaction is immutable once created; deletion reverses its balance
// effect but never edits it in place.
type Transaction struct {
	ID                int64       `json:"id"`
	Date              engine.Date `json:"date"`
	Type              TxType      `json:"type"`
	Source            FundSource  `json:"source"`
	Category          string      `json:"category,omitempty"`
	Description       string      `json:"description"`
	Amount            int64       `json:"amount"` // always positive
	Memo              string      `json:"memo,omitempty"`
	IsRecurring       bool        `json:"isRecurring,omitempty"`
	SkipBalanceUpdate bool        `json:"skipBalanceUpdate,omitempty"`
}

type ShopMode struct {
	Enabled              bool            `json:"enabled"`
	ShopName             string          `json:"shopName,omitempty"`
	OperatingFund        int64           `json:"operatingFund"`
	PayrollMode          string          `json:"payrollMode,omitempty"`
	UnpaidWages          []UnpaidWage    `json:"unpaidWages,omitempty"`
	ShopRecurringExpense []RecurringRule `json:"shopRecurringExpense,omitempty"`
	WarningThreshold     int64           `json:"warningThreshold,omitempty"`
}

type UnpaidWage struct {
	ID        int64       `json:"id"`
	StaffName string      `json:"staffName"`
	Amount    int64       `json:"amount"`
	Date      engine.Date `json:"date"`
	Memo      string      `json:"memo,omitempty"`
}

// =============================================================================
// INVENTORY SUBTREE
// =============================================================================

type ItemType string

const (
	TypeIngredient ItemType = "ingredient"
	TypeProduct    ItemType = "product"
)

type Inventory struct {
	Items   []Item                  `json:"items"`
	History []InventoryHistoryEntry `json:"history"` // newest first, capped
}

type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Qty      decimal.Decimal `json:"qty"`
	Unit     string          `json:"unit,omitempty"`
	Category string          `json:"category,omitempty"`
	Type     ItemType        `json:"type"`
	MinStock decimal.Decimal `json:"minStock"`
}

type InventoryHistoryEntry struct {
	ID       int64           `json:"id"`
	ItemName string          `json:"itemName"`
	Change   decimal.Decimal `json:"change"`
	AfterQty decimal.Decimal `json:"afterQty"`
	Reason   string          `json:"reason,omitempty"`
	Source   string          `json:"source,omitempty"`
	Date     engine.Date     `json:"date"`
}

// InventoryHistoryCap bounds the change log to the most recent entries.
const InventoryHistoryCap = 50

// =============================================================================
// BAKING SUBTREE
// =============================================================================

type Baking struct {
	Recipes []Recipe     `json:"recipes"`
	History []BakeRecord `json:"history"` // newest first, capped

	// LastEvent is a short-lived notice surfaced by the prompt composer
	// for a few seconds after a bake.
	LastEvent   string    `json:"lastEvent,omitempty"`
	LastEventAt time.Time `json:"lastEventAt,omitempty"`
}

type Recipe struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	YieldQty    decimal.Decimal    `json:"yieldQty"`
	YieldUnit   string             `json:"yieldUnit,omitempty"`
}

type RecipeIngredient struct {
	Name string          `json:"name"`
	Qty  decimal.Decimal `json:"qty"`
	Unit string          `json:"unit,omitempty"`
}

type BakeRecord struct {
	ID         int64           `json:"id"`
	RecipeName string          `json:"recipeName"`
	Multiplier decimal.Decimal `json:"multiplier"`
	YieldQty   decimal.Decimal `json:"yieldQty"`
	YieldUnit  string          `json:"yieldUnit,omitempty"`
	Date       engine.Date     `json:"date"`
}

// BakeHistoryCap bounds the bake log to the most recent entries.
const BakeHistoryCap = 30

// =============================================================================
// SOCIAL SUBTREE
// =============================================================================

type PostType string

const (
	PostPhoto PostType = "photo"
	PostReel  PostType = "reel"
	PostStory PostType = "story"
)

type Reaction string

const (
	ReactionHot2   Reaction = "hot2"
	ReactionHot    Reaction = "hot"
	ReactionNormal Reaction = "normal"
	ReactionLow    Reaction = "low"
)

type DMStatus string

const (
	DMPending  DMStatus = "pending"
	DMAccepted DMStatus = "accepted"
	DMDeclined DMStatus = "declined"
	DMExpired  DMStatus = "expired"
)

type Social struct {
	Username       string          `json:"username,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Followers      int64           `json:"followers"`
	FollowerChange int64           `json:"followerChange"` // monthly delta, resettable
	LastPostDate   engine.Date     `json:"lastPostDate"`
	LastTickDate   engine.Date     `json:"lastTickDate"`
	Posts          []Post          `json:"posts"`
	DMs            []DirectMessage `json:"dms"`
	IncomeTiers    []IncomeTier    `json:"incomeRanges"`
	LastTierMax    int64           `json:"lastTierMax,omitempty"` // previously synced tier bound
}

type Post struct {
	ID           int64       `json:"id"`
	Date         engine.Date `json:"date"`
	Type         PostType    `json:"type"`
	Content      string      `json:"content,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Likes        int64       `json:"likes"`
	Comments     int64       `json:"comments"`
	Shares       int64       `json:"shares"`
	Reaction     Reaction    `json:"reaction"`
	LinkedBaking string      `json:"linkedBaking,omitempty"`
}

type DirectMessage struct {
	ID      int64       `json:"id"`
	From    string      `json:"from"`
	Message string      `json:"message"`
	Date    engine.Date `json:"date"`
	Status  DMStatus    `json:"status"`
	Memo    string      `json:"memo,omitempty"`
}

// IncomeTier maps a follower bracket to a monthly income range.
// MaxFollowers == UnboundedTier means no upper bound (the last tier).
type IncomeTier struct {
	MaxFollowers int64 `json:"maxFollowers"`
	Min          int64 `json:"min"`
	Max          int64 `json:"max"`
}

// UnboundedTier marks the open-ended top tier.
const UnboundedTier int64 = -1

// DefaultIncomeTiers is the stock follower-to-income table. The config
// file may replace it per deployment.
func DefaultIncomeTiers() []IncomeTier {
	return []IncomeTier{
		{MaxFollowers: 1_000, Min: 0, Max: 0},
		{MaxFollowers: 5_000, Min: 50_000, Max: 100_000},
		{MaxFollowers: 10_000, Min: 100_000, Max: 300_000},
		{MaxFollowers: 50_000, Min: 300_000, Max: 1_000_000},
		{MaxFollowers: 100_000, Min: 1_000_000, Max: 3_000_000},
		{MaxFollowers: UnboundedTier, Min: 3_000_000, Max: 5_000_000},
	}
}

// =============================================================================
// SHOP SUBTREE
// =============================================================================

type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "scheduled"
	ShiftCompleted ShiftStatus = "completed"
	ShiftPaid      ShiftStatus = "paid"
)

type Shop struct {
	IsOpen         bool            `json:"isOpen"`
	Menu           []MenuItem      `json:"menu"`
	Sales          []Sale          `json:"sales"`
	DailySummary   *DailySummary   `json:"dailySummary,omitempty"`
	MonthlyReports []MonthlyReport `json:"monthlyReports"`
	Staff          []Staff         `json:"staff"`
	Shifts         []Shift         `json:"shifts"`
}

type MenuItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	CostPrice int64  `json:"costPrice"`
	Icon      string `json:"icon,omitempty"`
	Available bool   `json:"available"`
}

// Sale is an immutable log entry.
type Sale struct {
	ID         int64       `json:"id"`
	MenuName   string      `json:"menuName"`
	Quantity   int64       `json:"quantity"`
	UnitPrice  int64       `json:"unitPrice"`
	TotalPrice int64       `json:"totalPrice"`
	Date       engine.Date `json:"date"`
	Time       string      `json:"time,omitempty"`
	Operator   string      `json:"operator,omitempty"`
}

type DailySummary struct {
	Date      engine.Date `json:"date"`
	Revenue   int64       `json:"revenue"`
	ItemCount int64       `json:"itemCount"`
	SaleCount int         `json:"saleCount"`
	TopSeller string      `json:"topSeller,omitempty"`
}

type MonthlyReport struct {
	Month      string           `json:"month"` // ISO "YYYY-MM"
	Revenue    int64            `json:"revenue"`
	ItemCount  int64            `json:"itemCount"`
	SaleCount  int              `json:"saleCount"`
	TopSeller  string           `json:"topSeller,omitempty"`
	ItemTotals map[string]int64 `json:"itemTotals,omitempty"`
}

type Staff struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	HourlyWage int64    `json:"hourlyWage"`
	Skills     []string `json:"skills,omitempty"`
	Status     string   `json:"status,omitempty"`
	TotalHours float64  `json:"totalHours"`
	TotalPaid  int64    `json:"totalPaid"`
}

type Shift struct {
	ID        int64       `json:"id"`
	StaffID   int64       `json:"staffId"`
	StaffName string      `json:"staffName"`
	Date      engine.Date `json:"date"`
	StartTime string      `json:"startTime,omitempty"`
	EndTime   string      `json:"endTime,omitempty"`
	Hours     float64     `json:"hours"`
	Wage      int64       `json:"wage"`
	Status    ShiftStatus `json:"status"`
	Memo      string      `json:"memo,omitempty"`
}

// =============================================================================
// TASKS SUBTREE - Todo, schedule, shopping list collaborators
// =============================================================================

type Tasks struct {
	Todos    []Todo         `json:"todo"`
	Schedule []ScheduleItem `json:"schedule"`
	Shopping []ShoppingItem `json:"shopping"`
}

type Todo struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Deadline engine.Date `json:"deadline"`
	Done     bool        `json:"done"`
	Created  engine.Date `json:"created"`
}

type ScheduleItem struct {
	ID    int64       `json:"id"`
	Title string      `json:"title"`
	Date  engine.Date `json:"date"`
	Time  string      `json:"time,omitempty"`
	Memo  string      `json:"memo,omitempty"`
}

type ShoppingItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Qty      int64  `json:"qty"`
	Unit     string `json:"unit,omitempty"`
	Price    int64  `json:"price"`
	Location string `json:"location"`
}
