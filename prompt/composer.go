/*
Package prompt serializes engine state for injection into model prompts.

PURPOSE:
  Compose renders the whole conversation state as one text block the
  host appends to outbound model prompts as a system message, so the
  model narrates against the real economy instead of inventing one.

CONTRACT:
  Compose is a pure read: deterministic for a given (state, now), no
  randomness, no mutation. The only time sensitivity is the recent-bake
  notice, which stays visible for a few wall-clock seconds after a bake.

SEE ALSO:
  - inject.go: appending the block to the three payload shapes
*/
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/life-engine/engine"
	"github.com/warp/life-engine/state"
)

// recentEventWindow bounds how long a bake notice stays in the prompt.
const recentEventWindow = 5 * time.Second

// Compose renders the state summary block. today is the in-fiction day,
// now the wall clock (recent-event window only).
func Compose(cd *state.ChatData, today engine.Date, now time.Time) string {
	var b strings.Builder

	b.WriteString("[현재 상태]\n")
	fmt.Fprintf(&b, "날짜: %s", today)
	if cd.Source == engine.SourceManual {
		b.WriteString(" (수동 설정)")
	}
	b.WriteString("\n")

	composeFinances(&b, cd)
	composeToday(&b, cd, today)
	composeInventory(&b, cd)
	composeBaking(&b, cd, now)
	composeSocial(&b, cd)
	if cd.Ledger.ShopMode.Enabled {
		composeShop(&b, cd, today)
	}

	b.WriteString(tagReference)
	return b.String()
}

func composeFinances(b *strings.Builder, cd *state.ChatData) {
	fmt.Fprintf(b, "생활비: %s원\n", comma(cd.Ledger.Living))
	for _, g := range cd.Ledger.Goals {
		fmt.Fprintf(b, "저축 [%s]: %s원 / %s원\n", g.Name, comma(g.CurrentAmount), comma(g.TargetAmount))
	}
	if cd.Ledger.ShopMode.Enabled {
		fmt.Fprintf(b, "가게 운영자금: %s원\n", comma(cd.Ledger.ShopMode.OperatingFund))
	}
}

func composeToday(b *strings.Builder, cd *state.ChatData, today engine.Date) {
	for _, item := range cd.Tasks.Schedule {
		if item.Date.Equal(today) {
			fmt.Fprintf(b, "오늘 일정: %s", item.Title)
			if item.Time != "" {
				fmt.Fprintf(b, " (%s)", item.Time)
			}
			b.WriteString("\n")
		}
	}
	open := 0
	for _, t := range cd.Tasks.Todos {
		if !t.Done {
			open++
		}
	}
	if open > 0 {
		fmt.Fprintf(b, "할 일: %d건\n", open)
	}
}

func composeInventory(b *strings.Builder, cd *state.ChatData) {
	var out, low []string
	products := 0
	for _, item := range cd.Inventory.Items {
		if item.Type == state.TypeProduct {
			products++
			continue
		}
		switch {
		case item.Qty.Sign() <= 0:
			out = append(out, item.Name)
		case item.MinStock.IsPositive() && item.Qty.LessThanOrEqual(item.MinStock):
			low = append(low, item.Name)
		}
	}
	if len(out) > 0 {
		fmt.Fprintf(b, "재료 품절: %s\n", strings.Join(out, ", "))
	}
	if len(low) > 0 {
		fmt.Fprintf(b, "재료 부족: %s\n", strings.Join(low, ", "))
	}
	if products > 0 {
		fmt.Fprintf(b, "완성품: %d종\n", products)
	}
}

func composeBaking(b *strings.Builder, cd *state.ChatData, now time.Time) {
	if len(cd.Baking.Recipes) > 0 {
		names := make([]string, 0, len(cd.Baking.Recipes))
		for _, r := range cd.Baking.Recipes {
			names = append(names, r.Name)
		}
		fmt.Fprintf(b, "레시피: %s\n", strings.Join(names, ", "))
	}
	if cd.Baking.LastEvent != "" && now.Sub(cd.Baking.LastEventAt) <= recentEventWindow {
		fmt.Fprintf(b, "방금: %s\n", cd.Baking.LastEvent)
	}
}

func composeSocial(b *strings.Builder, cd *state.ChatData) {
	s := cd.Social
	if s.Followers == 0 && len(s.Posts) == 0 {
		return
	}
	fmt.Fprintf(b, "인스타그램: 팔로워 %s명", comma(s.Followers))
	if s.FollowerChange != 0 {
		fmt.Fprintf(b, " (이번 달 %+d)", s.FollowerChange)
	}
	pending := 0
	for _, dm := range s.DMs {
		if dm.Status == state.DMPending {
			pending++
		}
	}
	if pending > 0 {
		fmt.Fprintf(b, ", 대기 중 DM %d건", pending)
	}
	b.WriteString("\n")
}

func composeShop(b *strings.Builder, cd *state.ChatData, today engine.Date) {
	status := "영업 종료"
	if cd.Shop.IsOpen {
		status = "영업 중"
	}
	name := cd.Ledger.ShopMode.ShopName
	if name == "" {
		name = "가게"
	}
	fmt.Fprintf(b, "%s: %s\n", name, status)

	var stock []string
	for _, item := range cd.Inventory.Items {
		if item.Type != state.TypeProduct {
			continue
		}
		badge := ""
		switch {
		case item.Qty.Sign() <= 0:
			badge = " [품절]"
		case item.MinStock.IsPositive() && item.Qty.LessThanOrEqual(item.MinStock):
			badge = " [부족]"
		}
		stock = append(stock, fmt.Sprintf("%s %s%s%s", item.Name, item.Qty.String(), item.Unit, badge))
	}
	if len(stock) > 0 {
		fmt.Fprintf(b, "판매 가능: %s\n", strings.Join(stock, ", "))
	}

	var onDuty []string
	for _, sh := range cd.Shop.Shifts {
		if sh.Status == state.ShiftScheduled && sh.Date.Equal(today) {
			onDuty = append(onDuty, sh.StaffName)
		}
	}
	if len(onDuty) > 0 {
		fmt.Fprintf(b, "오늘 근무: %s\n", strings.Join(onDuty, ", "))
	}
}

// tagReference is the literal usage guide appended to every prompt so
// the model knows how to emit events.
const tagReference = `
[태그 사용법]
수입: <FIN_IN>내용|금액</FIN_IN>
지출: <FIN_OUT>내용|금액</FIN_OUT>
판매: <SALE>메뉴|수량|단가</SALE>
선물: <GIFT>제품|수량|받는사람</GIFT>
베이킹: <BAKE>메뉴|수량|기한</BAKE>
쇼핑: <SHOP>품목|수량|단위|가격|장소</SHOP>
`

// comma formats an amount with thousands separators.
func comma(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
