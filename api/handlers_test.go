package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/life-engine/api"
	"github.com/warp/life-engine/metrics"
	"github.com/warp/life-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	router http.Handler
	store  *store.Memory
}

func newTestAPI(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	h := api.NewHandler(st, metrics.New(), api.Options{})
	return &fixture{router: api.NewRouter(h), store: st}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// =============================================================================
// LEDGER OVER HTTP
// =============================================================================

func TestTransactions_EndToEnd(t *testing.T) {
	// GIVEN: a pinned date
	// WHEN: booking income then deleting it
	// THEN: the balance moves and moves back

	f := newTestAPI(t)
	w := f.do(t, "POST", "/api/chats/c1/date", map[string]string{"date": "2025-03-10"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "POST", "/api/chats/c1/transactions", map[string]any{
		"type": "income", "description": "용돈", "amount": 50000,
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	cd, err := f.store.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), cd.Ledger.Living)
	require.Len(t, cd.Ledger.Transactions, 1)
	txID := cd.Ledger.Transactions[0].ID

	w = f.do(t, "DELETE", fmt.Sprintf("/api/chats/c1/transactions/%d", txID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	cd, _ = f.store.Get("c1")
	assert.Zero(t, cd.Ledger.Living)
}

func TestErrorMapping(t *testing.T) {
	f := newTestAPI(t)

	// Malformed body: 400 with the error envelope.
	req := httptest.NewRequest("POST", "/api/chats/c1/transactions", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	// Missing record: 404.
	w = f.do(t, "DELETE", "/api/chats/c1/transactions/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Shop surface while shop mode is off: 409.
	w = f.do(t, "POST", "/api/chats/c1/shop/sales", map[string]any{
		"menuName": "스콘", "quantity": 1, "unitPrice": 3000,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Insufficient funds: 400.
	w = f.do(t, "POST", "/api/chats/c1/shop-mode", map[string]any{
		"enabled": true, "initialFund": 1_000_000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopMode_EnableThenSell(t *testing.T) {
	f := newTestAPI(t)
	f.do(t, "POST", "/api/chats/c1/transactions", map[string]any{
		"type": "income", "description": "시드머니", "amount": 500_000,
	})

	w := f.do(t, "POST", "/api/chats/c1/shop-mode", map[string]any{
		"enabled": true, "initialFund": 300_000, "shopName": "작은 오븐",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "POST", "/api/chats/c1/shop/sales", map[string]any{
		"menuName": "스콘", "quantity": 2, "unitPrice": 3000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cd, _ := f.store.Get("c1")
	assert.Equal(t, "작은 오븐", cd.Ledger.ShopMode.ShopName)
	assert.Equal(t, int64(306_000), cd.Ledger.ShopMode.OperatingFund)
	assert.Equal(t, int64(200_000), cd.Ledger.Living)
	require.Len(t, cd.Shop.Sales, 1)
}

// =============================================================================
// SCAN AND PROMPT
// =============================================================================

func TestScan_MutatesStateAndReportsCount(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "POST", "/api/chats/c1/scan", map[string]string{
		"text": "<DATE>2025-03-10</DATE> 용돈 받음 <FIN_IN>용돈|30000</FIN_IN>",
	})
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var res api.ScanResultDTO
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 2, res.Applied)

	cd, _ := f.store.Get("c1")
	assert.Equal(t, int64(30000), cd.Ledger.Living)
	assert.Equal(t, "2025-03-10", cd.RPDate.String())
}

func TestGetPrompt_ComposesStateBlock(t *testing.T) {
	f := newTestAPI(t)
	f.do(t, "POST", "/api/chats/c1/scan", map[string]string{"text": "<FIN_IN>용돈|30000</FIN_IN>"})

	w := f.do(t, "GET", "/api/chats/c1/prompt", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dto api.PromptDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	assert.Contains(t, dto.Prompt, "[현재 상태]")
	assert.Contains(t, dto.Prompt, "생활비: 30,000원")
	assert.Contains(t, dto.Prompt, "[태그 사용법]")
}

func TestInjectPrompt_AppendsSystemMessage(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "POST", "/api/chats/c1/prompt/inject", map[string]any{
		"payload": map[string]any{
			"model":    "x",
			"messages": []map[string]string{{"role": "user", "content": "안녕"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Messages []map[string]string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "system", out.Messages[1]["role"])
	assert.Contains(t, out.Messages[1]["content"], "[현재 상태]")
}

func TestInjectPrompt_RejectsUnknownShape(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "POST", "/api/chats/c1/prompt/inject", map[string]any{
		"payload": map[string]string{"foo": "bar"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// CHATS, PREFS, SCENARIOS, METRICS
// =============================================================================

func TestListChats(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "GET", "/api/chats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	f.do(t, "GET", "/api/chats/c1/", nil)
	w = f.do(t, "GET", "/api/chats", nil)
	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.Equal(t, []string{"c1"}, ids)
}

func TestPrefs_RoundTrip(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "PUT", "/api/prefs", map[string]any{
		"panelOpen": true, "openModules": []string{"ledger"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/api/prefs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p struct {
		PanelOpen   bool     `json:"panelOpen"`
		OpenModules []string `json:"openModules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.True(t, p.PanelOpen)
	assert.Equal(t, []string{"ledger"}, p.OpenModules)
}

func TestScenarios_ListAndLoad(t *testing.T) {
	f := newTestAPI(t)
	w := f.do(t, "GET", "/api/scenarios/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []api.ScenarioDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)

	w = f.do(t, "POST", "/api/scenarios/load", map[string]string{
		"scenarioId": "bakery-start", "chatId": "demo",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cd, err := f.store.Get("demo")
	require.NoError(t, err)
	assert.Positive(t, cd.Ledger.Living)
	assert.NotEmpty(t, cd.Baking.Recipes)
	assert.NotEmpty(t, cd.Inventory.Items)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newTestAPI(t)
	f.do(t, "POST", "/api/chats/c1/scan", map[string]string{"text": "<FIN_IN>용돈|1000</FIN_IN>"})

	w := f.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "life_engine_tags_scanned_total")
}
