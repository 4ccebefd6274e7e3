package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
	"github.com/usere2211-alt/finance-dashboard/internal/store/memory"
	"github.com/usere2211-alt/finance-dashboard/internal/store/storetest"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	e1 := storetest.Expense("2024-01-10", 10000, "Groceries", "Food")
	e1.ID = "e1"
	e2 := storetest.Expense("2024-02-03", 20000, "Groceries", "Food")
	e2.ID = "e2"
	st := memory.NewWithData(
		[]core.Transaction{e1, e2, storetest.Income("2024-01-31", 300000, "ACME", "Salary")},
		[]core.BudgetLimit{{Category: "Food", Limit: core.Money{Cents: 25000}}},
	)
	srv := NewServer(":0", services.NewLedgerService(st, nil, nil), Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/healthz", nil, false)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz = %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodGet, "/readyz", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz = %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("security headers missing")
	}
}

func TestIndexRendersOverview(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Dashboard", "€300,00", "€3000,00", "Food"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}

	rr = do(t, srv, http.MethodGet, "/ui/overview?start=2024-02-01", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("overview partial status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<html") {
		t.Error("partial should not include the layout")
	}
	if !strings.Contains(rr.Body.String(), "€200,00") {
		t.Error("partial should only count February expenses")
	}

	rr = do(t, srv, http.MethodGet, "/?start=not-a-date", nil, false)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad period status = %d", rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, st := newTestServer(t)

	form := url.Values{"date": {"2024-03-01"}, "amount": {"12,50"}, "description": {"Lunch"}, "category": {"Food"}}
	rr := do(t, srv, http.MethodPost, "/expenses", form, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"records:changed", "form:reset", "overview:refresh", "show-notification"} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger %q missing %q", trigger, want)
		}
	}

	txs, _ := st.List(context.Background(), core.KindExpense)
	if len(txs) != 3 || txs[2].Amount.Cents != 1250 || txs[2].Label != "Lunch" {
		t.Fatalf("stored = %+v", txs)
	}
	if srv.created.Load() != 1 {
		t.Errorf("created counter = %d", srv.created.Load())
	}
}

func TestCreateTransaction_PlainFormRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{"amount": {"100"}, "source": {"Bonus"}}
	rr := do(t, srv, http.MethodPost, "/income", form, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/income" {
		t.Fatalf("status = %d location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"zero amount", url.Values{"amount": {"0"}}},
		{"negative amount", url.Values{"amount": {"-3"}}},
		{"bad date", url.Values{"amount": {"3"}, "date": {"2024-13-01"}}},
		{"long label", url.Values{"amount": {"3"}, "description": {strings.Repeat("x", 201)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, st := newTestServer(t)
			rr := do(t, srv, http.MethodPost, "/expenses", tt.form, true)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rr.Code)
			}
			if txs, _ := st.List(context.Background(), core.KindExpense); len(txs) != 2 {
				t.Errorf("store changed: %d records", len(txs))
			}
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	srv, st := newTestServer(t)

	form := url.Values{"date": {"2024-01-11"}, "amount": {"99"}, "description": {"Market"}, "category": {"Food"}}
	rr := do(t, srv, http.MethodPost, "/expenses/e1", form, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d %s", rr.Code, rr.Body.String())
	}
	got, err := st.Get(context.Background(), core.KindExpense, "e1")
	if err != nil || got.Amount.Cents != 9900 || got.Label != "Market" {
		t.Fatalf("Get(e1) = %+v, %v", got, err)
	}

	rr = do(t, srv, http.MethodPost, "/expenses/missing", form, true)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rr.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(t, srv, http.MethodDelete, "/expenses/e1", nil, true)
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Fatalf("delete = %d %q", rr.Code, rr.Body.String())
	}
	if txs, _ := st.List(context.Background(), core.KindExpense); len(txs) != 1 {
		t.Fatalf("records after delete = %d", len(txs))
	}

	rr = do(t, srv, http.MethodDelete, "/expenses/e1", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat delete status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"warning"`) {
		t.Errorf("repeat delete should warn, HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
	if srv.deleted.Load() != 1 {
		t.Errorf("deleted counter = %d", srv.deleted.Load())
	}
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/expenses", nil, false)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<html") {
		t.Fatalf("full page = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/expenses?start=2024-02-01", nil, true)
	body := rr.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("htmx request should get the table only")
	}
	if strings.Contains(body, "row-e1") || !strings.Contains(body, "row-e2") {
		t.Errorf("period filter not applied: %s", body)
	}
}

func TestBudgets(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/budgets", url.Values{"category": {"Eating out"}, "limit": {"0"}}, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("set budget = %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPost, "/budgets", url.Values{"category": {" "}, "limit": {"10"}}, true)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank category status = %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/budgets", nil, false)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "budget-over") {
		t.Errorf("budgets page should mark Food over: %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/budgets/Eating%20out", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete budget = %d", rr.Code)
	}
	limits, _ := st.Budgets(context.Background())
	if len(limits) != 1 || limits[0].Category != "Food" {
		t.Errorf("limits = %+v", limits)
	}
}

func TestDeleteBudget_EscapedCategory(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	for _, c := range []string{"50%", "a/b", "x%41"} {
		if err := st.SetBudget(ctx, core.BudgetLimit{Category: c, Limit: core.Money{Cents: 100}}); err != nil {
			t.Fatalf("SetBudget(%q) error = %v", c, err)
		}
		rr := do(t, srv, http.MethodDelete, "/budgets/"+url.PathEscape(c), nil, true)
		if rr.Code != http.StatusOK {
			t.Fatalf("delete %q = %d %s", c, rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Header().Get("HX-Trigger"), "Budget removed: "+c) {
			t.Errorf("delete %q trigger = %q", c, rr.Header().Get("HX-Trigger"))
		}
	}

	limits, _ := st.Budgets(ctx)
	if len(limits) != 1 || limits[0].Category != "Food" {
		t.Errorf("limits = %+v", limits)
	}
}

func TestExport(t *testing.T) {
	srv, st := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/export/expenses.csv", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "expenses.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "id,date,amount,description,category\ne1,2024-01-10,100.00,Groceries,Food\ne2,2024-02-03,200.00,Groceries,Food\n"
	if rr.Body.String() != want {
		t.Errorf("body = %q, want %q", rr.Body.String(), want)
	}

	if err := st.ReplaceBudgets(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	rr = do(t, srv, http.MethodGet, "/export/budgets.csv", nil, false)
	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Errorf("empty export = %d %q", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/export/expense.csv", nil, false)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown domain status = %d", rr.Code)
	}
}

func TestAPIForecast(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/forecast?strategy=trend", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got apiForecast
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	// 100.00 then 200.00: the line continues to 300.00.
	if got.Used != "trend" || got.Cents != 30000 || got.NextMonth != "2024-03" || got.State != "ok" {
		t.Errorf("forecast = %+v", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/forecast?strategy=median", nil, false)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown strategy status = %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/forecast?strategy=median", nil, false)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("forecast page unknown strategy status = %d", rr.Code)
	}
}

func TestAPIOverview(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/overview?end=2024-01-31", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got apiOverview
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ExpensesCents != 10000 || got.IncomeCents != 300000 || got.BalanceCents != 290000 {
		t.Errorf("totals = %+v", got)
	}
	if got.TopCategory == nil || got.TopCategory.Name != "Food" {
		t.Errorf("top category = %+v", got.TopCategory)
	}
	if len(got.Budgets) != 1 || got.Budgets[0].Classification != "under" || got.Budgets[0].Percentage != 40 {
		t.Errorf("budgets = %+v", got.Budgets)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/expenses", url.Values{"amount": {"1"}}, true)

	rr := do(t, srv, http.MethodGet, "/metrics", nil, false)
	body := rr.Body.String()
	for _, want := range []string{"transactions_created_total 1", "http_requests_total", "rate_limit_hits_total 0"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}
}
