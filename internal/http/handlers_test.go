package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/logger"

	"stockpass/internal/repository"
	"stockpass/internal/service"
)

func TestMain(m *testing.M) {
	lg := logger.Init("httpapi_test", false, false, io.Discard)
	code := m.Run()
	lg.Close()
	os.Exit(code)
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	ticketsRepo := repository.NewMemoryTickets(store)
	statusRepo := repository.NewMemoryStatus(store)
	tx := repository.NewMemoryTx(store)
	productsSvc := service.NewProductService(store, tx)
	ticketsSvc := service.NewTicketService(store, ticketsRepo, tx)
	statusSvc := service.NewStatusService(statusRepo)
	return NewServer(productsSvc, ticketsSvc, statusSvc)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestRoot(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("root code %v", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["message"] != "Hello World" {
		t.Fatalf("root message %q", body["message"])
	}
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	// create
	w := doJSON(t, s, http.MethodPost, "/api/products", map[string]any{
		"product_id": "P1", "name": "Widget", "value": 9.99, "stock": 10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create code %v: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	decode(t, w, &created)
	if created["qr_code_data"] != "Product: Widget\nID: P1\nValue: $9.99" {
		t.Fatalf("qr data %q", created["qr_code_data"])
	}

	// duplicate product_id
	w = doJSON(t, s, http.MethodPost, "/api/products", map[string]any{
		"product_id": "P1", "name": "Other", "value": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create code %v", w.Code)
	}

	// get
	w = doJSON(t, s, http.MethodGet, "/api/products/P1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}

	// partial update: stock only
	w = doJSON(t, s, http.MethodPut, "/api/products/P1", map[string]any{"stock": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %s", w.Code, w.Body.String())
	}
	var updated map[string]any
	decode(t, w, &updated)
	if updated["stock"].(float64) != 7 {
		t.Fatalf("stock not updated: %v", updated["stock"])
	}
	if updated["qr_code_data"] != created["qr_code_data"] {
		t.Fatalf("stock-only update changed qr data")
	}

	// list with status filter
	w = doJSON(t, s, http.MethodGet, "/api/products?status=active", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 active product, got %d", len(list))
	}

	// delete
	w = doJSON(t, s, http.MethodDelete, "/api/products/P1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/products/P1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %v", w.Code)
	}
}

func TestTicketFlow(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/products", map[string]any{
		"product_id": "P1", "name": "Widget", "value": 9.99, "stock": 10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create product %v", w.Code)
	}

	// issue 5
	w = doJSON(t, s, http.MethodPost, "/api/tickets", map[string]any{
		"product_id": "P1", "quantity": 5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("issue code %v: %s", w.Code, w.Body.String())
	}
	var tickets []map[string]any
	decode(t, w, &tickets)
	if len(tickets) != 5 {
		t.Fatalf("expected 5 tickets, got %d", len(tickets))
	}
	for _, tk := range tickets {
		if tk["is_redeemed"].(bool) {
			t.Fatalf("fresh ticket redeemed")
		}
	}

	// stock reduced
	w = doJSON(t, s, http.MethodGet, "/api/products/P1", nil)
	var p map[string]any
	decode(t, w, &p)
	if p["stock"].(float64) != 5 {
		t.Fatalf("stock expected 5, got %v", p["stock"])
	}

	// overdraw
	w = doJSON(t, s, http.MethodPost, "/api/tickets", map[string]any{
		"product_id": "P1", "quantity": 6,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overdraw code %v", w.Code)
	}

	// issue for missing product
	w = doJSON(t, s, http.MethodPost, "/api/tickets", map[string]any{
		"product_id": "missing", "quantity": 1,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing product code %v", w.Code)
	}

	// list by product
	w = doJSON(t, s, http.MethodGet, "/api/tickets/product/P1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list by product %v", w.Code)
	}
	decode(t, w, &tickets)
	if len(tickets) != 5 {
		t.Fatalf("expected 5 tickets for P1, got %d", len(tickets))
	}

	// get one
	id := tickets[0]["id"].(string)
	w = doJSON(t, s, http.MethodGet, "/api/tickets/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get ticket %v", w.Code)
	}
}

func TestRedeemFlow(t *testing.T) {
	s := setupServer(t)
	_ = doJSON(t, s, http.MethodPost, "/api/products", map[string]any{
		"product_id": "P1", "name": "Widget", "value": 9.99, "stock": 10,
	})
	w := doJSON(t, s, http.MethodPost, "/api/tickets", map[string]any{"product_id": "P1"})
	if w.Code != http.StatusOK {
		t.Fatalf("issue %v", w.Code)
	}
	var tickets []map[string]any
	decode(t, w, &tickets)
	if len(tickets) != 1 {
		t.Fatalf("default quantity should issue 1 ticket, got %d", len(tickets))
	}
	id := tickets[0]["id"].(string)

	// first redemption succeeds
	w = doJSON(t, s, http.MethodPost, "/api/tickets/redeem", map[string]any{"ticket_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("redeem code %v: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	decode(t, w, &body)
	ticket := body["ticket"].(map[string]any)
	if ticket["is_redeemed"] != true || ticket["redeemed_at"] == nil {
		t.Fatalf("redeemed ticket payload: %v", ticket)
	}

	// second redemption is a 400
	w = doJSON(t, s, http.MethodPost, "/api/tickets/redeem", map[string]any{"ticket_id": id})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second redeem code %v", w.Code)
	}

	// unknown ticket is a 404
	w = doJSON(t, s, http.MethodPost, "/api/tickets/redeem", map[string]any{"ticket_id": "missing"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing ticket code %v", w.Code)
	}
}

func TestStatusEndpoints(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/status", map[string]any{"client_name": "probe"})
	if w.Code != http.StatusOK {
		t.Fatalf("create status %v", w.Code)
	}
	var check map[string]any
	decode(t, w, &check)
	if check["client_name"] != "probe" || check["id"] == "" {
		t.Fatalf("status payload %v", check)
	}

	w = doJSON(t, s, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %v", w.Code)
	}
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 status check, got %d", len(list))
	}

	// missing client_name
	w = doJSON(t, s, http.MethodPost, "/api/status", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	// missing name
	w := doJSON(t, s, http.MethodPost, "/api/products", map[string]any{"value": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	// bad status filter
	w = doJSON(t, s, http.MethodGet, "/api/products?status=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	// update on missing product
	w = doJSON(t, s, http.MethodPut, "/api/products/missing", map[string]any{"stock": 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
}
