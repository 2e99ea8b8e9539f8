package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/customer-service/internal/handler"
	"github.com/unclebandit/customer-service/internal/logger"
	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/repository"
	"github.com/unclebandit/customer-service/internal/service"
)

// --- Test helpers ---

func newRouter(repo repository.CustomerRepositoryInterface) http.Handler {
	svc := &service.CustomerService{CustomerRepo: repo, Logger: logger.Discard()}
	h := handler.NewCustomerHandler(svc, logger.Discard())

	r := chi.NewRouter()
	r.Route("/customers", h.Routes)
	r.Get("/readiness", h.Readiness)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func create(t *testing.T, h http.Handler, name, dob, interests string) model.Customer {
	t.Helper()
	w := do(t, h, http.MethodPost, "/customers", map[string]string{
		"name":        name,
		"dateOfBirth": dob,
		"interests":   interests,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	return decode[model.Customer](t, w)
}

// --- Tests ---

func TestCreateThenGet(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	created := create(t, h, "Alice", "1990-01-01", "chess")
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	w := do(t, h, http.MethodGet, "/customers/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["id"] != created.ID || raw["name"] != "Alice" || raw["dateOfBirth"] != "1990-01-01" || raw["interests"] != "chess" {
		t.Errorf("unexpected body: %v", raw)
	}
}

func TestListSortedByName(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	w := do(t, h, http.MethodGet, "/customers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}

	create(t, h, "Bob", "1985-03-14", "")
	create(t, h, "Alice", "1990-01-01", "chess")

	w = do(t, h, http.MethodGet, "/customers", nil)
	list := decode[[]model.Customer](t, w)
	if len(list) != 2 || list[0].Name != "Alice" || list[1].Name != "Bob" {
		t.Errorf("expected [Alice Bob], got %+v", list)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	w := do(t, h, http.MethodGet, "/customers/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if body := decode[map[string]any](t, w); body["error"] != "customer not found" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestUpdate(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())
	created := create(t, h, "Alice", "1990-01-01", "chess")

	w := do(t, h, http.MethodPut, "/customers", map[string]string{
		"id":          "nope",
		"name":        "Ghost",
		"dateOfBirth": "2000-01-01",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing id, got %d", w.Code)
	}

	w = do(t, h, http.MethodPut, "/customers", map[string]string{
		"id":          created.ID,
		"name":        "Alicia",
		"dateOfBirth": "1991-02-03",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	updated := decode[model.Customer](t, w)
	if updated.ID != created.ID || updated.Name != "Alicia" {
		t.Errorf("unexpected update response: %+v", updated)
	}

	got := decode[model.Customer](t, do(t, h, http.MethodGet, "/customers/"+created.ID, nil))
	if got.Name != "Alicia" || got.DateOfBirth.String() != "1991-02-03" || got.Interests != "" {
		t.Errorf("expected all fields replaced, got %+v", got)
	}
}

func TestUpdateAcceptsLegacyID(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())
	created := create(t, h, "Alice", "1990-01-01", "")

	w := do(t, h, http.MethodPut, "/customers", map[string]string{
		"_id":         created.ID,
		"name":        "Alice",
		"dateOfBirth": "1990-01-01T00:00:00.000Z",
		"interests":   "go",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if got := decode[model.Customer](t, w); got.Interests != "go" || got.DateOfBirth.String() != "1990-01-01" {
		t.Errorf("unexpected customer: %+v", got)
	}
}

func TestZeroDateIsNotPersisted(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	w := do(t, h, http.MethodPost, "/customers", map[string]string{"name": "Old", "dateOfBirth": "0001-01-01"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
	}
	if list := decode[[]model.Customer](t, do(t, h, http.MethodGet, "/customers", nil)); len(list) != 0 {
		t.Errorf("expected nothing stored, got %+v", list)
	}
}

func TestLegacyIDRoundTrip(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())
	created := create(t, h, "Alice", "1990-01-01", "chess")

	// read the record the way a client keyed on "_id" does
	list := decode[[]map[string]any](t, do(t, h, http.MethodGet, "/customers", nil))
	if len(list) != 1 {
		t.Fatalf("expected one customer, got %v", list)
	}
	legacyID, _ := list[0]["_id"].(string)
	if legacyID != created.ID {
		t.Fatalf("expected _id %q in list item, got %v", created.ID, list[0])
	}

	w := do(t, h, http.MethodPut, "/customers", map[string]any{
		"_id":         legacyID,
		"name":        list[0]["name"],
		"dateOfBirth": list[0]["dateOfBirth"],
		"interests":   "go",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	updated := decode[map[string]any](t, w)
	if updated["_id"] != created.ID || updated["id"] != created.ID || updated["interests"] != "go" {
		t.Errorf("unexpected update response: %v", updated)
	}

	got := decode[model.Customer](t, do(t, h, http.MethodGet, "/customers/"+legacyID, nil))
	if got.Interests != "go" || got.DateOfBirth.String() != "1990-01-01" {
		t.Errorf("update not visible on get: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())
	created := create(t, h, "Alice", "1990-01-01", "chess")

	w := do(t, h, http.MethodDelete, "/customers/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if removed := decode[model.Customer](t, w); removed.ID != created.ID || removed.Name != "Alice" {
		t.Errorf("expected removed customer echoed back, got %+v", removed)
	}

	if w := do(t, h, http.MethodGet, "/customers/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
	if list := decode[[]model.Customer](t, do(t, h, http.MethodGet, "/customers", nil)); len(list) != 0 {
		t.Errorf("expected empty list after delete, got %+v", list)
	}
	if w := do(t, h, http.MethodDelete, "/customers/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestValidation(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	tests := []struct {
		name    string
		method  string
		body    any
		details []string
	}{
		{
			name:    "missing everything",
			method:  http.MethodPost,
			body:    map[string]string{},
			details: []string{"name is required", "dateOfBirth is required"},
		},
		{
			name:    "blank name",
			method:  http.MethodPost,
			body:    map[string]string{"name": "   ", "dateOfBirth": "1990-01-01"},
			details: []string{"name is required"},
		},
		{
			name:    "bad date",
			method:  http.MethodPost,
			body:    map[string]string{"name": "Alice", "dateOfBirth": "01/01/1990"},
			details: []string{"dateOfBirth must be a date in YYYY-MM-DD format"},
		},
		{
			name:    "zero date",
			method:  http.MethodPost,
			body:    map[string]string{"name": "Old", "dateOfBirth": "0001-01-01"},
			details: []string{"dateOfBirth must be a valid date"},
		},
		{
			name:    "zero timestamp",
			method:  http.MethodPost,
			body:    map[string]string{"name": "Old", "dateOfBirth": "0001-01-01T00:00:00Z"},
			details: []string{"dateOfBirth must be a valid date"},
		},
		{
			name:    "update without id",
			method:  http.MethodPut,
			body:    map[string]string{"name": "Alice", "dateOfBirth": "1990-01-01"},
			details: []string{"id is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, "/customers", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", w.Code, w.Body.String())
			}
			var body struct {
				Error   string   `json:"error"`
				Details []string `json:"details"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if strings.Join(body.Details, "|") != strings.Join(tt.details, "|") {
				t.Errorf("expected details %v, got %v", tt.details, body.Details)
			}
		})
	}
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	h := newRouter(repository.NewMemoryCustomerRepository())

	w := do(t, h, http.MethodPost, "/customers", `{"name": "Alice",`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// failingRepo simulates an unreachable store.
type failingRepo struct{}

var errStoreDown = errors.New("connection refused: mongo://10.0.0.5")

func (failingRepo) List(context.Context) ([]model.Customer, error) { return nil, errStoreDown }
func (failingRepo) GetByID(context.Context, string) (*model.Customer, error) {
	return nil, errStoreDown
}
func (failingRepo) Create(context.Context, *model.Customer) (*model.Customer, error) {
	return nil, errStoreDown
}
func (failingRepo) Update(context.Context, *model.Customer) (*model.Customer, error) {
	return nil, errStoreDown
}
func (failingRepo) Delete(context.Context, string) (*model.Customer, error) {
	return nil, errStoreDown
}
func (failingRepo) Ping(context.Context) error { return errStoreDown }

func TestStoreFailureIsGenericServerError(t *testing.T) {
	h := newRouter(failingRepo{})

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/customers", nil},
		{http.MethodGet, "/customers/abc", nil},
		{http.MethodPost, "/customers", map[string]string{"name": "A", "dateOfBirth": "1990-01-01"}},
		{http.MethodPut, "/customers", map[string]string{"id": "abc", "name": "A", "dateOfBirth": "1990-01-01"}},
		{http.MethodDelete, "/customers/abc", nil},
	} {
		w := do(t, h, tc.method, tc.path, tc.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: expected 500, got %d", tc.method, tc.path, w.Code)
			continue
		}
		if strings.Contains(w.Body.String(), "10.0.0.5") {
			t.Errorf("%s %s: internal error leaked to client: %s", tc.method, tc.path, w.Body.String())
		}
	}

	if w := do(t, h, http.MethodGet, "/readiness", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 from readiness, got %d", w.Code)
	}
}
