package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio/record"
	"portfolio/remote"
	"portfolio/store"
)

var now = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestApi(t *testing.T, seed bool) *Api {
	t.Helper()
	a := New("localhost", 0, store.NewMemoryStore())
	clock := func() time.Time { return now }
	a.Properties.Now = clock
	a.Tenants.Now = clock
	a.Events.Now = clock
	a.Maintenance.Now = clock
	a.Trends.Now = clock
	a.Reminders.Now = clock
	if seed {
		if err := a.Seed(now); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return a
}

func serve(t *testing.T, a *Api, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestListSeeded(t *testing.T) {
	a := newTestApi(t, true)

	rec := serve(t, a, http.MethodGet, "/properties", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	props := decode[[]record.Property](t, rec)
	if len(props) != 4 {
		t.Fatalf("got %d properties, want 4", len(props))
	}
	for i := 1; i < len(props); i++ {
		if props[i-1].ID < props[i].ID {
			t.Errorf("properties not sorted by id descending: %d before %d", props[i-1].ID, props[i].ID)
		}
	}
}

func TestListEmpty(t *testing.T) {
	a := newTestApi(t, false)

	rec := serve(t, a, http.MethodGet, "/tenants", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := bytes.TrimSpace(rec.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	a := newTestApi(t, true)

	rec := serve(t, a, http.MethodPost, "/properties", record.Property{Title: "Loft", City: "Austin", Status: record.PropertyVacant})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	created := decode[record.Property](t, rec)
	if created.ID != 5 {
		t.Errorf("created id = %d, want 5", created.ID)
	}
	if !created.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", created.CreatedAt, now)
	}

	later := now.Add(time.Hour)
	a.Properties.Now = func() time.Time { return later }
	rec = serve(t, a, http.MethodPut, "/properties/5", record.Patch{"title": "Penthouse", "id": 99})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	updated := decode[record.Property](t, rec)
	if updated.Title != "Penthouse" || updated.City != "Austin" {
		t.Errorf("update result = %+v", updated)
	}
	if updated.ID != 5 {
		t.Errorf("update changed id to %d", updated.ID)
	}
	if !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(now) {
		t.Errorf("timestamps = %v / %v", updated.CreatedAt, updated.UpdatedAt)
	}

	rec = serve(t, a, http.MethodDelete, "/properties/5", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = serve(t, a, http.MethodGet, "/properties/5", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", rec.Code)
	}
	e := decode[remote.ErrResponse](t, rec)
	if e.HTTPStatusCode != http.StatusNotFound || e.Message == "" {
		t.Errorf("error body = %+v", e)
	}
}

func TestErrors(t *testing.T) {
	a := newTestApi(t, true)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown id", http.MethodGet, "/tenants/404", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/tenants/abc", nil, http.StatusBadRequest},
		{"zero id", http.MethodPut, "/events/0", record.Patch{}, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/events/404", record.Patch{"title": "x"}, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/events/404", nil, http.StatusNotFound},
		{"maintenance has no delete", http.MethodDelete, "/maintenance/1", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, a, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestOutage(t *testing.T) {
	a := newTestApi(t, true)
	a.Down.Store(true)

	rec := serve(t, a, http.MethodGet, "/properties", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	health := decode[map[string]string](t, serve(t, a, http.MethodGet, "/health", nil))
	if health["status"] != "down" {
		t.Errorf("health = %v", health)
	}

	a.Down.Store(false)
	if rec := serve(t, a, http.MethodGet, "/properties", nil); rec.Code != http.StatusOK {
		t.Errorf("status after recovery = %d", rec.Code)
	}
}

func TestMarketTrends(t *testing.T) {
	a := newTestApi(t, true)

	trends := decode[[]record.MarketTrend](t, serve(t, a, http.MethodGet, "/market/trends", nil))
	if len(trends) != 4 {
		t.Fatalf("got %d trends, want 4", len(trends))
	}

	filtered := decode[[]record.MarketTrend](t, serve(t, a, http.MethodGet, "/market/trends?location=Denver,+CO", nil))
	if len(filtered) != 1 || filtered[0].Location != "Denver, CO" {
		t.Fatalf("filtered = %+v", filtered)
	}

	rec := serve(t, a, http.MethodPost, "/market/scrape", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("scrape status = %d", rec.Code)
	}
	after := decode[[]record.MarketTrend](t, serve(t, a, http.MethodGet, "/market/trends?location=Denver,+CO", nil))
	series := after[0].TimeSeries
	if len(series) != len(filtered[0].TimeSeries)+1 {
		t.Fatalf("series length = %d, want %d", len(series), len(filtered[0].TimeSeries)+1)
	}
	prev, last := series[len(series)-2], series[len(series)-1]
	if !last.Date.Equal(prev.Date.AddDate(0, 1, 0)) {
		t.Errorf("scraped point date = %v, want month after %v", last.Date, prev.Date)
	}
	ratio := last.MedianPrice / prev.MedianPrice
	if ratio < 0.98-1e-9 || ratio > 1.03+1e-9 {
		t.Errorf("drift ratio %v out of bounds", ratio)
	}
}

func TestRepositorySequence(t *testing.T) {
	db := store.NewMemoryStore()
	repo := NewRepository[record.Tenant]("tenants", db)

	first, err := repo.Create(record.Tenant{FirstName: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != 1 {
		t.Errorf("first id = %d, want 1", first.ID)
	}
	if err := repo.Delete(first.ID); err != nil {
		t.Fatal(err)
	}
	second, err := repo.Create(record.Tenant{FirstName: "Ben"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != 2 {
		t.Errorf("ids must not be reused: got %d, want 2", second.ID)
	}

	reopened := NewRepository[record.Tenant]("tenants", db)
	third, err := reopened.Create(record.Tenant{FirstName: "Cy"})
	if err != nil {
		t.Fatal(err)
	}
	if third.ID != 3 {
		t.Errorf("sequence not persisted: got %d, want 3", third.ID)
	}
}

func TestReminders(t *testing.T) {
	a := newTestApi(t, true)

	rec := serve(t, a, http.MethodGet, "/reminders", nil)
	if got := bytes.TrimSpace(rec.Body.Bytes()); rec.Code != http.StatusOK || string(got) != "[]" {
		t.Fatalf("list = %d %s, want 200 []", rec.Code, got)
	}

	rec = serve(t, a, http.MethodPost, "/reminders", record.Reminder{Title: "Renew insurance", DueDate: "2024-04-01", ReminderType: "insurance", PropertyID: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	created := decode[record.Reminder](t, rec)
	if created.ID != 1 || created.Completed {
		t.Errorf("created = %+v", created)
	}

	rec = serve(t, a, http.MethodPut, "/reminders/1", record.Patch{"completed": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if updated := decode[record.Reminder](t, rec); !updated.Completed || updated.Title != "Renew insurance" {
		t.Errorf("updated = %+v", updated)
	}

	if rec := serve(t, a, http.MethodDelete, "/reminders/1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := serve(t, a, http.MethodDelete, "/reminders/1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestMarketTrend_GetOne(t *testing.T) {
	a := newTestApi(t, true)

	rec := serve(t, a, http.MethodGet, "/market/trends/3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if trend := decode[record.MarketTrend](t, rec); trend.ID != 3 || trend.Location != "Denver, CO" {
		t.Errorf("trend = %d %q", trend.ID, trend.Location)
	}
	if rec := serve(t, a, http.MethodGet, "/market/trends/99", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown trend status = %d, want 404", rec.Code)
	}
}
