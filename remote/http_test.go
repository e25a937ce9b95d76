package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio/record"
	"portfolio/remote"
	"portfolio/server"
	"portfolio/store"
)

func newServer(t *testing.T) (*server.Api, string) {
	t.Helper()
	a := server.New("localhost", 0, store.NewMemoryStore())
	if err := a.Seed(time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(a.Router)
	t.Cleanup(ts.Close)
	return a, ts.URL
}

func TestHTTPSourceRoundTrip(t *testing.T) {
	_, url := newServer(t)
	src := remote.NewHTTPSource[record.Tenant](url, "tenants")
	ctx := context.Background()

	all, err := src.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d tenants, want 5", len(all))
	}

	created, err := src.Create(ctx, record.Tenant{FirstName: "Dana", LastName: "Reyes", Status: record.TenantActive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 6 {
		t.Errorf("created id = %d, want 6", created.ID)
	}

	updated, err := src.Update(ctx, created.ID, record.Patch{"monthly_rent": 1850})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MonthlyRent != 1850 || updated.FirstName != "Dana" {
		t.Errorf("updated = %+v", updated)
	}

	got, err := src.GetOne(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MonthlyRent != 1850 {
		t.Errorf("get after update = %+v", got)
	}

	if err := src.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := src.GetOne(ctx, created.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}
}

func TestHTTPSourceStatusError(t *testing.T) {
	a, url := newServer(t)
	a.Down.Store(true)
	src := remote.NewHTTPSource[record.Property](url, "properties")

	_, err := src.ListAll(context.Background())
	var statusErr *remote.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", statusErr.StatusCode)
	}
	if statusErr.Message == "" {
		t.Error("error message from the body was not decoded")
	}
	if errors.Is(err, remote.ErrNotFound) {
		t.Error("503 must not match ErrNotFound")
	}
}

func TestHTTPSourceWithoutDelete(t *testing.T) {
	_, url := newServer(t)
	src := remote.NewHTTPSource[record.Maintenance](url, "maintenance", remote.WithoutDelete())

	if err := src.Delete(context.Background(), 1); !errors.Is(err, remote.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if _, err := src.GetOne(context.Background(), 1); err != nil {
		t.Errorf("maintenance request was touched by delete: %v", err)
	}
}

func TestHTTPSourceTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	src := remote.NewHTTPSource[record.Event](url, "events", remote.WithClient(&http.Client{Timeout: time.Second}))
	if _, err := src.ListAll(context.Background()); err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestHTTPSourceRequestID(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(remote.RequestIDHeader)
		w.Write([]byte("[]"))
	}))
	defer ts.Close()

	src := remote.NewHTTPSource[record.Event](ts.URL+"/", "/events/")
	items, err := src.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %v, want empty slice", items)
	}
	if got == "" {
		t.Error("request id header not set")
	}
}

func TestReadOnly(t *testing.T) {
	_, url := newServer(t)
	src := remote.ReadOnly[record.MarketTrend]{Source: remote.NewHTTPSource[record.MarketTrend](url, "market/trends")}
	ctx := context.Background()

	trends, err := src.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trends) != 4 {
		t.Errorf("got %d trends, want 4", len(trends))
	}
	if _, err := src.Create(ctx, record.MarketTrend{}); !errors.Is(err, remote.ErrUnsupported) {
		t.Errorf("create err = %v", err)
	}
	if _, err := src.Update(ctx, 1, record.Patch{}); !errors.Is(err, remote.ErrUnsupported) {
		t.Errorf("update err = %v", err)
	}
	if err := src.Delete(ctx, 1); !errors.Is(err, remote.ErrUnsupported) {
		t.Errorf("delete err = %v", err)
	}
}
