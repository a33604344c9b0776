package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestMarketAddresses(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["9wFF8Y4mDmRbschQxgPeyhibK2CzDQqgxEnLnFLwWSCn","8pQrbXFMPHhqzKcorNXRBdfwoK2pgLmNMXW2AAJyc2o1"]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sekrit")
	addresses, err := client.MarketAddresses(context.Background())
	if err != nil {
		t.Fatalf("market addresses: %v", err)
	}

	want := []string{
		"9wFF8Y4mDmRbschQxgPeyhibK2CzDQqgxEnLnFLwWSCn",
		"8pQrbXFMPHhqzKcorNXRBdfwoK2pgLmNMXW2AAJyc2o1",
	}
	if !reflect.DeepEqual(addresses, want) {
		t.Fatalf("addresses mismatch: %v", addresses)
	}
	if gotAuth != "Bearer sekrit" {
		t.Fatalf("auth header mismatch: %q", gotAuth)
	}
	if gotPath != "/markets/addresses" {
		t.Fatalf("path mismatch: %q", gotPath)
	}
}

func TestCheckOrdersAndFills(t *testing.T) {
	var gotMarket string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cron/checkOrdersAndFills" {
			http.NotFound(w, r)
			return
		}
		gotMarket = r.URL.Query().Get("marketAddress")
		_, _ = w.Write([]byte(`{"checked":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if err := client.CheckOrdersAndFills(context.Background(), "someMarket"); err != nil {
		t.Fatalf("check orders and fills: %v", err)
	}
	if gotMarket != "someMarket" {
		t.Fatalf("market query param mismatch: %q", gotMarket)
	}
}

func TestCheckOrdersAndFillsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if err := client.CheckOrdersAndFills(context.Background(), "m"); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}
