package abbrev

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(r.URL.Path[1:])
		if err != nil {
			t.Fatal(err)
		}
		if name != "Journal of Testing" {
			t.Errorf("requested name = %q", name)
		}
		w.Write([]byte("J. Test.\n"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	abbrev, err := c.Lookup(context.Background(), "Journal of Testing")
	if err != nil {
		t.Fatal(err)
	}
	if abbrev != "J. Test." {
		t.Errorf("abbrev = %q, want %q", abbrev, "J. Test.")
	}
}

func TestClient_LookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	if _, err := c.Lookup(context.Background(), "Nature"); err == nil {
		t.Error("expected an error on HTTP 500")
	}
}

func TestClient_LookupEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL + "/"))
	if _, err := c.Lookup(context.Background(), "Nature"); err == nil {
		t.Error("expected an error on an empty response body")
	}
}

func TestCache_GetPut(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "abbrev.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, ok, err := cache.Get("Nature"); err != nil || ok {
		t.Fatalf("empty cache Get = ok=%v err=%v", ok, err)
	}

	if err := cache.Put("Nature", "Nature"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("Nature", "Nat."); err != nil {
		t.Fatal(err) // upsert replaces
	}

	abbrev, ok, err := cache.Get("Nature")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || abbrev != "Nat." {
		t.Errorf("Get = %q, %v; want Nat., true", abbrev, ok)
	}

	entries, err := cache.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries["Nature"] != "Nat." {
		t.Errorf("Entries = %v", entries)
	}
}

func TestService_CachesLookups(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("Phys. Rev. Lett."))
	}))
	defer srv.Close()

	cache, err := OpenCache(filepath.Join(t.TempDir(), "abbrev.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	svc := NewService(NewClient(WithBaseURL(srv.URL+"/")), cache)
	for i := 0; i < 3; i++ {
		abbrev, err := svc.Abbreviate("Physical Review Letters")
		if err != nil {
			t.Fatal(err)
		}
		if abbrev != "Phys. Rev. Lett." {
			t.Errorf("abbrev = %q", abbrev)
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("service hit the network %d times, want 1", n)
	}
}

func TestService_NilCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("J. Chem. Phys."))
	}))
	defer srv.Close()

	svc := NewService(NewClient(WithBaseURL(srv.URL+"/")), nil)
	abbrev, err := svc.Abbreviate("Journal of Chemical Physics")
	if err != nil {
		t.Fatal(err)
	}
	if abbrev != "J. Chem. Phys." {
		t.Errorf("abbrev = %q", abbrev)
	}
}
