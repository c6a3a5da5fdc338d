package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reconcrawl/surfacecrawl/internal/config"
	"github.com/reconcrawl/surfacecrawl/internal/fetch"
)

func TestCrawlerDiscoversLinksAndEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a href="/a/">A</a>
			<script src="/s.js"></script>
		</body></html>`))
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>leaf page</body></html>`))
	})
	mux.HandleFunc("/s.js", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`var u = "/api/v1/users?id=1"; fetch("/api/v1/logout");`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, err := config.Build(srv.URL+"/", config.Flags{
		Threads: 4, Depth: 3, TimeoutSec: 5, Prefix: "crawl", Mode: string(fetch.ModePlain),
	})
	if err != nil {
		t.Fatalf("config.Build: %v", err)
	}

	c := New(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	snap, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(snap.Alive) == 0 {
		t.Fatal("expected at least one alive URL")
	}

	foundAPI := false
	for _, e := range snap.APIEndpoints {
		if e == srv.URL+"/api/v1/users?id=1" || e == srv.URL+"/api/v1/logout" {
			foundAPI = true
		}
	}
	if !foundAPI {
		t.Errorf("expected an api endpoint among %v", snap.APIEndpoints)
	}

	foundJS := false
	for _, j := range snap.JSFiles {
		if j == srv.URL+"/s.js" {
			foundJS = true
		}
	}
	if !foundJS {
		t.Errorf("expected %s/s.js in js_files, got %v", srv.URL, snap.JSFiles)
	}

	foundParam := false
	for _, p := range snap.Params {
		if p == srv.URL+"/api/v1/users?id=1" {
			foundParam = true
		}
	}
	if !foundParam {
		t.Errorf("expected the parameterised endpoint in params, got %v", snap.Params)
	}
}

func TestCrawlerRecordsRedirectFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>landed</body></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, err := config.Build(srv.URL+"/", config.Flags{
		Threads: 2, Depth: 2, TimeoutSec: 5, Prefix: "crawl", Mode: string(fetch.ModePlain),
	})
	if err != nil {
		t.Fatalf("config.Build: %v", err)
	}

	c := New(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	snap, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := snap.Alive[srv.URL+"/final"]; !ok {
		t.Errorf("expected the redirect target in alive, got %v", snap.Alive)
	}
	if _, ok := snap.Alive[srv.URL+"/"]; ok {
		t.Errorf("expected the redirect source to not be recorded, got %v", snap.Alive)
	}
}

func TestCrawlerRoutesOffOriginRedirectToOSINT(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>elsewhere</body></html>`))
	}))
	defer other.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/landing", http.StatusFound)
	}))
	defer srv.Close()

	cfg, err := config.Build(srv.URL+"/", config.Flags{
		Threads: 2, Depth: 2, TimeoutSec: 5, Prefix: "crawl", Mode: string(fetch.ModePlain),
	})
	if err != nil {
		t.Fatalf("config.Build: %v", err)
	}

	c := New(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	snap, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(snap.Alive) != 0 {
		t.Errorf("expected no alive entries for an off-origin redirect, got %v", snap.Alive)
	}
	found := false
	for _, s := range snap.OSINT {
		if s == other.URL+"/landing" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected off-origin final URL in osint, got %v", snap.OSINT)
	}
}

func TestCrawlerRespectsMaxDepth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/deep">deep</a>`))
	})
	mux.HandleFunc("/deep", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/deeper">deeper</a>`))
	})
	mux.HandleFunc("/deeper", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`should never be fetched`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, err := config.Build(srv.URL+"/", config.Flags{
		Threads: 2, Depth: 1, TimeoutSec: 5, Prefix: "crawl", Mode: string(fetch.ModePlain),
	})
	if err != nil {
		t.Fatalf("config.Build: %v", err)
	}

	c := New(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	snap, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for u := range snap.Alive {
		if u == srv.URL+"/deeper" {
			t.Errorf("expected /deeper to never be fetched at depth limit 1, got %v", snap.Alive)
		}
	}
}
