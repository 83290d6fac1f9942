package chem

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
)

func TestGetDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value": "hit"}`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "test", 0, 3, nil)
	var out struct {
		Value string `json:"value"`
	}
	if err := c.Get(context.Background(), srv.URL, &out); err != nil {
		t.Fatal(err)
	}
	if out.Value != "hit" {
		t.Errorf("got %q", out.Value)
	}
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "test", 0, 3, nil)
	err := c.Get(context.Background(), srv.URL, &struct{}{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "test", 0, 3, nil)
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Cached(context.Background(), "k", false, &out, func() error {
		return c.Get(context.Background(), srv.URL, &out)
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK || calls.Load() != 2 {
		t.Errorf("ok=%v calls=%d", out.OK, calls.Load())
	}
}

func TestRetryCountRespected(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "test", 0, 1, nil)
	err := c.Cached(context.Background(), "k", false, &struct{}{}, func() error {
		return c.Get(context.Background(), srv.URL, &struct{}{})
	})
	if err == nil {
		t.Fatal("server error swallowed")
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times with retries=1, want 1", calls.Load())
	}
}

func TestCachedSkipsSecondFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"value": "fresh"}`))
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, "test", time.Hour, 3, nil)

	fetch := func(v *struct {
		Value string `json:"value"`
	}) error {
		return c.Cached(context.Background(), "k", false, v, func() error {
			return c.Get(context.Background(), srv.URL, v)
		})
	}

	var first, second struct {
		Value string `json:"value"`
	}
	if err := fetch(&first); err != nil {
		t.Fatal(err)
	}
	if err := fetch(&second); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}
	if second.Value != "fresh" {
		t.Errorf("cached value = %q", second.Value)
	}
}

func TestCachedRefreshBypassesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	backend, _ := cache.NewFileCache(t.TempDir())
	c := NewClient(backend, "test", time.Hour, 3, nil)
	var v struct{}
	for range 2 {
		if err := c.Cached(context.Background(), "k", true, &v, func() error {
			return c.Get(context.Background(), srv.URL, &v)
		}); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("refresh did not bypass cache, calls=%d", calls.Load())
	}
}

func TestHeadersApplied(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(cache.NewNullCache(), "test", 0, 3, map[string]string{"Accept": "application/json"})
	if err := c.Get(context.Background(), srv.URL, &struct{}{}); err != nil {
		t.Fatal(err)
	}
	if got != "application/json" {
		t.Errorf("Accept header = %q", got)
	}
}
