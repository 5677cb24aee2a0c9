package fetch_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-adala-mirror/internal/fetch"
)

func TestFetch_HeadersAndSuccess(t *testing.T) {
	t.Setenv("ADALA_UA", "test-agent/1.0")
	var gotUA, gotRef, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRef = r.Header.Get("Referer")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second, Referer: "https://adala.example"})
	if err != nil { t.Fatalf("new client: %v", err) }
	resp, err := cl.Get(context.Background(), srv.URL)
	if err != nil { t.Fatalf("get: %v", err) }
	_ = resp.Body.Close()
	if gotUA != "test-agent/1.0" { t.Fatalf("user-agent = %q", gotUA) }
	if gotRef != "https://adala.example" { t.Fatalf("referer = %q", gotRef) }
	if gotAccept == "" { t.Fatalf("accept header missing") }
}

func TestFetch_RetryOnStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Retry: 1, Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	resp, err := cl.Get(context.Background(), srv.URL)
	if err != nil { t.Fatalf("get: %v", err) }
	_ = resp.Body.Close()
	if n := atomic.LoadInt32(&calls); n != 2 { t.Fatalf("calls = %d, want 2", n) }
}

func TestFetch_GetOnceNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Retry: 3, Timeout: 2 * time.Second})
	if err != nil { t.Fatalf("new client: %v", err) }
	if _, err := cl.GetOnce(context.Background(), srv.URL); err == nil { t.Fatal("expected status error") }
	if n := atomic.LoadInt32(&calls); n != 1 { t.Fatalf("calls = %d, want 1", n) }
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Timeout: 100 * time.Millisecond})
	if err != nil { t.Fatalf("new client: %v", err) }
	_, err = cl.Get(context.Background(), srv.URL)
	if err == nil { t.Fatal("expected timeout error, got nil") }
	if ne, ok := err.(net.Error); ok && ne.Timeout() { return }
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected error: %v", err)
	}
}
