package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected method GET, got %s", r.Method)
		}
		if r.Header.Get("X-Test-Header") != "test-value" {
			t.Errorf("Expected header X-Test-Header: test-value, got %s", r.Header.Get("X-Test-Header"))
		}
		if r.Header.Get("User-Agent") != "loadster-test" {
			t.Errorf("Expected User-Agent loadster-test, got %s", r.Header.Get("User-Agent"))
		}

		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer server.Close()

	client := NewClient(
		WithTimeout(5*time.Second),
		WithHeader("X-Test-Header", "test-value"),
		WithUserAgent("loadster-test"),
		WithMaxConnsPerHost(4),
	)

	res, err := client.Send(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if res.Latency < 5*time.Millisecond {
		t.Errorf("Latency = %v, want >= 5ms", res.Latency)
	}
}

func TestClient_Send_Method(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithMethod("HEAD"))
	res, err := client.Send(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotMethod != "HEAD" {
		t.Errorf("method = %s, want HEAD", gotMethod)
	}
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("StatusCode = %d, want 204", res.StatusCode)
	}
}

func TestClient_Send_ErrorStatusIsNotAnError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		res, err := NewClient().Send(context.Background(), server.URL)
		server.Close()

		if err != nil {
			t.Errorf("status %d: Send() error = %v, want nil", code, err)
		}
		if res.StatusCode != code {
			t.Errorf("StatusCode = %d, want %d", res.StatusCode, code)
		}
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res, err := NewClient(WithTimeout(2*time.Second)).Send(context.Background(), url)
	if err == nil {
		t.Fatal("Send() expected error for closed server, got nil")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T, want *RequestError", err)
	}
	if reqErr.Kind != ErrConnection {
		t.Errorf("Kind = %s, want %s (err: %v)", reqErr.Kind, ErrConnection, err)
	}
	if res.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", res.StatusCode)
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	res, err := NewClient(WithTimeout(50*time.Millisecond)).Send(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Send() expected timeout error, got nil")
	}
	if kind := Classify(err); kind != ErrTimeout {
		t.Errorf("Classify() = %s, want %s (err: %v)", kind, ErrTimeout, err)
	}
	if res.Latency < 50*time.Millisecond {
		t.Errorf("Latency = %v, want >= 50ms", res.Latency)
	}
}

func TestClient_Send_MalformedResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 1024)
			conn.Read(buf)
			conn.Write([]byte("this is not http\r\n\r\n"))
			conn.Close()
		}
	}()

	_, err = NewClient(WithTimeout(2*time.Second)).Send(context.Background(), "http://"+ln.Addr().String())
	if err == nil {
		t.Fatal("Send() expected protocol error, got nil")
	}
	if kind := Classify(err); kind != ErrProtocol {
		t.Errorf("Classify() = %s, want %s (err: %v)", kind, ErrProtocol, err)
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	_, err := NewClient().Send(context.Background(), "http://[::1]:namedport")
	if err == nil {
		t.Fatal("Send() expected error for invalid URL, got nil")
	}
	if kind := Classify(err); kind != ErrProtocol {
		t.Errorf("Classify() = %s, want %s", kind, ErrProtocol)
	}
}

func TestIsSuccessStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{301, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		if got := IsSuccessStatus(tt.code); got != tt.want {
			t.Errorf("IsSuccessStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
