package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchComments_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != FEDDIT_COMMENTS_PATH {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("subfeddit_id") != "3" || q.Get("skip") != "0" || q.Get("limit") != "22000" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"subfeddit_id":3,"skip":0,"limit":22000,"comments":[
			{"id":1,"username":"user_0","text":"Nice","created_at":1700000000},
			{"id":"abc","username":"user_1","text":"Bad","created_at":1700003600}
		]}`))
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL, time.Second, 0)
	comments, err := fc.FetchComments(context.Background(), 3, 22000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if string(comments[0].ID) != "1" || string(comments[1].ID) != `"abc"` {
		t.Errorf("ids not preserved: %s %s", comments[0].ID, comments[1].ID)
	}
	if comments[1].CreatedAt != 1700003600 {
		t.Errorf("unexpected created_at %d", comments[1].CreatedAt)
	}
}

func TestFetchSubfeddits_SendsPageSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "500" {
			t.Errorf("expected limit=500, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"skip":0,"limit":500,"subfeddits":[{"id":3,"username":"AskReddit","title":"Ask"}]}`))
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL+"/", time.Second, 500)
	subs, err := fc.FetchSubfeddits(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 1 || subs[0].Username != "AskReddit" || subs[0].ID != 3 {
		t.Errorf("unexpected subfeddits %+v", subs)
	}
}

func TestFetchJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL, time.Second, 0)
	_, err := fc.FetchComments(context.Background(), 1, 10)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", fetchErr.StatusCode)
	}
}

func TestFetchJSON_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"comments": [`))
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL, time.Second, 0)
	_, err := fc.FetchComments(context.Background(), 1, 10)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchJSON_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	fc := NewFedditClient(url, time.Second, 0)
	err := fc.Ping(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		t.Errorf("expected no status code, got %d", fetchErr.StatusCode)
	}
}

func TestFetchJSON_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL, 20*time.Millisecond, 0)
	err := fc.Ping(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on timeout, got %v", err)
	}
}

func TestFetchJSON_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fc := NewFedditClient(srv.URL, time.Second, 0)
	_ = fc.Ping(context.Background())

	if calls != 1 {
		t.Errorf("expected exactly one upstream call, got %d", calls)
	}
}
