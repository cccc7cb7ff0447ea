package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacesedan/polarity/internal/clients"
	"github.com/spacesedan/polarity/internal/directory"
	"github.com/spacesedan/polarity/internal/processing"
	"github.com/spacesedan/polarity/internal/sentiment"
)

func fakeFeddit(t *testing.T, commentsDown bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(clients.FEDDIT_SUBFEDDITS_PATH, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"skip":0,"limit":10,"subfeddits":[{"id":1,"username":"Dummy Topic 1"},{"id":3,"username":"AskReddit"}]}`))
	})
	mux.HandleFunc(clients.FEDDIT_COMMENTS_PATH, func(w http.ResponseWriter, r *http.Request) {
		if commentsDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("subfeddit_id") != "3" {
			w.Write([]byte(`{"comments":[]}`))
			return
		}
		w.Write([]byte(`{"subfeddit_id":3,"skip":0,"limit":22000,"comments":[
			{"id":100,"username":"user_0","text":"It looks great!","created_at":1700000000},
			{"id":101,"username":"user_1","text":"This is awful, I hate it.","created_at":1700003600},
			{"id":102,"username":"user_2","text":"Love it, wonderful work.","created_at":1698796800}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, upstream *httptest.Server) http.Handler {
	t.Helper()
	fc := clients.NewFedditClient(upstream.URL, 2*time.Second, 100)

	dir, err := directory.Build(context.Background(), fc)
	if err != nil {
		t.Fatalf("failed to build directory: %v", err)
	}

	pipeline := processing.NewPipeline(dir, fc, sentiment.NewVaderScorer(), processing.Options{
		PageSize:     22000,
		DefaultLimit: 25,
		Workers:      2,
	})
	return setupRouter(NewPolarityHandlers(pipeline, dir, nil))
}

type element struct {
	UID   int     `json:"UID_comment"`
	Text  string  `json:"text_comment"`
	Score float64 `json:"polarity_score"`
	Class string  `json:"sentiment_class"`
	Date  string  `json:"date"`
}

func decodeElements(t *testing.T, rec *httptest.ResponseRecorder) []element {
	t.Helper()
	var out []element
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestServer_MostRecentFirst(t *testing.T) {
	r := newServer(t, fakeFeddit(t, false))

	rec := do(r, "/polarity/AskReddit")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got := decodeElements(t, rec)
	if len(got) != 3 || got[0].UID != 101 || got[1].UID != 100 || got[2].UID != 102 {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].Class != "Negative" || got[1].Class != "Positive" {
		t.Errorf("unexpected classes %+v", got)
	}
	if got[2].Date != "20231101" {
		t.Errorf("unexpected date %q", got[2].Date)
	}
}

func TestServer_DateRangeAndSort(t *testing.T) {
	r := newServer(t, fakeFeddit(t, false))

	rec := do(r, "/polarity/AskReddit?date_range=20231114,20231114&sort=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decodeElements(t, rec)
	if len(got) != 2 || got[0].UID != 100 || got[1].UID != 101 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("expected descending polarity, got %+v", got)
	}
}

func TestServer_Idempotent(t *testing.T) {
	r := newServer(t, fakeFeddit(t, false))

	first := do(r, "/polarity/AskReddit?sort=asc&limit=2").Body.String()
	second := do(r, "/polarity/AskReddit?sort=asc&limit=2").Body.String()
	if first != second {
		t.Errorf("expected byte-identical responses:\n%s\n%s", first, second)
	}
}

func TestServer_UnknownSubfeddit(t *testing.T) {
	r := newServer(t, fakeFeddit(t, false))

	if rec := do(r, "/polarity/askreddit"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_UpstreamDown(t *testing.T) {
	r := newServer(t, fakeFeddit(t, true))

	if rec := do(r, "/polarity/AskReddit"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
