package clues

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/jeopardy/internal/game"
)

func cluesJSON(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":%d,"question":"q%d","answer":"a%d","value":%d}`, i, i, i, (i+1)*100)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func newAPI(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestClientCategory(t *testing.T) {
	var gotPath, gotID string
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotID = r.URL.Path, r.URL.Query().Get("id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":4,"title":" Science ","clues_count":7,"clues":%s}`, cluesJSON(7))
	})

	cat, err := c.Category(context.Background(), 4)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if gotPath != "/api/category" || gotID != "4" {
		t.Fatalf("unexpected request %s?id=%s", gotPath, gotID)
	}
	if cat.ID != 4 || cat.Title != "Science" {
		t.Fatalf("unexpected category %+v", cat)
	}
	if len(cat.Clues) != game.CluesPerCategory {
		t.Fatalf("expected %d clues, got %d", game.CluesPerCategory, len(cat.Clues))
	}
	if cat.Clues[0].Question != "q0" || cat.Clues[4].Answer != "a4" {
		t.Fatalf("unexpected clues %+v", cat.Clues)
	}
	for _, cl := range cat.Clues {
		if cl.Showing != game.RevealHidden {
			t.Fatalf("expected hidden clue, got %s", cl.Showing)
		}
	}
}

func TestClientNumericAnswer(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Math","clues":[
			{"question":"2+2","answer":4},
			{"question":"1+1","answer":2},
			{"question":"pi","answer":3.14},
			{"question":"zero","answer":"0"},
			{"question":"none","answer":null}
		]}`)
	})

	cat, err := c.Category(context.Background(), 2)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	want := []string{"4", "2", "3.14", "0", ""}
	for i, w := range want {
		if cat.Clues[i].Answer != w {
			t.Fatalf("clue %d: expected answer %q, got %q", i, w, cat.Clues[i].Answer)
		}
	}
}

func TestClientShortCategoryIsShapeError(t *testing.T) {
	c := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"title":"Thin","clues":%s}`, cluesJSON(3))
	})

	_, err := c.Category(context.Background(), 9)
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shapeErr.ID != 9 || shapeErr.Got != 3 || shapeErr.Want != game.CluesPerCategory {
		t.Fatalf("unexpected shape error %+v", shapeErr)
	}
}

func TestClientFetchErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"decode": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"title":`)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c := newAPI(t, h)
			_, err := c.Category(context.Background(), 3)
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fetchErr.ID != 3 {
				t.Fatalf("expected id 3, got %d", fetchErr.ID)
			}
		})
	}
}

func TestClientTransportErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, time.Second).Category(context.Background(), 5)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
