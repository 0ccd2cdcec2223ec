package web

import (
    "io"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "testing"

    "github.com/jaminalder/othello-board/internal/app"
    "github.com/jaminalder/othello-board/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
    t.Helper()
    s := app.NewService()
    h := NewServer(s)
    return s, h
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
    t.Helper()
    req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    return rr
}

func TestIndexPage(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/board\"") {
        t.Fatalf("index should contain create form; got body: %q", body)
    }
    if !strings.Contains(body, "<html>") {
        t.Fatalf("index should render the page layout; got body: %q", body)
    }
}

func TestCreateRedirectsToBoard(t *testing.T) {
    svc, h := newTestServer(t)
    req := httptest.NewRequest("POST", "/board", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusSeeOther {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }
    loc := rr.Result().Header.Get("Location")
    if !strings.HasPrefix(loc, "/board/") {
        t.Fatalf("expected redirect to /board/{id}, got %q", loc)
    }
    if _, ok := svc.Get(strings.TrimPrefix(loc, "/board/")); !ok {
        t.Fatalf("redirect target %q is not a known board", loc)
    }
}

func TestBoardPageRendersOpening(t *testing.T) {
    svc, h := newTestServer(t)
    bs, _ := svc.CreateBoard()

    req := httptest.NewRequest("GET", "/board/"+url.PathEscape(bs.ID), nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "id=\"board\"") {
        t.Fatalf("expected board in page; got body: %q", body)
    }
    if !strings.Contains(body, "black 2 · white 2 · empty 60") {
        t.Fatalf("expected opening counts; got body: %q", body)
    }
    // 60 empty cells offer a put form, 4 stones offer a flip form
    if n := strings.Count(body, "/board/"+bs.ID+"/put"); n != 60 {
        t.Fatalf("expected 60 put forms, got %d", n)
    }
    if n := strings.Count(body, "/board/"+bs.ID+"/reverse"); n != 4 {
        t.Fatalf("expected 4 reverse forms, got %d", n)
    }
    if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/board/"+bs.ID+"/events") {
        t.Fatalf("expected SSE wiring in page; got body: %q", body)
    }
}

func TestBoardPageUnknownID(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/board/does-not-exist", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", rr.Code)
    }
}

func TestPutEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
    svc, h := newTestServer(t)
    bs, _ := svc.CreateBoard()

    rr := postForm(t, h, "/board/"+bs.ID+"/put", url.Values{"r": {"2"}, "c": {"3"}, "color": {"black"}})
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "id=\"board\"") || strings.Contains(body, "class=\"alert\"") {
        t.Fatalf("expected clean board fragment, got %q", body)
    }
    latest, _ := svc.Get(bs.ID)
    if c, _ := latest.Board.CellState(2, 3); c != domain.Black {
        t.Fatalf("expected black stone at (2, 3), got %v", c)
    }
}

func TestPutEndpointReportsErrors(t *testing.T) {
    svc, h := newTestServer(t)
    bs, _ := svc.CreateBoard()
    cases := []struct {
        form url.Values
        msg  string
    }{
        {url.Values{"r": {"3"}, "c": {"3"}, "color": {"black"}}, "Cell is occupied"},
        {url.Values{"r": {"8"}, "c": {"0"}, "color": {"white"}}, "Out of bounds"},
        {url.Values{"r": {"0"}, "c": {"0"}, "color": {"empty"}}, "Only black or white stones can be placed"},
        {url.Values{"r": {"0"}, "c": {"0"}, "color": {"red"}}, "Unknown color"},
        {url.Values{"r": {"x"}, "c": {"0"}, "color": {"black"}}, "Invalid form"},
    }
    for _, tc := range cases {
        rr := postForm(t, h, "/board/"+bs.ID+"/put", tc.form)
        if rr.Code != http.StatusOK {
            t.Fatalf("expected 200 for %v, got %d", tc.form, rr.Code)
        }
        if !strings.Contains(rr.Body.String(), tc.msg) {
            t.Fatalf("expected %q for %v, got %q", tc.msg, tc.form, rr.Body.String())
        }
    }
    latest, _ := svc.Get(bs.ID)
    if latest.Version != 0 {
        t.Fatalf("rejected puts must not change the board, version=%d", latest.Version)
    }
}

func TestReverseEndpointFlipsCells(t *testing.T) {
    svc, h := newTestServer(t)
    bs, _ := svc.CreateBoard()

    rr := postForm(t, h, "/board/"+bs.ID+"/reverse", url.Values{"cells": {"3,3;4,4"}})
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    latest, _ := svc.Get(bs.ID)
    if latest.Board.StoneCount(domain.Black) != 4 || latest.Board.StoneCount(domain.White) != 0 {
        t.Fatalf("expected all black after flip, got black=%d white=%d",
            latest.Board.StoneCount(domain.Black), latest.Board.StoneCount(domain.White))
    }

    rr = postForm(t, h, "/board/"+bs.ID+"/reverse", url.Values{"cells": {"3,3", "0,0"}})
    if !strings.Contains(rr.Body.String(), "No stone to flip") {
        t.Fatalf("expected flip error, got %q", rr.Body.String())
    }
    after, _ := svc.Get(bs.ID)
    if c, _ := after.Board.CellState(3, 3); c != domain.Black {
        t.Fatalf("failed reverse must leave (3, 3) black, got %v", c)
    }
}

func TestParseCells(t *testing.T) {
    cells, err := parseCells([]string{"1,2; 3,4", "5,6;"})
    if err != nil {
        t.Fatalf("parseCells failed: %v", err)
    }
    want := []domain.Position{{Row: 1, Col: 2}, {Row: 3, Col: 4}, {Row: 5, Col: 6}}
    if len(cells) != len(want) {
        t.Fatalf("expected %d cells, got %v", len(want), cells)
    }
    for i := range want {
        if cells[i] != want[i] {
            t.Fatalf("cell %d = %v, want %v", i, cells[i], want[i])
        }
    }
    if _, err := parseCells([]string{"1-2"}); err == nil {
        t.Fatalf("expected error for malformed pair")
    }
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
    _, h := newTestServer(t)
    reqCreate := httptest.NewRequest("POST", "/board", nil)
    rrCreate := httptest.NewRecorder()
    h.ServeHTTP(rrCreate, reqCreate)
    loc := rrCreate.Result().Header.Get("Location")
    if loc == "" {
        t.Fatalf("missing redirect location")
    }
    req := httptest.NewRequest("GET", loc+"/events", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    ct := rr.Result().Header.Get("Content-Type")
    if !strings.HasPrefix(ct, "text/event-stream") {
        io.Copy(io.Discard, rr.Result().Body)
        t.Fatalf("expected text/event-stream, got %q", ct)
    }
}

func TestWriteSSEFramesEachLine(t *testing.T) {
    var sb strings.Builder
    writeSSE(&sb, "board", []byte("a\nb"))
    if sb.String() != "event: board\ndata: a\ndata: b\n\n" {
        t.Fatalf("unexpected frame %q", sb.String())
    }
}

func TestHealth(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/health", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "\"healthy\"") {
        t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
    }
}
