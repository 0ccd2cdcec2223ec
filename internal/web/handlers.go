package web

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "go.uber.org/zap"

    "github.com/jaminalder/othello-board/internal/app"
    "github.com/jaminalder/othello-board/internal/domain"
)

type handlers struct {
    svc        *app.Service
    tpl        *templates
    log        *zap.SugaredLogger
    heartbeat  time.Duration
    requestLog bool
}

var errBadForm = errors.New("bad form")

func (h *handlers) writeHTML(w http.ResponseWriter, status int, b []byte, err error) {
    if err != nil {
        h.log.Errorw("render failed", "error", err)
        http.Error(w, "render failed", http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(status)
    _, _ = w.Write(b)
}

func (h *handlers) writeBoard(w http.ResponseWriter, bs app.BoardState, errMsg string) {
    b, err := renderTemplate(h.tpl.board, "", newBoardData(bs, errMsg))
    h.writeHTML(w, http.StatusOK, b, err)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{
        "status": "healthy",
        "boards": len(h.svc.List()),
        "time":   time.Now().Unix(),
    })
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    b, err := renderTemplate(h.tpl.index, "base", nil)
    h.writeHTML(w, http.StatusOK, b, err)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    bs, err := h.svc.CreateBoard()
    if err != nil {
        h.log.Errorw("create board failed", "error", err)
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/board/"+bs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    bs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    b, err := renderTemplate(h.tpl.game, "base", newBoardData(*bs, ""))
    h.writeHTML(w, http.StatusOK, b, err)
}

// put handles the board form: r, c and color ("black" or "white").
func (h *handlers) put(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    var (
        row, col int
        color    domain.StoneColor
        err      error
    )
    if err = r.ParseForm(); err == nil {
        row, col, err = parseCell(r.Form.Get("r"), r.Form.Get("c"))
    }
    if err == nil {
        color, err = domain.ParseStoneColor(r.Form.Get("color"))
    }
    if err != nil {
        h.boardError(w, r, id, err)
        return
    }
    bs, err := h.svc.Put(id, row, col, color)
    if err != nil {
        h.boardError(w, r, id, err)
        return
    }
    h.writeBoard(w, *bs, "")
}

// reverse handles the flip form: cells as "r,c" pairs separated by ';'.
// Repeated cells fields are concatenated.
func (h *handlers) reverse(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if err := r.ParseForm(); err != nil {
        h.boardError(w, r, id, err)
        return
    }
    cells, err := parseCells(r.Form["cells"])
    if err != nil {
        h.boardError(w, r, id, err)
        return
    }
    bs, err := h.svc.Reverse(id, cells)
    if err != nil {
        h.boardError(w, r, id, err)
        return
    }
    h.writeBoard(w, *bs, "")
}

// boardError re-renders the current board with a message, or 404s.
func (h *handlers) boardError(w http.ResponseWriter, r *http.Request, id string, err error) {
    bs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    msg := "Invalid form"
    if !errors.Is(err, errBadForm) {
        _, _, msg = classify(err)
    }
    h.log.Debugw("board request rejected", "board", id, "error", err)
    h.writeBoard(w, *bs, msg)
}

func parseCell(rs, cs string) (int, int, error) {
    row, err := strconv.Atoi(strings.TrimSpace(rs))
    if err != nil {
        return 0, 0, fmt.Errorf("%w: row %q", errBadForm, rs)
    }
    col, err := strconv.Atoi(strings.TrimSpace(cs))
    if err != nil {
        return 0, 0, fmt.Errorf("%w: col %q", errBadForm, cs)
    }
    return row, col, nil
}

func parseCells(fields []string) ([]domain.Position, error) {
    var cells []domain.Position
    for _, f := range fields {
        for _, pair := range strings.Split(f, ";") {
            if strings.TrimSpace(pair) == "" {
                continue
            }
            rs, cs, ok := strings.Cut(pair, ",")
            if !ok {
                return nil, fmt.Errorf("%w: cell %q", errBadForm, pair)
            }
            row, col, err := parseCell(rs, cs)
            if err != nil {
                return nil, err
            }
            cells = append(cells, domain.Position{Row: row, Col: col})
        }
    }
    return cells, nil
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            writeSSE(w, "board", b)
            flusher.Flush()
        }
    }
}

// writeSSE frames payload as one event, one data line per payload line.
func writeSSE(w io.Writer, event string, payload []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    for _, line := range strings.Split(string(payload), "\n") {
        _, _ = fmt.Fprintf(w, "data: %s\n", line)
    }
    _, _ = io.WriteString(w, "\n")
}

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteWait = 10 * time.Second

// ws streams JSON snapshots: the current one on connect, then one per change.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    bs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        h.log.Warnw("websocket upgrade failed", "board", id, "error", err)
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()
    // re-read after subscribing so no change falls between snapshot and stream
    if cur, ok := h.svc.Get(id); ok {
        bs = cur
    }

    // reader: only needed to process control frames and notice the peer leaving
    go func() {
        defer cancel()
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    write := func(mt int, b []byte) error {
        _ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
        return conn.WriteMessage(mt, b)
    }
    if err := write(websocket.TextMessage, renderSnapshot(*bs)); err != nil {
        return
    }

    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := write(websocket.PingMessage, nil); err != nil {
                return
            }
        case b, ok := <-ch:
            if !ok {
                _ = write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "board closed"))
                return
            }
            if err := write(websocket.TextMessage, b); err != nil {
                h.log.Debugw("websocket write failed", "board", id, "error", err)
                return
            }
        }
    }
}
