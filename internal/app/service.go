package app

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/jaminalder/othello-board/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound = errors.New("board not found")
)

// BoardState is the in-memory state tracked per board.
type BoardState struct {
    ID      string
    Board   domain.Board
    Version int
    Created time.Time
    Updated time.Time
}

// BoardSummary is a listing entry.
type BoardSummary struct {
    ID      string    `json:"id"`
    Black   int       `json:"black"`
    White   int       `json:"white"`
    Empty   int       `json:"empty"`
    Full    bool      `json:"full"`
    Version int       `json:"version"`
    Created time.Time `json:"created"`
    Updated time.Time `json:"updated"`
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// offer delivers b without blocking. It reports false when the subscriber is full.
func (s *subscriber) offer(b []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- b:
        return true
    default:
        return false
    }
}

// Renderer turns a state snapshot into a broadcast payload.
type Renderer func(BoardState) []byte

// Service owns the boards and serializes every access to them.
type Service struct {
    mu        sync.Mutex
    boards    map[string]*BoardState
    subs      map[string]map[*subscriber]struct{}
    render    Renderer
    log       *zap.SugaredLogger
    subBuffer int
}

// Option configures a Service.
type Option func(*Service)

func WithRenderer(r Renderer) Option {
    return func(s *Service) {
        if r != nil {
            s.render = r
        }
    }
}

func WithLogger(l *zap.SugaredLogger) Option {
    return func(s *Service) {
        if l != nil {
            s.log = l
        }
    }
}

// WithSubscriberBuffer sets the channel size for each subscriber. Values below 1 are ignored.
func WithSubscriberBuffer(n int) Option {
    return func(s *Service) {
        if n > 0 {
            s.subBuffer = n
        }
    }
}

// NewService creates a service. Without a renderer broadcasts carry no payload.
func NewService(opts ...Option) *Service {
    s := &Service{
        boards:    make(map[string]*BoardState),
        subs:      make(map[string]map[*subscriber]struct{}),
        render:    func(BoardState) []byte { return nil },
        log:       zap.NewNop().Sugar(),
        subBuffer: 1,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(r Renderer) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if r == nil {
        s.render = func(BoardState) []byte { return nil }
        return
    }
    s.render = r
}

// CreateBoard registers a new board in the opening position.
func (s *Service) CreateBoard() (*BoardState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := time.Now()
    bs := &BoardState{ID: id, Board: domain.NewBoard(), Created: now, Updated: now}
    s.boards[id] = bs
    s.log.Infow("board created", "board", id)
    cp := *bs
    return &cp, nil
}

// Get returns a copy of the board state if present.
func (s *Service) Get(id string) (*BoardState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    bs, ok := s.boards[id]
    if !ok {
        return nil, false
    }
    cp := *bs
    return &cp, true
}

// List returns a summary of every board, oldest first.
func (s *Service) List() []BoardSummary {
    s.mu.Lock()
    out := make([]BoardSummary, 0, len(s.boards))
    for _, bs := range s.boards {
        out = append(out, summarize(bs))
    }
    s.mu.Unlock()
    sort.Slice(out, func(i, j int) bool {
        if out[i].Created.Equal(out[j].Created) {
            return out[i].ID < out[j].ID
        }
        return out[i].Created.Before(out[j].Created)
    })
    return out
}

// Summary returns the listing entry for one board.
func (s *Service) Summary(id string) (BoardSummary, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    bs, ok := s.boards[id]
    if !ok {
        return BoardSummary{}, ErrNotFound
    }
    return summarize(bs), nil
}

func summarize(bs *BoardState) BoardSummary {
    return BoardSummary{
        ID:      bs.ID,
        Black:   bs.Board.StoneCount(domain.Black),
        White:   bs.Board.StoneCount(domain.White),
        Empty:   bs.Board.StoneCount(domain.Empty),
        Full:    bs.Board.IsFull(),
        Version: bs.Version,
        Created: bs.Created,
        Updated: bs.Updated,
    }
}

// Delete removes a board and closes its subscribers.
func (s *Service) Delete(id string) error {
    s.mu.Lock()
    if _, ok := s.boards[id]; !ok {
        s.mu.Unlock()
        return ErrNotFound
    }
    delete(s.boards, id)
    set := s.subs[id]
    delete(s.subs, id)
    s.mu.Unlock()

    for sub := range set {
        sub.close()
    }
    s.log.Infow("board deleted", "board", id)
    return nil
}

// Put places a stone on the board and broadcasts the new state.
func (s *Service) Put(id string, row, col int, color domain.StoneColor) (*BoardState, error) {
    return s.mutate(id, "put", func(b *domain.Board) error {
        return b.Put(row, col, color)
    })
}

// Reverse flips the listed stones and broadcasts the new state.
// An empty list changes nothing and is not broadcast.
func (s *Service) Reverse(id string, cells []domain.Position) (*BoardState, error) {
    if len(cells) == 0 {
        bs, ok := s.Get(id)
        if !ok {
            return nil, ErrNotFound
        }
        return bs, nil
    }
    return s.mutate(id, "reverse", func(b *domain.Board) error {
        return b.Reverse(cells)
    })
}

// mutate applies fn under the lock, bumps timestamps, and fans out the result.
func (s *Service) mutate(id, op string, fn func(*domain.Board) error) (*BoardState, error) {
    var toDrop []*subscriber

    s.mu.Lock()
    bs, ok := s.boards[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if err := fn(&bs.Board); err != nil {
        s.mu.Unlock()
        s.log.Debugw("mutation rejected", "board", id, "op", op, "error", err)
        return nil, fmt.Errorf("board %s: %w", id, err)
    }
    bs.Version++
    bs.Updated = time.Now()

    // Snapshot state and subscribers
    cp := *bs
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    s.log.Debugw("board updated", "board", id, "op", op, "version", cp.Version)

    // Fan-out; drop slow subscribers by closing and marking for deletion
    for sub := range subs {
        if !sub.offer(payload) {
            sub.close()
            toDrop = append(toDrop, sub)
        }
    }
    if len(toDrop) > 0 {
        s.mu.Lock()
        for _, sub := range toDrop {
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
        }
        s.mu.Unlock()
        s.log.Infow("dropped slow subscribers", "board", id, "count", len(toDrop))
    }
    return &cp, nil
}

// Subscribe registers a subscriber for a board. Returns a channel and an unsubscribe func.
// The channel is closed on unsubscribe, when ctx ends, when the board is deleted, or
// when the subscriber falls behind. Unknown boards yield an already closed channel.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sub := &subscriber{ch: make(chan []byte, s.subBuffer)}
    if _, ok := s.boards[id]; !ok {
        sub.close()
        return sub.ch, func() {}
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
