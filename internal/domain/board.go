package domain

import (
    "errors"
    "fmt"
    "strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Grid is a row-major snapshot of every cell.
type Grid [Size][Size]StoneColor

// Position addresses a cell, 0-indexed.
type Position struct {
    Row int `json:"row"`
    Col int `json:"col"`
}

func (p Position) String() string {
    return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// Board holds the stones of one Othello game.
type Board struct {
    grid Grid
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds      = errors.New("position out of bounds")
    ErrOccupied         = errors.New("cell occupied")
    ErrInvalidStone     = errors.New("not a player stone")
    ErrNoStoneToFlip    = errors.New("no stone to flip")
    ErrInvalidOperation = errors.New("invalid operation")
    ErrUnknownColor     = errors.New("unknown stone color")
)

// NewBoard returns a board in the standard opening position.
func NewBoard() Board {
    var b Board
    c := Size / 2
    b.grid[c-1][c-1] = White
    b.grid[c-1][c] = Black
    b.grid[c][c-1] = Black
    b.grid[c][c] = White
    return b
}

// IsValidPosition reports whether row and col are both in [0, Size).
func IsValidPosition(row, col int) bool {
    return row >= 0 && row < Size && col >= 0 && col < Size
}

// Put places a stone of the given color on an empty cell.
// Checks run in order: bounds, occupancy, color.
func (b *Board) Put(row, col int, color StoneColor) error {
    if !IsValidPosition(row, col) {
        return fmt.Errorf("put (%d, %d): %w", row, col, ErrOutOfBounds)
    }
    if b.grid[row][col] != Empty {
        return fmt.Errorf("put (%d, %d): %w", row, col, ErrOccupied)
    }
    if !color.IsPlayer() {
        return fmt.Errorf("put (%d, %d) %v: %w", row, col, color, ErrInvalidStone)
    }
    b.grid[row][col] = color
    return nil
}

// Reverse flips every listed stone to the opposite color. The caller decides
// which stones flip; no Othello rules are applied here.
//
// All cells are checked before any is flipped, so a failing call leaves the
// board untouched. The returned error names the first bad entry.
func (b *Board) Reverse(cells []Position) error {
    for i, p := range cells {
        if !IsValidPosition(p.Row, p.Col) {
            return fmt.Errorf("reverse #%d %v: %w", i, p, ErrOutOfBounds)
        }
        if !b.grid[p.Row][p.Col].IsPlayer() {
            return fmt.Errorf("reverse #%d %v: %w", i, p, ErrNoStoneToFlip)
        }
    }
    for _, p := range cells {
        // a cell listed twice flips back; checked above that it holds a stone
        flipped, _ := b.grid[p.Row][p.Col].Opposite()
        b.grid[p.Row][p.Col] = flipped
    }
    return nil
}

// Grid returns a copy of the cells.
func (b *Board) Grid() Grid {
    return b.grid
}

// CellState returns the color at row, col.
func (b *Board) CellState(row, col int) (StoneColor, error) {
    if !IsValidPosition(row, col) {
        return Empty, fmt.Errorf("cell state (%d, %d): %w", row, col, ErrOutOfBounds)
    }
    return b.grid[row][col], nil
}

// IsEmpty reports whether row, col is on the board and has no stone.
// Off-board positions are not empty, which lets callers probe past the edge.
func (b *Board) IsEmpty(row, col int) bool {
    return IsValidPosition(row, col) && b.grid[row][col] == Empty
}

func (b *Board) IsValidPosition(row, col int) bool {
    return IsValidPosition(row, col)
}

// StoneCount counts cells holding color. Empty counts free cells.
func (b *Board) StoneCount(color StoneColor) int {
    n := 0
    for _, row := range b.grid {
        for _, c := range row {
            if c == color {
                n++
            }
        }
    }
    return n
}

func (b *Board) IsFull() bool {
    return b.StoneCount(Empty) == 0
}

// String draws the board with row and column indices.
func (b *Board) String() string {
    var sb strings.Builder
    sb.WriteString(" ")
    for c := 0; c < Size; c++ {
        fmt.Fprintf(&sb, " %d", c)
    }
    sb.WriteString("\n")
    for r, row := range b.grid {
        fmt.Fprintf(&sb, "%d", r)
        for _, c := range row {
            sb.WriteString(" ")
            sb.WriteString(c.Symbol())
        }
        if r < Size-1 {
            sb.WriteString("\n")
        }
    }
    return sb.String()
}
