package domain

import (
    "fmt"
    "strings"
)

// StoneColor is the state of a single board cell.
type StoneColor uint8

const (
    Empty StoneColor = iota
    Black
    White
)

// Opposite returns the other player's color. Empty has no opposite.
func (c StoneColor) Opposite() (StoneColor, error) {
    switch c {
    case Black:
        return White, nil
    case White:
        return Black, nil
    default:
        return Empty, fmt.Errorf("opposite of %v: %w", c, ErrInvalidOperation)
    }
}

// IsPlayer reports whether c is a stone that belongs to a player.
func (c StoneColor) IsPlayer() bool {
    return c == Black || c == White
}

func (c StoneColor) String() string {
    switch c {
    case Empty:
        return "empty"
    case Black:
        return "black"
    case White:
        return "white"
    default:
        return fmt.Sprintf("StoneColor(%d)", uint8(c))
    }
}

// Symbol is the one-rune form used when drawing a board.
func (c StoneColor) Symbol() string {
    switch c {
    case Black:
        return "●"
    case White:
        return "○"
    default:
        return "·"
    }
}

// ParseStoneColor accepts the String form of a color, case-insensitive,
// as well as the short forms "b" and "w".
func ParseStoneColor(s string) (StoneColor, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "empty":
        return Empty, nil
    case "black", "b":
        return Black, nil
    case "white", "w":
        return White, nil
    }
    return Empty, fmt.Errorf("%q: %w", s, ErrUnknownColor)
}

func (c StoneColor) MarshalText() ([]byte, error) {
    if c > White {
        return nil, fmt.Errorf("marshal %v: %w", c, ErrUnknownColor)
    }
    return []byte(c.String()), nil
}

func (c *StoneColor) UnmarshalText(b []byte) error {
    v, err := ParseStoneColor(string(b))
    if err != nil {
        return err
    }
    *c = v
    return nil
}
