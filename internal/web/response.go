package web

import (
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "github.com/jaminalder/othello-board/internal/app"
    "github.com/jaminalder/othello-board/internal/domain"
)

// Error codes returned by the JSON API.
const (
    CodeBoardNotFound  = "BOARD_NOT_FOUND"
    CodeOutOfBounds    = "OUT_OF_BOUNDS"
    CodeCellOccupied   = "CELL_OCCUPIED"
    CodeInvalidStone   = "INVALID_STONE"
    CodeNoStoneToFlip  = "NO_STONE_TO_FLIP"
    CodeInvalidRequest = "INVALID_REQUEST"
    CodeInvalidContent = "INVALID_CONTENT_TYPE"
    CodeInternal       = "INTERNAL_ERROR"
)

type ErrorResponse struct {
    Error   string `json:"error"`
    Code    string `json:"code"`
    Details string `json:"details,omitempty"`
}

// BoardResponse is the JSON form of a board snapshot.
type BoardResponse struct {
    ID      string      `json:"id"`
    Grid    domain.Grid `json:"grid"`
    Black   int         `json:"black"`
    White   int         `json:"white"`
    Empty   int         `json:"empty"`
    Full    bool        `json:"full"`
    Version int         `json:"version"`
    Updated time.Time   `json:"updated"`
}

func newBoardResponse(bs app.BoardState) BoardResponse {
    return BoardResponse{
        ID:      bs.ID,
        Grid:    bs.Board.Grid(),
        Black:   bs.Board.StoneCount(domain.Black),
        White:   bs.Board.StoneCount(domain.White),
        Empty:   bs.Board.StoneCount(domain.Empty),
        Full:    bs.Board.IsFull(),
        Version: bs.Version,
        Updated: bs.Updated,
    }
}

// renderSnapshot is the broadcast payload pushed to stream subscribers.
func renderSnapshot(bs app.BoardState) []byte {
    b, err := json.Marshal(newBoardResponse(bs))
    if err != nil {
        return nil
    }
    return b
}

func writeJSON(w http.ResponseWriter, status int, body any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg, details string) {
    writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Details: details})
}

// classify maps service and domain errors to a status, code and short message.
func classify(err error) (int, string, string) {
    switch {
    case errors.Is(err, app.ErrNotFound):
        return http.StatusNotFound, CodeBoardNotFound, "Board not found"
    case errors.Is(err, domain.ErrOutOfBounds):
        return http.StatusUnprocessableEntity, CodeOutOfBounds, "Out of bounds"
    case errors.Is(err, domain.ErrOccupied):
        return http.StatusUnprocessableEntity, CodeCellOccupied, "Cell is occupied"
    case errors.Is(err, domain.ErrInvalidStone):
        return http.StatusUnprocessableEntity, CodeInvalidStone, "Only black or white stones can be placed"
    case errors.Is(err, domain.ErrNoStoneToFlip):
        return http.StatusUnprocessableEntity, CodeNoStoneToFlip, "No stone to flip"
    case errors.Is(err, domain.ErrUnknownColor):
        return http.StatusBadRequest, CodeInvalidRequest, "Unknown color"
    default:
        return http.StatusInternalServerError, CodeInternal, "Internal error"
    }
}
