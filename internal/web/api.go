package web

import (
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "reflect"
    "strings"

    "github.com/go-chi/chi/v5"
    "github.com/go-playground/validator/v10"
    "github.com/google/uuid"

    "github.com/jaminalder/othello-board/internal/domain"
)

var validate = validator.New()

// StoneRequest places one stone. Color is "black" or "white".
type StoneRequest struct {
    Row   *int   `json:"row" validate:"required"`
    Col   *int   `json:"col" validate:"required"`
    Color string `json:"color" validate:"required,max=16"`
}

type CellRequest struct {
    Row *int `json:"row" validate:"required"`
    Col *int `json:"col" validate:"required"`
}

// FlipRequest flips the listed stones. An empty list is a no-op.
type FlipRequest struct {
    Cells []CellRequest `json:"cells" validate:"max=256,dive"`
}

// requireJSON rejects bodies that are not declared as JSON.
func requireJSON(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPost || r.Method == http.MethodPut {
            ct := r.Header.Get("Content-Type")
            if ct != "" && !strings.HasPrefix(ct, "application/json") {
                writeError(w, http.StatusUnsupportedMediaType, CodeInvalidContent,
                    "unsupported media type", "Content-Type must be application/json")
                return
            }
        }
        next.ServeHTTP(w, r)
    })
}

func validBoardID(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if _, err := uuid.Parse(chi.URLParam(r, "id")); err != nil {
            writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid board ID format", "")
            return
        }
        next.ServeHTTP(w, r)
    })
}

// decode reads a JSON body into dst and runs struct validation.
func decode(r *http.Request, dst any) error {
    defer r.Body.Close()
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(dst); err != nil {
        return fmt.Errorf("invalid JSON: %w", err)
    }
    if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
        return errors.New("invalid JSON: trailing data")
    }
    if err := validate.Struct(dst); err != nil {
        return errors.New(describeValidation(err))
    }
    return nil
}

func describeValidation(err error) string {
    var errs validator.ValidationErrors
    if !errors.As(err, &errs) {
        return err.Error()
    }
    var details strings.Builder
    for _, e := range errs {
        if details.Len() > 0 {
            details.WriteString("; ")
        }
        switch e.Tag() {
        case "required":
            details.WriteString(fmt.Sprintf("%s is required", e.Field()))
        case "max":
            if e.Kind() == reflect.String {
                details.WriteString(fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
            } else {
                details.WriteString(fmt.Sprintf("%s must have at most %s entries", e.Field(), e.Param()))
            }
        default:
            details.WriteString(fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
        }
    }
    return details.String()
}

func (h *handlers) apiError(w http.ResponseWriter, err error) {
    status, code, msg := classify(err)
    if status == http.StatusInternalServerError {
        h.log.Errorw("api request failed", "error", err)
    }
    writeError(w, status, code, msg, err.Error())
}

func (h *handlers) apiCreate(w http.ResponseWriter, r *http.Request) {
    bs, err := h.svc.CreateBoard()
    if err != nil {
        h.apiError(w, err)
        return
    }
    w.Header().Set("Location", "/api/boards/"+bs.ID)
    writeJSON(w, http.StatusCreated, newBoardResponse(*bs))
}

func (h *handlers) apiList(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, h.svc.List())
}

func (h *handlers) apiGet(w http.ResponseWriter, r *http.Request) {
    bs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        writeError(w, http.StatusNotFound, CodeBoardNotFound, "Board not found", "")
        return
    }
    writeJSON(w, http.StatusOK, newBoardResponse(*bs))
}

func (h *handlers) apiDelete(w http.ResponseWriter, r *http.Request) {
    if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
        h.apiError(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) apiPut(w http.ResponseWriter, r *http.Request) {
    var req StoneRequest
    if err := decode(r, &req); err != nil {
        writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request", err.Error())
        return
    }
    color, err := domain.ParseStoneColor(req.Color)
    if err != nil {
        h.apiError(w, err)
        return
    }
    bs, err := h.svc.Put(chi.URLParam(r, "id"), *req.Row, *req.Col, color)
    if err != nil {
        h.apiError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, newBoardResponse(*bs))
}

func (h *handlers) apiReverse(w http.ResponseWriter, r *http.Request) {
    var req FlipRequest
    if err := decode(r, &req); err != nil {
        writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request", err.Error())
        return
    }
    cells := make([]domain.Position, len(req.Cells))
    for i, c := range req.Cells {
        cells[i] = domain.Position{Row: *c.Row, Col: *c.Col}
    }
    bs, err := h.svc.Reverse(chi.URLParam(r, "id"), cells)
    if err != nil {
        h.apiError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, newBoardResponse(*bs))
}
