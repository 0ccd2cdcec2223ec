package web

import (
    "bytes"
    "html/template"

    "github.com/jaminalder/othello-board/internal/app"
    "github.com/jaminalder/othello-board/internal/domain"
)

type templates struct {
    base  *template.Template
    board *template.Template
    game  *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "symbol":  func(c domain.StoneColor) string { return c.Symbol() },
        "isEmpty": func(c domain.StoneColor) bool { return c == domain.Empty },
    }
}

// boardData feeds the board fragment.
type boardData struct {
    ID    string
    Grid  domain.Grid
    Black int
    White int
    Empty int
    Full  bool
    Error string
}

func newBoardData(bs app.BoardState, errMsg string) boardData {
    return boardData{
        ID:    bs.ID,
        Grid:  bs.Board.Grid(),
        Black: bs.Board.StoneCount(domain.Black),
        White: bs.Board.StoneCount(domain.White),
        Empty: bs.Board.StoneCount(domain.Empty),
        Full:  bs.Board.IsFull(),
        Error: errMsg,
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Othello</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Othello</h1><form action="/board" method="post"><button>New board</button></form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/board/{{.ID}}/events">
  <div hx-get="/board/{{.ID}}/" hx-trigger="sse:board" hx-select="#board" hx-target="#board" hx-swap="outerHTML"></div>
  {{template "board" .}}
</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, board: board, game: game, index: index}
}

// renderTemplate executes t, or the named template of its set when name is set.
func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}

// Empty cells offer a black and a white stone; occupied cells flip on click.
const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <p class="counts">black {{.Black}} · white {{.White}} · empty {{.Empty}}{{if .Full}} · full{{end}}</p>
  <table>
  {{range $r, $row := .Grid}}
    <tr>
    {{range $c, $cell := $row}}
      <td>
      {{if isEmpty $cell}}
        <form hx-post="/board/{{$.ID}}/put" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="r" value="{{$r}}">
          <input type="hidden" name="c" value="{{$c}}">
          <button type="submit" name="color" value="black">●</button>
          <button type="submit" name="color" value="white">○</button>
        </form>
      {{else}}
        <form hx-post="/board/{{$.ID}}/reverse" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="cells" value="{{$r}},{{$c}}">
          <button type="submit" class="stone">{{symbol $cell}}</button>
        </form>
      {{end}}
      </td>
    {{end}}
    </tr>
  {{end}}
  </table>
</div>
`
