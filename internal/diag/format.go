package diag

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"quill/internal/util"
)

// Sink receives located errors for rendering.
type Sink interface {
	Report(err *Error)
}

// Formatter renders errors against the source they point into.
type Formatter struct {
	w    io.Writer
	Path string
	Src  string
}

func NewFormatter(w io.Writer, path, src string) *Formatter {
	return &Formatter{w: w, Path: path, Src: src}
}

func (f *Formatter) Report(err *Error) {
	slog.Debug("reporting diagnostic",
		slog.String("kind", err.Kind.String()),
		slog.String("msg", err.Msg),
		slog.Int("position", err.Location.Position))
	_, _ = io.WriteString(f.w, f.Format(err))
}

func (f *Formatter) Format(err *Error) string {
	var out bytes.Buffer
	out.WriteString(fmt.Sprintf("Error: %s\n", err.Msg))

	if !err.Location.IsValid() || f.Src == "" {
		return out.String()
	}

	line, col := util.GetLineAndColumn(f.Src, err.Location.Position)
	out.WriteString(fmt.Sprintf("    --> %s:%d:%d\n", f.Path, line, col))
	out.WriteString(util.GetContextLines(f.Src, line, col, err.Kind.String()+" error here"))
	return out.String()
}
