package bind

import (
	"log/slog"
	"quill/internal/diag"
	"quill/internal/token"
)

// reportBindError blames the call site, hands the error to sink and returns
// the status a failed binding produces.
func reportBindError(err error, blame token.Token, sink diag.Sink) int {
	de, ok := diag.AsError(err)
	if !ok {
		de = diag.New(diag.Runtime, blame, "%s", err.Error())
	}
	// The reader has no per-word locations, so the call site always wins.
	de.SetLocation(blame)

	slog.Debug("proc binding failed",
		slog.String("kind", de.Kind.String()),
		slog.String("error", de.Msg))

	if sink != nil {
		sink.Report(de)
	}
	return StatusBindFailure
}
