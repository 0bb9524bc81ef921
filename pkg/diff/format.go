package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Format writes d in unified style without context lines:
//
//	--- a/path
//	+++ b/path
//	@@ -3,1 +3,2 @@
//	-old
//	+new
//	+newer
func Format(w io.Writer, d *FileDiff) error {
	if d.Empty() {
		return nil
	}
	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", d.OldLabel, d.NewLabel); err != nil {
		return err
	}
	for _, h := range d.Hunks {
		if _, err := fmt.Fprintln(w, h.Header()); err != nil {
			return err
		}
		for _, l := range h.Removed {
			if _, err := fmt.Fprintf(w, "-%s\n", l); err != nil {
				return err
			}
		}
		for _, l := range h.Added {
			if _, err := fmt.Fprintf(w, "+%s\n", l); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders d with Format.
func (d *FileDiff) String() string {
	var b strings.Builder
	_ = Format(&b, d)
	return b.String()
}

// Colorize writes diff text highlighted for a 256-color terminal.
func Colorize(w io.Writer, text string) error {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return fmt.Errorf("colorize: %w", err)
	}
	return formatter.Format(w, style, it)
}
