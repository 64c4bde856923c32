// Package render draws chart artifacts onto a terminal surface.
//
// A Surface owns at most one mounted artifact at a time; mounting a new one
// tears the previous rendering down first. Rendering failures are reported
// through the surface's error callback and never escape to the stores: a
// chart that fails to render stays persisted and can be retried.
package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/askviz/askviz/internal/chartspec"
	"github.com/askviz/askviz/internal/store"
)

// ErrInvalidSpec indicates the artifact's specification document does not
// describe a renderable chart. Check with errors.Is().
var ErrInvalidSpec = errors.New("chart specification is not renderable")

// ErrorFunc receives per-artifact rendering failures.
type ErrorFunc func(artifactID string, err error)

// Surface renders one artifact at a time as styled terminal output.
//
// Thread Safety: not safe for concurrent use; the TUI event loop is the
// only caller.
type Surface struct {
	renderer *glamour.TermRenderer
	width    int
	onError  ErrorFunc

	mountedID string
	output    string
}

// NewSurface creates a surface wrapping the given width. A failed glamour
// initialization degrades to plain markdown output rather than erroring.
func NewSurface(width int, onError ErrorFunc) *Surface {
	if width <= 0 {
		width = 80
	}
	s := &Surface{width: width, onError: onError}
	s.renderer = newTermRenderer(width)
	return s
}

func newTermRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// SetWidth resizes the surface, invalidating the cached rendering.
func (s *Surface) SetWidth(width int) {
	if width <= 0 || width == s.width {
		return
	}
	if r := newTermRenderer(width); r != nil {
		s.renderer = r
	}
	s.width = width
	s.mountedID = ""
	s.output = ""
}

// Mount renders the artifact, replacing whatever was mounted before, and
// returns the terminal output. Re-mounting the same artifact returns the
// cached rendering. On failure the error callback fires and the returned
// string is a short inline notice.
func (s *Surface) Mount(artifact store.ChartArtifact) string {
	if s.mountedID == artifact.ID && s.output != "" {
		return s.output
	}
	s.Unmount()

	out, err := s.render(artifact)
	if err != nil {
		if s.onError != nil {
			s.onError(artifact.ID, err)
		}
		return fmt.Sprintf("(chart %q could not be rendered: %v)", artifact.Title, err)
	}

	s.mountedID = artifact.ID
	s.output = out
	return out
}

// Unmount discards the current rendering.
func (s *Surface) Unmount() {
	s.mountedID = ""
	s.output = ""
}

// render validates the specification and produces styled output.
func (s *Surface) render(artifact store.ChartArtifact) (string, error) {
	if !chartspec.IsRenderable(artifact.Spec) {
		return "", ErrInvalidSpec
	}

	md := Markdown(artifact)
	if s.renderer == nil {
		return md, nil
	}
	out, err := s.renderer.Render(md)
	if err != nil {
		// Styling failed; the plain markdown is still useful.
		return md, nil
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// Markdown builds the markdown description of an artifact: title, chart
// shape summary, and the generating SQL in a fenced block.
func Markdown(artifact store.ChartArtifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", artifact.Title)

	if mark := markOf(artifact.Spec); mark != "" {
		fmt.Fprintf(&b, "**Chart:** %s", mark)
		if fields := encodedFields(artifact.Spec); len(fields) > 0 {
			fmt.Fprintf(&b, " of %s", strings.Join(fields, ", "))
		}
		b.WriteString("\n\n")
	}

	if artifact.SQL != "" {
		fmt.Fprintf(&b, "```sql\n%s\n```\n", artifact.SQL)
	}
	return b.String()
}

// markOf extracts the mark type from string or object form.
func markOf(doc chartspec.Document) string {
	switch mark := doc["mark"].(type) {
	case string:
		return mark
	case map[string]any:
		if t, ok := mark["type"].(string); ok {
			return t
		}
	}
	return ""
}

// encodedFields lists "field (channel)" pairs from the encoding block,
// sorted by channel for stable output.
func encodedFields(doc chartspec.Document) []string {
	encoding, ok := doc["encoding"].(map[string]any)
	if !ok {
		return nil
	}

	channels := make([]string, 0, len(encoding))
	for ch := range encoding {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	var out []string
	for _, ch := range channels {
		def, ok := encoding[ch].(map[string]any)
		if !ok {
			continue
		}
		if field, ok := def["field"].(string); ok && field != "" {
			out = append(out, fmt.Sprintf("%s (%s)", field, ch))
		}
	}
	return out
}
