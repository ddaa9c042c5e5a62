package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jakoblorz/go-panda/internal/pathctx"
)

// ContextView is the serializable form of a path context.
type ContextView struct {
	Cwd          string            `json:"cwd" yaml:"cwd"`
	Location     pathctx.Location  `json:"location" yaml:"location"`
	Roots        map[string]string `json:"roots" yaml:"roots"`
	Flags        map[string]bool   `json:"flags" yaml:"flags"`
	Libraries    []pathctx.Library `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	PrivateLabel string            `json:"privateLabel,omitempty" yaml:"privateLabel,omitempty"`
}

// NewContextView captures ctx.
func NewContextView(ctx *pathctx.Context) ContextView {
	return ContextView{
		Cwd:          ctx.Cwd(),
		Location:     ctx.Location(),
		Roots:        ctx.Roots(),
		Flags:        ctx.Flags(),
		Libraries:    ctx.Libraries(),
		PrivateLabel: ctx.Label(),
	}
}

type rootGroup struct {
	title   string
	symbols []string
}

// groupRoots sorts bound roots into display groups. Private label roots
// get their own group.
func groupRoots(symbols []string) []rootGroup {
	groups := []rootGroup{{title: "Paths"}, {title: "Versions"}, {title: "Names"}, {title: "Private Label"}}

	for _, sym := range symbols {
		switch {
		case strings.HasPrefix(sym, "PRIVATE_LABEL_"):
			groups[3].symbols = append(groups[3].symbols, sym)
		case strings.HasSuffix(sym, "_PATH"):
			groups[0].symbols = append(groups[0].symbols, sym)
		case strings.HasSuffix(sym, "_VERSION"):
			groups[1].symbols = append(groups[1].symbols, sym)
		default:
			groups[2].symbols = append(groups[2].symbols, sym)
		}
	}

	return groups
}

// Context writes ctx in the given format.
func Context(w io.Writer, ctx *pathctx.Context, format Format) error {
	if format != FormatText {
		return writeData(w, format, NewContextView(ctx))
	}

	styles := NewStyles(w)
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("%s %s", styles.Header.Render("Location:"), styles.Name.Render(ctx.Location().String()))
	add("%s %s", styles.Header.Render("Directory:"), ctx.Cwd())

	var set []string
	for flag, on := range ctx.Flags() {
		if on {
			set = append(set, flag)
		}
	}
	sort.Strings(set)
	if len(set) == 0 {
		add("%s %s", styles.Header.Render("Flags:"), styles.Subtle.Render("none"))
	} else {
		add("%s %s", styles.Header.Render("Flags:"), styles.Flag.Render(strings.Join(set, ", ")))
	}

	for _, g := range groupRoots(ctx.Symbols()) {
		if len(g.symbols) == 0 {
			continue
		}

		width := 0
		for _, sym := range g.symbols {
			width = max(width, len(sym))
		}

		add("")
		add("%s", styles.Header.Render(g.title))
		for _, sym := range g.symbols {
			add("  %-*s  %s", width, sym, ctx.Get(sym))
		}
	}

	if label := ctx.Label(); label != "" {
		add("")
		add("%s %s", styles.Header.Render("Private label:"), styles.Name.Render(label))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
