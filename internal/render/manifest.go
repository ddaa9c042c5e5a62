package render

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/go-panda/internal/models"
)

const (
	headerTemplate = `{{ .Kind.Plural | title }} ({{ .Count }})`
	recordTemplate = `{{ name (.Name | default "-") }}` +
		`{{ if .Port }} :{{ .Port }}{{ end }} {{ subtle .Path }}` +
		`{{ if .Core }} {{ core "(core)" }}{{ end }}` +
		`{{ with .Files }} {{ subtle (printf "%d file(s)" (len .)) }}{{ end }}` +
		`{{ with .Origin }} {{ subtle (printf "from %s" .) }}{{ end }}`
)

type headerView struct {
	Kind  models.Kind
	Count int
}

type recordView struct {
	Name   string
	Port   int
	Path   string
	Core   bool
	Files  []string
	Origin string
}

func newRecordView(r *models.Record) recordView {
	v := recordView{
		Name:   r.Name,
		Port:   r.Port,
		Path:   r.SourcePath,
		Core:   r.Core,
		Files:  r.Files,
		Origin: r.OriginName(),
	}
	if r.ResolvedPath != "" {
		v.Path = r.ResolvedPath
	}
	if r.ResolvedFiles != nil {
		v.Files = r.ResolvedFiles
	}
	return v
}

// Manifest writes m in the given format. The text format is a tree of
// kinds and records; rollup manifests show each package's imports below it.
func Manifest(w io.Writer, m *models.Manifest, format Format) error {
	if format != FormatText {
		return writeData(w, format, m)
	}

	tw, err := newTreeWriter(w)
	if err != nil {
		return err
	}
	return tw.write(m)
}

type treeWriter struct {
	w      io.Writer
	styles Styles
	header *template.Template
	record *template.Template
	err    error
}

func newTreeWriter(w io.Writer) (*treeWriter, error) {
	styles := NewStyles(w)

	funcs := sprig.TxtFuncMap()
	funcs["name"] = styles.Name.Render
	funcs["subtle"] = styles.Subtle.Render
	funcs["core"] = styles.Core.Render

	header, err := template.New("header").Funcs(funcs).Parse(headerTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header template: %w", err)
	}
	record, err := template.New("record").Funcs(funcs).Parse(recordTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record template: %w", err)
	}

	return &treeWriter{w: w, styles: styles, header: header, record: record}, nil
}

func (tw *treeWriter) write(m *models.Manifest) error {
	tw.printf("%s\n\n", tw.styles.Title.Render(fmt.Sprintf("%s manifest", titleCase(string(m.Stage)))))

	kinds := m.Kinds()
	if len(kinds) == 0 {
		tw.printf("No entities declared.\n")
		return tw.err
	}

	for _, kind := range kinds {
		tw.kind(m, kind, "")
		tw.printf("\n")
	}

	tw.printf("Summary:\n")
	tw.printf("- %d record(s)\n", m.Len())
	tw.printf("- %d kind(s)\n", len(kinds))

	return tw.err
}

func (tw *treeWriter) kind(m *models.Manifest, kind models.Kind, indent string) {
	recs := m.Records(kind)
	tw.printf("%s%s\n", indent, tw.styles.Header.Render(tw.exec(tw.header, headerView{Kind: kind, Count: len(recs)})))

	for i, rec := range recs {
		branch, cont := "├─ ", "│  "
		if i == len(recs)-1 {
			branch, cont = "└─ ", "   "
		}

		tw.printf("%s%s%s\n", indent, branch, tw.exec(tw.record, newRecordView(rec)))

		if rec.Children != nil && rec.Children.Len() > 0 {
			for _, child := range rec.Children.Kinds() {
				if len(rec.Children.Records(child)) > 0 {
					tw.kind(rec.Children, child, indent+cont)
				}
			}
		}
	}
}

func (tw *treeWriter) exec(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil && tw.err == nil {
		tw.err = fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String()
}

func (tw *treeWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	if _, err := fmt.Fprintf(tw.w, format, args...); err != nil {
		tw.err = err
	}
}

var titleCase = sprig.TxtFuncMap()["title"].(func(string) string)
