package launch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakoblorz/go-panda/internal/models"
)

// AllApps selects every app of a manifest.
const AllApps = "*"

// Entry is one process to start.
type Entry struct {
	Kind    models.Kind
	Name    string
	Path    string
	Package string
	Port    int
}

// Env returns the variables exported to the entry's process.
func (e Entry) Env() []string {
	env := []string{
		"PANDA_ENTITY=" + e.Name,
		"PANDA_ENTITY_KIND=" + e.Kind.String(),
		"PANDA_ENTITY_PATH=" + e.Path,
		"PANDA_PACKAGE=" + e.Package,
	}
	if e.Port != 0 {
		env = append(env, fmt.Sprintf("PORT=%d", e.Port))
	}
	return env
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Name, e.Path)
}

// Plan is the ordered list of entries a launch starts: every service, then
// the selected apps.
type Plan struct {
	Entries []Entry
}

// Services returns the service entries.
func (p *Plan) Services() []Entry {
	return p.byKind(models.KindService)
}

// Apps returns the app entries.
func (p *Plan) Apps() []Entry {
	return p.byKind(models.KindApp)
}

func (p *Plan) byKind(kind models.Kind) []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// NewPlan builds a plan from a live manifest. An empty selection or "*"
// selects every app.
func NewPlan(live *models.Manifest, apps []string) (*Plan, error) {
	if live.Stage != models.StageLive {
		return nil, fmt.Errorf("cannot launch a %s manifest", live.Stage)
	}

	plan := &Plan{}
	for _, rec := range live.Records(models.KindService) {
		plan.Entries = append(plan.Entries, entryFor(rec))
	}

	selected, err := selectApps(live.Records(models.KindApp), apps)
	if err != nil {
		return nil, err
	}
	for _, rec := range selected {
		plan.Entries = append(plan.Entries, entryFor(rec))
	}

	return plan, nil
}

func selectApps(records []*models.Record, names []string) ([]*models.Record, error) {
	if len(names) == 0 {
		return records, nil
	}
	for _, n := range names {
		if n == AllApps {
			return records, nil
		}
	}

	byName := make(map[string]*models.Record, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	var unknown []string
	seen := make(map[string]bool, len(names))
	out := make([]*models.Record, 0, len(names))
	for _, n := range names {
		rec, ok := byName[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, rec)
	}

	if len(unknown) > 0 {
		known := make([]string, 0, len(byName))
		for n := range byName {
			known = append(known, n)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown app(s): %s (available: %s)", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}

	return out, nil
}

func entryFor(rec *models.Record) Entry {
	path := rec.ResolvedPath
	if path == "" {
		path = rec.SourcePath
	}
	return Entry{
		Kind:    rec.Kind,
		Name:    rec.Name,
		Path:    path,
		Package: rec.OriginName(),
		Port:    rec.Port,
	}
}
