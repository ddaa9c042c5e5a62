package manifest

import (
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/templater"
)

// Resolve interpolates every path of a shrinkwrapped manifest with symbols.
// It never touches the filesystem, so it can run on every start against a
// cached shrinkwrap.
func Resolve(shrinkwrapped *models.Manifest, symbols templater.SymbolTable) (*models.Manifest, error) {
	out := models.NewManifest(models.StageLive)

	for _, kind := range shrinkwrapped.Kinds() {
		out.Ensure(kind)

		for _, rec := range shrinkwrapped.Records(kind) {
			live := rec.Clone()
			if err := resolveRecord(live, symbols); err != nil {
				return nil, err
			}
			out.Add(kind, live)
		}
	}

	return out, nil
}

func resolveRecord(rec *models.Record, symbols templater.SymbolTable) error {
	path, err := resolvePath(rec, rec.SourcePath, symbols)
	if err != nil {
		return err
	}
	rec.ResolvedPath = path

	if rec.Files != nil {
		rec.ResolvedFiles = make([]string, len(rec.Files))
		for i, f := range rec.Files {
			if rec.ResolvedFiles[i], err = resolvePath(rec, f, symbols); err != nil {
				return err
			}
		}
	}

	if rec.Origin != nil {
		return resolveRecord(rec.Origin, symbols)
	}
	return nil
}

func resolvePath(rec *models.Record, tpl string, symbols templater.SymbolTable) (string, error) {
	out := templater.Interpolate(tpl, symbols, nil)
	if missing := templater.Unresolved(out); len(missing) > 0 {
		return "", &MissingRootError{
			Symbol: missing[0],
			Kind:   rec.Kind,
			Name:   rec.Name,
			Path:   tpl,
		}
	}
	return out, nil
}
