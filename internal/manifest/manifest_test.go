package manifest

import (
	"errors"
	"sync"
	"testing"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/stretchr/testify/require"
)

func searchProject() *pathctx.ProjectBuilder {
	return pathctx.NewProjectBuilder("/x").
		WithManifest(`{
  "services": ["app/services/foo.service.js"],
  "packages": [{ "package": "search-pkg" }]
}`).
		AddFile("app/services/foo.service.js", "").
		AddPackage("search-pkg", `{ "services": ["models/search.service.js"] }`).
		AddPackageFile("search-pkg", "models/search.service.js", "")
}

func newBuilder(t *testing.T, fs filesystem.FileSystem, options ...Option) *Builder {
	t.Helper()
	ctx := pathctx.Resolve(fs, pathctx.Options{FrameworkPath: "/opt/panda", FrameworkVersion: "3.0.0"})
	return NewBuilder(fs, ctx, options...)
}

func recordNames(recs []*models.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestBuild_SearchPackageScenario(t *testing.T) {
	b := newBuilder(t, searchProject().Build())

	res, err := b.Build()
	require.NoError(t, err)

	services := res.Shrinkwrap.Records(models.KindService)
	require.Equal(t, []string{"foo", "search"}, recordNames(services))
	require.Nil(t, services[0].Origin)
	require.NotNil(t, services[1].Origin)
	require.Equal(t, "search-pkg", services[1].OriginName())
	require.Equal(t, "{PACKAGES_PATH}/search-pkg/models/search.service.js", services[1].SourcePath)
}

func TestRollup_NestsPackageImports(t *testing.T) {
	b := newBuilder(t, searchProject().Build())

	res, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, []models.Kind{models.KindService, models.KindPackage}, res.Rollup.Kinds())
	require.Len(t, res.Rollup.Records(models.KindService), 1)

	pkgs := res.Rollup.Records(models.KindPackage)
	require.Len(t, pkgs, 1)
	require.NotNil(t, pkgs[0].Children)
	require.Equal(t, []string{"search"}, recordNames(pkgs[0].Children.Records(models.KindService)))
}

func TestShrinkwrap_PackageProvenance(t *testing.T) {
	b := newBuilder(t, searchProject().Build())

	res, err := b.Build()
	require.NoError(t, err)

	pkgs := res.Shrinkwrap.Records(models.KindPackage)
	require.Len(t, pkgs, 1)
	require.Equal(t, "search-pkg", pkgs[0].Package)
	require.Nil(t, pkgs[0].Children)
	require.Nil(t, pkgs[0].Origin)

	search := res.Shrinkwrap.Records(models.KindService)[1]
	require.Equal(t, "search-pkg", search.Origin.Package)
	require.Nil(t, search.Origin.Children)

	err = res.Shrinkwrap.Walk(func(r *models.Record, _ int) error {
		require.Nil(t, r.Children)
		return nil
	})
	require.NoError(t, err)

	require.NotNil(t, res.Rollup.Records(models.KindPackage)[0].Children, "shrinkwrap must not mutate the rollup")
}

func TestShrinkwrap_CardinalityWithoutDirectories(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"services": ["a.service.js", "b.service.js", {"path": "c.service.js", "name": "a"}]}`).
		AddFile("a.service.js", "").
		AddFile("b.service.js", "").
		AddFile("c.service.js", "").
		Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)

	services := res.Shrinkwrap.Records(models.KindService)
	require.Len(t, services, 3)
	for _, s := range services {
		require.Nil(t, s.Origin)
	}

	// duplicates are kept and the last one wins on lookup
	require.Equal(t, "{PROJECT_PATH}/c.service.js", res.Shrinkwrap.Index(models.KindService)["a"].SourcePath)
}

func TestShrinkwrap_NestedPackagesTagDirectContributor(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["outer"]}`).
		AddPackage("outer", `{"packages": ["inner"], "apps": ["outer.app.js"]}`).
		AddPackageFile("outer", "outer.app.js", "").
		AddPackage("inner", `{"services": ["inner.service.js"]}`).
		AddPackageFile("inner", "inner.service.js", "").
		Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)

	sw := res.Shrinkwrap
	require.Equal(t, []string{"inner", "outer"}, recordNames(sw.Records(models.KindPackage)))
	require.Equal(t, "outer", sw.Records(models.KindPackage)[0].OriginName())
	require.Equal(t, "", sw.Records(models.KindPackage)[1].OriginName())
	require.Equal(t, "inner", sw.Records(models.KindService)[0].OriginName())
	require.Equal(t, "outer", sw.Records(models.KindApp)[0].OriginName())
}

func TestRollup_DiamondImportsAreNotCycles(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["left", "right"]}`).
		AddPackage("left", `{"packages": ["shared"]}`).
		AddPackage("right", `{"packages": ["shared"]}`).
		AddPackage("shared", "").
		Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"shared", "left", "shared", "right"}, recordNames(res.Shrinkwrap.Records(models.KindPackage)))
}

func TestRollup_CycleError(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["a"]}`).
		AddPackage("a", `{"packages": ["b"]}`).
		AddPackage("b", `{"packages": ["a"]}`).
		Build()
	b := newBuilder(t, fs)

	_, err := b.Build()
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	require.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
	require.Contains(t, err.Error(), "a -> b -> a")
}

func TestRollup_SelfImport(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["loop"]}`).
		AddPackage("loop", `{"packages": ["loop"]}`).
		Build()
	b := newBuilder(t, fs)

	_, err := b.Build()
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	require.Equal(t, []string{"loop", "loop"}, cycle.Chain)
}

func TestRollup_PackageNotInstalled(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["ghost"]}`).
		Build()
	b := newBuilder(t, fs)

	_, err := b.Build()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, models.KindPackage, cfgErr.Kind)
}

func TestRollup_PackageErrorsAreWrapped(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["broken"]}`).
		AddPackage("broken", `{"services": ["missing.service.js"]}`).
		Build()
	b := newBuilder(t, fs)

	_, err := b.Build()
	require.ErrorContains(t, err, "failed to roll up package broken")
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRollup_PackageWithoutManifestHasNoChildren(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"packages": ["plain"]}`).
		AddPackage("plain", "").
		Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)
	require.Nil(t, res.Rollup.Records(models.KindPackage)[0].Children)
}

func TestRollup_KindOrderFollowsManifest(t *testing.T) {
	fs := pathctx.NewProjectBuilder("/x").
		WithManifest(`{"name": "demo", "publicDir": "public", "apps": ["web"], "static": ["assets"]}`).
		AddDir("public").
		AddDir("assets").
		Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []models.Kind{models.KindStatic, models.KindApp}, res.Rollup.Kinds())
	require.Equal(t, []string{"public", "assets"}, recordNames(res.Rollup.Records(models.KindStatic)))
}

func TestBuild_CoreServices(t *testing.T) {
	b := newBuilder(t, searchProject().Build(), WithCoreServices(true))

	res, err := b.Build()
	require.NoError(t, err)

	services := res.Shrinkwrap.Records(models.KindService)
	require.Equal(t, []string{"project", "component", "foo", "search"}, recordNames(services))
	require.True(t, services[0].Core)
	require.Equal(t, "{PANDA_PATH}/base/services/project.service.js", services[0].SourcePath)
}

func TestBuild_RequiresProject(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/lib/package.json", []byte(`{"name":"lib","version":"1.0.0"}`))
	ctx := pathctx.Resolve(fs, pathctx.Options{Cwd: "/lib"})

	_, err := NewBuilder(fs, ctx).Build()
	var locErr *pathctx.LocationError
	require.True(t, errors.As(err, &locErr))
}

func TestResolve_PopulatesResolvedPaths(t *testing.T) {
	fs := searchProject().
		AddFile("app/routes/index.js", "").
		Build()
	fs.AddFile("/x/project.json", []byte(`{
  "services": ["app/services/foo.service.js"],
  "routesDir": "app/routes",
  "packages": [{ "package": "search-pkg" }]
}`))
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)
	for _, r := range res.Shrinkwrap.Records(models.KindService) {
		require.Empty(t, r.ResolvedPath)
	}

	live, err := Resolve(res.Shrinkwrap, b.Context())
	require.NoError(t, err)
	require.Equal(t, models.StageLive, live.Stage)

	services := live.Records(models.KindService)
	require.Equal(t, "/x/app/services/foo.service.js", services[0].ResolvedPath)
	require.Equal(t, "/x/node_modules/search-pkg/models/search.service.js", services[1].ResolvedPath)
	require.Equal(t, "/x/node_modules/search-pkg", services[1].Origin.ResolvedPath)

	routes := live.Records(models.KindRoute)
	require.Equal(t, []string{"/x/app/routes/index.js"}, routes[0].ResolvedFiles)

	require.Empty(t, res.Shrinkwrap.Records(models.KindService)[0].ResolvedPath, "live pass must not mutate its input")
}

func TestResolve_IndependentOfBuildContext(t *testing.T) {
	fs := searchProject().Build()
	b := newBuilder(t, fs)

	res, err := b.Build()
	require.NoError(t, err)

	ctxA := b.Context()
	ctxB := ctxA.
		WithRoot(pathctx.ProjectPath, "/y").
		WithRoot(pathctx.PackagesPath, "/y/node_modules")

	liveA, err := Resolve(res.Shrinkwrap, ctxA)
	require.NoError(t, err)
	liveB, err := Resolve(res.Shrinkwrap, ctxB)
	require.NoError(t, err)

	a := liveA.Records(models.KindService)
	bs := liveB.Records(models.KindService)
	require.Len(t, bs, len(a))
	for i := range a {
		require.Equal(t, a[i].SourcePath, bs[i].SourcePath)
		require.Equal(t, "/y"+a[i].ResolvedPath[len("/x"):], bs[i].ResolvedPath)
	}
}

func TestResolve_MissingRoot(t *testing.T) {
	shrinkwrap := models.NewManifest(models.StageShrinkwrap)
	shrinkwrap.Add(models.KindApp, &models.Record{
		Kind:       models.KindApp,
		Name:       "web",
		SourcePath: "{PANDA_PATH}/base/apps/web.app.js",
	})

	_, err := Resolve(shrinkwrap, pathctx.Resolve(filesystem.NewMockFileSystem(), pathctx.Options{Cwd: "/nowhere"}))
	var missing *MissingRootError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "PANDA_PATH", missing.Symbol)
	require.Equal(t, "web", missing.Name)
	require.Equal(t, models.KindApp, missing.Kind)
}

func TestBuilder_ConcurrentRollups(t *testing.T) {
	fs := searchProject().Build()
	b := newBuilder(t, fs)

	pm, err := b.Load()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*models.Manifest, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = b.Rollup(pm, nil)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, []string{"foo", "search"}, recordNames(Shrinkwrap(results[i]).Records(models.KindService)))
	}
}
