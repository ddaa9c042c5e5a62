package e2e_test

import (
	"path/filepath"
	"testing"

	"github.com/jakoblorz/go-panda/internal/filesystem"
	"github.com/jakoblorz/go-panda/internal/manifest"
	"github.com/jakoblorz/go-panda/internal/models"
	"github.com/jakoblorz/go-panda/internal/pathctx"
	"github.com/stretchr/testify/require"
)

func kitchensink(t *testing.T) (filesystem.FileSystem, *pathctx.Context) {
	t.Helper()

	root, err := filepath.Abs(filepath.Join("..", "..", "kitchensink"))
	require.NoError(t, err)

	fs := filesystem.NewOSFileSystem()
	ctx := pathctx.Resolve(fs, pathctx.Options{
		Cwd:              root,
		FrameworkPath:    "/opt/panda",
		FrameworkVersion: "3.0.0",
	})
	require.Equal(t, pathctx.LocationProject, ctx.Location())
	return fs, ctx
}

func names(recs []*models.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestKitchensink_Shrinkwrap(t *testing.T) {
	fs, ctx := kitchensink(t)

	res, err := manifest.NewBuilder(fs, ctx).Build()
	require.NoError(t, err)

	sw := res.Shrinkwrap
	require.Equal(t, []string{"api", "www"}, names(sw.Records(models.KindApp)))
	require.Equal(t, []string{"queue", "mailer", "cache"}, names(sw.Records(models.KindService)))
	require.Equal(t, []string{"account/login", "index", "shared:widget"}, names(sw.Records(models.KindView)))
	require.Equal(t, []string{"card"}, names(sw.Records(models.KindComponent)))
	require.Equal(t, []string{"shared"}, names(sw.Records(models.KindPackage)))

	cache := sw.Records(models.KindService)[2]
	require.Equal(t, "shared", cache.OriginName())
	require.Equal(t, "{PACKAGES_PATH}/shared/lib/cache.service.js", cache.SourcePath)

	index := sw.Records(models.KindView)[1]
	require.Equal(t, "Home", index.Config["title"])

	card := sw.Records(models.KindComponent)[0]
	require.Equal(t, "ui", card.Namespace)

	routes := sw.Records(models.KindRoute)
	require.Len(t, routes, 1)
	require.Equal(t, []string{
		"{PROJECT_PATH}/routes/api/health.js",
		"{PROJECT_PATH}/routes/api/users.js",
	}, routes[0].Files)
}

func TestKitchensink_Live(t *testing.T) {
	fs, ctx := kitchensink(t)

	res, err := manifest.NewBuilder(fs, ctx, manifest.WithCoreServices(true)).Build()
	require.NoError(t, err)

	live, err := manifest.Resolve(res.Shrinkwrap, ctx)
	require.NoError(t, err)

	root := ctx.Get(pathctx.ProjectPath)
	services := live.Records(models.KindService)
	require.Equal(t, []string{"project", "component", "queue", "mailer", "cache"}, names(services))
	require.Equal(t, "/opt/panda/base/services/project.service.js", services[0].ResolvedPath)
	require.Equal(t, filepath.Join(root, "node_modules", "shared", "lib", "cache.service.js"), services[4].ResolvedPath)

	for _, rec := range services[2:] {
		require.FileExists(t, rec.ResolvedPath)
	}
}

func TestKitchensink_RelocatedProject(t *testing.T) {
	fs, ctx := kitchensink(t)

	res, err := manifest.NewBuilder(fs, ctx).Build()
	require.NoError(t, err)

	moved := ctx.WithRoot(pathctx.ProjectPath, "/srv/app").WithRoot(pathctx.PackagesPath, "/srv/app/node_modules")
	live, err := manifest.Resolve(res.Shrinkwrap, moved)
	require.NoError(t, err)

	require.Equal(t, "/srv/app/apps/www.app.js", live.Records(models.KindApp)[1].ResolvedPath)
	require.Equal(t, "/srv/app/node_modules/shared/lib/cache.service.js", live.Records(models.KindService)[2].ResolvedPath)
}
