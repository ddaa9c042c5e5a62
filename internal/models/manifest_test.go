package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleManifest() *Manifest {
	pkg := &Record{Kind: KindPackage, Name: "search-pkg", Package: "search-pkg", SourcePath: "{PACKAGES_PATH}/search-pkg"}

	m := NewManifest(StageShrinkwrap)
	m.Add(KindView, &Record{Kind: KindView, Name: "a", View: "a", SourcePath: "{PROJECT_PATH}/views/a.html"})
	m.Add(KindService,
		&Record{Kind: KindService, Name: "foo", SourcePath: "{PROJECT_PATH}/foo.service.js"},
		&Record{Kind: KindService, Name: "search", SourcePath: "{PACKAGES_PATH}/search-pkg/search.service.js", Origin: pkg.Clone()},
	)
	m.Add(KindPackage, pkg)
	m.Ensure(KindStatic)
	return m
}

func TestManifest_JSONKeepsKindOrder(t *testing.T) {
	data, err := json.Marshal(sampleManifest())
	require.NoError(t, err)

	var keys []string
	entries, err := decodeOrderedObject(data)
	require.NoError(t, err)
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	require.Equal(t, []string{"views", "services", "packages", "statics"}, keys)

	var decoded Manifest
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, []Kind{KindView, KindService, KindPackage, KindStatic}, decoded.Kinds())
	require.Equal(t, "search-pkg", decoded.Records(KindService)[1].OriginName())
	require.True(t, decoded.Has(KindStatic))
	require.Equal(t, 4, decoded.Len())
}

func TestManifest_YAMLKeepsKindOrder(t *testing.T) {
	data, err := yaml.Marshal(sampleManifest())
	require.NoError(t, err)

	var decoded Manifest
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, []Kind{KindView, KindService, KindPackage, KindStatic}, decoded.Kinds())
	require.Equal(t, "{PACKAGES_PATH}/search-pkg/search.service.js", decoded.Records(KindService)[1].SourcePath)
}

func TestManifest_UnknownKey(t *testing.T) {
	var decoded Manifest
	require.Error(t, json.Unmarshal([]byte(`{"widgets": []}`), &decoded))
}

func TestManifest_CloneIsDeep(t *testing.T) {
	m := sampleManifest()
	c := m.Clone()
	c.Records(KindService)[1].Origin.Package = "changed"
	c.Records(KindService)[0].Name = "changed"

	require.Equal(t, "search-pkg", m.Records(KindService)[1].OriginName())
	require.Equal(t, "foo", m.Records(KindService)[0].Name)
}

func TestManifest_WalkVisitsImports(t *testing.T) {
	child := NewManifest(StageRollup)
	child.Add(KindService, &Record{Kind: KindService, Name: "search"})

	m := NewManifest(StageRollup)
	m.Add(KindPackage, &Record{Kind: KindPackage, Name: "search-pkg", Children: child})

	var visited []string
	var depths []int
	require.NoError(t, m.Walk(func(r *Record, depth int) error {
		visited = append(visited, r.Name)
		depths = append(depths, depth)
		return nil
	}))
	require.Equal(t, []string{"search-pkg", "search"}, visited)
	require.Equal(t, []int{0, 1}, depths)
}

func TestManifest_Filter(t *testing.T) {
	m := sampleManifest()

	services := m.Filter([]Kind{KindService}, OriginAll)
	require.Equal(t, []Kind{KindService}, services.Kinds())
	require.Len(t, services.Records(KindService), 2)

	local := m.Filter(nil, OriginLocal)
	require.Len(t, local.Records(KindService), 1)
	require.Len(t, local.Records(KindPackage), 1)

	fromPackages := m.Filter(nil, OriginPackages)
	require.Len(t, fromPackages.Records(KindService), 1)
	require.Empty(t, fromPackages.Records(KindView))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("services")
	require.NoError(t, err)
	require.Equal(t, KindService, k)

	k, err = ParseKind("viewsDir")
	require.NoError(t, err)
	require.Equal(t, KindView, k)

	_, err = ParseKind("widget")
	require.Error(t, err)
}

func TestParseProjectManifest(t *testing.T) {
	pm, err := ParseProjectManifest([]byte(`{
  "name": "demo",
  "routesDir": "app/routes",
  "services": ["a.service.js", {"service": "project"}],
  "routes": ["extra/routes"]
}`))
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, pm.Ignored)
	require.Len(t, pm.Entries, 3)
	require.Equal(t, "routesDir", pm.Entries[0].Key)
	require.Len(t, pm.Fragments(KindRoute), 2)
	require.Len(t, pm.Fragments(KindService), 2)
}
