package templater

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	symbols := Symbols{
		"PROJECT_PATH":  "/x",
		"PACKAGES_PATH": "/x/node_modules",
	}

	tests := []struct {
		name  string
		tpl   string
		extra map[string]string
		want  string
	}{
		{name: "single", tpl: "{PROJECT_PATH}/app/services", want: "/x/app/services"},
		{name: "unknown stays literal", tpl: "{LABEL_PATH}/apps", want: "{LABEL_PATH}/apps"},
		{name: "extra after symbols", tpl: "{PROJECT_PATH}/{SUB}", extra: map[string]string{"SUB": "views", "PROJECT_PATH": "/ignored"}, want: "/x/views"},
		{name: "concrete untouched", tpl: "/abs/path.js", want: "/abs/path.js"},
		{name: "non symbol braces", tpl: "/a/{not a symbol}/b", want: "/a/{not a symbol}/b"},
		{name: "repeated", tpl: "{PROJECT_PATH}:{PROJECT_PATH}", want: "/x:/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Interpolate(tt.tpl, symbols, tt.extra))
		})
	}
}

func TestInterpolate_NestedValues(t *testing.T) {
	symbols := Symbols{
		"PACKAGES_PATH": "{PROJECT_PATH}/node_modules",
		"PROJECT_PATH":  "/x",
	}
	require.Equal(t, "/x/node_modules/search-pkg", Interpolate("{PACKAGES_PATH}/search-pkg", symbols, nil))
}

func TestInterpolate_Idempotent(t *testing.T) {
	symbols := Symbols{"PROJECT_PATH": "/x", "PANDA_PATH": "/opt/panda"}
	extra := map[string]string{"NAME": "web"}

	for _, tpl := range []string{
		"{PANDA_PATH}/base/apps/{NAME}.app.js",
		"{PROJECT_PATH}/app",
		"{MISSING}/still/{PROJECT_PATH}",
		"/already/concrete",
	} {
		once := Interpolate(tpl, symbols, extra)
		require.Equal(t, once, Interpolate(once, symbols, extra), tpl)
	}
}

func TestInterpolate_Composable(t *testing.T) {
	partial := Interpolate("{PACKAGES_PATH}/search-pkg/{SUB}", Symbols{}, map[string]string{"SUB": "models"})
	require.Equal(t, "{PACKAGES_PATH}/search-pkg/models", partial)

	full := Interpolate(partial, Symbols{"PACKAGES_PATH": "/y/node_modules"}, nil)
	require.Equal(t, "/y/node_modules/search-pkg/models", full)
}

func TestInterpolate_NilSymbols(t *testing.T) {
	require.Equal(t, "/a/b", Interpolate("{ROOT}/b", nil, map[string]string{"ROOT": "/a"}))
}

func TestExpandPackagePath(t *testing.T) {
	require.Equal(t, "{PACKAGES_PATH}/search-pkg/models", ExpandPackagePath("{PACKAGE_PATH}/models", "search-pkg"))
	require.Equal(t, "{PACKAGE_PATH}/models", ExpandPackagePath("{PACKAGE_PATH}/models", ""))
	require.Equal(t, "{PROJECT_PATH}/x", ExpandPackagePath("{PROJECT_PATH}/x", "search-pkg"))
}

func TestUnresolved(t *testing.T) {
	require.Equal(t, []string{"A", "B"}, Unresolved("{B}/{A}/{B}"))
	require.Nil(t, Unresolved("/plain"))
	require.True(t, IsConcrete("/plain"))
	require.False(t, IsConcrete("{A}/plain"))
}

func TestChain(t *testing.T) {
	chain := Chain{Symbols{"A": "1"}, nil, Symbols{"A": "2", "B": "3"}}
	require.Equal(t, "1/3", Interpolate("{A}/{B}", chain, nil))
}
