package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func isWeb(s string) bool { return s == "web" }

func TestDecodeFragment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		shape   FragmentShape
		ref     string
		path    string
		wantErr bool
	}{
		{name: "short name", raw: `"web"`, shape: ShapeShortName, ref: "web"},
		{name: "path", raw: `"app/apps/admin.app.js"`, shape: ShapePath, path: "app/apps/admin.app.js"},
		{name: "inline ref", raw: `{"app": "web", "port": 6000}`, shape: ShapeInline, ref: "web"},
		{name: "inline path", raw: `{"path": "app/x.app.js"}`, shape: ShapeInline, path: "app/x.app.js"},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "number", raw: `7`, wantErr: true},
		{name: "bad port", raw: `{"app": "web", "port": "6000"}`, wantErr: true},
		{name: "bad path type", raw: `{"path": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := DecodeFragment(json.RawMessage(tt.raw), "app", isWeb)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.shape, frag.Shape)
			require.Equal(t, tt.ref, frag.Ref)
			require.Equal(t, tt.path, frag.Path)
		})
	}
}

func TestDecodeFragment_Options(t *testing.T) {
	frag, err := DecodeFragment(json.RawMessage(`{"app": "web", "port": 6000, "name": "site", "mount": "/"}`), "app", isWeb)
	require.NoError(t, err)
	require.Equal(t, 6000, frag.Port)
	require.Equal(t, "site", frag.Name)
	require.Equal(t, map[string]any{"mount": "/"}, frag.Options)
}

func TestDecodeFragment_PackageKeyIsNotARef(t *testing.T) {
	frag, err := DecodeFragment(json.RawMessage(`{"package": "search-pkg"}`), "package", nil)
	require.NoError(t, err)
	require.Equal(t, "", frag.Ref)
	require.Equal(t, "search-pkg", frag.Package)
	require.Nil(t, frag.Options)
}
