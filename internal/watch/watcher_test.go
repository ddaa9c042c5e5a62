package watch

import (
	"context"
	"errors"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/x/project.json", true},
		{"/x/project.yaml", true},
		{"/x/node_modules/search-pkg/package.json", true},
		{"/x/components/card/component.json", true},
		{"/x/.pandaignore", true},
		{"/x/app/web.app.js", false},
		{"/x/views/index.html", false},
		{"/x/package-lock.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, Relevant(tt.path))
		})
	}
}

func TestSkipDir(t *testing.T) {
	require.True(t, skipDir("node_modules"))
	require.True(t, skipDir(".git"))
	require.True(t, skipDir(".panda"))
	require.False(t, skipDir("models"))
}

func TestWatcher_FlushDebouncesChanges(t *testing.T) {
	var calls [][]string
	w := newWatcher(Config{
		OnChange: func(ctx context.Context, paths []string) error {
			calls = append(calls, paths)
			return nil
		},
	})

	w.handle(fsnotify.Event{Name: "/x/project.json", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/x/project.json", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/x/app/web.app.js", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/x/node_modules/search-pkg/package.json", Op: fsnotify.Remove})

	require.NoError(t, w.flush(context.Background()))
	require.NoError(t, w.flush(context.Background()))

	require.Equal(t, [][]string{{"/x/node_modules/search-pkg/package.json", "/x/project.json"}}, calls)
}

func TestWatcher_FlushPropagatesError(t *testing.T) {
	w := newWatcher(Config{
		OnChange: func(ctx context.Context, paths []string) error {
			return errors.New("rebuild failed")
		},
	})

	w.handle(fsnotify.Event{Name: "/x/project.json", Op: fsnotify.Write})
	require.EqualError(t, w.flush(context.Background()), "rebuild failed")
}
