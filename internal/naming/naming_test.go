package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	require.Equal(t, "PANDA", Env("panda"))
	require.Equal(t, "PANDA_DEV", Env("panda-dev"))
	require.Equal(t, "MY_LABEL", Env("my_label"))
}

func TestLocationFlag(t *testing.T) {
	require.Equal(t, "inPanda", LocationFlag("panda"))
	require.Equal(t, "inPandaDev", LocationFlag("panda-dev"))
}
