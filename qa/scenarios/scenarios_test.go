package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batlife/core/model"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestProfileDef_ToSeries(t *testing.T) {
	ts, err := ProfileDef{Days: 1, Remainder: 10, StartMinute: 1440, PowerW: 5}.ToSeries()
	require.NoError(t, err)
	assert.Equal(t, model.MinutesPerDay+10, ts.Len())
	assert.Equal(t, int64(1440), ts.Timestamps[0])
	require.NoError(t, ts.CheckContiguous())

	_, err = ProfileDef{Kind: "synthetic", Days: 1, StartMinute: 5}.ToSeries()
	assert.Error(t, err)
	_, err = ProfileDef{Kind: "recorded"}.ToSeries()
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load("no-file.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("strategy: greedy\n"), 0o644))
	_, err = Load(unnamed)
	assert.Error(t, err)
}
