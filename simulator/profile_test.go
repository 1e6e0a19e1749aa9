package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/batlife/core/features"
	"github.com/kilianp07/batlife/core/model"
)

func TestGenerateProfile_Shape(t *testing.T) {
	profileRng = rand.New(rand.NewSource(1))
	cfg := DefaultProfileConfig()
	cfg.Days = 3
	cfg.StartDay = 100
	ts, err := GenerateProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3*model.MinutesPerDay, ts.Len())
	assert.Equal(t, int64(100*model.MinutesPerDay), ts.Timestamps[0])
	require.NoError(t, ts.CheckContiguous())

	_, days, err := features.Extract(ts)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 101, 102}, days)
}

func TestGenerateProfile_NightIsLoadOnly(t *testing.T) {
	cfg := ProfileConfig{Days: 1, StartDay: 172, BaseLoadW: 300, PVPeakW: 5000}
	ts, err := GenerateProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, 300.0, ts.Powers[0])      // midnight
	assert.Less(t, ts.Powers[12*60], -4000.0) // solar noon at the solstice
	assert.InDelta(t, 300-5000, ts.Powers[12*60], 1e-9)
}

func TestGenerateProfile_WinterHasLessPV(t *testing.T) {
	summer, err := GenerateProfile(ProfileConfig{Days: 1, StartDay: 172, PVPeakW: 4000})
	require.NoError(t, err)
	winter, err := GenerateProfile(ProfileConfig{Days: 1, StartDay: 355, PVPeakW: 4000})
	require.NoError(t, err)
	fs, _, err := features.Extract(summer)
	require.NoError(t, err)
	fw, _, err := features.Extract(winter)
	require.NoError(t, err)
	assert.Greater(t, fs[0].MeanAbsPowerW, fw[0].MeanAbsPowerW)
}

func TestGenerateProfile_SeedIsReproducible(t *testing.T) {
	cfg := DefaultProfileConfig()
	cfg.Days = 1
	cfg.Seed = 42
	a, err := GenerateProfile(cfg)
	require.NoError(t, err)
	b, err := GenerateProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProfileConfig_Validate(t *testing.T) {
	assert.Error(t, ProfileConfig{}.Validate())
	assert.Error(t, ProfileConfig{Days: 1, StartDay: -1}.Validate())
	assert.Error(t, ProfileConfig{Days: 1, NoiseW: -1}.Validate())
	assert.NoError(t, DefaultProfileConfig().Validate())
}
