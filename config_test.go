package voltkv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffHeapConfigDefaults(t *testing.T) {
	cfg, err := NewOffHeapConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendOffHeap, cfg.Backend)
	assert.Equal(t, VariantHash, cfg.IndexVariant)
	assert.Equal(t, defaultMaxMemory, cfg.MaxMemory)
}

func TestNewOffHeapConfigRejectsZeroMemory(t *testing.T) {
	_, err := NewOffHeapConfig(WithMaxMemory(0))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNewMmapConfigTemporaryWhenPathEmpty(t *testing.T) {
	cfg, err := NewMmapConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Temporary)
}

func TestNewMmapConfigPersistentRequiresPath(t *testing.T) {
	cfg := &Config{Backend: BackendMmap, AllocateSize: 1024}
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfigRejectsNonPowerOfTwoSegments(t *testing.T) {
	_, err := NewOffHeapConfig(WithIndexVariant(VariantSegmented), WithSegments(100))
	assert.ErrorIs(t, err, ErrConfig)
}
