package iev

import (
	"strings"
	"testing"

	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToBufferFromBufferRoundTrip(t *testing.T) {
	env, err := Create("data_arrived", types.KW{"n": 3, "label": "ok"})
	require.NoError(t, err)

	buf, err := ToBuffer(env)
	require.NoError(t, err)

	event, kw, err := FromBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, "data_arrived", event)
	assert.EqualValues(t, 3, kw["n"])
	assert.Equal(t, "ok", kw["label"])
}

func TestCreateRejectsOverlongEventName(t *testing.T) {
	_, err := Create(strings.Repeat("x", MaxEventNameBytes+1), nil)
	assert.Error(t, err)
}

func TestCreateDropsNonNeutralValues(t *testing.T) {
	env, err := Create("ev", types.KW{"fn": func() {}, "ok": "kept"})
	require.NoError(t, err)
	_, hasFn := env.KW["fn"]
	assert.False(t, hasFn)
	assert.Equal(t, "kept", env.KW["ok"])
}
