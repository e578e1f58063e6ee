package istream

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	frames [][]byte
	events []string
}

func (f *fakeConsumer) SendEvent(event string, kw types.KW, src pubsub.Endpoint) (types.KW, error) {
	f.events = append(f.events, event)
	f.frames = append(f.frames, kw["frame"].([]byte))
	return types.KW{}, nil
}

func TestDelimiterModeFiresOnePerFrame(t *testing.T) {
	consumer := &fakeConsumer{}
	r, err := NewDelimited(consumer, []byte("\r\n"), "line")
	require.NoError(t, err)

	require.NoError(t, r.Consume([]byte("hello\r\nworld\r\npart")))
	require.Len(t, consumer.frames, 2)
	assert.Equal(t, "hello", string(consumer.frames[0]))
	assert.Equal(t, "world", string(consumer.frames[1]))
	assert.Equal(t, 4, r.Pending()) // "part" left buffered
}

func TestCountModeFiresAtTargetSize(t *testing.T) {
	consumer := &fakeConsumer{}
	r, err := NewCounted(consumer, 4, "chunk")
	require.NoError(t, err)

	require.NoError(t, r.Consume([]byte("ab")))
	assert.Empty(t, consumer.frames)
	require.NoError(t, r.Consume([]byte("cdef")))
	require.Len(t, consumer.frames, 1)
	assert.Equal(t, "abcd", string(consumer.frames[0]))
	assert.Equal(t, 2, r.Pending()) // "ef" left over, short of next frame
}

func TestRejectsBadConfig(t *testing.T) {
	_, err := NewDelimited(&fakeConsumer{}, nil, "ev")
	assert.Error(t, err)
	_, err = NewCounted(&fakeConsumer{}, 0, "ev")
	assert.Error(t, err)
}
