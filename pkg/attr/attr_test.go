package attr

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *schema.Desc {
	return &schema.Desc{Fields: []schema.Field{
		{Name: "name", Type: types.TypeString, Flags: types.AttrReadable | types.AttrWritable | types.AttrRequired},
		{Name: "count", Type: types.TypeInt64, Flags: types.AttrReadable | types.AttrWritable, Default: int64(0)},
	}}
}

func TestWriteRejectedBeforeCreated(t *testing.T) {
	s := New(testSchema(), Hooks{})
	err := s.Write("name", "x")
	assert.ErrorContains(t, err, "state error")
}

func TestWriteAfterCreateThenTypeMismatch(t *testing.T) {
	s := New(testSchema(), Hooks{})
	s.MarkCreated()
	require.NoError(t, s.Write("name", "door"))
	v, err := s.Read("name")
	require.NoError(t, err)
	assert.Equal(t, "door", v)

	err = s.Write("count", "not-an-int")
	assert.ErrorContains(t, err, "type mismatch")
}

func TestMissingRequired(t *testing.T) {
	s := New(testSchema(), Hooks{})
	s.MarkCreated()
	assert.Equal(t, []string{"name"}, s.MissingRequired())
	require.NoError(t, s.Write("name", "door"))
	assert.Empty(t, s.MissingRequired())
}

func TestPostWriteHooksFire(t *testing.T) {
	var written string
	var statsOld, statsNew any
	hooks := Hooks{
		OnPostWrite: func(name string) { written = name },
		OnPostWriteStats: func(name string, old, new any) {
			statsOld, statsNew = old, new
		},
	}
	sc := &schema.Desc{Fields: []schema.Field{
		{Name: "hits", Type: types.TypeInt64, Flags: types.AttrWritable | types.AttrStats, Default: int64(0)},
	}}
	s := New(sc, hooks)
	s.MarkCreated()
	require.NoError(t, s.Write("hits", int64(5)))
	assert.Equal(t, "hits", written)
	assert.Equal(t, int64(0), statsOld)
	assert.Equal(t, int64(5), statsNew)
}

type fakeBottom struct{ v string }

func (f *fakeBottom) Read(name string) (any, error) {
	if name == "inherited" {
		return f.v, nil
	}
	return nil, assertNotFound
}
func (f *fakeBottom) Write(name string, value any) error { return nil }
func (f *fakeBottom) Has(name string) bool                { return name == "inherited" }

var assertNotFound = errNotFoundForTest{}

type errNotFoundForTest struct{}

func (errNotFoundForTest) Error() string { return "not found" }

func TestBottomDelegation(t *testing.T) {
	s := New(testSchema(), Hooks{})
	s.MarkCreated()
	s.SetBottom(&fakeBottom{v: "from-bottom"})

	v, err := s.Read("inherited")
	require.NoError(t, err)
	assert.Equal(t, "from-bottom", v)

	_, err = s.Read("nonexistent")
	assert.ErrorContains(t, err, "not found")
}

func TestResetDefaults(t *testing.T) {
	s := New(testSchema(), Hooks{})
	s.MarkCreated()
	require.NoError(t, s.Write("count", int64(42)))
	s.ResetDefaults(0, 0)
	v, _ := s.Read("count")
	assert.Equal(t, int64(0), v)
}
