package authz

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	class *gclass.Class
	priv  any
}

func (f *fakeTarget) Class() *gclass.Class { return f.class }
func (f *fakeTarget) PrivateData() any     { return f.priv }
func (f *fakeTarget) Name() string         { return "fake" }

func TestUserHasAuthzDefaultAllowWithNoSchema(t *testing.T) {
	target := &fakeTarget{class: &gclass.Class{Name: "c"}}
	allowed, err := UserHasAuthz(target, "read", nil, nil)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUserHasAuthzClassHook(t *testing.T) {
	desc := &schema.Desc{Fields: []schema.Field{{Name: "read", Type: types.TypeString}}}
	var seen string
	class := &gclass.Class{
		Name:  "c",
		Authz: desc,
		Hooks: gclass.Hooks{OnAuthzCheck: func(priv any, authzName string, kw types.KW, src string) bool {
			seen = authzName
			return authzName == "read"
		}},
	}
	target := &fakeTarget{class: class}

	allowed, err := UserHasAuthz(target, "read", nil, nil)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, "read", seen)

	allowed, err = UserHasAuthz(target, "write", nil, nil)
	require.Error(t, err) // "write" not in schema
	assert.False(t, allowed)
}

func TestUserHasAuthzGlobalChecker(t *testing.T) {
	RegisterGlobalChecker(func(target Target, authzName string, kw types.KW, src pubsub.Endpoint) (bool, bool) {
		return false, true
	})
	t.Cleanup(func() { RegisterGlobalChecker(nil) })

	desc := &schema.Desc{Fields: []schema.Field{{Name: "delete", Type: types.TypeString}}}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Authz: desc}}

	allowed, err := UserHasAuthz(target, "delete", nil, nil)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthenticateDefaultsToOSIdentity(t *testing.T) {
	id, err := Authenticate(nil)
	require.NoError(t, err)
	assert.Equal(t, "os", id.Source)
	assert.NotEmpty(t, id.User)
}
