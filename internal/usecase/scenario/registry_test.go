package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Group{Name: "auth", Scenarios: []Scenario{{Name: "login", Run: pass}}}))

	s, ok := r.Get("auth/login")
	require.True(t, ok)
	assert.Equal(t, "auth", s.Group)

	err := r.Register(Group{Name: "auth", Scenarios: []Scenario{{Name: "login", Run: pass}}})
	assert.ErrorContains(t, err, "auth/login registered twice")

	err = r.Register(Group{Name: "other", Scenarios: []Scenario{{Name: "ok", Run: pass}, {Name: "empty"}}})
	assert.ErrorContains(t, err, "other/empty has no body")
	_, ok = r.Get("other/ok")
	assert.False(t, ok, "a rejected group registers nothing")
	assert.Len(t, r.Groups(), 1)
}

func TestRegistry_SelectDropsEmptyGroups(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Group{Name: "a", Scenarios: []Scenario{{Name: "x", Tags: []string{"@mock"}, Run: pass}}}))
	require.NoError(t, r.Register(Group{Name: "b", Scenarios: []Scenario{{Name: "y", Run: pass}}}))

	groups := r.Select(nil)

	require.Len(t, groups, 1)
	assert.Equal(t, "b", groups[0].Name)
	assert.Len(t, r.Groups()[0].Scenarios, 1, "selection does not modify the registry")
}

func TestFilter(t *testing.T) {
	plain := Scenario{Name: "valid login", Group: "auth"}
	boundary := Scenario{Name: "long input handling", Group: "auth", Tags: []string{"@boundary"}}
	mock := Scenario{Name: "session timeout simulation", Group: "security", Tags: []string{"@mock", "@security"}}

	def, err := NewFilter("")
	require.NoError(t, err)
	assert.True(t, def.Match(plain))
	assert.True(t, def.Match(boundary))
	assert.False(t, def.Match(mock))
	assert.Equal(t, "not @mock", def.String())

	sec, err := NewFilter("@SECURITY")
	require.NoError(t, err)
	assert.False(t, sec.Match(plain))
	assert.True(t, sec.Match(mock))

	byName, err := NewFilter("^auth/valid")
	require.NoError(t, err)
	assert.True(t, byName.Match(plain))
	assert.False(t, byName.Match(boundary), "tags come first in the title")

	_, err = NewFilter("(")
	assert.ErrorContains(t, err, "invalid scenario filter")
}

func TestScenario_Title(t *testing.T) {
	s := Scenario{Name: "concurrent login", Group: "auth", Tags: []string{"@security"}}
	assert.Equal(t, "auth/concurrent login", s.ID())
	assert.Equal(t, "@security auth/concurrent login", s.Title())
	assert.True(t, s.HasTag("@Security"))
	assert.Equal(t, "solo", Scenario{Name: "solo"}.Title())
}

func TestSuite(t *testing.T) {
	r := NewSuiteRegistry()

	assert.Equal(t, []string{
		"auth/case sensitive password validation",
		"auth/concurrent login",
		"auth/empty credentials validation",
		"auth/failed login with invalid credentials",
		"auth/long input handling",
		"auth/navigation to admin module",
		"auth/session timeout after inactivity",
		"auth/session validation after logout",
		"auth/successful login with valid credentials",
		"auth/successful logout",
		"dashboard/dashboard page validation",
		"directory/directory page navigation and basic validation",
		"directory/directory pagination validation",
		"directory/directory search functionality validation",
		"security/session timeout simulation",
	}, r.IDs())

	groups := r.Groups()
	require.Len(t, groups, 4)
	assert.NotNil(t, groups[0].BeforeAll, "auth checks reachability first")

	def := r.Select(nil)
	total := 0
	for _, g := range def {
		total += len(g.Scenarios)
		for _, s := range g.Scenarios {
			assert.False(t, s.HasTag("@mock"), s.ID())
		}
	}
	assert.Equal(t, 14, total)

	inactivity, ok := r.Get("auth/session timeout after inactivity")
	require.True(t, ok)
	assert.NotEmpty(t, inactivity.Skip)
}
