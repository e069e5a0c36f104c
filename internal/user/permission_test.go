// AngelaMos | 2026
// permission_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(RoleAdministrator))
	assert.True(t, CanCreate(RoleManager))
	assert.False(t, CanCreate(RoleUser))
	assert.False(t, CanCreate(Role("")))
	assert.False(t, CanCreate(Role("Guest")))
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		actor  Role
		target Role
		isSelf bool
		want   bool
	}{
		{RoleAdministrator, RoleAdministrator, false, true},
		{RoleAdministrator, RoleManager, false, true},
		{RoleAdministrator, RoleUser, false, true},
		{RoleManager, RoleAdministrator, false, false},
		{RoleManager, RoleManager, false, true},
		{RoleManager, RoleUser, false, true},
		{RoleUser, RoleAdministrator, false, false},
		{RoleUser, RoleManager, false, false},
		{RoleUser, RoleUser, false, false},
		{RoleUser, RoleUser, true, true},
		{RoleManager, RoleManager, true, true},
		{RoleAdministrator, RoleAdministrator, true, true},
	}

	for _, tt := range tests {
		name := string(tt.actor) + "->" + string(tt.target)
		if tt.isSelf {
			name += "(self)"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEdit(tt.actor, tt.target, tt.isSelf))
		})
	}
}

func TestCanAssignRole(t *testing.T) {
	for _, actor := range Roles {
		for _, role := range Roles {
			want := actor.Rank() >= role.Rank()
			assert.Equal(t, want, CanAssignRole(actor, role), "%s assigning %s", actor, role)
		}
	}

	assert.False(t, CanAssignRole(RoleAdministrator, Role("Root")))
	assert.False(t, CanAssignRole(RoleManager, RoleAdministrator))
	assert.True(t, CanAssignRole(RoleManager, RoleManager))
}

func TestCanView(t *testing.T) {
	assert.True(t, CanView(RoleUser, true))
	assert.False(t, CanView(RoleUser, false))
	assert.True(t, CanView(RoleManager, false))
	assert.True(t, CanView(RoleAdministrator, false))
}

func TestParseRole(t *testing.T) {
	tests := map[string]struct {
		want Role
		ok   bool
	}{
		"Administrator": {RoleAdministrator, true},
		"manager":       {RoleManager, true},
		"USER":          {RoleUser, true},
		"":              {"", false},
		"owner":         {"", false},
	}

	for in, tt := range tests {
		got, ok := ParseRole(in)
		assert.Equal(t, tt.ok, ok, in)
		assert.Equal(t, tt.want, got, in)
	}
}

func TestRoleRankOrdering(t *testing.T) {
	assert.Greater(t, RoleAdministrator.Rank(), RoleManager.Rank())
	assert.Greater(t, RoleManager.Rank(), RoleUser.Rank())
	assert.False(t, Role("nobody").Valid())
}
