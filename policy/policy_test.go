package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminHasEverything(t *testing.T) {
	p := For(RoleAdmin)
	assert.True(t, p.ViewArticles)
	assert.True(t, p.ManageArticles)
	assert.True(t, p.CreateReservations)
	assert.True(t, p.CreatePickups)
	assert.True(t, p.ViewEntries)
	assert.True(t, p.ManageEntries)
	assert.True(t, p.ManageUsers)
	assert.True(t, p.DeleteRecords)
}

func TestRestrictedRolesCreateBothOperations(t *testing.T) {
	// 子角色只影响下拉用户过滤，不限制动作
	for _, r := range []Role{RoleReservation, RolePickup} {
		p := For(r)
		assert.True(t, p.ViewArticles, string(r))
		assert.True(t, p.CreateReservations, string(r))
		assert.True(t, p.CreatePickups, string(r))

		assert.False(t, p.ManageArticles, string(r))
		assert.False(t, p.ViewEntries, string(r))
		assert.False(t, p.ManageEntries, string(r))
		assert.False(t, p.ManageUsers, string(r))
		assert.False(t, p.DeleteRecords, string(r))
	}
}

func TestUnknownRoleIsReadOnly(t *testing.T) {
	p := For(RoleUnknown)
	assert.True(t, p.ViewArticles)
	assert.False(t, p.CreateReservations)
	assert.False(t, p.CreatePickups)
	assert.False(t, p.ManageArticles)
	assert.False(t, p.ViewEntries)
	assert.False(t, p.ManageUsers)

	// 任意乱值同样按未知处理
	assert.Equal(t, For(RoleUnknown), For(Role("SOMETHING_ELSE")))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(RoleAdmin))
	assert.True(t, Known(RoleReservation))
	assert.True(t, Known(RolePickup))
	assert.False(t, Known(RoleUnknown))
	assert.False(t, Known(Role("ADMIN")))
}
