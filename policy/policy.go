// Package policy maps a resolved role to the set of permitted actions.
// Evaluation is pure and synchronous; resolving the role (profile lookup by
// email) happens in the auth middleware, not here.
package policy

// Role 与原系统保持一致的角色值。
type Role string

const (
	RoleAdmin       Role = "MAGACIN_ADMIN"
	RoleReservation Role = "REZERVACIJA"
	RolePickup      Role = "PREUZIMANJE"

	// RoleUnknown：登录身份没有对应的用户档案，降级为只读。
	RoleUnknown Role = ""
)

// Known 报告 r 是否是系统定义的角色之一。
func Known(r Role) bool {
	switch r {
	case RoleAdmin, RoleReservation, RolePickup:
		return true
	}
	return false
}

// Permissions 是一次角色解析后的动作集合。
type Permissions struct {
	ViewArticles       bool `json:"viewArticles"`
	ManageArticles     bool `json:"manageArticles"` // 新建/修改/删除 article
	CreateReservations bool `json:"createReservations"`
	CreatePickups      bool `json:"createPickups"`
	ViewEntries        bool `json:"viewEntries"`
	ManageEntries      bool `json:"manageEntries"`
	ManageUsers        bool `json:"manageUsers"`
	DeleteRecords      bool `json:"deleteRecords"` // 删除预订/提货/进货记录
}

// For 纯函数：角色 → 权限。子角色（REZERVACIJA/PREUZIMANJE）只用来过滤
// 下拉列表里的用户，不限制动作本身。
func For(r Role) Permissions {
	switch r {
	case RoleAdmin:
		return Permissions{
			ViewArticles:       true,
			ManageArticles:     true,
			CreateReservations: true,
			CreatePickups:      true,
			ViewEntries:        true,
			ManageEntries:      true,
			ManageUsers:        true,
			DeleteRecords:      true,
		}
	case RoleReservation, RolePickup:
		return Permissions{
			ViewArticles:       true,
			CreateReservations: true,
			CreatePickups:      true,
		}
	default:
		// 未知角色：只读
		return Permissions{ViewArticles: true}
	}
}
