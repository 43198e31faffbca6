package domain

// 授权策略集中在这里，handler 不各写各的

// IsAdmin 角色在登录时解析一次，随 token 传递
func IsAdmin(role string) bool { return role == RoleAdmin }

// CanMutateReview 只有作者本人可以改/删自己的评论
func CanMutateReview(actorID string, r *Review) bool {
	return r != nil && actorID != "" && r.UserID == actorID
}

// CanDeleteUser 持有 admin 角色的账号不允许被删除
func CanDeleteUser(target *User) bool {
	return target != nil && target.Role != RoleAdmin
}
