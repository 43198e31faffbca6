package domain

import "errors"

var (
	// ErrNotFound 目标行不存在（含更新途中消失的情况）
	ErrNotFound = errors.New("record not found")
	// ErrAdminUndeletable 删除时重查到 admin 角色
	ErrAdminUndeletable = errors.New("admin account cannot be deleted")
	// ErrDuplicateEmail 邮箱唯一约束冲突
	ErrDuplicateEmail = errors.New("email already in use")
)
