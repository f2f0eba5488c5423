// Package domain 包含求职档案（availability profile）的领域模型
package domain

import (
	"context"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"gorm.io/gorm"
)

// ProfileStatus 档案可见性，可见性决定投递资格
type ProfileStatus string

const (
	ProfileStatusVisible ProfileStatus = "visible"
	ProfileStatusHidden  ProfileStatus = "hidden"
)

// 档案相关错误
var (
	// ErrProfileNotFound 档案不存在
	ErrProfileNotFound = errs.NotFound("availability profile")
	// ErrNotOwner 操作者不是档案所有者
	ErrNotOwner = errs.Forbidden("you can only manage your own profile")
	// ErrProfileExists 学生已有档案（1:1）
	ErrProfileExists = errs.Conflict("an availability profile already exists for this student")
	// ErrPasswordRequired 删除档案必须提供密码确认
	ErrPasswordRequired = errs.Validation("password is required to confirm deletion")
	// ErrPasswordMismatch 密码确认失败
	ErrPasswordMismatch = errs.Unauthorized("incorrect password, deletion aborted")
)

// Profile 求职档案实体，每个学生至多一份。
// 删除档案是硬删除，并在同一事务内级联撤回该学生的活跃申请。
type Profile struct {
	gorm.Model
	StudentID uint
	Phone     string
	Skills    string
	Experience string
	WorkHours int
	// AvailableFrom 可开始工作的日期
	AvailableFrom *time.Time
	Status        ProfileStatus
}

// IsVisible 档案是否对雇主可见（投递资格）
func (p *Profile) IsVisible() bool {
	return p.Status == ProfileStatusVisible
}

// Update 显式的部分更新结构：字段为 nil 表示不更新
type Update struct {
	Phone         *string
	Skills        *string
	Experience    *string
	WorkHours     *int
	AvailableFrom *time.Time
	Status        *ProfileStatus
}

// Validate 校验部分更新的各字段
func (u *Update) Validate() error {
	if u.WorkHours != nil && *u.WorkHours < 0 {
		return errs.Validation("work hours must not be negative")
	}
	if u.Status != nil {
		switch *u.Status {
		case ProfileStatusVisible, ProfileStatusHidden:
		default:
			return errs.Validation("invalid profile status")
		}
	}
	return nil
}

// Apply 把校验过的部分更新应用到实体
func (u *Update) Apply(p *Profile) {
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Skills != nil {
		p.Skills = *u.Skills
	}
	if u.Experience != nil {
		p.Experience = *u.Experience
	}
	if u.WorkHours != nil {
		p.WorkHours = *u.WorkHours
	}
	if u.AvailableFrom != nil {
		p.AvailableFrom = u.AvailableFrom
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}

// ProfileRepository 档案仓储接口
type ProfileRepository interface {
	// 绑定事务句柄
	WithTx(tx *gorm.DB) ProfileRepository
	// 创建档案，学生维度唯一
	Create(ctx context.Context, profile *Profile) error
	// 按 ID 查找，不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*Profile, error)
	// 按学生查找，不存在时返回 (nil, nil)
	FindByStudent(ctx context.Context, studentID uint) (*Profile, error)
	// 更新档案
	Update(ctx context.Context, profile *Profile) error
	// 硬删除档案
	Delete(ctx context.Context, id uint) error
}
