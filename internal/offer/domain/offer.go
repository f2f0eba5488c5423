// Package domain 包含职位（offer）的领域模型
package domain

import (
	"context"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OfferStatus 职位状态
type OfferStatus string

const (
	OfferStatusPublished OfferStatus = "published"
	OfferStatusDraft     OfferStatus = "draft"
	OfferStatusExpired   OfferStatus = "expired"
)

// 职位相关错误
var (
	// ErrOfferNotFound 职位不存在
	ErrOfferNotFound = errs.NotFound("offer")
	// ErrNotOwner 操作者不是该职位的发布者
	ErrNotOwner = errs.Forbidden("you do not own this offer")
	// ErrReasonRequired 删除职位必须给出原因
	ErrReasonRequired = errs.Validation("deletion reason is required")
	// ErrCompanyProfileIncomplete 雇主资料不完整，不能发布职位
	ErrCompanyProfileIncomplete = errs.Validation("complete your company profile (name and headquarters) before publishing an offer")
)

// Offer 职位实体，由一个雇主拥有。
// 删除职位是硬删除，并在同一事务内级联更新引用它的申请。
type Offer struct {
	gorm.Model
	EmployerID       uint
	Position         string
	Description      string
	WorkLocation     string
	WorkHours        int
	Salary           decimal.Decimal
	ContractType     string
	ContractDuration string
	ContactMethod    string
	Status           OfferStatus
	// ExpiresAt 为空表示不过期
	ExpiresAt *time.Time
}

// IsOpen 职位是否可被投递：已发布且未过期
func (o *Offer) IsOpen(now time.Time) bool {
	if o.Status != OfferStatusPublished {
		return false
	}
	if o.ExpiresAt != nil && !o.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Update 显式的部分更新结构：字段为 nil 表示不更新。
// 每个字段在应用前单独校验，不做动态字段拼装。
type Update struct {
	Position         *string
	Description      *string
	WorkLocation     *string
	WorkHours        *int
	Salary           *decimal.Decimal
	ContractType     *string
	ContractDuration *string
	ContactMethod    *string
	Status           *OfferStatus
	ExpiresAt        *time.Time
}

// Validate 校验部分更新的各字段
func (u *Update) Validate() error {
	if u.Position != nil && *u.Position == "" {
		return errs.Validation("position must not be empty")
	}
	if u.Description != nil && *u.Description == "" {
		return errs.Validation("description must not be empty")
	}
	if u.WorkHours != nil && *u.WorkHours <= 0 {
		return errs.Validation("work hours must be positive")
	}
	if u.Salary != nil && u.Salary.IsNegative() {
		return errs.Validation("salary must not be negative")
	}
	if u.Status != nil {
		switch *u.Status {
		case OfferStatusPublished, OfferStatusDraft, OfferStatusExpired:
		default:
			return errs.Validation("invalid offer status")
		}
	}
	return nil
}

// Apply 把校验过的部分更新应用到实体
func (u *Update) Apply(o *Offer) {
	if u.Position != nil {
		o.Position = *u.Position
	}
	if u.Description != nil {
		o.Description = *u.Description
	}
	if u.WorkLocation != nil {
		o.WorkLocation = *u.WorkLocation
	}
	if u.WorkHours != nil {
		o.WorkHours = *u.WorkHours
	}
	if u.Salary != nil {
		o.Salary = *u.Salary
	}
	if u.ContractType != nil {
		o.ContractType = *u.ContractType
	}
	if u.ContractDuration != nil {
		o.ContractDuration = *u.ContractDuration
	}
	if u.ContactMethod != nil {
		o.ContactMethod = *u.ContactMethod
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.ExpiresAt != nil {
		o.ExpiresAt = u.ExpiresAt
	}
}

// OfferRepository 职位仓储接口
type OfferRepository interface {
	// 绑定事务句柄
	WithTx(tx *gorm.DB) OfferRepository
	// 创建职位
	Create(ctx context.Context, offer *Offer) error
	// 按 ID 查找，不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*Offer, error)
	// 批量按 ID 查找
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Offer, error)
	// 分页列出已发布职位
	ListPublished(ctx context.Context, page, limit int, sortOldest bool) ([]*Offer, int64, error)
	// 列出雇主的全部职位
	ListByEmployer(ctx context.Context, employerID uint) ([]*Offer, error)
	// 更新职位
	Update(ctx context.Context, offer *Offer) error
	// 硬删除职位
	Delete(ctx context.Context, id uint) error
}
