// Package domain 包含候选申请的领域模型与状态机
package domain

import (
	"time"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"gorm.io/gorm"
)

// Status 申请状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewed  Status = "reviewed"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// IsTerminal 是否为终态，终态后不允许任何迁移
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsActive 是否为活跃状态（可被撤回或级联触达）
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusReviewed
}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// MaxMessageLength 申请附言的最大长度
const MaxMessageLength = 500

// 申请相关的业务错误
var (
	// ErrDuplicateActiveApplication 同一 (student, offer) 已存在未被撤回的申请
	ErrDuplicateActiveApplication = errs.Conflict("an active application for this offer already exists")
	// ErrAlreadyFinalized 申请已被雇主定稿，不可再变更
	ErrAlreadyFinalized = errs.Business("application has already been finalized")
	// ErrNotEligible 申请人没有可见的求职档案
	ErrNotEligible = errs.Forbidden("a visible availability profile is required to apply")
	// ErrOfferUnavailable 目标职位不存在、未发布或已过期
	ErrOfferUnavailable = errs.New(errs.ErrNotFound, "offer unavailable")
	// ErrApplicationNotFound 申请不存在
	ErrApplicationNotFound = errs.NotFound("application")
	// ErrMessageTooLong 附言超长
	ErrMessageTooLong = errs.Validation("message must not exceed 500 characters")
)

// StatusChange 状态变更记录，只追加，插入顺序即时间顺序
type StatusChange struct {
	Status    Status
	ChangedAt time.Time
	Note      string
}

// Application 候选申请实体。
// 申请是 student 与 offer 之间的关系实体，employer 为冗余字段以便雇主侧查询。
// 申请从不被硬删除：offer 或档案的删除只改变其状态。
type Application struct {
	gorm.Model
	StudentID  uint
	OfferID    uint
	EmployerID uint
	Status     Status
	Message    string
	// History 按追加顺序排列的状态历史
	History []StatusChange
}

// NewApplication 创建一条新申请，初始状态 pending 并带首条历史
func NewApplication(studentID, offerID, employerID uint, message string, now time.Time) *Application {
	return &Application{
		StudentID:  studentID,
		OfferID:    offerID,
		EmployerID: employerID,
		Status:     StatusPending,
		Message:    message,
		History: []StatusChange{
			{Status: StatusPending, ChangedAt: now},
		},
	}
}

// Transition 应用一次已裁定的状态迁移，并追加一条历史记录
func (a *Application) Transition(next Status, note string, at time.Time) StatusChange {
	a.Status = next
	change := StatusChange{Status: next, ChangedAt: at, Note: note}
	a.History = append(a.History, change)
	return change
}

// LastChange 最近一条历史记录
func (a *Application) LastChange() *StatusChange {
	if len(a.History) == 0 {
		return nil
	}
	return &a.History[len(a.History)-1]
}
