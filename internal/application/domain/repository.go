package domain

import (
	"context"

	"gorm.io/gorm"
)

// ApplicationRepository 申请仓储接口。
// WithTx 返回绑定到指定事务句柄的仓储副本，事务上下文显式传递，不使用环境会话。
type ApplicationRepository interface {
	// 绑定事务句柄
	WithTx(tx *gorm.DB) ApplicationRepository
	// 创建申请（连同初始历史）。(student, offer) 唯一约束冲突返回 ErrDuplicateActiveApplication
	Create(ctx context.Context, app *Application) error
	// 更新申请的状态与附言
	Update(ctx context.Context, app *Application) error
	// 追加一条状态历史
	AppendHistory(ctx context.Context, applicationID uint, change StatusChange) error
	// 按 (student, offer) 查找申请，含完整历史；不存在时返回 (nil, nil)
	FindByStudentAndOffer(ctx context.Context, studentID, offerID uint) (*Application, error)
	// 列出学生的申请，status 为空时不过滤
	ListByStudent(ctx context.Context, studentID uint, status Status, sortOldest bool) ([]*Application, error)
	// 列出目标职位的活跃申请（pending/reviewed）
	ListActiveByOffer(ctx context.Context, offerID uint) ([]*Application, error)
	// 列出学生的活跃申请（pending/reviewed）
	ListActiveByStudent(ctx context.Context, studentID uint) ([]*Application, error)
	// 统计职位的非撤回申请数
	CountNonWithdrawnByOffer(ctx context.Context, offerID uint) (int64, error)
}
