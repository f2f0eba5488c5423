// Package application 包含申请生命周期的用例层：
// 事务协调器（apply / withdraw）、级联引擎与只读查询。
package application

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner 事务执行原语。
// 实现保证 fn 内的全部写入要么一起提交要么全部回滚，
// 并且每个事务都有有界的最长持续时间。*db.DB 是生产实现。
type TxRunner interface {
	WithTxTimeout(ctx context.Context, fn func(tx *gorm.DB) error) error
}
