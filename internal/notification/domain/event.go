// Package domain 定义通知事件与外部投递端口
package domain

import (
	"context"
	"time"
)

// EventType 通知事件类型
type EventType string

const (
	// EventApplicationSubmitted 新申请（含重新激活），通知雇主
	EventApplicationSubmitted EventType = "application.submitted"
	// EventApplicationWithdrawn 学生主动撤回，通知雇主
	EventApplicationWithdrawn EventType = "application.withdrawn"
	// EventOfferUpdated 职位内容变更，通知活跃申请人
	EventOfferUpdated EventType = "offer.updated"
	// EventOfferDeleted 职位删除导致的级联拒绝，通知申请人
	EventOfferDeleted EventType = "offer.deleted"
	// EventProfileWithdrawal 档案删除导致的级联撤回，通知雇主
	EventProfileWithdrawal EventType = "profile.withdrawal"
)

// Event 通知事件，纯数据，对投递机制无感知
type Event struct {
	Type EventType `json:"type"`
	// Recipient 收件人邮箱
	Recipient string `json:"recipient"`
	// RecipientName 收件人显示名
	RecipientName string `json:"recipient_name,omitempty"`
	// OfferTitle 相关职位名称
	OfferTitle string `json:"offer_title,omitempty"`
	// StudentName 相关学生显示名
	StudentName string `json:"student_name,omitempty"`
	// Reason 触发原因（如职位删除原因）
	Reason string `json:"reason,omitempty"`
	// OccurredAt 事件发生时间
	OccurredAt time.Time `json:"occurred_at"`
}

// Port 外部通知投递端口。
// 核心逻辑只依赖此接口，具体投递机制（邮件网关等）在进程之外。
type Port interface {
	Dispatch(ctx context.Context, event Event) error
}
