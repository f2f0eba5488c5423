package domain

import "fmt"

// Action 请求对申请执行的动作
type Action string

const (
	// ActionApply 学生投递（对已存在记录意味着重新激活）
	ActionApply Action = "apply"
	// ActionWithdraw 学生主动撤回
	ActionWithdraw Action = "withdraw"
	// ActionRejectByOfferDeletion 职位被删除触发的级联拒绝
	ActionRejectByOfferDeletion Action = "reject_by_offer_deletion"
	// ActionWithdrawByProfileDeletion 档案被删除触发的级联撤回
	ActionWithdrawByProfileDeletion Action = "withdraw_by_profile_deletion"
)

// Decision 状态机裁定结果
type Decision struct {
	// Next 迁移后的状态，NoOp 时无意义
	Next Status
	// NoOp 请求合法但无需任何状态变更（幂等成功）
	NoOp bool
	// Reactivation 本次 apply 是对 withdrawn 记录的重新激活
	Reactivation bool
}

// Decide 纯决策函数：给定当前状态与动作，返回下一状态或错误。
// 不做任何 I/O；新建申请（无现有记录的 apply）不经过此函数。
func Decide(current Status, action Action) (Decision, error) {
	switch action {
	case ActionApply:
		// 仅 withdrawn 记录可被重新激活，其余一律视为重复申请
		if current == StatusWithdrawn {
			return Decision{Next: StatusPending, Reactivation: true}, nil
		}
		return Decision{}, ErrDuplicateActiveApplication

	case ActionWithdraw:
		if current.IsTerminal() {
			return Decision{}, ErrAlreadyFinalized
		}
		if current == StatusWithdrawn {
			// 重复撤回是幂等成功，不追加历史
			return Decision{NoOp: true}, nil
		}
		return Decision{Next: StatusWithdrawn}, nil

	case ActionRejectByOfferDeletion:
		if !current.IsActive() {
			return Decision{NoOp: true}, nil
		}
		return Decision{Next: StatusRejected}, nil

	case ActionWithdrawByProfileDeletion:
		if !current.IsActive() {
			return Decision{NoOp: true}, nil
		}
		return Decision{Next: StatusWithdrawn}, nil
	}

	return Decision{}, fmt.Errorf("unknown application action: %s", action)
}
