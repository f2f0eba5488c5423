package application

import (
	"context"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	notifapp "github.com/StefanoVidesott/WannaWork-App/internal/notification/application"
	notifdomain "github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	offerdomain "github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	profiledomain "github.com/StefanoVidesott/WannaWork-App/internal/profile/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"github.com/StefanoVidesott/WannaWork-App/pkg/metrics"
)

// ApplyCommand 投递申请命令
type ApplyCommand struct {
	StudentID uint
	OfferID   uint
	Message   string
}

// ApplyResult 投递结果
type ApplyResult struct {
	Application *ApplicationDTO `json:"application"`
	// Reactivated 本次投递是对 withdrawn 记录的重新激活
	Reactivated bool `json:"reactivated"`
}

// WithdrawCommand 撤回申请命令
type WithdrawCommand struct {
	StudentID uint
	OfferID   uint
	Reason    string
}

// WithdrawResult 撤回结果
type WithdrawResult struct {
	Application *ApplicationDTO `json:"application,omitempty"`
	// AlreadyWithdrawn 申请本就处于 withdrawn，幂等成功，未发生任何变更
	AlreadyWithdrawn bool `json:"alreadyWithdrawn"`
}

// ApplicationCommandService 申请写路径的事务协调器。
// 每个操作是一个显式事务：校验、裁定、写入在同一事务内完成，
// 通知所需的冗余数据也在提交前收集，事件只在提交成功后分发。
type ApplicationCommandService struct {
	db         TxRunner
	apps       domain.ApplicationRepository
	offers     offerdomain.OfferRepository
	profiles   profiledomain.ProfileRepository
	accounts   accountdomain.AccountRepository
	dispatcher *notifapp.Dispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewApplicationCommandService 创建申请命令服务
func NewApplicationCommandService(
	db TxRunner,
	apps domain.ApplicationRepository,
	offers offerdomain.OfferRepository,
	profiles profiledomain.ProfileRepository,
	accounts accountdomain.AccountRepository,
	dispatcher *notifapp.Dispatcher,
	m *metrics.Metrics,
) *ApplicationCommandService {
	return &ApplicationCommandService{
		db:         db,
		apps:       apps,
		offers:     offers,
		profiles:   profiles,
		accounts:   accounts,
		dispatcher: dispatcher,
		metrics:    m,
		now:        time.Now,
	}
}

// Apply 投递申请。
// 资格校验（可见档案、开放职位）、重复检测与重新激活都在同一事务内：
//  1. 学生必须有状态为 visible 的求职档案
//  2. 职位必须存在、已发布且未过期
//  3. 无现有记录则新建 pending 申请；现有记录为 withdrawn 则重新激活；
//     其余情况为重复申请，返回冲突
//
// 并发下唯一索引兜底：同一 (student, offer) 的第二次插入由数据库拒绝。
func (s *ApplicationCommandService) Apply(ctx context.Context, cmd ApplyCommand) (*ApplyResult, error) {
	if utf8.RuneCountInString(cmd.Message) > domain.MaxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	var (
		result ApplyResult
		event  notifdomain.Event
	)
	err := s.db.WithTxTimeout(ctx, func(tx *gorm.DB) error {
		profiles := s.profiles.WithTx(tx)
		offers := s.offers.WithTx(tx)
		apps := s.apps.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		profile, err := profiles.FindByStudent(ctx, cmd.StudentID)
		if err != nil {
			return err
		}
		if profile == nil || !profile.IsVisible() {
			return domain.ErrNotEligible
		}

		offer, err := offers.FindByID(ctx, cmd.OfferID)
		if err != nil {
			return err
		}
		now := s.now()
		if offer == nil || !offer.IsOpen(now) {
			return domain.ErrOfferUnavailable
		}

		existing, err := apps.FindByStudentAndOffer(ctx, cmd.StudentID, cmd.OfferID)
		if err != nil {
			return err
		}

		var app *domain.Application
		if existing == nil {
			app = domain.NewApplication(cmd.StudentID, cmd.OfferID, offer.EmployerID, cmd.Message, now)
			if err := apps.Create(ctx, app); err != nil {
				return err
			}
		} else {
			decision, err := domain.Decide(existing.Status, domain.ActionApply)
			if err != nil {
				return err
			}
			change := existing.Transition(decision.Next, "reactivated after withdrawal", now)
			if cmd.Message != "" {
				existing.Message = cmd.Message
			}
			if err := apps.Update(ctx, existing); err != nil {
				return err
			}
			if err := apps.AppendHistory(ctx, existing.ID, change); err != nil {
				return err
			}
			app = existing
			result.Reactivated = decision.Reactivation
		}
		result.Application = toApplicationDTO(app)

		// 提交前收集通知冗余数据，提交后不再依赖数据库
		employer, err := accounts.FindByID(ctx, offer.EmployerID)
		if err != nil {
			return err
		}
		student, err := accounts.FindByID(ctx, cmd.StudentID)
		if err != nil {
			return err
		}
		if employer != nil {
			event = notifdomain.Event{
				Type:          notifdomain.EventApplicationSubmitted,
				Recipient:     employer.Email,
				RecipientName: employer.FullName(),
				OfferTitle:    offer.Position,
				OccurredAt:    now,
			}
			if student != nil {
				event.StudentName = student.FullName()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ApplicationsSubmitted.Inc()
		if result.Reactivated {
			s.metrics.ApplicationsReactivated.Inc()
		}
	}
	logger.Info(ctx, "Application submitted",
		"student_id", cmd.StudentID,
		"offer_id", cmd.OfferID,
		"reactivated", result.Reactivated,
	)
	if event.Recipient != "" {
		s.dispatcher.Dispatch(event)
	}
	return &result, nil
}

// Withdraw 学生主动撤回申请。
// 对 withdrawn 记录幂等成功；对终态（accepted/rejected）拒绝。
func (s *ApplicationCommandService) Withdraw(ctx context.Context, cmd WithdrawCommand) (*WithdrawResult, error) {
	var (
		result WithdrawResult
		event  notifdomain.Event
	)
	err := s.db.WithTxTimeout(ctx, func(tx *gorm.DB) error {
		apps := s.apps.WithTx(tx)
		offers := s.offers.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		app, err := apps.FindByStudentAndOffer(ctx, cmd.StudentID, cmd.OfferID)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.ErrApplicationNotFound
		}

		decision, err := domain.Decide(app.Status, domain.ActionWithdraw)
		if err != nil {
			return err
		}
		if decision.NoOp {
			result.AlreadyWithdrawn = true
			result.Application = toApplicationDTO(app)
			return nil
		}

		now := s.now()
		note := "voluntary withdrawal"
		if cmd.Reason != "" {
			note += ": " + cmd.Reason
		}
		change := app.Transition(decision.Next, note, now)
		if err := apps.Update(ctx, app); err != nil {
			return err
		}
		if err := apps.AppendHistory(ctx, app.ID, change); err != nil {
			return err
		}
		result.Application = toApplicationDTO(app)

		employer, err := accounts.FindByID(ctx, app.EmployerID)
		if err != nil {
			return err
		}
		student, err := accounts.FindByID(ctx, cmd.StudentID)
		if err != nil {
			return err
		}
		offer, err := offers.FindByID(ctx, app.OfferID)
		if err != nil {
			return err
		}
		if employer != nil {
			event = notifdomain.Event{
				Type:          notifdomain.EventApplicationWithdrawn,
				Recipient:     employer.Email,
				RecipientName: employer.FullName(),
				Reason:        cmd.Reason,
				OccurredAt:    now,
			}
			if student != nil {
				event.StudentName = student.FullName()
			}
			if offer != nil {
				event.OfferTitle = offer.Position
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyWithdrawn {
		if s.metrics != nil {
			s.metrics.ApplicationsWithdrawn.Inc()
		}
		logger.Info(ctx, "Application withdrawn",
			"student_id", cmd.StudentID,
			"offer_id", cmd.OfferID,
		)
		if event.Recipient != "" {
			s.dispatcher.Dispatch(event)
		}
	}
	return &result, nil
}
