package application

import (
	"context"
	"fmt"
	"strings"
	"time"

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

// Cascade 级联删除的变体，封闭集合：OfferDeleted 与 ProfileDeleted。
type Cascade interface {
	// Kind 变体标识，用于日志与指标
	Kind() string
}

// OfferDeleted 雇主删除职位：活跃申请批量 rejected，随后删除职位本身
type OfferDeleted struct {
	OfferID uint
	ActorID uint
	// Reason 删除原因，必填，会写入受影响申请的历史
	Reason string
}

// Kind 实现 Cascade
func (OfferDeleted) Kind() string { return "offer_deleted" }

// ProfileDeleted 学生删除求职档案：活跃申请批量 withdrawn，随后删除档案本身
type ProfileDeleted struct {
	ProfileID uint
	ActorID   uint
}

// Kind 实现 Cascade
func (ProfileDeleted) Kind() string { return "profile_deleted" }

// AffectedApplication 级联中被改写的一条申请及其通知冗余数据
type AffectedApplication struct {
	ApplicationID  uint
	StudentID      uint
	OfferID        uint
	RecipientEmail string
	RecipientName  string
	OfferTitle     string
	StudentName    string
}

// CascadeResult 级联执行结果
type CascadeResult struct {
	Affected []AffectedApplication
}

// CascadeEngine 级联引擎。
// 两种变体共用同一事务模板：加载主实体并校验所有权，圈定活跃申请，
// 逐条走状态机裁定并落历史，收集通知数据，最后删除主实体。
// 整个级联是一个事务：任一步失败则全部回滚，主实体保持原样。
type CascadeEngine struct {
	db         TxRunner
	apps       domain.ApplicationRepository
	offers     offerdomain.OfferRepository
	profiles   profiledomain.ProfileRepository
	accounts   accountdomain.AccountRepository
	dispatcher *notifapp.Dispatcher
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewCascadeEngine 创建级联引擎
func NewCascadeEngine(
	db TxRunner,
	apps domain.ApplicationRepository,
	offers offerdomain.OfferRepository,
	profiles profiledomain.ProfileRepository,
	accounts accountdomain.AccountRepository,
	dispatcher *notifapp.Dispatcher,
	m *metrics.Metrics,
) *CascadeEngine {
	return &CascadeEngine{
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

// Run 执行一次级联删除。通知在事务提交之后才分发。
func (e *CascadeEngine) Run(ctx context.Context, cascade Cascade) (*CascadeResult, error) {
	if c, ok := cascade.(OfferDeleted); ok && strings.TrimSpace(c.Reason) == "" {
		return nil, offerdomain.ErrReasonRequired
	}

	var (
		result CascadeResult
		events []notifdomain.Event
	)
	err := e.db.WithTxTimeout(ctx, func(tx *gorm.DB) error {
		switch c := cascade.(type) {
		case OfferDeleted:
			return e.runOfferDeleted(ctx, tx, c, &result, &events)
		case ProfileDeleted:
			return e.runProfileDeleted(ctx, tx, c, &result, &events)
		default:
			return fmt.Errorf("unknown cascade kind: %s", cascade.Kind())
		}
	})
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.CascadesTotal.WithLabelValues(cascade.Kind()).Inc()
		e.metrics.CascadeAffected.Add(float64(len(result.Affected)))
	}
	logger.Info(ctx, "Cascade completed",
		"kind", cascade.Kind(),
		"affected", len(result.Affected),
	)
	e.dispatcher.DispatchAll(events)
	return &result, nil
}

func (e *CascadeEngine) runOfferDeleted(ctx context.Context, tx *gorm.DB, c OfferDeleted, result *CascadeResult, events *[]notifdomain.Event) error {
	offers := e.offers.WithTx(tx)
	apps := e.apps.WithTx(tx)
	accounts := e.accounts.WithTx(tx)

	offer, err := offers.FindByID(ctx, c.OfferID)
	if err != nil {
		return err
	}
	if offer == nil {
		return offerdomain.ErrOfferNotFound
	}
	if offer.EmployerID != c.ActorID {
		return offerdomain.ErrNotOwner
	}

	victims, err := apps.ListActiveByOffer(ctx, c.OfferID)
	if err != nil {
		return err
	}
	students, err := accounts.FindByIDs(ctx, studentIDs(victims))
	if err != nil {
		return err
	}

	now := e.now()
	note := "offer deleted: " + c.Reason
	for _, app := range victims {
		decision, err := domain.Decide(app.Status, domain.ActionRejectByOfferDeletion)
		if err != nil {
			return err
		}
		if decision.NoOp {
			continue
		}
		change := app.Transition(decision.Next, note, now)
		if err := apps.Update(ctx, app); err != nil {
			return err
		}
		if err := apps.AppendHistory(ctx, app.ID, change); err != nil {
			return err
		}

		affected := AffectedApplication{
			ApplicationID: app.ID,
			StudentID:     app.StudentID,
			OfferID:       app.OfferID,
			OfferTitle:    offer.Position,
		}
		if student := students[app.StudentID]; student != nil {
			affected.RecipientEmail = student.Email
			affected.RecipientName = student.FullName()
			affected.StudentName = student.FullName()
			*events = append(*events, notifdomain.Event{
				Type:          notifdomain.EventOfferDeleted,
				Recipient:     student.Email,
				RecipientName: student.FullName(),
				OfferTitle:    offer.Position,
				Reason:        c.Reason,
				OccurredAt:    now,
			})
		}
		result.Affected = append(result.Affected, affected)
	}

	return offers.Delete(ctx, offer.ID)
}

func (e *CascadeEngine) runProfileDeleted(ctx context.Context, tx *gorm.DB, c ProfileDeleted, result *CascadeResult, events *[]notifdomain.Event) error {
	profiles := e.profiles.WithTx(tx)
	apps := e.apps.WithTx(tx)
	offers := e.offers.WithTx(tx)
	accounts := e.accounts.WithTx(tx)

	profile, err := profiles.FindByID(ctx, c.ProfileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return profiledomain.ErrProfileNotFound
	}
	if profile.StudentID != c.ActorID {
		return profiledomain.ErrNotOwner
	}

	victims, err := apps.ListActiveByStudent(ctx, profile.StudentID)
	if err != nil {
		return err
	}
	employers, err := accounts.FindByIDs(ctx, employerIDs(victims))
	if err != nil {
		return err
	}
	titles, err := offers.FindByIDs(ctx, offerIDs(victims))
	if err != nil {
		return err
	}
	student, err := accounts.FindByID(ctx, profile.StudentID)
	if err != nil {
		return err
	}
	studentName := ""
	if student != nil {
		studentName = student.FullName()
	}

	now := e.now()
	for _, app := range victims {
		decision, err := domain.Decide(app.Status, domain.ActionWithdrawByProfileDeletion)
		if err != nil {
			return err
		}
		if decision.NoOp {
			continue
		}
		change := app.Transition(decision.Next, "profile deleted", now)
		if err := apps.Update(ctx, app); err != nil {
			return err
		}
		if err := apps.AppendHistory(ctx, app.ID, change); err != nil {
			return err
		}

		affected := AffectedApplication{
			ApplicationID: app.ID,
			StudentID:     app.StudentID,
			OfferID:       app.OfferID,
			StudentName:   studentName,
		}
		if offer := titles[app.OfferID]; offer != nil {
			affected.OfferTitle = offer.Position
		}
		if employer := employers[app.EmployerID]; employer != nil {
			affected.RecipientEmail = employer.Email
			affected.RecipientName = employer.FullName()
			*events = append(*events, notifdomain.Event{
				Type:          notifdomain.EventProfileWithdrawal,
				Recipient:     employer.Email,
				RecipientName: employer.FullName(),
				OfferTitle:    affected.OfferTitle,
				StudentName:   studentName,
				OccurredAt:    now,
			})
		}
		result.Affected = append(result.Affected, affected)
	}

	return profiles.Delete(ctx, profile.ID)
}

func studentIDs(apps []*domain.Application) []uint {
	ids := make([]uint, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.StudentID)
	}
	return ids
}

func employerIDs(apps []*domain.Application) []uint {
	ids := make([]uint, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.EmployerID)
	}
	return ids
}

func offerIDs(apps []*domain.Application) []uint {
	ids := make([]uint, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.OfferID)
	}
	return ids
}
