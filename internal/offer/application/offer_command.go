// Package application 职位用例层：发布、修改、删除与查询。
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	appsvc "github.com/StefanoVidesott/WannaWork-App/internal/application/application"
	appdomain "github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	notifapp "github.com/StefanoVidesott/WannaWork-App/internal/notification/application"
	notifdomain "github.com/StefanoVidesott/WannaWork-App/internal/notification/domain"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	"github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
)

// CreateOfferCommand 发布职位命令
type CreateOfferCommand struct {
	EmployerID       uint
	Position         string
	Description      string
	WorkLocation     string
	WorkHours        int
	Salary           decimal.Decimal
	ContractType     string
	ContractDuration string
	ContactMethod    string
	ExpiresAt        *time.Time
}

// UpdateOfferCommand 修改职位命令
type UpdateOfferCommand struct {
	OfferID    uint
	EmployerID uint
	Changes    domain.Update
}

// DeleteOfferCommand 删除职位命令，触发对活跃申请的级联拒绝
type DeleteOfferCommand struct {
	OfferID    uint
	EmployerID uint
	Reason     string
}

// OfferCommandService 职位写路径
type OfferCommandService struct {
	db         appsvc.TxRunner
	offers     domain.OfferRepository
	apps       appdomain.ApplicationRepository
	accounts   accountdomain.AccountRepository
	cascades   *appsvc.CascadeEngine
	dispatcher *notifapp.Dispatcher
	now        func() time.Time
}

// NewOfferCommandService 创建职位命令服务
func NewOfferCommandService(
	db appsvc.TxRunner,
	offers domain.OfferRepository,
	apps appdomain.ApplicationRepository,
	accounts accountdomain.AccountRepository,
	cascades *appsvc.CascadeEngine,
	dispatcher *notifapp.Dispatcher,
) *OfferCommandService {
	return &OfferCommandService{
		db:         db,
		offers:     offers,
		apps:       apps,
		accounts:   accounts,
		cascades:   cascades,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Create 发布职位。雇主必须先补全公司名与所在地。
func (s *OfferCommandService) Create(ctx context.Context, cmd CreateOfferCommand) (*OfferDTO, error) {
	if cmd.Position == "" {
		return nil, errs.Validation("position must not be empty")
	}
	if cmd.Description == "" {
		return nil, errs.Validation("description must not be empty")
	}
	if cmd.WorkHours <= 0 {
		return nil, errs.Validation("work hours must be positive")
	}
	if cmd.Salary.IsNegative() {
		return nil, errs.Validation("salary must not be negative")
	}

	employer, err := s.accounts.FindByID(ctx, cmd.EmployerID)
	if err != nil {
		return nil, err
	}
	if employer == nil {
		return nil, accountdomain.ErrAccountNotFound
	}
	if employer.CompanyName == "" || employer.Headquarters == "" {
		return nil, domain.ErrCompanyProfileIncomplete
	}

	offer := &domain.Offer{
		EmployerID:       cmd.EmployerID,
		Position:         cmd.Position,
		Description:      cmd.Description,
		WorkLocation:     cmd.WorkLocation,
		WorkHours:        cmd.WorkHours,
		Salary:           cmd.Salary,
		ContractType:     cmd.ContractType,
		ContractDuration: cmd.ContractDuration,
		ContactMethod:    cmd.ContactMethod,
		Status:           domain.OfferStatusPublished,
		ExpiresAt:        cmd.ExpiresAt,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Offer created", "offer_id", offer.ID, "employer_id", cmd.EmployerID)
	return toOfferDTO(offer, employer.CompanyName, 0), nil
}

// Update 修改职位，并通知当前活跃申请人职位内容已变更
func (s *OfferCommandService) Update(ctx context.Context, cmd UpdateOfferCommand) (*OfferDTO, error) {
	if err := cmd.Changes.Validate(); err != nil {
		return nil, err
	}

	var (
		dto    *OfferDTO
		events []notifdomain.Event
	)
	err := s.db.WithTxTimeout(ctx, func(tx *gorm.DB) error {
		offers := s.offers.WithTx(tx)
		apps := s.apps.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		offer, err := offers.FindByID(ctx, cmd.OfferID)
		if err != nil {
			return err
		}
		if offer == nil {
			return domain.ErrOfferNotFound
		}
		if offer.EmployerID != cmd.EmployerID {
			return domain.ErrNotOwner
		}

		cmd.Changes.Apply(offer)
		if err := offers.Update(ctx, offer); err != nil {
			return err
		}

		victims, err := apps.ListActiveByOffer(ctx, cmd.OfferID)
		if err != nil {
			return err
		}
		students, err := accounts.FindByIDs(ctx, applicantIDs(victims))
		if err != nil {
			return err
		}
		now := s.now()
		for _, app := range victims {
			student := students[app.StudentID]
			if student == nil || student.Email == "" {
				continue
			}
			events = append(events, notifdomain.Event{
				Type:          notifdomain.EventOfferUpdated,
				Recipient:     student.Email,
				RecipientName: student.FullName(),
				OfferTitle:    offer.Position,
				OccurredAt:    now,
			})
		}
		dto = toOfferDTO(offer, "", int64(len(victims)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Offer updated", "offer_id", cmd.OfferID, "notified", len(events))
	s.dispatcher.DispatchAll(events)
	return dto, nil
}

// Delete 删除职位。级联引擎在同一事务内把活跃申请置为 rejected 并删除职位。
func (s *OfferCommandService) Delete(ctx context.Context, cmd DeleteOfferCommand) (int, error) {
	result, err := s.cascades.Run(ctx, appsvc.OfferDeleted{
		OfferID: cmd.OfferID,
		ActorID: cmd.EmployerID,
		Reason:  cmd.Reason,
	})
	if err != nil {
		return 0, err
	}
	return len(result.Affected), nil
}

func applicantIDs(apps []*appdomain.Application) []uint {
	ids := make([]uint, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.StudentID)
	}
	return ids
}
