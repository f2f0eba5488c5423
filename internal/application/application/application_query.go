package application

import (
	"context"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	offerdomain "github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
)

// CheckResult 学生对某职位的申请状态
type CheckResult struct {
	// HasApplied 是否存在活跃或已定稿（非 withdrawn）的申请
	HasApplied bool `json:"hasApplied"`
	// Status 现有记录的状态，无记录时为空
	Status string `json:"status,omitempty"`
	// ApplicationDate 首次投递时间
	ApplicationDate *time.Time `json:"applicationDate,omitempty"`
}

// ListMineQuery 学生端申请列表查询
type ListMineQuery struct {
	StudentID uint
	// Status 可选状态过滤，空串表示全部
	Status string
	// Sort "oldest" 按投递时间升序，其余按降序
	Sort string
}

// ApplicationQueryService 申请读路径，直接走仓储，无事务
type ApplicationQueryService struct {
	apps     domain.ApplicationRepository
	offers   offerdomain.OfferRepository
	accounts accountdomain.AccountRepository
}

// NewApplicationQueryService 创建申请查询服务
func NewApplicationQueryService(
	apps domain.ApplicationRepository,
	offers offerdomain.OfferRepository,
	accounts accountdomain.AccountRepository,
) *ApplicationQueryService {
	return &ApplicationQueryService{apps: apps, offers: offers, accounts: accounts}
}

// Check 返回学生是否已申请某职位。
// withdrawn 记录存在但不算已申请，允许前端展示重新投递入口。
func (s *ApplicationQueryService) Check(ctx context.Context, studentID, offerID uint) (*CheckResult, error) {
	app, err := s.apps.FindByStudentAndOffer(ctx, studentID, offerID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return &CheckResult{}, nil
	}
	result := &CheckResult{
		HasApplied: app.Status != domain.StatusWithdrawn,
		Status:     string(app.Status),
	}
	if result.HasApplied {
		appliedAt := app.CreatedAt
		result.ApplicationDate = &appliedAt
	}
	return result, nil
}

// ListMine 列出学生的申请，附带职位摘要与公司名
func (s *ApplicationQueryService) ListMine(ctx context.Context, q ListMineQuery) ([]*ApplicationDTO, error) {
	status := domain.Status(q.Status)
	if q.Status != "" && !status.Valid() {
		return nil, errs.Validation("invalid status filter: " + q.Status)
	}

	apps, err := s.apps.ListByStudent(ctx, q.StudentID, status, q.Sort == "oldest")
	if err != nil {
		return nil, err
	}

	offers, err := s.offers.FindByIDs(ctx, offerIDs(apps))
	if err != nil {
		return nil, err
	}
	employers, err := s.accounts.FindByIDs(ctx, employerIDs(apps))
	if err != nil {
		return nil, err
	}

	dtos := make([]*ApplicationDTO, 0, len(apps))
	for _, app := range apps {
		dto := toApplicationDTO(app)
		if offer := offers[app.OfferID]; offer != nil {
			summary := &OfferSummaryDTO{
				ID:           offer.ID,
				Position:     offer.Position,
				WorkLocation: offer.WorkLocation,
				ContractType: offer.ContractType,
				Salary:       offer.Salary.String(),
			}
			if employer := employers[app.EmployerID]; employer != nil {
				summary.CompanyName = employer.CompanyName
			}
			dto.Offer = summary
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
