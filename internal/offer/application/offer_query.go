package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	appdomain "github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
	accountdomain "github.com/StefanoVidesott/WannaWork-App/internal/account/domain"
	"github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	"github.com/StefanoVidesott/WannaWork-App/pkg/cache"
	"github.com/StefanoVidesott/WannaWork-App/pkg/logger"
)

// publishedCacheTTL 公开职位列表的缓存时长，短 TTL 容忍轻微陈旧
const publishedCacheTTL = 30 * time.Second

// OfferDTO 对外返回的职位视图
type OfferDTO struct {
	ID               uint       `json:"id"`
	EmployerID       uint       `json:"employerId"`
	Position         string     `json:"position"`
	Description      string     `json:"description"`
	WorkLocation     string     `json:"workLocation,omitempty"`
	WorkHours        int        `json:"workHours"`
	Salary           string     `json:"salary"`
	ContractType     string     `json:"contractType,omitempty"`
	ContractDuration string     `json:"contractDuration,omitempty"`
	ContactMethod    string     `json:"contactMethod,omitempty"`
	Status           string     `json:"status"`
	CompanyName      string     `json:"companyName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	// ApplicationCount 雇主视角的非撤回申请数，公开列表不返回
	ApplicationCount int64 `json:"applicationCount,omitempty"`
}

// OfferListPage 分页的职位列表
type OfferListPage struct {
	Offers []*OfferDTO `json:"offers"`
	Total  int64       `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

// ListPublishedQuery 公开职位列表查询
type ListPublishedQuery struct {
	Page  int
	Limit int
	// Sort "oldest" 按发布时间升序
	Sort string
}

// OfferQueryService 职位读路径，公开列表带 Redis 缓存
type OfferQueryService struct {
	offers   domain.OfferRepository
	apps     appdomain.ApplicationRepository
	accounts accountdomain.AccountRepository
	cache    *cache.RedisCache
}

// NewOfferQueryService 创建职位查询服务
func NewOfferQueryService(
	offers domain.OfferRepository,
	apps appdomain.ApplicationRepository,
	accounts accountdomain.AccountRepository,
	c *cache.RedisCache,
) *OfferQueryService {
	return &OfferQueryService{offers: offers, apps: apps, accounts: accounts, cache: c}
}

// ListPublished 分页列出已发布职位，cache-aside
func (s *OfferQueryService) ListPublished(ctx context.Context, q ListPublishedQuery) (*OfferListPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	key := fmt.Sprintf("offers:published:%d:%d:%s", q.Page, q.Limit, q.Sort)
	if s.cache != nil {
		var page OfferListPage
		err := s.cache.GetJSON(ctx, key, &page)
		if err == nil {
			return &page, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, "Offer list cache read failed", "error", err)
		}
	}

	offers, total, err := s.offers.ListPublished(ctx, q.Page, q.Limit, q.Sort == "oldest")
	if err != nil {
		return nil, err
	}
	employers, err := s.accounts.FindByIDs(ctx, offerEmployerIDs(offers))
	if err != nil {
		return nil, err
	}

	page := &OfferListPage{Total: total, Page: q.Page, Limit: q.Limit}
	for _, offer := range offers {
		companyName := ""
		if employer := employers[offer.EmployerID]; employer != nil {
			companyName = employer.CompanyName
		}
		page.Offers = append(page.Offers, toOfferDTO(offer, companyName, 0))
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, page, publishedCacheTTL); err != nil {
			logger.Warn(ctx, "Offer list cache write failed", "error", err)
		}
	}
	return page, nil
}

// GetByID 返回单个职位详情
func (s *OfferQueryService) GetByID(ctx context.Context, id uint) (*OfferDTO, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, domain.ErrOfferNotFound
	}
	companyName := ""
	if employer, err := s.accounts.FindByID(ctx, offer.EmployerID); err == nil && employer != nil {
		companyName = employer.CompanyName
	}
	return toOfferDTO(offer, companyName, 0), nil
}

// ListByEmployer 雇主自己的职位列表，含每个职位的非撤回申请数
func (s *OfferQueryService) ListByEmployer(ctx context.Context, employerID uint) ([]*OfferDTO, error) {
	offers, err := s.offers.ListByEmployer(ctx, employerID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*OfferDTO, 0, len(offers))
	for _, offer := range offers {
		count, err := s.apps.CountNonWithdrawnByOffer(ctx, offer.ID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, toOfferDTO(offer, "", count))
	}
	return dtos, nil
}

func toOfferDTO(o *domain.Offer, companyName string, applicationCount int64) *OfferDTO {
	return &OfferDTO{
		ID:               o.ID,
		EmployerID:       o.EmployerID,
		Position:         o.Position,
		Description:      o.Description,
		WorkLocation:     o.WorkLocation,
		WorkHours:        o.WorkHours,
		Salary:           o.Salary.String(),
		ContractType:     o.ContractType,
		ContractDuration: o.ContractDuration,
		ContactMethod:    o.ContactMethod,
		Status:           string(o.Status),
		CompanyName:      companyName,
		CreatedAt:        o.CreatedAt,
		ExpiresAt:        o.ExpiresAt,
		ApplicationCount: applicationCount,
	}
}

func offerEmployerIDs(offers []*domain.Offer) []uint {
	ids := make([]uint, 0, len(offers))
	for _, offer := range offers {
		ids = append(ids, offer.EmployerID)
	}
	return ids
}
