// Package mysql 提供职位仓储的 MySQL 实现
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/offer/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OfferModel 职位数据库模型，对应 offers 表
type OfferModel struct {
	gorm.Model
	EmployerID       uint       `gorm:"column:employer_id;index;not null"`
	Position         string     `gorm:"column:position;type:varchar(255);not null"`
	Description      string     `gorm:"column:description;type:text;not null"`
	WorkLocation     string     `gorm:"column:work_location;type:varchar(255)"`
	WorkHours        int        `gorm:"column:work_hours"`
	Salary           string     `gorm:"column:salary;type:decimal(12,2)"`
	ContractType     string     `gorm:"column:contract_type;type:varchar(50)"`
	ContractDuration string     `gorm:"column:contract_duration;type:varchar(50)"`
	ContactMethod    string     `gorm:"column:contact_method;type:varchar(255)"`
	Status           string     `gorm:"column:status;type:varchar(20);index;not null"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
}

// TableName 指定表名
func (OfferModel) TableName() string {
	return "offers"
}

// OfferRepositoryImpl 职位仓储实现
type OfferRepositoryImpl struct {
	db *gorm.DB
}

// NewOfferRepository 创建职位仓储
func NewOfferRepository(database *gorm.DB) domain.OfferRepository {
	return &OfferRepositoryImpl{db: database}
}

// WithTx 返回绑定到事务的仓储副本
func (r *OfferRepositoryImpl) WithTx(tx *gorm.DB) domain.OfferRepository {
	if tx == nil {
		return r
	}
	return &OfferRepositoryImpl{db: tx}
}

// Create 创建职位
func (r *OfferRepositoryImpl) Create(ctx context.Context, offer *domain.Offer) error {
	model := toModel(offer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	offer.Model = model.Model
	return nil
}

// FindByID 按 ID 查找职位
func (r *OfferRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Offer, error) {
	var model OfferModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find offer %d: %w", id, err)
	}
	return toDomain(&model), nil
}

// FindByIDs 批量按 ID 查找职位
func (r *OfferRepositoryImpl) FindByIDs(ctx context.Context, ids []uint) (map[uint]*domain.Offer, error) {
	result := make(map[uint]*domain.Offer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var models []OfferModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find offers: %w", err)
	}
	for i := range models {
		offer := toDomain(&models[i])
		result[offer.ID] = offer
	}
	return result, nil
}

// ListPublished 分页列出已发布职位
func (r *OfferRepositoryImpl) ListPublished(ctx context.Context, page, limit int, sortOldest bool) ([]*domain.Offer, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).
		Model(&OfferModel{}).
		Where("status = ?", string(domain.OfferStatusPublished))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	order := "created_at DESC"
	if sortOldest {
		order = "created_at ASC"
	}

	var models []OfferModel
	err := query.Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}

	offers := make([]*domain.Offer, 0, len(models))
	for i := range models {
		offers = append(offers, toDomain(&models[i]))
	}
	return offers, total, nil
}

// ListByEmployer 列出雇主的全部职位
func (r *OfferRepositoryImpl) ListByEmployer(ctx context.Context, employerID uint) ([]*domain.Offer, error) {
	var models []OfferModel
	err := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers by employer: %w", err)
	}

	offers := make([]*domain.Offer, 0, len(models))
	for i := range models {
		offers = append(offers, toDomain(&models[i]))
	}
	return offers, nil
}

// Update 更新职位
func (r *OfferRepositoryImpl) Update(ctx context.Context, offer *domain.Offer) error {
	model := toModel(offer)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to update offer %d: %w", offer.ID, err)
	}
	return nil
}

// Delete 硬删除职位
func (r *OfferRepositoryImpl) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Unscoped().Delete(&OfferModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete offer %d: %w", id, err)
	}
	return nil
}

func toModel(offer *domain.Offer) *OfferModel {
	return &OfferModel{
		Model:            offer.Model,
		EmployerID:       offer.EmployerID,
		Position:         offer.Position,
		Description:      offer.Description,
		WorkLocation:     offer.WorkLocation,
		WorkHours:        offer.WorkHours,
		Salary:           offer.Salary.String(),
		ContractType:     offer.ContractType,
		ContractDuration: offer.ContractDuration,
		ContactMethod:    offer.ContactMethod,
		Status:           string(offer.Status),
		ExpiresAt:        offer.ExpiresAt,
	}
}

func toDomain(model *OfferModel) *domain.Offer {
	salary, err := decimal.NewFromString(model.Salary)
	if err != nil {
		salary = decimal.Zero
	}
	return &domain.Offer{
		Model:            model.Model,
		EmployerID:       model.EmployerID,
		Position:         model.Position,
		Description:      model.Description,
		WorkLocation:     model.WorkLocation,
		WorkHours:        model.WorkHours,
		Salary:           salary,
		ContractType:     model.ContractType,
		ContractDuration: model.ContractDuration,
		ContactMethod:    model.ContactMethod,
		Status:           domain.OfferStatus(model.Status),
		ExpiresAt:        model.ExpiresAt,
	}
}
