package application

import (
	"time"

	"github.com/StefanoVidesott/WannaWork-App/internal/application/domain"
)

// ApplicationDTO 对外返回的申请视图。
type ApplicationDTO struct {
	ID        uint              `json:"id"`
	OfferID   uint              `json:"offerId"`
	Status    string            `json:"status"`
	Message   string            `json:"message,omitempty"`
	AppliedAt time.Time         `json:"appliedAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	History   []StatusChangeDTO `json:"history,omitempty"`
	Offer     *OfferSummaryDTO  `json:"offer,omitempty"`
}

// StatusChangeDTO 历史轨迹中的一条状态变更。
type StatusChangeDTO struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	Note      string    `json:"note,omitempty"`
}

// OfferSummaryDTO 申请列表里嵌入的职位摘要。
type OfferSummaryDTO struct {
	ID           uint   `json:"id"`
	Position     string `json:"position"`
	CompanyName  string `json:"companyName,omitempty"`
	WorkLocation string `json:"workLocation,omitempty"`
	ContractType string `json:"contractType,omitempty"`
	Salary       string `json:"salary,omitempty"`
}

func toApplicationDTO(app *domain.Application) *ApplicationDTO {
	dto := &ApplicationDTO{
		ID:        app.ID,
		OfferID:   app.OfferID,
		Status:    string(app.Status),
		Message:   app.Message,
		AppliedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
	for _, change := range app.History {
		dto.History = append(dto.History, StatusChangeDTO{
			Status:    string(change.Status),
			ChangedAt: change.ChangedAt,
			Note:      change.Note,
		})
	}
	return dto
}
