package service

import (
	"context"
	"encoding/json"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`
	ActorName  string `json:"actor_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditRecorder is the write half, implemented by AuditService and consumed
// by the mutation services.
type AuditRecorder interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, entityID, entityName string, details interface{}) error
}

type AuditService interface {
	AuditRecorder
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditService instance
func NewAuditService(db *gorm.DB) AuditService {
	return &auditService{db: db}
}

// Record persists one audit row; details are serialized to JSON.
func (s *auditService) Record(ctx context.Context, actorID *uuid.UUID, action, entityID, entityName string, details interface{}) error {
	payload := ""
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}

	entry := model.AuditLog{
		IdentityID: actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// GetAuditLogs retrieves paginated records with the acting identity preloaded
func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	var logs []model.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := s.db.WithContext(ctx).Preload("Identity").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actor := "System"
		identityID := ""
		if l.Identity != nil {
			actor = l.Identity.FullName
		}
		if l.IdentityID != nil {
			identityID = l.IdentityID.String()
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			IdentityID: identityID,
			ActorName:  actor,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
