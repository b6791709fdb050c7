package dto

import (
	"time"

	"fakturo/internal/domain/numbering"
)

// SchemeResponse contains numbering scheme fields.
type SchemeResponse struct {
	BaseResponse
	Code        string `json:"code"`
	Name        string `json:"name"`
	EntityType  string `json:"entityType"`
	Pattern     string `json:"pattern"`
	ResetPeriod string `json:"resetPeriod"`
	Priority    int    `json:"priority"`
	IsActive    bool   `json:"isActive"`
	PerPartner  bool   `json:"perPartner"`
	Condition   string `json:"condition,omitempty"`
}

// FromScheme maps the domain entity to its response DTO.
func FromScheme(s *numbering.Scheme) SchemeResponse {
	return SchemeResponse{
		BaseResponse: FromBaseCatalog(s.BaseCatalog),
		Code:         s.Code,
		Name:         s.Name,
		EntityType:   s.EntityType,
		Pattern:      s.Pattern,
		ResetPeriod:  string(s.ResetPeriod),
		Priority:     s.Priority,
		IsActive:     s.IsActive,
		PerPartner:   s.PerPartner,
		Condition:    s.Condition,
	}
}

// CreateSchemeRequest for creating numbering schemes.
type CreateSchemeRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name" binding:"required"`
	EntityType  string `json:"entityType" binding:"required"`
	Pattern     string `json:"pattern" binding:"required"`
	ResetPeriod string `json:"resetPeriod"`
	Priority    int    `json:"priority"`
	IsActive    *bool  `json:"isActive"`
	PerPartner  bool   `json:"perPartner"`
	Condition   string `json:"condition"`
}

// ToScheme builds the domain entity.
func (r CreateSchemeRequest) ToScheme() *numbering.Scheme {
	s := numbering.NewScheme(r.Code, r.Name, r.EntityType, r.Pattern)
	if r.ResetPeriod != "" {
		s.ResetPeriod = numbering.ResetPeriod(r.ResetPeriod)
	}
	s.Priority = r.Priority
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	s.PerPartner = r.PerPartner
	s.Condition = r.Condition
	return s
}

// UpdateSchemeRequest for updating numbering schemes.
type UpdateSchemeRequest struct {
	Name        *string `json:"name"`
	Pattern     *string `json:"pattern"`
	ResetPeriod *string `json:"resetPeriod"`
	Priority    *int    `json:"priority"`
	IsActive    *bool   `json:"isActive"`
	PerPartner  *bool   `json:"perPartner"`
	Condition   *string `json:"condition"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// Apply merges the update onto the existing entity.
func (r UpdateSchemeRequest) Apply(s *numbering.Scheme) *numbering.Scheme {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Pattern != nil {
		s.Pattern = *r.Pattern
	}
	if r.ResetPeriod != nil {
		s.ResetPeriod = numbering.ResetPeriod(*r.ResetPeriod)
	}
	if r.Priority != nil {
		s.Priority = *r.Priority
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	if r.PerPartner != nil {
		s.PerPartner = *r.PerPartner
	}
	if r.Condition != nil {
		s.Condition = *r.Condition
	}
	s.Version = r.Version
	return s
}

// NumberHistoryResponse is one recorded number issuance.
type NumberHistoryResponse struct {
	ID           string    `json:"id"`
	SchemeID     *string   `json:"schemeId,omitempty"`
	EntityType   string    `json:"entityType"`
	EntityID     string    `json:"entityId"`
	Number       string    `json:"number"`
	CounterValue int64     `json:"counterValue"`
	ScopeKey     string    `json:"scopeKey"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromNumberHistory maps issuance rows.
func FromNumberHistory(rows []numbering.History) []NumberHistoryResponse {
	out := make([]NumberHistoryResponse, len(rows))
	for i, h := range rows {
		resp := NumberHistoryResponse{
			ID:           h.ID.String(),
			EntityType:   h.EntityType,
			EntityID:     h.EntityID.String(),
			Number:       h.Number,
			CounterValue: h.CounterValue,
			ScopeKey:     h.ScopeKey,
			CreatedAt:    h.CreatedAt,
		}
		if h.SchemeID != nil {
			s := h.SchemeID.String()
			resp.SchemeID = &s
		}
		out[i] = resp
	}
	return out
}
