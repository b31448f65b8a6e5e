// Package review owns the reviewer's corrections and preferences and
// persists them through an injected storage.Storage.
package review

import "time"

type AssetType string

const (
	AssetTypeImage  AssetType = "image"
	AssetTypeAudio  AssetType = "audio"
	AssetTypePrompt AssetType = "prompt"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusFixed   Status = "fixed"
)

// BlockAssetName is the asset name of notes about a whole block.
const BlockAssetName = "_block"

// Correction is a reviewer-authored feedback record.
type Correction struct {
	ID        string    `json:"id" validate:"required"`
	BlockID   string    `json:"blockId" validate:"required"`
	HourID    string    `json:"hourId"`
	AssetType AssetType `json:"assetType" validate:"oneof=image audio prompt"`
	AssetName string    `json:"assetName" validate:"required"`
	Issue     string    `json:"issue"`
	Priority  Priority  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status    Status    `json:"status" validate:"oneof=pending fixed"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// CorrectionInput holds the caller-provided fields of a new correction.
type CorrectionInput struct {
	BlockID   string
	HourID    string
	AssetType AssetType
	AssetName string
	Issue     string
	Priority  Priority
	Status    Status
	CreatedBy string
}

// CorrectionPatch holds the fields to merge into a correction. Nil fields
// are left unchanged.
type CorrectionPatch struct {
	HourID    *string
	AssetType *AssetType
	AssetName *string
	Issue     *string
	Priority  *Priority
	Status    *Status
	CreatedBy *string
}

func (p CorrectionPatch) apply(c *Correction) {
	if p.HourID != nil {
		c.HourID = *p.HourID
	}
	if p.AssetType != nil {
		c.AssetType = *p.AssetType
	}
	if p.AssetName != nil {
		c.AssetName = *p.AssetName
	}
	if p.Issue != nil {
		c.Issue = *p.Issue
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CreatedBy != nil {
		c.CreatedBy = *p.CreatedBy
	}
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
