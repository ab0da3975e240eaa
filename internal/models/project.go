package models

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	BaseModel
	PublishedUserID   *string `gorm:"type:uuid;index"`
	PublishedUsername string  `gorm:"size:200"`
	Title             string  `gorm:"size:200;not null"`
	Description       string  `gorm:"type:text;not null"`
	AdditionalNotes   string  `gorm:"size:200"`
	SkillsNeeded      datatypes.JSON
	MinPrice          int           `gorm:"not null"`
	MaxPrice          int           `gorm:"not null"`
	DueDate           time.Time     `gorm:"not null"`
	ProposalTimeEnd   time.Time     `gorm:"not null"`
	Status            ProjectStatus `gorm:"type:varchar(20);default:'active';index"`

	// Relations
	Proposals []ProjectProposal `gorm:"foreignKey:ProjectID"`
}

type ProjectProposal struct {
	BaseModel
	ProjectID        string  `gorm:"type:uuid;not null;index;uniqueIndex:idx_project_proposer"`
	ProposerID       *string `gorm:"type:uuid;index;uniqueIndex:idx_project_proposer"`
	ProposerUsername string  `gorm:"size:200"`
	ProposalText     string  `gorm:"type:text;not null"`
	ProposedPrice    int     `gorm:"not null"`
	SubmissionDate   time.Time
	IsPriceAdjusted  bool `gorm:"default:false"`
	IsDateAdjusted   bool `gorm:"default:false"`
	IsAccepted       bool `gorm:"default:false"`
	IsCanceled       bool `gorm:"default:false"`

	Project *Project `gorm:"foreignKey:ProjectID"`
}

// ChosenProposal фиксирует выбранное предложение: исполнителя и цену.
type ChosenProposal struct {
	BaseModel
	ProjectID          *string `gorm:"type:uuid;uniqueIndex"`
	SelectedProposalID *string `gorm:"type:uuid;index"`
	IsCanceled         bool    `gorm:"default:false"`

	Project          *Project         `gorm:"foreignKey:ProjectID"`
	SelectedProposal *ProjectProposal `gorm:"foreignKey:SelectedProposalID"`
}

type Dispute struct {
	BaseModel
	ChosenProposalID string  `gorm:"type:uuid;not null;index;uniqueIndex:idx_proposal_opener"`
	OpenedByID       *string `gorm:"type:uuid;index;uniqueIndex:idx_proposal_opener"`
	OpenedByUsername string  `gorm:"size:200"`
	Description      string  `gorm:"type:text;not null"`
	IsResolved       bool    `gorm:"default:false"`

	ChosenProposal *ChosenProposal `gorm:"foreignKey:ChosenProposalID"`
}
