package database

import (
	"time"
)

// Case statuses accepted by the pipeline
const (
	StatusActive    = "active"
	StatusClosed    = "closed"
	StatusPending   = "pending"
	StatusDismissed = "dismissed"
)

// Party roles accepted by the pipeline
const (
	RolePlaintiff  = "plaintiff"
	RoleDefendant  = "defendant"
	RoleThirdParty = "third_party"
	RoleIntervenor = "intervenor"
	RoleOther      = "other"
)

type Court struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
}

type Judge struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FullName       string    `json:"full_name"`
	NormalizedName string    `json:"normalized_name" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
}

type CaseType struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
}

type Party struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourtNameVariation records every raw spelling seen for a court
type CourtNameVariation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CourtID     uint      `json:"court_id" gorm:"uniqueIndex:idx_court_variation"`
	RawName     string    `json:"raw_name" gorm:"uniqueIndex:idx_court_variation"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	SeenCount   int       `json:"seen_count"`
}

// JudgeNameVariation records every raw spelling seen for a judge
type JudgeNameVariation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	JudgeID     uint      `json:"judge_id" gorm:"uniqueIndex:idx_judge_variation"`
	RawName     string    `json:"raw_name" gorm:"uniqueIndex:idx_judge_variation"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	SeenCount   int       `json:"seen_count"`
}

// PartyNameVariation records every raw spelling seen for a party
type PartyNameVariation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PartyID     uint      `json:"party_id" gorm:"uniqueIndex:idx_party_variation"`
	RawName     string    `json:"raw_name" gorm:"uniqueIndex:idx_party_variation"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	SeenCount   int       `json:"seen_count"`
}

type Case struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CaseNumber string    `json:"case_number" gorm:"uniqueIndex"`
	Title      string    `json:"title"`
	FiledDate  time.Time `json:"filed_date"`
	DocketText string    `json:"docket_text" gorm:"type:text"`
	Status     string    `json:"status"`
	CourtID    uint      `json:"court_id"`
	CaseTypeID uint      `json:"case_type_id"`
	JudgeID    *uint     `json:"judge_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CaseParty links a party to a case under a given role
type CaseParty struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CaseID    uint      `json:"case_id" gorm:"uniqueIndex:idx_case_party_role"`
	PartyID   uint      `json:"party_id" gorm:"uniqueIndex:idx_case_party_role"`
	Role      string    `json:"role" gorm:"uniqueIndex:idx_case_party_role"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestRun is the audit record for one pipeline invocation
type IngestRun struct {
	RunID         uint       `json:"run_id" gorm:"primaryKey;column:run_id"`
	SourceName    string     `json:"source_name"`
	SourceURI     string     `json:"source_uri"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	TotalRead     int        `json:"total_read"`
	TotalInserted int        `json:"total_inserted"`
	TotalUpdated  int        `json:"total_updated"`
	TotalFailed   int        `json:"total_failed"`
}

// IngestError is one failed record within a run
type IngestError struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RunID        uint      `json:"run_id" gorm:"uniqueIndex:idx_run_record"`
	RecordHash   string    `json:"record_hash" gorm:"uniqueIndex:idx_run_record"`
	CaseNumber   string    `json:"case_number"`
	ErrorCode    string    `json:"error_code" gorm:"index"`
	ErrorMessage string    `json:"error_message"`
	Details      string    `json:"details" gorm:"type:text"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	RetryCount   int       `json:"retry_count"`
	Resolved     bool      `json:"resolved"`
}

func (Court) TableName() string {
	return "courts"
}

func (Judge) TableName() string {
	return "judges"
}

func (CaseType) TableName() string {
	return "case_types"
}

func (Party) TableName() string {
	return "parties"
}

func (CourtNameVariation) TableName() string {
	return "court_name_variations"
}

func (JudgeNameVariation) TableName() string {
	return "judge_name_variations"
}

func (PartyNameVariation) TableName() string {
	return "party_name_variations"
}

func (Case) TableName() string {
	return "cases"
}

func (CaseParty) TableName() string {
	return "case_parties"
}

func (IngestRun) TableName() string {
	return "ingest_runs"
}

func (IngestError) TableName() string {
	return "ingest_errors"
}
