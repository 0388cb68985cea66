package models

import "time"

const (
	DirectionCredit = "CREDIT"
	DirectionDebit  = "DEBIT"

	ReferenceDeposit    = "DEPOSIT"
	ReferenceWithdrawal = "WITHDRAWAL"
	ReferenceProfit     = "PROFIT"
	ReferenceAdjustment = "ADJUSTMENT"

	PoolCapital = "capital"
	PoolProfit  = "profit"

	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"

	// ledger entries never change after posting
	StatusCompleted = "COMPLETED"

	SourceProfit  = "PROFIT"
	SourceCapital = "CAPITAL"

	RoleUser  = "user"
	RoleAdmin = "admin"

	AttachmentPending   = "PENDING"
	AttachmentConfirmed = "CONFIRMED"

	OwnerDeposit       = "DEPOSIT"
	OwnerWithdrawal    = "WITHDRAWAL"
	OwnerSupportTicket = "SUPPORT_TICKET"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	ExternalAuthID string    `db:"external_auth_id" json:"-"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	Role           string    `db:"role" json:"role"`
	Disabled       bool      `db:"disabled" json:"disabled"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// LedgerEntry is an immutable fact. Rows are never updated or deleted;
// corrections are posted as offsetting ADJUSTMENT entries.
type LedgerEntry struct {
	ID                  string    `db:"id" json:"id"`
	UserID              string    `db:"user_id" json:"user_id"`
	AmountMinor         int64     `db:"amount_minor" json:"amount_minor"`
	Direction           string    `db:"direction" json:"direction"`
	ReferenceType       string    `db:"reference_type" json:"reference_type"`
	ReferenceID         string    `db:"reference_id" json:"reference_id"`
	Pool                string    `db:"pool" json:"pool"`
	RunningBalanceMinor int64     `db:"running_balance_minor" json:"running_balance_minor"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type DepositRequest struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	AmountMinor  int64      `db:"amount_minor" json:"amount_minor"`
	Method       string     `db:"method" json:"method"`
	ProofKey     *string    `db:"proof_key" json:"proof_key,omitempty"`
	Status       string     `db:"status" json:"status"`
	StatusReason *string    `db:"status_reason" json:"status_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DecidedAt    *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	DecidedBy    *string    `db:"decided_by" json:"decided_by,omitempty"`
}

type WithdrawalRequest struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	AmountMinor   int64      `db:"amount_minor" json:"amount_minor"`
	FeeMinor      int64      `db:"fee_minor" json:"fee_minor"`
	Source        string     `db:"source" json:"source"`
	TargetAddress string     `db:"target_address" json:"target_address"`
	Method        string     `db:"method" json:"method"`
	Status        string     `db:"status" json:"status"`
	StatusReason  *string    `db:"status_reason" json:"status_reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	DecidedAt     *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	DecidedBy     *string    `db:"decided_by" json:"decided_by,omitempty"`
}

// SystemSettings is the resolved singleton config, monetary fields in
// minor units.
type SystemSettings struct {
	MinDepositMinor         int64
	MinWithdrawMinor        int64
	WithdrawFrequencyDays   int
	CapitalLockEnabled      bool
	CapitalLockDurationDays int
}

type Attachment struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	StorageKey   string     `db:"storage_key" json:"storage_key"`
	Purpose      string     `db:"purpose" json:"purpose"`
	MimeType     string     `db:"mime_type" json:"mime_type"`
	SizeBytes    int64      `db:"size_bytes" json:"size_bytes"`
	OriginalName string     `db:"original_name" json:"original_name"`
	Status       string     `db:"status" json:"status"`
	OwnerType    *string    `db:"owner_type" json:"owner_type,omitempty"`
	OwnerID      *string    `db:"owner_id" json:"owner_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
}

type SupportTicket struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Subject     string    `db:"subject" json:"subject"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
