package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	claimdomain "github.com/zenithhr/expensio/internal/claim/domain"
	"gorm.io/gorm"
)

type ProcessBatchRequest struct {
	ClaimIDs          []string      `json:"claim_ids"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	ReimbursementDate *time.Time    `json:"reimbursement_date"`
	Notes             string        `json:"notes"`
}

type ProcessBatchResponse struct {
	Batch  *ReimbursementBatch        `json:"batch"`
	Claims []*claimdomain.ExpenseClaim `json:"claims"`
}

type Service interface {
	// ProcessBatch atomically creates a batch and marks every requested claim
	// reimbursed. If any claim is not eligible the whole request fails and no
	// claim is touched.
	ProcessBatch(ctx context.Context, req ProcessBatchRequest) (*ProcessBatchResponse, error)

	GetByID(ctx context.Context, id string) (*ReimbursementBatch, error)
	ClaimsForBatch(ctx context.Context, id string) ([]*claimdomain.ExpenseClaim, error)

	// UpdateStatus moves a PROCESSING batch to a terminal state. Used by the
	// bank integration after file generation and payment simulation.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status BatchStatus) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, batch *ReimbursementBatch) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ReimbursementBatch, error)

	// UpdateStatusIfProcessing reports whether the conditional update won.
	UpdateStatusIfProcessing(ctx context.Context, db *gorm.DB, id snowflake.ID, status BatchStatus) (bool, error)
}

// IneligibleClaimsError reports the claims that blocked a batch. The request
// fails closed: eligible siblings in the same request are left untouched.
type IneligibleClaimsError struct {
	IneligibleIDs []string
}

func (e *IneligibleClaimsError) Error() string {
	return fmt.Sprintf("claims_not_eligible: %s", strings.Join(e.IneligibleIDs, ", "))
}

var (
	ErrInvalidID            = errors.New("invalid_batch_id")
	ErrNoClaims             = errors.New("no_claims_requested")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrBatchNotFound        = errors.New("batch_not_found")
	ErrBatchNotProcessing   = errors.New("batch_not_processing")
	ErrMissingActor         = errors.New("missing_actor")
)
