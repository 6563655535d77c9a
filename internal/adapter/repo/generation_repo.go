package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"scriptreel/internal/domain"
	"scriptreel/internal/infra"
	"scriptreel/internal/sqlinline"
)

// Generation statuses stored in the ledger.
const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusNoResult  = "NO_RESULT"
)

// Submission describes one accepted generation request.
type Submission struct {
	RequestID string
	Operation domain.Operation
	Request   domain.GenerationRequest
	Prompt    string
}

// Download describes one relayed download attempt.
type Download struct {
	RequestID      string
	UpstreamStatus int
	ContentType    string
	Bytes          int64
	Streamed       bool
}

// GenerationRepo records submissions, status checks and downloads. It is an
// audit trail only; nothing reads it back on the request path.
type GenerationRepo struct {
	sql infra.SQLExecutor
}

func NewGenerationRepo(sql infra.SQLExecutor) *GenerationRepo {
	return &GenerationRepo{sql: sql}
}

// EnsureSchema creates the ledger tables when they are missing.
func (r *GenerationRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.sql.Exec(ctx, sqlinline.QEnsureGenerationSchema)
	return err
}

// RecordSubmission stores a freshly submitted operation. The prompt is kept
// only as a digest.
func (r *GenerationRepo) RecordSubmission(ctx context.Context, s Submission) error {
	name := s.Operation.Name()
	if name == "" {
		return errors.New("operation has no name")
	}
	sum := sha256.Sum256([]byte(s.Prompt))
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGeneration,
		name,
		s.RequestID,
		s.Request.VideoModel,
		s.Request.AspectRatio,
		s.Request.CreativeStyle,
		s.Request.VideoLength,
		s.Request.HasAudio(),
		s.Request.ReferenceImage() != nil,
		hex.EncodeToString(sum[:]),
	)
	return err
}

// RecordStatus stores the outcome of one status check and returns the number
// of checks seen so far for the operation. Unknown operations are reported
// with zero checks and no error.
func (r *GenerationRepo) RecordStatus(ctx context.Context, op domain.Operation) (int, error) {
	name := op.Name()
	if name == "" {
		return 0, nil
	}
	status, errMsg := StatusOf(op)
	var count int
	if err := r.sql.QueryRow(ctx, sqlinline.QUpdateGenerationStatus, name, status, errMsg).Scan(&count); err != nil {
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// RecordDownload stores one relay attempt.
func (r *GenerationRepo) RecordDownload(ctx context.Context, d Download) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertDownload,
		uuid.New(),
		d.RequestID,
		d.UpstreamStatus,
		d.ContentType,
		d.Bytes,
		d.Streamed,
	)
	return err
}

// StatusOf maps an operation onto a ledger status and optional error text.
func StatusOf(op domain.Operation) (string, *string) {
	if !op.Done() {
		return StatusPending, nil
	}
	if msg, failed := op.Failure(); failed {
		return StatusFailed, &msg
	}
	if op.VideoURI() == "" {
		return StatusNoResult, nil
	}
	return StatusSucceeded, nil
}

// NopRepo satisfies the same contract as GenerationRepo without a database.
type NopRepo struct{}

func (NopRepo) RecordSubmission(context.Context, Submission) error           { return nil }
func (NopRepo) RecordStatus(context.Context, domain.Operation) (int, error) { return 0, nil }
func (NopRepo) RecordDownload(context.Context, Download) error              { return nil }
