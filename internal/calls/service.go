package calls

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"voice-dashboard/internal/apperr"
	"voice-dashboard/pkg/pagination"
	"voice-dashboard/pkg/utils"
)

// Repository is the persistence contract for the calls ledger.
type Repository interface {
	// Insert always appends; duplicate call ids produce duplicate rows.
	Insert(ctx context.Context, c Call) error
	// Patch applies assignments to every row with call_id. Matching no rows is not an error.
	Patch(ctx context.Context, callID string, sets []Assignment) error
	History(ctx context.Context, limit, offset int) ([]HistoryRow, error)
}

const (
	msgRecordRequired = "Missing required fields: call_id, agent_id, status, start_time"
	msgPatchRequired  = "call_id is required"
	msgPatchEmpty     = "No valid fields to update"
)

type Service struct {
	repo     Repository
	clock    func() time.Time
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, validate: validator.New()}
}

// Record appends a call fact and returns its call id.
func (s *Service) Record(ctx context.Context, in RecordInput) (string, error) {
	in.CallID = strings.TrimSpace(in.CallID)
	in.AgentID = strings.TrimSpace(in.AgentID)
	in.Status = strings.TrimSpace(in.Status)
	in.StartTime = strings.TrimSpace(in.StartTime)
	if err := s.validate.Struct(in); err != nil {
		return "", apperr.FromValidator(err, msgRecordRequired)
	}

	start, err := utils.ParseTimestamp(in.StartTime)
	if err != nil {
		return "", apperr.Validation("start_time: " + err.Error())
	}

	c := Call{
		CallID:       in.CallID,
		CallerNumber: in.CallerNumber,
		AgentID:      in.AgentID,
		Status:       CallStatus(in.Status),
		Duration:     in.Duration,
		StartTime:    start,
		Direction:    firstNonEmpty(in.Direction, in.CallDirection),
		FromNumber:   in.FromNumber,
		ToNumber:     in.ToNumber,
		RecordingURL: in.RecordingURL,
		Transcript:   in.Transcript,
		Region:       in.Region,
		CreatedAt:    s.clock().UTC(),
	}
	if in.EndTime != "" {
		end, err := utils.ParseTimestamp(in.EndTime)
		if err != nil {
			return "", apperr.Validation("end_time: " + err.Error())
		}
		c.EndTime = &end
	}
	if in.Cost != nil {
		c.Cost = decimal.NewNullDecimal(*in.Cost)
	}
	if m := strings.TrimSpace(string(in.Metadata)); m != "" && m != "null" {
		c.Metadata = in.Metadata
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return "", apperr.FromStore(err, "")
	}
	return c.CallID, nil
}

// Patch applies a sparse update. fields must be decoded with json.Decoder.UseNumber.
func (s *Service) Patch(ctx context.Context, callID string, fields map[string]any) error {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return apperr.Validation(msgPatchRequired)
	}
	sets, err := buildAssignments(fields)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return apperr.Validation(msgPatchEmpty)
	}
	if err := s.repo.Patch(ctx, callID, sets); err != nil {
		return apperr.FromStore(err, "")
	}
	return nil
}

// History returns one page of calls, newest first.
func (s *Service) History(ctx context.Context, p pagination.Params) ([]HistoryEntry, error) {
	p = pagination.History.Clamp(p.Limit, p.Offset)
	rows, err := s.repo.History(ctx, p.Limit, p.Offset)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Entry())
	}
	return out, nil
}
