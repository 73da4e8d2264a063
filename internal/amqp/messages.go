package amqp

import (
	"encoding/json"
	"time"

	"rivaluta/internal/core"
)

// OutcomeMessage carries one period's outcome of a run. Values are the
// verbatim strings returned by ISTAT.
type OutcomeMessage struct {
	RunID          int64     `json:"run_id,omitempty"`
	Seq            int       `json:"seq"`
	Month          int       `json:"month"` // 1..12
	Year           int       `json:"year"`
	Period         string    `json:"period"`
	Amount         int64     `json:"amount"`
	ReferenceMonth int       `json:"reference_month"`
	ReferenceYear  int       `json:"reference_year"`
	Success        bool      `json:"success"`
	Coefficient    string    `json:"coefficient,omitempty"`
	RevaluedAmount string    `json:"revalued_amount,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewOutcomeMessage builds the message for the seq-th outcome of run.
func NewOutcomeMessage(run *core.Run, seq int) *OutcomeMessage {
	o := run.Outcomes[seq]
	msg := &OutcomeMessage{
		RunID:          run.ID,
		Seq:            seq,
		Month:          o.Period.MonthIndex() + 1,
		Year:           o.Period.Year(),
		Period:         o.Period.String(),
		Amount:         int64(run.Amount),
		ReferenceMonth: run.Reference.MonthIndex() + 1,
		ReferenceYear:  run.Reference.Year(),
		Success:        o.OK(),
		Timestamp:      time.Now(),
	}
	if o.OK() {
		msg.Coefficient = o.Result.Coefficient
		msg.RevaluedAmount = o.Result.RevaluedAmount
	} else {
		msg.ErrorKind = string(o.Kind)
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *OutcomeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// OutcomeMessageFromJSON creates a message from JSON bytes
func OutcomeMessageFromJSON(data []byte) (*OutcomeMessage, error) {
	var msg OutcomeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
