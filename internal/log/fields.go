package log

import "rivaluta/internal/core"

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRunID          = "run_id"
	FieldPeriod         = "period"
	FieldStart          = "start"
	FieldEnd            = "end"
	FieldReference      = "reference"
	FieldAmount         = "amount"
	FieldCoefficient    = "coefficient"
	FieldRevaluedAmount = "revalued_amount"
	FieldErrorKind      = "error_kind"
	FieldDuration       = "duration_ms"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldSink           = "sink"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentRevaluation = "revaluation"
	ComponentISTAT       = "istat"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentSheets      = "sheets"
	ComponentRecorder    = "recorder"
)

// Operations defines standard operation names
const (
	OpRevalue  = "revalue"
	OpRun      = "run"
	OpRecord   = "record"
	OpPublish  = "publish"
	OpList     = "list"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithPeriod adds the period being processed
func (f LogFields) WithPeriod(p core.Period) LogFields {
	f[FieldPeriod] = p.String()
	return f
}

// WithOutcome adds the result or failure kind of one period
func (f LogFields) WithOutcome(o core.Outcome) LogFields {
	f[FieldPeriod] = o.Period.String()
	f[FieldSuccess] = o.OK()
	if o.OK() {
		f[FieldCoefficient] = o.Result.Coefficient
		f[FieldRevaluedAmount] = o.Result.RevaluedAmount
	} else {
		f[FieldErrorKind] = string(o.Kind)
	}
	return f
}

// WithRange adds the requested range and amount
func (f LogFields) WithRange(start, end core.Period, amount core.Amount) LogFields {
	f[FieldStart] = start.String()
	f[FieldEnd] = end.String()
	f[FieldAmount] = amount.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
