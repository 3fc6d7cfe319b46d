package inbox

// Message is the persisted entity. Rows are immutable once written:
// re-insertion under the same message_id never overwrites (first write wins).
type Message struct {
	MessageID  string  `json:"message_id" db:"message_id"`
	From       string  `json:"from" db:"from_msisdn"`
	To         string  `json:"to" db:"to_msisdn"`
	TS         string  `json:"ts" db:"ts"`
	Text       *string `json:"text" db:"text"`
	ReceivedAt string  `json:"-" db:"received_at"`
}

// Payload is the inbound webhook body. Field constraints mirror what the
// upstream sender is contractually allowed to deliver.
type Payload struct {
	MessageID string  `json:"message_id" validate:"required"`
	From      string  `json:"from" validate:"required,msisdn"`
	To        string  `json:"to" validate:"required,msisdn"`
	TS        string  `json:"ts" validate:"required,utcts"`
	Text      *string `json:"text" validate:"omitempty,max=4096"`
}

// FieldError names a single payload field that failed validation.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// OutcomeKind classifies one ingestion attempt.
type OutcomeKind int

const (
	OutcomeUnconfigured OutcomeKind = iota
	OutcomeMissingSignature
	OutcomeInvalidSignature
	OutcomeValidationError
	OutcomeCreated
	OutcomeDuplicate
)

// Outcome is the result of Ingestor.Ingest. Message is set for Created and
// Duplicate (the stored row, which for Duplicate is the original winner's
// fields, not the resubmitted ones). Fields is set for ValidationError.
type Outcome struct {
	Kind    OutcomeKind
	Message *Message
	Fields  []FieldError
}

// Result labels reported to the event sink, one per ingestion call.
const (
	ResultCreated          = "created"
	ResultDuplicate        = "duplicate"
	ResultInvalidSignature = "invalid_signature"
	ResultValidationError  = "validation_error"
	ResultUnconfigured     = "unconfigured"
	ResultError            = "error"
)

// Sink receives one classification event per ingestion call. Implementations
// own their aggregation and locking; the core only emits.
type Sink interface {
	WebhookResult(result string)
}
