package inbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// IngestorConfig carries the shared secret and an injectable clock.
type IngestorConfig struct {
	Secret string
	// Clock overrides time.Now for received_at stamping. Nil means time.Now.
	Clock func() time.Time
}

// Ingestor orchestrates one inbound webhook delivery: signature check over
// the raw body, payload validation, and idempotent insert. It emits exactly
// one classification event to the sink per call.
type Ingestor struct {
	secret   string
	clock    func() time.Time
	store    Store
	sink     Sink
	validate *validator.Validate
}

func NewIngestor(cfg IngestorConfig, store Store, sink Sink) *Ingestor {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Ingestor{
		secret:   cfg.Secret,
		clock:    clock,
		store:    store,
		sink:     sink,
		validate: newValidator(),
	}
}

// Ingest processes one raw delivery. The signature is verified over the body
// bytes exactly as received, before any JSON decode. A storage failure (other
// than the expected uniqueness conflict, which InsertIfAbsent absorbs) is
// returned as error with a zero Outcome.
//
// A missing and an invalid signature are counted under the same label so the
// metrics surface leaks nothing the HTTP response does not.
func (ing *Ingestor) Ingest(rawBody []byte, signature string) (Outcome, error) {
	if ing.secret == "" {
		ing.sink.WebhookResult(ResultUnconfigured)
		return Outcome{Kind: OutcomeUnconfigured}, nil
	}
	if signature == "" {
		ing.sink.WebhookResult(ResultInvalidSignature)
		return Outcome{Kind: OutcomeMissingSignature}, nil
	}
	if !VerifySignature(ing.secret, rawBody, signature) {
		ing.sink.WebhookResult(ResultInvalidSignature)
		return Outcome{Kind: OutcomeInvalidSignature}, nil
	}

	var payload Payload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		ing.sink.WebhookResult(ResultValidationError)
		return Outcome{
			Kind:   OutcomeValidationError,
			Fields: []FieldError{{Field: "body", Reason: "invalid json"}},
		}, nil
	}
	if fields := validatePayload(ing.validate, &payload); fields != nil {
		ing.sink.WebhookResult(ResultValidationError)
		return Outcome{Kind: OutcomeValidationError, Fields: fields}, nil
	}

	msg := Message{
		MessageID:  payload.MessageID,
		From:       payload.From,
		To:         payload.To,
		TS:         payload.TS,
		Text:       payload.Text,
		ReceivedAt: ing.clock().UTC().Format(time.RFC3339),
	}
	stored, wasNew, err := ing.store.InsertIfAbsent(msg)
	if err != nil {
		ing.sink.WebhookResult(ResultError)
		return Outcome{}, fmt.Errorf("store message: %w", err)
	}
	if wasNew {
		ing.sink.WebhookResult(ResultCreated)
		return Outcome{Kind: OutcomeCreated, Message: &stored}, nil
	}
	ing.sink.WebhookResult(ResultDuplicate)
	return Outcome{Kind: OutcomeDuplicate, Message: &stored}, nil
}
