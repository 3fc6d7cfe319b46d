package inbox

import (
	"strconv"

	"github.com/samber/lo"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ListParams are the raw query-string values before validation.
type ListParams struct {
	From   string
	Since  string
	Q      string
	Limit  string
	Offset string
}

// MessageView is the wire shape of one listed message. received_at stays
// internal.
type MessageView struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	TS        string  `json:"ts"`
	Text      *string `json:"text"`
}

// ListResponse is the pagination envelope.
type ListResponse struct {
	Data   []MessageView `json:"data"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// QueryService validates read parameters and maps them onto the store. It
// carries no business logic beyond bounds checking and response shaping.
type QueryService struct {
	store Store
}

func NewQueryService(store Store) *QueryService {
	return &QueryService{store: store}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > maxListLimit {
		return 0, NewValidationError("limit must be an integer between 1 and " + strconv.Itoa(maxListLimit))
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, NewValidationError("offset must be a non-negative integer")
	}
	return v, nil
}

func toView(m Message, _ int) MessageView {
	return MessageView{
		MessageID: m.MessageID,
		From:      m.From,
		To:        m.To,
		TS:        m.TS,
		Text:      m.Text,
	}
}

func (q *QueryService) ListMessages(p ListParams) (ListResponse, error) {
	limit, err := parseLimit(p.Limit)
	if err != nil {
		return ListResponse{}, err
	}
	offset, err := parseOffset(p.Offset)
	if err != nil {
		return ListResponse{}, err
	}

	rows, total, err := q.store.List(ListFilter{
		From:   p.From,
		Since:  p.Since,
		Q:      p.Q,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return ListResponse{}, NewInternalError(err.Error())
	}
	return ListResponse{
		Data:   lo.Map(rows, toView),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (q *QueryService) GetStats() (Stats, error) {
	st, err := q.store.Stats()
	if err != nil {
		return Stats{}, NewInternalError(err.Error())
	}
	return st, nil
}
