package inbox

// ListFilter narrows and pages a message listing. Limit must be in [1,100]
// and Offset >= 0; the query layer enforces this before the store sees it.
type ListFilter struct {
	From   string // exact match on sender
	Since  string // inclusive lower bound on ts (lexical ISO-8601 compare)
	Q      string // case-insensitive substring on text
	Limit  int
	Offset int
}

// SenderCount is one entry of the top-senders leaderboard.
type SenderCount struct {
	From  string `json:"from" db:"from_msisdn"`
	Count int    `json:"count" db:"cnt"`
}

// Stats aggregates over the full unfiltered message set.
type Stats struct {
	TotalMessages  int           `json:"total_messages"`
	SendersCount   int           `json:"senders_count"`
	TopSenders     []SenderCount `json:"messages_per_sender"`
	FirstMessageTS *string       `json:"first_message_ts"`
	LastMessageTS  *string       `json:"last_message_ts"`
}

// Store is the durable keyed message storage used by ingestion and queries.
// It allows swapping the SQL-backed and in-memory implementations.
type Store interface {
	// InsertIfAbsent writes m unless a row with the same message_id already
	// exists. It returns the stored row and whether this call created it.
	// Under concurrent calls with the same id exactly one observes true;
	// the rest receive the winning row. Atomicity is delegated to the
	// storage layer's uniqueness enforcement.
	InsertIfAbsent(m Message) (Message, bool, error)

	// List returns the filtered page ordered by (ts ASC, message_id ASC)
	// and the total count of the filtered set before pagination.
	List(f ListFilter) ([]Message, int, error)

	Stats() (Stats, error)

	// Ping reports storage reachability for the readiness probe.
	Ping() error

	Close() error
}
