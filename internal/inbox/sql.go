package inbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore implements Store over sqlx. It speaks both SQLite (the default,
// single local file) and Postgres, selected from the DATABASE_URL scheme.
// Idempotency relies on the engine enforcing the message_id primary key
// atomically: we insert unconditionally and re-read on a uniqueness conflict.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

const sqlSchema = `
CREATE TABLE IF NOT EXISTS messages (
	message_id  TEXT PRIMARY KEY,
	from_msisdn TEXT NOT NULL,
	to_msisdn   TEXT NOT NULL,
	ts          TEXT NOT NULL,
	text        TEXT,
	received_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_from ON messages (from_msisdn);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages (ts);
`

// parseDatabaseURL maps a DATABASE_URL to (driver, dsn). A postgres:// or
// postgresql:// URL selects lib/pq; a sqlite:// URL (or a bare file path)
// selects the embedded SQLite driver. sqlite:///x is relative, sqlite:////x
// absolute.
func parseDatabaseURL(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		return "sqlite", path
	default:
		return "sqlite", url
	}
}

func OpenSQLStore(databaseURL string) (*SQLStore, error) {
	driver, dsn := parseDatabaseURL(databaseURL)
	if driver == "sqlite" {
		dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(sqlSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Ping() error {
	return s.db.Ping()
}

// isUniqueViolation recognizes the expected primary-key conflict for both
// engines. Postgres reports SQLSTATE 23505; modernc sqlite surfaces the
// violation only in the error text.
func (s *SQLStore) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *SQLStore) getByID(messageID string) (Message, error) {
	var m Message
	query := s.db.Rebind(`SELECT message_id, from_msisdn, to_msisdn, ts, text, received_at
		FROM messages WHERE message_id = ?`)
	if err := s.db.Get(&m, query, messageID); err != nil {
		return Message{}, fmt.Errorf("read message %s: %w", messageID, err)
	}
	return m, nil
}

func (s *SQLStore) InsertIfAbsent(m Message) (Message, bool, error) {
	query := s.db.Rebind(`INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, received_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query, m.MessageID, m.From, m.To, m.TS, m.Text, m.ReceivedAt)
	if err == nil {
		return m, true, nil
	}
	if !s.isUniqueViolation(err) {
		return Message{}, false, fmt.Errorf("insert message: %w", err)
	}
	existing, gerr := s.getByID(m.MessageID)
	if gerr != nil {
		return Message{}, false, gerr
	}
	return existing, false, nil
}

func (s *SQLStore) List(f ListFilter) ([]Message, int, error) {
	var where []string
	var args []any
	if f.From != "" {
		where = append(where, "from_msisdn = ?")
		args = append(args, f.From)
	}
	if f.Since != "" {
		// Lexical compare is correct for the fixed-width ISO-8601 UTC profile.
		where = append(where, "ts >= ?")
		args = append(args, f.Since)
	}
	if f.Q != "" {
		where = append(where, "LOWER(text) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Q)+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.Get(&total, s.db.Rebind("SELECT COUNT(*) FROM messages"+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	rows := []Message{}
	query := s.db.Rebind(`SELECT message_id, from_msisdn, to_msisdn, ts, text, received_at
		FROM messages` + clause + ` ORDER BY ts ASC, message_id ASC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return rows, total, nil
}

func (s *SQLStore) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Get(&st.TotalMessages, "SELECT COUNT(*) FROM messages"); err != nil {
		return Stats{}, fmt.Errorf("count total: %w", err)
	}
	if err := s.db.Get(&st.SendersCount, "SELECT COUNT(DISTINCT from_msisdn) FROM messages"); err != nil {
		return Stats{}, fmt.Errorf("count senders: %w", err)
	}
	st.TopSenders = []SenderCount{}
	err := s.db.Select(&st.TopSenders, `SELECT from_msisdn, COUNT(*) AS cnt FROM messages
		GROUP BY from_msisdn ORDER BY cnt DESC, from_msisdn ASC LIMIT 10`)
	if err != nil {
		return Stats{}, fmt.Errorf("top senders: %w", err)
	}
	if err := s.db.QueryRow("SELECT MIN(ts), MAX(ts) FROM messages").Scan(&st.FirstMessageTS, &st.LastMessageTS); err != nil {
		return Stats{}, fmt.Errorf("ts bounds: %w", err)
	}
	return st, nil
}

// Ensure SQLStore satisfies the Store interface at compile time.
var _ Store = (*SQLStore)(nil)
