package inbox

import (
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. The mutex gives InsertIfAbsent the same
// single-writer-per-key guarantee a SQL engine provides through its primary
// key. Useful for tests and for running without a database file.
type MemStore struct {
	mu       sync.Mutex
	messages map[string]Message
}

func NewMemStore() *MemStore {
	return &MemStore{messages: map[string]Message{}}
}

func (s *MemStore) Close() error { return nil }
func (s *MemStore) Ping() error  { return nil }

func (s *MemStore) InsertIfAbsent(m Message) (Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.messages[m.MessageID]; ok {
		return existing, false, nil
	}
	s.messages[m.MessageID] = m
	return m, true, nil
}

func (s *MemStore) matching(f ListFilter) []Message {
	var rows []Message
	for _, m := range s.messages {
		if f.From != "" && m.From != f.From {
			continue
		}
		if f.Since != "" && m.TS < f.Since {
			continue
		}
		if f.Q != "" {
			if m.Text == nil || !strings.Contains(strings.ToLower(*m.Text), strings.ToLower(f.Q)) {
				continue
			}
		}
		rows = append(rows, m)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TS != rows[j].TS {
			return rows[i].TS < rows[j].TS
		}
		return rows[i].MessageID < rows[j].MessageID
	})
	return rows
}

func (s *MemStore) List(f ListFilter) ([]Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.matching(f)
	total := len(rows)
	if f.Offset >= len(rows) {
		return []Message{}, total, nil
	}
	rows = rows[f.Offset:]
	if f.Limit < len(rows) {
		rows = rows[:f.Limit]
	}
	page := make([]Message, len(rows))
	copy(page, rows)
	return page, total, nil
}

func (s *MemStore) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{TopSenders: []SenderCount{}}
	st.TotalMessages = len(s.messages)

	counts := map[string]int{}
	for _, m := range s.messages {
		counts[m.From]++
		if st.FirstMessageTS == nil || m.TS < *st.FirstMessageTS {
			ts := m.TS
			st.FirstMessageTS = &ts
		}
		if st.LastMessageTS == nil || m.TS > *st.LastMessageTS {
			ts := m.TS
			st.LastMessageTS = &ts
		}
	}
	st.SendersCount = len(counts)

	for from, n := range counts {
		st.TopSenders = append(st.TopSenders, SenderCount{From: from, Count: n})
	}
	sort.Slice(st.TopSenders, func(i, j int) bool {
		if st.TopSenders[i].Count != st.TopSenders[j].Count {
			return st.TopSenders[i].Count > st.TopSenders[j].Count
		}
		return st.TopSenders[i].From < st.TopSenders[j].From
	})
	if len(st.TopSenders) > 10 {
		st.TopSenders = st.TopSenders[:10]
	}
	return st, nil
}

var _ Store = (*MemStore)(nil)
