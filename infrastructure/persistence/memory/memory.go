// Package memory provides in-memory repository implementations used by local
// development mode and the application service tests. All stores are safe for
// concurrent use.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeonghun43/Prism/application/ports"
	"github.com/jeonghun43/Prism/domain/feedback"
)

// TargetStore implements ports.TargetRepository in memory.
type TargetStore struct {
	mu      sync.RWMutex
	byID    map[string]feedback.Target
	byNick  map[string]string
}

// NewTargetStore creates an empty target store.
func NewTargetStore() *TargetStore {
	return &TargetStore{
		byID:   make(map[string]feedback.Target),
		byNick: make(map[string]string),
	}
}

func (s *TargetStore) Save(_ context.Context, target *feedback.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[target.ID] = *target
	s.byNick[target.Nickname] = target.ID
	return nil
}

func (s *TargetStore) GetByID(_ context.Context, id string) (*feedback.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := target
	return &copied, nil
}

func (s *TargetStore) GetByNickname(_ context.Context, nickname string) (*feedback.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNick[nickname]
	if !ok {
		return nil, nil
	}
	target := s.byID[id]
	return &target, nil
}

func (s *TargetStore) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]*feedback.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*feedback.Target
	for _, target := range s.byID {
		if target.CreatedAt.Before(cutoff) {
			copied := target
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *TargetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if target, ok := s.byID[id]; ok {
		delete(s.byNick, target.Nickname)
		delete(s.byID, id)
	}
	return nil
}

// QuestionStore implements ports.QuestionRepository over a fixed slice.
type QuestionStore struct {
	questions []feedback.Question
}

// NewQuestionStore creates a question store serving the given set.
func NewQuestionStore(questions []feedback.Question) *QuestionStore {
	return &QuestionStore{questions: questions}
}

func (s *QuestionStore) ListActive(_ context.Context) ([]feedback.Question, error) {
	active := make([]feedback.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.Active {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

func (s *QuestionStore) GetByIDs(_ context.Context, ids []string) (map[string]feedback.Question, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	byID := make(map[string]feedback.Question, len(ids))
	for _, q := range s.questions {
		if _, ok := wanted[q.ID]; ok {
			byID[q.ID] = q
		}
	}
	return byID, nil
}

// ResponseStore implements ports.ResponseRepository in memory. Records are
// keyed by session token and question id, matching the table's natural key.
type ResponseStore struct {
	mu      sync.RWMutex
	byKey   map[string]feedback.VoteRecord
}

// NewResponseStore creates an empty response store.
func NewResponseStore() *ResponseStore {
	return &ResponseStore{byKey: make(map[string]feedback.VoteRecord)}
}

func responseKey(targetID string, token feedback.SessionToken, questionID string) string {
	return strings.Join([]string{targetID, token.String(), questionID}, "#")
}

func (s *ResponseStore) SaveBatch(_ context.Context, votes []feedback.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, vote := range votes {
		s.byKey[responseKey(vote.TargetID, vote.SessionToken, vote.QuestionID)] = vote
	}
	return nil
}

func (s *ResponseStore) DeleteBySession(_ context.Context, targetID string, token feedback.SessionToken, questionIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, questionID := range questionIDs {
		delete(s.byKey, responseKey(targetID, token, questionID))
	}
	return nil
}

func (s *ResponseStore) ListByTarget(_ context.Context, targetID string) ([]feedback.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var votes []feedback.VoteRecord
	for _, vote := range s.byKey {
		if vote.TargetID == targetID {
			votes = append(votes, vote)
		}
	}
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].CreatedAt.After(votes[j].CreatedAt)
	})
	return votes, nil
}

func (s *ResponseStore) DeleteByTarget(_ context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, vote := range s.byKey {
		if vote.TargetID == targetID {
			delete(s.byKey, key)
		}
	}
	return nil
}

// LockStore implements ports.ReportLockRepository in memory with the same
// compare-and-flip contract as the DynamoDB conditional update.
type LockStore struct {
	mu    sync.Mutex
	locks map[string]feedback.ReportLock
}

// NewLockStore creates an empty lock store.
func NewLockStore() *LockStore {
	return &LockStore{locks: make(map[string]feedback.ReportLock)}
}

func (s *LockStore) Get(_ context.Context, targetID string) (*feedback.ReportLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[targetID]
	if !ok {
		return nil, nil
	}
	copied := lock
	return &copied, nil
}

func (s *LockStore) Create(_ context.Context, lock feedback.ReportLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locks[lock.TargetID]; ok {
		return nil
	}
	s.locks[lock.TargetID] = lock
	return nil
}

func (s *LockStore) Unlock(_ context.Context, targetID string, unlockedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[targetID]
	if !ok || !lock.IsLocked {
		return false, nil
	}
	lock.IsLocked = false
	lock.UnlockedAt = &unlockedAt
	s.locks[targetID] = lock
	return true, nil
}

func (s *LockStore) DeleteByTarget(_ context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, targetID)
	return nil
}

// NotificationStore implements ports.NotificationRepository in memory.
type NotificationStore struct {
	mu      sync.Mutex
	entries map[string][]feedback.Notification
}

// NewNotificationStore creates an empty notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{entries: make(map[string][]feedback.Notification)}
}

func (s *NotificationStore) Append(_ context.Context, notification feedback.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[notification.TargetID] = append(s.entries[notification.TargetID], notification)
	return nil
}

func (s *NotificationStore) ListRecent(_ context.Context, targetID string, limit int, unreadOnly bool) ([]feedback.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.entries[targetID]

	filtered := make([]feedback.Notification, 0, len(all))
	for _, n := range all {
		if unreadOnly && n.IsRead {
			continue
		}
		filtered = append(filtered, n)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, targetID string, ids []string) error {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[targetID]
	for i := range list {
		if _, ok := wanted[list[i].ID]; ok {
			list[i].IsRead = true
		}
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[targetID]
	for i := range list {
		list[i].IsRead = true
	}
	return nil
}

func (s *NotificationStore) DeleteByTarget(_ context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, targetID)
	return nil
}

// ConnectionStore implements ports.ConnectionRepository in memory.
type ConnectionStore struct {
	mu          sync.RWMutex
	connections map[string]ports.Connection
}

// NewConnectionStore creates an empty connection store.
func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{connections: make(map[string]ports.Connection)}
}

func (s *ConnectionStore) Save(_ context.Context, conn ports.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[conn.ConnectionID] = conn
	return nil
}

func (s *ConnectionStore) ListByTarget(_ context.Context, targetID string) ([]ports.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ports.Connection
	for _, conn := range s.connections {
		if conn.TargetID == targetID {
			out = append(out, conn)
		}
	}
	return out, nil
}

func (s *ConnectionStore) Delete(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}
