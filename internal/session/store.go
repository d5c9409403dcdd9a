// Package session keeps per-user chat state.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/internal/domain"
)

// MarketView read-only access to market stats for alert checks.
type MarketView interface {
	Stats(pair domain.Pair) (domain.PairStats, bool)
}

// userState everything tracked for one user id.
type userState struct {
	alerts     []domain.Alert
	alertSeq   int
	strategy   string
	lastActive time.Time
}

// Store owns all per-user session state behind accessor methods.
type Store struct {
	mu    sync.Mutex
	users map[string]*userState
	order []string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{users: make(map[string]*userState)}
}

func (s *Store) state(userID string) *userState {
	st, ok := s.users[userID]
	if !ok {
		st = &userState{}
		s.users[userID] = st
		s.order = append(s.order, userID)
	}
	st.lastActive = time.Now()
	return st
}

// AddAlert registers a price alert for the user and returns it.
func (s *Store) AddAlert(userID string, pair domain.Pair, target decimal.Decimal) domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	st.alertSeq++
	alert := domain.Alert{
		ID:          fmt.Sprintf("ALERT-%d", st.alertSeq),
		Pair:        pair,
		TargetPrice: target,
		Created:     time.Now(),
	}
	st.alerts = append(st.alerts, alert)
	return alert
}

// RemoveAlert deletes an alert by id, reporting whether it existed.
func (s *Store) RemoveAlert(userID, alertID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	for i, alert := range st.alerts {
		if alert.ID == alertID {
			st.alerts = append(st.alerts[:i], st.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Alerts returns the user's alerts in insertion order.
func (s *Store) Alerts(userID string) []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	out := make([]domain.Alert, len(st.alerts))
	copy(out, st.alerts)
	return out
}

// SetStrategy records the user's last selected strategy for display.
func (s *Store) SetStrategy(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(userID).strategy = name
}

// Strategy returns the user's last selected strategy, "" when never set.
func (s *Store) Strategy(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(userID).strategy
}

// CheckAlerts scans all alerts in user and insertion order and flips the
// first untriggered alert whose pair price reached the target. At most one
// alert is surfaced per call; the returned text is empty when none fired.
func (s *Store) CheckAlerts(market MarketView) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range s.order {
		st := s.users[userID]
		for i := range st.alerts {
			alert := &st.alerts[i]
			if alert.Triggered {
				continue
			}
			stats, ok := market.Stats(alert.Pair)
			if !ok {
				continue
			}
			if stats.Price.GreaterThanOrEqual(alert.TargetPrice) {
				alert.Triggered = true
				return fmt.Sprintf("Price alert triggered: %s reached %s (target: %s)",
					alert.Pair.String(), stats.Price.String(), alert.TargetPrice.String())
			}
		}
	}
	return ""
}
