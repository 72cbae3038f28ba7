package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	challengesCreated    int
	challengeTransitions map[string]int
	rankPenalties        map[string]int
	matchesVerified      int
	matchesDisputed      int
	notificationsSent    int
	notificationsFailed  int
	sweepRuns            int
	sweepDurations       []float64
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		challengeTransitions: make(map[string]int),
		rankPenalties:        make(map[string]int),
		sweepDurations:       make([]float64, 0),
	}
}

func (m *Mock) IncChallengesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challengesCreated++
}

func (m *Mock) IncChallengeTransition(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challengeTransitions[status]++
}

func (m *Mock) IncRankPenalty(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankPenalties[reason]++
}

func (m *Mock) IncMatchesVerified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesVerified++
}

func (m *Mock) IncMatchesDisputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesDisputed++
}

func (m *Mock) IncNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent++
}

func (m *Mock) IncNotificationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed++
}

func (m *Mock) IncSweepRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns++
}

func (m *Mock) ObserveSweepDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepDurations = append(m.sweepDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ChallengesCreated returns the number of times IncChallengesCreated was called.
func (m *Mock) ChallengesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challengesCreated
}

// ChallengeTransitions returns how often a transition to status was recorded.
func (m *Mock) ChallengeTransitions(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challengeTransitions[status]
}

// RankPenalties returns how often a penalty with reason was recorded.
func (m *Mock) RankPenalties(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rankPenalties[reason]
}

func (m *Mock) MatchesVerified() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesVerified
}

func (m *Mock) MatchesDisputed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesDisputed
}

func (m *Mock) NotificationsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent
}

func (m *Mock) NotificationsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed
}

func (m *Mock) SweepRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepRuns
}
