package shared

import "time"

// Clock abstracts time so handlers and entities can be tested against a
// controllable timeline.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock reads the system clock.
type RealClock struct{}

// NewRealClock creates a RealClock instance.
func NewRealClock() Clock {
	return RealClock{}
}

// Now returns the current system time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for the given duration.
func (RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// MockClock is a Clock whose time only moves when the test says so.
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a MockClock starting at the given time.
// A zero start defaults to the current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &MockClock{CurrentTime: start}
}

// Now returns the mock's current time.
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Sleep advances the mock clock instead of blocking.
func (m *MockClock) Sleep(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime pins the mock clock to a specific instant.
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}
