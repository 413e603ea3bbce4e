package gate

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	written []byte
	lines   []string
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) ReadLine() (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *fakePort) Close() error { return nil }

type fakeSleeper struct {
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

func TestActuator_OpenFor(t *testing.T) {
	port := &fakePort{}
	sleeper := &fakeSleeper{}
	a := NewActuator(port, sleeper)

	require.NoError(t, a.OpenFor(15*time.Second))

	assert.Equal(t, []byte("10"), port.written)
	assert.Equal(t, []time.Duration{15 * time.Second}, sleeper.slept)
}

func TestActuator_ReadDistance(t *testing.T) {
	port := &fakePort{lines: []string{"42.5", "noise", ""}}
	a := NewActuator(port, &fakeSleeper{})

	d, ok := a.ReadDistance()
	require.True(t, ok)
	assert.Equal(t, 42.5, d)

	_, ok = a.ReadDistance()
	assert.False(t, ok)

	_, ok = a.ReadDistance()
	assert.False(t, ok)
}

func TestAlarmSignaler_PolicyViolationCadence(t *testing.T) {
	port := &fakePort{}
	sleeper := &fakeSleeper{}
	signaler := NewAlarmSignaler(NewActuator(port, sleeper), sleeper)

	require.NoError(t, signaler.Signal(PatternPolicyViolation))

	// 4 bursts: open/close pairs, 300ms on / 200ms off.
	assert.Equal(t, []byte("10101010"), port.written)
	require.Len(t, sleeper.slept, 8)
	for i := 0; i < len(sleeper.slept); i += 2 {
		assert.Equal(t, 300*time.Millisecond, sleeper.slept[i])
		assert.Equal(t, 200*time.Millisecond, sleeper.slept[i+1])
	}
}

func TestAlarmSignaler_PatternsAreDistinguishable(t *testing.T) {
	// An operator tells the cadences apart by burst count alone.
	assert.Equal(t, 4, PatternPolicyViolation.Bursts)
	assert.Equal(t, 5, PatternNoRecord.Bursts)
	assert.Equal(t, 3, PatternUnauthorized.Bursts)

	assert.Equal(t, 700*time.Millisecond, PatternNoRecord.On)
	assert.Equal(t, 500*time.Millisecond, PatternUnauthorized.On)
}
