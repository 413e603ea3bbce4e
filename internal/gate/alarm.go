package gate

import "time"

// AlarmPattern is a buzzer cadence: a number of open/close bursts with fixed
// on and off durations. Patterns differ only in count and timing so an
// operator can tell them apart by ear.
type AlarmPattern struct {
	Bursts int
	On     time.Duration
	Off    time.Duration
}

var (
	// PatternPolicyViolation signals a policy violation such as a double
	// entry attempt: 4 short bursts.
	PatternPolicyViolation = AlarmPattern{Bursts: 4, On: 300 * time.Millisecond, Off: 200 * time.Millisecond}

	// PatternNoRecord is the longest, loudest cadence, reserved for a vehicle
	// with no recognized record trying to leave: 5 long bursts.
	PatternNoRecord = AlarmPattern{Bursts: 5, On: 700 * time.Millisecond, Off: 200 * time.Millisecond}

	// PatternUnauthorized signals an exit attempt with an unpaid entry:
	// 3 medium bursts.
	PatternUnauthorized = AlarmPattern{Bursts: 3, On: 500 * time.Millisecond, Off: 300 * time.Millisecond}
)

// AlarmSignaler plays alarm patterns on the gate actuator.
type AlarmSignaler struct {
	actuator *Actuator
	sleeper  Sleeper
}

func NewAlarmSignaler(actuator *Actuator, sleeper Sleeper) *AlarmSignaler {
	if sleeper == nil {
		sleeper = RealSleeper()
	}
	return &AlarmSignaler{actuator: actuator, sleeper: sleeper}
}

// Signal plays one pattern to completion. The gate ends closed.
func (s *AlarmSignaler) Signal(pattern AlarmPattern) error {
	for i := 0; i < pattern.Bursts; i++ {
		if err := s.actuator.Open(); err != nil {
			return err
		}
		s.sleeper.Sleep(pattern.On)
		if err := s.actuator.Close(); err != nil {
			return err
		}
		s.sleeper.Sleep(pattern.Off)
	}
	return nil
}
