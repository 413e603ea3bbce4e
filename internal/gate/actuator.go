package gate

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Single-byte commands understood by the gate controller. The same byte pair
// drives both the barrier and the buzzer; alarm patterns are just fast
// open/close bursts.
const (
	cmdOpen  = '1'
	cmdClose = '0'
)

// Port is the slice of the serial link the actuator needs. The controller
// board also streams ultrasonic distance readings on the same line.
type Port interface {
	Write(p []byte) (int, error)
	ReadLine() (string, error)
	Close() error
}

// Sleeper lets timing-sensitive command sequences run without real delays in
// tests.
type Sleeper interface {
	Sleep(d time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// RealSleeper returns a Sleeper backed by time.Sleep.
func RealSleeper() Sleeper { return realSleeper{} }

type serialPort struct {
	port   serial.Port
	reader *bufio.Reader
}

// OpenPort opens the gate controller's serial device. Commands are
// fire-and-forget; the controller does not acknowledge them.
func OpenPort(device string, baud int) (Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open gate port %s: %w", device, err)
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("set gate read timeout: %w", err)
	}
	return &serialPort{port: port, reader: bufio.NewReader(port)}, nil
}

func (p *serialPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *serialPort) ReadLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *serialPort) Close() error {
	return p.port.Close()
}

// Actuator drives the barrier over its serial link.
type Actuator struct {
	port    Port
	sleeper Sleeper
}

func NewActuator(port Port, sleeper Sleeper) *Actuator {
	if sleeper == nil {
		sleeper = RealSleeper()
	}
	return &Actuator{port: port, sleeper: sleeper}
}

func (a *Actuator) Open() error {
	_, err := a.port.Write([]byte{cmdOpen})
	return err
}

func (a *Actuator) Close() error {
	_, err := a.port.Write([]byte{cmdClose})
	return err
}

// OpenFor opens the barrier, holds it for the dwell time and closes it again.
func (a *Actuator) OpenFor(dwell time.Duration) error {
	if err := a.Open(); err != nil {
		return err
	}
	a.sleeper.Sleep(dwell)
	return a.Close()
}

// ReadDistance parses one ultrasonic reading from the controller. ok=false
// means the line was empty or not a number; the caller treats that as a
// missed sample, not an error.
func (a *Actuator) ReadDistance() (float64, bool) {
	line, err := a.port.ReadLine()
	if err != nil || line == "" {
		return 0, false
	}
	distance, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, false
	}
	return distance, true
}
