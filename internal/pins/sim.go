package pins

import (
	"fmt"
	"sync"
)

// Sim is an in-memory Driver. Input levels are set from outside with Set,
// which stands in for the external switch or relay.
type Sim struct {
	mu      sync.Mutex
	levels  map[int]bool
	claimed map[int]Mode
}

// NewSim creates a simulated line driver with every line low.
func NewSim() *Sim {
	return &Sim{
		levels:  make(map[int]bool),
		claimed: make(map[int]Mode),
	}
}

// Set forces the level seen on a line.
func (s *Sim) Set(pin int, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[pin] = high
}

// Level returns the level of a line regardless of claim state.
func (s *Sim) Level(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[pin]
}

// Claimed reports whether a line is currently claimed.
func (s *Sim) Claimed(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.claimed[pin]
	return ok
}

func (s *Sim) Claim(pin int, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[pin]; ok {
		return fmt.Errorf("line %d busy", pin)
	}
	s.claimed[pin] = mode
	if mode == Output {
		s.levels[pin] = false
	}
	return nil
}

func (s *Sim) Release(pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[pin]; !ok {
		return fmt.Errorf("line %d not claimed", pin)
	}
	delete(s.claimed, pin)
	return nil
}

func (s *Sim) Read(pin int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[pin]; !ok {
		return false, fmt.Errorf("line %d not claimed", pin)
	}
	return s.levels[pin], nil
}

func (s *Sim) Write(pin int, high bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mode, ok := s.claimed[pin]
	if !ok || mode != Output {
		return fmt.Errorf("line %d not claimed as output", pin)
	}
	s.levels[pin] = high
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimed = make(map[int]Mode)
	return nil
}
