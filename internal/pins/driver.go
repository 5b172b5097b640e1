package pins

// Mode is the direction a line is claimed in.
type Mode int

// Line directions.
const (
	Input Mode = iota
	Output
)

func (m Mode) String() string {
	if m == Output {
		return "output"
	}
	return "input"
}

// Driver abstracts GPIO line access across backends.
// Implementations handle the hardware side; ownership bookkeeping lives in Manager.
type Driver interface {
	// Claim requests exclusive use of a line in the given direction.
	// Output lines start low.
	Claim(pin int, mode Mode) error

	// Release returns a claimed line to the system.
	Release(pin int) error

	// Read returns the current logical level of a claimed line.
	Read(pin int) (bool, error)

	// Write drives a claimed output line.
	Write(pin int, high bool) error

	// Close releases every line still held.
	Close() error
}
