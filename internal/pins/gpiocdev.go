//go:build linux

package pins

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

const consumerName = "multistrip"

// chipDriver implements Driver on the Linux GPIO character device.
type chipDriver struct {
	chip  string
	mu    sync.Mutex
	lines map[int]*gpiocdev.Line
}

// NewChipDriver opens the named chip (e.g. "gpiochip0") and returns a
// driver for its lines along with the number of lines it exposes.
func NewChipDriver(chip string) (Driver, int, error) {
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer(consumerName))
	if err != nil {
		return nil, 0, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}
	numLines := c.Lines()
	if err := c.Close(); err != nil {
		return nil, 0, fmt.Errorf("close gpio chip %s: %w", chip, err)
	}

	return &chipDriver{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, numLines, nil
}

func (d *chipDriver) Claim(pin int, mode Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.lines[pin]; ok {
		return fmt.Errorf("line %s:%d already requested", d.chip, pin)
	}

	var dir gpiocdev.LineReqOption = gpiocdev.AsInput
	if mode == Output {
		dir = gpiocdev.AsOutput(0)
	}
	l, err := gpiocdev.RequestLine(d.chip, pin, dir, gpiocdev.WithConsumer(consumerName))
	if err != nil {
		return fmt.Errorf("request line %s:%d: %w", d.chip, pin, err)
	}
	d.lines[pin] = l
	return nil
}

func (d *chipDriver) Release(pin int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.lines[pin]
	if !ok {
		return nil
	}
	delete(d.lines, pin)
	return l.Close()
}

func (d *chipDriver) Read(pin int) (bool, error) {
	d.mu.Lock()
	l, ok := d.lines[pin]
	d.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("line %s:%d not requested", d.chip, pin)
	}

	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("read line %s:%d: %w", d.chip, pin, err)
	}
	return v == 1, nil
}

func (d *chipDriver) Write(pin int, high bool) error {
	d.mu.Lock()
	l, ok := d.lines[pin]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("line %s:%d not requested", d.chip, pin)
	}

	v := 0
	if high {
		v = 1
	}
	return l.SetValue(v)
}

func (d *chipDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for pin, l := range d.lines {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close line %s:%d: %w", d.chip, pin, err)
		}
	}
	d.lines = make(map[int]*gpiocdev.Line)
	return firstErr
}
