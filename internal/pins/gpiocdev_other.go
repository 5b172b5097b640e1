//go:build !linux

package pins

import "errors"

// NewChipDriver is only available on Linux.
func NewChipDriver(_ string) (Driver, int, error) {
	return nil, 0, errors.New("gpio character device requires linux")
}
