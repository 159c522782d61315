package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrShortRead reports that the stream ended before a fixed-width value
	// was fully read.
	ErrShortRead = errors.New("codec: short read")
	// ErrCorrupt reports a length prefix or field value that cannot be valid.
	ErrCorrupt = errors.New("codec: corrupt data")
)

// ContractViolation is the panic value raised when a stream operation is not
// permitted in the stream's current mode.
type ContractViolation struct {
	Op   string
	Mode Mode
	Name string
}

func (v *ContractViolation) Error() string {
	if v.Name != "" {
		return fmt.Sprintf("codec: %s not permitted on %s stream %q", v.Op, v.Mode, v.Name)
	}
	return fmt.Sprintf("codec: %s not permitted on %s stream", v.Op, v.Mode)
}
