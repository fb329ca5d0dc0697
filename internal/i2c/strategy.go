// internal/i2c/strategy.go
package i2c

import "fmt"

// StrategyID identifies one low-level bus implementation.
type StrategyID int

const (
	// StrategyIoctl uses ioctl(I2C_RDWR). Default.
	StrategyIoctl StrategyID = iota
	// StrategyFileIO binds the slave with ioctl(I2C_SLAVE) and uses write(2)/read(2).
	StrategyFileIO
)

func (id StrategyID) String() string {
	switch id {
	case StrategyIoctl:
		return "ioctl"
	case StrategyFileIO:
		return "fileio"
	default:
		return fmt.Sprintf("strategy(%d)", int(id))
	}
}

// ParseStrategy maps a config name to a StrategyID.
func ParseStrategy(name string) (StrategyID, error) {
	switch name {
	case "", "ioctl":
		return StrategyIoctl, nil
	case "fileio":
		return StrategyFileIO, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// WriteFunc performs a single bus write of data to addr.
// Returns StatusOK or a negative Status.
type WriteFunc func(fd int, addr uint16, data []byte) Status

// ReadFunc fills buf from addr, one transaction per byte if bytewise.
// Returns StatusOK or a negative Status.
type ReadFunc func(fd int, addr uint16, bytewise bool, buf []byte) Status

// Strategy describes one selectable implementation.
type Strategy struct {
	ID         StrategyID
	Write      WriteFunc
	Read       ReadFunc
	WriterName string
	ReaderName string
}

// IoctlStrategy is the built-in I2C_RDWR strategy.
var IoctlStrategy = Strategy{
	ID:         StrategyIoctl,
	Write:      ioctlWrite,
	Read:       ioctlRead,
	WriterName: "ioctl_writer",
	ReaderName: "ioctl_reader",
}

// FileIOStrategy is the built-in write(2)/read(2) strategy.
var FileIOStrategy = Strategy{
	ID:         StrategyFileIO,
	Write:      fileioWrite,
	Read:       fileioRead,
	WriterName: "fileio_writer",
	ReaderName: "fileio_reader",
}

// BuiltinStrategies is the closed set a default Dispatcher knows.
func BuiltinStrategies() []Strategy {
	return []Strategy{IoctlStrategy, FileIOStrategy}
}
