//go:build linux

// internal/i2c/ioctl_linux.go

package i2c

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux/i2c-dev.h, linux/i2c.h
const (
	ioctlI2CSlave = 0x0703
	ioctlI2CRdwr  = 0x0707

	msgFlagRead = 0x0001 // I2C_M_RD
	msgFlagTen  = 0x0010 // I2C_M_TEN
)

// i2cMsg mirrors struct i2c_msg.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   *byte
}

// i2cRdwrData mirrors struct i2c_rdwr_ioctl_data.
type i2cRdwrData struct {
	msgs  *i2cMsg
	nmsgs uint32
}

func addrFlags(addr uint16) uint16 {
	if addr > 0x7f {
		return msgFlagTen
	}
	return 0
}

// rdwr runs one I2C_RDWR transaction carrying a single message.
func rdwr(fd int, addr uint16, flags uint16, buf []byte) Status {
	if len(buf) == 0 || len(buf) > 0xffff {
		return StatusInvalid
	}
	msg := i2cMsg{
		addr:  addr,
		flags: flags | addrFlags(addr),
		len:   uint16(len(buf)),
		buf:   &buf[0],
	}
	data := i2cRdwrData{msgs: &msg, nmsgs: 1}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(ioctlI2CRdwr), uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(&msg)
	runtime.KeepAlive(buf)
	if errno != 0 {
		return statusFromErr(errno)
	}
	return StatusOK
}

func ioctlWrite(fd int, addr uint16, data []byte) Status {
	return rdwr(fd, addr, 0, data)
}

func ioctlRead(fd int, addr uint16, bytewise bool, buf []byte) Status {
	if !bytewise {
		return rdwr(fd, addr, msgFlagRead, buf)
	}
	for i := range buf {
		if rc := rdwr(fd, addr, msgFlagRead, buf[i:i+1]); rc != StatusOK {
			return rc
		}
	}
	return StatusOK
}
