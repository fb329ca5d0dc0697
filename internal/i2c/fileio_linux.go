//go:build linux

// internal/i2c/fileio_linux.go

package i2c

import "golang.org/x/sys/unix"

func bindSlave(fd int, addr uint16) Status {
	return statusFromErr(unix.IoctlSetInt(fd, ioctlI2CSlave, int(addr)))
}

func fileioWrite(fd int, addr uint16, data []byte) Status {
	if rc := bindSlave(fd, addr); rc != StatusOK {
		return rc
	}
	n, err := unix.Write(fd, data)
	if err != nil {
		return statusFromErr(err)
	}
	if n != len(data) {
		return StatusShortWrite
	}
	return StatusOK
}

func fileioRead(fd int, addr uint16, bytewise bool, buf []byte) Status {
	if rc := bindSlave(fd, addr); rc != StatusOK {
		return rc
	}
	if !bytewise {
		return readFull(fd, buf)
	}
	for i := range buf {
		if rc := readFull(fd, buf[i:i+1]); rc != StatusOK {
			return rc
		}
	}
	return StatusOK
}

func readFull(fd int, buf []byte) Status {
	n, err := unix.Read(fd, buf)
	if err != nil {
		return statusFromErr(err)
	}
	if n != len(buf) {
		return StatusShortRead
	}
	return StatusOK
}
