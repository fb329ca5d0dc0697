//go:build !linux

// internal/i2c/executor_other.go

package i2c

// /dev/i2c-* is Linux only.

func ioctlWrite(int, uint16, []byte) Status { return StatusNoSys }

func ioctlRead(int, uint16, bool, []byte) Status { return StatusNoSys }

func fileioWrite(int, uint16, []byte) Status { return StatusNoSys }

func fileioRead(int, uint16, bool, []byte) Status { return StatusNoSys }
