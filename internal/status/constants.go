// internal/status/constants.go
package status

// Display Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per display.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the display health state.
const SlotHealthCode = 0

// SlotLastStatusCode holds the magnitude of the last failing status
// (errno or DDC-range code). 0 after a clean cycle.
const SlotLastStatusCode = 1

// SlotSecondsInError holds the duration (in seconds) the display has been in error.
const SlotSecondsInError = 2

// SlotMultiplierCount holds the retry multiplier of the display's session.
const SlotMultiplierCount = 3

// SlotAdjustmentPercent holds the dynamic adjustment factor x100.
const SlotAdjustmentPercent = 4

// ---- RESERVED RANGE ----

// Slots 5-10 are reserved for future use.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0 // boot, no cycle yet
	HealthOK       uint16 = 1
	HealthError    uint16 = 2
	HealthStale    uint16 = 3
	HealthDisabled uint16 = 4
)
