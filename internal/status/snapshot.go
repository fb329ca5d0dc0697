// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health            uint16
	LastStatusCode    uint16
	SecondsInError    uint16
	MultiplierCount   uint16
	AdjustmentPercent uint16
}
