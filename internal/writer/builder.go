// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/ddcpacer/internal/config"
	wmodbus "github.com/tamzrod/ddcpacer/internal/writer/modbus"
)

// BuildPlan converts one display config into a Writer Plan.
// Assumes config has already passed validation.
func BuildPlan(d cfg.DisplayConfig, sm cfg.StatusMemoryConfig) (Plan, error) {
	if d.ID == "" {
		return Plan{}, errors.New("writer: display.id required")
	}

	plan := Plan{DisplayID: d.ID}

	for _, t := range d.Targets {
		plan.Targets = append(plan.Targets, Target{
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Address:  t.Address,
		})
	}

	if d.StatusSlot != nil {
		plan.Status = &StatusPlan{
			Endpoint:   sm.Endpoint,
			UnitID:     sm.UnitID,
			BaseSlot:   *d.StatusSlot,
			DeviceName: d.DeviceName,
		}
	}

	return plan, nil
}

// BuildEndpointClients creates one TCP client per unique endpoint used by the display.
// The longest configured timeout wins when an endpoint appears twice.
func BuildEndpointClients(d cfg.DisplayConfig, sm cfg.StatusMemoryConfig) (map[string]endpointClient, func() error, error) {
	timeouts := map[string]int{}
	for _, t := range d.Targets {
		if t.TimeoutMs > timeouts[t.Endpoint] {
			timeouts[t.Endpoint] = t.TimeoutMs
		}
	}
	if d.StatusSlot != nil && sm.TimeoutMs >= timeouts[sm.Endpoint] {
		timeouts[sm.Endpoint] = sm.TimeoutMs
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	for endpoint, ms := range timeouts {
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  time.Duration(ms) * time.Millisecond,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
