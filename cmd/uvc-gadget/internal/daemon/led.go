package daemon

import "go.uber.org/zap"

// startupBlinker returns a Loop.OnIteration hook that logs one blink per
// call until count blinks have been logged, then goes quiet. Real GPIO
// toggling is out of this repository's core (spec.md §1 lists status-LED
// blinking as an external collaborator specified only at its CLI
// interface); this hook is the seam a deployment wires a GPIO driver
// into in place of the log line.
func startupBlinker(count int, log *zap.Logger) func() {
	remaining := count
	return func() {
		if remaining <= 0 {
			return
		}
		log.Info("status led blink", zap.Int("remaining", remaining))
		remaining--
	}
}
