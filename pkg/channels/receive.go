package channels

import "time"

// ReceiveAll collects messages from ch until it is closed, nothing arrives
// for idle, or limit messages were read (limit <= 0 means no limit).
func ReceiveAll[T any](ch <-chan T, idle time.Duration, limit int) []T {
	var out []T

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for limit <= 0 || len(out) < limit {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)

			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(idle)
		case <-timer.C:
			return out
		}
	}

	return out
}
