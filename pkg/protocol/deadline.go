package protocol

import "time"

// writeControlDeadline bounds how long a control-frame write (PONG,
// CLOSE) may block.
const writeControlDeadline = 2 * time.Second

func deadlineNow() time.Time {
	return time.Now().Add(writeControlDeadline)
}
