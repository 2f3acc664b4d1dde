package core

// Status describes the lifecycle state of an agent execution. State is
// overwritten around each invocation: idle or a previous terminal
// state moves to running, then to success or error.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	// StatusWaiting is reserved for skills that suspend on external
	// input. No current operation sets it.
	StatusWaiting Status = "waiting"
)
