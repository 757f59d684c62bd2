package tracing

// A TaskStep represents a milestone in the processing of task.
type TaskStep struct {
	Tick   uint64 `json:"tick"`
	What   string `json:"what"`
	Detail string `json:"detail"`
}

// A Task is a unit of work done by a component, such as one translation.
type Task struct {
	ID        string      `json:"id"`
	ParentID  string      `json:"parent_id"`
	Kind      string      `json:"kind"`
	What      string      `json:"what"`
	Where     string      `json:"where"`
	StartTick uint64      `json:"start_tick"`
	EndTick   uint64      `json:"end_tick"`
	Steps     []TaskStep  `json:"steps"`
	Detail    interface{} `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// A TimeTeller can tell the current tick of a component.
type TimeTeller interface {
	CurrentTick() uint64
}
