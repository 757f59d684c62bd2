package tracing

import (
	"sync"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/tebeka/atexit"
)

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	StartTick uint64
	EndTick   uint64
}

type stepTableEntry struct {
	TaskID string
	Tick   uint64
	What   string
	Detail string
}

// DBTracer is a tracer that stores the completed tasks and their steps into a
// DataRecorder.
type DBTracer struct {
	mu           sync.Mutex
	timeTeller   TimeTeller
	backend      datarecording.DataRecorder
	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer. It creates the trace and trace_steps
// tables in the recorder.
func NewDBTracer(
	timeTeller TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable("trace", taskTableEntry{})
	dataRecorder.CreateTable("trace_steps", stepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTick = t.timeTeller.CurrentTick()
	t.tracingTasks[task.ID] = task
}

// StepTask records a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tracingTasks[task.ID]; !ok {
		return
	}

	step := task.Steps[0]
	t.backend.InsertData("trace_steps", stepTableEntry{
		TaskID: task.ID,
		Tick:   t.timeTeller.CurrentTick(),
		What:   step.What,
		Detail: step.Detail,
	})
}

// EndTask records the task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	t.backend.InsertData("trace", taskTableEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Where,
		StartTick: originalTask.StartTick,
		EndTick:   t.timeTeller.CurrentTick(),
	})

	delete(t.tracingTasks, task.ID)
}

// Terminate drops unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}
