// Package trace provides a tracer that logs the translations of an MMU and a
// reader for memory access traces.
package trace

import (
	"log"

	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/tracing"
)

// A tracer can record the actions of an MMU into a log.
type tracer struct {
	sim.LogHookBase

	timeTeller tracing.TimeTeller
}

// NewTracer creates a new Tracer that writes one line per task start, step,
// and task end.
func NewTracer(logger *log.Logger, timeTeller tracing.TimeTeller) tracing.Tracer {
	t := new(tracer)
	t.Logger = logger
	t.timeTeller = timeTeller

	return t
}

// StartTask marks the start of a task. A task carrying a uint64 detail is
// logged with it as the virtual address.
func (t *tracer) StartTask(task tracing.Task) {
	vAddr, ok := task.Detail.(uint64)
	if !ok {
		t.Printf("start, %d, %s, %s, %s\n",
			t.timeTeller.CurrentTick(), task.Where, task.ID, task.What)
		return
	}

	t.Printf(
		"start, %d, %s, %s, %s, 0x%x\n",
		t.timeTeller.CurrentTick(),
		task.Where,
		task.ID,
		task.What,
		vAddr,
	)
}

// StepTask marks that the task has reached a step.
func (t *tracer) StepTask(task tracing.Task) {
	step := task.Steps[0]

	if step.Detail == "" {
		t.Printf("step, %d, %s, %s\n",
			t.timeTeller.CurrentTick(), task.ID, step.What)
		return
	}

	t.Printf("step, %d, %s, %s, %s\n",
		t.timeTeller.CurrentTick(), task.ID, step.What, step.Detail)
}

// EndTask marks the end of a task.
func (t *tracer) EndTask(task tracing.Task) {
	t.Printf("end, %d, %s\n", t.timeTeller.CurrentTick(), task.ID)
}
