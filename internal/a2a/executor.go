package a2a

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	ctrl "sigs.k8s.io/controller-runtime"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/query"
	"github.com/arklabs/arkgw/internal/utils"
)

var executorLog = ctrl.Log.WithName("a2a_executor")

// EventSink receives task lifecycle events. Task subscribers from the task
// manager satisfy it.
type EventSink interface {
	Send(event protocol.StreamingMessageEvent) error
}

// Executor runs A2A tasks by driving Query records to completion. Active
// tasks are tracked so they can be canceled; a task is tracked only while its
// query is in flight.
type Executor struct {
	driver  *query.Driver
	timeout time.Duration

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewExecutor(driver *query.Driver, timeout time.Duration) *Executor {
	return &Executor{
		driver:  driver,
		timeout: timeout,
		active:  make(map[string]context.CancelFunc),
	}
}

// Timeout returns the execution deadline applied to every task.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// IsActive reports whether a task is currently in flight.
func (e *Executor) IsActive(taskID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.active[taskID]
	return ok
}

func (e *Executor) track(taskID string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active[taskID] = cancel
}

func (e *Executor) untrack(taskID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, taskID)
}

// takeCancel removes and returns the cancel func for a task, if tracked.
func (e *Executor) takeCancel(taskID string) (context.CancelFunc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cancel, ok := e.active[taskID]
	if ok {
		delete(e.active, taskID)
	}
	return cancel, ok
}

// Run executes a task's query synchronously and returns the response content.
// The task is cancelable through Cancel for the duration of the call; a
// canceled run returns context.Canceled.
func (e *Executor) Run(ctx context.Context, agentName, taskID, text string) (string, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.track(taskID, cancel)
	defer e.untrack(taskID)

	target := v1alpha1.QueryTarget{Type: v1alpha1.TargetTypeAgent, Name: agentName}
	return e.driver.PostQueryAndWait(runCtx, target, text, e.timeout)
}

// Execute runs a task and reports its lifecycle through the sink: a working
// status, then on resolution a result (or error) message followed by exactly
// one final status. A canceled task emits nothing here; Cancel owns its final
// event.
func (e *Executor) Execute(ctx context.Context, agentName string, message protocol.Message, taskID, contextID string, sink EventSink) {
	if contextID == "" {
		contextID = "default"
	}
	if taskID == "" {
		taskID = "unknown"
	}

	text := utils.ExtractText(message)
	if text == "" {
		text = "No message"
	}

	executorLog.Info("processing task", "taskID", taskID, "contextID", contextID, "agent", agentName, "timeout", e.timeout)

	e.send(sink, newStatusEvent(taskID, contextID, protocol.TaskStateWorking, false, ""))

	result, err := e.Run(ctx, agentName, taskID, text)
	if err != nil {
		e.handleError(err, taskID, contextID, sink)
		return
	}

	resultMsg := agentMessage(result, taskID, contextID)
	e.send(sink, protocol.StreamingMessageEvent{Result: &resultMsg})
	e.send(sink, newStatusEvent(taskID, contextID, protocol.TaskStateCompleted, true, ""))
	executorLog.Info("task completed", "taskID", taskID)
}

func (e *Executor) handleError(err error, taskID, contextID string, sink EventSink) {
	if errors.Is(err, context.Canceled) {
		// Cancel emits the canceled final event; anything more here would
		// give the task two finals.
		executorLog.Info("task canceled", "taskID", taskID)
		return
	}

	var timeoutErr *query.TimeoutError
	if errors.As(err, &timeoutErr) {
		executorLog.Error(err, "task timed out", "taskID", taskID)
		msg := agentMessage(fmt.Sprintf("Query timed out after %d seconds", timeoutErr.Seconds), taskID, contextID)
		e.send(sink, protocol.StreamingMessageEvent{Result: &msg})
		e.send(sink, newStatusEvent(taskID, contextID, protocol.TaskStateFailed, true,
			fmt.Sprintf("Query timeout after %ds", timeoutErr.Seconds)))
		return
	}

	executorLog.Error(err, "error processing task", "taskID", taskID)
	msg := agentMessage(fmt.Sprintf("Error: %s", err.Error()), taskID, contextID)
	e.send(sink, protocol.StreamingMessageEvent{Result: &msg})
	e.send(sink, newStatusEvent(taskID, contextID, protocol.TaskStateFailed, true, err.Error()))
}

// Cancel stops an in-flight task and emits its canceled final event. A task
// that is not active gets a log line and nothing else, so repeated cancels
// stay idempotent.
func (e *Executor) Cancel(taskID, contextID string, sink EventSink) bool {
	if taskID == "" {
		taskID = "unknown"
	}
	if contextID == "" {
		contextID = "default"
	}

	cancel, ok := e.takeCancel(taskID)
	if !ok {
		executorLog.Info("cancellation requested for inactive task", "taskID", taskID)
		return false
	}

	executorLog.Info("cancellation requested for active task", "taskID", taskID)
	cancel()
	e.send(sink, newStatusEvent(taskID, contextID, protocol.TaskStateCanceled, true, ""))
	return true
}

func (e *Executor) send(sink EventSink, event protocol.StreamingMessageEvent) {
	if err := sink.Send(event); err != nil {
		executorLog.Error(err, "failed to send task event")
	}
}

func agentMessage(text, taskID, contextID string) protocol.Message {
	return protocol.NewMessageWithContext(
		protocol.MessageRoleAgent,
		[]protocol.Part{protocol.NewTextPart(text)},
		&taskID,
		&contextID,
	)
}

func newStatusEvent(taskID, contextID string, state protocol.TaskState, final bool, errMsg string) protocol.StreamingMessageEvent {
	status := protocol.TaskStatus{
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if errMsg != "" && state == protocol.TaskStateFailed {
		msg := protocol.NewMessage(
			protocol.MessageRoleAgent,
			[]protocol.Part{protocol.NewTextPart(fmt.Sprintf("Task failed: %s", errMsg))},
		)
		status.Message = &msg
	}

	return protocol.StreamingMessageEvent{
		Result: &protocol.TaskStatusUpdateEvent{
			Kind:      protocol.KindTaskStatusUpdate,
			TaskID:    taskID,
			ContextID: contextID,
			Status:    status,
			Final:     final,
		},
	}
}
