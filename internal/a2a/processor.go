package a2a

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/utils/ptr"
	ctrl "sigs.k8s.io/controller-runtime"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/arklabs/arkgw/internal/query"
	"github.com/arklabs/arkgw/internal/utils"
)

var processorLog = ctrl.Log.WithName("a2a_processor")

// messageProcessor adapts the executor to the task manager's processing
// contract for one agent.
type messageProcessor struct {
	agentName string
	executor  *Executor
}

var _ taskmanager.MessageProcessor = &messageProcessor{}

// NewMessageProcessor returns the processor backing a single agent's A2A
// endpoint.
func NewMessageProcessor(agentName string, executor *Executor) taskmanager.MessageProcessor {
	return &messageProcessor{agentName: agentName, executor: executor}
}

func (p *messageProcessor) ProcessMessage(
	ctx context.Context,
	message protocol.Message,
	options taskmanager.ProcessOptions,
	handle taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {

	text := utils.ExtractText(message)
	if text == "" {
		text = "No message"
	}

	taskID, err := handle.BuildTask(message.TaskID, message.ContextID)
	if err != nil {
		return nil, err
	}

	contextID := ""
	if message.ContextID != nil {
		contextID = *message.ContextID
	}

	processorLog.Info("processing message", "agent", p.agentName, "taskID", taskID, "contextID", contextID)

	if !options.Streaming {
		defer handle.CleanTask(&taskID)

		if err := handle.UpdateTaskState(&taskID, protocol.TaskStateWorking, &message); err != nil {
			processorLog.Error(err, "failed to update task state to working")
		}

		result, err := p.executor.Run(ctx, p.agentName, taskID, text)
		if err != nil {
			if updErr := handle.UpdateTaskState(&taskID, protocol.TaskStateFailed, &message); updErr != nil {
				processorLog.Error(updErr, "failed to update task state to failed")
			}
			responseMessage := agentMessage(errorText(err), taskID, contextID)
			return &taskmanager.MessageProcessingResult{
				Result: &responseMessage,
			}, nil
		}

		if err := handle.UpdateTaskState(&taskID, protocol.TaskStateCompleted, &message); err != nil {
			processorLog.Error(err, "failed to update task state to completed")
		}

		responseMessage := agentMessage(result, taskID, contextID)
		return &taskmanager.MessageProcessingResult{
			Result: &responseMessage,
		}, nil
	}

	taskSubscriber, err := handle.SubscribeTask(ptr.To(taskID))
	if err != nil {
		return nil, err
	}

	go func() {
		defer handle.CleanTask(&taskID)
		p.executor.Execute(ctx, p.agentName, message, taskID, contextID, taskSubscriber)
	}()

	return &taskmanager.MessageProcessingResult{
		StreamingEvents: taskSubscriber,
	}, nil
}

// errorText renders a run error the way clients see it in message parts.
func errorText(err error) string {
	var timeoutErr *query.TimeoutError
	if errors.As(err, &timeoutErr) {
		return fmt.Sprintf("Query timed out after %d seconds", timeoutErr.Seconds)
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
