// Package query drives Query records through their lifecycle: create, poll
// until a terminal phase, extract results.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/metrics"
	"github.com/arklabs/arkgw/internal/registry"
)

const (
	// TaskNamePrefix names queries created for A2A tasks.
	TaskNamePrefix = "a2agw-query-"
	// CompletionNamePrefix names queries created for OpenAI chat completions.
	CompletionNamePrefix = "openai-query-"
)

// NewName returns a fresh query name under the given prefix. The 8 hex chars
// of entropy keep collisions out of reach for gateway-scale workloads.
func NewName(prefix string) string {
	return prefix + uuid.NewString()[:8]
}

// TimeoutError reports that a query did not reach a terminal phase within the
// polling window.
type TimeoutError struct {
	Seconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Query timeout after %d seconds", e.Seconds)
}

// TargetError is one target's failure within a query that ended in the error
// phase.
type TargetError struct {
	Target  v1alpha1.QueryTarget `json:"target"`
	Message string               `json:"message"`
}

// ExecutionError carries the structured failure detail of a query in the
// error phase. Errors is populated only when more than one target reported a
// failure.
type ExecutionError struct {
	Message string        `json:"message"`
	Errors  []TargetError `json:"errors"`
}

func (e *ExecutionError) Error() string {
	return e.Message
}

// executionErrorFromStatus mirrors how the query controller records failures:
// each failing target's error lands in its response content, with
// status.message as a coarser fallback.
func executionErrorFromStatus(status *v1alpha1.QueryStatus) *ExecutionError {
	var targetErrors []TargetError
	for _, resp := range status.Responses {
		if resp.Content != "" {
			targetErrors = append(targetErrors, TargetError{Target: resp.Target, Message: resp.Content})
		}
	}

	out := &ExecutionError{Errors: []TargetError{}}
	switch {
	case len(targetErrors) > 0:
		out.Message = targetErrors[0].Message
	case status.Message != "":
		out.Message = status.Message
	default:
		out.Message = "Query execution failed: No error details available"
	}
	if len(targetErrors) > 1 {
		out.Errors = targetErrors
	}
	return out
}

// Driver creates queries and polls them to completion.
type Driver struct {
	reg *registry.Registry

	// PollInterval paces WaitForQuery. Defaults to 1s.
	PollInterval time.Duration
	// CompletionInterval and CompletionAttempts pace WaitForCompletion.
	// Defaults give the 5 minute window OpenAI clients expect.
	CompletionInterval time.Duration
	CompletionAttempts int
}

func NewDriver(reg *registry.Registry) *Driver {
	return &Driver{
		reg:                reg,
		PollInterval:       time.Second,
		CompletionInterval: 5 * time.Second,
		CompletionAttempts: 60,
	}
}

// PostQuery creates a query against a single target and returns its name.
func (d *Driver) PostQuery(ctx context.Context, target v1alpha1.QueryTarget, input string, timeout time.Duration) (string, error) {
	log := ctrllog.FromContext(ctx).WithName("query-driver")

	q := &v1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: NewName(TaskNamePrefix)},
		Spec: v1alpha1.QuerySpec{
			Targets: []v1alpha1.QueryTarget{target},
			Timeout: &metav1.Duration{Duration: timeout},
		},
	}
	if err := q.Spec.SetInputString(input); err != nil {
		return "", err
	}

	log.Info("creating query", "query", q.Name, "targetType", target.Type, "target", target.Name)
	if err := d.reg.CreateQuery(ctx, q); err != nil {
		return "", err
	}
	metrics.QueriesCreated.WithLabelValues("a2a").Inc()
	return q.Name, nil
}

// WaitForQuery polls a query once a second until it is done, failed, or the
// timeout elapses. On success it returns the first response's content.
func (d *Driver) WaitForQuery(ctx context.Context, queryName string, timeout time.Duration) (string, error) {
	log := ctrllog.FromContext(ctx).WithName("query-driver")
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		q, err := d.reg.GetQuery(ctx, queryName)
		if err != nil {
			return "", err
		}

		phase := q.Status.Phase
		log.V(1).Info("polled query", "query", queryName, "phase", phase)

		switch phase {
		case v1alpha1.QueryPhaseDone:
			if len(q.Status.Responses) > 0 {
				if content := q.Status.Responses[0].Content; content != "" {
					return content, nil
				}
				return "No response content", nil
			}
			return "Query completed but no response available", nil
		case v1alpha1.QueryPhaseError:
			errMsg := "Query failed"
			if len(q.Status.Responses) > 0 && q.Status.Responses[0].Content != "" {
				errMsg = q.Status.Responses[0].Content
			}
			return "", fmt.Errorf("Query error: %s", errMsg)
		case v1alpha1.QueryPhaseCanceled:
			return "", context.Canceled
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(d.PollInterval):
		}
	}

	return "", &TimeoutError{Seconds: int(timeout.Seconds())}
}

// PostQueryAndWait creates a query and blocks until it resolves.
func (d *Driver) PostQueryAndWait(ctx context.Context, target v1alpha1.QueryTarget, input string, timeout time.Duration) (string, error) {
	queryName, err := d.PostQuery(ctx, target, input, timeout)
	if err != nil {
		return "", err
	}
	return d.WaitForQuery(ctx, queryName, timeout)
}

// WaitForCompletion polls a query on the slower completion cadence and
// returns the full record once done. Error-phase queries surface as
// *ExecutionError, exhaustion of the window as *TimeoutError.
func (d *Driver) WaitForCompletion(ctx context.Context, queryName string) (*v1alpha1.Query, error) {
	log := ctrllog.FromContext(ctx).WithName("query-driver")

	for attempt := 1; attempt <= d.CompletionAttempts; attempt++ {
		q, err := d.reg.GetQuery(ctx, queryName)
		if err != nil {
			return nil, err
		}

		phase := q.Status.Phase
		if phase == "" {
			phase = v1alpha1.QueryPhasePending
		}
		log.Info("polled query", "query", queryName, "phase", phase, "attempt", fmt.Sprintf("%d/%d", attempt, d.CompletionAttempts))

		switch phase {
		case v1alpha1.QueryPhaseDone:
			return q, nil
		case v1alpha1.QueryPhaseError:
			return nil, executionErrorFromStatus(&q.Status)
		}

		if attempt < d.CompletionAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.CompletionInterval):
			}
		}
	}

	window := time.Duration(d.CompletionAttempts) * d.CompletionInterval
	return nil, &TimeoutError{Seconds: int(window.Seconds())}
}
