package types

import "fmt"

// DataSourceError wraps a failure of a persistence-layer read or write.
// Task pipelines convert it into failure metadata; context detection lets it
// propagate and abort the turn.
type DataSourceError struct {
	Source string // which store failed, e.g. "activity", "playlist", "checkpoint"
	Op     string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// NewDataSourceError wraps err with its originating source and operation.
func NewDataSourceError(source, op string, err error) *DataSourceError {
	return &DataSourceError{Source: source, Op: op, Err: err}
}

// ModelServiceError wraps a generative-model call that failed outright or
// returned output violating the declared schema.
type ModelServiceError struct {
	Task string // pipeline or chain name
	Err  error
}

func (e *ModelServiceError) Error() string {
	return fmt.Sprintf("model service (%s): %v", e.Task, e.Err)
}

func (e *ModelServiceError) Unwrap() error { return e.Err }

// NewModelServiceError wraps err with the chain that issued the call.
func NewModelServiceError(task string, err error) *ModelServiceError {
	return &ModelServiceError{Task: task, Err: err}
}
