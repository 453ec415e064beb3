package upload

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusPrepared  Status = "prepared"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is the record that flows through the stages. Each stage receives a
// copy and returns the next value.
type State struct {
	Request

	RunID   string
	Status  Status
	Err     *Error
	VideoID string

	service VideoService
	payload *Payload
}

func newState(runID string, req Request) State {
	return State{
		Request: req.withDefaults(),
		RunID:   runID,
		Status:  StatusPending,
	}
}

func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

func (s State) URL() string {
	if s.Status != StatusCompleted || s.VideoID == "" {
		return ""
	}
	return fmt.Sprintf("https://youtube.com/watch?v=%s", s.VideoID)
}

func (s State) fail(err *Error) State {
	s.Status = StatusFailed
	s.Err = err
	s.service = nil
	s.payload = nil
	return s
}
