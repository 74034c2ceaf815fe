package transpile

import (
	"errors"
	"fmt"

	"github.com/richinex/dnclgen/llm"
	"github.com/richinex/dnclgen/model"
)

// Stage names the step of Translate that failed.
type Stage string

const (
	StageNormalize   Stage = "normalize"
	StageLookup      Stage = "lookup"
	StageCredentials Stage = "credentials"
	StageModelCheck  Stage = "model check"
	StageCall        Stage = "call"
)

var (
	// ErrConfiguration covers missing credentials and unusable settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrStorage covers cache reads that fail or cannot be decoded.
	ErrStorage = errors.New("cache storage error")

	// ErrTransport is the completion client's transport failure.
	ErrTransport = llm.ErrTransport

	// ErrEmptySource is returned when there is no code to translate.
	ErrEmptySource = model.ErrEmptySource

	// ErrEmptyFile is returned when @file names an empty file.
	ErrEmptyFile = errors.New("file is empty")
)

// Error reports the stage at which a translation failed.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	return &Error{Stage: stage, Err: err}
}
