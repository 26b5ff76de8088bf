package apperr

import (
	"errors"
	"fmt"
)

const (
	MetaReason    = "reason"
	MetaStage     = "stage"
	MetaField     = "field"
	MetaSessionID = "session_id"
	MetaTurnID    = "turn_id"
	MetaTool      = "tool"
	MetaSelector  = "selector"
	MetaURL       = "url"
	MetaStep      = "step"

	StageLaunch      = "launch"
	StageBrowser     = "browser"
	StageAI          = "ai"
	StageTool        = "tool"
	StageScreenshot  = "screenshot"
	StageNavigation  = "navigation"
	StageInteraction = "interaction"
	StageDiscovery   = "discovery"
	StageProtocol    = "protocol"
	StageTurn        = "turn"

	CodeInternal          = "internal"
	CodeInvalidArgument   = "invalid_argument"
	CodeNotFound          = "not_found"
	CodeTimeout           = "timeout"
	CodeLaunchFailed      = "launch_failed"
	CodeNavigationFailed  = "navigation_failed"
	CodeNoActiveTab       = "no_active_tab"
	CodeElementNotFound   = "element_not_found"
	CodeInteractionFailed = "interaction_failed"
	CodeProtocolDecode    = "protocol_decode"
	CodeTurnFailed        = "turn_failed"
	CodeMaxSteps          = "max_steps_exceeded"
	CodeAIError           = "ai_error"
	CodeSessionClosed     = "session_closed"
)

type Error struct {
	Op       string
	Code     string
	Err      error
	Metadata map[string]any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, code string, err error, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Error{
		Op:       op,
		Code:     code,
		Err:      err,
		Metadata: metadata,
	}
}

func WrapWithReason(op, code string, err error, reason string) error {
	return Wrap(op, code, err, map[string]any{
		MetaReason: reason,
	})
}

func WrapErrorWithReason(op, code, reason string) error {
	return Wrap(op, code, errors.New(reason), map[string]any{
		MetaReason: reason,
	})
}

func InvalidReqError(op, field string, err error) error {
	return Wrap(op, CodeInvalidArgument, err, map[string]any{
		MetaField:  field,
		MetaReason: "invalid_request",
	})
}

func NotFoundError(op string, err error) error {
	return Wrap(op, CodeNotFound, err, map[string]any{
		MetaReason: "not_found",
	})
}

// CodeOf returns the code of the outermost *Error in the chain, or "" when
// err carries none.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return ""
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return false
		}

		if appErr.Code == code {
			return true
		}

		err = appErr.Err
	}

	return false
}

// Reason returns the MetaReason of the outermost *Error in the chain.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if reason, ok := appErr.Metadata[MetaReason].(string); ok {
			return reason
		}
	}

	return ""
}
