// Package logg holds the zap field names shared across layers so that log
// lines can be filtered consistently.
package logg

const (
	Layer     = "layer"
	Operation = "operation"
	SessionID = "session_id"
	TurnID    = "turn_id"
	Tool      = "tool"
	Action    = "action"
	Selector  = "selector"
	URL       = "url"
	State     = "state"
	Remote    = "remote"
	Provider  = "provider"
	Step      = "step"
)
