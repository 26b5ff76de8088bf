package entity

import (
	"encoding/base64"
	"time"
)

// InteractiveElement is one discovered input, button or link. Records are
// snapshots: a later discovery call may disagree with an earlier one.
type InteractiveElement struct {
	TagID     string `json:"tagId"`
	TagName   string `json:"tagName"`
	ClassName string `json:"className"`
	Text      string `json:"text,omitempty"`
	Href      string `json:"href,omitempty"`
}

type URLChange struct {
	Previous string `json:"TabOldUrl,omitempty"`
	Current  string `json:"currentUrl,omitempty"`
	Message  string `json:"message"`
}

// Screenshot is an encoded capture of the active tab. The zero value is the
// "nothing to show" sentinel.
type Screenshot struct {
	Data     []byte
	MimeType string
}

func (s Screenshot) Empty() bool {
	return len(s.Data) == 0
}

func (s Screenshot) DataURI() string {
	if s.Empty() {
		return ""
	}

	mime := s.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

type EventType string

const (
	EventAI         EventType = "ai"
	EventTool       EventType = "tool"
	EventEnd        EventType = "end"
	EventError      EventType = "error"
	EventScreenshot EventType = "screenshot"
)

// OutboundEvent is the unit of the server to client wire protocol.
type OutboundEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Name    string    `json:"name,omitempty"`
	Message string    `json:"message,omitempty"`
}

func AIEvent(text string) OutboundEvent {
	return OutboundEvent{Type: EventAI, Content: text}
}

func ToolEvent(name, content string) OutboundEvent {
	return OutboundEvent{Type: EventTool, Name: name, Content: content}
}

func EndEvent() OutboundEvent {
	return OutboundEvent{Type: EventEnd}
}

func ErrorEvent(message string) OutboundEvent {
	return OutboundEvent{Type: EventError, Message: message}
}

func ScreenshotEvent(dataURI string) OutboundEvent {
	return OutboundEvent{Type: EventScreenshot, Content: dataURI}
}

// Terminal reports whether the event closes a turn.
func (e OutboundEvent) Terminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}

// InboundMessage is a client to server user turn.
type InboundMessage struct {
	Message string `json:"message"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ChatMessage is one entry of the running conversation kept per session.
type ChatMessage struct {
	Role    Role
	Content string
}

// ToolSpec describes a tool to the reasoning engine. Parameters is a JSON
// schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type ChunkKind string

const (
	ChunkText       ChunkKind = "text"
	ChunkToolResult ChunkKind = "tool_result"
	ChunkError      ChunkKind = "error"
)

// TurnChunk is one item of a reasoning engine's output stream.
type TurnChunk struct {
	Kind     ChunkKind
	Text     string
	ToolName string
	Err      error
}

type SessionState string

const (
	SessionConnecting  SessionState = "connecting"
	SessionActive      SessionState = "active"
	SessionTurnRunning SessionState = "turn_running"
	SessionTurnIdle    SessionState = "turn_idle"
	SessionClosing     SessionState = "closing"
	SessionClosed      SessionState = "closed"
)

// SessionInfo is a read-only view of a registered session.
type SessionInfo struct {
	ID          string
	State       SessionState
	Remote      string
	ConnectedAt time.Time
	Turns       int
}
