package bridge

import (
	"encoding/json"

	spanerrors "github.com/vango-dev/spanav/internal/errors"
)

// FrameType identifies a frame.
type FrameType string

// Client to server frames.
const (
	FrameHello    FrameType = "hello"
	FramePopState FrameType = "popstate"
	FrameClick    FrameType = "click"
)

// Server to client frames.
const (
	FramePush    FrameType = "push"
	FrameReplace FrameType = "replace"
	FrameClear   FrameType = "clear"
	FrameRender  FrameType = "render"
	FrameScroll  FrameType = "scroll"
	FrameFollow  FrameType = "follow"
	FrameError   FrameType = "error"
)

// Frame is a single JSON message in either direction.
type Frame struct {
	Type FrameType `json:"type"`

	// Href is the location for hello, popstate, push, replace and follow.
	Href string `json:"href,omitempty"`

	// Target is the element id a click landed on.
	Target string `json:"target,omitempty"`

	// Click button and modifier keys.
	Button int  `json:"button,omitempty"`
	Ctrl   bool `json:"ctrl,omitempty"`
	Meta   bool `json:"meta,omitempty"`
	Shift  bool `json:"shift,omitempty"`
	Alt    bool `json:"alt,omitempty"`

	// HTML is the fragment of a render frame.
	HTML string `json:"html,omitempty"`

	// Scroll position.
	X int `json:"x"`
	Y int `json:"y"`

	// Error and Code describe an error frame.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// DecodeFrame parses a frame sent by a client.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, spanerrors.New("N040").WithDetail(err.Error()).Wrap(err)
	}

	switch f.Type {
	case FrameHello, FramePopState:
		if f.Href == "" {
			return Frame{}, spanerrors.New("N040").WithDetailf("%s frame without href", f.Type)
		}
	case FrameClick:
		if f.Target == "" {
			return Frame{}, spanerrors.New("N040").WithDetail("click frame without target")
		}
	default:
		return Frame{}, spanerrors.New("N040").WithDetailf("unexpected frame type %q", f.Type)
	}
	return f, nil
}

// Encode serialises f.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}
