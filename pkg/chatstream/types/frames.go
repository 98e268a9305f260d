package types

import "encoding/json"

// FrameKind identifies the kind of an outbound UI stream frame
type FrameKind string

const (
	FrameKindTextStart  FrameKind = "text-start"
	FrameKindTextDelta  FrameKind = "text-delta"
	FrameKindTextEnd    FrameKind = "text-end"
	FrameKindAnnotation FrameKind = "annotation"
)

// Annotation wire types. The concrete type string travels in the frame's
// "type" field so the client can route tool cards without inspecting data.
const (
	AnnotationVideoQuery         = "data-video-query-event"
	AnnotationStoryQuery         = "data-story-query-event"
	AnnotationCommentQuery       = "data-comment-query-event"
	AnnotationGeneric            = "data-annotation"
	AnnotationSuggestedQuestions = "data-suggested-questions"
)

// Frame is the closed union of frames written to the UI message stream.
// Invariants: every text-start is matched by exactly one later text-end,
// no two text blocks are open at once, and text-delta frames only
// reference the currently open block id.
type Frame interface {
	FrameKind() FrameKind
}

type TextStartFrame struct {
	ID string `json:"id"`
}

func (TextStartFrame) FrameKind() FrameKind { return FrameKindTextStart }

func (f TextStartFrame) MarshalJSON() ([]byte, error) {
	return marshalFrame(FrameKindTextStart, f.ID, "", "", nil)
}

type TextDeltaFrame struct {
	ID    string `json:"id"`
	Delta string `json:"delta"`
}

func (TextDeltaFrame) FrameKind() FrameKind { return FrameKindTextDelta }

func (f TextDeltaFrame) MarshalJSON() ([]byte, error) {
	return marshalFrame(FrameKindTextDelta, f.ID, f.Delta, "", nil)
}

type TextEndFrame struct {
	ID string `json:"id"`
}

func (TextEndFrame) FrameKind() FrameKind { return FrameKindTextEnd }

func (f TextEndFrame) MarshalJSON() ([]byte, error) {
	return marshalFrame(FrameKindTextEnd, f.ID, "", "", nil)
}

// AnnotationFrame is a non-text frame carrying structured metadata (tool
// status, citations, suggestions) rendered inline in the chat.
type AnnotationFrame struct {
	// Type is one of the Annotation* wire types above.
	Type string         `json:"type"`
	ID   string         `json:"id,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

func (AnnotationFrame) FrameKind() FrameKind { return FrameKindAnnotation }

func (f AnnotationFrame) MarshalJSON() ([]byte, error) {
	return marshalFrame("", f.ID, "", f.Type, f.Data)
}

type wireFrame struct {
	Type  string         `json:"type"`
	ID    string         `json:"id,omitempty"`
	Delta string         `json:"delta,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

func marshalFrame(kind FrameKind, id, delta, annotationType string, data map[string]any) ([]byte, error) {
	typ := string(kind)
	if annotationType != "" {
		typ = annotationType
	}

	return json.Marshal(wireFrame{
		Type:  typ,
		ID:    id,
		Delta: delta,
		Data:  data,
	})
}
