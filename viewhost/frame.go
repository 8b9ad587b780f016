// Package viewhost is the publish side of view frames (spec §6):
// components publish immutable frames keyed by (view_id, revision),
// never mutate one in place, and a renderer reads only the latest
// frame per view. The host's only invariant is strict per-view
// revision monotonicity.
package viewhost

import "github.com/armper/PandaGen-sub001/domain"

// Kind names the three view shapes spec §6 allows.
type Kind string

const (
	TextBuffer Kind = "TextBuffer"
	StatusLine Kind = "StatusLine"
	Panel      Kind = "Panel"
)

// Cursor is the optional text-cursor position carried by TextBuffer
// frames; zero value means "no cursor" for StatusLine/Panel frames.
type Cursor struct {
	Line   uint32
	Column uint32
}

// Frame is an immutable snapshot published by a component. Content is
// opaque to the host — renderers interpret it by Kind.
type Frame struct {
	ViewId      domain.ViewId
	Kind        Kind
	Revision    uint64
	Content     []byte
	Cursor      *Cursor
	TimestampNs uint64
}
