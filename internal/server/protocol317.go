package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocument/inlayHint entered the protocol at 3.17; the generated 3.16
// handler has no slot for it, so the method is dispatched by hand and its
// payload types are declared here, wire-compatible with 3.17.

const methodInlayHint = "textDocument/inlayHint"

type InlayHintKind protocol.Integer

const (
	InlayHintKindType      InlayHintKind = 1
	InlayHintKindParameter InlayHintKind = 2
)

type InlayHintParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Range        protocol.Range                  `json:"range"`
}

// InlayHintLabelPart is one segment of a composite hint label. A part with a
// Location is rendered as a link to that location.
type InlayHintLabelPart struct {
	Value    string             `json:"value"`
	Location *protocol.Location `json:"location,omitempty"`
}

// InlayHint's Label holds either a plain string or []InlayHintLabelPart.
type InlayHint struct {
	Position     protocol.Position `json:"position"`
	Label        any               `json:"label"`
	Kind         *InlayHintKind    `json:"kind,omitempty"`
	PaddingLeft  *bool             `json:"paddingLeft,omitempty"`
	PaddingRight *bool             `json:"paddingRight,omitempty"`
}

// serverCapabilities widens the generated 3.16 capability set with the inlay
// hint provider flag. Embedding keeps the wire shape flat.
type serverCapabilities struct {
	protocol.ServerCapabilities
	InlayHintProvider bool `json:"inlayHintProvider,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities                   `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}
