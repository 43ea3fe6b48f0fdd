// Package server exposes the L analysis session over the language server
// protocol. Handlers stay thin: they translate protocol coordinates at the
// boundary and delegate to the lang and text packages.
package server

import (
	"encoding/json"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ell/internal/session"
)

const (
	lsName    = "ell"
	lsVersion = "0.1.0"
)

// Config is the initializationOptions block sent by the client.
type Config struct {
	// FormatWidth is the target line width for textDocument/formatting.
	// Zero means the default width.
	FormatWidth int `json:"format_width"`
	// MaxDiagnostics caps each publishDiagnostics batch. Zero means
	// unlimited.
	MaxDiagnostics int `json:"max_diagnostics"`
}

type Server struct {
	handler *protocol.Handler
	docs    *session.Store
	config  Config
}

func NewServer() (*server.Server, error) {
	ls := newLanguageServer()
	return server.NewServer(&dispatcher{server: ls}, lsName, false), nil
}

func newLanguageServer() *Server {
	ls := &Server{docs: session.NewStore()}
	ls.handler = &protocol.Handler{
		Initialize:                     ls.initialize,
		Initialized:                    ls.initialized,
		Shutdown:                       ls.shutdown,
		SetTrace:                       ls.setTrace,
		TextDocumentDidOpen:            ls.textDocumentDidOpen,
		TextDocumentDidChange:          ls.textDocumentDidChange,
		TextDocumentDidSave:            ls.textDocumentDidSave,
		TextDocumentDidClose:           ls.textDocumentDidClose,
		TextDocumentDefinition:         ls.textDocumentDefinition,
		TextDocumentReferences:         ls.textDocumentReferences,
		TextDocumentRename:             ls.textDocumentRename,
		TextDocumentCompletion:         ls.textDocumentCompletion,
		TextDocumentFormatting:         ls.textDocumentFormatting,
		TextDocumentSemanticTokensFull: ls.textDocumentSemanticTokensFull,
		// protocol_3_16 in glsp v0.2.2 declares this callback returning
		// (any, error); adapt the typed handler to it.
		TextDocumentSemanticTokensRange: func(context *glsp.Context, params *protocol.SemanticTokensRangeParams) (any, error) {
			return ls.textDocumentSemanticTokensRange(context, params)
		},
		WorkspaceSymbol:                    ls.workspaceSymbol,
		WorkspaceExecuteCommand:            ls.workspaceExecuteCommand,
		WorkspaceDidChangeConfiguration:    ls.workspaceDidChangeConfiguration,
		WorkspaceDidChangeWatchedFiles:     ls.workspaceDidChangeWatchedFiles,
		WorkspaceDidChangeWorkspaceFolders: ls.workspaceDidChangeWorkspaceFolders,
	}
	return ls
}

// dispatcher handles the one 3.17 method the generated handler does not know
// about and forwards everything else unchanged.
type dispatcher struct {
	server *Server
}

func (d *dispatcher) Handle(
	context *glsp.Context,
) (r any, validMethod bool, validParams bool, err error) {
	if context.Method != methodInlayHint {
		return d.server.handler.Handle(context)
	}

	validMethod = true
	var params InlayHintParams
	if err = json.Unmarshal(context.Params, &params); err != nil {
		return
	}
	validParams = true
	r, err = d.server.textDocumentInlayHint(context, &params)
	return
}
