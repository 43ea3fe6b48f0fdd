package server

import (
	"encoding/json"
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	var config Config

	// Config
	configJson, err := json.Marshal(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(configJson, &config); err != nil {
		return nil, err
	}
	s.config = config
	log.Printf("Config: %v", config)

	// Capabilities
	syncKind := protocol.TextDocumentSyncKindFull

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     tokenTypeLegend,
			TokenModifiers: []string{},
		},
		Full:  true,
		Range: true,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{statusCommand},
	}

	version := lsVersion
	return initializeResult{
		Capabilities: serverCapabilities{
			ServerCapabilities: capabilities,
			InlayHintProvider:  true,
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Println("Client initialized.")
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Println("Server shutting down.")
	s.docs.Shutdown()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(
	context *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) workspaceDidChangeConfiguration(
	context *glsp.Context,
	params *protocol.DidChangeConfigurationParams,
) error {
	log.Println("Workspace configuration changed.")
	return nil
}

func (s *Server) workspaceDidChangeWatchedFiles(
	context *glsp.Context,
	params *protocol.DidChangeWatchedFilesParams,
) error {
	log.Printf("Watched files changed: %d events", len(params.Changes))
	return nil
}

func (s *Server) workspaceDidChangeWorkspaceFolders(
	context *glsp.Context,
	params *protocol.DidChangeWorkspaceFoldersParams,
) error {
	log.Println("Workspace folders changed.")
	return nil
}
