package server

import (
	"log"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const statusCommand = "ell.status"

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	if params.Command == statusCommand {
		return nil, s.status()
	}
	return nil, nil
}

func (s *Server) status() error {
	if s.docs.ShuttingDown() {
		log.Println("Status: shutting down.")
		return nil
	}
	log.Printf("Status: %d open documents.", s.docs.Len())
	return nil
}
