package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/verilogica/orchestrator/internal/config"
	"github.com/verilogica/orchestrator/pkg/existdb"
)

// Server carries the shared dependencies handed to every HTTP handler.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// Documents is the document service fronting the XML store.
	Documents *existdb.Service

	// Logger is the logger for the server.
	Logger hclog.Logger
}
