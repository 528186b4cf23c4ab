package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

// FilterMCPServer exposes the title classifier as MCP tools
type FilterMCPServer struct {
	server     *mcp.Server
	classifier *usecase.ClassifierUsecase
	lookup     repo.ContextLookup
}

// NewServer creates a new filter MCP server. lookup may be nil.
func NewServer(classifier *usecase.ClassifierUsecase, lookup repo.ContextLookup, version string) *FilterMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tubesieve-filter",
		Version: version,
	}, nil)

	s := &FilterMCPServer{
		server:     server,
		classifier: classifier,
		lookup:     lookup,
	}

	// Register tools
	s.registerTools()

	return s
}

func (s *FilterMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_title",
		Description: "Decide whether a video title should be kept or removed for a user's stated content preference. Answers keep when uncertain or when the model is unavailable.",
	}, s.handleClassifyTitle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_context",
		Description: "Look up short background information about a topic. Returns an empty string when nothing is found.",
	}, s.handleLookupContext)
}

// ClassifyTitleInput is the input for classify_title
type ClassifyTitleInput struct {
	Preferences string `json:"preferences" jsonschema:"The user's content preference in their own words"`
	Title       string `json:"title" jsonschema:"The video title to classify"`
}

// ClassifyTitleOutput is the output for classify_title
type ClassifyTitleOutput struct {
	Decision string `json:"decision"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

func (s *FilterMCPServer) handleClassifyTitle(ctx context.Context, req *mcp.CallToolRequest, input ClassifyTitleInput) (*mcp.CallToolResult, ClassifyTitleOutput, error) {
	outcome, err := s.classifier.Classify(ctx, domain.NewPreferenceQuery(input.Preferences, input.Title))
	if err != nil {
		msg := err.Error()
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			msg = vErr.Message
		}
		return nil, ClassifyTitleOutput{Decision: domain.DecisionKeep.String(), Error: msg}, nil
	}

	return nil, ClassifyTitleOutput{
		Decision: outcome.Decision.String(),
		Fallback: outcome.WasFallback,
	}, nil
}

// LookupContextInput is the input for lookup_context
type LookupContextInput struct {
	Topic string `json:"topic" jsonschema:"The topic or video title to look up"`
}

// LookupContextOutput is the output for lookup_context
type LookupContextOutput struct {
	Context string `json:"context"`
}

func (s *FilterMCPServer) handleLookupContext(ctx context.Context, req *mcp.CallToolRequest, input LookupContextInput) (*mcp.CallToolResult, LookupContextOutput, error) {
	if s.lookup == nil {
		return nil, LookupContextOutput{}, nil
	}
	return nil, LookupContextOutput{Context: s.lookup.Lookup(ctx, input.Topic)}, nil
}

// Run starts the MCP server with stdio transport
func (s *FilterMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *FilterMCPServer) GetServer() *mcp.Server {
	return s.server
}
