// Package mcp exposes the staircase engine as a Model Context Protocol
// server, so agent infrastructure can drive experiment sessions as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/perceptlab/staircase"
	"github.com/perceptlab/staircase/pkg/domain"
	"github.com/perceptlab/staircase/pkg/session"
)

// SessionState is the structured result shared by the session tools.
type SessionState struct {
	ID        string   `json:"id" jsonschema_description:"Session identifier"`
	Finished  bool     `json:"finished" jsonschema_description:"True once every staircase has finished"`
	Label     *string  `json:"label,omitempty" jsonschema_description:"Label of the staircase selected for the current trial"`
	Intensity *float64 `json:"intensity,omitempty" jsonschema_description:"Next stimulus intensity to present"`
	Trials    int      `json:"trials" jsonschema_description:"Number of trials recorded so far"`
}

// Server wraps a session manager and exposes it as an MCP server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("staircase-mcp", strings.TrimSpace(staircase.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: begin_session
	beginTool := mcp.NewTool("begin_session",
		mcp.WithDescription("Start a multi-staircase session. Conditions is a JSON array of objects with label, startVal and startValSd."),
		mcp.WithString("var_name", mcp.Required(), mcp.Description("Stimulus variable name, e.g. 'contrast'")),
		mcp.WithString("conditions", mcp.Required(), mcp.Description("JSON array of condition objects")),
		mcp.WithString("method", mcp.Description("Selection policy: sequential, random or fullRandom (default sequential)")),
		mcp.WithNumber("n_trials", mcp.Description("Total trial cap (default 50)")),
		mcp.WithNumber("seed", mcp.Description("Deterministic random seed (optional)")),
		mcp.WithOutputSchema[SessionState](),
	)
	s.mcpServer.AddTool(beginTool, mcp.NewStructuredToolHandler(s.handleBegin))

	// TOOL: get_trial
	getTool := mcp.NewTool("get_trial",
		mcp.WithDescription("Get the current trial: which staircase is active and the intensity to present."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionState](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetTrial))

	// TOOL: add_response
	respondTool := mcp.NewTool("add_response",
		mcp.WithDescription("Register the response for the current trial (0 = missed, 1 = detected) and advance."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithNumber("response", mcp.Required(), mcp.Description("Response value, exactly 0 or 1")),
		mcp.WithNumber("value", mcp.Description("Intensity actually presented, when it differs from the suggested one")),
		mcp.WithOutputSchema[SessionState](),
	)
	s.mcpServer.AddTool(respondTool, mcp.NewStructuredToolHandler(s.handleAddResponse))

	// TOOL: session_data
	s.mcpServer.AddTool(mcp.NewTool("session_data",
		mcp.WithDescription("Get all experiment data recorded for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("session_id", "")
		var payload []byte
		err := s.manager.With(id, func(sess *staircase.Session) error {
			records, dataErr := sess.Data(ctx)
			if dataErr != nil {
				return dataErr
			}
			payload, dataErr = json.Marshal(records)
			return dataErr
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("session data failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	// TOOL: list_sessions
	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List active session identifiers."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, _ := json.Marshal(s.manager.List())
		return mcp.NewToolResultText(string(payload)), nil
	})
}

func (s *Server) handleBegin(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionState, error) {
	varName, _ := args["var_name"].(string)

	condStr, _ := args["conditions"].(string)
	var conditions []domain.Condition
	if err := json.Unmarshal([]byte(condStr), &conditions); err != nil {
		return SessionState{}, fmt.Errorf("invalid conditions JSON: %w", err)
	}

	opts := []staircase.Option{staircase.WithConditions(conditions)}

	if methodStr, ok := args["method"].(string); ok && methodStr != "" {
		method, err := domain.ParseMethod(methodStr)
		if err != nil {
			return SessionState{}, err
		}
		opts = append(opts, staircase.WithMethod(method))
	}
	if n, ok := args["n_trials"].(float64); ok && n > 0 {
		opts = append(opts, staircase.WithTrialCap(int(n)))
	}
	if seed, ok := args["seed"].(float64); ok {
		opts = append(opts, staircase.WithSeed(int64(seed)))
	}

	id, err := s.manager.Create(ctx, varName, domain.StairQuest, opts...)
	if err != nil {
		return SessionState{}, fmt.Errorf("session creation failed: %w", err)
	}
	return s.state(id)
}

func (s *Server) handleGetTrial(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionState, error) {
	id, _ := args["session_id"].(string)
	return s.state(id)
}

func (s *Server) handleAddResponse(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionState, error) {
	id, _ := args["session_id"].(string)
	responseF, _ := args["response"].(float64)

	err := s.manager.With(id, func(sess *staircase.Session) error {
		if valueF, ok := args["value"].(float64); ok {
			return sess.AddResponse(ctx, int(responseF), valueF)
		}
		return sess.AddResponse(ctx, int(responseF))
	})
	if err != nil {
		return SessionState{}, fmt.Errorf("add response failed: %w", err)
	}
	return s.state(id)
}

func (s *Server) state(id string) (SessionState, error) {
	state := SessionState{ID: id}
	err := s.manager.With(id, func(sess *staircase.Session) error {
		state.Finished = sess.Finished()
		state.Trials = sess.Iterator().Filled()
		if proc, ok := sess.CurrentStaircase(); ok {
			label := proc.Name()
			state.Label = &label
		}
		if intensity, ok := sess.Intensity(); ok {
			state.Intensity = &intensity
		}
		return nil
	})
	if err != nil {
		return SessionState{}, fmt.Errorf("session lookup failed: %w", err)
	}
	return state, nil
}
