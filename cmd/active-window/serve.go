package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/Christopher-Hayes/active-window/internal/output"
	"github.com/Christopher-Hayes/active-window/window"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the active window",
	Long: `Start a Model Context Protocol (MCP) server on standard I/O so agents can
ask which window is focused without spawning a process per query.

Tools:
  active_window   the focused window as {"extents","pid","name"}, or null
  list_windows    every window the compositor reports`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// mcpServer answers tool calls from one window source.
type mcpServer struct {
	src   window.Source
	srcMu sync.Mutex
	mcp   *mcpserver.MCPServer
}

func newMCPServer(src window.Source) *mcpServer {
	s := &mcpServer{src: src}
	s.mcp = mcpserver.NewMCPServer("active-window", version)
	s.registerTools()
	return s
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("active_window",
			mcp.WithDescription("Return the window that currently has keyboard focus as JSON: extents [x, y, width, height], pid and application name. Returns null when no window is active."),
		),
		s.handleActiveWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List every window the compositor reports, with class, title, PID, geometry and whether it is active"),
			mcp.WithBoolean("active_only", mcp.Description("Only return the active window")),
		),
		s.handleListWindows,
	)
}

func (s *mcpServer) handleActiveWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.srcMu.Lock()
	defer s.srcMu.Unlock()

	lctx, cancel := lookupContext(ctx)
	defer cancel()

	summary, ok, err := window.Lookup(lctx, s.src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	var v interface{}
	if ok {
		v = summary
	}
	if err := output.PrintJSON(&buf, v); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *mcpServer) handleListWindows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activeOnly := false
	if v, ok := request.GetArguments()["active_only"].(bool); ok {
		activeOnly = v
	}

	s.srcMu.Lock()
	defer s.srcMu.Unlock()

	lctx, cancel := lookupContext(ctx)
	defer cancel()

	descs, err := s.src.ListWindows(lctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: list windows: %v", s.src.Name(), err)), nil
	}

	if activeOnly {
		filtered := make([]window.Descriptor, 0, 1)
		for _, d := range descs {
			if d.Active {
				filtered = append(filtered, d)
				break
			}
		}
		descs = filtered
	}
	if descs == nil {
		descs = []window.Descriptor{}
	}

	var buf bytes.Buffer
	if err := output.PrintYAML(&buf, descs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	src, err := openSource()
	if err != nil {
		return err
	}
	return mcpserver.ServeStdio(newMCPServer(src).mcp)
}
