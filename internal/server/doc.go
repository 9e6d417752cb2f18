// Package server implements the MCP (Model Context Protocol) server for blob
// analysis tools.
//
// This package provides a JSON-RPC 2.0 server that exposes connected-component
// labeling and region measurement through the MCP protocol, so MCP clients can
// count and measure the shapes in an image precisely.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - blob_load: Load a raster and get metadata
//   - blob_threshold: Binarize with a global threshold
//   - blob_label: Label 4-connected regions, color-coded preview
//   - blob_attributes: Region descriptors and descriptor table
//   - blob_render: Center and orientation markers on the gray image
//   - blob_analyze: Threshold, label and measure in one call
//
// Every labeling tool accepts an optional crop region, a threshold level, a
// label limit and a moment convention. Omitted values come from the
// configuration passed with WithConfig.
//
// # Raster Caching
//
// The server keeps decoded rasters in a raster.Cache keyed by path, for the
// lifetime of the process. Tools never modify cached rasters.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
