package server

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ironsheep/blob-tools-mcp/internal/blob"
	"github.com/ironsheep/blob-tools-mcp/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "blob_load", "blob_label").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads rasters from cache, cropping and binarizing as requested
//  4. Calls the appropriate blob function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "blob_load":
		return s.handleBlobLoad(args)
	case "blob_threshold":
		return s.handleBlobThreshold(args)
	case "blob_label":
		return s.handleBlobLabel(args)
	case "blob_attributes":
		return s.handleBlobAttributes(args)
	case "blob_render":
		return s.handleBlobRender(args)
	case "blob_analyze":
		return s.handleBlobAnalyze(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// left out of the error object.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pipelineArgs are the arguments shared by every tool that binarizes and
// labels an input file.
type pipelineArgs struct {
	Path      string         `json:"path"`
	Region    *raster.Region `json:"region,omitempty"`
	Threshold *int           `json:"threshold,omitempty"`
	MaxLabel  int            `json:"max_label,omitempty"`
	Moments   string         `json:"moments,omitempty"`
}

// source loads the input raster and applies the optional crop region.
func (s *Server) source(a *pipelineArgs) (*raster.Raster, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	r, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Region != nil {
		return raster.Crop(r, *a.Region)
	}
	return r, nil
}

// binarize thresholds src at the requested level, or at the configured
// default level when none is given. It returns the level used.
func (s *Server) binarize(src *raster.Raster, a *pipelineArgs) (*raster.Raster, int, error) {
	level := s.cfg.Threshold.Level
	if a.Threshold != nil {
		level = *a.Threshold
	}
	bin, err := raster.Threshold(src, level)
	if err != nil {
		return nil, 0, err
	}
	return bin, level, nil
}

// settings merges the per-call overrides into the configured settings.
func (s *Server) settings(a *pipelineArgs) (blob.Settings, error) {
	st := s.cfg.Settings()
	if a.MaxLabel != 0 {
		st.MaxLabel = a.MaxLabel
	}
	if a.Moments != "" {
		m, err := blob.ParseMoments(a.Moments)
		if err != nil {
			return st, err
		}
		st.Moments = m
	}
	return st, nil
}

// analyzeFile runs load → crop → threshold → label → attributes.
func (s *Server) analyzeFile(a *pipelineArgs) (*raster.Raster, *blob.Result, int, blob.Settings, error) {
	st, err := s.settings(a)
	if err != nil {
		return nil, nil, 0, st, err
	}
	src, err := s.source(a)
	if err != nil {
		return nil, nil, 0, st, err
	}
	bin, level, err := s.binarize(src, a)
	if err != nil {
		return nil, nil, 0, st, err
	}
	res, err := blob.Analyze(bin, st)
	if err != nil {
		return nil, nil, 0, st, err
	}
	return src, res, level, st, nil
}

// === Raster Information ===

type blobLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleBlobLoad(args json.RawMessage) (interface{}, error) {
	var a blobLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return raster.LoadInfo(s.cache, a.Path)
}

// === Binarization ===

// ThresholdResult is returned by blob_threshold.
type ThresholdResult struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Level            int    `json:"level"`
	ForegroundPixels int    `json:"foreground_pixels"`
	ImageBase64      string `json:"image_base64"`
	MimeType         string `json:"mime_type"`
}

func (s *Server) handleBlobThreshold(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.source(&a)
	if err != nil {
		return nil, err
	}
	bin, level, err := s.binarize(src, &a)
	if err != nil {
		return nil, err
	}
	encoded, err := encodePNG(bin.Image())
	if err != nil {
		return nil, err
	}
	return &ThresholdResult{
		Width:            bin.Cols(),
		Height:           bin.Rows(),
		Level:            level,
		ForegroundPixels: bin.CountNonZero(),
		ImageBase64:      encoded,
		MimeType:         "image/png",
	}, nil
}

// === Labeling ===

// ComponentArea is the pixel count of one labeled component.
type ComponentArea struct {
	Label int `json:"label"`
	Area  int `json:"area"`
}

// LabelResult is returned by blob_label.
type LabelResult struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Count       int             `json:"count"`
	Components  []ComponentArea `json:"components"`
	ImageBase64 string          `json:"image_base64"`
	MimeType    string          `json:"mime_type"`
}

type blobLabelArgs struct {
	pipelineArgs
	Annotate bool `json:"annotate"`
}

func (s *Server) handleBlobLabel(args json.RawMessage) (interface{}, error) {
	var a blobLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	st, err := s.settings(&a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	src, err := s.source(&a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	bin, _, err := s.binarize(src, &a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	labels, err := blob.Label(bin, blob.WithMaxLabel(st.MaxLabel))
	if err != nil {
		return nil, err
	}

	counts := blob.Components(labels)
	keys := make([]int, 0, len(counts))
	for l := range counts {
		keys = append(keys, l)
	}
	sort.Ints(keys)
	components := make([]ComponentArea, len(keys))
	for i, l := range keys {
		components[i] = ComponentArea{Label: l, Area: counts[l]}
	}

	img := blob.Colorize(labels)
	if a.Annotate {
		blob.Annotate(img, blob.ExtractAttributes(labels))
	}
	encoded, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	return &LabelResult{
		Width:       labels.Cols(),
		Height:      labels.Rows(),
		Count:       len(components),
		Components:  components,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// === Attributes ===

// AttributesResult is returned by blob_attributes.
type AttributesResult struct {
	Count       int               `json:"count"`
	Moments     string            `json:"moments"`
	Descriptors []blob.Descriptor `json:"descriptors"`
	Table       string            `json:"table"`
}

func (s *Server) handleBlobAttributes(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, res, _, st, err := s.analyzeFile(&a)
	if err != nil {
		return nil, err
	}
	return &AttributesResult{
		Count:       res.Count,
		Moments:     st.Moments.String(),
		Descriptors: res.Descriptors,
		Table:       blob.FormatTable(res.Descriptors),
	}, nil
}

// === Rendering ===

// RenderResult is returned by blob_render.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Count       int    `json:"count"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	OutputPath  string `json:"output_path,omitempty"`
}

type blobRenderArgs struct {
	pipelineArgs
	MarkerLength *float64 `json:"marker_length,omitempty"`
	Segment      *bool    `json:"segment,omitempty"`
	OutputPath   string   `json:"output_path,omitempty"`
}

func (s *Server) handleBlobRender(args json.RawMessage) (interface{}, error) {
	var a blobRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, res, _, st, err := s.analyzeFile(&a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	if a.MarkerLength != nil {
		st.MarkerLength = *a.MarkerLength
	}
	if a.Segment != nil {
		st.Segment = *a.Segment
	}

	// Cached rasters are shared; draw on a copy.
	canvas := src.Clone()
	if err := blob.Render(res.Descriptors, canvas, st.RenderOptions()...); err != nil {
		return nil, err
	}

	if a.OutputPath != "" {
		if err := raster.Save(a.OutputPath, canvas); err != nil {
			return nil, err
		}
	}

	encoded, err := encodePNG(canvas.Image())
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		Width:       canvas.Cols(),
		Height:      canvas.Rows(),
		Count:       res.Count,
		ImageBase64: encoded,
		MimeType:    "image/png",
		OutputPath:  a.OutputPath,
	}, nil
}

// === Full Pipeline ===

// AnalyzeResult is returned by blob_analyze.
type AnalyzeResult struct {
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Level       int               `json:"level"`
	Moments     string            `json:"moments"`
	Count       int               `json:"count"`
	Descriptors []blob.Descriptor `json:"descriptors"`
	Table       string            `json:"table"`
	ImageBase64 string            `json:"image_base64"`
	MimeType    string            `json:"mime_type"`
}

func (s *Server) handleBlobAnalyze(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, res, level, st, err := s.analyzeFile(&a)
	if err != nil {
		return nil, err
	}

	img := blob.Colorize(res.Labels)
	blob.Annotate(img, res.Descriptors)
	encoded, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		Width:       res.Labels.Cols(),
		Height:      res.Labels.Rows(),
		Level:       level,
		Moments:     st.Moments.String(),
		Count:       res.Count,
		Descriptors: res.Descriptors,
		Table:       blob.FormatTable(res.Descriptors),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
