package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file (PGM, PNG, JPEG, GIF, BMP, TIFF or WebP)",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional crop applied before processing. x1,y1 inclusive; x2,y2 exclusive",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func thresholdProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Samples strictly above this level are foreground. Default from server config (128)",
	}
}

func maxLabelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Largest label value labeling may allocate (1-65535). Default 255",
	}
}

func momentsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"origin", "central"},
		"description": "Second-order moments about the raster origin (default, position dependent) or about each region's centroid",
	}
}

// pipelineProperties returns the schema properties shared by the labeling tools.
func pipelineProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":      pathProperty(),
		"region":    regionProperty(),
		"threshold": thresholdProperty(),
		"max_label": maxLabelProperty(),
		"moments":   momentsProperty(),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	labelProps := pipelineProperties()
	delete(labelProps, "moments")
	labelProps["annotate"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Print each label number next to its region. Default false",
		"default":     false,
	}

	renderProps := pipelineProperties()
	renderProps["marker_length"] = map[string]interface{}{
		"type":        "number",
		"description": "Distance in pixels from the center to the orientation endpoint. Default 10",
	}
	renderProps["segment"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw the whole orientation segment instead of the endpoint pixel",
	}
	renderProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional path to also save the marked raster (.pgm keeps full depth)",
	}

	return []Tool{
		// Raster Information
		{
			Name:        "blob_load",
			Description: "Load an image file and return its dimensions, sample depth, format and count of non-zero pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Binarization
		{
			Name:        "blob_threshold",
			Description: "Binarize an image with a global threshold and return the binary image as base64-encoded PNG with its foreground pixel count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"region":    regionProperty(),
					"threshold": thresholdProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Labeling
		{
			Name:        "blob_label",
			Description: "Find 4-connected regions in the thresholded image. Returns the region count, the pixel area of each label and a color-coded label image as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": labelProps,
				"required":   []string{"path"},
			},
		},

		// Attributes
		{
			Name:        "blob_attributes",
			Description: "Measure every region: area, centroid, bounding box, principal moments of inertia, roundness and orientation. Also returns the descriptor table (label centroidRow centroidCol minInertia area roundness orientationDegrees).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineProperties(),
				"required":   []string{"path"},
			},
		},

		// Rendering
		{
			Name:        "blob_render",
			Description: "Draw a center dot and an orientation marker for every region onto the gray image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": renderProps,
				"required":   []string{"path"},
			},
		},

		// Full Pipeline
		{
			Name:        "blob_analyze",
			Description: "Threshold, label and measure in one call. Returns descriptors, the descriptor table and an annotated label image as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineProperties(),
				"required":   []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
