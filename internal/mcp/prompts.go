package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("system_diagram",
		mcp.WithPromptDescription("Draw a system architecture diagram on a new board using shapes and arrows"),
		mcp.WithArgument("systemName",
			mcp.ArgumentDescription("Name of the system to diagram"),
			mcp.RequiredArgument(),
		),
	), s.handleSystemDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("wireframe",
		mcp.WithPromptDescription("Sketch a screen wireframe on a board sized for the target device"),
		mcp.WithArgument("screen",
			mcp.ArgumentDescription("Screen to wireframe, e.g. 'login page'"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("preset",
			mcp.ArgumentDescription("Board preset such as '1280x720' or 'A4 Portrait'"),
		),
	), s.handleWireframePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_board",
		mcp.WithPromptDescription("Clean up a cluttered board: align, group and restack its elements"),
		mcp.WithArgument("boardId",
			mcp.ArgumentDescription("Board to tidy"),
			mcp.RequiredArgument(),
		),
	), s.handleTidyBoardPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleSystemDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemName := req.Params.Arguments["systemName"]
	return userPrompt(fmt.Sprintf("Create a system diagram for: %s", systemName),
		fmt.Sprintf(`Create a system architecture diagram for "%s". Follow these steps:

1. Use create_board with preset "1920x1080" and name "%s architecture"
2. Identify the main components of the system
3. Use add_element with type "rect" for each component and a "text" element for its label
4. Use add_element with type "arrow" to connect related components (points are relative to x/y)
5. Select each component with its label (select_objects) and group_selection so they move together
6. Use arrange_objects if the layout gets crowded

Use consistent colors: #3b82f6 for services, #10b981 for databases, #f59e0b for external systems.`, systemName, systemName)), nil
}

func (s *Server) handleWireframePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	screen := req.Params.Arguments["screen"]
	preset := req.Params.Arguments["preset"]
	if preset == "" {
		preset = "1280x720"
	}
	return userPrompt(fmt.Sprintf("Wireframe: %s", screen),
		fmt.Sprintf(`Sketch a low-fidelity wireframe of the %s. Follow these steps:

1. Use create_board with preset "%s" and a white background
2. Add add_guideline lines for the page margins and main columns
3. Block out regions (header, navigation, content, footer) with grey "rect" elements (#e5e7eb)
4. Add "text" elements for headings and button labels
5. Lock the region rectangles (select_objects + lock_selection) so later edits don't move them
6. Finish with get_selection or list_objects to review what was created`, screen, preset)), nil
}

func (s *Server) handleTidyBoardPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	boardID := req.Params.Arguments["boardId"]
	return userPrompt(fmt.Sprintf("Tidy board %s", boardID),
		fmt.Sprintf(`Tidy up board %s. Follow these steps:

1. Read whiteboard://board/%s/objects to see what is on it
2. Use query_objects to find related elements (for example "type == 'text' && boardId == '%s'")
3. Group elements that belong together with select_objects + group_selection
4. Use arrange_objects to lay the groups out on a grid
5. Use arrange_layer to bring labels and arrows to the front
6. Leave locked elements where they are`, boardID, boardID, boardID)), nil
}
