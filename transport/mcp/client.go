package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mathquest/mathquest/game/engine"
	"github.com/mathquest/mathquest/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Math Quest",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Math Quest - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Players race around a 40-tile board answering math problems for points.
The player with the highest score when the round limit is reached wins.

TURN FLOW:
1. roll_dice - roll a six-sided die
2. move_player - walk the rolled number of tiles
3. Depending on the landing tile:
   - math tile: answer_problem with the numeric answer
   - shop tile: optionally buy_item, then close_shop
   - otherwise the turn advances automatically

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: session management
- start_game: begin a game with 2-4 players
- game_state: current board, scores, and open problem
- roll_dice / choose_dice_value / move_player: movement
- answer_problem: answer the open math problem
- buy_item / use_item / close_shop: shop and inventory
- teleport: four-phase teleporter item flow
- end_turn / reset_game: turn and game control
- list_presets: available rule presets
- game_instructions: full rules reference

NOTE: The 'intent' parameter on answer_problem serves as rubber duck
debugging - explain how you computed the answer!`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with an optional rule preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the rule preset to use (optional, e.g. 'classic')",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game setup
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a game in a session with 2-4 players",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"player_count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of players (2-4)",
				},
			},
			Required: []string{"session_id", "player_count"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to the setup screen",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with board visualization",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	// Turn flow
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the dice for the current player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "choose_dice_value",
		Description: "Choose one of the candidate values after a Lucky Dice roll",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"value": map[string]interface{}{
					"type":        "integer",
					"description": "One of the candidate dice values",
				},
			},
			Required: []string{"session_id", "value"},
		},
	}, c.handleChooseDiceValue)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_player",
		Description: "Move the current player by the rolled dice value",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMovePlayer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "answer_problem",
		Description: "Answer the open math problem",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"answer": map[string]interface{}{
					"type":        "number",
					"description": "Numeric answer to the problem",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of how you computed the answer (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "answer"},
		},
	}, c.handleAnswerProblem)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End the current player's turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEndTurn)

	// Shop & items
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "buy_item",
		Description: "Buy an item from the open shop",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"player_id": map[string]interface{}{
					"type":        "integer",
					"description": "Buying player's ID",
				},
				"item_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"shield", "extra_dice_roll", "point_multiplier", "teleport"},
					"description": "Item to buy",
				},
			},
			Required: []string{"session_id", "player_id", "item_type"},
		},
	}, c.handleBuyItem)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "use_item",
		Description: "Use a held item (point_multiplier or extra_dice_roll)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"player_id": map[string]interface{}{
					"type":        "integer",
					"description": "Player using the item",
				},
				"item_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"point_multiplier", "extra_dice_roll"},
					"description": "Item to use",
				},
			},
			Required: []string{"session_id", "player_id", "item_type"},
		},
	}, c.handleUseItem)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_shop",
		Description: "Close the shop and end the turn",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleCloseShop)

	// Teleporter
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "teleport",
		Description: "Drive the teleporter item flow: activate, select a tile, then confirm or cancel",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"activate", "select", "confirm", "cancel"},
					"description": "Teleporter phase to execute",
				},
				"player_id": map[string]interface{}{
					"type":        "integer",
					"description": "Player ID (required for activate)",
				},
				"tile_index": map[string]interface{}{
					"type":        "integer",
					"description": "Destination tile (required for select; obstacle tiles are rejected)",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleTeleport)

	// Presets & reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available rule presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	presetID, _ := args["preset_id"].(string)

	body := map[string]string{}
	if presetID != "" {
		body["preset_id"] = presetID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPreset: %s\n", session.ID, session.PresetName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Preset: %s, Created: %s)\n",
			s.ID, s.PresetName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerCount, _ := args["player_count"].(float64)

	body := map[string]interface{}{
		"player_count": int(playerCount),
	}

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/start", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Game started with %d players\n\n%s", int(playerCount), formatGameState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.RollResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/roll", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("🎲 Rolled: %d\n\n%s", result.DiceValue, formatGameState(result.GameState))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleChooseDiceValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	value, _ := args["value"].(float64)

	body := map[string]int{"value": int(value)}

	var result service.RollResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/dice-choice", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("🎲 Chose: %d\n\n%s", result.DiceValue, formatGameState(result.GameState))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleMovePlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatMoveResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleAnswerProblem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	answer, _ := args["answer"].(float64)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]float64{"answer": answer}

	var result service.AnswerResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/answer", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatAnswerResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/end-turn", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Turn ended\n\n%s", formatGameState(&state))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleBuyItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(float64)
	itemType, _ := args["item_type"].(string)

	body := map[string]interface{}{
		"player_id": int(playerID),
		"item_type": itemType,
	}

	var result service.PurchaseResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/shop/buy", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response string
	if result.Success {
		response = fmt.Sprintf("✓ Bought %s (%d coins remaining)\n\n%s",
			itemType, result.CoinsRemaining, formatGameState(result.GameState))
	} else {
		response = fmt.Sprintf("✗ Purchase failed (not enough coins or already owned)\n\n%s",
			formatGameState(result.GameState))
	}
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleUseItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	playerID, _ := args["player_id"].(float64)
	itemType, _ := args["item_type"].(string)

	body := map[string]interface{}{
		"player_id": int(playerID),
		"item_type": itemType,
	}

	var result service.ItemUseResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/items/use", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response string
	if result.Used {
		response = fmt.Sprintf("✓ Used %s\n", itemType)
		if len(result.LuckyDiceValues) > 0 {
			response += fmt.Sprintf("Candidate dice values: %v - pick one with choose_dice_value\n", result.LuckyDiceValues)
		}
	} else {
		response = fmt.Sprintf("✗ Could not use %s\n", itemType)
	}
	response += "\n" + formatGameState(result.GameState)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleCloseShop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/shop/close", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Shop closed\n\n%s", formatGameState(&state))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleTeleport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)

	var path string
	var body interface{}

	switch action {
	case "activate":
		playerID, _ := args["player_id"].(float64)
		path = fmt.Sprintf("/api/sessions/%s/teleport/activate", sessionID)
		body = map[string]int{"player_id": int(playerID)}
	case "select":
		tileIndex, _ := args["tile_index"].(float64)
		path = fmt.Sprintf("/api/sessions/%s/teleport/tile", sessionID)
		body = map[string]int{"tile_index": int(tileIndex)}
	case "confirm":
		path = fmt.Sprintf("/api/sessions/%s/teleport/confirm", sessionID)
	case "cancel":
		path = fmt.Sprintf("/api/sessions/%s/teleport/cancel", sessionID)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown teleport action %q", action)), nil
	}

	var result service.TeleportResult
	err := c.apiCall("POST", path, body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "✓"
	if !result.Success {
		status = "✗"
	}
	response := fmt.Sprintf("%s Teleport %s\n\n%s", status, action, formatGameState(result.GameState))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []service.PresetInfo
	err := c.apiCall("GET", "/api/presets", nil, &presets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Presets:\n\n"
	for _, preset := range presets {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Board: %d tiles, Rounds: %d\n\n",
			preset.Name, preset.PresetID, preset.Description, preset.BoardSize, preset.MaxRounds)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 Math Quest - Complete Instructions

GAME OBJECTIVE:
Race around a 40-tile board answering math problems. The player with the
highest score when the round limit is reached wins. Ties are allowed.

TURN SEQUENCE:
1. roll_dice - the current player rolls a six-sided die
2. move_player - the player walks that many tiles clockwise
3. Landing resolution:
   • Math tile: a problem opens - answer_problem with the numeric answer
   • Shop tile: the shop opens - buy_item (optional), then close_shop
   • Obstacle tile: slip (move back 3) or trap (lose points); a Shield
     item absorbs one obstacle hit automatically
   • Start corner passed: +50 points and +30 coins bonus

BOARD LEGEND (positions on the 40-tile ring):
• ★ - corner tiles at 0, 10, 20, 30 (0 is Start)
• $ - shop tiles at 5 and 25
• ! - obstacle tiles: slip at 7 and 28, trap at 18 and 38
• · - regular math tiles
• Digits over tiles mark player positions

SCORING:
• Correct answer: problem points (scaled by difficulty) + 15 coins
• Answer streaks grow a bonus; a wrong answer resets the streak
• Wrong answer: lose points when negative points are enabled
• Point Multiplier item: 1.5x points on the next correct answers

SHOP ITEMS (bought with coins at shop tiles):
• shield (45): absorbs one obstacle automatically, stackable
• extra_dice_roll (60, 3 uses): roll two dice, pick either value
• point_multiplier (75, 2 uses): 1.5x points on correct answers
• teleport (90): jump to any non-obstacle tile, no pass-start bonus

ITEM USAGE:
• use_item works for point_multiplier and extra_dice_roll before rolling
• teleport uses its own four-phase flow:
  1. teleport action=activate player_id=N
  2. teleport action=select tile_index=T   (obstacle tiles rejected)
  3. teleport action=confirm (or action=cancel to keep the item)

🤖 AI AGENTS - STRATEGY NOTES:
• Always check game_state before acting - the turn flow is strict, and
  rolling while a problem is open or the shop is open will fail
• Solve problems carefully; the answer must match numerically
• Buy a shield before passing tiles 7, 18, 28, or 38 when affordable
• extra_dice_roll lets you steer onto shop tiles or dodge obstacles
• Save teleport for end-game positioning

SESSION MANAGEMENT:
• Multiple sessions run simultaneously with independent state
• Session IDs are short 8-character codes, easy to share
• Use list_presets and create_session preset_id=... for rule variants

GAME OVER:
• The game ends when every player has had a turn in the final round
• game_state shows the winner (or tied winners) on the game-over screen

Good luck on your Math Quest! 🧮🎲`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nPreset: %s\nCreated: %s\n\n%s",
		session.ID, session.PresetName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Screen: %s | Round: %d/%d | Current Player: %d\n",
		state.Screen, state.Round, state.Options.MaxRounds, state.CurrentPlayer))

	if state.DiceValue != 0 {
		result.WriteString(fmt.Sprintf("Dice: %d (not yet moved)\n", state.DiceValue))
	}
	if len(state.LuckyDiceValues) > 0 {
		result.WriteString(fmt.Sprintf("Lucky dice candidates: %v\n", state.LuckyDiceValues))
	}

	// Players
	result.WriteString("\nPlayers:\n")
	for _, p := range state.Players {
		marker := " "
		if p.ID == state.CurrentPlayer && state.Screen == engine.ScreenPlaying {
			marker = "▶"
		}
		result.WriteString(fmt.Sprintf("%s %s: tile %d | score %d | coins %d | streak %d%s\n",
			marker, p.Name, p.Position, p.Score, p.Coins, p.Streak, formatInventory(p.Inventory)))
	}

	// Board strip
	if len(state.Tiles) > 0 {
		result.WriteString("\nBoard:\n")
		result.WriteString(formatBoard(state))
	}

	// Open problem
	if state.MathProblem != nil {
		result.WriteString(fmt.Sprintf("\n❓ Problem (%d pts): %s\n",
			state.MathProblem.Points, state.MathProblem.Question))
		if state.Options.TimerEnabled {
			result.WriteString(fmt.Sprintf("⏱ Time left: %ds\n", state.TimeLeft))
		}
	}

	if state.ShopOpen {
		result.WriteString("\n🛒 Shop is open - buy_item or close_shop\n")
	}

	if state.PendingItemUse != nil {
		result.WriteString(fmt.Sprintf("\n⏳ Pending item use: player %d, %s\n",
			state.PendingItemUse.PlayerID, state.PendingItemUse.ItemType))
	}

	if state.Teleport != nil {
		if state.Teleport.StagedTile >= 0 {
			result.WriteString(fmt.Sprintf("\n🌀 Teleporter active: tile %d staged - confirm or cancel\n",
				state.Teleport.StagedTile))
		} else {
			result.WriteString("\n🌀 Teleporter active: select a destination tile\n")
		}
	}

	// Status
	if state.Screen == engine.ScreenGameOver {
		result.WriteString("\n🏁 GAME OVER\n")
		result.WriteString(formatWinners(state))
	}

	if state.Message != nil {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message.Text))
	}
	if state.Banner != nil {
		result.WriteString(fmt.Sprintf("\nBanner: %s", state.Banner.Text))
	}

	return result.String()
}

// formatBoard renders the ring as two 20-character strips with player
// positions overlaid as digits.
func formatBoard(state *engine.GameState) string {
	chars := make([]string, len(state.Tiles))
	for i, tile := range state.Tiles {
		switch tile.Type {
		case engine.TileCorner:
			chars[i] = "★"
		case engine.TileShop:
			chars[i] = "$"
		case engine.TileObstacle:
			chars[i] = "!"
		default:
			chars[i] = "·"
		}
	}

	// Player digits win over tile glyphs; later players overwrite earlier
	// ones on shared tiles.
	for _, p := range state.Players {
		if p.Position >= 0 && p.Position < len(chars) {
			chars[p.Position] = fmt.Sprintf("%d", p.ID+1)
		}
	}

	var b strings.Builder
	half := len(chars) / 2
	b.WriteString(fmt.Sprintf("%2d  %s\n", 0, strings.Join(chars[:half], "")))
	b.WriteString(fmt.Sprintf("%2d  %s\n", half, strings.Join(chars[half:], "")))
	return b.String()
}

func formatInventory(inventory []engine.PlayerItem) string {
	if len(inventory) == 0 {
		return ""
	}

	parts := make([]string, 0, len(inventory))
	for _, item := range inventory {
		entry := fmt.Sprintf("%s x%d", item.ItemType, item.UsesRemaining)
		if item.IsActive {
			entry += " (active)"
		}
		parts = append(parts, entry)
	}
	return " | items: " + strings.Join(parts, ", ")
}

func formatWinners(state *engine.GameState) string {
	if len(state.Players) == 0 {
		return ""
	}

	best := state.Players[0].Score
	for _, p := range state.Players {
		if p.Score > best {
			best = p.Score
		}
	}

	var winners []string
	for _, p := range state.Players {
		if p.Score == best {
			winners = append(winners, p.Name)
		}
	}

	if len(winners) == 1 {
		return fmt.Sprintf("🏆 Winner: %s with %d points\n", winners[0], best)
	}
	return fmt.Sprintf("🏆 Tied winners (%d points): %s\n", best, strings.Join(winners, ", "))
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Moved player %d: tile %d → %d (%d steps)\n",
		result.PlayerID, result.From, result.To, result.Steps))

	if result.PassedStart {
		b.WriteString(fmt.Sprintf("⭐ Passed Start: +%d points, +%d coins\n",
			engine.PassStartScore, engine.PassStartCoins))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	switch result.Landing {
	case engine.LandingMath:
		b.WriteString("→ A math problem is open: answer_problem\n")
	case engine.LandingSpecial:
		b.WriteString("→ The shop is open: buy_item or close_shop\n")
	default:
		b.WriteString("→ Turn advanced\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatAnswerResult(result *service.AnswerResult) string {
	var b strings.Builder

	if result.Correct {
		b.WriteString(fmt.Sprintf("✓ Correct! +%d points, +%d coins (streak %d)\n",
			result.ScoreDelta, result.CoinDelta, result.Streak))
	} else {
		b.WriteString("✗ Wrong answer")
		if result.ScoreDelta < 0 {
			b.WriteString(fmt.Sprintf(" (%d points)", result.ScoreDelta))
		}
		b.WriteString("\n")
	}

	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	if result.GameOver {
		b.WriteString("🏁 The game is over!\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
