package mcpserver

import (
	"context"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ChatMCPServer exposes the negotiation chat operations as MCP tools, so
// an agent can drive a conversation session the same way the HTTP API does
type ChatMCPServer struct {
	server *mcp.Server
}

// MessageCallback is called when the agent sends a chat message
type MessageCallback func(text string) error

// OfferCallback is called when the agent submits an offer
type OfferCallback func(amount string) error

// ResolveCallback is called when the agent accepts or rejects an offer
type ResolveCallback func(messageID string) (bool, error)

// ConversationCallback returns the current conversation snapshot as JSON
type ConversationCallback func() (string, error)

// Callbacks holds the callback functions for MCP tools
type Callbacks struct {
	SendMessage     MessageCallback
	SubmitOffer     OfferCallback
	AcceptOffer     ResolveCallback
	RejectOffer     ResolveCallback
	GetConversation ConversationCallback
}

var (
	globalCallbacks *Callbacks
	serverMu        sync.Mutex
)

// NewServer creates a new chat MCP server
func NewServer(callbacks *Callbacks) *ChatMCPServer {
	serverMu.Lock()
	defer serverMu.Unlock()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "solofoodies-chat-tools",
		Version: "v1.0.0",
	}, nil)

	s := &ChatMCPServer{server: server}
	globalCallbacks = callbacks
	s.registerTools()
	return s
}

// Run runs the server over stdio until the context is cancelled
func (s *ChatMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools registers all chat-related MCP tools
func (s *ChatMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_send_message",
		Description: "Send a text message in the current collaboration chat. Two automated counterpart replies follow after a short delay.",
	}, handleSendMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_submit_offer",
		Description: "Submit a monetary offer in the current chat. The amount must be a positive number; the counterpart answers with an automated counter-offer.",
	}, handleSubmitOffer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_accept_offer",
		Description: "Accept a pending counter-offer by its message ID.",
	}, handleAcceptOffer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_reject_offer",
		Description: "Reject a pending counter-offer by its message ID.",
	}, handleRejectOffer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_get_conversation",
		Description: "Get the current conversation: messages, offer states and the open offer dialog.",
	}, handleGetConversation)
}

// SendMessageInput is the input for chat_send_message
type SendMessageInput struct {
	Text string `json:"text" jsonschema:"description=The message text to send"`
}

// ToolOutput is the shared success/error output shape
type ToolOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func handleSendMessage(ctx context.Context, req *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, ToolOutput, error) {
	if globalCallbacks == nil || globalCallbacks.SendMessage == nil {
		return nil, ToolOutput{Success: false, Error: "callback not configured"}, nil
	}
	if err := globalCallbacks.SendMessage(input.Text); err != nil {
		return nil, ToolOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, ToolOutput{Success: true}, nil
}

// SubmitOfferInput is the input for chat_submit_offer
type SubmitOfferInput struct {
	Amount string `json:"amount" jsonschema:"description=The offer amount, a positive number such as 100 or 42.5"`
}

func handleSubmitOffer(ctx context.Context, req *mcp.CallToolRequest, input SubmitOfferInput) (*mcp.CallToolResult, ToolOutput, error) {
	if globalCallbacks == nil || globalCallbacks.SubmitOffer == nil {
		return nil, ToolOutput{Success: false, Error: "callback not configured"}, nil
	}
	if err := globalCallbacks.SubmitOffer(input.Amount); err != nil {
		return nil, ToolOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, ToolOutput{Success: true}, nil
}

// ResolveOfferInput is the input for chat_accept_offer and chat_reject_offer
type ResolveOfferInput struct {
	MessageID string `json:"message_id" jsonschema:"description=The ID of the counter-offer message to resolve"`
}

// ResolveOfferOutput reports whether the resolution applied
type ResolveOfferOutput struct {
	Success bool   `json:"success"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

func handleAcceptOffer(ctx context.Context, req *mcp.CallToolRequest, input ResolveOfferInput) (*mcp.CallToolResult, ResolveOfferOutput, error) {
	return resolveOffer(input, func(cb *Callbacks) ResolveCallback { return cb.AcceptOffer })
}

func handleRejectOffer(ctx context.Context, req *mcp.CallToolRequest, input ResolveOfferInput) (*mcp.CallToolResult, ResolveOfferOutput, error) {
	return resolveOffer(input, func(cb *Callbacks) ResolveCallback { return cb.RejectOffer })
}

func resolveOffer(input ResolveOfferInput, pick func(*Callbacks) ResolveCallback) (*mcp.CallToolResult, ResolveOfferOutput, error) {
	if globalCallbacks == nil {
		return nil, ResolveOfferOutput{Error: "callback not configured"}, nil
	}
	cb := pick(globalCallbacks)
	if cb == nil {
		return nil, ResolveOfferOutput{Error: "callback not configured"}, nil
	}
	changed, err := cb(input.MessageID)
	if err != nil {
		return nil, ResolveOfferOutput{Error: err.Error()}, nil
	}
	return nil, ResolveOfferOutput{Success: true, Changed: changed}, nil
}

// GetConversationInput is empty - no input needed
type GetConversationInput struct{}

// GetConversationOutput carries the conversation snapshot as JSON
type GetConversationOutput struct {
	Conversation string `json:"conversation"`
	Error        string `json:"error,omitempty"`
}

func handleGetConversation(ctx context.Context, req *mcp.CallToolRequest, input GetConversationInput) (*mcp.CallToolResult, GetConversationOutput, error) {
	if globalCallbacks == nil || globalCallbacks.GetConversation == nil {
		return nil, GetConversationOutput{Error: "callback not configured"}, nil
	}
	snapshot, err := globalCallbacks.GetConversation()
	if err != nil {
		return nil, GetConversationOutput{Error: err.Error()}, nil
	}
	return nil, GetConversationOutput{Conversation: snapshot}, nil
}
