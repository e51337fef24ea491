package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bradyshelf/solofoodies-chat-prototype/mcpserver"
)

// solofoodies-mcp exposes a running chatd conversation session as MCP
// tools over stdio. It talks to chatd's HTTP API, so the session it
// drives is the same one other clients observe.

type apiClient struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// openSession opens (or joins) the session for a conversation
func (c *apiClient) openSession(conversationID string) error {
	body, status, err := c.do(http.MethodPost, "/api/conversations/"+conversationID+"/session", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("open session: status %d: %s", status, body)
	}

	var snap struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	c.sessionID = snap.SessionID
	return nil
}

func (c *apiClient) do(method, path string, payload any) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func (c *apiClient) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *apiClient) expectCreated(method, path string, payload any) error {
	body, status, err := c.do(method, path, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("status %d", status)
	}
	return nil
}

func (c *apiClient) resolve(messageID, action string) (bool, error) {
	body, status, err := c.do(http.MethodPost, c.sessionPath("/offers/"+messageID+"/"+action), nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("status %d: %s", status, body)
	}
	var result struct {
		Changed bool `json:"changed"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, err
	}
	return result.Changed, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	baseURL := os.Getenv("CHAT_API_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	conversationID := os.Getenv("CHAT_CONVERSATION_ID")
	if conversationID == "" {
		conversationID = "default"
	}

	client := newAPIClient(baseURL)
	if err := client.openSession(conversationID); err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	fmt.Fprintf(os.Stderr, "[MCP] Session %s open for conversation %s\n", client.sessionID, conversationID)

	callbacks := &mcpserver.Callbacks{
		SendMessage: func(text string) error {
			return client.expectCreated(http.MethodPost, client.sessionPath("/messages"), map[string]string{"text": text})
		},
		SubmitOffer: func(amount string) error {
			return client.expectCreated(http.MethodPost, client.sessionPath("/offers"), map[string]string{"amount": amount})
		},
		AcceptOffer: func(messageID string) (bool, error) {
			return client.resolve(messageID, "accept")
		},
		RejectOffer: func(messageID string) (bool, error) {
			return client.resolve(messageID, "reject")
		},
		GetConversation: func() (string, error) {
			body, status, err := client.do(http.MethodGet, client.sessionPath("/"), nil)
			if err != nil {
				return "", err
			}
			if status != http.StatusOK {
				return "", fmt.Errorf("status %d: %s", status, body)
			}
			return string(body), nil
		},
	}

	server := mcpserver.NewServer(callbacks)
	if err := server.Run(context.Background()); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
