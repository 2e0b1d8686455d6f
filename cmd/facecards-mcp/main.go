package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeResponse mirrors the POST /scrape/url response.
type scrapeResponse struct {
	Name           string   `json:"name"`
	FaceFilename   *string  `json:"face_filename"`
	Context1       string   `json:"context1"`
	RawDescription string   `json:"raw_description"`
	Source         string   `json:"source"`
	SourceURL      string   `json:"source_url"`
	Warnings       []string `json:"warnings"`
}

// summarizeResponse mirrors the POST /scrape/summarize response.
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func main() {
	apiURL := os.Getenv("FACES_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	apiURL = strings.TrimRight(apiURL, "/")
	// Optional: only needed when the server runs with FACES_AUTH_ENABLED.
	apiKey := os.Getenv("FACES_API_KEY")

	s := server.NewMCPServer(
		"facecards",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_profile",
		mcp.WithDescription("Scrape a social or personal profile page (LinkedIn, X/Twitter, Instagram, Facebook or any site) and return the person's name, a short context line and the stored photo filename."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The profile URL. A missing scheme is treated as https."),
		),
	)
	s.AddTool(scrapeTool, handleScrapeProfile(apiURL, apiKey))

	summarizeTool := mcp.NewTool("summarize_context",
		mcp.WithDescription("Condense a profile description into a short 'how I know them' line. Returns an empty summary when no language model is configured."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The raw bio or headline to condense"),
		),
		mcp.WithString("name",
			mcp.Description("The person's name, used as context for the summary"),
		),
	)
	s.AddTool(summarizeTool, handleSummarize(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a JSON POST to the API and returns the status and body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// apiError extracts the user-facing message from an error body.
func apiError(status int, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return fmt.Sprintf("API returned HTTP %d", status)
}

func handleScrapeProfile(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		status, body, err := apiPost(ctx, client, apiURL, apiKey, "/scrape/url", map[string]string{"url": url})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiError(status, body)), nil
		}

		var resp scrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		return mcp.NewToolResultText(formatProfile(resp)), nil
	}
}

func formatProfile(r scrapeResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", r.Name)
	fmt.Fprintf(&sb, "Source: %s (%s)\n", r.Source, r.SourceURL)
	if r.FaceFilename != nil {
		fmt.Fprintf(&sb, "Photo: %s\n", *r.FaceFilename)
	} else {
		sb.WriteString("Photo: none\n")
	}
	if r.Context1 != "" {
		fmt.Fprintf(&sb, "Context: %s\n", r.Context1)
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}
	return sb.String()
}

func handleSummarize(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		description, err := request.RequireString("description")
		if err != nil {
			return mcp.NewToolResultError("description is required"), nil
		}
		payload := map[string]string{
			"description": description,
			"name":        request.GetString("name", ""),
		}

		status, body, err := apiPost(ctx, client, apiURL, apiKey, "/scrape/summarize", payload)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiError(status, body)), nil
		}

		var resp summarizeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if resp.Summary == "" {
			return mcp.NewToolResultText("No summary available."), nil
		}
		return mcp.NewToolResultText(resp.Summary), nil
	}
}
