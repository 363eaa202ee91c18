// Command demo sends one prompt to a running bote gateway and prints
// the streamed exchange to stdout.
//
// Usage:
//
//	demo [-server URL] [-model NAME] [-key KEY] "your prompt"
//
// The gateway API key can also come from BOTE_DEMO_KEY or a .env file.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bote-dev/bote/pkg/api"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", "http://localhost:8080", "gateway base URL")
	model := flag.String("model", "v0-1.5-md", "model to use")
	key := flag.String("key", os.Getenv("BOTE_DEMO_KEY"), "gateway API key")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: demo [-server URL] [-model NAME] [-key KEY] \"your prompt\"")
		os.Exit(2)
	}
	prompt := strings.Join(flag.Args(), " ")

	if err := run(*server, *model, *key, prompt); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(server, model, key, prompt string) error {
	reqBody, err := json.Marshal(api.ChatRequest{
		Model: model,
		Messages: []api.ChatMessage{
			{Role: api.RoleUser, Content: api.TextContent(prompt)},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, server+"/v1/chat", strings.NewReader(string(reqBody)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != nil {
			return fmt.Errorf("%s (HTTP %d)", errResp.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return printStream(resp)
}

// printStream reads the SSE stream and renders each event: text parts as
// plain output, tool calls as name(parameters).
func printStream(resp *http.Response) error {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var event api.StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return fmt.Errorf("parsing event: %w", err)
		}

		switch event.Type {
		case api.EventExchangeCreated:
			if event.Exchange != nil {
				fmt.Fprintf(os.Stderr, "[exchange %s on %s]\n", event.Exchange.ID, event.Exchange.Model)
			}
		case api.EventExchangePart:
			printPart(event.Part)
		case api.EventExchangeCompleted:
			fmt.Println()
			fmt.Fprintln(os.Stderr, "[completed]")
		case api.EventExchangeCancelled:
			fmt.Println()
			fmt.Fprintln(os.Stderr, "[cancelled]")
		}
	}
	return scanner.Err()
}

func printPart(part *api.ContentPart) {
	if part == nil {
		return
	}
	switch part.Type {
	case api.PartTypeText:
		fmt.Print(part.Value)
	case api.PartTypeToolCall:
		fmt.Printf("\n[tool call %s: %s(%s)]\n", part.CallID, part.Name, part.Parameters)
	}
}
