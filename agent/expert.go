package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// chatSession is the part of genai.Chat an Expert talks to.
type chatSession interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

// maxCalls bounds the function calls answered for a single question.
const maxCalls = 8

// Expert represent a chat with a business expert.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        chatSession
}

// Start opens the chat session of e.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("starting %s chat: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// Started reports whether the chat session is open.
func (e *Expert) Started() bool { return e.chat != nil }

// Ask sends parts to the expert, answering its function calls through the
// Library until it replies with content.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from expert %s", e.Name)
		}

		var calls []*genai.FunctionCall
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, p.FunctionCall)
			}
		}
		if len(calls) == 0 {
			return resp.Candidates[0].Content, nil
		}
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}

		// every call is answered in the next message.
		parts = parts[:0:0]
		for _, call := range calls {
			parts = append(parts, &genai.Part{FunctionResponse: e.Library(ctx, call)})
		}
	}
	return nil, fmt.Errorf("expert %s made more than %d function calls", e.Name, maxCalls)
}
