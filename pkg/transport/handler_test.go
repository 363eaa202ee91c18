package transport

import (
	"context"
	"testing"

	"github.com/bote-dev/bote/pkg/api"
)

func TestChatStreamerFuncAdapter(t *testing.T) {
	called := false
	var receivedReq *api.ChatRequest

	fn := ChatStreamerFunc(func(ctx context.Context, req *api.ChatRequest, w EventWriter) error {
		called = true
		receivedReq = req
		return nil
	})

	// Verify it satisfies the interface.
	var _ ChatStreamer = fn

	req := &api.ChatRequest{Model: "v0-1.5-md"}
	err := fn.StreamChat(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected function to be called")
	}
	if receivedReq.Model != "v0-1.5-md" {
		t.Errorf("expected model %q, got %q", "v0-1.5-md", receivedReq.Model)
	}
}

func TestChatStreamerFuncReturnsError(t *testing.T) {
	fn := ChatStreamerFunc(func(ctx context.Context, req *api.ChatRequest, w EventWriter) error {
		return api.NewServerError("test error")
	})

	err := fn.StreamChat(context.Background(), &api.ChatRequest{}, nil)
	if err == nil {
		t.Fatal("expected error but got nil")
	}

	apiErr, ok := err.(*api.APIError)
	if !ok {
		t.Fatalf("expected *api.APIError, got %T", err)
	}
	if apiErr.Type != api.ErrorTypeServerError {
		t.Errorf("expected error type %q, got %q", api.ErrorTypeServerError, apiErr.Type)
	}
}

func TestInterfaceSatisfaction(t *testing.T) {
	// Compile-time interface checks.
	var _ ChatStreamer = ChatStreamerFunc(nil)
	var _ ChatStreamer = (*mockChatStreamer)(nil)
	var _ ModelLister = (*mockLister)(nil)
	var _ TokenCounter = (*mockCounter)(nil)
}

// Mock implementations for compile-time verification.
type mockChatStreamer struct{}

func (m *mockChatStreamer) StreamChat(ctx context.Context, req *api.ChatRequest, w EventWriter) error {
	return nil
}

type mockLister struct{}

func (m *mockLister) ListModels(_ context.Context) api.ModelList { return api.ModelList{} }

type mockCounter struct{}

func (m *mockCounter) CountTokens(_ context.Context, _ *api.TokenCountRequest) (*api.TokenCountResponse, error) {
	return nil, nil
}
