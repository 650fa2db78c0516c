package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ozytarget/invozy-backend/internal/domain"
)

// ErrDraftingUnavailable is what callers see for any completion failure; the
// underlying cause goes to the log only.
var ErrDraftingUnavailable = errors.New("could not generate suggestion")

// DraftingService wraps the text-completion provider used to pre-fill
// pricing, descriptions, and work orders.
type DraftingService struct {
	Client *openai.Client
	Model  string
	Logger *slog.Logger
}

func NewDraftingService(apiKey, model string, logger *slog.Logger) *DraftingService {
	if apiKey == "" {
		return nil
	}
	return &DraftingService{
		Client: openai.NewClient(apiKey),
		Model:  model,
		Logger: logger,
	}
}

type PricingRequest struct {
	Description    string
	CurrentPricing string
	PastProjects   string
}

type PricingSuggestion struct {
	SuggestedPrice     int64  `json:"suggested_price_cents"`
	RefinedDescription string `json:"refined_description"`
	UpsellText         string `json:"upsell_text"`
}

func (s *DraftingService) SuggestPricing(ctx context.Context, in PricingRequest) (*PricingSuggestion, error) {
	var b strings.Builder
	b.WriteString("You are a pricing assistant for a small contracting business.\n")
	b.WriteString("Given the project below, respond with JSON containing suggested_price_cents (integer), refined_description and upsell_text.\n\n")
	b.WriteString("Project description:\n" + in.Description + "\n")
	if in.CurrentPricing != "" {
		b.WriteString("\nCurrent pricing:\n" + in.CurrentPricing + "\n")
	}
	if in.PastProjects != "" {
		b.WriteString("\nComparable past projects:\n" + in.PastProjects + "\n")
	}

	var out PricingSuggestion
	if err := s.complete(ctx, b.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type WorkOrderRequest struct {
	Title       string
	Description string
	LineItems   []domain.LineItem
}

type WorkOrder struct {
	Tasks     []string `json:"tasks"`
	Materials []string `json:"materials"`
	Tools     []string `json:"tools"`
}

// WorkOrder builds a task/material/tool breakdown from a document's project
// content. Prices are not sent to the provider.
func (s *DraftingService) WorkOrder(ctx context.Context, in WorkOrderRequest) (*WorkOrder, error) {
	var b strings.Builder
	b.WriteString("You are a site-planning assistant for a small contracting business.\n")
	b.WriteString("Given the project below, respond with JSON containing tasks, materials and tools, each a list of strings.\n\n")
	b.WriteString("Project: " + in.Title + "\n")
	if in.Description != "" {
		b.WriteString("Description: " + in.Description + "\n")
	}
	if len(in.LineItems) > 0 {
		b.WriteString("Work items:\n")
		for _, it := range in.LineItems {
			fmt.Fprintf(&b, "- %s (qty %.2f)\n", it.Description, it.Quantity)
		}
	}

	var out WorkOrder
	if err := s.complete(ctx, b.String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DraftingService) complete(ctx context.Context, prompt string, out any) error {
	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.Model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		s.Logger.Error("chat completion failed", "err", err)
		return ErrDraftingUnavailable
	}
	if len(resp.Choices) == 0 {
		s.Logger.Error("chat completion returned no choices")
		return ErrDraftingUnavailable
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		s.Logger.Error("chat completion returned malformed JSON", "err", err)
		return ErrDraftingUnavailable
	}
	return nil
}
