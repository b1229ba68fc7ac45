package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/tracing"
)

const replyContextLimit = 500

type aiService struct {
	OpenAIConfig *config.OpenAIConfig
}

func NewAIService(config *config.OpenAIConfig) interfaces.AIService {
	return &aiService{
		OpenAIConfig: config,
	}
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *aiService) GenerateEmailContent(ctx context.Context, topic string) (*dto.EmailContent, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateEmailContent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("topic", topic)

	prompt := fmt.Sprintf(
		`Write a short, casual business email about %s, as if written between two colleagues who know each other. Keep it under 100 words. Respond with JSON containing exactly two keys: "subject" and "body".`,
		topic)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var content dto.EmailContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to unmarshal generated content")
	}
	if content.Subject == "" || content.Body == "" {
		err = fmt.Errorf("generated content is incomplete")
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &content, nil
}

func (s *aiService) GenerateReplyContent(ctx context.Context, originalBody string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateReplyContent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if len(originalBody) > replyContextLimit {
		originalBody = originalBody[:replyContextLimit]
	}

	prompt := fmt.Sprintf(
		`Write a short, friendly reply to the following email. Keep it under 60 words and do not include a subject line. Respond with JSON containing exactly one key: "body".

Email:
%s`, originalBody)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	var reply struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to unmarshal generated reply")
	}
	if reply.Body == "" {
		err = fmt.Errorf("generated reply is empty")
		tracing.TraceErr(span, err)
		return "", err
	}

	return reply.Body, nil
}

func (s *aiService) complete(ctx context.Context, prompt string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.complete")
	defer span.Finish()

	request := chatCompletionRequest{
		Model: s.OpenAIConfig.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write natural, human-sounding emails. Always respond with valid JSON."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    0.9,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.OpenAIConfig.Url+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", "Bearer "+s.OpenAIConfig.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 60 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return "", err
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.TraceErr(span, err)
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(response.Choices) == 0 {
		err = fmt.Errorf("completion response contains no choices")
		tracing.TraceErr(span, err)
		return "", err
	}

	return response.Choices[0].Message.Content, nil
}
