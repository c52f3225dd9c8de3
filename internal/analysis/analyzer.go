package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

// Analyzer turns a repository activity summary into a developer profile.
//
// Two implementations exist: LLMAnalyzer calls the model provider directly
// with a locally configured credential, ProxyAnalyzer posts to a same-origin
// endpoint that holds the credential server-side. Which one runs is decided
// once at startup; both honor the same contract.
type Analyzer interface {
	Analyze(ctx context.Context, username string, summaries []types.RepositorySummary) (*types.DeveloperProfile, error)
}

// Select picks the dispatch mode from configuration: a local credential
// means direct calls, otherwise the same-origin proxy.
func Select(apiKey, baseURL, model, proxyURL string, targetYear int) Analyzer {
	if apiKey != "" {
		return NewLLMAnalyzer(baseURL, apiKey, model, targetYear)
	}
	return NewProxyAnalyzer(proxyURL)
}

const systemInstructionTemplate = `You are an expert developer profiler creating a "%d Year in Code" recap.
Your task is to analyze a user's GitHub repository list specifically for their work in %d.

1. Infer skills (Languages, Frameworks, Tools, Databases, Platforms) strictly from the provided %d data.
2. Calculate a "usageScore" (0-100) for each skill based on frequency in %d.
3. Determine the "%d Vibe/Archetype" (e.g., "Shipping Velocity Specialist", "AI Tinkerer").
4. Write a 2-sentence summary of their %d coding journey.
5. Calculate top language percentages for %d.

Strictly adhere to the JSON response schema.`

func systemInstruction(year int) string {
	return fmt.Sprintf(systemInstructionTemplate, year, year, year, year, year, year, year)
}

// LLMAnalyzer is the direct dispatch path, speaking to the provider's
// OpenAI-compatible chat completion endpoint.
type LLMAnalyzer struct {
	client     *openai.Client
	model      string
	targetYear int
}

func NewLLMAnalyzer(baseURL, apiKey, model string, targetYear int) *LLMAnalyzer {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &LLMAnalyzer{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		targetYear: targetYear,
	}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, username string, summaries []types.RepositorySummary) (*types.DeveloperProfile, error) {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return nil, apperrors.NewAnalysis("failed to encode repository summary", err)
	}

	userPrompt := fmt.Sprintf("Generate a %d Developer Recap for user %q based on these repositories:\n\n%s",
		a.targetYear, username, payload)

	schema := ProfileSchema()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction(a.targetYear)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "developer_profile",
				Schema: &schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeout("analysis timed out; the profile may be too complex or the service is busy", err)
		}
		return nil, apperrors.NewUpstream("AI analysis failed: "+err.Error(), err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewAnalysis("the model returned no choices", nil)
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)
	return DecodeProfile([]byte(content))
}

// ProxyAnalyzer is the fallback dispatch path for deployments without a
// local credential: it posts to a same-origin analysis endpoint and returns
// the same contract.
type ProxyAnalyzer struct {
	baseURL    string
	httpClient *http.Client
}

func NewProxyAnalyzer(baseURL string) *ProxyAnalyzer {
	return &ProxyAnalyzer{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (a *ProxyAnalyzer) Analyze(ctx context.Context, username string, summaries []types.RepositorySummary) (*types.DeveloperProfile, error) {
	reqBody, err := json.Marshal(types.AnalyzeRequest{
		Username:    username,
		RepoSummary: summaries,
	})
	if err != nil {
		return nil, apperrors.NewAnalysis("failed to encode analysis request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/analyze", bytes.NewReader(reqBody))
	if err != nil {
		return nil, apperrors.NewTransport("failed to build analysis request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeout("analysis timed out; the profile may be too complex or the service is busy", err)
		}
		return nil, apperrors.NewTransport("analysis request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransport("failed to read analysis response", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusGatewayTimeout {
			return nil, apperrors.NewTimeout("analysis timed out; the profile may be too complex or the service is busy", nil)
		}
		return nil, apperrors.NewUpstream(proxyErrorMessage(body, resp.StatusCode), nil)
	}

	return DecodeProfile(body)
}

// proxyErrorMessage surfaces the proxy's own error message when it sent one,
// else a generic server error with the status code.
func proxyErrorMessage(body []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("server error %d", status)
}

// stripCodeFences removes markdown code fences that some models wrap around
// JSON even when a JSON response format is requested.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
