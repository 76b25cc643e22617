// Package ai rewrites change descriptions and summarises versions with the
// OpenAI chat completions API. Every call is best-effort: a failure on one
// change leaves that change as it was and never aborts the batch.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/autoscribe-dev/autoscribe/internal/changelog"
	"github.com/autoscribe-dev/autoscribe/internal/logging"
)

const (
	enhanceSystemPrompt   = "You are a helpful assistant that explains code changes."
	summarizeSystemPrompt = "You are a helpful assistant that summarizes software releases."

	// DefaultRequestTimeout bounds a single completion call.
	DefaultRequestTimeout = 60 * time.Second
)

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("AI enhancement is not configured")

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// chatAPI is the subset of *openai.Client the enhancer uses.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Options configures a Client.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, for proxies and compatible servers.
	BaseURL string
	// Concurrency is the number of changes enhanced in parallel; values
	// below one mean sequential.
	Concurrency    int
	RequestTimeout time.Duration
	Log            *logging.Logger
}

// Client implements changelog.Enhancer.
type Client struct {
	api            chatAPI
	model          string
	concurrency    int
	requestTimeout time.Duration
	log            *logging.Logger

	availableOnce sync.Once
	available     bool
}

var _ changelog.Enhancer = (*Client)(nil)

// New creates a Client. Without an API key the client reports itself
// unavailable instead of failing.
func New(opts Options) *Client {
	var api chatAPI
	if opts.APIKey != "" {
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		api = openai.NewClientWithConfig(cfg)
	}
	return newClient(api, opts)
}

func newClient(api chatAPI, opts Options) *Client {
	c := &Client{
		api:            api,
		model:          opts.Model,
		concurrency:    opts.Concurrency,
		requestTimeout: opts.RequestTimeout,
		log:            opts.Log,
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = DefaultRequestTimeout
	}
	if c.model == "" {
		c.model = openai.GPT4oMini
	}
	return c
}

// Available reports whether the API key is set and accepted. The probe runs
// once per Client; later calls return the cached answer.
func (c *Client) Available(ctx context.Context) bool {
	c.availableOnce.Do(func() {
		if c.api == nil {
			c.log.Debugf("[ai] no API key configured")
			return
		}

		ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		if _, err := c.api.ListModels(ctx); err != nil {
			c.log.Warnf("OpenAI API not reachable: %v", err)
			return
		}
		c.available = true
		c.log.Debugf("[ai] OpenAI client ready (model %s)", c.model)
	})
	return c.available
}

// ChangeError records a change that could not be enhanced.
type ChangeError struct {
	Index int
	Hash  string
	Err   error
}

func (e *ChangeError) Error() string {
	hash := e.Hash
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if hash == "" {
		return fmt.Sprintf("change %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("change %d (%s): %v", e.Index, hash, e.Err)
}

func (e *ChangeError) Unwrap() error { return e.Err }

// EnhanceChanges rewrites each change's description. The result always has
// the same length and order as changes; entries that failed are returned
// unchanged and reported in the joined error.
func (c *Client) EnhanceChanges(ctx context.Context, changes []changelog.Change) ([]changelog.Change, error) {
	out := make([]changelog.Change, len(changes))
	copy(out, changes)

	if c.api == nil {
		return out, ErrUnavailable
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(c.concurrency)

	for i, ch := range changes {
		g.Go(func() error {
			desc, err := c.complete(ctx, enhanceSystemPrompt, enhancePrompt(ch))
			if err != nil {
				mu.Lock()
				errs = append(errs, &ChangeError{Index: i, Hash: ch.CommitHash, Err: err})
				mu.Unlock()
				return nil
			}
			out[i] = ch.WithDescription(desc)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		c.log.Debugf("[ai] %d of %d changes not enhanced", len(errs), len(changes))
	}
	return out, errors.Join(errs...)
}

// SummarizeVersion returns v with a generated summary.
func (c *Client) SummarizeVersion(ctx context.Context, v changelog.Version) (changelog.Version, error) {
	if c.api == nil {
		return v, ErrUnavailable
	}

	summary, err := c.complete(ctx, summarizeSystemPrompt, summaryPrompt(v))
	if err != nil {
		return v, fmt.Errorf("summarizing version %s: %w", v.Number, err)
	}
	return v.WithSummary(summary), nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func enhancePrompt(ch changelog.Change) string {
	return "Given the following commit message, please provide a more descriptive " +
		"and user-friendly explanation of the changes:\n\n" +
		"Message: " + ch.CommitMessage + "\n" +
		"Description: " + ch.Description + "\n\n" +
		"Please provide a concise, clear description that explains the " +
		"purpose and impact of this change."
}

func summaryPrompt(v changelog.Version) string {
	var changes strings.Builder
	for _, cat := range v.Categories {
		if len(cat.Changes) == 0 {
			continue
		}
		changes.WriteString("\n" + string(cat.Name) + ":\n")
		for _, ch := range cat.Changes {
			changes.WriteString("- " + ch.Description + "\n")
		}
	}

	return "Please provide a concise summary of the following changes for a release:\n\n" +
		"Version: " + v.Number + "\n" +
		"Changes:" + changes.String() + "\n\n" +
		"Please provide a high-level overview that captures the main themes " +
		"and significant changes in this release."
}
