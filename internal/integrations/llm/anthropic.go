package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"backoffice/internal/digest"
)

const (
	summaryMaxTokens  = 400
	summaryMaxEntries = 200
)

const summarySystemPrompt = `You summarize a customer support team's day for a team channel.
Write one short paragraph (at most 4 sentences) in plain text.
Mention notable patterns such as escalations, reopened tickets or one agent carrying most of the load.
Do not list every ticket and do not invent facts that are not in the log.`

// Summarizer writes the optional one-paragraph digest summary.
type Summarizer struct {
	client anthropic.Client
	model  string
	log    zerolog.Logger
}

func NewSummarizer(apiKey, model string, httpClient *http.Client, log zerolog.Logger, opts ...option.RequestOption) *Summarizer {
	base := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		base = append(base, option.WithHTTPClient(httpClient))
	}
	return &Summarizer{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
		log:    log,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, d digest.Digest) (string, error) {
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: summaryMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: summarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(d))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			s.log.Debug().
				Str("model", s.model).
				Int64("tokens_in", message.Usage.InputTokens).
				Int64("tokens_out", message.Usage.OutputTokens).
				Msg("llm digest summary")
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}

// buildSummaryPrompt lists the day's log one line per entry, capped so a
// very busy day cannot blow the context window.
func buildSummaryPrompt(d digest.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Support log for %s (%d entries):\n", d.Day, d.EntryCount())
	written := 0
	for _, sec := range d.Sections {
		fmt.Fprintf(&b, "\nAgent: %s\n", sec.Agent.Name())
		for _, e := range sec.Entries {
			if written == summaryMaxEntries {
				fmt.Fprintf(&b, "\n(%d more entries omitted)\n", d.EntryCount()-written)
				return b.String()
			}
			b.WriteString("- ")
			b.WriteString(digest.FormatLine(e, d.Location))
			b.WriteString("\n")
			written++
		}
	}
	if len(d.Idle) > 0 {
		fmt.Fprintf(&b, "\nAgents with no entries: %d\n", len(d.Idle))
	}
	return b.String()
}
