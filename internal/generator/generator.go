// Package generator turns a keyword and brand settings into an HTML article
// using an optional research call followed by a single completion call.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"seo-writer/internal/domain"
)

// ErrGeneration wraps every failure of the completion stage.
var ErrGeneration = errors.New("error generating article")

// Result is the outcome of a successful generation.
type Result struct {
	Content     string
	HTMLContent string
	Research    string
}

// Generator produces an article for keyword styled by settings.
type Generator interface {
	Generate(ctx context.Context, settings domain.Settings, keyword string) (*Result, error)
}

// Pipeline runs the research stage (when enabled) and then the writer.
// Stages are sequential: the research text feeds the prompt.
type Pipeline struct {
	researcher Researcher
	writer     Writer
	logger     *logrus.Logger
}

// NewPipeline builds a pipeline. A nil researcher disables the research stage.
func NewPipeline(researcher Researcher, writer Writer, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}
	return &Pipeline{researcher: researcher, writer: writer, logger: logger}
}

func (p *Pipeline) Generate(ctx context.Context, settings domain.Settings, keyword string) (*Result, error) {
	research := p.research(ctx, keyword)

	prompt, err := BuildPrompt(settings, keyword, research)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	text, err := p.writer.Write(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &Result{
		Content:     text,
		HTMLContent: text,
		Research:    research,
	}, nil
}

// research never fails: any error degrades to an empty context.
func (p *Pipeline) research(ctx context.Context, keyword string) string {
	if p.researcher == nil {
		return ""
	}
	text, err := p.researcher.Research(ctx, keyword)
	if err != nil {
		p.logger.WithError(err).WithField("keyword", keyword).Warn("research stage failed, continuing without context")
		return ""
	}
	return text
}

// Options configures the HTTP-backed pipeline built by New.
type Options struct {
	WriterAPIKey string
	WriterModel  string
	MaxTokens    int
	WriterURL    string

	UseResearch    bool
	ResearchAPIKey string
	ResearchModel  string
	ResearchURL    string

	// Timeout bounds each upstream call; zero means none.
	Timeout time.Duration
}

// New builds the pipeline over the messages and research APIs. The research
// client is only created when opts.UseResearch is set.
func New(opts Options, logger *logrus.Logger) *Pipeline {
	client := &http.Client{Timeout: opts.Timeout}
	writer := NewMessagesWriter(opts.WriterAPIKey, opts.WriterModel, opts.MaxTokens, opts.WriterURL, client)

	var researcher Researcher
	if opts.UseResearch {
		researcher = NewChatResearcher(opts.ResearchAPIKey, opts.ResearchModel, opts.ResearchURL, client)
	}
	return NewPipeline(researcher, writer, logger)
}

var _ Generator = (*Pipeline)(nil)
