package souschef

import (
	"bytes"
	"context"
	_ "embed"
	"log"
	"text/template"
	"time"

	"mise-server/internal/clipper"
	"mise-server/internal/llm"
	"mise-server/internal/recipe"
	"mise-server/internal/shared"

	"github.com/go-playground/validator/v10"
)

//go:embed prompts/link.md
var linkPrompt string

//go:embed prompts/roulette.md
var roulettePrompt string

//go:embed prompts/custom.md
var customPrompt string

var (
	linkTmpl     = template.Must(template.New("link").Parse(linkPrompt))
	rouletteTmpl = template.Must(template.New("roulette").Parse(roulettePrompt))
	customTmpl   = template.Must(template.New("custom").Parse(customPrompt))
)

// Pipeline turns an ingestion request into a validated recipe: render the
// prompt, make one call across the LLM boundary, and reduce the untrusted
// reply to a recipe record. Failures are typed (ValidationError,
// TransportError, ParseError) and never retried automatically. The result is
// not persisted; persistence happens only when the caller confirms it.
type Pipeline struct {
	textGen  llm.TextGenerator
	clip     *clipper.Clipper
	validate *validator.Validate
}

// New creates a Pipeline. clip may be nil to disable page-text enrichment of
// link imports.
func New(textGen llm.TextGenerator, clip *clipper.Clipper) *Pipeline {
	return &Pipeline{
		textGen:  textGen,
		clip:     clip,
		validate: validator.New(),
	}
}

// GenerateFromLink imports a recipe from a URL. When the page can be fetched
// its cleaned text rides along in the prompt; otherwise the model only gets
// the URL.
func (p *Pipeline) GenerateFromLink(ctx context.Context, req LinkImportRequest) (*recipe.Recipe, shared.GenerationMeta, error) {
	if err := checkRequest(p.validate, req); err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceLink)}, err
	}

	pageText := ""
	if p.clip != nil {
		text, err := p.clip.PageText(ctx, req.URL)
		if err != nil {
			log.Printf("Warning: failed to fetch %s for link import, prompting with URL only: %v", req.URL, err)
		} else {
			pageText = text
		}
	}

	prompt, err := renderPrompt(linkTmpl, map[string]string{"URL": req.URL, "PageText": pageText})
	if err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceLink)}, err
	}

	rec, meta, err := p.run(ctx, SurfaceLink, prompt)
	if err != nil {
		return nil, meta, err
	}

	// The source link is ground truth from the request, whatever the model
	// echoed back.
	rec.Link = req.URL
	return rec, meta, nil
}

// GenerateRoulette creates a recipe from the fixed parameter set.
func (p *Pipeline) GenerateRoulette(ctx context.Context, req RouletteRequest) (*recipe.Recipe, shared.GenerationMeta, error) {
	if err := checkRequest(p.validate, req); err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceRoulette)}, err
	}

	prompt, err := renderPrompt(rouletteTmpl, req)
	if err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceRoulette)}, err
	}

	rec, meta, err := p.run(ctx, SurfaceRoulette, prompt)
	if err != nil {
		return nil, meta, err
	}

	// Generated recipes have no verifiable source; drop anything fabricated.
	rec.Link = ""
	return rec, meta, nil
}

// GenerateCustom creates a recipe from a free-text prompt.
func (p *Pipeline) GenerateCustom(ctx context.Context, req CustomRequest) (*recipe.Recipe, shared.GenerationMeta, error) {
	if err := checkRequest(p.validate, req); err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceCustom)}, err
	}

	prompt, err := renderPrompt(customTmpl, req)
	if err != nil {
		return nil, shared.GenerationMeta{Surface: string(SurfaceCustom)}, err
	}

	rec, meta, err := p.run(ctx, SurfaceCustom, prompt)
	if err != nil {
		return nil, meta, err
	}

	rec.Link = ""
	return rec, meta, nil
}

// run makes the single outbound LLM call for an attempt and decodes the
// reply. One attempt, no retries: a failure surfaces to the caller, who may
// start a fresh attempt.
func (p *Pipeline) run(ctx context.Context, surface Surface, prompt string) (*recipe.Recipe, shared.GenerationMeta, error) {
	start := time.Now()
	meta := shared.GenerationMeta{Surface: string(surface)}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, &TransportError{Err: err}
	}
	meta.Usage = resp.Usage

	rec, err := decodeRecipe(resp.Content)
	if err != nil {
		return nil, meta, err
	}
	return rec, meta, nil
}

func renderPrompt(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
