package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"devisflow/internal/cost"
	"devisflow/internal/csvexport"
	"devisflow/internal/domain"
	"devisflow/internal/jsonrepair"
	"devisflow/internal/pdftext"
	"devisflow/internal/port"
	"devisflow/internal/progress"
	"devisflow/internal/prompt"
	"devisflow/internal/record"
)

// demoText replaces unreadable or off-topic documents in demo mode.
const demoText = "MATELAS 1 PIÈCE - MOUSSE RAINURÉE 7 ZONES 140x190 Mme Gauche\n" +
	"MATELAS 1 PIÈCE - LATEX NATUREL 160x200 Mr Droit"

var bedding = regexp.MustCompile(`(?i)matelas|sommier|latex|mousse|dimensions|fermeté`)

// Tracker routes the progress of one submission. Every field is optional.
type Tracker struct {
	Observer progress.Observer
	Logs     *progress.LogBook
	// OnTimeline is called with each file's timeline before its first stage starts.
	OnTimeline func(*progress.Timeline)
}

// ExtractionOptions holds the optional collaborators of ExtractionService.
type ExtractionOptions struct {
	// Storage archives uploaded PDFs when set.
	Storage port.ObjectStorage
	Bucket  string
	// DemoMode substitutes sample text for unreadable documents.
	DemoMode bool
}

// ExtractionService runs the PDF to structured record pipeline.
type ExtractionService interface {
	ProcessBatch(ctx context.Context, req domain.ExtractionRequest, tr Tracker) (*domain.BatchResult, error)
	Summarize(ctx context.Context, req domain.SummaryRequest, tr Tracker) (*domain.SummaryResult, error)
}

type extractionService struct {
	gateway     port.LLMGateway
	extractor   port.TextExtractor
	credentials port.CredentialStore
	prompts     *prompt.Builder
	costs       *cost.Calculator
	opts        ExtractionOptions
	log         *zap.Logger
}

// NewExtractionService creates a new ExtractionService implementation.
// credentials may be nil, in which case only request keys are used.
func NewExtractionService(
	gateway port.LLMGateway,
	extractor port.TextExtractor,
	credentials port.CredentialStore,
	prompts *prompt.Builder,
	costs *cost.Calculator,
	opts ExtractionOptions,
) ExtractionService {
	if prompts == nil {
		prompts = prompt.NewBuilder(0)
	}
	if costs == nil {
		costs = cost.NewCalculator(cost.DefaultRates())
	}
	return &extractionService{
		gateway:     gateway,
		extractor:   extractor,
		credentials: credentials,
		prompts:     prompts,
		costs:       costs,
		opts:        opts,
		log:         zap.L().Named("extraction"),
	}
}

// ProcessBatch runs every file concurrently. Only request-level problems
// return an error; per-file failures land in BatchResult.Errors.
func (s *extractionService) ProcessBatch(ctx context.Context, req domain.ExtractionRequest, tr Tracker) (*domain.BatchResult, error) {
	if len(req.Files) == 0 {
		return nil, domain.ErrNoFiles
	}
	if req.Enrich {
		if _, err := s.gateway.RequiresKey(req.Provider); err != nil {
			return nil, err
		}
	}
	logs := tr.logs()
	logs.Infof("Batch %s: %d file(s), provider %s, enrich %t", req.RequestID, len(req.Files), req.Provider, req.Enrich)

	results := make([]*domain.ExtractionResult, len(req.Files))
	failures := make([]error, len(req.Files))

	var g errgroup.Group
	for i := range req.Files {
		file := req.Files[i]
		if file.Name == "" {
			file.Name = fmt.Sprintf("file_%d.pdf", i)
		}
		tl := progress.NewTimeline(file.Name, tr.Observer)
		if tr.OnTimeline != nil {
			tr.OnTimeline(tl)
		}
		g.Go(func() error {
			results[i], failures[i] = s.processFile(ctx, req, file, tl, logs)
			return nil
		})
	}
	_ = g.Wait()

	batch := &domain.BatchResult{Results: []domain.ExtractionResult{}}
	for i := range req.Files {
		if failures[i] != nil {
			batch.Errors = append(batch.Errors, failures[i].Error())
			continue
		}
		batch.Results = append(batch.Results, *results[i])
	}
	logs.Infof("Batch %s finished: %d succeeded, %d failed", req.RequestID, len(batch.Results), len(batch.Errors))
	return batch, nil
}

// processFile runs one file through prepare, parse, analyze and finalize.
// finalize is settled here and nowhere else.
func (s *extractionService) processFile(ctx context.Context, req domain.ExtractionRequest, file domain.UploadedFile, tl *progress.Timeline, logs *progress.LogBook) (res *domain.ExtractionResult, err error) {
	st := stepper{tl: tl, logs: logs, log: s.log}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("pipeline panic", zap.String("file", file.Name), zap.Any("panic", r))
			res, err = nil, fmt.Errorf("unexpected error processing %s: %v", file.Name, r)
		}
		st.finish(err)
		if err != nil {
			logs.Errorf("%s: %v", file.Name, err)
			return
		}
		res.Steps = tl.Snapshot()
	}()

	st.start(domain.StagePrepare)
	if !strings.EqualFold(filepath.Ext(file.Name), ".pdf") {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotPDF, file.Name)
	}
	s.archive(ctx, req, file, logs)
	st.complete(domain.StagePrepare)

	st.start(domain.StageParse)
	text := s.extractor.ExtractText(ctx, file.Data)
	if text == "" {
		logs.Warnf("%s: no text could be extracted", file.Name)
	}
	if s.opts.DemoMode && (strings.TrimSpace(text) == "" || !bedding.MatchString(text)) {
		logs.Warnf("%s: demo mode, using sample text instead of the document", file.Name)
		text = demoText
	}
	st.complete(domain.StageParse)

	res = &domain.ExtractionResult{
		Filename: file.Name,
		Stats:    pdftext.Stats(text),
		Text:     text,
		Cost:     domain.CostEstimate{Currency: s.costs.Currency()},
		Data:     map[string]any{},
		Client:   map[string]any{},
		Articles: []any{},
	}

	st.start(domain.StageAnalyze)
	if req.Enrich {
		if err := s.analyze(ctx, req, file.Name, text, res, logs); err != nil {
			return nil, err
		}
	} else {
		logs.Debugf("%s: LLM enrichment disabled", file.Name)
	}
	st.complete(domain.StageAnalyze)

	return res, nil
}

func (s *extractionService) analyze(ctx context.Context, req domain.ExtractionRequest, name, text string, res *domain.ExtractionResult, logs *progress.LogBook) error {
	apiKey := s.resolveKey(ctx, req.UserID, req.Provider, req.APIKey)

	var extraction, summary *domain.Completion
	var g errgroup.Group
	g.Go(func() error {
		c, err := s.gateway.Invoke(ctx, req.Provider, s.prompts.Extraction(text).Messages(), apiKey)
		if err != nil {
			return fmt.Errorf("%s: extraction call to %s failed: %w", name, req.Provider, err)
		}
		extraction = c
		return nil
	})
	if req.WithSummary {
		g.Go(func() error {
			c, err := s.gateway.Invoke(ctx, req.Provider, s.prompts.Summary(text).Messages(), apiKey)
			if err != nil {
				return fmt.Errorf("%s: summary call to %s failed: %w", name, req.Provider, err)
			}
			summary = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	raw := extraction.Content
	res.LLMRaw = &raw
	last := extraction

	data, parseErr := jsonrepair.ParseObject(raw)
	if parseErr != nil {
		logs.Warnf("%s: LLM response is not valid JSON", name)
		res.ParseError = parseErr.Error()
		data = map[string]any{}
	}

	if summary != nil {
		last = summary
		if overlay, err := jsonrepair.ParseObject(summary.Content); err == nil {
			data = record.Merge(data, overlay)
		} else {
			res.Summary = summary.Content
		}
	}

	if parseErr == nil || len(data) > 0 {
		data = record.Normalize(data)
		res.SchemaWarnings = record.Validate(data)
		if len(res.SchemaWarnings) > 0 {
			logs.Warnf("%s: %d schema warning(s)", name, len(res.SchemaWarnings))
		}
	}
	res.Data = data
	res.Client = record.Client(data)
	res.Articles = record.Articles(data)

	model := last.Model
	res.Model = &model
	res.Usage = last.Usage
	res.Cost = s.costs.Estimate(last.Usage, model)
	logs.Infof("%s: analyzed with %s (%d article(s))", name, model, len(res.Articles))
	return nil
}

// resolveKey returns the request key, else the stored key when the provider
// needs one. A failing lookup yields "" so the gateway reports the missing key.
func (s *extractionService) resolveKey(ctx context.Context, userID string, provider domain.ProviderID, requestKey string) string {
	if requestKey != "" || s.credentials == nil {
		return requestKey
	}
	need, err := s.gateway.RequiresKey(provider)
	if err != nil || !need {
		return ""
	}
	key, err := s.credentials.APIKey(ctx, userID, provider)
	if err != nil {
		s.log.Warn("credential lookup failed", zap.String("provider", string(provider)), zap.Error(err))
		return ""
	}
	return key
}

func (s *extractionService) archive(ctx context.Context, req domain.ExtractionRequest, file domain.UploadedFile, logs *progress.LogBook) {
	if s.opts.Storage == nil {
		return
	}
	_, err := s.opts.Storage.Upload(ctx, port.UploadInput{
		Bucket:      s.opts.Bucket,
		Key:         ArchiveKey(req.UserID, req.RequestID, file.Name),
		Body:        bytes.NewReader(file.Data),
		ContentType: "application/pdf",
		Size:        int64(len(file.Data)),
	})
	if err != nil {
		logs.Warnf("%s: archive upload failed: %v", file.Name, err)
	}
}

// ArchiveKey returns uploads/<user>/<request>/<file> with a sanitized file
// name.
func ArchiveKey(userID, requestID, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return path.Join("uploads", userID, requestID, csvexport.SanitizeFilename(base)+".pdf")
}

// Summarize produces a business digest of a single file with one gateway
// call.
func (s *extractionService) Summarize(ctx context.Context, req domain.SummaryRequest, tr Tracker) (result *domain.SummaryResult, err error) {
	if req.Provider == "" {
		return nil, domain.ErrMissingProvider
	}
	if _, err := s.gateway.RequiresKey(req.Provider); err != nil {
		return nil, err
	}
	logs := tr.logs()
	name := req.File.Name
	if name == "" {
		name = "document.pdf"
	}
	tl := progress.NewTimeline(name, tr.Observer)
	if tr.OnTimeline != nil {
		tr.OnTimeline(tl)
	}
	st := stepper{tl: tl, logs: logs, log: s.log}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("summary panic", zap.String("file", name), zap.Any("panic", r))
			result, err = nil, fmt.Errorf("unexpected error summarizing %s: %v", name, r)
		}
		st.finish(err)
		if err != nil {
			logs.Errorf("%s: %v", name, err)
			return
		}
		result.Steps = tl.Snapshot()
	}()

	st.start(domain.StagePrepare)
	st.complete(domain.StagePrepare)

	st.start(domain.StageParse)
	text := s.prompts.Clip(s.extractor.ExtractText(ctx, req.File.Data))
	logs.Debugf("%s: extracted %d character(s)", name, utf8.RuneCountInString(text))
	st.complete(domain.StageParse)

	st.start(domain.StageAnalyze)
	p := s.prompts.Summary(text)
	apiKey := s.resolveKey(ctx, req.UserID, req.Provider, req.APIKey)
	c, err := s.gateway.Invoke(ctx, req.Provider, p.Messages(), apiKey)
	if err != nil {
		return nil, fmt.Errorf("summary call to %s failed: %w", req.Provider, err)
	}
	st.complete(domain.StageAnalyze)

	messages := append(p.Messages(), domain.ChatMessage{Role: "assistant", Content: c.Content})
	return &domain.SummaryResult{
		Summary:     c.Content,
		Messages:    messages,
		Usage:       c.Usage,
		Model:       c.Model,
		Cost:        s.costs.Estimate(c.Usage, c.Model),
		CommandData: domain.CommandData{ExtractedTextLength: utf8.RuneCountInString(text)},
	}, nil
}

func (t Tracker) logs() *progress.LogBook {
	if t.Logs != nil {
		return t.Logs
	}
	return progress.NewLogBook(progress.DefaultLogCapacity, nil)
}

// stepper drives a timeline and mirrors each transition to the log book.
type stepper struct {
	tl   *progress.Timeline
	logs *progress.LogBook
	log  *zap.Logger
}

func (st stepper) start(stage domain.StageID) {
	if err := st.tl.Start(stage); err != nil {
		st.log.Error("timeline start", zap.String("stage", string(stage)), zap.Error(err))
	}
	st.logs.Infof("%s: start %s", st.tl.File(), stage)
}

func (st stepper) complete(stage domain.StageID) {
	if err := st.tl.Complete(stage); err != nil {
		st.log.Error("timeline complete", zap.String("stage", string(stage)), zap.Error(err))
	}
	st.logs.Infof("%s: done %s", st.tl.File(), stage)
}

func (st stepper) finish(outcome error) {
	failed, _ := st.tl.Running()
	if err := st.tl.Finish(outcome); err != nil {
		st.log.Error("timeline finish", zap.Error(err))
	}
	if outcome != nil {
		if errors.Is(outcome, context.Canceled) {
			st.logs.Warnf("%s: canceled during %s", st.tl.File(), failed)
			return
		}
		st.logs.Errorf("%s: error in %s", st.tl.File(), failed)
		return
	}
	st.logs.Infof("%s: done %s", st.tl.File(), domain.StageFinalize)
}
