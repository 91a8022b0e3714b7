package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ordercheck/internal/align"
	"ordercheck/internal/classify"
	"ordercheck/internal/compare"
	"ordercheck/internal/config"
	"ordercheck/internal/domain"
	"ordercheck/internal/port"
	"ordercheck/internal/render"
	"ordercheck/internal/report"
	"ordercheck/internal/vocabulary"
)

// DocumentInput is one supplied document.
type DocumentInput struct {
	Name   string
	Format domain.Format // empty means detect
	Data   []byte
}

// CompareInput is the DTO for one comparison run. OA and PO are required.
type CompareInput struct {
	OA         *DocumentInput
	PO         *DocumentInput
	CustomerPO *DocumentInput
	Datasheet  *DocumentInput
	// Vocabulary overrides the service vocabulary for this run when set.
	Vocabulary *vocabulary.Vocabulary
	Summarize  bool
}

// ComparisonResult is everything a run produces.
type ComparisonResult struct {
	RunID  string
	Report *domain.Report
	// Secondary compares the PO against the customer PO. Nil when no customer PO was given.
	Secondary *domain.Report
	Texts     []port.FilteredText
	Summary   *port.SummaryOutput
}

// Reports returns the primary report followed by the secondary one when present.
func (r *ComparisonResult) Reports() []*domain.Report {
	out := []*domain.Report{r.Report}
	if r.Secondary != nil {
		out = append(out, r.Secondary)
	}
	return out
}

// Settings holds the immutable comparison parameters of a service.
type Settings struct {
	Vocabulary      *vocabulary.Vocabulary
	Registry        *compare.Registry
	Tolerance       decimal.Decimal
	AlignmentWindow int
	RunTimeout      time.Duration
}

// SettingsFromConfig builds Settings from cfg and an already loaded vocabulary.
func SettingsFromConfig(cfg *config.Config, vocab *vocabulary.Vocabulary) Settings {
	return Settings{
		Vocabulary:      vocab,
		Registry:        compare.DefaultRegistry(cfg.Compare.POPrefixDelimiter),
		Tolerance:       cfg.Compare.Tolerance(),
		AlignmentWindow: cfg.Compare.AlignmentWindow,
		RunTimeout:      cfg.RunTimeout(),
	}
}

// ComparisonService runs the OA versus PO pipeline.
type ComparisonService interface {
	Compare(ctx context.Context, input *CompareInput) (*ComparisonResult, error)
}

type comparisonService struct {
	extractor  port.TextExtractor
	summarizer port.Summarizer // nil when summarizing is disabled
	settings   Settings
	engine     *compare.Engine
	aligner    *align.Aligner
	tracer     trace.Tracer
	log        *logrus.Logger
}

// NewComparisonService creates a new ComparisonService implementation. A nil tracer
// uses the global provider.
func NewComparisonService(
	extractor port.TextExtractor,
	summarizer port.Summarizer,
	settings Settings,
	tracer trace.Tracer,
	log *logrus.Logger,
) ComparisonService {
	if settings.Vocabulary == nil {
		settings.Vocabulary = vocabulary.Default()
	}
	if settings.Registry == nil {
		settings.Registry = compare.DefaultRegistry("/")
	}
	if tracer == nil {
		tracer = otel.Tracer("ordercheck/service")
	}
	return &comparisonService{
		extractor:  extractor,
		summarizer: summarizer,
		settings:   settings,
		engine:     compare.NewEngine(settings.Registry, settings.Tolerance),
		aligner:    align.NewAligner(settings.AlignmentWindow),
		tracer:     tracer,
		log:        log,
	}
}

// supplied pairs a role with its optional input.
type supplied struct {
	role  domain.DocumentRole
	input *DocumentInput
}

func (s *comparisonService) Compare(ctx context.Context, input *CompareInput) (*ComparisonResult, error) {
	if input.OA == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingDocument, domain.RoleOA.Label())
	}
	if input.PO == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingDocument, domain.RolePO.Label())
	}

	runID := uuid.New().String()
	if s.settings.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.RunTimeout)
		defer cancel()
	}
	ctx, span := s.tracer.Start(ctx, "comparison.Compare", trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	log := s.log.WithField("run_id", runID)
	start := time.Now()

	vocab := s.settings.Vocabulary
	if input.Vocabulary != nil {
		vocab = input.Vocabulary
	}
	classifier := classify.New(vocab)

	docs := []supplied{
		{domain.RoleOA, input.OA},
		{domain.RolePO, input.PO},
		{domain.RoleCustomerPO, input.CustomerPO},
		{domain.RoleDatasheet, input.Datasheet},
	}

	result := &ComparisonResult{RunID: runID}
	classified := make(map[domain.DocumentRole]*classify.Result)
	var warnings []domain.Warning

	for _, d := range docs {
		if d.input == nil {
			continue
		}
		res, docWarnings, err := s.extractAndClassify(ctx, classifier, d.role, d.input, log)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "extraction failed")
			return nil, err
		}
		classified[d.role] = res
		warnings = append(warnings, docWarnings...)
		result.Texts = append(result.Texts, port.FilteredText{Role: d.role, Name: res.Name, Lines: res.Texts()})
	}

	primaryWarnings := filterRoles(warnings, domain.RoleOA, domain.RolePO, domain.RoleDatasheet)
	result.Report = s.comparePair(ctx, runID, classified[domain.RoleOA], classified[domain.RolePO], primaryWarnings, false)

	if cpo, ok := classified[domain.RoleCustomerPO]; ok {
		secondaryWarnings := filterRoles(warnings, domain.RolePO, domain.RoleCustomerPO)
		result.Secondary = s.comparePair(ctx, runID, classified[domain.RolePO], cpo, secondaryWarnings, true)
	}

	if input.Summarize {
		s.summarize(ctx, result, log)
	}

	log.WithFields(logrus.Fields{
		"findings":    len(result.Report.Findings),
		"warnings":    len(result.Report.Warnings),
		"verdict":     result.Report.Total.Verdict,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("service.comparisonService: run complete")
	return result, nil
}

func (s *comparisonService) extractAndClassify(
	ctx context.Context,
	classifier *classify.Classifier,
	role domain.DocumentRole,
	in *DocumentInput,
	log *logrus.Entry,
) (*classify.Result, []domain.Warning, error) {
	ctx, span := s.tracer.Start(ctx, "comparison.extract", trace.WithAttributes(
		attribute.String("role", string(role)),
		attribute.String("name", in.Name),
	))
	defer span.End()

	doc, err := s.extractor.Extract(ctx, port.ExtractInput{Role: role, Name: in.Name, Format: in.Format, Data: in.Data})
	if err != nil {
		span.RecordError(err)
		log.WithError(err).WithField("role", role).Error("service.comparisonService: extraction failed")
		return nil, nil, err
	}

	var warnings []domain.Warning
	if doc.Truncated() {
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnTruncation,
			Role:    role,
			Page:    doc.PagesRead + 1,
			Message: fmt.Sprintf("only the first %d of %d pages were read", doc.PagesRead, doc.PagesTotal),
		})
	}

	res := classifier.Classify(doc)
	span.SetAttributes(attribute.Int("lines.total", res.Total), attribute.Int("lines.dropped", res.Dropped))
	if res.Dropped > 0 {
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnTruncation,
			Role:    role,
			Message: fmt.Sprintf("%d of %d lines matched no field role and were dropped", res.Dropped, res.Total),
		})
	}
	if res.Empty() {
		warnings = append(warnings, domain.Warning{
			Kind:    domain.WarnNoRecognizedFields,
			Role:    role,
			Message: domain.ErrNoRecognizedFields.Error(),
		})
	}

	log.WithFields(logrus.Fields{
		"role":    role,
		"stage":   "classify",
		"lines":   res.Total,
		"kept":    len(res.Lines),
		"dropped": res.Dropped,
	}).Debug("service.comparisonService: document classified")
	return res, warnings, nil
}

// comparePair groups, aligns and compares left against right. secondary relabels
// the aligner's OA and PO warnings to the PO and customer PO.
func (s *comparisonService) comparePair(
	ctx context.Context,
	runID string,
	left, right *classify.Result,
	warnings []domain.Warning,
	secondary bool,
) *domain.Report {
	_, span := s.tracer.Start(ctx, "comparison.compare", trace.WithAttributes(attribute.Bool("secondary", secondary)))
	defer span.End()

	in := report.Input{RunID: runID, Warnings: warnings}
	if secondary {
		in.LeftLabel = domain.RolePO.Label()
		in.RightLabel = domain.RoleCustomerPO.Label()
	}

	if left.Empty() || right.Empty() {
		in.NothingToCompare = true
		return report.Build(in)
	}

	leftDoc, leftWarn := align.Group(left)
	rightDoc, rightWarn := align.Group(right)
	aligned := s.aligner.Align(leftDoc.Items, rightDoc.Items)
	alignWarn := aligned.Warnings
	if secondary {
		alignWarn = relabel(alignWarn)
	}
	in.Warnings = append(append(append(in.Warnings, leftWarn...), rightWarn...), alignWarn...)

	outcome := s.engine.Compare(leftDoc, rightDoc, aligned.Pairs)
	in.Findings = outcome.Findings
	in.Total = outcome.Total

	span.SetAttributes(
		attribute.String("align.mode", string(aligned.Mode)),
		attribute.Int("pairs", len(aligned.Pairs)),
		attribute.Int("findings", len(outcome.Findings)),
	)
	return report.Build(in)
}

func (s *comparisonService) summarize(ctx context.Context, result *ComparisonResult, log *logrus.Entry) {
	if s.summarizer == nil {
		result.Report.Warnings = append(result.Report.Warnings, backendWarning("no summarizer is configured"))
		return
	}

	ctx, span := s.tracer.Start(ctx, "comparison.summarize")
	defer span.End()

	var text strings.Builder
	for _, r := range result.Reports() {
		text.WriteString(render.ReportMarkdown(r))
		text.WriteString("\n")
	}

	out, err := s.summarizer.Summarize(ctx, port.SummaryInput{
		Report:     result.Report,
		ReportText: text.String(),
		Documents:  result.Texts,
	})
	if err != nil {
		span.RecordError(err)
		log.WithError(err).Warn("service.comparisonService: summarizer unavailable, returning rule-based report")
		result.Report.Warnings = append(result.Report.Warnings, backendWarning(err.Error()))
		return
	}
	result.Summary = out
}

func backendWarning(detail string) domain.Warning {
	return domain.Warning{
		Kind:    domain.WarnBackendUnavailable,
		Message: fmt.Sprintf("%s: %s", domain.ErrBackendUnavailable, detail),
	}
}

func filterRoles(warnings []domain.Warning, roles ...domain.DocumentRole) []domain.Warning {
	var out []domain.Warning
	for _, w := range warnings {
		for _, r := range roles {
			if w.Role == r {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

var secondaryLabels = strings.NewReplacer("OA", "PO", "PO", "Customer PO")

func relabel(warnings []domain.Warning) []domain.Warning {
	out := make([]domain.Warning, len(warnings))
	for i, w := range warnings {
		switch w.Role {
		case domain.RoleOA:
			w.Role = domain.RolePO
		case domain.RolePO:
			w.Role = domain.RoleCustomerPO
		}
		w.Lines = secondaryLabels.Replace(w.Lines)
		w.Message = secondaryLabels.Replace(w.Message)
		out[i] = w
	}
	return out
}
