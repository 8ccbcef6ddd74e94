// Package orchestrator turns a natural-language request into an edited
// configuration document: identify the application, fetch its schema and
// current values, ask the model for the modified values.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"configbot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// State names a step of request handling. Every request moves forward
// through these states and never revisits one.
type State string

const (
	StateReceived       State = "received"
	StateIdentifying    State = "identifying"
	StateIdentified     State = "identified"
	StateNotIdentified  State = "not_identified"
	StateFetchingSchema State = "fetching_schema"
	StateSchemaFetched  State = "schema_fetched"
	StateFetchingValues State = "fetching_values"
	StateValuesFetched  State = "values_fetched"
	StateNotFound       State = "not_found"
	StateEditing        State = "editing"
	StateEditSucceeded  State = "edit_succeeded"
	StateEditFailed     State = "edit_failed"
	StateFailed         State = "failed"
)

// Fetcher retrieves the document stored for an application.
type Fetcher interface {
	Fetch(ctx context.Context, app configbot.App) (json.RawMessage, error)
}

type Options struct {
	Classify     Sampling
	Edit         Sampling
	ModelTimeout time.Duration
	StoreTimeout time.Duration
}

// OptionsFromConfig maps the env-decoded configuration onto Options.
func OptionsFromConfig(m configbot.ModelConfig, b configbot.BotConfig) Options {
	return Options{
		Classify:     Sampling{Temperature: m.ClassifyTemperature, MaxTokens: m.ClassifyMaxTokens},
		Edit:         Sampling{Temperature: m.EditTemperature, MaxTokens: m.EditMaxTokens},
		ModelTimeout: b.ModelTimeout,
		StoreTimeout: b.StoreTimeout,
	}
}

type Result struct {
	RequestID        string
	App              configbot.App
	Method           Method
	Document         json.RawMessage
	SchemaViolations []string
}

type Orchestrator struct {
	llm     configbot.Completer
	schemas Fetcher
	values  Fetcher
	opts    Options
	logger  configbot.RequestLogger
	tracer  trace.Tracer
	metrics *metrics
}

type metrics struct {
	requests           metric.Int64Counter
	identifications    metric.Int64Counter
	completionDuration metric.Float64Histogram
	schemaViolations   metric.Int64Counter
}

// New wires an orchestrator. Nil logger, tracer provider or meter provider
// fall back to a no-op logger and the global OpenTelemetry providers.
func New(llm configbot.Completer, schemas, values Fetcher, opts Options, logger configbot.RequestLogger, tp trace.TracerProvider, mp metric.MeterProvider) *Orchestrator {
	if logger == nil {
		logger = configbot.NewNoOpRequestLogger()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(configbot.TracerNameBot)
	requests, _ := meter.Int64Counter("configbot_requests_total",
		metric.WithDescription("Requests handled, by outcome"))
	identifications, _ := meter.Int64Counter("configbot_identifications_total",
		metric.WithDescription("Successful application identifications, by method"))
	completionDuration, _ := meter.Float64Histogram("configbot_completion_duration_seconds",
		metric.WithDescription("Time taken by model calls, by stage"),
		metric.WithUnit("s"))
	schemaViolations, _ := meter.Int64Counter("configbot_schema_violations_total",
		metric.WithDescription("Schema violations found in edited configurations"))

	return &Orchestrator{
		llm:     llm,
		schemas: schemas,
		values:  values,
		opts:    opts,
		logger:  logger,
		tracer:  tp.Tracer(configbot.TracerNameBot),
		metrics: &metrics{
			requests:           requests,
			identifications:    identifications,
			completionDuration: completionDuration,
			schemaViolations:   schemaViolations,
		},
	}
}

// Handle runs one request to completion. Every failure is an *Error.
func (o *Orchestrator) Handle(ctx context.Context, input string) (*Result, error) {
	reqID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Handle", trace.WithAttributes(attribute.String("request.id", reqID)))
	defer span.End()

	slog.Info("ORCHESTRATOR: Processing request", "request_id", reqID, "input", input)
	o.step(reqID, StateReceived, configbot.AppUnknown, "", "", nil)

	// Identify
	o.step(reqID, StateIdentifying, configbot.AppUnknown, "", "", nil)
	app, method, raw, err := o.identify(ctx, input)
	if err != nil {
		o.step(reqID, StateNotIdentified, configbot.AppUnknown, input, raw, err)
		return nil, o.fail(ctx, span, err)
	}
	o.metrics.identifications.Add(ctx, 1, metric.WithAttributes(attribute.String("method", string(method))))
	span.SetAttributes(attribute.String("app", app.String()), attribute.String("identified_by", string(method)))
	o.step(reqID, StateIdentified, app, "", raw, nil)

	// Schema
	o.step(reqID, StateFetchingSchema, app, "", "", nil)
	schema, err := o.fetch(ctx, "schema", o.schemas, app)
	if err != nil {
		o.step(reqID, failState(err), app, "", "", err)
		return nil, o.fail(ctx, span, err)
	}
	if sum, serr := SummarizeSchema(schema); serr == nil {
		slog.Info("ORCHESTRATOR: Schema fetched",
			"request_id", reqID,
			"app", app.String(),
			"title", sum.Title,
			"type", sum.Type,
			"properties", len(sum.Properties),
			"required", sum.Required,
		)
	} else {
		slog.Warn("ORCHESTRATOR: Schema could not be summarized", "request_id", reqID, "error", serr)
	}
	o.step(reqID, StateSchemaFetched, app, "", "", nil)

	// Values
	o.step(reqID, StateFetchingValues, app, "", "", nil)
	values, err := o.fetch(ctx, "values", o.values, app)
	if err != nil {
		o.step(reqID, failState(err), app, "", "", err)
		return nil, o.fail(ctx, span, err)
	}
	o.step(reqID, StateValuesFetched, app, "", "", nil)

	// Edit
	o.step(reqID, StateEditing, app, "", "", nil)
	req := EditRequest{Input: input, Schema: schema, Values: values}
	edited, editErr := o.edit(ctx, req)
	if editErr != nil {
		e := editError(app, editErr, edited.Output)
		o.step(reqID, StateEditFailed, app, edited.Prompt, edited.Output, e)
		return nil, o.fail(ctx, span, e)
	}
	o.step(reqID, StateEditSucceeded, app, edited.Prompt, edited.Output, nil)
	doc := edited.Document

	violations, verr := CheckSchema(schema, doc)
	if verr != nil {
		slog.Warn("ORCHESTRATOR: Schema check skipped", "request_id", reqID, "error", verr)
	}
	if len(violations) > 0 {
		o.metrics.schemaViolations.Add(ctx, int64(len(violations)), metric.WithAttributes(attribute.String("app", app.String())))
		slog.Warn("ORCHESTRATOR: Edited configuration does not match schema",
			"request_id", reqID,
			"app", app.String(),
			"violations", violations,
		)
	}

	o.metrics.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	span.SetStatus(codes.Ok, "")
	slog.Info("ORCHESTRATOR: Configuration updated", "request_id", reqID, "app", app.String(), "bytes", len(doc))

	return &Result{
		RequestID:        reqID,
		App:              app,
		Method:           method,
		Document:         doc,
		SchemaViolations: violations,
	}, nil
}

func (o *Orchestrator) identify(ctx context.Context, input string) (configbot.App, Method, string, *Error) {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Identify")
	defer span.End()

	ctx, cancel := o.withTimeout(ctx, o.opts.ModelTimeout)
	defer cancel()

	start := time.Now()
	app, method, raw, ok := Identify(ctx, o.llm, o.opts.Classify, input)
	if method == MethodModel {
		o.metrics.completionDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", "classify")))
	}
	if !ok {
		return configbot.AppUnknown, method, raw, notIdentifiedError()
	}
	return app, method, raw, nil
}

func (o *Orchestrator) fetch(ctx context.Context, document string, f Fetcher, app configbot.App) (json.RawMessage, *Error) {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Fetch", trace.WithAttributes(
		attribute.String("document", document),
		attribute.String("app", app.String()),
	))
	defer span.End()

	ctx, cancel := o.withTimeout(ctx, o.opts.StoreTimeout)
	defer cancel()

	slog.Info("ORCHESTRATOR: Fetching document", "document", document, "app", app.String())
	doc, err := f.Fetch(ctx, app)
	if err != nil {
		span.RecordError(err)
		return nil, fetchError(document, app, err)
	}
	return doc, nil
}

func (o *Orchestrator) edit(ctx context.Context, req EditRequest) (EditResult, error) {
	ctx, span := o.tracer.Start(ctx, "Orchestrator.Edit")
	defer span.End()

	ctx, cancel := o.withTimeout(ctx, o.opts.ModelTimeout)
	defer cancel()

	start := time.Now()
	res, err := Edit(ctx, o.llm, o.opts.Edit, req)
	o.metrics.completionDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("stage", "edit")))
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

func (o *Orchestrator) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (o *Orchestrator) fail(ctx context.Context, span trace.Span, err *Error) error {
	o.metrics.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", err.Kind.String())))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Kind.String())
	slog.Warn("ORCHESTRATOR: Request failed", "kind", err.Kind.String(), "app", err.App.String(), "error", err.Error())
	return err
}

func (o *Orchestrator) step(reqID string, state State, app configbot.App, in, out string, err error) {
	entry := configbot.StepLog{
		RequestID: reqID,
		Step:      string(state),
		Timestamp: time.Now(),
		LLMInput:  in,
		LLMOutput: out,
	}
	if app != configbot.AppUnknown {
		entry.App = app.String()
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if lerr := o.logger.LogStep(entry); lerr != nil {
		slog.Warn("ORCHESTRATOR: Failed to record step", "step", state, "error", lerr)
	}
}

func failState(err *Error) State {
	if err.Kind == KindNotFound {
		return StateNotFound
	}
	return StateFailed
}
