package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/launchpadhq/launchpad/internal/completion"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/ledger"
	"github.com/launchpadhq/launchpad/internal/store"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Orchestrator drives the four-stage generation pipeline. Progress lives
// entirely on the product row: an empty stage column is NOT_STARTED, a
// populated one is COMPLETE, and failures persist nothing, so any product can
// be resumed or retried from its stored state alone.
type Orchestrator struct {
	products store.ProductRepository
	ledger   *ledger.CreditLedger
	gen      completion.Generator
	costs    CostPolicy
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOrchestrator(
	products store.ProductRepository,
	creditLedger *ledger.CreditLedger,
	gen completion.Generator,
	costs CostPolicy,
	timeout time.Duration,
) *Orchestrator {
	if costs == nil {
		costs = FixedCosts{}
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{
		products: products,
		ledger:   creditLedger,
		gen:      gen,
		costs:    costs,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

func inflightKey(productID int64, stage Stage) string {
	return fmt.Sprintf("%d/%s", productID, stage)
}

// acquire marks a (product, stage) pair as generating. At most one generation
// per pair may be in flight.
func (o *Orchestrator) acquire(productID int64, stage Stage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := inflightKey(productID, stage)
	if _, busy := o.inflight[key]; busy {
		return errs.AlreadyInProgress("this stage is already generating")
	}
	o.inflight[key] = struct{}{}
	return nil
}

func (o *Orchestrator) release(productID int64, stage Stage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, inflightKey(productID, stage))
}

// RunStage executes one pipeline stage for the owner of a product, relaying
// text chunks to onChunk as they arrive and returning the full terminal text.
//
// Paid stages charge the credit when the call is issued, not when it
// succeeds: a generation that fails after charging does not refund. That
// ordering replicates the platform's established billing behavior; changing
// it means changing user-facing billing semantics.
func (o *Orchestrator) RunStage(
	ctx context.Context,
	userID int64,
	productID int64,
	stage Stage,
	onChunk func(chunk string) error,
) (string, error) {
	if onChunk == nil {
		onChunk = func(string) error { return nil }
	}

	product, err := o.products.GetOwned(ctx, productID, userID)
	if err != nil {
		return "", err
	}

	if err := checkDeps(stage, product); err != nil {
		return "", err
	}

	if err := o.acquire(productID, stage); err != nil {
		return "", err
	}
	defer o.release(productID, stage)

	// Charge-on-issue. Free stages still hit the ledger for the existence
	// check.
	cost := o.costs.StageCost(stage)
	if err := o.ledger.Charge(ctx, userID, cost); err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := completion.TextRequest{
		SystemInstruction: stage.SystemInstruction(),
		Prompt:            stage.UserPrompt(product),
	}
	if stage.AttachImage() && product.ImageBase64 != "" {
		req.ImageBase64 = product.ImageBase64
	}

	started := time.Now()
	text, err := o.gen.StreamText(genCtx, req, onChunk)
	if err != nil {
		zap.L().Warn("stage generation failed",
			zap.Int64("product_id", productID),
			zap.String("stage", string(stage)),
			zap.Int64("cost", cost),
			zap.Error(err))
		if genCtx.Err() != nil && errs.KindOf(err) != errs.KindUpstreamGeneration {
			return "", errs.UpstreamGeneration("generation timed out", genCtx.Err())
		}
		if errs.KindOf(err) == errs.KindInternal {
			return "", errs.UpstreamGeneration("generation failed", err)
		}
		return "", err
	}

	// Authoritative persist on the terminal event. A storage failure here is
	// logged and swallowed: the client re-issues the write through
	// ConfirmStage after it observes the terminal chunk.
	if err := o.products.PatchField(ctx, productID, userID, stage.Column(), text); err != nil {
		zap.L().Error("stage output persist failed, awaiting client confirm",
			zap.Int64("product_id", productID),
			zap.String("stage", string(stage)),
			zap.Error(err))
	}

	zap.L().Info("stage complete",
		zap.Int64("product_id", productID),
		zap.String("stage", string(stage)),
		zap.Int("chars", len(text)),
		zap.Duration("elapsed", time.Since(started)))
	return text, nil
}

// checkDeps rejects a stage whose upstream outputs are not populated yet.
func checkDeps(stage Stage, product *domain.Product) error {
	missing := stage.MissingDeps(product)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, dep := range missing {
		names[i] = string(dep)
	}
	return errs.MissingContext(
		"required context missing, run these stages first: " + strings.Join(names, ", "))
}

// ConfirmStage is the idempotent follow-up save keyed by (product, stage).
// Issuing it twice with identical content leaves the column equal to that
// content. The same dependency precondition as RunStage applies, so a
// downstream column can never be populated ahead of its upstream stages.
func (o *Orchestrator) ConfirmStage(ctx context.Context, userID, productID int64, stage Stage, content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Validation("content is required")
	}
	product, err := o.products.GetOwned(ctx, productID, userID)
	if err != nil {
		return err
	}
	if err := checkDeps(stage, product); err != nil {
		return err
	}
	return o.products.PatchField(ctx, productID, userID, stage.Column(), content)
}

// StageStatus is the progress view of one stage for a product.
type StageStatus struct {
	Stage    Stage `json:"stage"`
	Cost     int64 `json:"cost"`
	Complete bool  `json:"complete"`
	Ready    bool  `json:"ready"`
}

// Progress reports per-stage status plus the next runnable stage.
func (o *Orchestrator) Progress(p *domain.Product) (statuses []StageStatus, next *Stage) {
	for _, s := range StageOrder {
		statuses = append(statuses, StageStatus{
			Stage:    s,
			Cost:     o.costs.StageCost(s),
			Complete: s.Complete(p),
			Ready:    s.Ready(p),
		})
	}
	if s, ok := NextStage(p); ok {
		next = &s
	}
	return statuses, next
}

// GenerateProductImage renders one image from a prompt and appends the result
// to the product's generated image history. The image sub-path retries
// internally on rate limits (see completion.GenerateImage).
func (o *Orchestrator) GenerateProductImage(
	ctx context.Context,
	userID int64,
	productID int64,
	req completion.ImageRequest,
) (string, []string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", nil, errs.Validation("prompt is required")
	}

	product, err := o.products.GetOwned(ctx, productID, userID)
	if err != nil {
		return "", nil, err
	}
	if req.BaseImageBase64 == "" {
		req.BaseImageBase64 = product.ImageBase64
	}

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	img, err := o.gen.GenerateImage(genCtx, req)
	if err != nil {
		return "", nil, err
	}

	uri := img.DataURI()
	history := append([]string{uri}, decodeImageHistory(product.GeneratedImages)...)

	encoded, err := json.MarshalToString(history)
	if err != nil {
		return "", nil, errs.Internal("image history encode failed", err)
	}
	// Best-effort history save: the image itself is already streamed back.
	if err := o.products.PatchField(ctx, productID, userID, "generated_images", encoded); err != nil {
		zap.L().Error("image history persist failed",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	return uri, history, nil
}

// OptimizeImagePrompt rewrites a base image prompt against the product's
// reference photo. Without a reference photo the cleaned base prompt is
// returned as-is. Requires a positive balance but charges nothing, matching
// the platform's established behavior.
func (o *Orchestrator) OptimizeImagePrompt(ctx context.Context, userID, productID int64, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errs.Validation("prompt is required")
	}

	balance, err := o.ledger.Balance(ctx, userID)
	if err != nil {
		return "", err
	}
	if balance < 1 {
		return "", errs.InsufficientCredits("insufficient credits, please top up")
	}

	product, err := o.products.GetOwned(ctx, productID, userID)
	if err != nil {
		return "", err
	}
	if product.ImageBase64 == "" {
		return CleanImagePrompt(prompt), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	text, err := o.gen.GenerateText(genCtx, completion.TextRequest{
		SystemInstruction: OptimizePromptInstruction,
		Prompt:            "Base Prompt to Optimize:\n" + prompt,
		ImageBase64:       product.ImageBase64,
	})
	if err != nil {
		return "", err
	}
	return CleanImagePrompt(text), nil
}

// ImageHistory decodes a product's stored generation history.
func ImageHistory(p *domain.Product) []string {
	return decodeImageHistory(p.GeneratedImages)
}

func decodeImageHistory(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var history []string
	if err := json.UnmarshalFromString(encoded, &history); err != nil {
		zap.L().Warn("corrupt image history, resetting", zap.Error(err))
		return nil
	}
	return history
}
