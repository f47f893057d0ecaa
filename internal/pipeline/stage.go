package pipeline

import (
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
)

// Stage is one step of the fixed four-step content pipeline.
type Stage string

const (
	StageMarketAnalysis Stage = "market_analysis"
	StageProductPage    Stage = "product_page"
	StageImagePrompts   Stage = "image_prompts"
	StageAdCopy         Stage = "ad_copy"
)

// StageOrder is the fixed progression the wizard walks.
var StageOrder = []Stage{
	StageMarketAnalysis,
	StageProductPage,
	StageImagePrompts,
	StageAdCopy,
}

// stageSpec describes one stage: the column it fills, the stages whose output
// it needs in its prompt context, its default credit cost, and whether the
// product reference image is attached to the call.
type stageSpec struct {
	column      string
	requires    []Stage
	defaultCost int64
	attachImage bool
}

var stageSpecs = map[Stage]stageSpec{
	StageMarketAnalysis: {
		column:      "market_analysis",
		requires:    nil,
		defaultCost: 0,
		attachImage: true,
	},
	StageProductPage: {
		column:      "product_page_content",
		requires:    []Stage{StageMarketAnalysis},
		defaultCost: 1,
	},
	StageImagePrompts: {
		column:      "image_prompts",
		requires:    []Stage{StageMarketAnalysis, StageProductPage},
		defaultCost: 1,
		attachImage: true,
	},
	StageAdCopy: {
		column:      "ad_copy",
		requires:    []Stage{StageMarketAnalysis, StageProductPage},
		defaultCost: 0,
	},
}

// ParseStage validates a stage name from the wire.
func ParseStage(name string) (Stage, error) {
	stage := Stage(name)
	if _, ok := stageSpecs[stage]; !ok {
		return "", errs.Validation("unknown pipeline stage: " + name)
	}
	return stage, nil
}

// Column returns the product column this stage populates.
func (s Stage) Column() string {
	return stageSpecs[s].column
}

// DefaultCost returns the built-in credit cost for this stage.
func (s Stage) DefaultCost() int64 {
	return stageSpecs[s].defaultCost
}

// Output reads this stage's output from a product.
func (s Stage) Output(p *domain.Product) string {
	switch s {
	case StageMarketAnalysis:
		return p.MarketAnalysis
	case StageProductPage:
		return p.ProductPageContent
	case StageImagePrompts:
		return p.ImagePrompts
	case StageAdCopy:
		return p.AdCopy
	}
	return ""
}

// Complete reports whether this stage's output is populated on the product.
func (s Stage) Complete(p *domain.Product) bool {
	return s.Output(p) != ""
}

// Ready reports whether every upstream dependency of this stage is populated.
func (s Stage) Ready(p *domain.Product) bool {
	for _, dep := range stageSpecs[s].requires {
		if !dep.Complete(p) {
			return false
		}
	}
	return true
}

// MissingDeps lists the unpopulated upstream stages blocking this one.
func (s Stage) MissingDeps(p *domain.Product) []Stage {
	var missing []Stage
	for _, dep := range stageSpecs[s].requires {
		if !dep.Complete(p) {
			missing = append(missing, dep)
		}
	}
	return missing
}

// NextStage computes the next runnable stage purely from persisted product
// state: the first stage in order whose output is empty and whose
// prerequisites are met. ok is false when the pipeline is finished.
func NextStage(p *domain.Product) (stage Stage, ok bool) {
	for _, s := range StageOrder {
		if !s.Complete(p) && s.Ready(p) {
			return s, true
		}
	}
	return "", false
}

// CostPolicy resolves the credit cost of a stage. The default policy uses the
// built-in table; the application wires one backed by runtime settings.
type CostPolicy interface {
	StageCost(stage Stage) int64
}

// FixedCosts is a literal stage cost table. Stages not present fall back to
// their built-in cost.
type FixedCosts map[Stage]int64

func (c FixedCosts) StageCost(stage Stage) int64 {
	if cost, ok := c[stage]; ok {
		if cost < 0 {
			return 0
		}
		return cost
	}
	return stage.DefaultCost()
}
