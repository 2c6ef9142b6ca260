// Package presentation maps classification results to what the user interfaces show.
// Every mapping here is pure and total over the data model.
package presentation

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/email-classifier/internal/core"
)

// Tier is the confidence band of a result
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

const (
	highThreshold   = 0.90
	mediumThreshold = 0.70
)

// TierFor returns the confidence band; lower bounds are inclusive
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= highThreshold:
		return TierHigh
	case confidence >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Label returns the human readable name of the tier
func (t Tier) Label() string {
	switch t {
	case TierHigh:
		return "High confidence"
	case TierMedium:
		return "Medium confidence"
	default:
		return "Low confidence"
	}
}

// Severity returns the alert level associated with the tier
func (t Tier) Severity() string {
	switch t {
	case TierHigh:
		return "success"
	case TierMedium:
		return "warning"
	default:
		return "error"
	}
}

// Treatment returns the visual treatment of a category
func Treatment(category core.Category) string {
	if category == core.CategoryProductive {
		return "primary"
	}
	return "secondary"
}

// Percent formats a confidence as a percentage with one decimal
func Percent(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}

// MethodLabel returns the chip text of a method. A response that named no
// method is labelled as hybrid.
func MethodLabel(method core.Method) string {
	switch method {
	case core.MethodNLP:
		return "NLP"
	case core.MethodAI:
		return "AI"
	case core.MethodDefault:
		return "DEFAULT"
	default:
		return "HYBRID"
	}
}

// Panel is one side of a comparison
type Panel struct {
	Method         core.Method
	Title          string
	Classification core.Category
	Treatment      string
	Confidence     float64
	Percent        string
	Tier           Tier
	Reasoning      string
	Features       *core.Features
	Chosen         bool
}

// Comparison is the side-by-side view of a comparative analysis
type Comparison struct {
	NLP       *Panel
	AI        *Panel
	Agree     bool
	Status    string
	Chosen    core.Method
	Criterion string
	Verdict   string
}

// NewComparison builds the comparison view. Exactly the panel named by the
// agreement's chosen method is marked as chosen.
func NewComparison(analysis *core.ComparativeAnalysis) *Comparison {
	if analysis == nil {
		return nil
	}

	chosen := analysis.Agreement.ChosenMethod
	comparison := &Comparison{
		Agree:     analysis.Agreement.Agree,
		Status:    analysis.Agreement.Status,
		Chosen:    chosen,
		Criterion: strings.ReplaceAll(analysis.Agreement.DecisionCriterion, "_", " "),
	}

	if nlp := analysis.NLP; nlp != nil {
		features := nlp.Features
		comparison.NLP = &Panel{
			Method:         core.MethodNLP,
			Title:          "Traditional NLP",
			Classification: nlp.Classification,
			Treatment:      Treatment(nlp.Classification),
			Confidence:     nlp.Confidence,
			Percent:        Percent(nlp.Confidence),
			Tier:           TierFor(nlp.Confidence),
			Reasoning:      nlp.Reasoning,
			Features:       &features,
			Chosen:         chosen == core.MethodNLP,
		}
	}
	if ai := analysis.AI; ai != nil {
		comparison.AI = &Panel{
			Method:         core.MethodAI,
			Title:          "Artificial Intelligence",
			Classification: ai.Classification,
			Treatment:      Treatment(ai.Classification),
			Confidence:     ai.Confidence,
			Percent:        Percent(ai.Confidence),
			Tier:           TierFor(ai.Confidence),
			Reasoning:      ai.Reasoning,
			Chosen:         chosen == core.MethodAI,
		}
	}

	comparison.Verdict = comparison.verdict()
	return comparison
}

func (c *Comparison) verdict() string {
	method := MethodLabel(c.Chosen)
	if c.Agree {
		confidence := ""
		if p := c.chosenPanel(); p != nil {
			confidence = fmt.Sprintf(" (%s)", p.Percent)
		}
		return fmt.Sprintf("Both methods agreed on the classification. %s was chosen for its higher confidence%s.",
			method, confidence)
	}
	return fmt.Sprintf("The methods disagreed on the classification. %s was chosen based on the decision criterion (%s).",
		method, c.Criterion)
}

func (c *Comparison) chosenPanel() *Panel {
	if c.NLP != nil && c.NLP.Chosen {
		return c.NLP
	}
	if c.AI != nil && c.AI.Chosen {
		return c.AI
	}
	return nil
}

// View is everything a user interface needs to render one result
type View struct {
	Category       core.Category
	Treatment      string
	Confidence     float64
	Percent        string
	Tier           Tier
	TierLabel      string
	Severity       string
	Method         string
	Justification  string
	SuggestedReply string
	ProcessingTime string
	ModelName      string
	Version        string
	InputText      string
	ReceivedAt     time.Time
	Comparison     *Comparison
}

// NewView builds the view of a classification result
func NewView(result *core.ClassificationResult) *View {
	if result == nil {
		return nil
	}

	tier := TierFor(result.Confidence)
	return &View{
		Category:       result.Category,
		Treatment:      Treatment(result.Category),
		Confidence:     result.Confidence,
		Percent:        Percent(result.Confidence),
		Tier:           tier,
		TierLabel:      tier.Label(),
		Severity:       tier.Severity(),
		Method:         MethodLabel(result.MethodUsed),
		Justification:  result.Details.Justification,
		SuggestedReply: result.SuggestedReply,
		ProcessingTime: fmt.Sprintf("%gs", result.Details.ProcessingTimeSeconds),
		ModelName:      result.Details.ModelName,
		Version:        result.Details.Version,
		InputText:      result.InputText,
		ReceivedAt:     result.Timestamp,
		Comparison:     NewComparison(result.Details.ComparativeAnalysis),
	}
}
