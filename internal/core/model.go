package core

import (
	"fmt"
	"time"
)

// Category is the classification assigned to an email
type Category string

const (
	CategoryProductive   Category = "Productive"
	CategoryUnproductive Category = "Unproductive"
)

// Valid reports whether the category is one of the two known values
func (c Category) Valid() bool {
	return c == CategoryProductive || c == CategoryUnproductive
}

// Method identifies which classification method produced a result
type Method string

const (
	MethodNLP     Method = "nlp"
	MethodAI      Method = "ai"
	MethodDefault Method = "default"

	// MethodUnspecified is a response that did not name its method
	MethodUnspecified Method = ""
)

// Valid reports whether the method may appear as method_used
func (m Method) Valid() bool {
	return m == MethodNLP || m == MethodAI || m == MethodDefault || m == MethodUnspecified
}

// Comparable reports whether the method may be chosen in a comparative analysis
func (m Method) Comparable() bool {
	return m == MethodNLP || m == MethodAI
}

// Features holds the linguistic features reported by the keyword method
type Features struct {
	ProductiveKeywordCount   int  `json:"productive_keyword_count"`
	UnproductiveKeywordCount int  `json:"unproductive_keyword_count"`
	HasUrgency               bool `json:"has_urgency"`
	HasQuestions             bool `json:"has_questions"`
	WordCount                int  `json:"word_count"`
}

// NLPResult is the result of the keyword/linguistic method
type NLPResult struct {
	Classification Category `json:"classification"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	Features       Features `json:"features"`
}

// AIResult is the result of the AI-based method
type AIResult struct {
	Classification Category `json:"classification"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
}

// Agreement describes how the two methods compared and which one won
type Agreement struct {
	Agree             bool   `json:"agree"`
	Status            string `json:"status"`
	ChosenMethod      Method `json:"chosen_method"`
	DecisionCriterion string `json:"decision_criterion"`
}

// ComparativeAnalysis holds both methods' independent results plus the verdict
type ComparativeAnalysis struct {
	NLP       *NLPResult `json:"nlp"`
	AI        *AIResult  `json:"ai"`
	Agreement Agreement  `json:"agreement"`
}

// Details carries the metadata of a classification response
type Details struct {
	Justification         string               `json:"justification"`
	ProcessingTimeSeconds float64              `json:"processing_time_seconds"`
	ModelName             string               `json:"model_name"`
	Version               string               `json:"version"`
	ComparativeAnalysis   *ComparativeAnalysis `json:"comparative_analysis,omitempty"`
}

// ClassificationResponse is the validated answer of the classification API
type ClassificationResponse struct {
	Category       Category `json:"category"`
	Confidence     float64  `json:"confidence"`
	SuggestedReply string   `json:"suggested_reply"`
	MethodUsed     Method   `json:"method_used"`
	Details        Details  `json:"details"`
}

// ClassificationResult is a response as received by a user, stamped at receipt time
type ClassificationResult struct {
	ClassificationResponse
	Timestamp time.Time `json:"timestamp"`
	InputText string    `json:"input_text"`
}

// NewClassificationResult wraps a response with the receipt time and the submission echo
func NewClassificationResult(resp *ClassificationResponse, inputText string, receivedAt time.Time) *ClassificationResult {
	return &ClassificationResult{
		ClassificationResponse: *resp,
		Timestamp:              receivedAt,
		InputText:              inputText,
	}
}

// FileInput is a file submitted for classification
type FileInput struct {
	Name      string
	MediaType string
	Size      int64
	Content   []byte
}

// Validate checks the response against the data model invariants
func (r *ClassificationResponse) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if err := checkConfidence("confidence", r.Confidence); err != nil {
		return err
	}
	if !r.MethodUsed.Valid() {
		return fmt.Errorf("unknown method %q", r.MethodUsed)
	}
	if r.Details.ProcessingTimeSeconds < 0 {
		return fmt.Errorf("negative processing time %v", r.Details.ProcessingTimeSeconds)
	}
	if r.Details.ComparativeAnalysis != nil {
		if err := r.Details.ComparativeAnalysis.Validate(); err != nil {
			return fmt.Errorf("comparative analysis: %w", err)
		}
	}
	return nil
}

// Validate checks that both sub-results are well formed and the chosen method is present
func (a *ComparativeAnalysis) Validate() error {
	if !a.Agreement.ChosenMethod.Comparable() {
		return fmt.Errorf("unknown chosen method %q", a.Agreement.ChosenMethod)
	}
	if a.Agreement.ChosenMethod == MethodNLP && a.NLP == nil {
		return fmt.Errorf("chosen method nlp has no result")
	}
	if a.Agreement.ChosenMethod == MethodAI && a.AI == nil {
		return fmt.Errorf("chosen method ai has no result")
	}

	if a.NLP != nil {
		if !a.NLP.Classification.Valid() {
			return fmt.Errorf("nlp: unknown category %q", a.NLP.Classification)
		}
		if err := checkConfidence("nlp confidence", a.NLP.Confidence); err != nil {
			return err
		}
		f := a.NLP.Features
		if f.ProductiveKeywordCount < 0 || f.UnproductiveKeywordCount < 0 || f.WordCount < 0 {
			return fmt.Errorf("nlp: negative feature count")
		}
	}
	if a.AI != nil {
		if !a.AI.Classification.Valid() {
			return fmt.Errorf("ai: unknown category %q", a.AI.Classification)
		}
		if err := checkConfidence("ai confidence", a.AI.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func checkConfidence(field string, v float64) error {
	// NaN fails both comparisons
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s %v outside [0,1]", field, v)
	}
	return nil
}
