package api

import (
	"fmt"
	"strings"

	"github.com/mikey/email-classifier/internal/core"
)

// The classification service speaks Portuguese field names; the English names
// of the data model are accepted as aliases.

type wireFeatures struct {
	ProductiveKeywords   *int `json:"productive_keywords"`
	UnproductiveKeywords *int `json:"unproductive_keywords"`
	ProductiveCount      *int `json:"productive_keyword_count"`
	UnproductiveCount    *int `json:"unproductive_keyword_count"`
	HasUrgency           bool `json:"has_urgency"`
	HasQuestions         bool `json:"has_questions"`
	WordCount            int  `json:"word_count"`
}

type wireMethodResult struct {
	Classificacao  string        `json:"classificacao"`
	Classification string        `json:"classification"`
	Confianca      *float64      `json:"confianca"`
	Confidence     *float64      `json:"confidence"`
	Raciocinio     string        `json:"raciocinio"`
	Reasoning      string        `json:"reasoning"`
	Features       *wireFeatures `json:"features"`
}

type wireAgreement struct {
	Concordam         *bool  `json:"concordam"`
	Agree             *bool  `json:"agree"`
	Status            string `json:"status"`
	MetodoEscolhido   string `json:"metodo_escolhido"`
	ChosenMethod      string `json:"chosen_method"`
	CriterioDecisao   string `json:"criterio_decisao"`
	DecisionCriterion string `json:"decision_criterion"`
}

type wireAnalysis struct {
	NLPResultado    *wireMethodResult `json:"nlp_resultado"`
	NLP             *wireMethodResult `json:"nlp"`
	GeminiResultado *wireMethodResult `json:"gemini_resultado"`
	AIResultado     *wireMethodResult `json:"ai_resultado"`
	AI              *wireMethodResult `json:"ai"`
	Concordancia    *wireAgreement    `json:"concordancia"`
	Agreement       *wireAgreement    `json:"agreement"`
}

type wireDetails struct {
	Justificativa       string        `json:"justificativa"`
	Justification       string        `json:"justification"`
	TempoProcessamento  float64       `json:"tempo_processamento"`
	ProcessingTime      float64       `json:"processing_time_seconds"`
	Modelo              string        `json:"modelo"`
	ModelName           string        `json:"model_name"`
	Versao              string        `json:"versao"`
	Version             string        `json:"version"`
	AnaliseComparativa  *wireAnalysis `json:"analise_comparativa"`
	ComparativeAnalysis *wireAnalysis `json:"comparative_analysis"`
}

type wireResponse struct {
	Categoria        string       `json:"categoria"`
	Category         string       `json:"category"`
	Confidence       *float64     `json:"confidence"`
	RespostaSugerida string       `json:"resposta_sugerida"`
	SuggestedReply   string       `json:"suggested_reply"`
	MetodoUsado      string       `json:"metodo_usado"`
	MethodUsed       string       `json:"method_used"`
	Detalhes         *wireDetails `json:"detalhes"`
	Details          *wireDetails `json:"details"`
}

// toCore converts a decoded response into the data model and checks its invariants
func (w *wireResponse) toCore() (*core.ClassificationResponse, error) {
	category, err := parseCategory(firstString(w.Categoria, w.Category))
	if err != nil {
		return nil, err
	}
	if w.Confidence == nil {
		return nil, fmt.Errorf("missing confidence")
	}
	method, err := parseMethod(firstString(w.MetodoUsado, w.MethodUsed))
	if err != nil {
		return nil, err
	}

	resp := &core.ClassificationResponse{
		Category:       category,
		Confidence:     *w.Confidence,
		SuggestedReply: firstString(w.RespostaSugerida, w.SuggestedReply),
		MethodUsed:     method,
	}

	details := w.Detalhes
	if details == nil {
		details = w.Details
	}
	if details != nil {
		resp.Details = core.Details{
			Justification:         firstString(details.Justificativa, details.Justification),
			ProcessingTimeSeconds: firstFloat(details.TempoProcessamento, details.ProcessingTime),
			ModelName:             firstString(details.Modelo, details.ModelName),
			Version:               firstString(details.Versao, details.Version),
		}

		analysis := details.AnaliseComparativa
		if analysis == nil {
			analysis = details.ComparativeAnalysis
		}
		if analysis != nil {
			converted, err := analysis.toCore()
			if err != nil {
				return nil, fmt.Errorf("comparative analysis: %w", err)
			}
			resp.Details.ComparativeAnalysis = converted
		}
	}

	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (w *wireAnalysis) toCore() (*core.ComparativeAnalysis, error) {
	analysis := &core.ComparativeAnalysis{}

	if nlp := firstResult(w.NLPResultado, w.NLP); nlp != nil {
		category, confidence, err := nlp.common()
		if err != nil {
			return nil, fmt.Errorf("nlp: %w", err)
		}
		analysis.NLP = &core.NLPResult{
			Classification: category,
			Confidence:     confidence,
			Reasoning:      firstString(nlp.Raciocinio, nlp.Reasoning),
		}
		if f := nlp.Features; f != nil {
			analysis.NLP.Features = core.Features{
				ProductiveKeywordCount:   firstInt(f.ProductiveKeywords, f.ProductiveCount),
				UnproductiveKeywordCount: firstInt(f.UnproductiveKeywords, f.UnproductiveCount),
				HasUrgency:               f.HasUrgency,
				HasQuestions:             f.HasQuestions,
				WordCount:                f.WordCount,
			}
		}
	}

	if ai := firstResult(w.GeminiResultado, w.AIResultado, w.AI); ai != nil {
		category, confidence, err := ai.common()
		if err != nil {
			return nil, fmt.Errorf("ai: %w", err)
		}
		analysis.AI = &core.AIResult{
			Classification: category,
			Confidence:     confidence,
			Reasoning:      firstString(ai.Raciocinio, ai.Reasoning),
		}
	}

	agreement := w.Concordancia
	if agreement == nil {
		agreement = w.Agreement
	}
	if agreement == nil {
		return nil, fmt.Errorf("missing agreement")
	}
	chosen, err := parseMethod(firstString(agreement.MetodoEscolhido, agreement.ChosenMethod))
	if err != nil {
		return nil, err
	}
	analysis.Agreement = core.Agreement{
		Agree:             firstBool(agreement.Concordam, agreement.Agree),
		Status:            agreement.Status,
		ChosenMethod:      chosen,
		DecisionCriterion: firstString(agreement.CriterioDecisao, agreement.DecisionCriterion),
	}

	return analysis, nil
}

func (w *wireMethodResult) common() (core.Category, float64, error) {
	category, err := parseCategory(firstString(w.Classificacao, w.Classification))
	if err != nil {
		return "", 0, err
	}
	confidence := w.Confianca
	if confidence == nil {
		confidence = w.Confidence
	}
	if confidence == nil {
		return "", 0, fmt.Errorf("missing confidence")
	}
	return category, *confidence, nil
}

func parseCategory(s string) (core.Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "produtivo", "productive":
		return core.CategoryProductive, nil
	case "improdutivo", "unproductive":
		return core.CategoryUnproductive, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

func parseMethod(s string) (core.Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nlp":
		return core.MethodNLP, nil
	case "ai", "gemini":
		return core.MethodAI, nil
	case "default":
		return core.MethodDefault, nil
	case "":
		return core.MethodUnspecified, nil
	default:
		return "", fmt.Errorf("unknown method %q", s)
	}
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstFloat(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstBool(values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return false
}

func firstResult(values ...*wireMethodResult) *wireMethodResult {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
