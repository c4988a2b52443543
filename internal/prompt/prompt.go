package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

//go:embed assets/prompts.json
var promptsJSON []byte

// Response schemas, passed verbatim as responseJsonSchema.
var (
	//go:embed assets/service_list_schema.json
	ServiceListSchema []byte

	//go:embed assets/service_map_schema.json
	ServiceMapSchema []byte

	//go:embed assets/technical_schema.json
	TechnicalSchema []byte

	//go:embed assets/pricing_schema.json
	PricingSchema []byte

	//go:embed assets/sovereignty_schema.json
	SovereigntySchema []byte

	//go:embed assets/management_summary_schema.json
	ManagementSummarySchema []byte

	//go:embed assets/overarching_summary_schema.json
	OverarchingSummarySchema []byte
)

// Template is one stage's prompt pair.
type Template struct {
	SystemInstruction string `json:"system_instruction"`
	UserTemplate      string `json:"user_template"`
}

// Render substitutes data into the user template. Template syntax is
// text/template with dot-field access (e.g., {{.CSPA}}).
func (t Template) Render(data map[string]string) (string, error) {
	tmpl, err := template.New("user").Option("missingkey=error").Parse(t.UserTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse user template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render user template: %w", err)
	}
	return b.String(), nil
}

// Set holds all stage prompt templates.
type Set struct {
	ServiceList        Template `json:"service_list_prompt"`
	ServiceMapBatch    Template `json:"service_map_batch_prompt"`
	Technical          Template `json:"technical_prompt"`
	Pricing            Template `json:"pricing_prompt"`
	Sovereignty        Template `json:"sovereignty_prompt"`
	ManagementSummary  Template `json:"management_summary_prompt"`
	OverarchingSummary Template `json:"overarching_summary_prompt"`
}

// Load parses the embedded prompt configuration.
func Load() (*Set, error) {
	var s Set
	if err := json.Unmarshal(promptsJSON, &s); err != nil {
		return nil, fmt.Errorf("failed to parse embedded prompts: %w", err)
	}
	return &s, nil
}
