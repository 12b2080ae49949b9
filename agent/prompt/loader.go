package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/verification.txt
	verificationRaw string

	//go:embed template/preference.txt
	preferenceRaw string

	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/catalog.txt
	catalogRaw string

	//go:embed template/catalog_answer.txt
	catalogAnswerRaw string

	//go:embed template/billing.txt
	billingRaw string

	//go:embed template/billing_answer.txt
	billingAnswerRaw string

	//go:embed template/compile.txt
	compileRaw string

	//go:embed template/summary.txt
	summaryRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Verification  string
	Preference    string
	Supervisor    string
	Catalog       string
	CatalogAnswer string
	Billing       string
	BillingAnswer string
	Compile       string
	Summary       string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to call
// concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Verification:  strings.TrimSpace(verificationRaw),
		Preference:    strings.TrimSpace(preferenceRaw),
		Supervisor:    strings.TrimSpace(supervisorRaw),
		Catalog:       strings.TrimSpace(catalogRaw),
		CatalogAnswer: strings.TrimSpace(catalogAnswerRaw),
		Billing:       strings.TrimSpace(billingRaw),
		BillingAnswer: strings.TrimSpace(billingAnswerRaw),
		Compile:       strings.TrimSpace(compileRaw),
		Summary:       strings.TrimSpace(summaryRaw),
	}
}
