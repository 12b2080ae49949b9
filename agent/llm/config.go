package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	groqx "github.com/AhmedAtia1507/Music-Store-Customer-Support/pkg/groq"
)

// Role names a distinct model consumer in the workflow. Each role can run on
// its own model and temperature; all fall back to the defaults.
type Role string

const (
	RoleVerifier   Role = "verifier"
	RoleSupervisor Role = "supervisor"
	RoleCatalog    Role = "catalog"
	RoleBilling    Role = "billing"
	RolePreference Role = "preference"
	RoleSummary    Role = "summary"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-oss-120b"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`

	VerifierModel   string `envconfig:"VERIFIER_MODEL" split_words:"true"`
	SupervisorModel string `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	CatalogModel    string `envconfig:"CATALOG_MODEL" split_words:"true"`
	BillingModel    string `envconfig:"BILLING_MODEL" split_words:"true"`
	PreferenceModel string `envconfig:"PREFERENCE_MODEL" split_words:"true"`
	SummaryModel    string `envconfig:"SUMMARY_MODEL" split_words:"true"`

	VerifierTemperature   float32 `envconfig:"VERIFIER_TEMPERATURE" split_words:"true" default:"-1"`
	SupervisorTemperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	SummaryTemperature    float32 `envconfig:"SUMMARY_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: groq api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// GroqFor resolves the model config for one role, applying any overrides.
func (c Config) GroqFor(role Role) groqx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(name string, t float32) {
		if v := strings.TrimSpace(name); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch role {
	case RoleVerifier:
		override(c.VerifierModel, c.VerifierTemperature)
	case RoleSupervisor:
		override(c.SupervisorModel, c.SupervisorTemperature)
	case RoleCatalog:
		override(c.CatalogModel, -1)
	case RoleBilling:
		override(c.BillingModel, -1)
	case RolePreference:
		override(c.PreferenceModel, -1)
	case RoleSummary:
		override(c.SummaryModel, c.SummaryTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return groqx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
