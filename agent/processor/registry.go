package processor

import (
	"context"
	"fmt"

	contractx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/contract"
	llmx "github.com/AhmedAtia1507/Music-Store-Customer-Support/agent/llm"
)

// Registry holds one TextProcessor per workflow role so each can run on its
// own model and temperature.
type Registry struct {
	verifier   contractx.TextProcessor
	supervisor contractx.TextProcessor
	catalog    contractx.TextProcessor
	billing    contractx.TextProcessor
	preference contractx.TextProcessor
	summary    contractx.TextProcessor
}

func (r *Registry) Verifier() contractx.TextProcessor   { return r.verifier }
func (r *Registry) Supervisor() contractx.TextProcessor { return r.supervisor }
func (r *Registry) Catalog() contractx.TextProcessor    { return r.catalog }
func (r *Registry) Billing() contractx.TextProcessor    { return r.billing }
func (r *Registry) Preference() contractx.TextProcessor { return r.preference }
func (r *Registry) Summary() contractx.TextProcessor    { return r.summary }

func NewRegistry(ctx context.Context, cfg llmx.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	build := func(role llmx.Role) (contractx.TextProcessor, error) {
		modelCfg := cfg.GroqFor(role)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, role, err)
		}
		return New(ctx, chatModel, fmt.Sprintf("processor.%s", role))
	}

	var (
		reg Registry
		err error
	)
	if reg.verifier, err = build(llmx.RoleVerifier); err != nil {
		return nil, err
	}
	if reg.supervisor, err = build(llmx.RoleSupervisor); err != nil {
		return nil, err
	}
	if reg.catalog, err = build(llmx.RoleCatalog); err != nil {
		return nil, err
	}
	if reg.billing, err = build(llmx.RoleBilling); err != nil {
		return nil, err
	}
	if reg.preference, err = build(llmx.RolePreference); err != nil {
		return nil, err
	}
	if reg.summary, err = build(llmx.RoleSummary); err != nil {
		return nil, err
	}
	return &reg, nil
}
