package models

import "time"

// Automation is the saved form of an editor graph, as handed to persistence.
type Automation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"                  validate:"required,min=3"`
	Description string    `json:"description"`
	Blocks      []*Block  `json:"blocks"`
	TemplateID  string    `json:"template_id,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Triggers returns the trigger blocks of the automation.
func (a *Automation) Triggers() []*Block {
	triggers := make([]*Block, 0)

	for _, block := range a.Blocks {
		if block.Category == CategoryTypeTrigger {
			triggers = append(triggers, block)
		}
	}

	return triggers
}
