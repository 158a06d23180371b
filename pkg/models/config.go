package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/robfig/cron/v3"
)

// BlockConfig is the strongly typed configuration of a block. Each block type
// has exactly one implementation.
type BlockConfig interface {
	BlockType() BlockType
	Summary() string
}

type configDecoder func(raw []byte) (BlockConfig, error)

func decodeAs[T BlockConfig](raw []byte) (BlockConfig, error) {
	var config T

	if len(raw) == 0 || string(raw) == "null" {
		return config, nil
	}

	if err := json.Unmarshal(raw, &config); err != nil {
		return nil, err
	}

	return config, nil
}

// DecodeConfig decodes a JSON config document for the given block type.
func DecodeConfig(blockType BlockType, raw []byte) (BlockConfig, error) {
	def, ok := blockDefinitions[blockType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}

	return def.decode(raw)
}

// DecodeConfigMap decodes a loosely typed field map for the given block type.
func DecodeConfigMap(blockType BlockType, fields map[string]any) (BlockConfig, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config fields: %w", err)
	}

	return DecodeConfig(blockType, raw)
}

// MergeConfig overlays patch on top of config. A nil value in patch clears the field.
func MergeConfig(config BlockConfig, patch map[string]any) (BlockConfig, error) {
	if config == nil {
		return nil, errors.New("cannot merge into a nil config")
	}

	fields, err := ConfigFields(config)
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		if value == nil {
			delete(fields, key)

			continue
		}

		fields[key] = value
	}

	return DecodeConfigMap(config.BlockType(), fields)
}

// ConfigFields flattens a config into its JSON field map.
func ConfigFields(config BlockConfig) (map[string]any, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if fields == nil {
		fields = make(map[string]any)
	}

	return fields, nil
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	_ = validate.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())

		return err == nil
	})

	return validate
}

// MissingFields returns the JSON names of the required fields config does not satisfy.
func MissingFields(config BlockConfig) []string {
	if config == nil {
		return nil
	}

	err := configValidator.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	missing := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		missing = append(missing, fieldErr.Field())
	}

	return missing
}

// IsConfigured reports whether every field required by the config's block type is present and non-empty.
func IsConfigured(config BlockConfig) bool {
	if config == nil {
		return false
	}

	return configValidator.Struct(config) == nil
}

// Trigger configs.

type NewLeadConfig struct {
	Pipeline string `json:"pipeline,omitempty" validate:"required,notblank"`
	Source   string `json:"source,omitempty"`
}

func (NewLeadConfig) BlockType() BlockType { return BlockTypeNewLead }

func (c NewLeadConfig) Summary() string {
	if c.Source != "" {
		return fmt.Sprintf("New lead in %s from %s", c.Pipeline, c.Source)
	}

	return "New lead in " + c.Pipeline
}

type LeadMovedConfig struct {
	FromStage string `json:"from_stage,omitempty"`
	ToStage   string `json:"to_stage,omitempty"   validate:"required,notblank"`
}

func (LeadMovedConfig) BlockType() BlockType { return BlockTypeLeadMoved }

func (c LeadMovedConfig) Summary() string {
	if c.FromStage != "" {
		return fmt.Sprintf("Lead moved from %s to %s", c.FromStage, c.ToStage)
	}

	return "Lead moved to " + c.ToStage
}

type MessageReceivedConfig struct {
	Channel string `json:"channel,omitempty" validate:"required,notblank"`
	Keyword string `json:"keyword,omitempty"`
}

func (MessageReceivedConfig) BlockType() BlockType { return BlockTypeMessageReceived }

func (c MessageReceivedConfig) Summary() string {
	if c.Keyword != "" {
		return fmt.Sprintf("Message on %s containing %q", c.Channel, c.Keyword)
	}

	return "Message on " + c.Channel
}

type FormSubmittedConfig struct {
	FormID string `json:"form_id,omitempty" validate:"required,notblank"`
}

func (FormSubmittedConfig) BlockType() BlockType { return BlockTypeFormSubmitted }

func (c FormSubmittedConfig) Summary() string { return "Form " + c.FormID + " submitted" }

type ScheduleTriggeredConfig struct {
	Cron     string `json:"cron,omitempty"     validate:"required,cron"`
	Timezone string `json:"timezone,omitempty"`
}

func (ScheduleTriggeredConfig) BlockType() BlockType { return BlockTypeScheduleTriggered }

func (c ScheduleTriggeredConfig) Summary() string {
	if c.Timezone != "" {
		return fmt.Sprintf("Runs on %q (%s)", c.Cron, c.Timezone)
	}

	return fmt.Sprintf("Runs on %q", c.Cron)
}

// NextRun returns the first activation strictly after from.
func (c ScheduleTriggeredConfig) NextRun(from time.Time) (time.Time, error) {
	spec := c.Cron
	if c.Timezone != "" {
		spec = "CRON_TZ=" + c.Timezone + " " + spec
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", c.Cron, err)
	}

	return schedule.Next(from), nil
}

// Condition configs.

type LeadStatusConfig struct {
	Status string `json:"status,omitempty" validate:"required,notblank"`
}

func (LeadStatusConfig) BlockType() BlockType { return BlockTypeLeadStatus }

func (c LeadStatusConfig) Summary() string { return "Status is " + c.Status }

type LeadSourceConfig struct {
	Source string `json:"source,omitempty" validate:"required,notblank"`
}

func (LeadSourceConfig) BlockType() BlockType { return BlockTypeLeadSource }

func (c LeadSourceConfig) Summary() string { return "Source is " + c.Source }

type ValueGreaterConfig struct {
	Value *float64 `json:"value,omitempty" validate:"required"`
}

func (ValueGreaterConfig) BlockType() BlockType { return BlockTypeValueGreater }

func (c ValueGreaterConfig) Summary() string {
	if c.Value == nil {
		return "Value greater than ?"
	}

	return fmt.Sprintf("Value greater than %g", *c.Value)
}

type HasTagConfig struct {
	Tag string `json:"tag,omitempty" validate:"required,notblank"`
}

func (HasTagConfig) BlockType() BlockType { return BlockTypeHasTag }

func (c HasTagConfig) Summary() string { return "Has tag " + c.Tag }

type DateConditionConfig struct {
	Field    string `json:"field,omitempty"    validate:"required,notblank"`
	Operator string `json:"operator,omitempty" validate:"required,notblank"`
	Value    string `json:"value,omitempty"    validate:"required,notblank"`
}

func (DateConditionConfig) BlockType() BlockType { return BlockTypeDateCondition }

func (c DateConditionConfig) Summary() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
}

// Action configs.

type SendMessageConfig struct {
	Channel  string `json:"channel,omitempty"  validate:"required,notblank"`
	Message  string `json:"message,omitempty"`
	Template string `json:"template,omitempty"`
}

func (SendMessageConfig) BlockType() BlockType { return BlockTypeSendMessage }

func (c SendMessageConfig) Summary() string {
	if c.Template != "" {
		return fmt.Sprintf("Send template %s via %s", c.Template, c.Channel)
	}

	return "Send message via " + c.Channel
}

type CreateTaskConfig struct {
	Title     string `json:"title,omitempty"       validate:"required,notblank"`
	Assignee  string `json:"assignee,omitempty"`
	DueInDays int    `json:"due_in_days,omitempty" validate:"gte=0"`
}

func (CreateTaskConfig) BlockType() BlockType { return BlockTypeCreateTask }

func (c CreateTaskConfig) Summary() string {
	if c.DueInDays > 0 {
		return fmt.Sprintf("Create task %q due in %d days", c.Title, c.DueInDays)
	}

	return fmt.Sprintf("Create task %q", c.Title)
}

type MovePipelineConfig struct {
	Stage    string `json:"stage,omitempty"    validate:"required,notblank"`
	Pipeline string `json:"pipeline,omitempty"`
}

func (MovePipelineConfig) BlockType() BlockType { return BlockTypeMovePipeline }

func (c MovePipelineConfig) Summary() string { return "Move to " + c.Stage }

type AddTagConfig struct {
	Tag string `json:"tag,omitempty" validate:"required,notblank"`
}

func (AddTagConfig) BlockType() BlockType { return BlockTypeAddTag }

func (c AddTagConfig) Summary() string { return "Add tag " + c.Tag }

type AssignUserConfig struct {
	UserID string `json:"user_id,omitempty" validate:"required,notblank"`
}

func (AssignUserConfig) BlockType() BlockType { return BlockTypeAssignUser }

func (c AssignUserConfig) Summary() string { return "Assign to " + c.UserID }

type SendNotificationConfig struct {
	Message   string `json:"message,omitempty"   validate:"required,notblank"`
	Recipient string `json:"recipient,omitempty"`
}

func (SendNotificationConfig) BlockType() BlockType { return BlockTypeSendNotification }

func (c SendNotificationConfig) Summary() string {
	if c.Recipient != "" {
		return "Notify " + c.Recipient
	}

	return "Notify team"
}
