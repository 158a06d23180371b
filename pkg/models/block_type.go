package models

import "errors"

// ErrUnknownBlockType indicates a block type outside the closed enumeration.
var ErrUnknownBlockType = errors.New("unknown block type")

// BlockType identifies the kind of a block. The set is closed.
type BlockType string

// Trigger block types.
const (
	BlockTypeNewLead           BlockType = "new_lead"
	BlockTypeLeadMoved         BlockType = "lead_moved"
	BlockTypeMessageReceived   BlockType = "message_received"
	BlockTypeFormSubmitted     BlockType = "form_submitted"
	BlockTypeScheduleTriggered BlockType = "schedule_triggered"
)

// Condition block types.
const (
	BlockTypeLeadStatus    BlockType = "lead_status"
	BlockTypeLeadSource    BlockType = "lead_source"
	BlockTypeValueGreater  BlockType = "value_greater"
	BlockTypeHasTag        BlockType = "has_tag"
	BlockTypeDateCondition BlockType = "date_condition"
)

// Action block types.
const (
	BlockTypeSendMessage      BlockType = "send_message"
	BlockTypeCreateTask       BlockType = "create_task"
	BlockTypeMovePipeline     BlockType = "move_pipeline"
	BlockTypeAddTag           BlockType = "add_tag"
	BlockTypeAssignUser       BlockType = "assign_user"
	BlockTypeSendNotification BlockType = "send_notification"
)

type blockDefinition struct {
	category    CategoryType
	label       string
	description string
	decode      configDecoder
}

var blockDefinitions = map[BlockType]blockDefinition{
	BlockTypeNewLead: {
		CategoryTypeTrigger, "New lead", "Starts when a lead is created",
		decodeAs[NewLeadConfig],
	},
	BlockTypeLeadMoved: {
		CategoryTypeTrigger, "Lead moved", "Starts when a lead changes pipeline stage",
		decodeAs[LeadMovedConfig],
	},
	BlockTypeMessageReceived: {
		CategoryTypeTrigger, "Message received", "Starts when a lead sends a message",
		decodeAs[MessageReceivedConfig],
	},
	BlockTypeFormSubmitted: {
		CategoryTypeTrigger, "Form submitted", "Starts when a capture form is submitted",
		decodeAs[FormSubmittedConfig],
	},
	BlockTypeScheduleTriggered: {
		CategoryTypeTrigger, "Schedule", "Starts on a recurring schedule",
		decodeAs[ScheduleTriggeredConfig],
	},
	BlockTypeLeadStatus: {
		CategoryTypeCondition, "Lead status", "Continues when the lead has a given status",
		decodeAs[LeadStatusConfig],
	},
	BlockTypeLeadSource: {
		CategoryTypeCondition, "Lead source", "Continues when the lead came from a given source",
		decodeAs[LeadSourceConfig],
	},
	BlockTypeValueGreater: {
		CategoryTypeCondition, "Value greater than", "Continues when the deal value exceeds a threshold",
		decodeAs[ValueGreaterConfig],
	},
	BlockTypeHasTag: {
		CategoryTypeCondition, "Has tag", "Continues when the lead carries a tag",
		decodeAs[HasTagConfig],
	},
	BlockTypeDateCondition: {
		CategoryTypeCondition, "Date condition", "Continues when a date field matches",
		decodeAs[DateConditionConfig],
	},
	BlockTypeSendMessage: {
		CategoryTypeAction, "Send message", "Sends a message to the lead",
		decodeAs[SendMessageConfig],
	},
	BlockTypeCreateTask: {
		CategoryTypeAction, "Create task", "Creates a follow-up task",
		decodeAs[CreateTaskConfig],
	},
	BlockTypeMovePipeline: {
		CategoryTypeAction, "Move in pipeline", "Moves the lead to another stage",
		decodeAs[MovePipelineConfig],
	},
	BlockTypeAddTag: {
		CategoryTypeAction, "Add tag", "Adds a tag to the lead",
		decodeAs[AddTagConfig],
	},
	BlockTypeAssignUser: {
		CategoryTypeAction, "Assign user", "Assigns the lead to a team member",
		decodeAs[AssignUserConfig],
	},
	BlockTypeSendNotification: {
		CategoryTypeAction, "Send notification", "Notifies the team",
		decodeAs[SendNotificationConfig],
	},
}

var blockTypeOrder = []BlockType{
	BlockTypeNewLead, BlockTypeLeadMoved, BlockTypeMessageReceived, BlockTypeFormSubmitted, BlockTypeScheduleTriggered,
	BlockTypeLeadStatus, BlockTypeLeadSource, BlockTypeValueGreater, BlockTypeHasTag, BlockTypeDateCondition,
	BlockTypeSendMessage, BlockTypeCreateTask, BlockTypeMovePipeline, BlockTypeAddTag, BlockTypeAssignUser,
	BlockTypeSendNotification,
}

// BlockTypes returns every block type, triggers first.
func BlockTypes() []BlockType {
	out := make([]BlockType, len(blockTypeOrder))
	copy(out, blockTypeOrder)

	return out
}

// Valid reports whether t belongs to the closed enumeration.
func (t BlockType) Valid() bool {
	_, ok := blockDefinitions[t]

	return ok
}

// Category returns the fixed category of the block type, or "" for unknown types.
func (t BlockType) Category() CategoryType {
	return blockDefinitions[t].category
}

// Label returns the palette label.
func (t BlockType) Label() string {
	return blockDefinitions[t].label
}

// Description returns the palette description.
func (t BlockType) Description() string {
	return blockDefinitions[t].description
}

// EmptyConfig returns the zero config for the block type.
func (t BlockType) EmptyConfig() BlockConfig {
	def, ok := blockDefinitions[t]
	if !ok {
		return nil
	}

	config, _ := def.decode(nil)

	return config
}

// PaletteEntry describes an addable block type.
type PaletteEntry struct {
	Type        BlockType    `json:"type"`
	Category    CategoryType `json:"category"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
}

// Palette returns the block types grouped by category, in palette order.
func Palette() map[CategoryType][]PaletteEntry {
	palette := make(map[CategoryType][]PaletteEntry, len(Categories()))

	for _, t := range blockTypeOrder {
		def := blockDefinitions[t]
		palette[def.category] = append(palette[def.category], PaletteEntry{
			Type:        t,
			Category:    def.category,
			Label:       def.label,
			Description: def.description,
		})
	}

	return palette
}
