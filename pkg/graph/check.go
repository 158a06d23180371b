package graph

import "github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"

// IssueKind classifies a structural problem found by Check.
type IssueKind string

const (
	IssueDuplicateBlockID       IssueKind = "duplicate_block_id"
	IssueUnknownBlockType       IssueKind = "unknown_block_type"
	IssueDanglingConnection     IssueKind = "dangling_connection"
	IssueSelfConnection         IssueKind = "self_connection"
	IssueDuplicateConnection    IssueKind = "duplicate_connection"
	IssueInvalidCategoryPairing IssueKind = "invalid_category_pairing"
)

// Issue is a single integrity finding.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	BlockID  string    `json:"block_id"`
	TargetID string    `json:"target_id,omitempty"`
}

// Check reports every invariant a block set violates. It never modifies blocks;
// ReplaceAll accepts trusted input regardless of the outcome.
func Check(blocks []*models.Block) []Issue {
	issues := make([]Issue, 0)
	byID := make(map[string]*models.Block, len(blocks))

	for _, block := range blocks {
		if block == nil {
			continue
		}

		if _, exists := byID[block.ID]; exists {
			issues = append(issues, Issue{Kind: IssueDuplicateBlockID, BlockID: block.ID})
		}

		byID[block.ID] = block

		if !block.Type.Valid() {
			issues = append(issues, Issue{Kind: IssueUnknownBlockType, BlockID: block.ID})
		}
	}

	for _, block := range blocks {
		if block == nil {
			continue
		}

		seen := make(map[string]bool, len(block.Connections))

		for _, targetID := range block.Connections {
			issue := Issue{BlockID: block.ID, TargetID: targetID}
			target, exists := byID[targetID]

			switch {
			case seen[targetID]:
				issue.Kind = IssueDuplicateConnection
			case !exists:
				issue.Kind = IssueDanglingConnection
			case targetID == block.ID:
				issue.Kind = IssueSelfConnection
			case !models.IsConnectionValid(block.Category, target.Category):
				issue.Kind = IssueInvalidCategoryPairing
			}

			seen[targetID] = true

			if issue.Kind != "" {
				issues = append(issues, issue)
			}
		}
	}

	return issues
}
