package models

// AutomationTemplate is a named, pre-built block set used to seed a fresh graph.
type AutomationTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Blocks      []*Block `json:"blocks"`
}

// CloneBlocks returns deep copies of the template blocks.
func (t *AutomationTemplate) CloneBlocks() []*Block {
	return CloneBlocks(t.Blocks)
}

// CloneBlocks deep-copies a block list.
func CloneBlocks(blocks []*Block) []*Block {
	out := make([]*Block, 0, len(blocks))
	for _, block := range blocks {
		out = append(out, block.Clone())
	}

	return out
}
