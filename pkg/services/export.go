package services

import (
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

// FlowNode is one step of an exported flow.
type FlowNode struct {
	ID         string              `json:"id"`
	Type       models.BlockType    `json:"type"`
	Category   models.CategoryType `json:"category"`
	Configured bool                `json:"configured"`
	Summary    string              `json:"summary"`
	Config     models.BlockConfig  `json:"config"`
	Depth      int                 `json:"depth"`
}

type FlowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Flow is the description of a graph handed to an execution engine. Nodes are
// ordered breadth-first from the triggers; blocks no trigger reaches follow in
// graph order with depth -1.
type Flow struct {
	AutomationID string        `json:"automation_id,omitempty"`
	Name         string        `json:"name,omitempty"`
	Roots        []string      `json:"roots"`
	Nodes        []FlowNode    `json:"nodes"`
	Edges        []FlowEdge    `json:"edges"`
	Unreachable  []string      `json:"unreachable"`
	Unconfigured []string      `json:"unconfigured"`
	Issues       []graph.Issue `json:"issues"`
	Ready        bool          `json:"ready"`
}

// BuildFlow converts blocks into a Flow. Dangling connections are left out of
// the edges and reported in Issues. A flow is ready when it has a trigger,
// every block is configured and reachable, and there are no issues.
func BuildFlow(blocks []*models.Block) *Flow {
	flow := &Flow{
		Roots:        make([]string, 0),
		Nodes:        make([]FlowNode, 0, len(blocks)),
		Edges:        make([]FlowEdge, 0),
		Unreachable:  make([]string, 0),
		Unconfigured: make([]string, 0),
		Issues:       graph.Check(blocks),
	}

	byID := make(map[string]*models.Block, len(blocks))
	order := make([]*models.Block, 0, len(blocks))

	for _, block := range blocks {
		if block == nil {
			continue
		}

		if _, seen := byID[block.ID]; !seen {
			order = append(order, block)
		}

		byID[block.ID] = block
	}

	depth := make(map[string]int, len(order))
	queue := make([]string, 0, len(order))

	for _, block := range order {
		if block.Category == models.CategoryTypeTrigger {
			flow.Roots = append(flow.Roots, block.ID)
			depth[block.ID] = 0
			queue = append(queue, block.ID)
		}
	}

	visited := make([]string, 0, len(order))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited = append(visited, id)

		for _, target := range byID[id].Connections {
			if _, exists := byID[target]; !exists {
				continue
			}

			if _, seen := depth[target]; !seen {
				depth[target] = depth[id] + 1
				queue = append(queue, target)
			}
		}
	}

	for _, id := range visited {
		flow.Nodes = append(flow.Nodes, newFlowNode(byID[id], depth[id]))
	}

	for _, block := range order {
		if _, reached := depth[block.ID]; !reached {
			flow.Unreachable = append(flow.Unreachable, block.ID)
			flow.Nodes = append(flow.Nodes, newFlowNode(block, -1))
		}
	}

	emitted := make(map[FlowEdge]bool)

	for _, node := range flow.Nodes {
		for _, target := range byID[node.ID].Connections {
			edge := FlowEdge{Source: node.ID, Target: target}
			if _, exists := byID[target]; !exists || emitted[edge] {
				continue
			}

			emitted[edge] = true
			flow.Edges = append(flow.Edges, edge)
		}

		if !node.Configured {
			flow.Unconfigured = append(flow.Unconfigured, node.ID)
		}
	}

	flow.Ready = len(flow.Roots) > 0 &&
		len(flow.Unreachable) == 0 &&
		len(flow.Unconfigured) == 0 &&
		len(flow.Issues) == 0

	return flow
}

func newFlowNode(block *models.Block, depth int) FlowNode {
	return FlowNode{
		ID:         block.ID,
		Type:       block.Type,
		Category:   block.Category,
		Configured: block.Configured,
		Summary:    block.Summary(),
		Config:     block.Config,
		Depth:      depth,
	}
}
