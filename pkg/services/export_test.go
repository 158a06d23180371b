package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/testutil"
)

func flowOrder(flow *Flow) []string {
	ids := make([]string, 0, len(flow.Nodes))
	for _, node := range flow.Nodes {
		ids = append(ids, node.ID)
	}

	return ids
}

func TestBuildFlow_BreadthFirstFromTriggers(t *testing.T) {
	blocks := []*models.Block{
		testutil.CreateTestBlock(testutil.WithID("send"),
			testutil.WithConfig(models.SendMessageConfig{Channel: "email", Message: "Hello"})),
		testutil.CreateTestBlock(testutil.WithID("tag"), testutil.WithConditionBlock(),
			testutil.WithConfig(models.HasTagConfig{Tag: "vip"}),
			testutil.WithConnections("send")),
		testutil.CreateTestBlock(testutil.WithID("lead"), testutil.WithTriggerBlock(),
			testutil.WithConfig(models.NewLeadConfig{Pipeline: "sales"}),
			testutil.WithConnections("tag", "send")),
	}

	flow := BuildFlow(blocks)

	assert.Equal(t, []string{"lead"}, flow.Roots)
	assert.Equal(t, []string{"lead", "tag", "send"}, flowOrder(flow))
	assert.Empty(t, flow.Unreachable)
	assert.Empty(t, flow.Unconfigured)
	assert.Empty(t, flow.Issues)
	assert.True(t, flow.Ready)

	depths := map[string]int{}
	for _, node := range flow.Nodes {
		depths[node.ID] = node.Depth
	}

	assert.Equal(t, map[string]int{"lead": 0, "tag": 1, "send": 1}, depths)

	want := []FlowEdge{
		{Source: "lead", Target: "tag"},
		{Source: "lead", Target: "send"},
		{Source: "tag", Target: "send"},
	}
	if diff := cmp.Diff(want, flow.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFlow_NotReady(t *testing.T) {
	blocks := []*models.Block{
		testutil.CreateTestBlock(testutil.WithID("lead"), testutil.WithTriggerBlock(),
			testutil.WithConnections("send", "ghost")),
		testutil.CreateTestBlock(testutil.WithID("send")),
		testutil.CreateTestBlock(testutil.WithID("orphan"), testutil.WithConditionBlock()),
	}

	flow := BuildFlow(blocks)

	assert.False(t, flow.Ready)
	assert.Equal(t, []string{"lead", "send", "orphan"}, flowOrder(flow))
	assert.Equal(t, []string{"orphan"}, flow.Unreachable)
	assert.Equal(t, []string{"lead", "send", "orphan"}, flow.Unconfigured)
	assert.Equal(t, -1, flow.Nodes[2].Depth)

	if diff := cmp.Diff([]FlowEdge{{Source: "lead", Target: "send"}}, flow.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, flow.Issues, graph.Issue{Kind: graph.IssueDanglingConnection, BlockID: "lead", TargetID: "ghost"})
}

func TestBuildFlow_Empty(t *testing.T) {
	flow := BuildFlow(nil)

	assert.False(t, flow.Ready)
	assert.Empty(t, flow.Nodes)
	assert.NotNil(t, flow.Edges)
	assert.NotNil(t, flow.Roots)
}

func TestBuildFlow_Cycle(t *testing.T) {
	blocks := []*models.Block{
		testutil.CreateTestBlock(testutil.WithID("lead"), testutil.WithTriggerBlock(),
			testutil.WithConfig(models.NewLeadConfig{Pipeline: "sales"}),
			testutil.WithConnections("a")),
		testutil.CreateTestBlock(testutil.WithID("a"),
			testutil.WithConfig(models.SendMessageConfig{Channel: "email", Message: "One"}),
			testutil.WithConnections("b")),
		testutil.CreateTestBlock(testutil.WithID("b"),
			testutil.WithConfig(models.SendMessageConfig{Channel: "email", Message: "Two"}),
			testutil.WithConnections("a")),
	}

	flow := BuildFlow(blocks)

	assert.Equal(t, []string{"lead", "a", "b"}, flowOrder(flow))
	assert.Len(t, flow.Edges, 3)
	assert.True(t, flow.Ready)
}
