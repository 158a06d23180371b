package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/graph"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/testutil"
)

func TestCheck_CleanTemplate(t *testing.T) {
	assert.Empty(t, graph.Check(testutil.CreateTestTemplate().Blocks))
}

func TestCheck_ReportsEveryViolation(t *testing.T) {
	blocks := []*models.Block{
		testutil.CreateTestBlock(testutil.WithID("t"), testutil.WithTriggerBlock(), testutil.WithConnections("a", "a", "missing", "t")),
		testutil.CreateTestBlock(testutil.WithID("a"), testutil.WithConnections("t")),
		testutil.CreateTestBlock(testutil.WithID("a")),
		testutil.CreateTestBlock(testutil.WithID("x"), func(b *models.Block) { b.Type = "send_fax" }),
		nil,
	}

	issues := graph.Check(blocks)

	assert.ElementsMatch(t, []graph.Issue{
		{Kind: graph.IssueDuplicateBlockID, BlockID: "a"},
		{Kind: graph.IssueUnknownBlockType, BlockID: "x"},
		{Kind: graph.IssueDuplicateConnection, BlockID: "t", TargetID: "a"},
		{Kind: graph.IssueDanglingConnection, BlockID: "t", TargetID: "missing"},
		{Kind: graph.IssueSelfConnection, BlockID: "t", TargetID: "t"},
		{Kind: graph.IssueInvalidCategoryPairing, BlockID: "a", TargetID: "t"},
	}, issues)
}
