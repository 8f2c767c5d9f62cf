package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/introspect"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/workers"
)

func TestProcessChangeLog(t *testing.T) {
	stub := &introspect.StubIntrospector{
		TableExistsFunc: func(ctx context.Context, schema, table string) (bool, error) {
			return true, nil
		},
		ColumnExistsFunc: func(ctx context.Context, schema, table, column string) (bool, error) {
			return true, nil
		},
	}
	p := newTestPipeline(stub, successfulMock())
	pool := workers.NewPool(workers.PoolConfig{MaxConcurrent: 2}, zap.NewNop())
	b := NewBatchProcessor(p, pool, zap.NewNop())

	requests := []models.ChangeRequest{
		{TableName: "bal.bal_loss_tran", ColumnName: "pol_lapse_ind", TicketID: "BAS-9818", Description: "Lapse indicator fix"},
		{TableName: "bal.bal_prem_tran", TicketID: "BAS-9819", Description: "Premium rounding"},
		{Description: "row without a table"},
	}

	var progressCalls atomic.Int32
	results, failed := b.ProcessChangeLog(context.Background(), requests, func(completed, total int) {
		progressCalls.Add(1)
	})

	assert.Len(t, results, 2)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(3), progressCalls.Load())

	tables := make(map[string]bool)
	for _, r := range results {
		tables[r.Dataset.TableName] = true
		assert.NotEmpty(t, r.Dataset.JiraID)
	}
	assert.True(t, tables["bal_loss_tran"])
	assert.True(t, tables["bal_prem_tran"])
}

func TestProcessChangeLog_HistoryGroupsByObject(t *testing.T) {
	stub := &introspect.StubIntrospector{
		TableExistsFunc: func(ctx context.Context, schema, table string) (bool, error) {
			return true, nil
		},
	}
	p := newTestPipeline(stub, successfulMock())
	pool := workers.NewPool(workers.PoolConfig{MaxConcurrent: 2}, zap.NewNop())
	b := NewBatchProcessor(p, pool, zap.NewNop())

	requests := []models.ChangeRequest{
		{TableName: "bal.bal_loss_tran", TicketID: "BAS-9001", Description: "Initial load"},
		{TableName: "dbo.orders", TicketID: "BAS-9500", Description: "Unrelated change"},
		{TableName: "bal.bal_loss_tran", TicketID: "BAS-9600", Description: "Index rebuild"},
		{TableName: "bal.bal_loss_tran", TicketID: "BAS-9818", Description: "Lapse indicator fix"},
	}

	results, failed := b.ProcessChangeLog(context.Background(), requests, nil)
	require.Zero(t, failed)
	require.Len(t, results, 4)

	byTicket := make(map[string]*PipelineResult, len(results))
	for _, r := range results {
		byTicket[r.Dataset.JiraID] = r
	}

	latest := byTicket["BAS-9818"].Dataset
	require.Len(t, latest.VersionHistory, 3)
	assert.Equal(t, "BAS-9818", latest.VersionHistory[0].RefDoc)
	assert.Equal(t, "BAS-9600", latest.VersionHistory[1].RefDoc)
	assert.Equal(t, "BAS-9001", latest.VersionHistory[2].RefDoc)
	assert.Equal(t, latest.VersionHistory, latest.RecentChanges)

	assert.Len(t, byTicket["BAS-9500"].Dataset.VersionHistory, 1)
	assert.Len(t, byTicket["BAS-9001"].Dataset.VersionHistory, 1)
}

func TestProcessChangeLog_Empty(t *testing.T) {
	p := newTestPipeline(&introspect.StubIntrospector{}, successfulMock())
	pool := workers.NewPool(workers.DefaultPoolConfig(), zap.NewNop())
	b := NewBatchProcessor(p, pool, zap.NewNop())

	results, failed := b.ProcessChangeLog(context.Background(), nil, nil)
	assert.Nil(t, results)
	assert.Zero(t, failed)
}
