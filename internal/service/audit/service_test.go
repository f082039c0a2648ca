package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository/memory"
)

func TestLogRecordsClient(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := WithClient(context.Background(), Client{IPAddress: "10.0.0.1", UserAgent: "test"})

	svc.Log(ctx, 4, model.AuditActionRead, model.AuditResourceMedicalRecord, 9, model.AuditStatusSuccess)
	svc.Log(ctx, 4, model.AuditActionLogin, model.AuditResourceSession, 0, model.AuditStatusSuccess)

	events, err := svc.List(ctx, 4, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	login := events[0]
	assert.Equal(t, model.AuditActionLogin, login.Action)
	assert.Nil(t, login.ResourceID)

	read := events[1]
	require.NotNil(t, read.ResourceID)
	assert.Equal(t, int64(9), *read.ResourceID)
	assert.Equal(t, "10.0.0.1", read.IPAddress)
	assert.Equal(t, "test", read.UserAgent)
}

func TestCleanup(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	svc.Log(ctx, 1, model.AuditActionRead, model.AuditResourceMedicalRecord, 1, model.AuditStatusSuccess)
	svc.now = func() time.Time { return base.AddDate(0, 2, 0) }
	svc.Log(ctx, 1, model.AuditActionRead, model.AuditResourceMedicalRecord, 2, model.AuditStatusSuccess)

	n, err := svc.Cleanup(ctx, base.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
