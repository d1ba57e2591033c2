package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freshmart/internal/core/id"
	"freshmart/internal/infrastructure/storage/postgres"
)

func TestFromAuditEntries(t *testing.T) {
	entryID := id.New()
	createdAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	entries := []postgres.AuditEntry{
		{
			ID:        entryID,
			Action:    postgres.AuditActionStockIn,
			UserID:    "u1",
			UserEmail: "manager@freshmart.test",
			Changes:   json.RawMessage(`{"number":"ST-2026-00001"}`),
			CreatedAt: createdAt,
		},
	}

	out := FromAuditEntries(entries)
	require.Len(t, out, 1)

	assert.Equal(t, entryID.String(), out[0].ID)
	assert.Equal(t, "stock_in", out[0].Action)
	assert.Equal(t, "manager@freshmart.test", out[0].UserEmail)
	assert.JSONEq(t, `{"number":"ST-2026-00001"}`, string(out[0].Changes))
	assert.Equal(t, createdAt, out[0].CreatedAt)
}

func TestFromAuditEntries_Empty(t *testing.T) {
	out := FromAuditEntries(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}
