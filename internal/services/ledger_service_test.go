package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
)

func TestHoldFromUser_PairedTransaction(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 150)

	err := env.ledger.HoldFromUser(env.db, user, 100, "user side", "platform side")
	require.NoError(t, err)

	assert.Equal(t, 50, env.pointsOf(t, user.ID))
	assert.Equal(t, 100, env.pointsOf(t, env.platform.ID))

	userLogs := env.logsOf(t, user.ID)
	require.Len(t, userLogs, 1)
	assert.Equal(t, models.TransactionPointsSpent, userLogs[0].TransactionType)
	assert.Equal(t, 100, userLogs[0].Amount)
	assert.Equal(t, "user side", userLogs[0].Description)
	assert.Equal(t, "alice", userLogs[0].Username)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 1)
	assert.Equal(t, models.TransactionSuperPointsReceived, platformLogs[0].TransactionType)
	assert.Equal(t, "platform side", platformLogs[0].Description)
}

func TestHoldFromUser_InsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 40)

	err := env.ledger.HoldFromUser(env.db, user, 100, "user side", "platform side")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientBalance))

	// ни одна сторона не изменилась
	assert.Equal(t, 40, env.pointsOf(t, user.ID))
	assert.Equal(t, 0, env.pointsOf(t, env.platform.ID))
	assert.Empty(t, env.logsOf(t, user.ID))
	assert.Empty(t, env.logsOf(t, env.platform.ID))
}

func TestReleaseToUser_PlatformMayGoNegative(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 0)

	err := env.ledger.ReleaseToUser(env.db, user.ID, user.Username, 30, "platform side", "user side")
	require.NoError(t, err)

	assert.Equal(t, 30, env.pointsOf(t, user.ID))
	assert.Equal(t, -30, env.pointsOf(t, env.platform.ID))
}

func TestSpendBid_FailsAtZero(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 0)
	require.NoError(t, env.db.Model(&models.Bid{}).Where("user_id = ?", user.ID).UpdateColumn("nb_bid", 0).Error)

	err := env.ledger.SpendBid(env.db, user, "spend")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientBids))
	assert.Empty(t, env.logsOf(t, user.ID))
}

func TestRewardBid_Uncapped(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 0)

	require.NoError(t, env.ledger.RewardBid(env.db, user.ID, user.Username, "reward"))
	assert.Equal(t, 6, env.bidsOf(t, user.ID))
}

func TestRefillBids_CapsAtCeilingAndLogsDelta(t *testing.T) {
	env := newTestEnv(t)
	low := createTestUser(t, env.db, "low", 0)
	near := createTestUser(t, env.db, "near", 0)
	full := createTestUser(t, env.db, "full", 0)
	require.NoError(t, env.db.Model(&models.Bid{}).Where("user_id = ?", low.ID).UpdateColumn("nb_bid", 1).Error)
	require.NoError(t, env.db.Model(&models.Bid{}).Where("user_id = ?", near.ID).UpdateColumn("nb_bid", 4).Error)

	granted, err := env.ledger.RefillBids(env.db)
	require.NoError(t, err)
	assert.Equal(t, 3, granted)

	assert.Equal(t, 3, env.bidsOf(t, low.ID))
	assert.Equal(t, 5, env.bidsOf(t, near.ID))
	assert.Equal(t, 5, env.bidsOf(t, full.ID))

	lowLogs := env.logsOf(t, low.ID)
	require.Len(t, lowLogs, 1)
	assert.Equal(t, models.TransactionBidsReceived, lowLogs[0].TransactionType)
	assert.Equal(t, 2, lowLogs[0].Amount)
	assert.Equal(t, "Received bids as part of weekly allocation.", lowLogs[0].Description)

	nearLogs := env.logsOf(t, near.ID)
	require.Len(t, nearLogs, 1)
	assert.Equal(t, 1, nearLogs[0].Amount)

	// полный счетчик не трогается и не логируется
	assert.Empty(t, env.logsOf(t, full.ID))
}

func TestGetBalance(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice", 77)

	balance, err := env.ledger.GetBalance(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, balance.Points)
	assert.Equal(t, 5, balance.Bids)
}
