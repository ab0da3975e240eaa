package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/services/dto"
)

func newProposalRequest(price int) *dto.SubmitProposalRequest {
	return &dto.SubmitProposalRequest{
		ProposalText:   "I can do this",
		ProposedPrice:  price,
		SubmissionDate: futureDate(20),
	}
}

func TestSubmitProposal_SpendsOneBid(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	resp, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)
	assert.Equal(t, "bob", resp.ProposerUsername)
	assert.False(t, resp.IsAccepted)

	assert.Equal(t, 4, env.bidsOf(t, proposer.ID))

	logs := env.logsOf(t, proposer.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, models.TransactionBidsSpent, logs[0].TransactionType)
	assert.Equal(t, "Spent 1 bid to propose on 'Landing page' project.", logs[0].Description)
}

func TestSubmitProposal_OwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	_, err := env.proposals.SubmitProposal(env.db, owner, project.ID, newProposalRequest(80))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, 5, env.bidsOf(t, owner.ID))
}

func TestSubmitProposal_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	_, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)

	_, err = env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(90))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotEligible))
	assert.Equal(t, 4, env.bidsOf(t, proposer.ID))
}

func TestSubmitProposal_NoBidsLeft(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)
	require.NoError(t, env.db.Model(&models.Bid{}).Where("user_id = ?", proposer.ID).UpdateColumn("nb_bid", 0).Error)

	_, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientBids))

	proposals, listErr := env.proposals.ListMine(env.db, proposer.ID)
	require.NoError(t, listErr)
	assert.Empty(t, proposals)
}

func TestSubmitProposal_PriceValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	// цена вне рамок без флага корректировки
	_, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(150))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPriceOutOfRange))

	// с флагом цена обязана выходить за рамки
	req := newProposalRequest(80)
	req.IsPriceAdjusted = true
	_, err = env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.Error(t, err)

	req = newProposalRequest(150)
	req.IsPriceAdjusted = true
	_, err = env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.NoError(t, err)
}

func TestSubmitProposal_DateValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	// срок сдачи позже дедлайна проекта без флага корректировки
	req := newProposalRequest(80)
	req.SubmissionDate = futureDate(45)
	_, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDateOutOfRange))

	// с флагом дата обязана быть позже дедлайна
	req = newProposalRequest(80)
	req.SubmissionDate = futureDate(20)
	req.IsDateAdjusted = true
	_, err = env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.Error(t, err)

	req = newProposalRequest(80)
	req.SubmissionDate = futureDate(45)
	req.IsDateAdjusted = true
	_, err = env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.NoError(t, err)
}

func TestChooseProposal_RefundsWhenBidLower(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)

	chosen, err := env.proposals.ChooseProposal(env.db, owner, project.ID, submitted.ID)
	require.NoError(t, err)
	assert.True(t, chosen.Proposal.IsAccepted)

	// разница с maxPrice возвращается владельцу из эскроу
	assert.Equal(t, 70, env.pointsOf(t, owner.ID))
	assert.Equal(t, 80, env.pointsOf(t, env.platform.ID))

	ownerLogs := env.logsOf(t, owner.ID)
	require.Len(t, ownerLogs, 2)
	assert.Equal(t, "Received 20 points - bob bid lower than the expected price for 'Landing page' project.", ownerLogs[0].Description)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 2)
	assert.Equal(t, "Spent 20 points for 'alice' - bob bid lower than the expected price for 'Landing page' project.", platformLogs[0].Description)

	updated, err := env.projectRepo.FindByID(env.db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusInProgress, updated.Status)
}

func TestChooseProposal_ChargesExtraWhenBidHigher(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	req := newProposalRequest(130)
	req.IsPriceAdjusted = true
	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.NoError(t, err)

	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, submitted.ID)
	require.NoError(t, err)

	assert.Equal(t, 20, env.pointsOf(t, owner.ID))
	assert.Equal(t, 130, env.pointsOf(t, env.platform.ID))

	ownerLogs := env.logsOf(t, owner.ID)
	require.Len(t, ownerLogs, 2)
	assert.Equal(t, "Spent extra 30 points to choose 'bob' proposal for 'Landing page' project.", ownerLogs[0].Description)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 2)
	assert.Equal(t, "Received extra 30 points form alice to choose 'bob' proposal for 'Landing page' project.", platformLogs[0].Description)
}

func TestChooseProposal_ExtraChargeInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 110)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	req := newProposalRequest(130)
	req.IsPriceAdjusted = true
	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, req)
	require.NoError(t, err)

	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, submitted.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientBalance))

	// вся транзакция откатывается, проект остается активным
	updated, findErr := env.projectRepo.FindByID(env.db, project.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.ProjectStatusActive, updated.Status)
	assert.Equal(t, 10, env.pointsOf(t, owner.ID))
}

func TestChooseProposal_SecondChoiceRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 300)
	first := createTestUser(t, env.db, "bob", 0)
	second := createTestUser(t, env.db, "carol", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	p1, err := env.proposals.SubmitProposal(env.db, first, project.ID, newProposalRequest(80))
	require.NoError(t, err)
	p2, err := env.proposals.SubmitProposal(env.db, second, project.ID, newProposalRequest(90))
	require.NoError(t, err)

	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, p1.ID)
	require.NoError(t, err)

	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, p2.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrProposalChosen))
}

func TestChooseProposal_OpensChatWithBothParties(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)
	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, submitted.ID)
	require.NoError(t, err)

	room, err := env.chatRepo.FindByProject(env.db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChatRoomStatusActive, room.Status)
	assert.NotEmpty(t, room.Slug)
	require.Len(t, room.Participants, 2)

	names := []string{room.Participants[0].Username, room.Participants[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestWithdrawProposal_NoBidRefund(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)

	require.NoError(t, env.proposals.WithdrawProposal(env.db, proposer, submitted.ID))
	assert.Equal(t, 4, env.bidsOf(t, proposer.ID))

	mine, err := env.proposals.ListMine(env.db, proposer.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestWithdrawProposal_AcceptedCannotBeWithdrawn(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	submitted, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)
	_, err = env.proposals.ChooseProposal(env.db, owner, project.ID, submitted.ID)
	require.NoError(t, err)

	err = env.proposals.WithdrawProposal(env.db, proposer, submitted.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestListForProject_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	proposer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	_, err := env.proposals.SubmitProposal(env.db, proposer, project.ID, newProposalRequest(80))
	require.NoError(t, err)

	list, err := env.proposals.ListForProject(env.db, owner, project.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.proposals.ListForProject(env.db, proposer, project.ID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
