package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/models"
	"fls_backend/internal/services/dto"
)

// Сквозной сценарий: публикация, предложение, выбор, завершение
// и взаимные отзывы. Проверяются балансы всех трех сторон.
func TestMarketplaceFlow(t *testing.T) {
	env := newTestEnv(t)

	client, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)
	worker, err := env.auth.Register(env.db, &dto.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "password123",
	})
	require.NoError(t, err)

	alice, err := env.users.GetMe(env.db, client.User.ID)
	require.NoError(t, err)
	bob, err := env.users.GetMe(env.db, worker.User.ID)
	require.NoError(t, err)

	aliceUser := &models.User{Username: alice.Username}
	aliceUser.ID = alice.ID
	bobUser := &models.User{Username: bob.Username}
	bobUser.ID = bob.ID

	// публикация резервирует maxPrice
	project, err := env.projects.CreateProject(env.db, aliceUser, newProjectRequest("Landing page", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, 0, env.pointsOf(t, alice.ID))
	assert.Equal(t, 100, env.pointsOf(t, env.platform.ID))

	// предложение стоит одну ставку
	proposal, err := env.proposals.SubmitProposal(env.db, bobUser, project.ID, newProposalRequest(80))
	require.NoError(t, err)
	assert.Equal(t, 4, env.bidsOf(t, bob.ID))

	// выбор возвращает владельцу разницу с maxPrice
	_, err = env.proposals.ChooseProposal(env.db, aliceUser, project.ID, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, env.pointsOf(t, alice.ID))
	assert.Equal(t, 80, env.pointsOf(t, env.platform.ID))

	// завершение выплачивает эскроу и возвращает исполнителю ставку
	require.NoError(t, env.reviews.MarkComplete(env.db, aliceUser, project.ID))
	assert.Equal(t, 180, env.pointsOf(t, bob.ID))
	assert.Equal(t, 0, env.pointsOf(t, env.platform.ID))
	assert.Equal(t, 5, env.bidsOf(t, bob.ID))

	// взаимные отзывы добавляют исполнителю еще одну ставку
	bobPending, err := env.reviews.ListPendingReviews(env.db, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobPending, 1)
	_, err = env.reviews.SubmitReview(env.db, bobUser, bobPending[0].ID, &dto.SubmitReviewRequest{Rating: 5})
	require.NoError(t, err)

	alicePending, err := env.reviews.ListPendingReviews(env.db, alice.ID)
	require.NoError(t, err)
	require.Len(t, alicePending, 1)
	_, err = env.reviews.SubmitReview(env.db, aliceUser, alicePending[0].ID, &dto.SubmitReviewRequest{Rating: 4.5})
	require.NoError(t, err)

	assert.Equal(t, 6, env.bidsOf(t, bob.ID))
}
