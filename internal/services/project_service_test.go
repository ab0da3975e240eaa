package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/appErrors"
	"fls_backend/internal/models"
	"fls_backend/internal/services/dto"
)

func TestCreateProject_ReservesEscrow(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)

	resp, err := env.projects.CreateProject(env.db, owner, newProjectRequest("Landing page", 10, 100))
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, "alice", resp.PublishedUsername)

	assert.Equal(t, 50, env.pointsOf(t, owner.ID))
	assert.Equal(t, 100, env.pointsOf(t, env.platform.ID))

	ownerLogs := env.logsOf(t, owner.ID)
	require.Len(t, ownerLogs, 1)
	assert.Equal(t, "Spent 100 to create 'Landing page' project.", ownerLogs[0].Description)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 1)
	assert.Equal(t, "Received 100 form 'alice' to create 'Landing page' project.", platformLogs[0].Description)
}

func TestCreateProject_InsufficientBalanceLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 30)

	_, err := env.projects.CreateProject(env.db, owner, newProjectRequest("Landing page", 10, 100))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientBalance))

	assert.Equal(t, 30, env.pointsOf(t, owner.ID))
	assert.Empty(t, env.logsOf(t, owner.ID))

	projects, err := env.projectRepo.ListByOwner(env.db, owner.ID, "")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProject_ProposalDeadlineAfterDueDate(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)

	req := newProjectRequest("Landing page", 10, 100)
	req.DueDate = futureDate(5)
	req.ProposalTimeEnd = futureDate(10)

	_, err := env.projects.CreateProject(env.db, owner, req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))
}

func TestCreateProject_PastDueDateRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)

	req := newProjectRequest("Landing page", 10, 100)
	req.DueDate = pastDate(10)
	req.ProposalTimeEnd = pastDate(10)

	_, err := env.projects.CreateProject(env.db, owner, req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))

	// баланс не тронут, для обхода устаревания ничего не создано
	assert.Equal(t, 150, env.pointsOf(t, owner.ID))
	expired, err := env.projects.ExpireDueProjects(env.db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
}

func TestUpdateProject_PastDueDateRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	past := pastDate(5)
	_, err := env.projects.UpdateProject(env.db, owner, project.ID,
		&dto.UpdateProjectRequest{DueDate: &past, ProposalTimeEnd: &past})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))
}

func TestDeleteProject_RestoresEscrow(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	require.NoError(t, env.projects.DeleteProject(env.db, owner, project.ID))

	assert.Equal(t, 150, env.pointsOf(t, owner.ID))
	assert.Equal(t, 0, env.pointsOf(t, env.platform.ID))

	ownerLogs := env.logsOf(t, owner.ID)
	require.Len(t, ownerLogs, 2)
	assert.Equal(t, "Restored 100 points for deleting 'Landing page' project.", ownerLogs[0].Description)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 2)
	assert.Equal(t, "Restored 100 points to 'alice' for deleting 'Landing page' project.", platformLogs[0].Description)

	_, err := env.projectRepo.FindByID(env.db, project.ID)
	assert.Error(t, err)
}

func TestDeleteProject_OnlyOwnerAndOnlyActive(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	other := createTestUser(t, env.db, "bob", 150)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	err := env.projects.DeleteProject(env.db, other, project.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, env.db.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumn("status", models.ProjectStatusInProgress).Error)
	err = env.projects.DeleteProject(env.db, owner, project.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestExpireDueProjects_RefundsOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	// дедлайн предложений в прошлом
	require.NoError(t, env.db.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumn("proposal_time_end", time.Now().AddDate(0, 0, -1)).Error)

	expired, err := env.projects.ExpireDueProjects(env.db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	updated, err := env.projectRepo.FindByID(env.db, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusExpired, updated.Status)

	assert.Equal(t, 150, env.pointsOf(t, owner.ID))
	assert.Equal(t, 0, env.pointsOf(t, env.platform.ID))

	ownerLogs := env.logsOf(t, owner.ID)
	require.Len(t, ownerLogs, 2)
	assert.Equal(t, "Received 100 points due to the expiry of 'Landing page' project.", ownerLogs[0].Description)

	platformLogs := env.logsOf(t, env.platform.ID)
	require.Len(t, platformLogs, 2)
	assert.Equal(t, "Spent 100 points for 'alice' due to the expiry of 'Landing page' project.", platformLogs[0].Description)

	// повторный обход ничего не трогает
	expired, err = env.projects.ExpireDueProjects(env.db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	assert.Equal(t, 150, env.pointsOf(t, owner.ID))
}

func TestSetSaved_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	owner := createTestUser(t, env.db, "alice", 150)
	viewer := createTestUser(t, env.db, "bob", 0)
	project := env.createActiveProject(t, owner, "Landing page", 10, 100)

	require.NoError(t, env.projects.SetSaved(env.db, viewer, project.ID, true))
	require.NoError(t, env.projects.SetSaved(env.db, viewer, project.ID, true))

	saved, err := env.projects.ListSaved(env.db, viewer.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, project.ID, saved[0].ID)

	require.NoError(t, env.projects.SetSaved(env.db, viewer, project.ID, false))
	require.NoError(t, env.projects.SetSaved(env.db, viewer, project.ID, false))

	saved, err = env.projects.ListSaved(env.db, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestListAvailable_ExcludesOwnProjects(t *testing.T) {
	env := newTestEnv(t)
	alice := createTestUser(t, env.db, "alice", 300)
	bob := createTestUser(t, env.db, "bob", 300)
	env.createActiveProject(t, alice, "Alice project", 10, 100)
	env.createActiveProject(t, bob, "Bob project", 10, 100)

	available, err := env.projects.ListAvailable(env.db, alice.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Bob project", available[0].Title)
}
