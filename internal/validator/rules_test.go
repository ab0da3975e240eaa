package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fls_backend/internal/services/dto"
)

type titlePayload struct {
	Title string `json:"title" validate:"required,project_title"`
}

func TestProjectTitleRule(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(titlePayload{Title: "Landing page 2"}))

	err := v.Validate(titlePayload{Title: "Landing page!"})
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Only characters, numbers and spaces are allowed", verr.Errors["title"])

	assert.Error(t, v.Validate(titlePayload{Title: "Сайт визитка"}))
}

func TestProposalPriceFloor(t *testing.T) {
	v := New()

	req := dto.SubmitProposalRequest{
		ProposalText:   "I can do this",
		ProposedPrice:  5,
		SubmissionDate: "2027-01-15",
	}
	err := v.Validate(req)
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be at least 10", verr.Errors["proposed_price"])

	req.ProposedPrice = 10
	require.NoError(t, v.Validate(req))

	price := 5
	upd := dto.UpdateProposalRequest{ProposedPrice: &price}
	assert.Error(t, v.Validate(upd))
}
