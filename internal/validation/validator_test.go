package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement-dashboard/internal/model"
)

func TestValidateAggregateRequest(t *testing.T) {
	ok := model.AggregateRequest{Op: model.OpMean, GroupBy: []string{model.ColGender}, Measure: model.ColEngagement}
	assert.NoError(t, ValidateStruct(&ok))

	bad := model.AggregateRequest{Op: "median"}
	err := ValidateStruct(&bad)
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "oneof", verrs[0].Tag)
	assert.Contains(t, err.Error(), "AggregateRequest.Op")
}

func TestValidateNegativeAge(t *testing.T) {
	neg := -1
	req := model.AggregateRequest{Op: model.OpCount, Filter: model.FilterRequest{AgeMin: &neg}}
	err := ValidateStruct(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AgeMin")
}
