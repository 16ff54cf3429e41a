package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"required,gte=1,lte=1000"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(addItemRequest{ProductID: 7, Count: 2})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	fields := fieldsOf(t, Validate(addItemRequest{Count: 2}))
	assert.Equal(t, "is required", fields["product_id"])
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(addItemRequest{ProductID: 7, Count: 5000}))
	assert.Contains(t, fields, "count")
	assert.NotContains(t, fields, "Count")
}

func TestValidate_RangeBounds(t *testing.T) {
	fields := fieldsOf(t, Validate(addItemRequest{ProductID: 7, Count: 5000}))
	assert.Equal(t, "must be at most 1000", fields["count"])
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	fields := fieldsOf(t, Validate(addItemRequest{}))
	assert.Len(t, fields, 2)
}

func TestValidate_MinMaxStrings(t *testing.T) {
	type form struct {
		Name string `json:"name" validate:"min=3,max=10"`
	}

	fields := fieldsOf(t, Validate(form{Name: "ab"}))
	assert.Equal(t, "must be at least 3 characters", fields["name"])

	fields = fieldsOf(t, Validate(form{Name: "rather too long"}))
	assert.Equal(t, "must be at most 10 characters", fields["name"])
}

func TestValidate_MinOnSliceCountsItems(t *testing.T) {
	type batch struct {
		IDs []int64 `json:"ids" validate:"required,min=1"`
	}

	fields := fieldsOf(t, Validate(batch{IDs: []int64{}}))
	assert.Equal(t, "must have at least 1 items", fields["ids"])
}

func TestValidate_OneOf(t *testing.T) {
	type statusChange struct {
		Status string `json:"status" validate:"oneof=pending approved shipped"`
	}

	fields := fieldsOf(t, Validate(statusChange{Status: "teleported"}))
	assert.Equal(t, "must be one of: pending, approved, shipped", fields["status"])
}

func TestValidate_UntaggedJSONFallsBackToFieldName(t *testing.T) {
	type internal struct {
		Token string `validate:"required"`
	}

	fields := fieldsOf(t, Validate(internal{}))
	assert.Contains(t, fields, "Token")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(addItemRequest{Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "product_id")
}
