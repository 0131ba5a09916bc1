// Package domain holds the pure validation rules for buyer leads.
// Field-level rules live as struct tags on the transport DTOs; the
// cross-field refinements that tags cannot express are plain conditionals
// here, so both create and update flows share one rule set.
package domain

import (
	"buyer_portal_backend/internal/buyers/transport"
	"buyer_portal_backend/platform/validator"
)

const (
	msgBHKRequired    = "BHK is required for Apartment and Villa property types"
	msgBudgetOrdering = "Maximum budget must be greater than or equal to minimum budget"
	msgBudgetInvalid  = "Must be a non-negative integer"
)

// ValidateCreate checks a create payload against field and cross-field rules.
// Returns nil when the payload is valid.
func ValidateCreate(val *validator.Validator, req transport.CreateBuyerRequest) validator.FieldErrors {
	fields := validator.Fields(val.Struct(req))
	if fields == nil {
		fields = validator.FieldErrors{}
	}

	checkBudgets(fields, req.BudgetMin, req.BudgetMax)

	if req.PropertyType.RequiresBHK() && req.BHK == nil {
		fields.Add("bhk", msgBHKRequired)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ValidateUpdate checks a partial update payload. All fields are optional;
// the bhk requirement applies when the payload itself changes the property
// type to one that needs it.
func ValidateUpdate(val *validator.Validator, req transport.UpdateBuyerRequest) validator.FieldErrors {
	fields := validator.Fields(val.Struct(req))
	if fields == nil {
		fields = validator.FieldErrors{}
	}

	checkBudgets(fields, req.BudgetMin, req.BudgetMax)

	if req.PropertyType != nil && req.PropertyType.RequiresBHK() && req.BHK == nil {
		fields.Add("bhk", msgBHKRequired)
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func checkBudgets(fields validator.FieldErrors, min, max transport.OptionalInt64) {
	if min.Invalid {
		fields.Add("budgetMin", msgBudgetInvalid)
	}
	if max.Invalid {
		fields.Add("budgetMax", msgBudgetInvalid)
	}

	if min.Value != nil && max.Value != nil && *max.Value < *min.Value {
		fields.Add("budgetMax", msgBudgetOrdering)
	}
}
