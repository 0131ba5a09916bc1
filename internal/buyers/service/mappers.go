package service

import (
	"strconv"
	"time"

	"buyer_portal_backend/internal/buyers/repository"
	"buyer_portal_backend/internal/buyers/transport"
)

func toBuyerResponse(b repository.Buyer) transport.BuyerResponse {
	return transport.BuyerResponse{
		ID:           b.ID.String(),
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		City:         b.City,
		PropertyType: b.PropertyType,
		BHK:          b.BHK,
		Purpose:      b.Purpose,
		BudgetMin:    budgetString(b.BudgetMin),
		BudgetMax:    budgetString(b.BudgetMax),
		Timeline:     b.Timeline,
		Source:       b.Source,
		Status:       b.Status,
		Notes:        b.Notes,
		Tags:         decodeTags(b.Tags),
		OwnerID:      b.OwnerID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// snapshot renders a buyer for the audit diff using wire values: decoded
// tag lists and decimal-string budgets, never the stored delimited or
// integer forms.
func snapshot(b repository.Buyer) map[string]any {
	return map[string]any{
		"id":           b.ID.String(),
		"fullName":     b.FullName,
		"email":        b.Email,
		"phone":        b.Phone,
		"city":         b.City,
		"propertyType": b.PropertyType,
		"bhk":          b.BHK,
		"purpose":      b.Purpose,
		"budgetMin":    budgetString(b.BudgetMin),
		"budgetMax":    budgetString(b.BudgetMax),
		"timeline":     b.Timeline,
		"source":       b.Source,
		"status":       b.Status,
		"notes":        b.Notes,
		"tags":         decodeTags(b.Tags),
		"ownerId":      b.OwnerID,
		"updatedAt":    b.UpdatedAt,
	}
}

func createParams(req transport.CreateBuyerRequest, ownerID string) repository.CreateBuyerParams {
	return repository.CreateBuyerParams{
		FullName:     req.FullName,
		Email:        nilIfEmpty(req.Email),
		Phone:        req.Phone,
		City:         string(req.City),
		PropertyType: string(req.PropertyType),
		BHK:          bhkPtr(req.BHK),
		Purpose:      string(req.Purpose),
		BudgetMin:    req.BudgetMin.Value,
		BudgetMax:    req.BudgetMax.Value,
		Timeline:     string(req.Timeline),
		Source:       string(req.Source),
		Notes:        nilIfEmpty(req.Notes),
		Tags:         transport.JoinTags(req.Tags.Values),
		OwnerID:      ownerID,
	}
}

// updateParams maps a partial request onto the conditional write. Absent
// fields stay untouched; tags and budgets sent explicitly (including null)
// overwrite, which is how a client clears them.
func updateParams(req transport.UpdateBuyerRequest, token time.Time) repository.UpdateBuyerParams {
	params := repository.UpdateBuyerParams{
		Token:    token,
		FullName: req.FullName,
		Phone:    req.Phone,
		Notes:    req.Notes,
	}

	if req.Email != nil {
		params.EmailSet = true
		params.Email = nilIfEmpty(*req.Email)
	}
	if req.City != nil {
		params.City = enumPtr(string(*req.City))
	}
	if req.PropertyType != nil {
		params.PropertyType = enumPtr(string(*req.PropertyType))
	}
	if req.BHK != nil {
		params.BHKSet = true
		params.BHK = enumPtr(string(*req.BHK))
	}
	if req.Purpose != nil {
		params.Purpose = enumPtr(string(*req.Purpose))
	}
	if req.Timeline != nil {
		params.Timeline = enumPtr(string(*req.Timeline))
	}
	if req.Source != nil {
		params.Source = enumPtr(string(*req.Source))
	}
	if req.Status != nil {
		params.Status = enumPtr(string(*req.Status))
	}
	if req.BudgetMin.Set {
		params.BudgetMinSet = true
		params.BudgetMin = req.BudgetMin.Value
	}
	if req.BudgetMax.Set {
		params.BudgetMaxSet = true
		params.BudgetMax = req.BudgetMax.Value
	}
	if req.Tags.Set {
		params.TagsSet = true
		params.Tags = transport.JoinTags(req.Tags.Values)
	}

	return params
}

func enumPtr(value string) *string {
	return &value
}

func listParams(req transport.ListBuyersRequest) repository.ListBuyersParams {
	params := repository.ListBuyersParams{Query: req.Query}
	if req.City != nil {
		params.City = enumPtr(string(*req.City))
	}
	if req.PropertyType != nil {
		params.PropertyType = enumPtr(string(*req.PropertyType))
	}
	if req.Status != nil {
		params.Status = enumPtr(string(*req.Status))
	}
	if req.Timeline != nil {
		params.Timeline = enumPtr(string(*req.Timeline))
	}
	return params
}

func decodeTags(tags *string) []string {
	if tags == nil {
		return []string{}
	}
	decoded := transport.SplitTags(*tags)
	if decoded == nil {
		return []string{}
	}
	return decoded
}

func budgetString(value *int64) *string {
	if value == nil {
		return nil
	}
	s := strconv.FormatInt(*value, 10)
	return &s
}

func bhkPtr(value *transport.BHK) *string {
	if value == nil {
		return nil
	}
	s := string(*value)
	return &s
}
