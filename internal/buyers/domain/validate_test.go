package domain

import (
	"testing"
	"time"

	"buyer_portal_backend/internal/buyers/transport"
	"buyer_portal_backend/platform/validator"
)

func someTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	val := validator.New()
	if err := RegisterRules(val); err != nil {
		t.Fatalf("register rules: %v", err)
	}
	return val
}

func validCreateRequest() transport.CreateBuyerRequest {
	return transport.CreateBuyerRequest{
		FullName:     "Ravi Kumar",
		Phone:        "9876543210",
		City:         transport.CityChandigarh,
		PropertyType: transport.PropertyTypePlot,
		Purpose:      transport.PurposeBuy,
		Timeline:     transport.TimelineExploring,
		Source:       transport.SourceWebsite,
	}
}

func optionalInt(v int64) transport.OptionalInt64 {
	return transport.OptionalInt64{Value: &v, Set: true}
}

func TestValidateCreateAcceptsMinimalPayload(t *testing.T) {
	val := newTestValidator(t)

	if fields := ValidateCreate(val, validCreateRequest()); fields != nil {
		t.Fatalf("expected no field errors, got %v", fields)
	}
}

func TestValidateCreateRequiresBHKForApartmentAndVilla(t *testing.T) {
	val := newTestValidator(t)

	for _, propertyType := range []transport.PropertyType{transport.PropertyTypeApartment, transport.PropertyTypeVilla} {
		req := validCreateRequest()
		req.PropertyType = propertyType

		fields := ValidateCreate(val, req)
		if fields == nil {
			t.Fatalf("%s: expected bhk error, got none", propertyType)
		}
		if got := fields["bhk"]; len(got) != 1 || got[0] != msgBHKRequired {
			t.Fatalf("%s: unexpected bhk errors: %v", propertyType, got)
		}
	}
}

func TestValidateCreateAllowsMissingBHKForOtherPropertyTypes(t *testing.T) {
	val := newTestValidator(t)

	for _, propertyType := range []transport.PropertyType{transport.PropertyTypePlot, transport.PropertyTypeOffice, transport.PropertyTypeRetail} {
		req := validCreateRequest()
		req.PropertyType = propertyType

		if fields := ValidateCreate(val, req); fields != nil {
			t.Fatalf("%s: expected no field errors, got %v", propertyType, fields)
		}
	}
}

func TestValidateCreateRejectsMaxBudgetBelowMin(t *testing.T) {
	val := newTestValidator(t)

	req := validCreateRequest()
	req.BudgetMin = optionalInt(5000000)
	req.BudgetMax = optionalInt(4000000)

	fields := ValidateCreate(val, req)
	if fields == nil {
		t.Fatal("expected budgetMax error, got none")
	}
	if got := fields["budgetMax"]; len(got) != 1 || got[0] != msgBudgetOrdering {
		t.Fatalf("unexpected budgetMax errors: %v", got)
	}
}

func TestValidateCreateAcceptsEqualBudgets(t *testing.T) {
	val := newTestValidator(t)

	req := validCreateRequest()
	req.BudgetMin = optionalInt(5000000)
	req.BudgetMax = optionalInt(5000000)

	if fields := ValidateCreate(val, req); fields != nil {
		t.Fatalf("expected no field errors, got %v", fields)
	}
}

func TestValidateCreateFlagsUnparseableBudgets(t *testing.T) {
	val := newTestValidator(t)

	req := validCreateRequest()
	req.BudgetMin = transport.OptionalInt64{Set: true, Invalid: true}

	fields := ValidateCreate(val, req)
	if fields == nil {
		t.Fatal("expected budgetMin error, got none")
	}
	if got := fields["budgetMin"]; len(got) != 1 || got[0] != msgBudgetInvalid {
		t.Fatalf("unexpected budgetMin errors: %v", got)
	}
}

func TestValidateCreateRejectsNonDigitPhone(t *testing.T) {
	val := newTestValidator(t)

	req := validCreateRequest()
	req.Phone = "98765-43210"

	fields := ValidateCreate(val, req)
	if fields == nil || len(fields["phone"]) == 0 {
		t.Fatalf("expected phone error, got %v", fields)
	}
}

func TestValidateCreateReportsFieldsByJSONName(t *testing.T) {
	val := newTestValidator(t)

	req := validCreateRequest()
	req.FullName = "R"
	req.Email = "not-an-email"

	fields := ValidateCreate(val, req)
	if fields == nil {
		t.Fatal("expected field errors, got none")
	}
	if len(fields["fullName"]) == 0 {
		t.Errorf("expected fullName error, got %v", fields)
	}
	if len(fields["email"]) == 0 {
		t.Errorf("expected email error, got %v", fields)
	}
}

func TestValidateUpdateRequiresBHKWhenSwitchingToApartment(t *testing.T) {
	val := newTestValidator(t)

	propertyType := transport.PropertyTypeApartment
	req := transport.UpdateBuyerRequest{
		PropertyType: &propertyType,
		UpdatedAt:    someTime(),
	}

	fields := ValidateUpdate(val, req)
	if fields == nil {
		t.Fatal("expected bhk error, got none")
	}
	if got := fields["bhk"]; len(got) != 1 || got[0] != msgBHKRequired {
		t.Fatalf("unexpected bhk errors: %v", got)
	}
}

func TestValidateUpdateAllowsPartialPayloadWithoutPropertyType(t *testing.T) {
	val := newTestValidator(t)

	status := transport.StatusQualified
	req := transport.UpdateBuyerRequest{
		Status:    &status,
		UpdatedAt: someTime(),
	}

	if fields := ValidateUpdate(val, req); fields != nil {
		t.Fatalf("expected no field errors, got %v", fields)
	}
}

func TestValidateUpdateMissingTokenIsNotAFieldError(t *testing.T) {
	val := newTestValidator(t)

	// A missing token is a concurrency conflict, not a validation failure;
	// it must pass here so the update flow reaches the token check.
	if fields := ValidateUpdate(val, transport.UpdateBuyerRequest{}); fields != nil {
		t.Fatalf("expected no field errors, got %v", fields)
	}
}
