package transport

import (
	"time"
)

// Enum values
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypePlot      PropertyType = "Plot"
	PropertyTypeOffice    PropertyType = "Office"
	PropertyTypeRetail    PropertyType = "Retail"
)

type BHK string

const (
	BHKOne    BHK = "1"
	BHKTwo    BHK = "2"
	BHKThree  BHK = "3"
	BHKFour   BHK = "4"
	BHKStudio BHK = "Studio"
)

type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

type Timeline string

const (
	TimelineUnderThree Timeline = "0-3m"
	TimelineThreeToSix Timeline = "3-6m"
	TimelineOverSix    Timeline = ">6m"
	TimelineExploring  Timeline = "Exploring"
)

type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

type BuyerStatus string

const (
	StatusNew         BuyerStatus = "New"
	StatusQualified   BuyerStatus = "Qualified"
	StatusContacted   BuyerStatus = "Contacted"
	StatusVisited     BuyerStatus = "Visited"
	StatusNegotiation BuyerStatus = "Negotiation"
	StatusConverted   BuyerStatus = "Converted"
	StatusDropped     BuyerStatus = "Dropped"
)

// RequiresBHK reports whether the property type mandates a bedroom category.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyTypeApartment || p == PropertyTypeVilla
}

// Request DTOs
type CreateBuyerRequest struct {
	FullName     string        `json:"fullName" validate:"required,min=2,max=80"`
	Email        string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string        `json:"phone" validate:"required,min=10,max=15,digits"`
	City         City          `json:"city" validate:"required,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType PropertyType  `json:"propertyType" validate:"required,oneof=Apartment Villa Plot Office Retail"`
	BHK          *BHK          `json:"bhk,omitempty" validate:"omitempty,oneof=1 2 3 4 Studio"`
	Purpose      Purpose       `json:"purpose" validate:"required,oneof=Buy Rent"`
	BudgetMin    OptionalInt64 `json:"budgetMin,omitempty" validate:"-"`
	BudgetMax    OptionalInt64 `json:"budgetMax,omitempty" validate:"-"`
	Timeline     Timeline      `json:"timeline" validate:"required,oneof=0-3m 3-6m >6m Exploring"`
	Source       Source        `json:"source" validate:"required,oneof=Website Referral Walk-in Call Other"`
	Notes        string        `json:"notes,omitempty" validate:"max=1000"`
	Tags         TagList       `json:"tags,omitempty" validate:"-"`
}

// UpdateBuyerRequest carries a partial payload plus the mandatory concurrency
// token. The token is never defaulted server-side and is not a validation
// concern: a missing value is a zero time, which can never match a stored
// row and therefore surfaces as a conflict.
type UpdateBuyerRequest struct {
	FullName     *string       `json:"fullName,omitempty" validate:"omitempty,min=2,max=80"`
	Email        *string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string       `json:"phone,omitempty" validate:"omitempty,min=10,max=15,digits"`
	City         *City         `json:"city,omitempty" validate:"omitempty,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType *PropertyType `json:"propertyType,omitempty" validate:"omitempty,oneof=Apartment Villa Plot Office Retail"`
	BHK          *BHK          `json:"bhk,omitempty" validate:"omitempty,oneof=1 2 3 4 Studio"`
	Purpose      *Purpose      `json:"purpose,omitempty" validate:"omitempty,oneof=Buy Rent"`
	BudgetMin    OptionalInt64 `json:"budgetMin,omitempty" validate:"-"`
	BudgetMax    OptionalInt64 `json:"budgetMax,omitempty" validate:"-"`
	Timeline     *Timeline     `json:"timeline,omitempty" validate:"omitempty,oneof=0-3m 3-6m >6m Exploring"`
	Source       *Source       `json:"source,omitempty" validate:"omitempty,oneof=Website Referral Walk-in Call Other"`
	Status       *BuyerStatus  `json:"status,omitempty" validate:"omitempty,oneof=New Qualified Contacted Visited Negotiation Converted Dropped"`
	Notes        *string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Tags         TagList       `json:"tags,omitempty" validate:"-"`
	UpdatedAt    time.Time     `json:"updatedAt" validate:"-"`
}

type ListBuyersRequest struct {
	City         *City         `form:"city" validate:"omitempty,oneof=Chandigarh Mohali Zirakpur Panchkula Other"`
	PropertyType *PropertyType `form:"propertyType" validate:"omitempty,oneof=Apartment Villa Plot Office Retail"`
	Status       *BuyerStatus  `form:"status" validate:"omitempty,oneof=New Qualified Contacted Visited Negotiation Converted Dropped"`
	Timeline     *Timeline     `form:"timeline" validate:"omitempty,oneof=0-3m 3-6m >6m Exploring"`
	Query        string        `form:"q" validate:"max=100"`
	Page         int           `form:"page" validate:"omitempty,min=1"`
}

// Response DTOs

// BuyerResponse is the wire shape of a buyer lead. Budgets travel as decimal
// strings so large values survive JSON number handling in clients; tags are
// always an ordered list, never the stored delimited form.
type BuyerResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        *string   `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PropertyType string    `json:"propertyType"`
	BHK          *string   `json:"bhk"`
	Purpose      string    `json:"purpose"`
	BudgetMin    *string   `json:"budgetMin"`
	BudgetMax    *string   `json:"budgetMax"`
	Timeline     string    `json:"timeline"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	Tags         []string  `json:"tags"`
	OwnerID      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type BuyerListResponse struct {
	Data     []BuyerResponse `json:"data"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type CreateBuyerResponse struct {
	Data BuyerResponse `json:"data"`
}

type UpdateBuyerResponse struct {
	Data BuyerResponse `json:"data"`
}

type HistoryEntryResponse struct {
	ID        string                 `json:"id"`
	BuyerID   string                 `json:"buyerId"`
	ChangedBy string                 `json:"changedBy"`
	Diff      map[string]interface{} `json:"diff"`
	ChangedAt time.Time              `json:"changedAt"`
}

type ImportResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}
