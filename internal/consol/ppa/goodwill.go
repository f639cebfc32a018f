package ppa

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

var structValidator = validator.New()

// Intangible is one identified intangible asset in a purchase allocation.
type Intangible struct {
	Name             string `validate:"required"`
	Value            decimal.Decimal
	UsefulLifeMonths int `validate:"required,gt=0"`
}

// Record is the acquisition configuration for one entity under purchase
// accounting. Intangibles are an ordered list, not a map, so schedules and
// journals come out in a deterministic order.
type Record struct {
	EntityID           string `validate:"required"`
	PurchasePrice      decimal.Decimal
	FairValueNetAssets decimal.Decimal
	Intangibles        []Intangible `validate:"dive"`
	AcquisitionDate    time.Time    `validate:"required"`
}

// Allocation is the derived purchase price allocation. Goodwill may be
// negative: a bargain purchase recognised as an immediate gain.
type Allocation struct {
	Record           Record
	TotalIntangibles decimal.Decimal
	Goodwill         decimal.Decimal
	BargainPurchase  bool
}

// ValidateRecord rejects malformed acquisition configuration with a
// PPAConfigurationError.
func ValidateRecord(rec Record) error {
	if err := structValidator.Struct(rec); err != nil {
		return &shared.PPAConfigurationError{EntityID: rec.EntityID, Reason: err.Error()}
	}
	if rec.PurchasePrice.Sign() <= 0 {
		return &shared.PPAConfigurationError{EntityID: rec.EntityID, Reason: "purchase price must be positive"}
	}
	if rec.FairValueNetAssets.Sign() <= 0 {
		return &shared.PPAConfigurationError{EntityID: rec.EntityID, Reason: "fair value of net assets must be positive"}
	}
	for _, asset := range rec.Intangibles {
		if asset.Value.Sign() < 0 {
			return &shared.PPAConfigurationError{EntityID: rec.EntityID, Reason: fmt.Sprintf("intangible %q has negative value", asset.Name)}
		}
	}
	return nil
}

// Allocate derives goodwill: purchase price less fair value of net assets
// less identified intangibles. A negative result is preserved as-is.
func Allocate(rec Record, audit *shared.AuditRecorder) (Allocation, error) {
	if err := ValidateRecord(rec); err != nil {
		return Allocation{}, err
	}
	total := decimal.Zero
	for _, asset := range rec.Intangibles {
		total = total.Add(asset.Value)
	}
	goodwill := rec.PurchasePrice.Sub(rec.FairValueNetAssets).Sub(total)
	alloc := Allocation{
		Record:           rec,
		TotalIntangibles: total,
		Goodwill:         goodwill,
		BargainPurchase:  goodwill.Sign() < 0,
	}
	detail := fmt.Sprintf("goodwill=%s intangibles=%s", goodwill, total)
	if alloc.BargainPurchase {
		detail = fmt.Sprintf("bargain purchase gain=%s intangibles=%s", goodwill.Neg(), total)
	}
	audit.Record(shared.AuditLog{
		Action:   shared.AuditGoodwill,
		EntityID: rec.EntityID,
		After:    goodwill.String(),
		Detail:   detail,
	})
	return alloc, nil
}
