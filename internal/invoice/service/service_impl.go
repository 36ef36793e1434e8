package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/config"
	"github.com/predialis/predialis/internal/consumption"
	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
	"github.com/predialis/predialis/internal/invoice/format"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	obsmetrics "github.com/predialis/predialis/internal/observability/metrics"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	BillingCfg   *config.BillingConfigHolder
	UnitRepo     unitdomain.Repository
	RateRepo     ratedomain.Repository
	MeteringRepo meteringdomain.Repository
	BillingSvc   billingdomain.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	billingCfg   *config.BillingConfigHolder
	unitRepo     unitdomain.Repository
	rateRepo     ratedomain.Repository
	meteringRepo meteringdomain.Repository
	billingSvc   billingdomain.Service
	obsMetrics   *obsmetrics.Metrics
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		billingCfg:   p.BillingCfg,
		unitRepo:     p.UnitRepo,
		rateRepo:     p.RateRepo,
		meteringRepo: p.MeteringRepo,
		billingSvc:   p.BillingSvc,
		obsMetrics:   p.ObsMetrics,
	}
}

func (s *Service) Compose(ctx context.Context, req invoicedomain.ComposeRequest) (*invoicedomain.PricedInvoice, error) {
	unitID, err := snowflake.ParseString(strings.TrimSpace(req.UnitID))
	if err != nil || unitID == 0 {
		return nil, invoicedomain.ErrInvalidUnit
	}

	unit, err := s.unitRepo.FindByID(ctx, s.db, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, invoicedomain.ErrUnitNotFound
	}

	referenceDate := req.ReferenceDate
	if referenceDate.IsZero() {
		referenceDate = time.Now().UTC()
	}
	referenceDate = referenceDate.UTC()

	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = s.defaultDueDate(referenceDate)
	}
	dueDate = dueDate.UTC()

	discount, err := s.resolveDiscount(req.Discount, dueDate)
	if err != nil {
		return nil, err
	}

	invoice := &invoicedomain.PricedInvoice{
		Unit:          unit.Label(),
		UnitID:        unit.ID,
		Resident:      unit.Resident,
		ReferenceDate: referenceDate,
		DueDate:       dueDate,
		Discount:      discount,
	}

	// 1. Fixed fees: a missing rate omits the line, never fails the
	// whole invoice.
	for _, fixed := range req.FixedCharges {
		rateType := ratedomain.RateType(fixed.RateType)
		if !rateType.Valid() {
			return nil, invoicedomain.ErrInvalidRateType
		}

		rate, err := s.rateRepo.FindEffectiveFixedRate(ctx, s.db, rateType, referenceDate)
		if err != nil {
			return nil, err
		}
		if rate == nil {
			invoice.Warnings = append(invoice.Warnings,
				fmt.Sprintf("%s fee not configured as of %s; item omitted", rateType, referenceDate.Format("2006-01-02")))
			continue
		}

		invoice.Lines = append(invoice.Lines, invoicedomain.ChargeLine{
			Kind:        invoicedomain.ChargeFixed,
			Description: fixedChargeDescription(rateType),
			Category:    string(rate.ExpenseType),
			Amount:      rate.Amount,
		})
	}

	// 2. Consumption charges.
	for _, utilityInput := range req.Utilities {
		utility := ratedomain.UtilityType(utilityInput.UtilityType)
		if !utility.Valid() {
			return nil, invoicedomain.ErrInvalidUtilityType
		}
		if utilityInput.CurrentReading < 0 || math.IsNaN(utilityInput.CurrentReading) {
			return nil, invoicedomain.ErrInvalidReading
		}

		readingDate := utilityInput.ReadingDate
		if readingDate.IsZero() {
			readingDate = referenceDate
		}
		readingDate = readingDate.UTC()

		line, warning, err := s.composeConsumptionLine(ctx, unit.ID, utility, utilityInput.CurrentReading, readingDate)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			invoice.Warnings = append(invoice.Warnings, warning)
		}
		if line != nil {
			invoice.Lines = append(invoice.Lines, *line)
		}
	}

	// 3. Ad hoc items scoped to this unit or to everyone.
	unitScope := unit.ID.String()
	for _, item := range req.AdHocItems {
		scope := strings.TrimSpace(item.UnitScope)
		if scope != "" && scope != "all" && scope != unitScope {
			continue
		}
		invoice.Lines = append(invoice.Lines, invoicedomain.ChargeLine{
			Kind:        invoicedomain.ChargeAdHoc,
			Description: strings.TrimSpace(item.Description),
			Category:    strings.TrimSpace(item.Category),
			Amount:      item.Value,
		})
	}

	// 4-5. Totals. Line amounts stay unrounded; the final total is
	// rounded once.
	subtotal := 0.0
	for _, line := range invoice.Lines {
		subtotal += line.Amount
	}
	invoice.Subtotal = subtotal

	if discount != nil && discount.Enabled {
		amount := discount.Value
		if discount.Type == invoicedomain.DiscountPercentage {
			amount = subtotal * discount.Value / 100
		}
		if amount < 0 {
			amount = 0
		}
		if amount > subtotal {
			amount = subtotal
		}
		invoice.DiscountAmount = amount
	}

	invoice.Total = format.RoundCurrency(invoice.Subtotal - invoice.DiscountAmount)

	// 6. A non-positive total cannot produce a billing.
	if invoice.Total <= 0 {
		return nil, invoicedomain.ErrInvalidInvoice
	}

	return invoice, nil
}

func (s *Service) Issue(ctx context.Context, req invoicedomain.ComposeRequest) (*invoicedomain.IssueResult, error) {
	invoice, err := s.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	var billing *billingdomain.Billing
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Current readings become the baseline for the next cycle.
		for _, utilityInput := range req.Utilities {
			readingDate := utilityInput.ReadingDate
			if readingDate.IsZero() {
				readingDate = invoice.ReferenceDate
			}
			reading := &meteringdomain.MeterReading{
				ID:           s.genID.Generate(),
				UnitID:       invoice.UnitID,
				UtilityType:  ratedomain.UtilityType(utilityInput.UtilityType),
				ReadingValue: utilityInput.CurrentReading,
				ReadingDate:  readingDate.UTC(),
				CreatedAt:    now,
			}
			if err := s.meteringRepo.Insert(ctx, tx, reading); err != nil {
				return err
			}
		}

		created, err := s.billingSvc.CreateTx(ctx, tx, billingdomain.CreateRequest{
			Unit:        invoice.Unit,
			UnitID:      &invoice.UnitID,
			Resident:    invoice.Resident,
			Description: fmt.Sprintf("Condominium charges %s", invoice.ReferenceDate.Format("01/2006")),
			Amount:      invoice.Total,
			DueDate:     invoice.DueDate,
		})
		if err != nil {
			return err
		}
		billing = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordInvoiceIssued()
	}

	s.log.Info("invoice issued",
		zap.String("billing_id", billing.ID.String()),
		zap.String("unit", invoice.Unit),
		zap.Float64("total", invoice.Total),
		zap.Int("warnings", len(invoice.Warnings)),
	)

	return &invoicedomain.IssueResult{Invoice: invoice, Billing: billing}, nil
}

func (s *Service) composeConsumptionLine(
	ctx context.Context,
	unitID snowflake.ID,
	utility ratedomain.UtilityType,
	currentReading float64,
	readingDate time.Time,
) (*invoicedomain.ChargeLine, string, error) {
	rate, err := s.rateRepo.FindEffectiveUtilityRate(ctx, s.db, utility, readingDate)
	if err != nil {
		return nil, "", err
	}
	if rate == nil {
		return nil, fmt.Sprintf("%s rate not configured as of %s; item omitted", utility, readingDate.Format("2006-01-02")), nil
	}

	previous, err := s.meteringRepo.FindLatest(ctx, s.db, unitID, utility, &readingDate)
	if err != nil {
		return nil, "", err
	}

	current := currentReading
	line := invoicedomain.ChargeLine{
		Kind:           invoicedomain.ChargeConsumption,
		Utility:        &utility,
		CurrentReading: &current,
		Rate:           rate.RatePerCubicMeter,
	}

	if previous == nil {
		// First reading: becomes the baseline, nothing charged, and the
		// invoice says so explicitly.
		line.Description = fmt.Sprintf("%s (initial reading, not charged)", utilityDescription(utility))
		line.InitialReading = true
		return &line, fmt.Sprintf("no prior %s reading for unit; current reading recorded as baseline", utility), nil
	}

	prev := previous.ReadingValue
	line.PreviousReading = &prev

	result := consumption.Compute(previous.ReadingValue, currentReading, rate.RatePerCubicMeter)
	line.Consumption = result.Consumption
	line.Amount = result.Total
	line.Description = utilityDescription(utility)

	if result.RolledBack {
		return &line, fmt.Sprintf("%s reading %.2f below previous %.2f; charged as zero consumption, verify the meter",
			utility, currentReading, previous.ReadingValue), nil
	}

	return &line, "", nil
}

func (s *Service) resolveDiscount(requested *invoicedomain.Discount, dueDate time.Time) (*invoicedomain.Discount, error) {
	if requested != nil {
		if !requested.Enabled {
			return nil, nil
		}
		if !requested.Type.Valid() || requested.Value < 0 || math.IsNaN(requested.Value) {
			return nil, invoicedomain.ErrInvalidDiscount
		}
		out := *requested
		if out.DueDate.IsZero() {
			out.DueDate = dueDate
		}
		return &out, nil
	}

	defaults := s.billingCfg.Get().Discount
	if !defaults.Enabled {
		return nil, nil
	}
	return &invoicedomain.Discount{
		Enabled: true,
		DueDate: dueDate.AddDate(0, 0, -defaults.DaysBeforeDue),
		Type:    invoicedomain.DiscountType(defaults.Type),
		Value:   defaults.Value,
	}, nil
}

func (s *Service) defaultDueDate(referenceDate time.Time) time.Time {
	day := s.billingCfg.Get().DefaultDueDay
	due := time.Date(referenceDate.Year(), referenceDate.Month(), day, 0, 0, 0, 0, time.UTC)
	if !due.After(referenceDate) {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

func fixedChargeDescription(rateType ratedomain.RateType) string {
	switch rateType {
	case ratedomain.RateCondo:
		return "Condominium fee"
	case ratedomain.RateReserve:
		return "Reserve fund"
	}
	return string(rateType)
}

func utilityDescription(utility ratedomain.UtilityType) string {
	switch utility {
	case ratedomain.UtilityGas:
		return "Gas consumption"
	case ratedomain.UtilityWater:
		return "Water consumption"
	}
	return string(utility)
}
