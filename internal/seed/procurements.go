package seed

import (
	"context"
	"fmt"
	"time"

	"tenderd/internal/procurement"
	"tenderd/internal/utils"
	"tenderd/pkg/types"
)

// SeedProcurements inserts a handful of sample notices with future
// deadlines. Idempotent by title: an existing notice is left alone.
func SeedProcurements(ctx context.Context, catalog *procurement.Catalog) error {
	now := time.Now()
	addDays := func(days int) time.Time {
		return now.AddDate(0, 0, days)
	}

	seeds := []types.CreateProcurementInput{
		{
			Title:                 "Supply and Installation of Solar-Powered Boreholes",
			Category:              "Utilities",
			Type:                  "Open Tender",
			Location:              "Ibeno LGA",
			Description:           "Provision of community solar-powered boreholes including drilling, pumps, panels, and distribution network.",
			EligibilityCriteria:   utils.StringPtr("Registered contractors with proven water projects in Niger Delta."),
			SubmissionDeadline:    addDays(30),
			PublishDate:           utils.TimePtr(now),
			BudgetEstimate:        utils.Float64Ptr(25000000),
			PreBidMeetingDate:     utils.TimePtr(addDays(10)),
			PreBidMeetingLocation: utils.StringPtr("Ibeno Council Hall"),
			PreBidNotes:           utils.StringPtr("Attendance recommended; bring company profile."),
			Tags:                  []string{"water", "infrastructure", "community"},
			ContactEmail:          utils.StringPtr("procurement@ibeno.local"),
			ContactPhone:          utils.StringPtr("+234-800-000-0001"),
			CreatedBy:             "seed",
			Status:                types.ProcurementStatusPublished,
		},
		{
			Title:                 "Construction of Classroom Blocks for Model Schools",
			Category:              "Education",
			Type:                  "Selective Tender",
			Location:              "Akwa Ibom State",
			Description:           "Design and build six-unit classroom blocks with furnishings and solar lighting.",
			EligibilityCriteria:   utils.StringPtr("COREN registered builders; evidence of similar educational projects."),
			SubmissionDeadline:    addDays(45),
			PublishDate:           utils.TimePtr(addDays(2)),
			BudgetEstimate:        utils.Float64Ptr(42000000),
			PreBidMeetingDate:     utils.TimePtr(addDays(15)),
			PreBidMeetingLocation: utils.StringPtr("Uyo Secretariat"),
			PreBidNotes:           utils.StringPtr("Site visit mandatory before bid submission."),
			Tags:                  []string{"education", "construction"},
			ContactEmail:          utils.StringPtr("education.tenders@ibeno.local"),
			ContactPhone:          utils.StringPtr("+234-800-000-0002"),
			CreatedBy:             "seed",
			Status:                types.ProcurementStatusPublished,
		},
		{
			Title:                 "Provision of Medical Outreach Services",
			Category:              "Health",
			Type:                  "Request for Proposal",
			Location:              "Remote communities",
			Description:           "Deploy mobile medical teams for quarterly outreach covering general medicine, maternal health, and vaccinations.",
			EligibilityCriteria:   utils.StringPtr("Licensed medical NGOs with cold-chain capacity and field experience."),
			SubmissionDeadline:    addDays(25),
			PublishDate:           utils.TimePtr(addDays(1)),
			BudgetEstimate:        utils.Float64Ptr(18000000),
			PreBidMeetingDate:     utils.TimePtr(addDays(8)),
			PreBidMeetingLocation: utils.StringPtr("Virtual (link to be shared)"),
			Tags:                  []string{"health", "outreach", "ngos"},
			ContactEmail:          utils.StringPtr("health.procurement@ibeno.local"),
			ContactPhone:          utils.StringPtr("+234-800-000-0003"),
			CreatedBy:             "seed",
			Status:                types.ProcurementStatusPublished,
		},
	}

	existing, err := catalog.Procurements(ctx, types.ProcurementFilter{})
	if err != nil {
		return fmt.Errorf("failed to list procurements: %w", err)
	}

	byTitle := make(map[string]struct{}, len(existing))
	for _, procurement := range existing {
		byTitle[procurement.Title] = struct{}{}
	}

	for _, input := range seeds {
		if _, ok := byTitle[input.Title]; ok {
			continue
		}
		if _, err := catalog.CreateProcurement(ctx, input); err != nil {
			return fmt.Errorf("failed to seed procurement %q: %w", input.Title, err)
		}
	}

	return nil
}
