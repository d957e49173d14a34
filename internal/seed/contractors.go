package seed

import (
	"context"
	"fmt"

	"tenderd/internal/procurement"
	"tenderd/internal/utils"
	"tenderd/pkg/types"
)

// SeedContractors registers the sample contractor roster. Idempotent by
// company name; contractor numbers are generated on insert.
func SeedContractors(ctx context.Context, registry *procurement.Registry) error {
	seeds := []types.CreateContractorInput{
		{
			CompanyName:          "AkwaTech Engineering Ltd.",
			Status:               types.ContractorStatusActive,
			RegistrationCategory: utils.StringPtr("Engineering"),
			MajorArea:            utils.StringPtr("Infrastructure"),
			SubArea:              utils.StringPtr("Roads & Drainage"),
			StateOfOrigin:        utils.StringPtr("Akwa Ibom"),
			Community:            utils.StringPtr("Ibeno"),
			ContactPerson:        utils.StringPtr("Iniobong Etim"),
			Phone:                utils.StringPtr("+234-800-100-0001"),
			Email:                utils.StringPtr("contact@akwatera.com"),
			Notes:                utils.StringPtr("Known for regional civil works."),
		},
		{
			CompanyName:          "Niger Delta Water Works",
			Status:               types.ContractorStatusActive,
			RegistrationCategory: utils.StringPtr("Water"),
			MajorArea:            utils.StringPtr("Utilities"),
			SubArea:              utils.StringPtr("Boreholes"),
			StateOfOrigin:        utils.StringPtr("Rivers"),
			ContactPerson:        utils.StringPtr("Amaka Chukwu"),
			Phone:                utils.StringPtr("+234-800-200-0002"),
			Email:                utils.StringPtr("info@ndwaterworks.com"),
			Notes:                utils.StringPtr("Owns drilling rigs; experienced in community water schemes."),
		},
		{
			CompanyName:          "Coastal Build & Supply",
			Status:               types.ContractorStatusActive,
			RegistrationCategory: utils.StringPtr("Construction"),
			MajorArea:            utils.StringPtr("Buildings"),
			SubArea:              utils.StringPtr("Educational Facilities"),
			StateOfOrigin:        utils.StringPtr("Akwa Ibom"),
			ContactPerson:        utils.StringPtr("Sunday Akpan"),
			Phone:                utils.StringPtr("+234-800-300-0003"),
			Email:                utils.StringPtr("hello@coastalbuild.com"),
			Notes:                utils.StringPtr("Focus on classrooms and community halls."),
		},
		{
			CompanyName:          "HealthReach Services",
			Status:               types.ContractorStatusActive,
			RegistrationCategory: utils.StringPtr("Healthcare"),
			MajorArea:            utils.StringPtr("Health Outreach"),
			SubArea:              utils.StringPtr("Mobile Clinics"),
			StateOfOrigin:        utils.StringPtr("Lagos"),
			ContactPerson:        utils.StringPtr("Dr. Tolu Odede"),
			Phone:                utils.StringPtr("+234-800-400-0004"),
			Email:                utils.StringPtr("ops@healthreach.ng"),
			Notes:                utils.StringPtr("NGO partner for medical missions."),
		},
		{
			CompanyName:          "BrightGrid Solar",
			Status:               types.ContractorStatusActive,
			RegistrationCategory: utils.StringPtr("Energy"),
			MajorArea:            utils.StringPtr("Solar"),
			SubArea:              utils.StringPtr("Mini-grid & Water Pumping"),
			StateOfOrigin:        utils.StringPtr("Abuja"),
			ContactPerson:        utils.StringPtr("Grace Yusuf"),
			Phone:                utils.StringPtr("+234-800-500-0005"),
			Email:                utils.StringPtr("projects@brightgrid.energy"),
			Notes:                utils.StringPtr("Solar integrator for borehole pumps and mini-grids."),
		},
	}

	existing, err := registry.Contractors(ctx, types.ContractorFilter{})
	if err != nil {
		return fmt.Errorf("failed to list contractors: %w", err)
	}

	byName := make(map[string]struct{}, len(existing))
	for _, contractor := range existing {
		byName[contractor.CompanyName] = struct{}{}
	}

	for _, input := range seeds {
		if _, ok := byName[input.CompanyName]; ok {
			continue
		}
		if _, err := registry.CreateContractor(ctx, input); err != nil {
			return fmt.Errorf("failed to seed contractor %q: %w", input.CompanyName, err)
		}
	}

	return nil
}
