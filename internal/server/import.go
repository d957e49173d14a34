package server

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"tenderd/pkg/types"
)

// readImportRows parses a contractor CSV into import rows. The first record
// is a header and columns are matched by normalized name, so exports with
// "Company Name" or "company_name" both work.
func readImportRows(r io.Reader) ([]types.ContractorImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing csv header", types.ErrInvalidArgument)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeHeader(name)] = i
	}

	if _, ok := columns["companyname"]; !ok {
		return nil, fmt.Errorf("%w: csv header must include a company name column", types.ErrInvalidArgument)
	}

	cell := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []types.ContractorImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed csv: %s", types.ErrInvalidArgument, err)
		}

		rows = append(rows, types.ContractorImportRow{
			ContractorNo:         cell(record, "contractorno"),
			OldRegNo:             cell(record, "oldregno"),
			CacRegNo:             cell(record, "cacregno"),
			CompanyName:          cell(record, "companyname"),
			Status:               cell(record, "status"),
			RegistrationCategory: cell(record, "registrationcategory"),
			MajorArea:            cell(record, "majorarea"),
			SubArea:              cell(record, "subarea"),
			StateOfOrigin:        cell(record, "stateoforigin"),
			Community:            cell(record, "community"),
			ContactPerson:        cell(record, "contactperson"),
			Phone:                cell(record, "phone"),
			Email:                cell(record, "email"),
			Notes:                cell(record, "notes"),
			SourceSheet:          cell(record, "sourcesheet"),
		})
	}

	return rows, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "", "/", "").Replace(name)
	return name
}
