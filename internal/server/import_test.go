package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tenderd/pkg/types"
)

func TestReadImportRows(t *testing.T) {
	csvBody := strings.Join([]string{
		"Contractor No,Company Name,Status,Major Area,Phone",
		"CTR-00042,Acme Construction Ltd,ACTIVE,Civil Works,08030000000",
		",Delta Works Nig Ltd,,,",
	}, "\n")

	rows, err := readImportRows(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "CTR-00042", rows[0].ContractorNo)
	require.Equal(t, "Acme Construction Ltd", rows[0].CompanyName)
	require.Equal(t, "Civil Works", rows[0].MajorArea)

	require.Empty(t, rows[1].ContractorNo)
	require.Equal(t, "Delta Works Nig Ltd", rows[1].CompanyName)
}

func TestReadImportRowsHeaderVariants(t *testing.T) {
	csvBody := strings.Join([]string{
		"contractor_no,company_name,state_of_origin",
		"CTR-00001,Acme Construction Ltd,Delta",
	}, "\n")

	rows, err := readImportRows(strings.NewReader(csvBody))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Delta", rows[0].StateOfOrigin)
}

func TestReadImportRowsRequiresCompanyColumn(t *testing.T) {
	_, err := readImportRows(strings.NewReader("contractor_no,phone\nCTR-1,123"))
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
