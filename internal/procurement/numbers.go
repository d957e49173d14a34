package procurement

import (
	"fmt"
	"time"
)

// Human-readable identifier schemes. The ordinal is one more than the count
// of existing identifiers sharing the prefix at read time; the unique
// constraint on the column is what makes this safe. Generation retries a
// few times on conflict before surfacing it.
const (
	referenceNoPrefix = "PROC"
	referenceNoWidth  = 4

	contractorNoPrefix = "CTR"
	contractorNoWidth  = 5

	generateAttempts = 3
)

func referenceNoScope(day time.Time) string {
	return fmt.Sprintf("%s-%s-", referenceNoPrefix, day.Format("20060102"))
}

func formatReferenceNo(day time.Time, ordinal int) string {
	return fmt.Sprintf("%s%0*d", referenceNoScope(day), referenceNoWidth, ordinal)
}

func contractorNoScope() string {
	return contractorNoPrefix + "-"
}

func formatContractorNo(ordinal int) string {
	return fmt.Sprintf("%s%0*d", contractorNoScope(), contractorNoWidth, ordinal)
}
