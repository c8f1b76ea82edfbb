package claimread

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gyeh/claimgate/internal/model"
)

// CSVSource reads a header-mapped claims CSV. Unknown columns are ignored;
// missing columns leave the corresponding row fields nil so downstream
// default resolution applies. Numeric cells that fail to parse are treated
// as absent rather than erroring.
type CSVSource struct {
	file    *os.File
	reader  *csv.Reader
	columns map[string]int
}

// OpenCSV opens the file and consumes the header row.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims csv: %w", err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &CSVSource{file: f, reader: r, columns: columns}, nil
}

// Columns returns the lower-cased header names found in the file.
func (s *CSVSource) Columns() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	return names
}

func (s *CSVSource) Read(rows []model.ClaimHistoryRow) (int, error) {
	for i := range rows {
		record, err := s.reader.Read()
		if err == io.EOF {
			return i, io.EOF
		}
		if err != nil {
			return i, fmt.Errorf("read csv row: %w", err)
		}
		rows[i] = s.toRow(record)
	}
	return len(rows), nil
}

func (s *CSVSource) Close() error {
	return s.file.Close()
}

func (s *CSVSource) toRow(record []string) model.ClaimHistoryRow {
	return model.ClaimHistoryRow{
		PlanType:         s.str(record, "plan_type"),
		ClinicalCategory: s.str(record, "clinical_category"),
		ServiceType:      s.str(record, "service_type"),
		Country:          s.str(record, "country"),

		BilledAmount:  s.num(record, "billed_amount"),
		ClaimedAmount: s.num(record, "claimed_amount"),
		CoverageLimit: s.num(record, "coverage_limit"),
		HospitalTier:  s.num(record, "hospital_tier"),

		InNetwork:            s.num(record, "in_network"),
		ProviderApproved:     s.num(record, "provider_approved"),
		PolicyActive:         s.num(record, "policy_active"),
		IsEmergency:          s.num(record, "is_emergency"),
		MedicallyNecessary:   s.num(record, "medically_necessary"),
		PreexistingCondition: s.num(record, "preexisting_condition"),
		NonEmergencyAmbo:     s.num(record, "covers_non_emergency_ambulance"),
		HasReceipt:           s.num(record, "has_receipt"),

		TreatmentDate:   s.str(record, "treatment_date"),
		PolicyStartDate: s.str(record, "policy_start_date"),
		SubmissionDate:  s.str(record, "submission_date"),

		Covered:   s.num(record, "covered"),
		IsCovered: s.num(record, "is_covered"),
		Approved:  s.num(record, "approved"),
		Label:     s.num(record, "label"),
		Decision:  s.num(record, "decision"),
	}
}

func (s *CSVSource) str(record []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// num parses a numeric cell. A column that exists but fails to parse yields
// 0 (present-but-dirty, matching coerce-and-fill semantics); an absent
// column yields nil.
func (s *CSVSource) num(record []string, column string) *float64 {
	i, ok := s.columns[column]
	if !ok || i >= len(record) {
		return nil
	}
	cell := strings.TrimSpace(record[i])
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		switch strings.ToLower(cell) {
		case "true", "yes", "y":
			v = 1
		default:
			v = 0
		}
	}
	return &v
}
