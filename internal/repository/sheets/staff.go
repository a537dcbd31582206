package sheets

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/domain/models"
)

// StaffRoster reads the employee list from a sheet laid out as
// id | name | monthly salary | contribution %.
type StaffRoster struct {
	repo       Repository
	staffRange string
	logger     *zap.Logger
}

// NewStaffRoster wires a roster over the given range, e.g. "Staff!A:D".
func NewStaffRoster(repo Repository, staffRange string, logger *zap.Logger) *StaffRoster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffRoster{repo: repo, staffRange: staffRange, logger: logger}
}

// ListEmployees loads the roster, skipping the header and malformed rows.
func (r *StaffRoster) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.repo.ReadRange(ctx, r.staffRange)
	if err != nil {
		return nil, fmt.Errorf("load staff range: %w", err)
	}

	employees := make([]models.Employee, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}

		salary, err := parseFloat(row[2])
		if err != nil {
			// the header row lands here too
			r.logger.Debug("skip staff row with invalid salary", zap.Int("row", i+1), zap.Any("value", row[2]))
			continue
		}

		contribution := 0.0
		if len(row) > 3 {
			if v, err := parseFloat(row[3]); err == nil {
				contribution = v
			}
		}

		employees = append(employees, models.Employee{
			ID:                     strings.TrimSpace(fmt.Sprint(row[0])),
			Name:                   strings.TrimSpace(fmt.Sprint(row[1])),
			MonthlySalary:          salary,
			ContributionPercentage: contribution,
		})
	}

	return employees, nil
}

// dottedThousands matches "2.500" or "1.250.000": dots grouping exactly
// three digits with no decimal comma, as Italian-locale sheets write integers.
var dottedThousands = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parseFloat accepts raw numbers and strings with a currency or percent sign
// and either decimal separator. Dots grouping three digits with no comma are
// thousands separators, so "2.500" is 2500. NaN and Inf are rejected.
func parseFloat(value interface{}) (float64, error) {
	v, err := parseCell(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite numeric value %v", value)
	}
	return v, nil
}

func parseCell(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}

	str := strings.TrimSpace(fmt.Sprint(value))
	str = strings.Trim(str, "€$% ")
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	switch {
	case strings.Contains(str, ","):
		str = strings.ReplaceAll(str, ".", "")
		str = strings.ReplaceAll(str, ",", ".")
	case dottedThousands.MatchString(str):
		str = strings.ReplaceAll(str, ".", "")
	}
	return strconv.ParseFloat(str, 64)
}
