package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-schedule/pkg/constants"
	textcurrency "golang.org/x/text/currency"
)

// ResolveOutput normalises the output format a command renders with and
// checks that the display currency is an ISO 4217 code. An empty format
// means pretty output.
func ResolveOutput(format, displayCurrency string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return "", fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}

	code := strings.TrimSpace(displayCurrency)
	if _, err := textcurrency.ParseISO(code); err != nil {
		return "", fmt.Errorf("display currency %q is not an ISO 4217 code: %w", code, err)
	}
	return format, nil
}
