package scan

import (
	"fmt"
)

// validateScanArgs validates the arguments provided to the scan command and
// resolves the scan target.
func validateScanArgs(opts *RunOptionsScan, args []string) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("at most one target path may be specified, got %d", len(args))
	}

	switch opts.Format {
	case "", "json", "sarif", "text":
	default:
		return "", fmt.Errorf("unsupported report format %q, must be 'json', 'sarif' or 'text'", opts.Format)
	}

	if opts.Threads < 0 {
		return "", fmt.Errorf("the 'threads' flag must not be negative")
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	return target, nil
}
