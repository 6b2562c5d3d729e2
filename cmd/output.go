package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/s0up4200/stytchctl/stytch"
)

func validateOutputFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'yaml')", format)
	}
}

// printOutput writes v in the selected format. YAML goes through the JSON
// encoding so both formats share field names.
func printOutput(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if format == "yaml" {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		data, err = yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printError reports err, spelling out the fields of an API error response
func printError(w io.Writer, err error) {
	resp, ok := stytch.AsResponse(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", resp.ErrorMessage)
	fmt.Fprintf(w, "  Status:     %d\n", resp.StatusCode)
	fmt.Fprintf(w, "  Type:       %s\n", resp.ErrorType)
	if resp.RequestID != "" {
		fmt.Fprintf(w, "  Request ID: %s\n", resp.RequestID)
	}
	if resp.ErrorURL != "" {
		fmt.Fprintf(w, "  Docs:       %s\n", resp.ErrorURL)
	}
}
