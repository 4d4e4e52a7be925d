package cli

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/cobra"

	"github.com/moviola/moviola/internal/session"
)

// bundleSchema is the CUE export schema session bundles must satisfy.
//
//go:embed schema.cue
var bundleSchema string

// ValidationError describes one schema or decode violation.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <session.json>",
		Short: "Validate a session bundle against the export schema",
		Long: `Validate an exported session bundle without replaying it.

Checks the bundle against the embedded CUE export schema (shape, required
fields, timestamp bounds), then strictly decodes it and runs event
normalization. Faster than a full replay for checking exporter output.

Exit codes:
  0 - Bundle is valid
  1 - Bundle violates the schema or failed decoding
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("session bundle not found: %s", path))
		}
		return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("error reading bundle: %v", err))
	}
	formatter.VerboseLog("Read %d bytes from %s", len(raw), path)

	validationErrors := validateBundle(raw, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter)
}

// validateBundle checks raw bundle bytes in three layers: schema
// conformance, strict decoding, and event normalization. Later layers run
// only when the earlier ones pass, so one root cause reports once.
func validateBundle(raw []byte, formatter *OutputFormatter) []ValidationError {
	formatter.VerboseLog("Validating against export schema")
	if errs := validateSchema(raw); len(errs) > 0 {
		return errs
	}

	formatter.VerboseLog("Schema valid, decoding strictly")
	bundle, err := session.DecodeBundle(bytes.NewReader(raw))
	if err != nil {
		return []ValidationError{{
			Field:   "bundle",
			Message: err.Error(),
			Code:    ErrCodeBadBundle,
		}}
	}

	formatter.VerboseLog("Decoded %d event(s), normalizing", len(bundle.Events))
	if _, err := session.Normalize(bundle.Events); err != nil {
		return []ValidationError{{
			Field:   "events",
			Message: err.Error(),
			Code:    ErrCodeInvalidEvents,
		}}
	}
	return nil
}

// validateSchema unifies the bundle's JSON with the embedded #Bundle
// definition. JSON is a subset of CUE, so the document compiles directly.
func validateSchema(raw []byte) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(bundleSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []ValidationError{{
			Field:   "schema",
			Message: fmt.Sprintf("embedded schema is broken: %v", err),
			Code:    ErrCodeGeneric,
		}}
	}

	data := ctx.CompileBytes(raw, cue.Filename("bundle.json"))
	if err := data.Err(); err != nil {
		return []ValidationError{{
			Field:   "bundle",
			Message: fmt.Sprintf("not a JSON document: %v", err),
			Code:    ErrCodeBadBundle,
		}}
	}

	unified := schema.LookupPath(cue.MakePath(cue.Def("#Bundle"))).Unify(data)
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}

	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{
			Field:   strings.Join(pathStrings(e.Path()), "."),
			Message: e.Error(),
			Code:    ErrCodeSchema,
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	return out
}

func pathStrings(path []string) []string {
	// Drop the leading definition label; "events.3.timestamp" reads better
	// than "#Bundle.events.3.timestamp".
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		return path[1:]
	}
	return path
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintln(formatter.Writer, "✓ Bundle valid")
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs schema/decode violations.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
