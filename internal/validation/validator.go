// =============================================================================
// Easy Enigma Virtual Box Builder - Validation Engine
// =============================================================================
//
// This module runs pre-flight checks on a configuration before the packager
// is invoked. The build itself tolerates most of what is reported here (a
// missing item is simply skipped), so validation tells the user what the
// packager will actually receive.
//
// CHECKS:
//   - Input executable exists                              (error)
//   - Output directory exists                              (warning)
//   - Every listed item exists                             (warning)
//   - Listed directories are not empty                     (warning)
//   - No two entries share a name in the same container    (error)
//
// ERROR HANDLING:
//   - Issues are collected, not returned one at a time
//   - Each issue names the folder and item it concerns
//   - Errors make the result invalid; warnings do not
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eevb-tools/eevb/internal/config"
	"github.com/eevb-tools/eevb/internal/filetree"
	"github.com/eevb-tools/eevb/internal/types"
	"github.com/eevb-tools/eevb/pkg/utils"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleInputExists     = "input-exists"
	RuleOutputDirExists = "output-dir-exists"
	RuleItemExists      = "item-exists"
	RuleNonEmptyDir     = "non-empty-directory"
	RuleUniqueNames     = "unique-names"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the configuration location, e.g. "input" or "DefaultFolder".
	Field string

	// Value is the item or path the issue concerns.
	Value string

	// Rule is the check that was violated.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all issues, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// ItemsValidated is the number of configured items checked.
	ItemsValidated int

	// Stats counts the nodes the build would embed.
	Stats types.TreeStats
}

func (r *ValidationResult) add(issue *ValidationError, treatWarningsAsErrors bool) {
	r.Errors = append(r.Errors, issue)
	if issue.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if treatWarningsAsErrors {
		r.IsValid = false
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks configurations against the filesystem.
type Validator struct {
	resolver *utils.Resolver
	options  ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// NewValidator creates a new Validator resolving paths with resolver.
func NewValidator(resolver *utils.Resolver) *Validator {
	return NewValidatorWithOptions(resolver, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(resolver *utils.Resolver, options ValidationOptions) *Validator {
	return &Validator{
		resolver: resolver,
		options:  options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks cfg with the default options.
//
// PARAMETERS:
//   - cfg: The parsed configuration.
//   - resolver: Resolves paths against the configuration's base directory.
//
// RETURNS:
//   - The validation result. An error is returned only when the virtual
//     file tree cannot be built at all (unreadable directory, cycle).
func Validate(cfg *config.Configuration, resolver *utils.Resolver) (*ValidationResult, error) {
	return NewValidator(resolver).ValidateAll(cfg)
}

// ValidateAll runs every check on cfg.
func (v *Validator) ValidateAll(cfg *config.Configuration) (*ValidationResult, error) {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}

	for _, issue := range v.ValidatePaths(cfg) {
		result.add(issue, v.options.TreatWarningsAsErrors)
	}

	for _, folder := range config.Folders() {
		for _, item := range cfg.Files.Items.Get(folder) {
			if strings.TrimSpace(item) == "" {
				continue
			}
			result.ItemsValidated++
			if issue := v.ValidateItem(folder, item); issue != nil {
				result.add(issue, v.options.TreatWarningsAsErrors)
			}
		}
	}

	sections, err := filetree.NewBuilder(v.resolver, nil).BuildSections(cfg.Files.Items)
	if err != nil {
		return nil, err
	}
	result.Stats = types.CountNodes(sections)

	for _, issue := range ValidateTree(sections) {
		result.add(issue, v.options.TreatWarningsAsErrors)
	}

	return result, nil
}

// ValidatePaths checks the input executable and the output directory.
func (v *Validator) ValidatePaths(cfg *config.Configuration) []*ValidationError {
	var issues []*ValidationError

	input := v.resolver.Resolve(cfg.InputPath)
	if info, err := os.Stat(input); err != nil || info.IsDir() {
		issues = append(issues, &ValidationError{
			Severity: SeverityError,
			Field:    "input",
			Value:    cfg.InputPath,
			Rule:     RuleInputExists,
			Message:  fmt.Sprintf("input executable %s not found", input),
		})
	}

	outputDir := filepath.Dir(v.resolver.Resolve(cfg.OutputPath))
	if !utils.IsDir(outputDir) {
		issues = append(issues, &ValidationError{
			Severity: SeverityWarning,
			Field:    "output",
			Value:    cfg.OutputPath,
			Rule:     RuleOutputDirExists,
			Message:  fmt.Sprintf("output directory %s does not exist", outputDir),
		})
	}

	return issues
}

// ValidateItem checks that one configured item exists.
func (v *Validator) ValidateItem(folder config.Folder, item string) *ValidationError {
	stripped, _ := utils.StripMarker(item, config.ForceDirectoryMarker)
	resolved := v.resolver.Resolve(stripped)

	if _, err := os.Stat(resolved); err != nil {
		return &ValidationError{
			Severity: SeverityWarning,
			Field:    folder.Alias(),
			Value:    item,
			Rule:     RuleItemExists,
			Message:  fmt.Sprintf("%s not found, it will be skipped", resolved),
		}
	}
	return nil
}

// ValidateTree checks built sections for empty directories and name clashes.
// Names are compared case-insensitively, as they are on the target system.
func ValidateTree(sections []*types.VirtualFolderSection) []*ValidationError {
	var issues []*ValidationError

	for _, section := range sections {
		issues = append(issues, checkNames(section.Key, section.Literal, section.Nodes)...)

		section.Walk(func(node *types.VirtualFileNode, virtualPath string) {
			if !node.IsDir() {
				return
			}
			if len(node.Children) == 0 {
				issues = append(issues, &ValidationError{
					Severity: SeverityWarning,
					Field:    section.Key,
					Value:    node.SourcePath,
					Rule:     RuleNonEmptyDir,
					Message:  fmt.Sprintf("directory %s is empty", virtualPath),
				})
				return
			}
			issues = append(issues, checkNames(section.Key, virtualPath, node.Children)...)
		})
	}

	return issues
}

// checkNames reports entries of one container that share a name.
func checkNames(field, container string, nodes []*types.VirtualFileNode) []*ValidationError {
	var issues []*ValidationError
	seen := make(map[string]*types.VirtualFileNode, len(nodes))

	for _, node := range nodes {
		key := strings.ToLower(node.Name)
		first, ok := seen[key]
		if !ok {
			seen[key] = node
			continue
		}
		issues = append(issues, &ValidationError{
			Severity: SeverityError,
			Field:    field,
			Value:    node.SourcePath,
			Rule:     RuleUniqueNames,
			Message: fmt.Sprintf("%s holds two entries named %q (%s and %s)",
				container, node.Name, first.SourcePath, node.SourcePath),
		})
	}

	return issues
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation issues for display or logging.
//
// PARAMETERS:
//   - errors: The validation issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation issues to a log file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatErrors(errors)), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
