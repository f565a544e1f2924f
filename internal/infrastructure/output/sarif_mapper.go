package output

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

var ruleDescriptions = map[string]string{
	"invalid-request":        "The request file could not be read or failed schema validation",
	"invalid-profiles":       "A profile file could not be loaded",
	"configuration":          "A collaborator needed by the request is unavailable",
	"missing-default":        "A stage needs a default that no profile provides",
	"missing-required":       "A required option has no value",
	"missing-keywords":       "A stage was enabled without its required inputs",
	"unrecognized-keywords":  "Stage inputs contain keys the stage does not accept",
	"unresolved-dependency":  "A stage depends on a label that was never registered",
	"unsupported-method":     "The requested method has no overlay",
	"invalid-cost-function":  "An optimization cost function is malformed",
	"dimension-mismatch":     "Per-level option lists have different lengths",
	"unnamable-value":        "A sweep value cannot be turned into a directory name",
	"unknown-profile":        "A named default profile does not exist",
	"duplicate-stage":        "Two stages were registered under one label",
	"sealed-registry":        "A stage was registered after the registry was sealed",
	"shared-point-not-found": "The sweep point that supplies shared factors is missing",
	"invalid-option":         "An option value is invalid",
	"assembly-failed":        "The pipeline could not be assembled",
	"empty-pipeline":         "The request assembles to no stages",
	"shared-factors":         "Sweep points reuse stages built by an earlier point",
}

type sarifMapper struct {
	resp        *dto.CheckResponse
	requestPath string
	cwd         string
}

func newSARIFMapper(resp *dto.CheckResponse, requestPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		resp:        resp,
		requestPath: requestPath,
		cwd:         cwd,
	}
}

// mapToRun populates the SARIF run with rules, results, artifacts and the invocation.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifacts(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules registers every rule used by a diagnostic, sorted by ID.
func (m *sarifMapper) addRules(run *sarif.Run) {
	seen := map[string]string{}
	for _, d := range m.resp.Diagnostics {
		if _, ok := seen[d.Rule]; !ok {
			seen[d.Rule] = d.Severity
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rule := sarif.NewReportingDescriptor().WithID(id)
		rule.WithName(id)

		desc, ok := ruleDescriptions[id]
		if !ok {
			desc = id
		}
		rule.WithShortDescription(&sarif.MultiformatMessageString{
			Text: ptrString(desc),
		})
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: m.mapSeverityToLevel(seen[id]),
		})
		run.Tool.Driver.AddRule(rule)
	}
}

func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, d := range m.resp.Diagnostics {
		result := sarif.NewRuleResult(d.Rule)
		result.Level = m.mapSeverityToLevel(d.Severity)
		result.Kind = m.mapSeverityToKind(d.Severity)
		result.Message = sarif.NewTextMessage(d.Message)

		if m.requestPath != "" {
			result.Locations = []*sarif.Location{m.createLocation()}
		}

		props := sarif.NewPropertyBag()
		props.Add("severity", d.Severity)
		if d.Location != "" {
			props.Add("location", d.Location)
		}
		result.WithProperties(props)

		run.AddResult(result)
	}
}

// mapSeverityToLevel converts a diagnostic severity to a SARIF level.
func (m *sarifMapper) mapSeverityToLevel(severity string) string {
	switch severity {
	case dto.SeverityError:
		return "error"
	case dto.SeverityNote:
		return "note"
	default:
		return "warning"
	}
}

// mapSeverityToKind converts a diagnostic severity to a SARIF kind.
func (m *sarifMapper) mapSeverityToKind(severity string) string {
	if severity == dto.SeverityNote {
		return "informational"
	}
	return "fail"
}

func (m *sarifMapper) createLocation() *sarif.Location {
	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(m.requestPath)))
	return sarif.NewLocation().WithPhysicalLocation(pLoc)
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// addArtifacts registers the request file.
func (m *sarifMapper) addArtifacts(run *sarif.Run) {
	if m.requestPath == "" {
		return
	}
	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(m.requestPath)))
	if info, err := os.Stat(m.requestPath); err == nil && !info.IsDir() {
		artifact.WithLength(int(info.Size()))
	}
	run.AddArtifact(artifact)
}

func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = ptrBool(!m.resp.HasErrors())

	if m.resp.Plan != nil && !m.resp.Plan.Metadata.ProcessedAt.IsZero() {
		start := m.resp.Plan.Metadata.ProcessedAt.UTC()
		startTime := start.Format("2006-01-02T15:04:05.000Z")
		endTime := start.Add(m.resp.Plan.Metadata.Duration).Format("2006-01-02T15:04:05.000Z")
		invocation.StartTimeUtc = &startTime
		invocation.EndTimeUtc = &endTime
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	if m.resp.Kind != "" {
		props.Add("kind", m.resp.Kind)
	}
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds plan statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	if m.resp.Plan == nil {
		return
	}
	props := sarif.NewPropertyBag()
	props.Add("points", len(m.resp.Plan.Points))
	props.Add("stages", m.resp.Plan.StageCount())
	run.WithProperties(props)
}

func ptrBool(b bool) *bool {
	return &b
}
