// Package loader reads compiled ISL domain declarations and recorded
// execution traces from disk. Domains arrive as the JSON interchange
// emitted by the external ISL compiler (or an equivalent YAML document);
// traces as JSON files produced by the trace recorder.
package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/types"
)

// domainDoc mirrors the compiler's interchange format; expressions stay
// raw until decoded into the closed AST
type domainDoc struct {
	Domain    string        `json:"domain"`
	Behaviors []behaviorDoc `json:"behaviors"`
}

type behaviorDoc struct {
	Name           string                `json:"name"`
	Postconditions *postsDoc             `json:"postconditions"`
	Location       *types.SourceLocation `json:"location"`
}

type postsDoc struct {
	Conditions []conditionDoc `json:"conditions"`
}

type conditionDoc struct {
	Trigger    *types.Trigger `json:"trigger"`
	Statements []statementDoc `json:"statements"`
}

type statementDoc struct {
	Expression json.RawMessage       `json:"expression"`
	Location   *types.SourceLocation `json:"location"`
}

// LoadDomain reads a domain declaration from a .json, .yaml, or .yml file
func LoadDomain(path string) (*types.Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read domain file %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		jsonData, err := yamlToJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode YAML domain %s", path)
		}
		data = jsonData
	}

	domain, err := DecodeDomain(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid domain document %s", path)
	}
	return domain, nil
}

// DecodeDomain decodes a domain declaration from its JSON interchange form
func DecodeDomain(data []byte) (*types.Domain, error) {
	var doc domainDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidDomain, err.Error())
	}
	if doc.Domain == "" {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrInvalidDomain, "missing domain name"),
			"compile the ISL source with the ISL compiler to produce a domain JSON")
	}

	domain := &types.Domain{Name: doc.Domain}
	for _, b := range doc.Behaviors {
		behavior := types.Behavior{Name: b.Name, Loc: b.Location}
		if b.Postconditions != nil {
			block := &types.PostconditionBlock{}
			for _, cond := range b.Postconditions.Conditions {
				group := types.ConditionGroup{}
				if cond.Trigger != nil {
					group.Trigger = *cond.Trigger
				}
				for _, stmt := range cond.Statements {
					expr, err := types.DecodeExpr(stmt.Expression)
					if err != nil {
						return nil, errors.Wrapf(err, "behavior %q", b.Name)
					}
					group.Statements = append(group.Statements, types.Statement{
						Expression: expr,
						Loc:        stmt.Location,
					})
				}
				block.Conditions = append(block.Conditions, group)
			}
			behavior.Postconditions = block
		}
		domain.Behaviors = append(domain.Behaviors, behavior)
	}
	return domain, nil
}

// LoadTraces reads execution traces from a JSON file or from every .json
// file in a directory (sorted by name, so verification order is stable).
// A file may hold a single trace object or an array of traces.
func LoadTraces(path string) ([]*types.ExecutionTrace, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat trace path %s", path)
	}

	if !info.IsDir() {
		return loadTraceFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read trace directory %s", path)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var traces []*types.ExecutionTrace
	for _, name := range names {
		fileTraces, err := loadTraceFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		traces = append(traces, fileTraces...)
	}
	return traces, nil
}

func loadTraceFile(path string) ([]*types.ExecutionTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read trace file %s", path)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var traces []*types.ExecutionTrace
		if err := json.Unmarshal(data, &traces); err != nil {
			return nil, errors.Wrapf(errors.Wrap(errors.ErrTraceCorrupt, err.Error()), "file %s", path)
		}
		return traces, nil
	}

	var trace types.ExecutionTrace
	if err := json.Unmarshal(data, &trace); err != nil {
		return nil, errors.Wrapf(errors.Wrap(errors.ErrTraceCorrupt, err.Error()), "file %s", path)
	}
	return []*types.ExecutionTrace{&trace}, nil
}

// yamlToJSON converts a YAML document to its JSON equivalent so both
// formats share one decode path
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML rewrites map[any]any shapes (possible with older YAML
// emitters) into map[string]any so json.Marshal accepts them
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = normalizeYAML(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}
