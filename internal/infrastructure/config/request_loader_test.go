package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_RequestLoader_LoadRequest_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chain.yaml", `
basepath: runs
system:
  name: diamond
  pseudized: true
options:
  dft_pseudos: [C.upf]
  scf: true
`)

	doc, err := NewRequestLoader().LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "runs", doc["basepath"])
	options := doc["options"].(map[string]any)
	assert.Equal(t, true, options["scf"])
	assert.Equal(t, []any{"C.upf"}, options["dft_pseudos"])
}

func Test_RequestLoader_LoadRequest_HCL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.hcl", `
kind     = "ecut_scan"
basepath = "runs"
system = {
  name      = "diamond"
  pseudized = true
}
options = {
  dft_pseudos = ["C.upf"]
  opt_inputs  = { J2_prod = true, J2_size = 12 }
}
sweep = {
  ecuts = [50, 100, 112.5]
}
`)

	doc, err := NewRequestLoader().LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "ecut_scan", doc["kind"])
	assert.Equal(t, map[string]any{"name": "diamond", "pseudized": true}, doc["system"])

	opt := doc["options"].(map[string]any)["opt_inputs"].(map[string]any)
	assert.Equal(t, true, opt["J2_prod"])
	assert.Equal(t, 12, opt["J2_size"])
	assert.Equal(t, []any{50, 100, 112.5}, doc["sweep"].(map[string]any)["ecuts"])
}

func Test_RequestLoader_LoadRequest_Extends(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base/common.yaml", `
vars:
  root: /scratch
basepath: "{{ .vars.root }}/default"
options:
  dft_pseudos: [C.upf]
  qmc_pseudos: [C.ccECP.xml]
  opt_inputs:
    J2_prod: true
`)
	path := writeFile(t, dir, "chain.yaml", `
extends: base/common.yaml
vars:
  root: /work
basepath: "{{ .vars.root }}/diamond"
options:
  opt_inputs:
    J3_prod: true
`)

	doc, err := NewRequestLoader().LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "/work/diamond", doc["basepath"])
	assert.NotContains(t, doc, ExtendsKey)
	assert.NotContains(t, doc, VarsKey)

	options := doc["options"].(map[string]any)
	assert.Equal(t, []any{"C.upf"}, options["dft_pseudos"])
	assert.Equal(t, map[string]any{"J2_prod": true, "J3_prod": true}, options["opt_inputs"])
}

func Test_RequestLoader_LoadRequest_CircularExtends(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "extends: b.yaml\nbasepath: a\n")
	path := writeFile(t, dir, "b.yaml", "extends: [a.yaml]\nbasepath: b\n")

	_, err := NewRequestLoader().LoadRequest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular inheritance detected")
}

func Test_RequestLoader_LoadRequest_SharedAncestor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "basepath: runs\n")
	writeFile(t, dir, "left.yaml", "extends: base.yaml\nsystem:\n  name: diamond\n")
	writeFile(t, dir, "right.yaml", "extends: base.yaml\noptions:\n  dft_pseudos: [C.upf]\n")
	path := writeFile(t, dir, "top.yaml", "extends: [left.yaml, right.yaml]\n")

	doc, err := NewRequestLoader().LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "runs", doc["basepath"])
	assert.Contains(t, doc, "system")
	assert.Contains(t, doc, "options")
}

func Test_RequestLoader_LoadRequest_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"invalid yaml", "bad.yaml", "basepath: [[[", "failed to decode request YAML"},
		{"invalid hcl", "bad.hcl", "basepath = ", "failed to parse HCL request"},
		{"hcl blocks", "block.hcl", "system {\n  name = \"x\"\n}\n", "failed to decode HCL request"},
		{"extends shape", "ext.yaml", "extends: 3\n", "extends must be a string or a list"},
		{"missing parent", "orphan.yaml", "extends: nowhere.yaml\n", "loading parent"},
		{"undefined var", "vars.yaml", "basepath: \"{{ .vars.nope }}\"\n", "variable substitution failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.body)
			_, err := NewRequestLoader().LoadRequest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := NewRequestLoader().LoadRequest(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open request")
}

func Test_LoadRequestFromReader_EmptyYAML(t *testing.T) {
	doc, err := LoadRequestFromReader(strings.NewReader(""), FormatYAML, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, doc)

	_, err = LoadRequestFromReader(strings.NewReader(""), "toml", "x.toml")
	require.Error(t, err)
}

func Test_FormatOf(t *testing.T) {
	assert.Equal(t, FormatHCL, FormatOf("scan.HCL"))
	assert.Equal(t, FormatYAML, FormatOf("scan.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("scan.yml"))
}

func Test_MergeDocuments(t *testing.T) {
	base := map[string]any{
		"a":    1,
		"list": []any{1, 2},
		"nest": map[string]any{"x": 1, "y": map[string]any{"deep": true}},
	}
	overlay := map[string]any{
		"list": []any{3},
		"nest": map[string]any{"y": map[string]any{"other": 2}},
		"b":    "new",
	}

	got := MergeDocuments(base, overlay)
	assert.Equal(t, map[string]any{
		"a":    1,
		"b":    "new",
		"list": []any{3},
		"nest": map[string]any{"x": 1, "y": map[string]any{"deep": true, "other": 2}},
	}, got)
	assert.NotContains(t, base, "b")
	assert.Equal(t, map[string]any{"deep": true}, base["nest"].(map[string]any)["y"])
}
