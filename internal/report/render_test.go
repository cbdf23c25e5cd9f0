package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pmig/pkg/pmig"
)

func sampleReport(dryRun bool) *pmig.MigrationReport {
	r := pmig.NewMigrationReport("run-1", "legacy.sql",
		[]pmig.Table{pmig.TableCobradores, pmig.TableClientes, pmig.TablePrestamos}, 10, dryRun)
	r.Fingerprint = "0123456789abcdef0123456789abcdef"
	r.Encoding = pmig.EncodingWindows1252
	r.Update(pmig.TableCobradores, func(tr *pmig.TableReport) {
		tr.LookupOnly = true
		tr.Located = true
		tr.Extracted = 4
	})
	r.Update(pmig.TableClientes, func(tr *pmig.TableReport) {
		tr.Located = true
		tr.Statements = 2
		tr.Extracted = 4
		tr.Migrated = 2
		tr.SkippedDuplicate = 1
		tr.SkippedMalformed = 1
	})
	r.AddSample(pmig.TableClientes, pmig.Sample{Kind: pmig.SampleArity, Offset: 812, Reason: "clientes: 3 fields, want at least 18", Text: "5,'Short',1"})
	return r
}

func TestRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Render(sampleReport(false))
	out := buf.String()

	assert.Contains(t, out, "Migration report")
	assert.NotContains(t, out, "dry run")
	assert.Contains(t, out, "windows1252")
	assert.Contains(t, out, "cobradores (lookup)")
	assert.Contains(t, out, "prestamos (not found)")
	assert.Contains(t, out, "Migrated")
	assert.Contains(t, out, "clientes: first 1 skipped record(s)")
	assert.Contains(t, out, "[arity @812] clientes: 3 fields, want at least 18")
	assert.Contains(t, out, "5,'Short',1")
	assert.NotContains(t, out, "\x1b[", "non-terminal output carries no escape codes")
}

func TestRenderer_DryRunTitle(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Render(sampleReport(true))

	assert.Contains(t, buf.String(), "dry run: nothing written")
}

func TestStyled_NonTerminal(t *testing.T) {
	assert.False(t, Styled(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, Styled(f))
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, WriteJSONFile(path, sampleReport(false)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		RunID    string `json:"run_id"`
		Encoding string `json:"encoding"`
		Tables   []struct {
			Table      string `json:"table"`
			LookupOnly bool   `json:"lookup_only"`
			Migrated   int    `json:"migrated"`
			Samples    []struct {
				Kind string `json:"kind"`
			} `json:"samples"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "windows1252", decoded.Encoding)
	require.Len(t, decoded.Tables, 3)
	assert.True(t, decoded.Tables[0].LookupOnly)
	assert.Equal(t, 2, decoded.Tables[1].Migrated)
	require.Len(t, decoded.Tables[1].Samples, 1)
	assert.Equal(t, pmig.SampleArity, decoded.Tables[1].Samples[0].Kind)
}

func TestWriteJSONFile_BadPath(t *testing.T) {
	err := WriteJSONFile(filepath.Join(t.TempDir(), "missing", "report.json"), sampleReport(false))
	assert.Error(t, err)
}
