package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swisscut/export"
	"github.com/Dosada05/swisscut/services"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "12"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12}, ids)

	_, err = parseIDs([]string{"3", "x"})
	assert.Error(t, err)
	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}

func TestWriteReportsToDirectory(t *testing.T) {
	dir := t.TempDir()
	reports := []*export.Report{{Name: "A"}, {Name: "B"}}

	var out bytes.Buffer
	require.NoError(t, writeReports(&out, dir, []int{4, 9}, reports))

	body, err := os.ReadFile(filepath.Join(dir, "tournament-9.json"))
	require.NoError(t, err)
	var r export.Report
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, "B", r.Name)
	assert.Contains(t, out.String(), "tournament-4.json")
}

func TestWriteReportsToStdout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReports(&out, "", []int{4}, []*export.Report{{Name: "A", UploadedFrom: export.UploadedFrom}}))
	assert.Contains(t, out.String(), `"uploadedFrom": "AesopsTables"`)
}

func TestPrintStandings(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printStandings(&out, []services.StandingView{
		{Rank: 1, Name: "Dee", MatchPoints: 6, SOS: 1.5, ESOS: 4.5, SideBias: "Runner +2"},
	}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Dee")
	assert.Contains(t, lines[1], "1.500")
}

func TestSchemaCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schema"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "CREATE TABLE IF NOT EXISTS cut_matches")
}

func TestReportCommandNeedsIDsOrAll(t *testing.T) {
	for _, args := range [][]string{{"report"}, {"report", "--all", "3"}} {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), args)
	}
}
