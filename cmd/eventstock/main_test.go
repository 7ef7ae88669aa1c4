package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/eventstock/internal/app"
	"github.com/bobmcallan/eventstock/internal/common"
	"github.com/bobmcallan/eventstock/internal/services/report"
	testcommon "github.com/bobmcallan/eventstock/test/common"
)

// upstreamFactory builds apps wired to a fake upstream instead of a config file
func upstreamFactory(t *testing.T) appFactory {
	upstream := testcommon.NewUpstream(t)
	return func(string) (*app.App, error) {
		cfg := common.NewDefaultConfig()
		upstream.Configure(cfg)
		return app.NewAppWithConfig(cfg, common.NewSilentLogger())
	}
}

func runCmd(t *testing.T, factory appFactory, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(factory)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeEventFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, testcommon.SampleEventJSON(t), 0644))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, upstreamFactory(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "EventStock version "+common.GetVersion())
}

func TestStatsCmd_Markdown(t *testing.T) {
	out, err := runCmd(t, upstreamFactory(t), "stats", writeEventFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "# Event Statistics: Gulf Oil Spill")
	assert.Contains(t, out, "| BP | 6 |")
}

func TestStatsCmd_JSON(t *testing.T) {
	out, err := runCmd(t, upstreamFactory(t), "stats", "--json", writeEventFile(t))
	require.NoError(t, err)

	var resp struct {
		Event string `json:"event"`
		Stats []struct {
			Company string `json:"company"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Gulf Oil Spill", resp.Event)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, "BP", resp.Stats[0].Company)
}

func TestStatsCmd_MissingFile(t *testing.T) {
	_, err := runCmd(t, upstreamFactory(t), "stats", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReportCmd_WritesPDF(t *testing.T) {
	dir := t.TempDir()
	heatMap := filepath.Join(dir, "heat.png")
	require.NoError(t, os.WriteFile(heatMap, testcommon.TestPNG(t, 400, 250), 0644))
	outPath := filepath.Join(dir, "out", "spill.pdf")

	out, err := runCmd(t, upstreamFactory(t), "report", writeEventFile(t), "--heat-map", heatMap, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	summary, err := report.Inspect(data)
	require.NoError(t, err)
	assert.True(t, summary.Contains("Gulf Oil Spill"))

	out, err = runCmd(t, upstreamFactory(t), "inspect", "--text", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "--- page 1 ---")
}

func TestReportCmd_WithoutHeatMap(t *testing.T) {
	_, err := runCmd(t, upstreamFactory(t), "report", writeEventFile(t), "--out", filepath.Join(t.TempDir(), "r.pdf"))
	require.Error(t, err)
	assert.Equal(t, common.PreconditionMessage, err.Error())
}

func TestReportCmd_InvalidHeatMap(t *testing.T) {
	heatMap := filepath.Join(t.TempDir(), "heat.png")
	require.NoError(t, os.WriteFile(heatMap, []byte("not an image"), 0644))

	_, err := runCmd(t, upstreamFactory(t), "report", writeEventFile(t), "--heat-map", heatMap)
	assert.ErrorContains(t, err, "invalid heat map")
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "Gulf Oil Spill report.pdf", defaultOutputPath("Gulf Oil Spill report"))
	assert.Equal(t, "Oil_Gas spill report.pdf", defaultOutputPath("Oil/Gas spill report"))
	assert.Equal(t, ".._.._etc report.pdf", defaultOutputPath("../../etc report"))
	assert.Equal(t, "a_b.pdf", defaultOutputPath(`a\b`))
	assert.Equal(t, "report.pdf", defaultOutputPath("  "))
	assert.Equal(t, "report.pdf", defaultOutputPath(".."))
}

func TestReportCmd_DefaultOutputStaysInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	heatMap := filepath.Join(dir, "heat.png")
	require.NoError(t, os.WriteFile(heatMap, testcommon.TestPNG(t, 400, 250), 0644))

	event := testcommon.SampleEvent()
	event.Name = "Oil/Gas Spill"
	data, err := json.Marshal(event)
	require.NoError(t, err)
	eventPath := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(eventPath, data, 0644))

	t.Chdir(dir)
	out, err := runCmd(t, upstreamFactory(t), "report", eventPath, "--heat-map", heatMap)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote Oil_Gas Spill report.pdf")

	_, err = os.Stat(filepath.Join(dir, "Oil_Gas Spill report.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "Oil"))
	assert.True(t, os.IsNotExist(err))
}
