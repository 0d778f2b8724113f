package cmd

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/session"
)

func TestSparkline(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"empty", nil, ""},
		{"all missing", []float64{nan, nan}, "  "},
		{"flat", []float64{5, 5, 5}, "▅▅▅"},
		{"rising", []float64{0, 7}, "▁█"},
		{"gap", []float64{0, nan, 7}, "▁ █"},
	}
	for _, tt := range tests {
		if got := sparkline(tt.values); got != tt.want {
			t.Errorf("sparkline(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTextTable(t *testing.T) {
	tbl := &textTable{
		headers: []string{"Classe", "Faits"},
		right:   map[int]bool{1: true},
	}
	tbl.addRow("Vols", "1 000")
	tbl.addRow("Coups et blessures volontaires", "7")
	tbl.addRow("Incomplet")

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Classe")
	assert.Contains(t, lines[3], "Coups et blessures volontaires")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[3], " "), "7"))
	assert.Contains(t, lines[4], "Incomplet")
}

func TestRenderTemporal(t *testing.T) {
	d := testDashboard()

	var buf bytes.Buffer
	require.NoError(t, renderTemporal(&buf, d.Temporal(session.New())))
	assert.Equal(t, dashboard.MsgSelectClass+"\n", buf.String())

	sel := session.New()
	sel.SelectClasses([]string{"Vols", "Coups"})
	buf.Reset()
	require.NoError(t, renderTemporal(&buf, d.Temporal(sel)))
	out := buf.String()
	assert.Contains(t, out, "2021 à 2022 (2 années)")
	assert.Contains(t, out, "Vols")
	assert.Contains(t, out, "Coups")
	assert.Contains(t, out, "▁█")
}

func TestRenderRanking(t *testing.T) {
	d := testDashboard()

	var buf bytes.Buffer
	require.NoError(t, renderRanking(&buf, d.Territorial(session.New())))
	assert.Contains(t, buf.String(), "--department")

	sel := session.New()
	sel.SelectDepartment("1")
	buf.Reset()
	require.NoError(t, renderRanking(&buf, d.Territorial(sel)))
	out := buf.String()
	assert.Contains(t, out, "01 Ain")
	assert.Less(t, strings.Index(out, "Vols"), strings.Index(out, "Coups"), "highest first")

	sel.SelectYear(21)
	buf.Reset()
	require.NoError(t, renderRanking(&buf, d.Territorial(sel)))
	assert.Contains(t, buf.String(), "Faits 2021")

	sel.SelectDepartment("2A")
	buf.Reset()
	require.NoError(t, renderRanking(&buf, d.Territorial(sel)))
	assert.Equal(t, dashboard.MsgNoDepartmentData+"\n", buf.String())
}

func TestRenderOverview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderOverview(&buf, testDashboard().Home()))
	out := buf.String()
	assert.Contains(t, out, "5 lignes")
	assert.Contains(t, out, "• Coups")
	assert.Contains(t, out, "• Vols")
	assert.Equal(t, 3, strings.Count(out, " 01 "), "three head rows from department 01")
}
