package storage

import (
	"strings"
	"testing"

	"github.com/san-kum/usvsim/internal/sim"
)

func testResult() *sim.Result {
	log := make([][]float64, 3)
	for i := range log {
		row := make([]float64, sim.NumColumns)
		row[0] = float64(i) * 0.02
		row[1] = float64(i)
		log[i] = row
	}
	return &sim.Result{
		Log:     log,
		Metrics: map[string]float64{"course_rms": 0.05},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save("step", 0.02, 2, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "step_") {
		t.Errorf("run id should carry the scenario name, got %s", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scenario != "step" || meta.Dt != 0.02 || meta.Steps != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["course_rms"] != 0.05 {
		t.Error("metrics should survive the round trip")
	}

	log, err := st.LoadLog(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(log))
	}
	if len(log[0]) != sim.NumColumns {
		t.Fatalf("expected %d columns, got %d", sim.NumColumns, len(log[0]))
	}
	if log[2][1] != 2 {
		t.Errorf("expected value 2, got %f", log[2][1])
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save("calm", 0.02, 2, testResult()); err != nil {
		t.Fatal(err)
	}
	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/usvsim-store")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Error("missing base dir should list as empty")
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadLog("nope"); err == nil {
		t.Error("expected error for missing log")
	}
}
