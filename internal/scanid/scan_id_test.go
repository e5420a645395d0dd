package scanid

import "testing"

func TestComputeScanID_Deterministic(t *testing.T) {
	id1 := ComputeScanID("RegAbc123", 250000000, 1700000000)
	id2 := ComputeScanID("RegAbc123", 250000000, 1700000000)

	if id1 != id2 {
		t.Errorf("expected identical ids, got %s and %s", id1, id2)
	}

	if len(id1) != 64 {
		t.Errorf("expected 64-char hex id, got %d chars", len(id1))
	}
}

func TestComputeScanID_DistinctInputs(t *testing.T) {
	base := ComputeScanID("RegAbc123", 250000000, 1700000000)

	variants := []string{
		ComputeScanID("RegAbc124", 250000000, 1700000000),
		ComputeScanID("RegAbc123", 250000001, 1700000000),
		ComputeScanID("RegAbc123", 250000000, 1700000001),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d: expected distinct id, got collision with base", i)
		}
	}
}
