package utils

import "testing"

func TestMakeMap(t *testing.T) {
	m := MakeMap("network_id", "3")
	if len(m) != 1 || m["network_id"] != "3" {
		t.Errorf("unexpected map %v", m)
	}
}
