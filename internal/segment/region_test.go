package segment

import (
	"encoding/json"
	"testing"
)

func TestBBoxMarshalsAsArray(t *testing.T) {
	data, err := json.Marshal(BBox{X: 12, Y: 34, W: 56, H: 78})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[12,34,56,78]" {
		t.Errorf("Expected [12,34,56,78], got %s", data)
	}
}

func TestKindMarshalsAsString(t *testing.T) {
	for kind, want := range map[Kind]string{KindText: `"text"`, KindImage: `"image"`} {
		data, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
	}
}
