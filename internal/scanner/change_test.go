package scanner

import (
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	tests := []struct {
		name  string
		prior *PriorRecord
		size  int64
		mtime time.Time
		want  ChangeState
	}{
		{"no prior record", nil, 100, now, ChangeNew},
		{"identical", &PriorRecord{Size: 100, ModTime: now}, 100, now, ChangeUnchanged},
		{"size changed", &PriorRecord{Size: 100, ModTime: now}, 101, now, ChangeUpdated},
		{"mtime changed", &PriorRecord{Size: 100, ModTime: now}, 100, now.Add(time.Minute), ChangeUpdated},
		{"sub-second drift ignored", &PriorRecord{Size: 100, ModTime: now}, 100, now.Add(200 * time.Millisecond), ChangeUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.prior, tt.size, tt.mtime); got != tt.want {
				t.Errorf("Compare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChangeStateString(t *testing.T) {
	if ChangeNew.String() != "new" || ChangeUpdated.String() != "updated" || ChangeUnchanged.String() != "unchanged" {
		t.Error("Unexpected state names")
	}
}
