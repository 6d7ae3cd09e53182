package heaptree

import (
	"testing"
)

func TestLog2Uint64(t *testing.T) {
	type args struct {
		num uint64
	}
	tests := []struct {
		name string
		args args
		want uint64
	}{
		{"1 -> 0", args{1}, 0},
		{"2 -> 1", args{2}, 1},
		{"3 -> 1", args{3}, 1},
		{"4 -> 2", args{4}, 2},
		{"5 -> 2", args{5}, 2},
		{"8 -> 3", args{8}, 3},
		{"16 -> 4", args{16}, 4},
		{"17 -> 4", args{17}, 4},
		{"32 -> 5", args{32}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Log2Uint64(tt.args.num); got != tt.want {
				t.Errorf("Log2Uint64() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 8, 1024} {
		if !IsPow2(n) {
			t.Errorf("IsPow2(%d) = false", n)
		}
	}
	for _, n := range []uint64{0, 3, 5, 6, 7, 9, 1023} {
		if IsPow2(n) {
			t.Errorf("IsPow2(%d) = true", n)
		}
	}
}
