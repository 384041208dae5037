package calculator

import (
	"reflect"
	"testing"
)

func TestResolveSharers(t *testing.T) {
	members := []string{"C", "A", "B"}

	tests := []struct {
		name     string
		sharedBy []string
		want     []string
	}{
		{name: "empty means everyone", sharedBy: nil, want: []string{"A", "B", "C"}},
		{name: "explicit subset", sharedBy: []string{"C", "B"}, want: []string{"B", "C"}},
		{name: "non-members dropped", sharedBy: []string{"B", "Zed", ""}, want: []string{"B"}},
		{name: "duplicates collapsed", sharedBy: []string{"B", "B", "A"}, want: []string{"A", "B"}},
		{name: "only former members", sharedBy: []string{"Zed"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSharers(tt.sharedBy, members)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveSharers(%v) = %v, want %v", tt.sharedBy, got, tt.want)
			}
		})
	}
}

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		sharers   []string
		purchaser string
		want      []Share
	}{
		{
			name:      "remainder goes to first non-purchaser",
			price:     10,
			sharers:   []string{"A", "B", "C"},
			purchaser: "A",
			want:      []Share{{"B", 3.34}, {"C", 3.33}, {"A", 3.33}},
		},
		{
			name:      "purchaser not sharing",
			price:     9,
			sharers:   []string{"B", "C"},
			purchaser: "A",
			want:      []Share{{"B", 4.5}, {"C", 4.5}},
		},
		{
			name:      "negative remainder",
			price:     0.05,
			sharers:   []string{"A", "B", "C"},
			purchaser: "C",
			want:      []Share{{"A", 0.01}, {"B", 0.02}, {"C", 0.02}},
		},
		{
			name:      "tiny price across many sharers",
			price:     0.05,
			sharers:   []string{"A", "B", "C", "D", "E", "F", "G"},
			purchaser: "A",
			want:      []Share{{"B", 0.05}, {"C", 0}, {"D", 0}, {"E", 0}, {"F", 0}, {"G", 0}, {"A", 0}},
		},
		{
			name:      "purchaser alone",
			price:     4.99,
			sharers:   []string{"A"},
			purchaser: "A",
			want:      []Share{{"A", 4.99}},
		},
		{
			name:      "no sharers",
			price:     4.99,
			sharers:   nil,
			purchaser: "A",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEvenly(tt.price, tt.sharers, tt.purchaser)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitEvenly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitEvenly_ConservesPrice(t *testing.T) {
	sharers := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, price := range []float64{0.01, 0.05, 0.1, 1, 9.99, 10, 33.33, 100, 123.45, 999.99} {
		for n := 1; n <= len(sharers); n++ {
			shares := SplitEvenly(price, sharers[:n], "A")
			var sum float64
			for _, s := range shares {
				if s.Amount < 0 {
					t.Errorf("price %v over %d sharers: negative share %v", price, n, s)
				}
				sum += s.Amount
			}
			if Round2(sum) != price {
				t.Errorf("price %v over %d sharers: shares sum to %v", price, n, Round2(sum))
			}
		}
	}
}
