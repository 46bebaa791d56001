package diagram

import "testing"

func TestRectUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 30, 5, 5}, Rect{0, 0, 25, 35}},
		{"nested", Rect{0, 0, 100, 50}, Rect{10, 10, 5, 5}, Rect{0, 0, 100, 50}},
		{"offset", Rect{10, 0, 10, 10}, Rect{0, 20, 40, 10}, Rect{0, 0, 40, 30}},
		{"empty left", Rect{}, Rect{5, 5, 1, 1}, Rect{5, 5, 1, 1}},
		{"empty right", Rect{5, 5, 1, 1}, Rect{X: 100, Y: 100}, Rect{5, 5, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union = %+v, want %+v", got, tt.want)
			}
		})
	}
}
