package compositor

import "testing"

func TestRectUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 5, 10, 10)
	u := a.Union(b)
	want := Rect{MinX: 0, MinY: 0, MaxX: 30, MaxY: 15}
	if u != want {
		t.Errorf("Union() = %+v, want %+v", u, want)
	}
}

func TestRectUnionWithEmpty(t *testing.T) {
	// EmptyRect must be the identity element for Union.
	e := EmptyRect()
	a := NewRect(3, 4, 5, 6)
	if got := e.Union(a); got != a {
		t.Errorf("EmptyRect().Union(a) = %+v, want %+v", got, a)
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlapping", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(20, 20, 5, 5), false},
		{"touching edges", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"contained", NewRect(0, 0, 10, 10), NewRect(2, 2, 2, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			// Intersects must be symmetric.
			if got := tt.b.Intersects(tt.a); got != tt.want {
				t.Errorf("Intersects() (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectIntersection(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	got := a.Intersection(b)
	want := Rect{MinX: 5, MinY: 5, MaxX: 10, MaxY: 10}
	if got != want {
		t.Errorf("Intersection() = %+v, want %+v", got, want)
	}

	c := NewRect(50, 50, 1, 1)
	if got := a.Intersection(c); !got.IsEmpty() {
		t.Errorf("Intersection() of disjoint rects = %+v, want empty", got)
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := NewRect(0, 0, 100, 100)
	if !outer.ContainsRect(NewRect(10, 10, 20, 20)) {
		t.Error("ContainsRect() = false for contained rect")
	}
	if outer.ContainsRect(NewRect(90, 90, 20, 20)) {
		t.Error("ContainsRect() = true for partially outside rect")
	}
	if !outer.ContainsRect(outer) {
		t.Error("ContainsRect() = false for identical rect")
	}
}

func TestRectArea(t *testing.T) {
	if got := NewRect(0, 0, 4, 5).Area(); got != 20 {
		t.Errorf("Area() = %v, want 20", got)
	}
	if got := EmptyRect().Area(); got != 0 {
		t.Errorf("EmptyRect().Area() = %v, want 0", got)
	}
}

func TestRectScaleRoundOut(t *testing.T) {
	r := NewRect(1.25, 2.5, 3, 3).Scale(2)
	ir := r.RoundOut()
	want := IntRect{MinX: 2, MinY: 5, MaxX: 9, MaxY: 11}
	if ir != want {
		t.Errorf("Scale(2).RoundOut() = %+v, want %+v", ir, want)
	}
}

func TestIntRectArea(t *testing.T) {
	r := NewIntRect(0, 0, 128, 128)
	if got := r.Area(); got != 128*128 {
		t.Errorf("Area() = %d, want %d", got, 128*128)
	}
	if got := (IntRect{}).Area(); got != 0 {
		t.Errorf("zero IntRect Area() = %d, want 0", got)
	}
}

func TestIntRectIntersection(t *testing.T) {
	a := NewIntRect(0, 0, 10, 10)
	b := NewIntRect(5, 5, 10, 10)
	got := a.Intersection(b)
	want := IntRect{MinX: 5, MinY: 5, MaxX: 10, MaxY: 10}
	if got != want {
		t.Errorf("Intersection() = %+v, want %+v", got, want)
	}
}
