package geom

import (
	"image"
	"testing"
)

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", RectOf(0, 0, 10, 10), RectOf(5, 5, 10, 10), RectOf(5, 5, 5, 5)},
		{"contained", RectOf(0, 0, 10, 10), RectOf(2, 2, 3, 3), RectOf(2, 2, 3, 3)},
		{"disjoint", RectOf(0, 0, 1, 1), RectOf(5, 5, 1, 1), Rect{}},
		{"touching", RectOf(0, 0, 5, 5), RectOf(5, 0, 5, 5), Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	got := RectOf(0, 0, 2, 2).Union(RectOf(4, 4, 2, 2))
	if want := RectOf(0, 0, 6, 6); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := (Rect{}).Union(RectOf(1, 1, 1, 1)); got != RectOf(1, 1, 1, 1) {
		t.Errorf("empty Union() = %+v", got)
	}
}

func TestRectTransform(t *testing.T) {
	got := RectOf(0, 0, 10, 20).Transform(Translate(5, 5).Multiply(Scale(2, 0.5)))
	if want := RectOf(5, 5, 20, 10); got != want {
		t.Errorf("Transform() = %+v, want %+v", got, want)
	}
}

func TestRectImage(t *testing.T) {
	got := RectOf(0.5, 1.2, 2, 2).Image()
	want := image.Rect(0, 1, 3, 4)
	if got != want {
		t.Errorf("Image() = %v, want %v", got, want)
	}
	if !FromImage(want).Contains(Pt(1, 2)) {
		t.Error("FromImage().Contains() = false")
	}
}
