package stack

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"sync"
	"testing"

	"github.com/gogpu/patchview/geom"
)

// recorder captures events as strings, in delivery order.
type recorder struct {
	events []string

	// lenAtResize records the length of stack seen during StackAboutToResize.
	stack       *Stacked
	lenAtResize []int
}

func (r *recorder) StackDirty(region geom.Rect) {
	r.events = append(r.events, fmt.Sprintf("dirty %v", region))
}

func (r *recorder) StackChanged() {
	r.events = append(r.events, "changed")
}

func (r *recorder) StackAboutToResize(n int) {
	r.events = append(r.events, fmt.Sprintf("resize %d", n))
	if r.stack != nil {
		r.lenAtResize = append(r.lenAtResize, r.stack.Len())
	}
}

func names(s *Stacked) []string {
	var out []string
	for _, l := range s.Layers() {
		out = append(out, l.Name)
	}
	return out
}

func TestStacked_AppendEmitsResizeThenChanged(t *testing.T) {
	s := NewStacked(NewLayer("a", nil))
	rec := &recorder{stack: s}
	s.Subscribe(rec)

	s.Append(NewLayer("b", nil))

	if want := []string{"resize 2", "changed"}; !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
	// resize is announced before the stack changes
	if !slices.Equal(rec.lenAtResize, []int{1}) {
		t.Errorf("len during resize = %v, want [1]", rec.lenAtResize)
	}
	if got := names(s); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("layers = %v", got)
	}
}

func TestStacked_ConcurrentAppendAnnouncesEachSize(t *testing.T) {
	const writers, perWriter = 8, 16
	s := NewStacked(NewLayer("base", nil))
	rec := &recorder{stack: s}
	s.Subscribe(rec)

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				s.Append(NewLayer(fmt.Sprintf("w%d-%d", w, i), nil))
				if i%4 == 0 {
					_ = s.SetOpacity(0, 0.5)
				}
			}
		}()
	}
	wg.Wait()

	total := 1 + writers*perWriter
	if s.Len() != total {
		t.Fatalf("Len() = %d, want %d", s.Len(), total)
	}

	// Each resize is followed by its own change and announces one more
	// layer than the stack held at that moment.
	var sizes []int
	for i, ev := range rec.events {
		var n int
		if _, err := fmt.Sscanf(ev, "resize %d", &n); err != nil {
			continue
		}
		sizes = append(sizes, n)
		if i+1 >= len(rec.events) || rec.events[i+1] != "changed" {
			t.Fatalf("resize %d at event %d not followed by changed", n, i)
		}
	}
	if len(sizes) != writers*perWriter {
		t.Fatalf("got %d resize events, want %d", len(sizes), writers*perWriter)
	}
	for i, n := range sizes {
		if n != i+2 || rec.lenAtResize[i] != i+1 {
			t.Fatalf("resize %d announced %d with len %d, want %d with len %d",
				i, n, rec.lenAtResize[i], i+2, i+1)
		}
	}
}

func TestStacked_InsertRemoveMove(t *testing.T) {
	s := NewStacked(NewLayer("a", nil), NewLayer("c", nil))
	rec := &recorder{}
	s.Subscribe(rec)

	if err := s.Insert(1, NewLayer("b", nil)); err != nil {
		t.Fatal(err)
	}
	if got := names(s); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("after Insert = %v", got)
	}
	if err := s.Move(0, 2); err != nil {
		t.Fatal(err)
	}
	if got := names(s); !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("after Move = %v", got)
	}
	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if got := names(s); !slices.Equal(got, []string{"b", "a"}) {
		t.Fatalf("after Remove = %v", got)
	}

	want := []string{"resize 3", "changed", "changed", "resize 2", "changed"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestStacked_IndexErrors(t *testing.T) {
	s := NewStacked(NewLayer("a", nil))
	rec := &recorder{}
	s.Subscribe(rec)

	checks := []error{
		s.Insert(5, Layer{}),
		s.Remove(1),
		s.Move(0, 3),
		s.SetOpacity(-1, 0.5),
		s.SetVisible(2, false),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrLayerIndex) {
			t.Errorf("check %d: err = %v, want ErrLayerIndex", i, err)
		}
	}
	if _, err := s.Layer(1); !errors.Is(err, ErrLayerIndex) {
		t.Errorf("Layer(1) err = %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("failed mutations emitted %v", rec.events)
	}
}

func TestStacked_PropertyChangesDirtyWholePlane(t *testing.T) {
	s := NewStacked(NewLayer("a", nil))
	rec := &recorder{}
	s.Subscribe(rec)

	if err := s.SetOpacity(0, 1.7); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVisible(0, false); err != nil {
		t.Fatal(err)
	}
	l, _ := s.Layer(0)
	if l.Opacity != 1 || l.Visible {
		t.Errorf("layer = %+v, want clamped opacity and hidden", l)
	}
	whole := fmt.Sprintf("dirty %v", geom.Rect{})
	if want := []string{whole, whole}; !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestStacked_MarkDirtyAndUnsubscribe(t *testing.T) {
	s := NewStacked()
	a, b := &recorder{}, &recorder{}
	s.Subscribe(a)
	cancel := s.Subscribe(b)

	s.MarkDirty(geom.R(1, 2, 3, 4))
	cancel()
	s.MarkDirty(geom.R(5, 6, 7, 8))

	if len(a.events) != 2 {
		t.Errorf("a got %d events, want 2", len(a.events))
	}
	if len(b.events) != 1 {
		t.Errorf("b got %d events after unsubscribe, want 1", len(b.events))
	}
}

func TestStacked_LayersIsSnapshot(t *testing.T) {
	s := NewStacked(NewLayer("a", nil))
	layers := s.Layers()
	layers[0].Name = "mutated"
	if l, _ := s.Layer(0); l.Name != "a" {
		t.Error("Layers() must return a copy")
	}
}

// =============================================================================
// Source Tests
// =============================================================================

func TestUniform(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img, err := Uniform{Color: red}.Request(context.Background(), image.Rect(100, 100, 228, 228))
	if err != nil {
		t.Fatal(err)
	}
	if got := color.RGBAModel.Convert(img.At(150, 200)); got != red {
		t.Errorf("At = %v, want red", got)
	}
}

func TestSourcesHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sources := []Source{
		Uniform{Color: color.Black},
		ImageSource{Image: image.NewRGBA(image.Rect(0, 0, 4, 4))},
	}
	for _, src := range sources {
		if _, err := src.Request(ctx, image.Rect(0, 0, 1, 1)); !errors.Is(err, context.Canceled) {
			t.Errorf("%T: err = %v, want context.Canceled", src, err)
		}
	}
}

func TestImageSource(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 10, 10))
	base.Set(5, 6, color.RGBA{G: 255, A: 255})

	img, err := ImageSource{Image: base}.Request(context.Background(), image.Rect(4, 4, 8, 8))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(4, 4, 8, 8) {
		t.Errorf("Bounds = %v", img.Bounds())
	}
	if _, g, _, _ := img.At(5, 6).RGBA(); g != 0xffff {
		t.Errorf("At(5,6) green = %#x", g)
	}
	// Region partly outside the image reads transparent.
	img, _ = ImageSource{Image: base}.Request(context.Background(), image.Rect(8, 8, 12, 12))
	if _, _, _, a := img.At(11, 11).RGBA(); a != 0 {
		t.Errorf("outside pixel alpha = %#x, want 0", a)
	}
}

func TestSourceFunc(t *testing.T) {
	var got image.Rectangle
	src := SourceFunc(func(_ context.Context, r image.Rectangle) (image.Image, error) {
		got = r
		return nil, nil
	})
	_, _ = src.Request(context.Background(), image.Rect(1, 2, 3, 4))
	if got != image.Rect(1, 2, 3, 4) {
		t.Errorf("region = %v", got)
	}
}
