package snote

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// testDoc returns a 4x2 document with one page holding the given layers.
func testDoc(seq []LayerName, layers map[LayerName]Layer) *Document {
	return &Document{
		Width:  4,
		Height: 2,
		Pages:  []Page{{Index: 1, LayerSequence: seq, Layers: layers}},
	}
}

func rleLayer(name LayerName, runs ...run) Layer {
	return Layer{Name: name, Protocol: ProtocolRattaRLE, Bitmap: encodeRuns(runs...)}
}

func TestRenderPage_NonOverlappingOpaqueLayers(t *testing.T) {
	doc := testDoc([]LayerName{LayerMain, Layer1}, map[LayerName]Layer{
		LayerMain: rleLayer(LayerMain, run{ColorBlack, 2}, run{ColorBackground, 6}),
		Layer1:    rleLayer(Layer1, run{ColorBackground, 6}, run{ColorDarkGray, 2}),
	})
	pr, err := doc.RenderPage(0, WithGrayscale(false))
	if err != nil {
		t.Fatal(err)
	}
	if len(pr.Warnings) != 0 {
		t.Fatalf("warnings: %v", pr.Warnings)
	}
	if b := pr.Image.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Fatalf("bounds %v", b)
	}
	pix := pr.Image.Pix
	checkSpan(t, pix, 0, 2, black)
	checkSpan(t, pix, 2, 6, white)
	checkSpan(t, pix, 6, 8, [4]byte{0x9d, 0x9d, 0x9d, 0xff})
}

func TestRenderPage_SequenceIsFrontToBack(t *testing.T) {
	layers := map[LayerName]Layer{
		LayerMain: rleLayer(LayerMain, run{ColorBlack, 8}),
		Layer1:    rleLayer(Layer1, run{ColorWhite, 8}),
	}
	pr, _ := testDoc([]LayerName{Layer1, LayerMain}, layers).RenderPage(0)
	checkSpan(t, pr.Image.Pix, 0, 8, white)

	pr, _ = testDoc([]LayerName{LayerMain, Layer1}, layers).RenderPage(0)
	checkSpan(t, pr.Image.Pix, 0, 8, black)
}

func TestRenderPage_HalfAlphaOverWhite(t *testing.T) {
	halfBlack := func(dst, _ []byte, w, h int) error {
		for o := 0; o < w*h*4; o += 4 {
			dst[o+3] = 128
		}
		return nil
	}
	doc := testDoc([]LayerName{LayerMain}, map[LayerName]Layer{
		LayerMain: {Name: LayerMain, Protocol: "HALF", Bitmap: []byte{}},
	})
	pr, err := doc.RenderPage(0, WithLayerDecoder("HALF", halfBlack))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		c := pixelAt(pr.Image.Pix, i)
		for ch := 0; ch < 3; ch++ {
			if d := int(c[ch]) - 128; d < -1 || d > 1 {
				t.Fatalf("pixel %d: got %s, want about (128,128,128,255)", i, rgba(c))
			}
		}
		if c[3] != 0xff {
			t.Fatalf("pixel %d alpha %d", i, c[3])
		}
	}
}

func TestRenderPage_Grayscale(t *testing.T) {
	red := func(dst, _ []byte, w, h int) error {
		for o := 0; o < w*h*4; o += 4 {
			dst[o], dst[o+3] = 0xff, 0xff
		}
		return nil
	}
	doc := testDoc([]LayerName{LayerMain}, map[LayerName]Layer{
		LayerMain: {Name: LayerMain, Protocol: "RED", Bitmap: []byte{}},
	})
	pr, _ := doc.RenderPage(0, WithLayerDecoder("RED", red))
	checkSpan(t, pr.Image.Pix, 0, 8, [4]byte{76, 76, 76, 0xff})

	pr, _ = doc.RenderPage(0, WithLayerDecoder("RED", red), WithGrayscale(false))
	checkSpan(t, pr.Image.Pix, 0, 8, [4]byte{0xff, 0, 0, 0xff})
}

func TestRenderPage_SkipsMissingAndEmptyLayers(t *testing.T) {
	doc := testDoc([]LayerName{"LAYER9", Layer2, LayerMain}, map[LayerName]Layer{
		LayerMain: rleLayer(LayerMain, run{ColorBlack, 1}),
		Layer2:    {Name: Layer2},
	})
	pr, err := doc.RenderPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pr.Warnings) != 0 {
		t.Fatalf("warnings: %v", pr.Warnings)
	}
	checkSpan(t, pr.Image.Pix, 0, 1, black)
	checkSpan(t, pr.Image.Pix, 1, 8, white)
}

func TestRenderPage_LayerFailuresAreWarnings(t *testing.T) {
	boom := func(_, _ []byte, _, _ int) error { return errors.New("boom") }
	panics := func(_, _ []byte, _, _ int) error { panic("bad stream") }
	doc := testDoc([]LayerName{Layer1, Layer2, Layer3, LayerBackground, LayerMain}, map[LayerName]Layer{
		LayerMain:       rleLayer(LayerMain, run{ColorBlack, 8}),
		Layer1:          {Name: Layer1, Protocol: "UNKNOWN", Bitmap: []byte{1, 2}},
		Layer2:          {Name: Layer2, Err: ErrAddressOutOfRange},
		Layer3:          {Name: Layer3, Protocol: "BOOM", Bitmap: []byte{}},
		LayerBackground: {Name: LayerBackground, Protocol: "PANIC", Bitmap: []byte{}},
	})
	pr, err := doc.RenderPage(0, WithLayerDecoder("BOOM", boom), WithLayerDecoder("PANIC", panics))
	if err != nil {
		t.Fatal(err)
	}
	checkSpan(t, pr.Image.Pix, 0, 8, black)

	got := map[LayerName]error{}
	for _, w := range pr.Warnings {
		if w.Page != 1 {
			t.Fatalf("warning page %d", w.Page)
		}
		got[w.Layer] = w
	}
	if len(got) != 4 {
		t.Fatalf("warnings: %v", pr.Warnings)
	}
	if !errors.Is(got[Layer1], ErrDecode) {
		t.Errorf("unknown protocol: %v", got[Layer1])
	}
	if !errors.Is(got[Layer2], ErrAddressOutOfRange) {
		t.Errorf("address: %v", got[Layer2])
	}
	if got[Layer3] == nil || got[Layer3].Error() != "page 1 layer LAYER3: boom" {
		t.Errorf("decoder error: %v", got[Layer3])
	}
	if !errors.Is(got[LayerBackground], ErrDecode) {
		t.Errorf("panic: %v", got[LayerBackground])
	}
}

func TestRenderPage_UnreadablePage(t *testing.T) {
	doc := &Document{Width: 2, Height: 2, Pages: []Page{{Index: 5, Err: ErrInvalidPage}}}
	pr, err := doc.RenderPage(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pr.Warnings) != 1 || !errors.Is(pr.Warnings[0], ErrInvalidPage) {
		t.Fatalf("warnings: %v", pr.Warnings)
	}
	checkSpan(t, pr.Image.Pix, 0, 4, white)
}

func TestRenderPage_OutOfRange(t *testing.T) {
	doc := testDoc(nil, nil)
	for _, i := range []int{-1, 1} {
		pr, err := doc.RenderPage(i)
		if !errors.Is(err, ErrPageOutOfRange) || pr != nil {
			t.Fatalf("index %d: %v %v", i, pr, err)
		}
	}
}

func TestRenderAllPages(t *testing.T) {
	doc, err := Parse(sampleNote())
	if err != nil {
		t.Fatal(err)
	}
	pages, err := doc.RenderAllPages(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != len(doc.Pages) {
		t.Fatalf("got %d rasters for %d pages", len(pages), len(doc.Pages))
	}
	for i, pr := range pages {
		if pr.Index != i {
			t.Fatalf("raster %d has index %d", i, pr.Index)
		}
		if b := pr.Image.Bounds(); b.Dx() != doc.Width || b.Dy() != doc.Height {
			t.Fatalf("page %d bounds %v", i, b)
		}
	}
	// Page 1: ten black pixels over a gray background strip.
	p0 := pages[0].Image.Pix
	checkSpan(t, p0, 0, 10, black)
	checkSpan(t, p0, 10, 20, [4]byte{0xc9, 0xc9, 0xc9, 0xff})
	checkSpan(t, p0, 20, 21, white)
	// Page 2: a single maximal run.
	p1 := pages[1].Image.Pix
	checkSpan(t, p1, 0, rleMaxRun, black)
	checkSpan(t, p1, rleMaxRun, rleMaxRun+1, white)
}

func TestRenderAllPages_Cancelled(t *testing.T) {
	doc, err := Parse(sampleNote())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pages, err := doc.RenderAllPages(ctx)
	if !errors.Is(err, context.Canceled) || len(pages) != 0 {
		t.Fatalf("got %d pages, %v", len(pages), err)
	}
}

func TestRenderPage_Concurrent(t *testing.T) {
	doc, err := Parse(sampleNote())
	if err != nil {
		t.Fatal(err)
	}
	want, _ := doc.RenderAllPages(context.Background())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pr, err := doc.RenderPage(i)
			if err != nil {
				errs <- err
				return
			}
			if string(pr.Image.Pix) != string(want[i].Image.Pix) {
				errs <- errors.New("concurrent render differs")
			}
		}(g % len(doc.Pages))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestBlendOver(t *testing.T) {
	dst := []byte{10, 20, 30, 0xff, 10, 20, 30, 0xff, 0, 0, 0, 0}
	src := []byte{99, 99, 99, 0, 200, 100, 50, 0xff, 100, 100, 100, 128}
	blendOver(dst, src)
	want := []byte{10, 20, 30, 0xff, 200, 100, 50, 0xff, 100, 100, 100, 128}
	if string(dst) != string(want) {
		t.Fatalf("got %v want %v", dst, want)
	}
}
