package snote

const (
	// SignaturePrefix is the fixed ASCII prefix of every container.
	SignaturePrefix = "noteSN_FILE_VER_"

	signatureLen         = 24
	defaultHeaderAddress = 24
)

// ProtocolRattaRLE is the default bitmap encoding of a layer.
const ProtocolRattaRLE = "RATTA_RLE"

const defaultEquipment = "unknown"

// LayerName identifies one of the fixed drawing planes of a page.
type LayerName string

const (
	LayerMain       LayerName = "MAINLAYER"
	Layer1          LayerName = "LAYER1"
	Layer2          LayerName = "LAYER2"
	Layer3          LayerName = "LAYER3"
	LayerBackground LayerName = "BGLAYER"
)

// LayerNames lists every layer a page may carry, in the order they are
// looked up in a page block.
var LayerNames = []LayerName{LayerMain, Layer1, Layer2, Layer3, LayerBackground}

// Layer is one drawing plane of a page.
//
// Bitmap is a view into the buffer the Document was parsed from. It is nil
// when the layer is unused. Err is set when the layer is declared but one of
// its blocks could not be read.
type Layer struct {
	Name     LayerName
	Protocol string
	Bitmap   []byte
	Err      error
}

// HasBitmap reports whether the layer carries encoded pixels.
func (l Layer) HasBitmap() bool {
	return l.Err == nil && l.Bitmap != nil
}

// Page is one page of a Document.
//
// LayerSequence lists layer names front to back: the first entry is painted
// last. Err is set when the page block itself could not be read; such a page
// renders as a blank sheet.
type Page struct {
	Index         int
	Address       uint32
	LayerSequence []LayerName
	Layers        map[LayerName]Layer
	Err           error
}

// Document is a parsed container. It is immutable once returned by Parse.
type Document struct {
	Signature string
	Version   int
	Width     int
	Height    int
	Equipment string
	Pages     []Page

	// FileInfo holds the FILE group of the footer.
	FileInfo map[string]Value
}

// Size is a page size in pixels.
type Size struct {
	Width  int
	Height int
}
