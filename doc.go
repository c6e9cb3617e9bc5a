// Package snote decodes handwritten-note containers (".note" files) and
// renders their pages to raster images.
//
// The container is an address-indexed binary file. Every region of interest
// is an addressed block: a 4-byte little-endian length followed by that many
// content bytes, located by a 4-byte address stored somewhere else in the
// file. Address 0 means "absent".
//
// # File Format Overview
//
// A container consists of:
//   - A 24-byte ASCII signature, "noteSN_FILE_VER_" followed by an 8-digit version
//   - A footer block, located by the address stored in the last 4 bytes
//   - A header block with device information
//   - One block per page, and per page up to five layer blocks
//   - One raw bitmap block per layer, in the RATTA_RLE encoding
//
// Footer, header, page and layer blocks hold "<TAG:value>" text fragments.
// Bitmap blocks are opaque bytes interpreted by a protocol decoder.
//
// # Basic Usage
//
//	buf, _ := os.ReadFile("input.note")
//	doc, err := snote.Parse(buf)
//	if err != nil {
//		return err
//	}
//	for i := range doc.Pages {
//		pr, err := doc.RenderPage(i)
//		if err != nil {
//			return err
//		}
//		for _, w := range pr.Warnings {
//			log.Print(w)
//		}
//		png.Encode(out, pr.Image)
//	}
//
// # Error Handling
//
// Parse fails atomically with an error wrapping [ErrInvalidSignature],
// [ErrInvalidFooter], [ErrAddressOutOfRange] or [ErrLimitExceeded]. A page
// block that cannot be read is kept with [Page].Err wrapping [ErrInvalidPage]
// and renders blank. Failures confined to a single layer never fail a page:
// the layer is skipped and reported in [PageRaster].Warnings.
//
// # Concurrency
//
// A [Document] is immutable. RenderPage allocates all of its working memory
// per call, so different pages of the same document may be rendered from
// different goroutines.
package snote
