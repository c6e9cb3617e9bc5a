// Package main provides C-compatible exports for the snote library.
// Build with: go build -buildmode=c-shared -o snote.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
    char* warnings;
} SnoteResult;
*/
import "C"

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"unsafe"

	"github.com/logicossoftware/go-snote"
)

func main() {}

// abiVersion is bumped whenever an exported signature or SnoteResult changes.
const abiVersion = 1

// SnoteVersion returns the version of this C interface.
//
//export SnoteVersion
func SnoteVersion() C.int {
	return C.int(abiVersion)
}

// SnoteFreeResult frees memory allocated by other Snote functions.
// Must be called to avoid memory leaks.
//
//export SnoteFreeResult
func SnoteFreeResult(result C.SnoteResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
	if result.warnings != nil {
		C.free(unsafe.Pointer(result.warnings))
	}
}

// SnoteFreeString frees a C string allocated by Go.
//
//export SnoteFreeString
func SnoteFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// makeResult creates a result with data.
func makeResult(data []byte) C.SnoteResult {
	var result C.SnoteResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message.
func makeError(err error) C.SnoteResult {
	var result C.SnoteResult
	result.error = C.CString(err.Error())
	return result
}

func parse(data *C.char, dataLen C.int) (*snote.Document, error) {
	return snote.Parse(C.GoBytes(unsafe.Pointer(data), dataLen))
}

// SnoteInspect parses a .note file and returns a JSON description of it.
// The JSON structure contains: signature, version, equipment, width, height,
// fileInfo and pages (index, layerSequence, layers, error).
//
//export SnoteInspect
func SnoteInspect(data *C.char, dataLen C.int) C.SnoteResult {
	doc, err := parse(data, dataLen)
	if err != nil {
		return makeError(err)
	}

	fileInfo := make(map[string]any, len(doc.FileInfo))
	for k, v := range doc.FileInfo {
		if v.IsList() {
			fileInfo[k] = v.List()
		} else {
			fileInfo[k] = v.String()
		}
	}

	pages := make([]map[string]any, len(doc.Pages))
	for i, p := range doc.Pages {
		layers := map[string]any{}
		for name, l := range p.Layers {
			entry := map[string]any{"protocol": l.Protocol, "bitmapLen": len(l.Bitmap)}
			if l.Err != nil {
				entry["error"] = l.Err.Error()
			}
			layers[string(name)] = entry
		}
		page := map[string]any{
			"index":         p.Index,
			"layerSequence": p.LayerSequence,
			"layers":        layers,
		}
		if p.Err != nil {
			page["error"] = p.Err.Error()
		}
		pages[i] = page
	}

	result := map[string]any{
		"signature": doc.Signature,
		"version":   doc.Version,
		"equipment": doc.Equipment,
		"width":     doc.Width,
		"height":    doc.Height,
		"fileInfo":  fileInfo,
		"pages":     pages,
	}
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// SnotePageCount returns the number of pages in a .note file.
// Returns -1 on error.
//
//export SnotePageCount
func SnotePageCount(data *C.char, dataLen C.int) C.int {
	doc, err := parse(data, dataLen)
	if err != nil {
		return -1
	}
	return C.int(len(doc.Pages))
}

// SnoteRenderPagePNG renders the page at position page and returns it PNG
// encoded. Layers that could not be drawn are listed in the result's
// warnings field, one per line. Pass a non-zero color to skip the grayscale
// conversion.
//
// Returns SnoteResult with PNG data or error. Call SnoteFreeResult when done.
//
//export SnoteRenderPagePNG
func SnoteRenderPagePNG(data *C.char, dataLen C.int, page C.int, color C.int) C.SnoteResult {
	doc, err := parse(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	pr, err := doc.RenderPage(int(page), snote.WithGrayscale(color == 0))
	if err != nil {
		return makeError(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, pr.Image); err != nil {
		return makeError(err)
	}
	result := makeResult(buf.Bytes())
	if len(pr.Warnings) > 0 {
		lines := make([]string, len(pr.Warnings))
		for i, w := range pr.Warnings {
			lines[i] = w.Error()
		}
		result.warnings = C.CString(strings.Join(lines, "\n"))
	}
	return result
}

// SnoteValidate parses a .note file without rendering it.
// Returns NULL on success, or an error message string on failure.
// Call SnoteFreeString on the result if non-NULL.
//
//export SnoteValidate
func SnoteValidate(data *C.char, dataLen C.int) *C.char {
	if _, err := parse(data, dataLen); err != nil {
		return C.CString(err.Error())
	}
	return nil
}
