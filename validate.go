package snote

import "fmt"

func validateDocument(doc *Document, limits Limits) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidFooter)
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return fmt.Errorf("%w: page size %dx%d for equipment %q", ErrLimitExceeded, doc.Width, doc.Height, doc.Equipment)
	}
	if doc.Width > limits.MaxPagePixels/doc.Height {
		return fmt.Errorf("%w: page size %dx%d", ErrLimitExceeded, doc.Width, doc.Height)
	}
	if len(doc.Pages) > limits.MaxPages {
		return fmt.Errorf("%w: %d pages", ErrLimitExceeded, len(doc.Pages))
	}
	seen := make(map[int]struct{}, len(doc.Pages))
	for i := range doc.Pages {
		idx := doc.Pages[i].Index
		if _, ok := seen[idx]; ok {
			return fmt.Errorf("%w: duplicate page index %d", ErrInvalidFooter, idx)
		}
		seen[idx] = struct{}{}
	}
	return nil
}
