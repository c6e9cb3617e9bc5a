package snote

// DefaultPageSize applies to every device not listed in the device table.
var DefaultPageSize = Size{Width: 1404, Height: 1872}

// deviceSizes maps APPLY_EQUIPMENT identifiers to their page size.
var deviceSizes = map[string]Size{
	"N5": {Width: 1920, Height: 2560},
}

// PageSize returns the page size recorded for the equipment identifier.
func PageSize(equipment string) Size {
	return lookupPageSize(equipment, nil)
}

func lookupPageSize(equipment string, extra map[string]Size) Size {
	if s, ok := extra[equipment]; ok {
		return s
	}
	if s, ok := deviceSizes[equipment]; ok {
		return s
	}
	return DefaultPageSize
}
