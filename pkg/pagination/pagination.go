package pagination

import "strconv"

// Params is a parsed limit/offset window.
type Params struct {
	Limit  int
	Offset int
}

// Window bounds for list endpoints.
type Window struct {
	DefaultLimit int
	MinLimit     int
	MaxLimit     int
}

// History is the window used by call history.
var History = Window{DefaultLimit: 50, MinLimit: 1, MaxLimit: 500}

// Parse reads limit and offset query values.
// Non-numeric values fall back to defaults; limit is clamped and negative offsets become 0.
func (w Window) Parse(limitStr, offsetStr string) Params {
	p := Params{Limit: w.DefaultLimit}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			p.Limit = w.clamp(l)
		}
	}
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			p.Offset = o
		}
	}
	return p
}

// Clamp normalizes an already-typed window.
func (w Window) Clamp(limit, offset int) Params {
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: w.clamp(limit), Offset: offset}
}

func (w Window) clamp(l int) int {
	if l < w.MinLimit {
		return w.MinLimit
	}
	if w.MaxLimit > 0 && l > w.MaxLimit {
		return w.MaxLimit
	}
	return l
}
