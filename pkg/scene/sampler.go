package scene

import "fmt"

// WrapMode is the addressing mode of one texture axis.
// The zero value is WrapInvalid, meaning the source did not specify one.
type WrapMode uint8

const (
	WrapInvalid WrapMode = iota
	WrapRepeat
	WrapClamp
	WrapMirror
	WrapDecal
)

var wrapNames = [...]string{
	WrapInvalid: "invalid",
	WrapRepeat:  "repeat",
	WrapClamp:   "clamp",
	WrapMirror:  "mirror",
	WrapDecal:   "decal",
}

// String returns the wrap mode name.
func (w WrapMode) String() string {
	if int(w) < len(wrapNames) {
		return wrapNames[w]
	}
	return fmt.Sprintf("wrap(%d)", uint8(w))
}

// Valid reports whether w is a concrete addressing mode.
func (w WrapMode) Valid() bool {
	return w > WrapInvalid && w <= WrapDecal
}

// MarshalText implements encoding.TextMarshaler.
func (w WrapMode) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WrapMode) UnmarshalText(text []byte) error {
	for i, name := range wrapNames {
		if name == string(text) {
			*w = WrapMode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown wrap mode %q", text)
}

// Filter is a texture filtering mode. Mipmap variants are only meaningful
// for minification.
type Filter uint8

const (
	FilterUnset Filter = iota
	FilterNearest
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

var filterNames = [...]string{
	FilterUnset:                "unset",
	FilterNearest:              "nearest",
	FilterLinear:               "linear",
	FilterNearestMipmapNearest: "nearest_mipmap_nearest",
	FilterLinearMipmapNearest:  "linear_mipmap_nearest",
	FilterNearestMipmapLinear:  "nearest_mipmap_linear",
	FilterLinearMipmapLinear:   "linear_mipmap_linear",
}

// String returns the filter name.
func (f Filter) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("filter(%d)", uint8(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Filter) UnmarshalText(text []byte) error {
	for i, name := range filterNames {
		if name == string(text) {
			*f = Filter(i)
			return nil
		}
	}
	return fmt.Errorf("unknown filter %q", text)
}

// Sampler holds texture sampling parameters. WrapW is reserved for volume
// textures and normally left WrapInvalid.
type Sampler struct {
	WrapU WrapMode `json:"wrap_u"`
	WrapV WrapMode `json:"wrap_v"`
	WrapW WrapMode `json:"wrap_w"`
	Mag   Filter   `json:"mag_filter"`
	Min   Filter   `json:"min_filter"`
}
