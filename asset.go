package htmlstate

import (
	"errors"
	"strconv"
	"strings"
)

// AssetPrefix marks an image source that encodes an asset reference as
// "asset:<id>|<randomId>|<url>".
const AssetPrefix = "asset:"

// AssetSource identifies the asset library assets are resolved against.
const AssetSource = "uniform-assets"

// AssetTypeImage is the only asset type produced from HTML.
const AssetTypeImage = "image"

// Asset field value types.
const (
	FieldText   = "text"
	FieldNumber = "number"
)

// Asset is a structured reference to an externally hosted media item.
type Asset struct {
	ID     string
	Type   string
	Fields AssetFields
	Source string
}

// AssetField is one named, typed value of an asset. Value is a string for
// FieldText and an int for FieldNumber.
type AssetField struct {
	Name  string
	Type  string
	Value any
}

// AssetFields is an ordered set of asset fields.
type AssetFields []AssetField

// IsAssetSource reports whether src uses the asset convention.
func IsAssetSource(src string) bool {
	return strings.HasPrefix(src, AssetPrefix)
}

// ParseAsset builds an image asset from an encoded source. Height and width
// are added as number fields when non-zero.
//
// Sources without the asset prefix return an EINVALID error recognized by
// IsNotAssetSource; sources with the wrong number of segments return one
// recognized by IsMalformedAssetSource.
func ParseAsset(src string, height, width int) (*Asset, error) {
	if !IsAssetSource(src) {
		return nil, Errorf(EINVALID, "%s: %q", notAssetSource, src)
	}

	parts := strings.Split(strings.TrimPrefix(src, AssetPrefix), "|")
	if len(parts) != 3 {
		return nil, Errorf(EINVALID, "%s %q: want 3 segments, got %d", malformedAssetSource, src, len(parts))
	}
	id, randomID, url := parts[0], parts[1], parts[2]

	asset := &Asset{
		ID:   randomID,
		Type: AssetTypeImage,
		Fields: AssetFields{
			{Name: "id", Type: FieldText, Value: id},
			{Name: "url", Type: FieldText, Value: url},
		},
		Source: AssetSource,
	}
	if height != 0 {
		asset.Fields = append(asset.Fields, AssetField{Name: "height", Type: FieldNumber, Value: height})
	}
	if width != 0 {
		asset.Fields = append(asset.Fields, AssetField{Name: "width", Type: FieldNumber, Value: width})
	}
	return asset, nil
}

const (
	notAssetSource       = "not an asset source"
	malformedAssetSource = "malformed asset source"
)

// IsNotAssetSource reports whether err came from a source without the
// asset prefix.
func IsNotAssetSource(err error) bool {
	return ErrorCode(err) == EINVALID && strings.HasPrefix(ErrorMessage(err), notAssetSource)
}

// IsMalformedAssetSource reports whether err came from an asset source with
// the wrong number of segments.
func IsMalformedAssetSource(err error) bool {
	return ErrorCode(err) == EINVALID && strings.HasPrefix(ErrorMessage(err), malformedAssetSource)
}

// ParsePixels reads the leading integer of a CSS length such as "120px".
// Fractions are truncated, anything without leading digits yields 0 and
// values beyond the range of int are clamped.
func ParsePixels(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	if end < len(v) && (v[end] == '-' || v[end] == '+') {
		end++
	}
	start := end
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	// On overflow Atoi returns the clamped value along with ErrRange.
	n, err := strconv.Atoi(v[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return n
}
