package htmlstate

import "strings"

// LinkType classifies how a link target is interpreted.
type LinkType string

// Link types. LinkItem is only produced by GuessLinkType; ParseLink turns
// item links into LinkProjectMapNode.
const (
	LinkURL            LinkType = "url"
	LinkEmail          LinkType = "email"
	LinkTel            LinkType = "tel"
	LinkItem           LinkType = "item"
	LinkProjectMapNode LinkType = "projectMapNode"
)

// Link path prefixes.
const (
	mailtoPrefix = "mailto:"
	telPrefix    = "tel:"
	itemPrefix   = "item:"
)

// LocalePlaceholder is the dynamic input substituted by the editor runtime
// into item link paths.
const LocalePlaceholder = "${locale}"

// LinkProps is the value carried by a LinkNode.
// ProjectMapID, NodeID and DynamicInputValues are only set for
// LinkProjectMapNode; DynamicInputValues is non-nil for those links.
type LinkProps struct {
	Type               LinkType
	Path               string
	ProjectMapID       string
	NodeID             string
	DynamicInputValues map[string]string
}

// GuessLinkType classifies a link path. The first matching rule wins and
// anything unrecognized, including the empty string, is a URL.
func GuessLinkType(path string) LinkType {
	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return LinkURL
	case strings.HasPrefix(path, mailtoPrefix), strings.Contains(path, "@"):
		return LinkEmail
	case strings.HasPrefix(path, telPrefix), strings.HasPrefix(path, "+"):
		return LinkTel
	case strings.HasPrefix(path, itemPrefix):
		return LinkItem
	}
	return LinkURL
}

// ParseLink classifies path and normalizes it into LinkProps.
//
// Item links have the form "item:<projectMapId>|<nodeId>|<path>". Any other
// number of segments returns an EINVALID error (see IsMalformedLinkPath).
func ParseLink(path string) (*LinkProps, error) {
	switch typ := GuessLinkType(path); typ {
	case LinkEmail:
		return &LinkProps{Type: typ, Path: strings.TrimPrefix(path, mailtoPrefix)}, nil
	case LinkTel:
		return &LinkProps{Type: typ, Path: strings.TrimPrefix(path, telPrefix)}, nil
	case LinkItem:
		return parseItemLink(path)
	default:
		return &LinkProps{Type: typ, Path: path}, nil
	}
}

func parseItemLink(path string) (*LinkProps, error) {
	parts := strings.Split(strings.TrimPrefix(path, itemPrefix), "|")
	if len(parts) != 3 {
		return nil, Errorf(EINVALID, "%s %q: want 3 segments, got %d", malformedLinkPath, path, len(parts))
	}
	projectMapID, nodeID, url := parts[0], parts[1], parts[2]

	// dynamicInputValues is always present on item links, empty when the
	// path has no locale placeholder.
	dynamic := map[string]string{}
	if strings.HasPrefix(url, "/"+LocalePlaceholder) {
		dynamic["locale"] = LocalePlaceholder
	}

	return &LinkProps{
		Type:               LinkProjectMapNode,
		Path:               url,
		ProjectMapID:       projectMapID,
		NodeID:             nodeID,
		DynamicInputValues: dynamic,
	}, nil
}

const malformedLinkPath = "malformed link path"

// IsMalformedLinkPath reports whether err came from an item link with the
// wrong number of segments.
func IsMalformedLinkPath(err error) bool {
	return ErrorCode(err) == EINVALID && strings.HasPrefix(ErrorMessage(err), malformedLinkPath)
}
