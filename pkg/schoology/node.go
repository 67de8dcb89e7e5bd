package schoology

import (
	"strconv"

	errs "sgyexport/pkg/errors"
)

// Node is one structured record returned by the platform API. The API
// imposes no fixed schema across record kinds (schools, users, folders,
// pages, assignments, feed pages, ...), so fields are looked up on demand
// through narrow accessors that report which key was missing and for what
// purpose when a lookup fails.
type Node map[string]interface{}

// String returns the string value under key. The context string names the
// record and purpose for the error message.
func (n Node) String(key, context string) (string, error) {
	v, ok := n[key]
	if !ok {
		return "", errs.NewMissingField(key, context)
	}
	s, ok := v.(string)
	if !ok {
		return "", errs.NewMissingField(key, context)
	}
	return s, nil
}

// Int returns the integer value under key. Numeric identifiers arrive as
// JSON numbers or as decimal strings depending on the endpoint, so both are
// accepted.
func (n Node) Int(key, context string) (int64, error) {
	v, ok := n[key]
	if !ok {
		return 0, errs.NewMissingField(key, context)
	}
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errs.NewMissingField(key, context)
		}
		return i, nil
	default:
		return 0, errs.NewMissingField(key, context)
	}
}

// Node returns the nested object under key.
func (n Node) Node(key, context string) (Node, error) {
	v, ok := n[key]
	if !ok {
		return nil, errs.NewMissingField(key, context)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errs.NewMissingField(key, context)
	}
	return Node(m), nil
}

// Nodes returns the array of objects under key.
func (n Node) Nodes(key, context string) ([]Node, error) {
	v, ok := n[key]
	if !ok {
		return nil, errs.NewMissingField(key, context)
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, errs.NewMissingField(key, context)
	}
	out := make([]Node, 0, len(arr))
	for _, elem := range arr {
		m, ok := elem.(map[string]interface{})
		if !ok {
			return nil, errs.NewMissingField(key, context)
		}
		out = append(out, Node(m))
	}
	return out, nil
}

// OptionalString returns the string under key if present with that type.
func (n Node) OptionalString(key string) (string, bool) {
	v, ok := n[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// OptionalInt returns the integer under key if present.
func (n Node) OptionalInt(key string) (int64, bool) {
	i, err := n.Int(key, "")
	if err != nil {
		return 0, false
	}
	return i, true
}

// OptionalNodes returns the array of objects under key if present.
func (n Node) OptionalNodes(key string) ([]Node, bool) {
	nodes, err := n.Nodes(key, "")
	if err != nil {
		return nil, false
	}
	return nodes, true
}

// NextLink returns the links.next pagination URL if the record carries one.
// Its absence is the sole end-of-pagination signal.
func (n Node) NextLink() (string, bool) {
	links, err := n.Node("links", "")
	if err != nil {
		return "", false
	}
	return links.OptionalString("next")
}

// SelfLink returns the links.self URL of the record.
func (n Node) SelfLink(context string) (string, error) {
	links, err := n.Node("links", context)
	if err != nil {
		return "", err
	}
	return links.String("self", context)
}
