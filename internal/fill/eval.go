package fill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Thin wrappers over element Eval that unwrap the primitive result shapes
// the strategy snippets return.

func evalBool(ctx context.Context, el *rod.Element, js string, args ...interface{}) (bool, error) {
	res, err := el.Context(ctx).Eval(js, args...)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func evalInt(ctx context.Context, el *rod.Element, js string, args ...interface{}) (int, error) {
	res, err := el.Context(ctx).Eval(js, args...)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// evalStrings runs a snippet that returns a JSON-encoded string array.
func evalStrings(ctx context.Context, el *rod.Element, js string, args ...interface{}) ([]string, error) {
	res, err := el.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal([]byte(res.Value.Str()), &out); err != nil {
		return nil, fmt.Errorf("fill: decode string list: %w", err)
	}
	return out, nil
}

// unmarshalEval decodes a snippet's JSON.stringify result into dst.
func unmarshalEval(res *proto.RuntimeRemoteObject, dst interface{}) error {
	return json.Unmarshal([]byte(res.Value.Str()), dst)
}
