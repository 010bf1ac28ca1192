// Copyright 2026 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package starlarktree

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MarshalJSON returns the JSON encoding of the tree v. It fails if v
// holds a NaN or infinite number, which JSON cannot represent.
func MarshalJSON(v *structpb.Value) ([]byte, error) {
	return protojson.Marshal(v)
}

// MarshalIndentJSON is like MarshalJSON but spreads the output across
// lines indented by indent.
func MarshalIndentJSON(v *structpb.Value, indent string) ([]byte, error) {
	return protojson.MarshalOptions{Multiline: true, Indent: indent}.Marshal(v)
}

// UnmarshalJSON parses a JSON document into a tree.
func UnmarshalJSON(b []byte) (*structpb.Value, error) {
	v := &structpb.Value{}
	if err := protojson.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("parsing JSON tree: %w", err)
	}
	return v, nil
}
