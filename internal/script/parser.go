/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"penpath/internal/pen"
	"penpath/internal/region"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Load reads and parses a script file. All errors are joined.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(data)
	if len(errs) > 0 {
		all := make([]error, len(errs))
		for i, e := range errs {
			all[i] = e
		}
		return s, fmt.Errorf("%s: %w", path, errors.Join(all...))
	}
	return s, nil
}

// Parse decodes a script, validates it against the embedded JSON schema and
// checks the step arguments. Errors carry the line of the offending node.
func Parse(input []byte) (Script, []Error) {
	var root yaml.Node
	if err := yaml.Unmarshal(input, &root); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	if len(root.Content) == 0 {
		return Script{}, []Error{{Message: "empty script"}}
	}
	doc := root.Content[0]

	var generic any
	if err := doc.Decode(&generic); err != nil {
		return Script{}, []Error{{Line: doc.Line, Message: err.Error()}}
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(generic))
	if err != nil {
		return Script{}, []Error{{Message: "schema validate: " + err.Error()}}
	}
	if !res.Valid() {
		var errs []Error
		for _, re := range res.Errors() {
			field := re.Field()
			line, col := position(doc, field)
			errs = append(errs, Error{Line: line, Column: col, Field: field, Message: re.Description()})
		}
		return Script{}, errs
	}

	var s Script
	if err := doc.Decode(&s); err != nil {
		return Script{}, []Error{{Line: doc.Line, Message: err.Error()}}
	}
	if steps := child(doc, "steps"); steps != nil {
		for i := range s.Steps {
			if i < len(steps.Content) {
				s.Steps[i].Line = steps.Content[i].Line
			}
		}
	}
	return s, checkSteps(s.Steps)
}

// checkSteps covers what the schema cannot express: required arguments per
// op and values parsed by other packages.
func checkSteps(steps []Step) []Error {
	var errs []Error
	bad := func(st Step, i int, msg string) {
		errs = append(errs, Error{Line: st.Line, Field: "steps." + strconv.Itoa(i), Message: msg})
	}
	for i, st := range steps {
		if (pointerOps[st.Op] || st.Op == OpNudge) && len(st.At) != 2 {
			bad(st, i, fmt.Sprintf("%s needs at: [x, y]", st.Op))
		}
		if st.Mods != "" {
			if _, err := pen.ParseModifiers(st.Mods); err != nil {
				bad(st, i, err.Error())
			}
		}
		switch st.Op {
		case OpMode:
			if _, err := pen.ParseMode(st.Mode); err != nil {
				bad(st, i, err.Error())
			}
		case OpConvert:
			if st.Rule != "" {
				if _, err := region.ParseFillRule(st.Rule); err != nil {
					bad(st, i, err.Error())
				}
			}
		case OpExpect:
			if st.Expect == nil {
				bad(st, i, "expect needs an expect block")
			}
		}
	}
	return errs
}

// position resolves a gojsonschema field path ("steps.2.op") to a node.
func position(doc *yaml.Node, field string) (int, int) {
	n := doc
	if field != "" && field != "(root)" {
		for _, part := range strings.Split(field, ".") {
			next := child(n, part)
			if next == nil {
				break
			}
			n = next
		}
	}
	return n.Line, n.Column
}

func child(n *yaml.Node, key string) *yaml.Node {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				return n.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && idx < len(n.Content) {
			return n.Content[idx]
		}
	}
	return nil
}
