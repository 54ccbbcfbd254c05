// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import "strings"

// repairJSON fixes two formatting slips small models make: keys missing their
// opening quote (`, type":`) and trailing commas before a closing bracket.
// Text inside string literals is left alone.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	runes := []rune(s)
	inString := false
	escaped := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inString {
			out.WriteRune(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)

		case ',':
			// Drop the comma if only whitespace separates it from } or ]
			j := skipSpace(runes, i+1)
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue
			}
			out.WriteRune(ch)
			i = writeBareKey(&out, runes, i+1) - 1

		case '{':
			out.WriteRune(ch)
			i = writeBareKey(&out, runes, i+1) - 1

		default:
			out.WriteRune(ch)
		}
	}

	return out.String()
}

// writeBareKey copies whitespace from start and, if a key missing its opening
// quote follows, writes the quote. It returns the index to continue from.
func writeBareKey(out *strings.Builder, runes []rune, start int) int {
	j := skipSpace(runes, start)
	for k := start; k < j; k++ {
		out.WriteRune(runes[k])
	}

	k := j
	for k < len(runes) && isKeyRune(runes[k]) {
		k++
	}
	if k > j && k+1 < len(runes) && runes[k] == '"' && runes[k+1] == ':' {
		out.WriteRune('"')
		for ; j < k; j++ {
			out.WriteRune(runes[j])
		}
		out.WriteRune('"')
		return k + 1
	}
	return j
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' || runes[i] == '\r') {
		i++
	}
	return i
}
