/*
 *    Copyright 2025 Jeff Galyan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package talus

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type segKind int

const (
	segLiteral segKind = iota
	segParam           // {name}, {*name}
	segNum             // {name:num}, {name:num(N)}, {name:num(N..M)}
	segRegex           // {name|regex}
	segRest            // {**name}
)

// pathSegment is one compiled element of a path pattern.
type pathSegment struct {
	kind      segKind
	literal   string
	name      string
	re        *regexp.Regexp
	minDigits int
	maxDigits int
	hasMaxDig bool
}

// match reports whether seg consumes the single path segment value, and if
// so, what value should be captured (empty for literals, which capture
// nothing).
func (seg pathSegment) match(value string) (string, bool) {
	switch seg.kind {
	case segLiteral:
		return "", value == seg.literal
	case segParam:
		return value, true
	case segNum:
		if value == "" || !isAllDigits(value) {
			return "", false
		}
		if len(value) < seg.minDigits {
			return "", false
		}
		if seg.hasMaxDig && len(value) > seg.maxDigits {
			return "", false
		}
		return value, true
	case segRegex:
		if seg.re.MatchString(value) {
			return value, true
		}
		return "", false
	default:
		return "", false
	}
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parsePathPattern compiles a "/"-separated path pattern string into an
// ordered list of segment matchers, per the grammar in the routing spec:
//
//	pattern := ["/"] segment ("/" segment)*
//	segment := literal | param | rest
//	param   := "{" name [":" kind | "|" regex] "}"
//	rest    := "{**" name "}"
//	kind    := "num" | "num(" range ")"
//	range   := INT | INT ".." [INT] | INT "..=" INT
func parsePathPattern(pattern string) ([]pathSegment, error) {
	raws, err := splitTopLevel(pattern)
	if err != nil {
		return nil, err
	}
	segments := make([]pathSegment, 0, len(raws))
	restSeen := false
	for _, raw := range raws {
		if restSeen {
			return nil, fmt.Errorf("talus: {**name} must be the last segment in pattern %q", pattern)
		}
		seg, isRest, err := parseSegment(raw)
		if err != nil {
			return nil, fmt.Errorf("talus: %w (pattern %q)", err, pattern)
		}
		segments = append(segments, seg)
		if isRest {
			restSeen = true
		}
	}
	return segments, nil
}

// splitTopLevel splits a pattern on "/" that appears outside any {...}
// body, so a regex constraint containing a literal "/" is never torn in
// two. It also recognizes the "{{" / "}}" literal-brace escape so those
// don't open a body.
func splitTopLevel(pattern string) ([]string, error) {
	p := strings.TrimPrefix(pattern, "/")
	var out []string
	depth := 0
	start := 0
	i := 0
	for i < len(p) {
		c := p[i]
		switch {
		case c == '\\' && depth > 0:
			i += 2
			continue
		case c == '{':
			if depth == 0 && i+1 < len(p) && p[i+1] == '{' {
				i += 2
				continue
			}
			depth++
		case c == '}':
			if depth == 0 {
				if i+1 < len(p) && p[i+1] == '}' {
					i += 2
					continue
				}
			} else {
				depth--
			}
		case c == '/' && depth == 0:
			out = append(out, p[start:i])
			i++
			start = i
			continue
		}
		i++
	}
	if depth != 0 {
		return nil, fmt.Errorf("talus: unterminated '{' in path pattern %q", pattern)
	}
	out = append(out, p[start:])
	// Drop empty segments (collapses repeated slashes), matching the
	// runtime path decoder's own handling of the request path.
	filtered := out[:0]
	for _, s := range out {
		if s != "" {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func parseSegment(raw string) (pathSegment, bool, error) {
	if raw == "" {
		return pathSegment{kind: segLiteral, literal: ""}, false, nil
	}
	if strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "{{") {
		if !strings.HasSuffix(raw, "}") {
			return pathSegment{}, false, fmt.Errorf("unterminated '{' in segment %q", raw)
		}
		body := raw[1 : len(raw)-1]
		return parseParamBody(body)
	}
	return pathSegment{kind: segLiteral, literal: unescapeLiteral(raw)}, false, nil
}

func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "{{", "{")
	s = strings.ReplaceAll(s, "}}", "}")
	return s
}

func parseParamBody(body string) (pathSegment, bool, error) {
	switch {
	case strings.HasPrefix(body, "**"):
		name := body[2:]
		if name == "" {
			return pathSegment{}, false, fmt.Errorf("{**name} requires a name")
		}
		return pathSegment{kind: segRest, name: name}, true, nil
	case strings.HasPrefix(body, "*"):
		name := body[1:]
		if name == "" {
			return pathSegment{}, false, fmt.Errorf("{*name} requires a name")
		}
		return pathSegment{kind: segParam, name: name}, false, nil
	}

	idx, sep := findTopLevelSeparator(body)
	if idx == -1 {
		if body == "" {
			return pathSegment{}, false, fmt.Errorf("{} requires a name")
		}
		return pathSegment{kind: segParam, name: body}, false, nil
	}

	name := body[:idx]
	if name == "" {
		return pathSegment{}, false, fmt.Errorf("path parameter requires a name")
	}
	rest := body[idx+1:]

	if sep == '|' {
		re, err := regexp.Compile("^(?:" + rest + ")$")
		if err != nil {
			return pathSegment{}, false, fmt.Errorf("invalid regex for %q: %w", name, err)
		}
		return pathSegment{kind: segRegex, name: name, re: re}, false, nil
	}

	min, max, hasMax, err := parseNumKind(rest)
	if err != nil {
		return pathSegment{}, false, fmt.Errorf("invalid numeric constraint for %q: %w", name, err)
	}
	return pathSegment{kind: segNum, name: name, minDigits: min, maxDigits: max, hasMaxDig: hasMax}, false, nil
}

// findTopLevelSeparator returns the index and byte of the first unescaped
// ':' or '|' at brace-depth 0 within body, or (-1, 0) if neither appears.
func findTopLevelSeparator(body string) (int, byte) {
	depth := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\':
			i++
		case c == '{':
			depth++
		case c == '}':
			depth--
		case depth == 0 && (c == ':' || c == '|'):
			return i, c
		}
	}
	return -1, 0
}

// parseNumKind parses the "num" | "num(N)" | "num(N..M)" | "num(N..=M)"
// constraint grammar. Bounds follow Rust range syntax: "N..M" is exclusive
// of M, "N..=M" is inclusive.
func parseNumKind(kind string) (min, max int, hasMax bool, err error) {
	if kind == "num" {
		return 0, 0, false, nil
	}
	if !strings.HasPrefix(kind, "num(") || !strings.HasSuffix(kind, ")") {
		return 0, 0, false, fmt.Errorf("expected \"num\" or \"num(...)\", got %q", kind)
	}
	inner := kind[len("num(") : len(kind)-1]

	if i := strings.Index(inner, "..="); i >= 0 {
		min, err = strconv.Atoi(inner[:i])
		if err != nil {
			return 0, 0, false, err
		}
		max, err = strconv.Atoi(inner[i+3:])
		if err != nil {
			return 0, 0, false, err
		}
		return min, max, true, nil
	}
	if i := strings.Index(inner, ".."); i >= 0 {
		min, err = strconv.Atoi(inner[:i])
		if err != nil {
			return 0, 0, false, err
		}
		upper := inner[i+2:]
		if upper == "" {
			return min, 0, false, nil
		}
		max, err = strconv.Atoi(upper)
		if err != nil {
			return 0, 0, false, err
		}
		return min, max - 1, true, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return 0, 0, false, err
	}
	return n, n, true, nil
}
