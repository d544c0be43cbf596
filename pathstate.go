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

// PathState is the mutable cursor threaded through path filters during
// routing. Path filters advance cursor and append to params on success; on
// failure they must leave the state byte-equal to how they found it, which
// is why every mutation goes through snapshot/restore here rather than
// being open-coded at each call site.
type PathState struct {
	segments []string
	cursor   int
	params   map[string]string
	ended    bool // set once a {**name} capture has consumed the remaining segments
}

// newPathState builds a PathState from an already-decoded, already-split
// path. An empty segments slice represents the root path "/".
func newPathState(segments []string) *PathState {
	return &PathState{segments: segments, params: map[string]string{}}
}

// pathStateSnapshot is the transactional checkpoint taken before a filter
// runs; restoring it undoes any cursor advance or param insert the filter
// made.
type pathStateSnapshot struct {
	cursor    int
	paramLen  int
	paramKeys []string
	ended     bool
}

func (s *PathState) snapshot() pathStateSnapshot {
	keys := make([]string, 0, len(s.params))
	for k := range s.params {
		keys = append(keys, k)
	}
	return pathStateSnapshot{cursor: s.cursor, paramLen: len(s.params), paramKeys: keys, ended: s.ended}
}

// restore reverts s to exactly the state snap was taken from. Because
// pathStateSnapshot.paramKeys only records which keys existed, restore
// simply deletes whatever keys were inserted after the snapshot — callers
// never delete keys another filter owns, since filters only ever append.
func (s *PathState) restore(snap pathStateSnapshot) {
	if len(s.params) != snap.paramLen {
		existed := make(map[string]struct{}, len(snap.paramKeys))
		for _, k := range snap.paramKeys {
			existed[k] = struct{}{}
		}
		for k := range s.params {
			if _, ok := existed[k]; !ok {
				delete(s.params, k)
			}
		}
	}
	s.cursor = snap.cursor
	s.ended = snap.ended
}

// clone produces an independent copy of s. The router does not use it:
// detect tries children through snapshot/restore on the shared state.
func (s *PathState) clone() *PathState {
	params := make(map[string]string, len(s.params))
	for k, v := range s.params {
		params[k] = v
	}
	segs := make([]string, len(s.segments))
	copy(segs, s.segments)
	return &PathState{segments: segs, cursor: s.cursor, params: params, ended: s.ended}
}

// Remaining reports whether any segments are left to consume.
func (s *PathState) Remaining() bool { return s.cursor < len(s.segments) }

// Done reports whether the cursor has consumed every segment.
func (s *PathState) Done() bool { return s.cursor >= len(s.segments) }

// Params returns the captured path parameters. The returned map is owned by
// the PathState; callers should treat it as read-only after a match.
func (s *PathState) Params() map[string]string { return s.params }
