/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import "slices"

// Set is an ordered set of selected ids.
type Set struct {
	ids []string
}

// NewSet returns a Set holding ids.
func NewSet(ids ...string) *Set {
	s := &Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Set) Has(id string) bool { return slices.Contains(s.ids, id) }
func (s *Set) Len() int           { return len(s.ids) }
func (s *Set) IDs() []string      { return slices.Clone(s.ids) }
func (s *Set) Clear()             { s.ids = nil }

// Add inserts id and reports whether it was new.
func (s *Set) Add(id string) bool {
	if id == "" || s.Has(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove drops id and reports whether it was present.
func (s *Set) Remove(id string) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// Toggle flips membership of id. Toggling twice restores the prior state.
func (s *Set) Toggle(id string) {
	if !s.Remove(id) {
		s.Add(id)
	}
}

// Replace makes ids the whole selection.
func (s *Set) Replace(ids ...string) {
	s.ids = nil
	for _, id := range ids {
		s.Add(id)
	}
}

// Retain drops ids for which keep returns false, e.g. after a delete.
func (s *Set) Retain(keep func(string) bool) {
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool { return !keep(id) })
}
