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

// Package search finds ingredients similar to a vector, a name or free text.
//
// FindSimilar asks the store for the nearest embedded ingredients and keeps
// those scoring strictly above a similarity floor. It is the neighbour source
// for price estimation. SearchByName ranks by shared name tokens and boosts
// names that contain the query verbatim.
package search
