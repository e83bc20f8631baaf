/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package github

import "sort"

// BlobType marks a file entry in a git tree.
const BlobType = "blob"

// Tree is the git tree listing returned by the GitHub API.
type Tree struct {
	SHA       string      `json:"sha,omitempty"`
	URL       string      `json:"url"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated,omitempty"`
}

// TreeEntry is a node of a git tree, either a file (blob) or a directory (tree).
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
	Type string `json:"type"`
	SHA  string `json:"sha,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// IsBlob reports whether the entry is a file.
func (e TreeEntry) IsBlob() bool {
	return e.Type == BlobType
}

// Blobs returns the file entries of the tree sorted by path.
func (t *Tree) Blobs() []TreeEntry {
	blobs := make([]TreeEntry, 0, len(t.Tree))
	for _, entry := range t.Tree {
		if entry.IsBlob() {
			blobs = append(blobs, entry)
		}
	}
	sort.Sort(SortableEntries(blobs))
	return blobs
}

type SortableEntries []TreeEntry

var _ sort.Interface = SortableEntries{}

func (a SortableEntries) Len() int           { return len(a) }
func (a SortableEntries) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a SortableEntries) Less(i, j int) bool { return a[i].Path < a[j].Path }
