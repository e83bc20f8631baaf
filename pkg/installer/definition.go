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

package installer

import (
	"strings"

	"github.com/xabaril/hc-installer/pkg/github"
)

// Definition is an operator manifest addressed by its raw content URL.
type Definition struct {
	// Path is relative to the definitions directory.
	Path string

	// URL is passed to 'kubectl -f'.
	URL string

	// Skip is set for manifests left in place by the operation.
	Skip bool
}

// Action returns the kubectl verb applied to the definition, or 'skip'.
func (d Definition) Action(op Operation) string {
	if d.Skip {
		return "skip"
	}
	return op.Verb()
}

// NewDefinitions resolves the blobs of the tree into definitions sorted by path.
func NewDefinitions(tree *github.Tree, rawURL, definitionsPath string, op Operation) []Definition {
	blobs := tree.Blobs()
	definitions := make([]Definition, 0, len(blobs))
	for _, blob := range blobs {
		url := joinURL(rawURL, definitionsPath, blob.Path)
		definitions = append(definitions, Definition{
			Path: blob.Path,
			URL:  url,
			Skip: skipped(op, url),
		})
	}
	return definitions
}

// skipped reports whether the manifest must be left in the cluster,
// namespaces are never deleted.
func skipped(op Operation, url string) bool {
	return op == Delete && strings.Contains(url, "namespace")
}

func joinURL(base string, elem ...string) string {
	parts := []string{strings.TrimSuffix(base, "/")}
	for _, e := range elem {
		if e = strings.Trim(e, "/"); e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, "/")
}
