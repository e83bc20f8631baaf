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

import "strings"

// DeleteFlag selects the Delete operation when passed as the first argument.
const DeleteFlag = "--delete"

// Operation is the kubectl action performed on every operator manifest.
type Operation int

const (
	Apply Operation = iota
	Delete
)

func (o Operation) String() string {
	switch o {
	case Delete:
		return "Delete"
	default:
		return "Apply"
	}
}

// Verb returns the kubectl subcommand of the operation.
func (o Operation) Verb() string {
	return strings.ToLower(o.String())
}

// ParseOperation returns Delete when the first of the given arguments is '--delete',
// any other argument is ignored.
func ParseOperation(args []string) Operation {
	if len(args) > 0 && args[0] == DeleteFlag {
		return Delete
	}
	return Apply
}
