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

package printer

import (
	"io"

	"github.com/fatih/color"
)

// Color is the foreground color of a printed line.
type Color int

const (
	Cyan Color = iota
	Green
	Magenta
	Red
	White
)

var attributes = map[Color]color.Attribute{
	Cyan:    color.FgCyan,
	Green:   color.FgGreen,
	Magenta: color.FgMagenta,
	Red:     color.FgRed,
	White:   color.FgWhite,
}

// Printer writes colored lines, colors are dropped when the
// process output is not a terminal.
type Printer struct {
	out io.Writer
}

func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Println writes text followed by a new line in the given color.
func (p *Printer) Println(c Color, text string) {
	_, _ = color.New(attributes[c]).Fprintln(p.out, text)
}
