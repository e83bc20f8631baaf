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
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/xabaril/hc-installer/pkg/config"
	"github.com/xabaril/hc-installer/pkg/engine"
	"github.com/xabaril/hc-installer/pkg/github"
	"github.com/xabaril/hc-installer/pkg/printer"
)

// Executor runs kubectl commands.
type Executor interface {
	// Probe fails when kubectl can't be started.
	Probe(ctx context.Context) error
	// Run waits for kubectl to exit and returns its output,
	// a non-zero exit code is reported as *engine.ExitError.
	Run(ctx context.Context, args ...string) (engine.Output, error)
}

// TreeGetter lists the files of a repository directory at a given revision.
type TreeGetter interface {
	GetTree(ctx context.Context, revision string) (*github.Tree, error)
}

// Options holds the locations of the operator manifests.
type Options struct {
	RawURL          string
	Revision        string
	DefinitionsPath string
	CRDPath         string
	Namespace       string
}

// OptionsFromConfig returns the options defined by cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RawURL:          cfg.Source.RawURL,
		Revision:        cfg.Source.Revision,
		DefinitionsPath: cfg.Source.DefinitionsPath,
		CRDPath:         cfg.Source.CRDPath,
		Namespace:       cfg.Namespace,
	}
}

// Installer applies or deletes the operator CRD and definitions, one kubectl call per manifest.
type Installer struct {
	kubectl Executor
	trees   TreeGetter
	out     *printer.Printer
	logger  *log.Logger
	opts    Options
}

func New(kubectl Executor, trees TreeGetter, out *printer.Printer, logger *log.Logger, opts Options) *Installer {
	return &Installer{
		kubectl: kubectl,
		trees:   trees,
		out:     out,
		logger:  logger,
		opts:    opts,
	}
}

// Run executes the whole installation and stops at the first failure.
func (i *Installer) Run(ctx context.Context, op Operation) error {
	i.out.Println(printer.Cyan, "Starting HealthChecks operator installer")

	if err := i.Preflight(ctx); err != nil {
		return err
	}

	i.out.Println(printer.Green, fmt.Sprintf("Executing %s in all operator resources", op))

	if err := i.ProcessCRD(ctx, op); err != nil {
		return err
	}

	i.out.Println(printer.Magenta, "Reading yaml definition files from healthchecks repository")

	definitions, err := i.Definitions(ctx, op)
	if err != nil {
		return err
	}

	if err := i.ProcessDefinitions(ctx, op, definitions); err != nil {
		return err
	}

	i.ReportStatus(ctx, op)
	return nil
}

// Preflight checks that kubectl is installed.
func (i *Installer) Preflight(ctx context.Context) error {
	return i.kubectl.Probe(ctx)
}

// CRD returns the custom resource definition of the operator.
func (i *Installer) CRD() Definition {
	return Definition{
		Path: i.opts.CRDPath,
		URL:  joinURL(i.opts.RawURL, i.opts.CRDPath),
	}
}

// ProcessCRD applies or deletes the custom resource definition.
func (i *Installer) ProcessCRD(ctx context.Context, op Operation) error {
	i.out.Println(printer.Green, "Processing Custom Resource Definition")
	return i.execute(ctx, op, i.CRD().URL)
}

// Definitions fetches the operator manifests listing and returns them in processing order.
func (i *Installer) Definitions(ctx context.Context, op Operation) ([]Definition, error) {
	i.logger.Debug("fetching definitions", "revision", i.opts.Revision)

	tree, err := i.trees.GetTree(ctx, i.opts.Revision)
	if err != nil {
		return nil, fmt.Errorf("reading definitions failed: %w", err)
	}
	if tree.Truncated {
		i.logger.Warn("the definitions listing is truncated", "revision", i.opts.Revision)
	}

	return NewDefinitions(tree, i.opts.RawURL, i.opts.DefinitionsPath, op), nil
}

// ProcessDefinitions applies or deletes the definitions in order, skipped ones are not sent to kubectl.
func (i *Installer) ProcessDefinitions(ctx context.Context, op Operation, definitions []Definition) error {
	for _, definition := range definitions {
		if definition.Skip {
			i.logger.Debug("skipping definition", "path", definition.Path)
			continue
		}

		i.out.Println(printer.Green, fmt.Sprintf("Processing %s", definition.Path))
		if err := i.execute(ctx, op, definition.URL); err != nil {
			return err
		}
	}
	return nil
}

// ReportStatus prints the operator deployments, kubectl errors are ignored.
func (i *Installer) ReportStatus(ctx context.Context, op Operation) {
	output, err := i.kubectl.Run(ctx, "get", "deploy", "-n", i.opts.Namespace)
	if err != nil {
		i.logger.Debug("listing deployments failed", "namespace", i.opts.Namespace, "err", err)
	}
	i.out.Println(printer.White, output.Stdout)
	i.out.Println(printer.Green, fmt.Sprintf("Healthchecks Operator %s finished", op))
}

func (i *Installer) execute(ctx context.Context, op Operation, url string) error {
	i.logger.Debug("running kubectl", "verb", op.Verb(), "url", url)

	output, err := i.kubectl.Run(ctx, op.Verb(), "-f", url)
	if err != nil {
		var exitErr *engine.ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return fmt.Errorf("kubectl %s %s failed: %w", op.Verb(), url, err)
	}

	i.out.Println(printer.White, output.Stdout)
	return nil
}
