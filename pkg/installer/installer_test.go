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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	. "github.com/onsi/gomega"

	"github.com/xabaril/hc-installer/pkg/config"
	"github.com/xabaril/hc-installer/pkg/engine"
	"github.com/xabaril/hc-installer/pkg/github"
	"github.com/xabaril/hc-installer/pkg/printer"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const (
	testRawURL = "https://raw.example.com/repo/master"
	testCRDURL = testRawURL + "/deploy/operator/crd/healthcheck-crd.yaml"
)

// fakeKubectl records the invocations instead of running kubectl.
type fakeKubectl struct {
	probeErr error
	// failures maps a manifest URL to the stderr of a failed run.
	failures  map[string]string
	statusErr error
	calls     [][]string
}

func (f *fakeKubectl) Probe(ctx context.Context) error {
	return f.probeErr
}

func (f *fakeKubectl) Run(ctx context.Context, args ...string) (engine.Output, error) {
	f.calls = append(f.calls, args)

	if args[0] == "get" {
		if f.statusErr != nil {
			return engine.Output{}, f.statusErr
		}
		return engine.Output{Stdout: "NAME      READY\noperator  1/1"}, nil
	}

	url := args[len(args)-1]
	if stderr, ok := f.failures[url]; ok {
		return engine.Output{Stderr: stderr}, &engine.ExitError{Args: args, ExitCode: 1, Stderr: stderr}
	}
	return engine.Output{Stdout: fmt.Sprintf("%s %s", args[0], url)}, nil
}

// manifestURLs returns the -f argument of every apply/delete call.
func (f *fakeKubectl) manifestURLs() []string {
	var urls []string
	for _, call := range f.calls {
		if len(call) == 3 && call[1] == "-f" {
			urls = append(urls, call[2])
		}
	}
	return urls
}

type fakeTrees struct {
	tree  *github.Tree
	err   error
	calls int
}

func (f *fakeTrees) GetTree(ctx context.Context, revision string) (*github.Tree, error) {
	f.calls++
	return f.tree, f.err
}

func newTestInstaller(kubectl Executor, trees TreeGetter) (*Installer, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	opts := Options{
		RawURL:          testRawURL + "/",
		Revision:        config.DefaultRevision,
		DefinitionsPath: config.DefaultDefinitionsPath,
		CRDPath:         config.DefaultCRDPath,
		Namespace:       config.DefaultNamespace,
	}
	return New(kubectl, trees, printer.New(buf), log.New(io.Discard), opts), buf
}

func definitionURL(path string) string {
	return testRawURL + "/deploy/operator/" + path
}

func treeOf(entries ...github.TreeEntry) *github.Tree {
	return &github.Tree{URL: "https://api.example.com/git/trees/x", Tree: entries}
}

func blob(path string) github.TreeEntry {
	return github.TreeEntry{Path: path, Type: github.BlobType}
}

func TestInstaller_RunApply(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{}
	trees := &fakeTrees{tree: treeOf(blob("b.yaml"), blob("a.yaml"))}
	inst, buf := newTestInstaller(kubectl, trees)

	err := inst.Run(context.Background(), Apply)
	g.Expect(err).NotTo(HaveOccurred())

	expected := strings.Join([]string{
		"Starting HealthChecks operator installer",
		"Executing Apply in all operator resources",
		"Processing Custom Resource Definition",
		"apply " + testCRDURL,
		"Reading yaml definition files from healthchecks repository",
		"Processing a.yaml",
		"apply " + definitionURL("a.yaml"),
		"Processing b.yaml",
		"apply " + definitionURL("b.yaml"),
		"NAME      READY\noperator  1/1",
		"Healthchecks Operator Apply finished",
		"",
	}, "\n")
	g.Expect(buf.String()).To(Equal(expected))

	g.Expect(kubectl.calls).To(Equal([][]string{
		{"apply", "-f", testCRDURL},
		{"apply", "-f", definitionURL("a.yaml")},
		{"apply", "-f", definitionURL("b.yaml")},
		{"get", "deploy", "-n", "healthchecks"},
	}))
	g.Expect(trees.calls).To(Equal(1))
}

func TestInstaller_ProcessesOnlyBlobs(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{}
	trees := &fakeTrees{tree: treeOf(
		blob("service.yaml"),
		github.TreeEntry{Path: "crd", Type: "tree"},
		blob("deployment.yaml"),
		github.TreeEntry{Path: "vendor", Type: "commit"},
	)}
	inst, _ := newTestInstaller(kubectl, trees)

	g.Expect(inst.Run(context.Background(), Apply)).To(Succeed())
	g.Expect(kubectl.manifestURLs()).To(Equal([]string{
		testCRDURL,
		definitionURL("deployment.yaml"),
		definitionURL("service.yaml"),
	}))
}

func TestInstaller_DeleteSkipsNamespaces(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{}
	trees := &fakeTrees{tree: treeOf(blob("namespace.yaml"), blob("operator.yaml"), blob("rbac/namespace-role.yaml"))}
	inst, buf := newTestInstaller(kubectl, trees)

	g.Expect(inst.Run(context.Background(), Delete)).To(Succeed())
	g.Expect(kubectl.manifestURLs()).To(Equal([]string{
		testCRDURL,
		definitionURL("operator.yaml"),
	}))
	g.Expect(kubectl.calls[0][0]).To(Equal("delete"))
	g.Expect(buf.String()).NotTo(ContainSubstring("Processing namespace.yaml"))
	g.Expect(buf.String()).To(ContainSubstring("Healthchecks Operator Delete finished"))
}

func TestInstaller_ApplyNeverSkips(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{}
	trees := &fakeTrees{tree: treeOf(blob("namespace.yaml"), blob("operator.yaml"))}
	inst, _ := newTestInstaller(kubectl, trees)

	g.Expect(inst.Run(context.Background(), Apply)).To(Succeed())
	g.Expect(kubectl.manifestURLs()).To(Equal([]string{
		testCRDURL,
		definitionURL("namespace.yaml"),
		definitionURL("operator.yaml"),
	}))
}

func TestInstaller_MissingKubectl(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{probeErr: engine.ErrNotInstalled}
	trees := &fakeTrees{tree: treeOf(blob("a.yaml"))}
	inst, buf := newTestInstaller(kubectl, trees)

	err := inst.Run(context.Background(), Apply)
	g.Expect(errors.Is(err, engine.ErrNotInstalled)).To(BeTrue())
	g.Expect(err.Error()).To(Equal("kubectl is not installed. Please install kubectl cli"))
	g.Expect(trees.calls).To(BeZero())
	g.Expect(kubectl.calls).To(BeEmpty())
	g.Expect(buf.String()).To(Equal("Starting HealthChecks operator installer\n"))
}

func TestInstaller_StopsAtFirstFailure(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{failures: map[string]string{
		definitionURL("a.yaml"): "error: unable to recognize \"a.yaml\"",
	}}
	trees := &fakeTrees{tree: treeOf(blob("a.yaml"), blob("b.yaml"))}
	inst, buf := newTestInstaller(kubectl, trees)

	err := inst.Run(context.Background(), Apply)
	g.Expect(err).To(MatchError("error: unable to recognize \"a.yaml\""))

	var exitErr *engine.ExitError
	g.Expect(errors.As(err, &exitErr)).To(BeTrue())

	g.Expect(kubectl.manifestURLs()).To(Equal([]string{testCRDURL, definitionURL("a.yaml")}))
	g.Expect(buf.String()).NotTo(ContainSubstring("Processing b.yaml"))
	g.Expect(buf.String()).NotTo(ContainSubstring("finished"))
}

func TestInstaller_CRDFailure(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{failures: map[string]string{testCRDURL: "forbidden"}}
	trees := &fakeTrees{tree: treeOf(blob("a.yaml"))}
	inst, _ := newTestInstaller(kubectl, trees)

	err := inst.Run(context.Background(), Apply)
	g.Expect(err).To(MatchError("forbidden"))
	g.Expect(trees.calls).To(BeZero())
}

func TestInstaller_FetchFailure(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{}
	trees := &fakeTrees{err: errors.New("GET https://api.example.com failed: 404 Not Found")}
	inst, _ := newTestInstaller(kubectl, trees)

	err := inst.Run(context.Background(), Apply)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(HavePrefix("reading definitions failed: "))
	g.Expect(kubectl.manifestURLs()).To(Equal([]string{testCRDURL}))
}

func TestInstaller_StatusFailureIsIgnored(t *testing.T) {
	g := NewWithT(t)

	kubectl := &fakeKubectl{statusErr: &engine.ExitError{ExitCode: 1, Stderr: "No resources found"}}
	trees := &fakeTrees{tree: treeOf(blob("a.yaml"))}
	inst, buf := newTestInstaller(kubectl, trees)

	g.Expect(inst.Run(context.Background(), Apply)).To(Succeed())
	g.Expect(buf.String()).To(HaveSuffix("\n\nHealthchecks Operator Apply finished\n"))
}

func TestOptionsFromConfig(t *testing.T) {
	g := NewWithT(t)

	cfg := config.NewConfig()
	cfg.Namespace = "monitoring"

	opts := OptionsFromConfig(cfg)
	g.Expect(opts.Namespace).To(Equal("monitoring"))
	g.Expect(opts.Revision).To(Equal(config.DefaultRevision))

	inst := New(&fakeKubectl{}, &fakeTrees{}, printer.New(io.Discard), log.New(io.Discard), opts)
	g.Expect(inst.CRD().URL).To(Equal(
		"https://raw.githubusercontent.com/Xabaril/AspNetCore.Diagnostics.HealthChecks/master/deploy/operator/crd/healthcheck-crd.yaml"))
}
