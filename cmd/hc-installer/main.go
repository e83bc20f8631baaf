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


package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/xabaril/hc-installer/pkg/config"
	"github.com/xabaril/hc-installer/pkg/engine"
	"github.com/xabaril/hc-installer/pkg/github"
	"github.com/xabaril/hc-installer/pkg/installer"
	"github.com/xabaril/hc-installer/pkg/printer"
)

var VERSION = "1.0.0-dev.0"

const PROJECT = "hc-installer"

var rootCmd = &cobra.Command{
	Use:           PROJECT + " [--delete]",
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "Install the HealthChecks operator on the cluster of the current kubectl context.",
	Long: `hc-installer applies the HealthChecks operator custom resource definition
and the operator manifests published in the HealthChecks repository, one kubectl call per manifest.

- hc-installer              apply the CRD and every operator manifest
- hc-installer --delete     delete them, namespaces are left in place
- hc-installer list         print the manifests in processing order
- hc-installer config view  print the source repository and kubectl settings
`,
	Args: cobra.ArbitraryArgs,
	// unknown arguments are ignored, only a leading --delete is meaningful
	DisableFlagParsing: true,
	RunE:               runInstallCmd,
}

var (
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: PROJECT})
	cfg    = config.NewConfig()
)

func init() {
	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	loadConfig()
	if err := rootCmd.Execute(); err != nil {
		printer.New(rootCmd.OutOrStdout()).Println(printer.Red, err.Error())
		os.Exit(1)
	}
}

func loadConfig() {
	if c, err := config.Read(""); err != nil {
		logger.Error("loading the config failed, using defaults", "err", err)
	} else {
		cfg = c
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("unknown log level", "level", cfg.LogLevel)
		return
	}
	logger.SetLevel(level)
}

func runInstallCmd(cmd *cobra.Command, args []string) error {
	op := installer.ParseOperation(args)
	return newInstaller(cmd.OutOrStdout()).Run(context.Background(), op)
}

func newInstaller(out io.Writer) *installer.Installer {
	kubectl := engine.NewKubectlExecutor(cfg.Kubectl, nil)
	trees := github.NewClient(cfg.Source.APIURL, cfg.Source.UserAgent)
	return installer.New(kubectl, trees, printer.New(out), logger, installer.OptionsFromConfig(cfg))
}
