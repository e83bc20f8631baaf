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

	"github.com/spf13/cobra"

	"github.com/xabaril/hc-installer/pkg/installer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prints the operator manifests in processing order without calling kubectl.",
	Example: `  # Show what an install would apply
  hc-installer list

  # Show what an uninstall would delete and skip
  hc-installer list --delete
`,
	RunE: runListCmd,
}

type listFlags struct {
	delete bool
}

var listArgs listFlags

func init() {
	listCmd.Flags().BoolVar(&listArgs.delete, "delete", false, "List the manifests of a delete run.")

	rootCmd.AddCommand(listCmd)
}

func runListCmd(cmd *cobra.Command, args []string) error {
	op := installer.Apply
	if listArgs.delete {
		op = installer.Delete
	}

	inst := newInstaller(cmd.OutOrStdout())
	definitions, err := inst.Definitions(context.Background(), op)
	if err != nil {
		return err
	}

	crd := inst.CRD()
	rows := [][]string{{crd.Path, crd.Action(op), crd.URL}}
	for _, d := range definitions {
		rows = append(rows, []string{d.Path, d.Action(op), d.URL})
	}

	printTable(cmd.OutOrStdout(), []string{"path", "action", "url"}, rows)
	return nil
}
