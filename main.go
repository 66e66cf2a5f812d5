// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/schemalane/schemalane/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
